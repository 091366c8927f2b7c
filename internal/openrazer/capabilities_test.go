package openrazer

import "testing"

func TestLogoEffectMethod(t *testing.T) {
	tests := []struct {
		effect string
		want   string
	}{
		{"none", "setLogoNone"},
		{"static", "setLogoStatic"},
		{"spectrum", "setLogoSpectrum"},
		{"breath_single", "setLogoBreathSingle"},
		{"breath_random", "setLogoBreathRandom"},
	}
	for _, tt := range tests {
		if got := logoEffectMethod(tt.effect); got != tt.want {
			t.Errorf("logoEffectMethod(%q) = %q, want %q", tt.effect, got, tt.want)
		}
	}
}

func TestCapLogoEffect(t *testing.T) {
	want := "razer.device.lighting.logo.setLogoSpectrum"
	if got := CapLogoEffect("spectrum"); got != want {
		t.Errorf("CapLogoEffect(%q) = %q, want %q", "spectrum", got, want)
	}
}

func TestCapabilitySet_Has(t *testing.T) {
	caps := CapabilitySet{
		CapGetDPI: {},
		CapSetDPI: {},
	}

	if !caps.Has(CapGetDPI) {
		t.Errorf("Has(%q) = false, want true", CapGetDPI)
	}
	if caps.Has(CapGetIdleTime) {
		t.Errorf("Has(%q) = true, want false", CapGetIdleTime)
	}
}
