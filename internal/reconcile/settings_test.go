package reconcile

import (
	"errors"
	"testing"
)

func validSettings() Settings {
	return Settings{
		DPI:                 1200,
		PollRate:            1000,
		IdleTime:            300,
		LowBatteryThreshold: 10,
		Logo:                LogoSettings{Effect: "none"},
	}
}

func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr bool
	}{
		{"valid", func(*Settings) {}, false},
		{"zero values allowed", func(s *Settings) { *s = Settings{} }, false},
		{"negative dpi", func(s *Settings) { s.DPI = -1 }, true},
		{"negative poll rate", func(s *Settings) { s.PollRate = -1 }, true},
		{"idle time below range", func(s *Settings) { s.IdleTime = 30 }, true},
		{"idle time above range", func(s *Settings) { s.IdleTime = 901 }, true},
		{"threshold above 100", func(s *Settings) { s.LowBatteryThreshold = 101 }, true},
		{"brightness above 100", func(s *Settings) { s.Logo.Brightness = 101 }, true},
		{"unknown effect", func(s *Settings) { s.Logo.Effect = "rainbow" }, true},
		{"static without color", func(s *Settings) { s.Logo.Effect = "static" }, true},
		{
			"static with color",
			func(s *Settings) {
				s.Logo.Effect = "static"
				s.Logo.Color = []uint8{0, 255, 0}
			},
			false,
		},
		{
			"color with wrong component count",
			func(s *Settings) {
				s.Logo.Effect = "breath_single"
				s.Logo.Color = []uint8{255}
			},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSettings()
			tt.mutate(&s)
			err := s.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidSettings) {
				t.Errorf("Validate() error = %v, want ErrInvalidSettings", err)
			}
		})
	}
}

func TestTable_Validate(t *testing.T) {
	table := Table{Defaults: validSettings()}
	if err := table.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	// An override with no selector is rejected.
	dpi := 1600
	table.Overrides = []Override{{Mouse: SettingsOverride{DPI: &dpi}}}
	if err := table.Validate(); !errors.Is(err, ErrInvalidOverride) {
		t.Errorf("Validate() error = %v, want ErrInvalidOverride", err)
	}

	// The effective settings an override produces are validated too.
	bad := -5
	table.Overrides = []Override{{Serial: "S1", Mouse: SettingsOverride{DPI: &bad}}}
	if err := table.Validate(); !errors.Is(err, ErrInvalidSettings) {
		t.Errorf("Validate() error = %v, want ErrInvalidSettings", err)
	}
}

func TestTable_Resolve(t *testing.T) {
	serialDPI := 1600
	nameDPI := 3200
	effect := "spectrum"

	table := Table{
		Defaults: validSettings(),
		Overrides: []Override{
			{Name: "Razer Viper Ultimate (Wired)", Mouse: SettingsOverride{DPI: &nameDPI}},
			{Serial: "PM1", Mouse: SettingsOverride{
				DPI:  &serialDPI,
				Logo: LogoOverride{Effect: &effect},
			}},
		},
	}

	t.Run("serial match wins over name match", func(t *testing.T) {
		got := table.Resolve("PM1", "Razer Viper Ultimate (Wired)")
		if got.DPI != serialDPI {
			t.Errorf("DPI = %d, want %d", got.DPI, serialDPI)
		}
		if got.Logo.Effect != effect {
			t.Errorf("Logo.Effect = %q, want %q", got.Logo.Effect, effect)
		}
	})

	t.Run("name match", func(t *testing.T) {
		got := table.Resolve("PM2", "Razer Viper Ultimate (Wired)")
		if got.DPI != nameDPI {
			t.Errorf("DPI = %d, want %d", got.DPI, nameDPI)
		}
	})

	t.Run("unset override fields inherit defaults", func(t *testing.T) {
		got := table.Resolve("PM2", "Razer Viper Ultimate (Wired)")
		if got.PollRate != table.Defaults.PollRate {
			t.Errorf("PollRate = %d, want inherited %d", got.PollRate, table.Defaults.PollRate)
		}
	})

	t.Run("no match falls back to defaults", func(t *testing.T) {
		got := table.Resolve("PM9", "Razer Basilisk")
		if got.DPI != table.Defaults.DPI {
			t.Errorf("DPI = %d, want default %d", got.DPI, table.Defaults.DPI)
		}
	})
}
