package reconcile

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/180254/razerctl/internal/openrazer"
)

func TestConfigurables(t *testing.T) {
	m, _ := inSyncMouse()

	got := Configurables(m)
	want := "dpi=1200x1200, dpi_stages=#1[1200x1200], poll_rate=1000, " +
		"idle_time=300, low_battery_threshold=10, logo_brightness=0, logo_effect=none"
	if got != want {
		t.Errorf("Configurables() = %q, want %q", got, want)
	}
}

func TestConfigurables_SetOnlyRendersUnknown(t *testing.T) {
	m := newFakeMouse(openrazer.CapSetIdleTime, openrazer.CapSetPollRate)

	got := Configurables(m)
	want := "poll_rate=?, idle_time=?"
	if got != want {
		t.Errorf("Configurables() = %q, want %q", got, want)
	}
}

func TestConfigurables_ReadErrorIsReported(t *testing.T) {
	m := newFakeMouse(openrazer.CapGetPollRate, openrazer.CapSetPollRate)
	m.errOn[openrazer.CapGetPollRate] = errors.New("device busy")

	got := Configurables(m)
	if !strings.Contains(got, "poll_rate=error(device busy)") {
		t.Errorf("Configurables() = %q, want read error rendered", got)
	}
}

func TestConfigurables_NoCapabilities(t *testing.T) {
	m := newFakeMouse()
	if got := Configurables(m); got != "none" {
		t.Errorf("Configurables() = %q, want %q", got, "none")
	}
}

func TestAppliedConfigurables_SetOnlyShowsWrittenValue(t *testing.T) {
	m := newFakeMouse(openrazer.CapSetIdleTime, openrazer.CapSetPollRate)

	plan, err := Diff(m, Settings{IdleTime: 300})
	if err != nil {
		t.Fatalf("Diff() error = %v", err)
	}
	if err := Apply(context.Background(), m, plan); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	// Idle time was just written, so its planned value stands in for the
	// missing getter; the untouched poll rate stays unknown.
	got := AppliedConfigurables(m, plan)
	want := "poll_rate=?, idle_time=300"
	if got != want {
		t.Errorf("AppliedConfigurables() = %q, want %q", got, want)
	}
}
