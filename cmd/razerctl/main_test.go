package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/180254/razerctl/internal/infrastructure/logging"
	"github.com/180254/razerctl/internal/openrazer"
	"github.com/180254/razerctl/internal/reconcile"
)

// fakeDevice is a call-recording device. Setter invocations are appended
// to calls as "method(args)" strings.
type fakeDevice struct {
	serial string
	name   string
	kind   string
	caps   map[string]struct{}

	dpiX, dpiY int
	pollRate   int
	brightness float64
	effect     string

	calls []string
}

func newFakeDevice(caps ...string) *fakeDevice {
	d := &fakeDevice{
		serial: "PM0000H00000001",
		name:   "Razer Test Mouse",
		kind:   "mouse",
		caps:   make(map[string]struct{}, len(caps)),
	}
	for _, c := range caps {
		d.caps[c] = struct{}{}
	}
	return d
}

func (d *fakeDevice) record(format string, args ...any) {
	d.calls = append(d.calls, fmt.Sprintf(format, args...))
}

func (d *fakeDevice) Name() string   { return d.name }
func (d *fakeDevice) Serial() string { return d.serial }
func (d *fakeDevice) Type() string   { return d.kind }

func (d *fakeDevice) Has(capability string) bool {
	_, ok := d.caps[capability]
	return ok
}

func (d *fakeDevice) Firmware() (string, error)      { return "v1.0", nil }
func (d *fakeDevice) DriverVersion() (string, error) { return "3.0", nil }
func (d *fakeDevice) BatteryLevel() (float64, error) { return 0, nil }
func (d *fakeDevice) IsCharging() (bool, error)      { return false, nil }

func (d *fakeDevice) DPI() (int, int, error) { return d.dpiX, d.dpiY, nil }
func (d *fakeDevice) SetDPI(x, y int) error {
	d.record("setDPI(%d,%d)", x, y)
	return nil
}
func (d *fakeDevice) MaxDPI() (int, error)         { return 0, nil }
func (d *fakeDevice) AvailableDPI() ([]int, error) { return nil, nil }
func (d *fakeDevice) DPIStages() (int, []openrazer.DPIStage, error) {
	return 1, nil, nil
}
func (d *fakeDevice) SetDPIStages(active int, stages []openrazer.DPIStage) error {
	d.record("setDPIStages(%d,%v)", active, stages)
	return nil
}

func (d *fakeDevice) PollRate() (int, error) { return d.pollRate, nil }
func (d *fakeDevice) SetPollRate(rate int) error {
	d.record("setPollRate(%d)", rate)
	return nil
}
func (d *fakeDevice) SupportedPollRates() ([]int, error) { return nil, nil }

func (d *fakeDevice) IdleTime() (int, error) { return 0, nil }
func (d *fakeDevice) SetIdleTime(seconds int) error {
	d.record("setIdleTime(%d)", seconds)
	return nil
}
func (d *fakeDevice) LowBatteryThreshold() (int, error) { return 0, nil }
func (d *fakeDevice) SetLowBatteryThreshold(percent int) error {
	d.record("setLowBatteryThreshold(%d)", percent)
	return nil
}

func (d *fakeDevice) LogoBrightness() (float64, error) { return d.brightness, nil }
func (d *fakeDevice) SetLogoBrightness(brightness float64) error {
	d.record("setLogoBrightness(%v)", brightness)
	return nil
}
func (d *fakeDevice) LogoEffect() (string, error) { return d.effect, nil }
func (d *fakeDevice) SetLogoEffect(effect string, rgb ...byte) error {
	d.record("setLogoEffect(%s)", effect)
	return nil
}
func (d *fakeDevice) SetSyncEffects(enabled bool) error {
	d.record("setSyncEffects(%v)", enabled)
	return nil
}

// fakeSource serves a fixed device list.
type fakeSource struct {
	devices []device
}

func (s fakeSource) Devices(_ context.Context) ([]device, error) {
	return s.devices, nil
}

// driftedDevice returns a mouse whose dpi, poll rate, and logo all differ
// from the returned settings.
func driftedDevice() (*fakeDevice, reconcile.Settings) {
	d := newFakeDevice(
		openrazer.CapGetDPI, openrazer.CapSetDPI,
		openrazer.CapGetPollRate, openrazer.CapSetPollRate,
		openrazer.CapGetLogoBrightness, openrazer.CapSetLogoBrightness,
		openrazer.CapGetLogoEffect, openrazer.CapLogoEffect("none"),
		openrazer.CapSetSyncEffects,
	)
	d.dpiX, d.dpiY = 800, 800
	d.pollRate = 500
	d.brightness = 80
	d.effect = "spectrum"

	desired := reconcile.Settings{
		DPI:      1200,
		PollRate: 1000,
		Logo:     reconcile.LogoSettings{Effect: "none", Brightness: 0},
	}
	return d, desired
}

func TestRunPass_DryRunWritesNothing(t *testing.T) {
	dev, desired := driftedDevice()
	a := &app{
		devices: fakeSource{devices: []device{dev}},
		table:   reconcile.Table{Defaults: desired},
		log:     logging.Default(),
		dry:     true,
	}

	if err := a.runPass(context.Background()); err != nil {
		t.Fatalf("runPass() error = %v", err)
	}
	if len(dev.calls) != 0 {
		t.Errorf("dry run wrote to the device: %v", dev.calls)
	}
}

func TestRunPass_AppliesDrift(t *testing.T) {
	dev, desired := driftedDevice()
	a := &app{
		devices: fakeSource{devices: []device{dev}},
		table:   reconcile.Table{Defaults: desired},
		log:     logging.Default(),
	}

	if err := a.runPass(context.Background()); err != nil {
		t.Fatalf("runPass() error = %v", err)
	}
	wantCalls := []string{
		"setDPI(1200,1200)",
		"setPollRate(1000)",
		"setSyncEffects(false)",
		"setLogoBrightness(0)",
		"setLogoEffect(none)",
	}
	if !reflect.DeepEqual(dev.calls, wantCalls) {
		t.Errorf("calls = %v, want %v", dev.calls, wantCalls)
	}
}

func TestRunPass_SkipsNonMouseDevices(t *testing.T) {
	dev, desired := driftedDevice()
	dev.kind = "keyboard"
	a := &app{
		devices: fakeSource{devices: []device{dev}},
		table:   reconcile.Table{Defaults: desired},
		log:     logging.Default(),
	}

	if err := a.runPass(context.Background()); err != nil {
		t.Fatalf("runPass() error = %v", err)
	}
	if len(dev.calls) != 0 {
		t.Errorf("non-mouse device saw writes: %v", dev.calls)
	}
}

func TestLoadConfig_ExplicitPathMustExist(t *testing.T) {
	opts := options{configPath: "/nonexistent/config.yaml", configSet: true}

	if _, err := loadConfig(opts); err == nil {
		t.Error("loadConfig() expected error for missing explicit path, got nil")
	}
}

func TestLoadConfig_DefaultPathFallsBack(t *testing.T) {
	// Run from an empty directory so the default path does not exist.
	t.Chdir(t.TempDir())

	cfg, err := loadConfig(options{})
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Mouse.DPI != 1200 {
		t.Errorf("Mouse.DPI = %d, want default 1200", cfg.Mouse.DPI)
	}
}

func TestLoadConfig_EnvVarPath(t *testing.T) {
	content := "mouse:\n  dpi: 1600\n"
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	t.Setenv("RAZERCTL_CONFIG", path)

	cfg, err := loadConfig(options{})
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Mouse.DPI != 1600 {
		t.Errorf("Mouse.DPI = %d, want 1600", cfg.Mouse.DPI)
	}
}

func TestLoadConfig_ExplicitPathWins(t *testing.T) {
	explicit := filepath.Join(t.TempDir(), "explicit.yaml")
	if err := os.WriteFile(explicit, []byte("mouse:\n  dpi: 3200\n"), 0600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	t.Setenv("RAZERCTL_CONFIG", "/nonexistent/env.yaml")

	cfg, err := loadConfig(options{configPath: explicit, configSet: true})
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Mouse.DPI != 3200 {
		t.Errorf("Mouse.DPI = %d, want 3200", cfg.Mouse.DPI)
	}
}
