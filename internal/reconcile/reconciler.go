package reconcile

import (
	"context"
	"fmt"
	"strconv"

	"github.com/180254/razerctl/internal/openrazer"
)

// Mouse is the device surface the reconciler needs. *openrazer.Device
// implements it; tests use a call-recording fake.
type Mouse interface {
	Name() string
	Serial() string
	Has(capability string) bool

	DPI() (int, int, error)
	SetDPI(x, y int) error
	MaxDPI() (int, error)
	AvailableDPI() ([]int, error)
	DPIStages() (int, []openrazer.DPIStage, error)
	SetDPIStages(active int, stages []openrazer.DPIStage) error

	PollRate() (int, error)
	SetPollRate(rate int) error
	SupportedPollRates() ([]int, error)

	IdleTime() (int, error)
	SetIdleTime(seconds int) error
	LowBatteryThreshold() (int, error)
	SetLowBatteryThreshold(percent int) error

	LogoBrightness() (float64, error)
	SetLogoBrightness(brightness float64) error
	LogoEffect() (string, error)
	SetLogoEffect(effect string, rgb ...byte) error
	SetSyncEffects(enabled bool) error
}

var _ Mouse = (*openrazer.Device)(nil)

// Diff reads the device's current values and builds the plan of writes
// needed to reach the desired settings.
//
// Skipping rules:
//   - A property whose setter capability is absent is skipped.
//   - A zero desired value means the property is not enforced.
//   - A property with a setter but no getter is always planned, with the
//     current value recorded as UnknownValue.
//
// A read failure on any consulted getter aborts the diff; per the tool's
// contract there is no partial-failure handling.
func Diff(m Mouse, desired Settings) (*Plan, error) {
	p := &Plan{Serial: m.Serial(), Name: m.Name()}

	effectiveDPI, err := diffDPI(m, desired, p)
	if err != nil {
		return nil, err
	}
	if err := diffDPIStages(m, desired, effectiveDPI, p); err != nil {
		return nil, err
	}
	if err := diffPollRate(m, desired, p); err != nil {
		return nil, err
	}
	if err := diffIdleTime(m, desired, p); err != nil {
		return nil, err
	}
	if err := diffLowBatteryThreshold(m, desired, p); err != nil {
		return nil, err
	}
	if err := diffLogo(m, desired, p); err != nil {
		return nil, err
	}

	return p, nil
}

// Apply performs the writes in the plan, in plan order. Before the first
// lighting write it disables effect sync so the logo write does not fan out
// to other zones. Dry runs never reach Apply.
func Apply(ctx context.Context, m Mouse, p *Plan) error {
	syncDisabled := false
	for _, c := range p.Changes {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("applying %s: %w", c.Property, err)
		}
		if c.lighting && !syncDisabled && m.Has(openrazer.CapSetSyncEffects) {
			if err := m.SetSyncEffects(false); err != nil {
				return fmt.Errorf("disabling effect sync: %w", err)
			}
			syncDisabled = true
		}
		if err := c.apply(); err != nil {
			return fmt.Errorf("applying %s: %w", c.Property, err)
		}
	}
	return nil
}

// effectiveDPI computes the dpi the device will actually be set to:
// the desired value clamped to the hardware maximum, then snapped to the
// nearest entry of the discrete list when the device has one.
func effectiveDPI(m Mouse, desired int) (int, error) {
	target := desired

	if m.Has(openrazer.CapMaxDPI) {
		maxDPI, err := m.MaxDPI()
		if err != nil {
			return 0, err
		}
		if maxDPI > 0 && target > maxDPI {
			target = maxDPI
		}
	}

	if m.Has(openrazer.CapAvailableDPI) {
		available, err := m.AvailableDPI()
		if err != nil {
			return 0, err
		}
		if len(available) > 0 && !containsInt(available, target) {
			target = nearest(available, desired)
		}
	}

	return target, nil
}

// diffDPI plans a dpi change and returns the effective dpi for stage
// planning (0 when dpi is not enforceable on this device).
func diffDPI(m Mouse, desired Settings, p *Plan) (int, error) {
	if desired.DPI == 0 || !m.Has(openrazer.CapSetDPI) {
		return 0, nil
	}

	target, err := effectiveDPI(m, desired.DPI)
	if err != nil {
		return 0, err
	}

	current := UnknownValue
	if m.Has(openrazer.CapGetDPI) {
		x, y, err := m.DPI()
		if err != nil {
			return 0, err
		}
		if x == target && y == target {
			return target, nil
		}
		current = formatDPI(x, y)
	}

	p.add(Change{
		Property: PropDPI,
		Current:  current,
		Desired:  formatDPI(target, target),
		apply:    func() error { return m.SetDPI(target, target) },
	})
	return target, nil
}

// diffDPIStages plans the on-board stage list: a single stage at the
// effective dpi, stage 1 active.
func diffDPIStages(m Mouse, desired Settings, effective int, p *Plan) error {
	if desired.DPI == 0 || !m.Has(openrazer.CapSetDPIStages) {
		return nil
	}
	if effective == 0 {
		// Device has stages but no plain dpi setter; compute the target here.
		var err error
		if effective, err = effectiveDPI(m, desired.DPI); err != nil {
			return err
		}
	}

	want := []openrazer.DPIStage{{X: effective, Y: effective}}
	current := UnknownValue
	if m.Has(openrazer.CapGetDPIStages) {
		active, stages, err := m.DPIStages()
		if err != nil {
			return err
		}
		if active == 1 && stagesEqual(stages, want) {
			return nil
		}
		current = formatStages(active, stages)
	}

	p.add(Change{
		Property: PropDPIStages,
		Current:  current,
		Desired:  formatStages(1, want),
		apply:    func() error { return m.SetDPIStages(1, want) },
	})
	return nil
}

func diffPollRate(m Mouse, desired Settings, p *Plan) error {
	if desired.PollRate == 0 || !m.Has(openrazer.CapSetPollRate) {
		return nil
	}

	target := desired.PollRate
	if m.Has(openrazer.CapSupportedPollRates) {
		supported, err := m.SupportedPollRates()
		if err != nil {
			return err
		}
		if len(supported) > 0 && !containsInt(supported, target) {
			target = nearest(supported, desired.PollRate)
		}
	}

	current := UnknownValue
	if m.Has(openrazer.CapGetPollRate) {
		rate, err := m.PollRate()
		if err != nil {
			return err
		}
		if rate == target {
			return nil
		}
		current = strconv.Itoa(rate)
	}

	p.add(Change{
		Property: PropPollRate,
		Current:  current,
		Desired:  strconv.Itoa(target),
		apply:    func() error { return m.SetPollRate(target) },
	})
	return nil
}

func diffIdleTime(m Mouse, desired Settings, p *Plan) error {
	if desired.IdleTime == 0 || !m.Has(openrazer.CapSetIdleTime) {
		return nil
	}

	current := UnknownValue
	if m.Has(openrazer.CapGetIdleTime) {
		seconds, err := m.IdleTime()
		if err != nil {
			return err
		}
		if seconds == desired.IdleTime {
			return nil
		}
		current = strconv.Itoa(seconds)
	}

	target := desired.IdleTime
	p.add(Change{
		Property: PropIdleTime,
		Current:  current,
		Desired:  strconv.Itoa(target),
		apply:    func() error { return m.SetIdleTime(target) },
	})
	return nil
}

func diffLowBatteryThreshold(m Mouse, desired Settings, p *Plan) error {
	if desired.LowBatteryThreshold == 0 || !m.Has(openrazer.CapSetLowBatteryThreshold) {
		return nil
	}

	current := UnknownValue
	if m.Has(openrazer.CapGetLowBatteryThreshold) {
		percent, err := m.LowBatteryThreshold()
		if err != nil {
			return err
		}
		if percent == desired.LowBatteryThreshold {
			return nil
		}
		current = strconv.Itoa(percent)
	}

	target := desired.LowBatteryThreshold
	p.add(Change{
		Property: PropLowBatteryThreshold,
		Current:  current,
		Desired:  strconv.Itoa(target),
		apply:    func() error { return m.SetLowBatteryThreshold(target) },
	})
	return nil
}

func diffLogo(m Mouse, desired Settings, p *Plan) error {
	// An empty effect means the logo zone is not managed at all. Brightness
	// alone is not enforceable: 0 is a meaningful desired value (LED off),
	// so there is no zero sentinel to opt out with.
	if desired.Logo.Effect == "" {
		return nil
	}

	if m.Has(openrazer.CapSetLogoBrightness) {
		target := desired.Logo.Brightness
		drifted := true
		current := UnknownValue
		if m.Has(openrazer.CapGetLogoBrightness) {
			brightness, err := m.LogoBrightness()
			if err != nil {
				return err
			}
			drifted = brightness != target
			current = formatBrightness(brightness)
		}
		if drifted {
			p.add(Change{
				Property: PropLogoBrightness,
				Current:  current,
				Desired:  formatBrightness(target),
				lighting: true,
				apply:    func() error { return m.SetLogoBrightness(target) },
			})
		}
	}

	effect := desired.Logo.Effect
	if !m.Has(openrazer.CapLogoEffect(effect)) {
		return nil
	}

	drifted := true
	current := UnknownValue
	if m.Has(openrazer.CapGetLogoEffect) {
		active, err := m.LogoEffect()
		if err != nil {
			return err
		}
		drifted = active != effect
		current = active
	}
	if drifted {
		color := desired.Logo.Color
		p.add(Change{
			Property: PropLogoEffect,
			Current:  current,
			Desired:  effect,
			lighting: true,
			apply:    func() error { return m.SetLogoEffect(effect, color...) },
		})
	}
	return nil
}

// formatBrightness trims trailing zeros so 0.0 renders as "0" and 33.3 as
// "33.3", matching how the daemon echoes brightness values.
func formatBrightness(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func containsInt(values []int, v int) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

// nearest returns the entry of values closest to target. Ties resolve to
// the earlier entry, matching the original behaviour.
func nearest(values []int, target int) int {
	best := values[0]
	for _, v := range values[1:] {
		if absInt(v-target) < absInt(best-target) {
			best = v
		}
	}
	return best
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func stagesEqual(a, b []openrazer.DPIStage) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
