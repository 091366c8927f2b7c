package reconcile

import (
	"fmt"
	"strings"
)

// Settings bounds. The idle timeout and threshold ranges match what the
// daemon accepts; values outside them are rejected by the firmware.
const (
	minIdleTime   = 60
	maxIdleTime   = 900
	maxPercent    = 100
	rgbComponents = 3
)

// knownLogoEffects are the logo effects this tool knows how to activate,
// mapped to whether they take an rgb colour argument.
var knownLogoEffects = map[string]bool{
	"none":          false,
	"spectrum":      false,
	"breath_random": false,
	"static":        true,
	"breath_single": true,
}

// Settings is one entry of the desired-configuration table: the values a
// mouse should be running with. Zero values mean "do not enforce".
type Settings struct {
	// DPI is applied to both axes and to the single on-board DPI stage.
	// Clamped to the device maximum and snapped to the nearest supported
	// value where the device restricts DPI to a discrete list.
	DPI int `yaml:"dpi"`

	// PollRate is the USB polling rate in Hz, snapped to the nearest rate
	// the device supports.
	PollRate int `yaml:"poll_rate"`

	// IdleTime is the wireless idle timeout in seconds (60-900).
	IdleTime int `yaml:"idle_time"`

	// LowBatteryThreshold is the low battery warning level in percent.
	LowBatteryThreshold int `yaml:"low_battery_threshold"`

	// Logo configures the logo LED.
	Logo LogoSettings `yaml:"logo"`
}

// LogoSettings configures the logo LED zone.
type LogoSettings struct {
	// Brightness in percent (0-100). 0 turns the LED off.
	Brightness float64 `yaml:"brightness"`

	// Effect is the lighting effect to enforce: none, static, spectrum,
	// breath_random or breath_single. Empty leaves the whole logo zone
	// unmanaged, brightness included.
	Effect string `yaml:"effect"`

	// Color is the rgb triple for colour effects (static, breath_single).
	Color []uint8 `yaml:"color,omitempty"`
}

// Validate checks the settings for values the daemon would reject.
func (s Settings) Validate() error {
	var errs []string

	if s.DPI < 0 {
		errs = append(errs, "dpi must not be negative")
	}
	if s.PollRate < 0 {
		errs = append(errs, "poll_rate must not be negative")
	}
	if s.IdleTime != 0 && (s.IdleTime < minIdleTime || s.IdleTime > maxIdleTime) {
		errs = append(errs, fmt.Sprintf("idle_time must be between %d and %d seconds", minIdleTime, maxIdleTime))
	}
	if s.LowBatteryThreshold < 0 || s.LowBatteryThreshold > maxPercent {
		errs = append(errs, "low_battery_threshold must be between 0 and 100")
	}
	if s.Logo.Brightness < 0 || s.Logo.Brightness > maxPercent {
		errs = append(errs, "logo.brightness must be between 0 and 100")
	}
	if s.Logo.Effect != "" {
		wantsColor, known := knownLogoEffects[s.Logo.Effect]
		switch {
		case !known:
			errs = append(errs, fmt.Sprintf("logo.effect %q is not recognised", s.Logo.Effect))
		case wantsColor && len(s.Logo.Color) != rgbComponents:
			errs = append(errs, fmt.Sprintf("logo.effect %q requires a 3-component logo.color", s.Logo.Effect))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidSettings, strings.Join(errs, "; "))
	}
	return nil
}

// Override adjusts the default settings for one device, selected by serial
// (preferred) or by exact device name. Unset fields inherit the defaults.
type Override struct {
	Serial string           `yaml:"serial,omitempty"`
	Name   string           `yaml:"name,omitempty"`
	Mouse  SettingsOverride `yaml:"mouse"`
}

// SettingsOverride holds the per-device adjustments. Pointer fields
// distinguish "not set" from an explicit zero.
type SettingsOverride struct {
	DPI                 *int         `yaml:"dpi,omitempty"`
	PollRate            *int         `yaml:"poll_rate,omitempty"`
	IdleTime            *int         `yaml:"idle_time,omitempty"`
	LowBatteryThreshold *int         `yaml:"low_battery_threshold,omitempty"`
	Logo                LogoOverride `yaml:"logo,omitempty"`
}

// LogoOverride holds per-device logo adjustments.
type LogoOverride struct {
	Brightness *float64 `yaml:"brightness,omitempty"`
	Effect     *string  `yaml:"effect,omitempty"`
	Color      []uint8  `yaml:"color,omitempty"`
}

// apply layers the override on top of base and returns the result.
func (o SettingsOverride) apply(base Settings) Settings {
	s := base
	if o.DPI != nil {
		s.DPI = *o.DPI
	}
	if o.PollRate != nil {
		s.PollRate = *o.PollRate
	}
	if o.IdleTime != nil {
		s.IdleTime = *o.IdleTime
	}
	if o.LowBatteryThreshold != nil {
		s.LowBatteryThreshold = *o.LowBatteryThreshold
	}
	if o.Logo.Brightness != nil {
		s.Logo.Brightness = *o.Logo.Brightness
	}
	if o.Logo.Effect != nil {
		s.Logo.Effect = *o.Logo.Effect
	}
	if o.Logo.Color != nil {
		s.Logo.Color = o.Logo.Color
	}
	return s
}

// Table is the desired-configuration table: defaults for every mouse plus
// per-device overrides.
type Table struct {
	Defaults  Settings
	Overrides []Override
}

// Validate checks the defaults, every override selector, and the effective
// settings each override produces.
func (t Table) Validate() error {
	if err := t.Defaults.Validate(); err != nil {
		return err
	}
	for i, o := range t.Overrides {
		if o.Serial == "" && o.Name == "" {
			return fmt.Errorf("%w (override %d)", ErrInvalidOverride, i)
		}
		if err := o.Mouse.apply(t.Defaults).Validate(); err != nil {
			return fmt.Errorf("override %d: %w", i, err)
		}
	}
	return nil
}

// Resolve returns the effective settings for a device. A serial match wins
// over a name match; with neither, the defaults apply. Among overrides with
// the same selector kind, the first match wins.
func (t Table) Resolve(serial, name string) Settings {
	for _, o := range t.Overrides {
		if o.Serial != "" && o.Serial == serial {
			return o.Mouse.apply(t.Defaults)
		}
	}
	for _, o := range t.Overrides {
		if o.Serial == "" && o.Name == name {
			return o.Mouse.apply(t.Defaults)
		}
	}
	return t.Defaults
}
