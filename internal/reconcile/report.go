package reconcile

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/180254/razerctl/internal/openrazer"
)

// Configurables renders the device's current configurable values as a
// single line, e.g.
//
//	dpi=1200x1200, poll_rate=1000, idle_time=?, logo_brightness=0
//
// A property appears when the device has either its getter or its setter;
// a set-only property renders as UnknownValue. Read failures render the
// raw error so a flaky device is visible in the report rather than
// aborting it.
func Configurables(m Mouse) string {
	return configurables(m, nil)
}

// AppliedConfigurables renders the device's configurables right after a
// plan was applied. Set-only properties cannot be read back, so their
// just-written value from the plan is reported instead of UnknownValue.
func AppliedConfigurables(m Mouse, p *Plan) string {
	applied := make(map[string]string, len(p.Changes))
	for _, c := range p.Changes {
		applied[c.Property] = c.Desired
	}
	return configurables(m, applied)
}

func configurables(m Mouse, applied map[string]string) string {
	var parts []string
	add := func(name, value string) {
		parts = append(parts, name+"="+value)
	}
	fallback := func(name string) string {
		if v, ok := applied[name]; ok {
			return v
		}
		return UnknownValue
	}

	if m.Has(openrazer.CapGetDPI) || m.Has(openrazer.CapSetDPI) {
		add(PropDPI, readValue(m, openrazer.CapGetDPI, fallback(PropDPI), func() (string, error) {
			x, y, err := m.DPI()
			return formatDPI(x, y), err
		}))
	}
	if m.Has(openrazer.CapGetDPIStages) || m.Has(openrazer.CapSetDPIStages) {
		add(PropDPIStages, readValue(m, openrazer.CapGetDPIStages, fallback(PropDPIStages), func() (string, error) {
			active, stages, err := m.DPIStages()
			return formatStages(active, stages), err
		}))
	}
	if m.Has(openrazer.CapGetPollRate) || m.Has(openrazer.CapSetPollRate) {
		add(PropPollRate, readValue(m, openrazer.CapGetPollRate, fallback(PropPollRate), func() (string, error) {
			rate, err := m.PollRate()
			return strconv.Itoa(rate), err
		}))
	}
	if m.Has(openrazer.CapGetIdleTime) || m.Has(openrazer.CapSetIdleTime) {
		add(PropIdleTime, readValue(m, openrazer.CapGetIdleTime, fallback(PropIdleTime), func() (string, error) {
			seconds, err := m.IdleTime()
			return strconv.Itoa(seconds), err
		}))
	}
	if m.Has(openrazer.CapGetLowBatteryThreshold) || m.Has(openrazer.CapSetLowBatteryThreshold) {
		add(PropLowBatteryThreshold, readValue(m, openrazer.CapGetLowBatteryThreshold, fallback(PropLowBatteryThreshold), func() (string, error) {
			percent, err := m.LowBatteryThreshold()
			return strconv.Itoa(percent), err
		}))
	}
	if m.Has(openrazer.CapGetLogoBrightness) || m.Has(openrazer.CapSetLogoBrightness) {
		add(PropLogoBrightness, readValue(m, openrazer.CapGetLogoBrightness, fallback(PropLogoBrightness), func() (string, error) {
			brightness, err := m.LogoBrightness()
			return formatBrightness(brightness), err
		}))
	}
	if m.Has(openrazer.CapGetLogoEffect) {
		add(PropLogoEffect, readValue(m, openrazer.CapGetLogoEffect, fallback(PropLogoEffect), func() (string, error) {
			return m.LogoEffect()
		}))
	}

	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ", ")
}

// readValue reads via the getter when the device has it, the fallback
// otherwise.
func readValue(m Mouse, getter string, fallback string, read func() (string, error)) string {
	if !m.Has(getter) {
		return fallback
	}
	value, err := read()
	if err != nil {
		return fmt.Sprintf("error(%v)", err)
	}
	return value
}
