package openrazer

import (
	"fmt"

	"github.com/godbus/dbus/v5"
)

// Device is a handle to a single peripheral exposed by the daemon.
//
// Accessors are thin wrappers over the daemon's per-feature D-Bus methods.
// Every accessor is gated on the device's capability set: calling a method
// the device does not support returns ErrNotSupported instead of a raw
// D-Bus error.
type Device struct {
	obj     dbus.BusObject
	serial  string
	name    string
	devType string
	caps    CapabilitySet
}

// DPIStage is one entry of a device's on-board DPI stage list.
type DPIStage struct {
	X int
	Y int
}

// dpiStageWire matches the daemon's (qq) struct encoding for a DPI stage.
type dpiStageWire struct {
	X uint16
	Y uint16
}

// Name returns the marketing name reported by the daemon.
func (d *Device) Name() string { return d.name }

// Type returns the device class, e.g. "mouse", "keyboard", "mousemat".
func (d *Device) Type() string { return d.devType }

// Serial returns the device serial number (also its object path suffix).
func (d *Device) Serial() string { return d.serial }

// Has reports whether the device supports the given daemon method.
func (d *Device) Has(capability string) bool {
	return d.caps.Has(capability)
}

// Capabilities returns the device's full capability set.
func (d *Device) Capabilities() CapabilitySet {
	return d.caps
}

// notSupported wraps ErrNotSupported with the missing method name.
func notSupported(capability string) error {
	return fmt.Errorf("%w: %s", ErrNotSupported, capability)
}

// get performs a daemon call gated on a capability and stores the reply.
func (d *Device) get(capability string, retvalues ...any) error {
	if !d.caps.Has(capability) {
		return notSupported(capability)
	}
	if err := d.obj.Call(capability, 0).Store(retvalues...); err != nil {
		return fmt.Errorf("calling %s: %w", capability, err)
	}
	return nil
}

// set performs a daemon call gated on a capability, discarding the reply.
func (d *Device) set(capability string, args ...any) error {
	if !d.caps.Has(capability) {
		return notSupported(capability)
	}
	if call := d.obj.Call(capability, 0, args...); call.Err != nil {
		return fmt.Errorf("calling %s: %w", capability, call.Err)
	}
	return nil
}

// Firmware returns the device firmware version.
func (d *Device) Firmware() (string, error) {
	var v string
	err := d.get(IfaceMisc+".getFirmware", &v)
	return v, err
}

// DriverVersion returns the kernel driver version.
func (d *Device) DriverVersion() (string, error) {
	var v string
	err := d.get(IfaceMisc+".getDriverVersion", &v)
	return v, err
}

// DPI returns the current (x, y) DPI pair.
func (d *Device) DPI() (int, int, error) {
	var xy []int32
	if err := d.get(CapGetDPI, &xy); err != nil {
		return 0, 0, err
	}
	if len(xy) != 2 {
		return 0, 0, fmt.Errorf("calling %s: unexpected reply length %d", CapGetDPI, len(xy))
	}
	return int(xy[0]), int(xy[1]), nil
}

// SetDPI writes the (x, y) DPI pair.
func (d *Device) SetDPI(x, y int) error {
	return d.set(CapSetDPI, uint16(x), uint16(y)) //nolint:gosec // DPI values validated against maxDPI upstream
}

// MaxDPI returns the hardware DPI ceiling.
func (d *Device) MaxDPI() (int, error) {
	var maxDPI int32
	if err := d.get(CapMaxDPI, &maxDPI); err != nil {
		return 0, err
	}
	return int(maxDPI), nil
}

// AvailableDPI returns the discrete DPI values the device accepts.
// Most mice accept any value up to MaxDPI and do not implement this method.
func (d *Device) AvailableDPI() ([]int, error) {
	var raw []int32
	if err := d.get(CapAvailableDPI, &raw); err != nil {
		return nil, err
	}
	values := make([]int, len(raw))
	for i, v := range raw {
		values[i] = int(v)
	}
	return values, nil
}

// DPIStages returns the active stage index and the on-board stage list.
func (d *Device) DPIStages() (int, []DPIStage, error) {
	var active uint8
	var wire []dpiStageWire
	if err := d.get(CapGetDPIStages, &active, &wire); err != nil {
		return 0, nil, err
	}
	stages := make([]DPIStage, len(wire))
	for i, s := range wire {
		stages[i] = DPIStage{X: int(s.X), Y: int(s.Y)}
	}
	return int(active), stages, nil
}

// SetDPIStages writes the on-board stage list and active stage index.
func (d *Device) SetDPIStages(active int, stages []DPIStage) error {
	wire := make([]dpiStageWire, len(stages))
	for i, s := range stages {
		wire[i] = dpiStageWire{X: uint16(s.X), Y: uint16(s.Y)} //nolint:gosec // stage values validated against maxDPI upstream
	}
	return d.set(CapSetDPIStages, uint8(active), wire) //nolint:gosec // stage index bounded by stage count
}

// PollRate returns the current polling rate in Hz.
func (d *Device) PollRate() (int, error) {
	var rate int32
	if err := d.get(CapGetPollRate, &rate); err != nil {
		return 0, err
	}
	return int(rate), nil
}

// SetPollRate writes the polling rate in Hz.
func (d *Device) SetPollRate(rate int) error {
	return d.set(CapSetPollRate, uint16(rate)) //nolint:gosec // rate snapped to SupportedPollRates upstream
}

// SupportedPollRates returns the polling rates the device accepts, in Hz.
func (d *Device) SupportedPollRates() ([]int, error) {
	var raw []int32
	if err := d.get(CapSupportedPollRates, &raw); err != nil {
		return nil, err
	}
	rates := make([]int, len(raw))
	for i, v := range raw {
		rates[i] = int(v)
	}
	return rates, nil
}

// IdleTime returns the wireless idle timeout in seconds.
func (d *Device) IdleTime() (int, error) {
	var seconds uint16
	if err := d.get(CapGetIdleTime, &seconds); err != nil {
		return 0, err
	}
	return int(seconds), nil
}

// SetIdleTime writes the wireless idle timeout in seconds.
func (d *Device) SetIdleTime(seconds int) error {
	return d.set(CapSetIdleTime, uint16(seconds)) //nolint:gosec // range validated by config
}

// LowBatteryThreshold returns the low battery warning level in percent.
func (d *Device) LowBatteryThreshold() (int, error) {
	var percent uint8
	if err := d.get(CapGetLowBatteryThreshold, &percent); err != nil {
		return 0, err
	}
	return int(percent), nil
}

// SetLowBatteryThreshold writes the low battery warning level in percent.
func (d *Device) SetLowBatteryThreshold(percent int) error {
	return d.set(CapSetLowBatteryThreshold, uint8(percent)) //nolint:gosec // range validated by config
}

// BatteryLevel returns the charge level in percent (0-100).
func (d *Device) BatteryLevel() (float64, error) {
	var level float64
	err := d.get(CapGetBattery, &level)
	return level, err
}

// IsCharging reports whether the device is currently charging.
func (d *Device) IsCharging() (bool, error) {
	var charging bool
	err := d.get(CapIsCharging, &charging)
	return charging, err
}

// LogoBrightness returns the logo LED brightness (0-100).
func (d *Device) LogoBrightness() (float64, error) {
	var brightness float64
	err := d.get(CapGetLogoBrightness, &brightness)
	return brightness, err
}

// SetLogoBrightness writes the logo LED brightness (0-100).
func (d *Device) SetLogoBrightness(brightness float64) error {
	return d.set(CapSetLogoBrightness, brightness)
}

// LogoEffect returns the name of the active logo effect.
func (d *Device) LogoEffect() (string, error) {
	var effect string
	err := d.get(CapGetLogoEffect, &effect)
	return effect, err
}

// SetLogoEffect activates a named logo effect. Effects that take a colour
// (static, breath_single) expect three rgb bytes; effects without arguments
// (none, spectrum, breath_random) take none.
func (d *Device) SetLogoEffect(effect string, rgb ...byte) error {
	capability := CapLogoEffect(effect)
	if !d.caps.Has(capability) {
		return fmt.Errorf("%w: %q", ErrUnknownEffect, effect)
	}
	args := make([]any, len(rgb))
	for i, b := range rgb {
		args[i] = b
	}
	return d.set(capability, args...)
}

// SetSyncEffects toggles effect synchronisation across lighting zones.
// Sync must be off before writing a zone effect, or the daemon mirrors the
// write to every zone.
func (d *Device) SetSyncEffects(enabled bool) error {
	return d.set(CapSetSyncEffects, enabled)
}
