package openrazer

import (
	"strings"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
)

// D-Bus interfaces exposed by the openrazer daemon.
const (
	// ifaceDevices is the manager interface on /org/razer.
	ifaceDevices = "razer.devices"

	// IfaceMisc carries device identity and polling methods.
	IfaceMisc = "razer.device.misc"

	// IfaceDPI carries DPI and DPI stage methods.
	IfaceDPI = "razer.device.dpi"

	// IfacePower carries battery and power-saving methods.
	IfacePower = "razer.device.power"

	// IfaceLightingLogo carries logo LED methods.
	IfaceLightingLogo = "razer.device.lighting.logo"

	// IfaceLightingChroma carries cross-zone lighting methods.
	IfaceLightingChroma = "razer.device.lighting.chroma"
)

// Capabilities are fully qualified daemon method names. A device "has" a
// capability when introspection shows the method on its object. The split
// between getter and setter matters: several mice accept setIdleTime but
// cannot report the current value.
const (
	CapGetDPI       = IfaceDPI + ".getDPI"
	CapSetDPI       = IfaceDPI + ".setDPI"
	CapMaxDPI       = IfaceDPI + ".maxDPI"
	CapAvailableDPI = IfaceDPI + ".availableDPI"
	CapGetDPIStages = IfaceDPI + ".getDPIStages"
	CapSetDPIStages = IfaceDPI + ".setDPIStages"

	CapGetPollRate        = IfaceMisc + ".getPollRate"
	CapSetPollRate        = IfaceMisc + ".setPollRate"
	CapSupportedPollRates = IfaceMisc + ".getSupportedPollRates"

	CapGetIdleTime            = IfacePower + ".getIdleTime"
	CapSetIdleTime            = IfacePower + ".setIdleTime"
	CapGetLowBatteryThreshold = IfacePower + ".getLowBatteryThreshold"
	CapSetLowBatteryThreshold = IfacePower + ".setLowBatteryThreshold"
	CapGetBattery             = IfacePower + ".getBattery"
	CapIsCharging             = IfacePower + ".isCharging"

	CapGetLogoBrightness = IfaceLightingLogo + ".getLogoBrightness"
	CapSetLogoBrightness = IfaceLightingLogo + ".setLogoBrightness"
	CapGetLogoEffect     = IfaceLightingLogo + ".getLogoEffect"

	CapSetSyncEffects = IfaceLightingChroma + ".setSyncEffects"
)

// CapLogoEffect returns the capability name for setting a named logo effect.
// The daemon exposes one setter per effect (setLogoNone, setLogoStatic,
// setLogoSpectrum, ...), so the capability depends on the effect name.
func CapLogoEffect(effect string) string {
	return IfaceLightingLogo + "." + logoEffectMethod(effect)
}

// logoEffectMethod maps an effect name to the daemon setter method name.
// "breath_random" becomes "setLogoBreathRandom".
func logoEffectMethod(effect string) string {
	var b strings.Builder
	b.WriteString("setLogo")
	for _, part := range strings.Split(effect, "_") {
		if part == "" {
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	return b.String()
}

// CapabilitySet is the set of daemon methods a device supports.
type CapabilitySet map[string]struct{}

// Has reports whether the fully qualified method name is supported.
func (s CapabilitySet) Has(capability string) bool {
	_, ok := s[capability]
	return ok
}

// introspectCapabilities builds the capability set for a device object by
// asking D-Bus for its introspection data and collecting every
// interface.method pair under the razer.* namespace.
func introspectCapabilities(obj dbus.BusObject) (CapabilitySet, error) {
	node, err := introspect.Call(obj)
	if err != nil {
		return nil, err
	}

	caps := make(CapabilitySet)
	for _, iface := range node.Interfaces {
		if !strings.HasPrefix(iface.Name, "razer.") {
			continue
		}
		for _, method := range iface.Methods {
			caps[iface.Name+"."+method.Name] = struct{}{}
		}
	}
	return caps, nil
}
