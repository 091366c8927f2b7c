// Package openrazer is a D-Bus client for the openrazer daemon.
//
// The daemon exposes every connected Razer peripheral as an object under
// /org/razer/device/<serial> on the session bus, with settings readable and
// writable through per-feature interfaces (razer.device.dpi,
// razer.device.power, razer.device.lighting.logo, ...). Not every device
// implements every method, so this package discovers the supported method
// set via D-Bus introspection and exposes it as a capability set, the same
// approach the upstream Python client takes.
//
// # Usage
//
//	client, err := openrazer.Connect()
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	devices, err := client.Devices(ctx)
//	for _, dev := range devices {
//	    if dev.Has(openrazer.CapSetDPI) {
//	        _ = dev.SetDPI(1200, 1200)
//	    }
//	}
//
// All device accessors are synchronous blocking calls to the daemon. Any
// D-Bus failure (daemon gone, device unplugged mid-call, unsupported method)
// is returned wrapped and is expected to terminate a reconciliation run.
package openrazer
