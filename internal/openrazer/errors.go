package openrazer

import "errors"

// Sentinel errors for daemon communication.
//
// These can be checked with errors.Is():
//
//	if errors.Is(err, openrazer.ErrDaemonUnavailable) {
//	    // daemon not running / not on the bus
//	}
var (
	// ErrDaemonUnavailable indicates the org.razer name has no owner on the
	// session bus (the daemon is not running).
	ErrDaemonUnavailable = errors.New("openrazer: daemon unavailable")

	// ErrConnectionFailed indicates the session bus connection could not be
	// established.
	ErrConnectionFailed = errors.New("openrazer: connection failed")

	// ErrNotSupported is returned when a method is called on a device that
	// does not advertise the corresponding capability.
	ErrNotSupported = errors.New("openrazer: not supported by device")

	// ErrUnknownEffect is returned for a lighting effect name the daemon has
	// no setter for.
	ErrUnknownEffect = errors.New("openrazer: unknown lighting effect")
)
