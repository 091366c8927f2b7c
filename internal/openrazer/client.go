package openrazer

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"
)

// D-Bus addressing for the openrazer daemon.
const (
	busName          = "org.razer"
	managerPath      = dbus.ObjectPath("/org/razer")
	devicePathPrefix = "/org/razer/device/"
)

// Client is a connection to the openrazer daemon on the session bus.
//
// The client owns the bus connection; Close releases it. Devices returned by
// Devices() share the connection and become unusable after Close.
type Client struct {
	conn *dbus.Conn
}

// Connect opens the session bus and verifies the daemon is present.
//
// Returns:
//   - *Client: Connected client ready for enumeration
//   - error: ErrConnectionFailed if the bus is unreachable,
//     ErrDaemonUnavailable if org.razer has no owner
func Connect() (*Client, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	c := &Client{conn: conn}

	present, err := nameHasOwner(conn)
	if err != nil {
		conn.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, fmt.Errorf("%w: checking bus name: %w", ErrConnectionFailed, err)
	}
	if !present {
		conn.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, ErrDaemonUnavailable
	}

	return c, nil
}

// Available reports whether the daemon is reachable right now. It opens and
// closes a throwaway bus connection, so it is safe to call before Connect.
func Available() bool {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return false
	}
	defer conn.Close() //nolint:errcheck // Read-only probe connection

	present, err := nameHasOwner(conn)
	return err == nil && present
}

// nameHasOwner asks the bus whether org.razer is currently owned.
func nameHasOwner(conn *dbus.Conn) (bool, error) {
	var has bool
	err := conn.BusObject().Call("org.freedesktop.DBus.NameHasOwner", 0, busName).Store(&has)
	return has, err
}

// Close releases the session bus connection.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	if err := c.conn.Close(); err != nil {
		return fmt.Errorf("closing bus connection: %w", err)
	}
	return nil
}

// Version returns the daemon version string.
func (c *Client) Version(ctx context.Context) (string, error) {
	var version string
	obj := c.conn.Object(busName, managerPath)
	if err := obj.CallWithContext(ctx, ifaceDevices+".version", 0).Store(&version); err != nil {
		return "", fmt.Errorf("getting daemon version: %w", err)
	}
	return version, nil
}

// Devices enumerates every device the daemon currently exposes.
//
// Each device is introspected once to build its capability set; identity
// fields (name, type) are fetched eagerly so callers can report on a device
// without further round trips.
//
// Parameters:
//   - ctx: Context for timeout/cancellation of the enumeration calls
//
// Returns:
//   - []*Device: One entry per connected device, daemon order
//   - error: If enumeration or any per-device setup call fails
func (c *Client) Devices(ctx context.Context) ([]*Device, error) {
	var serials []string
	obj := c.conn.Object(busName, managerPath)
	if err := obj.CallWithContext(ctx, ifaceDevices+".getDevices", 0).Store(&serials); err != nil {
		return nil, fmt.Errorf("enumerating devices: %w", err)
	}

	devices := make([]*Device, 0, len(serials))
	for _, serial := range serials {
		dev, err := c.device(ctx, serial)
		if err != nil {
			return nil, fmt.Errorf("opening device %s: %w", serial, err)
		}
		devices = append(devices, dev)
	}
	return devices, nil
}

// device builds a Device handle for the given serial.
func (c *Client) device(ctx context.Context, serial string) (*Device, error) {
	obj := c.conn.Object(busName, dbus.ObjectPath(devicePathPrefix+serial))

	caps, err := introspectCapabilities(obj)
	if err != nil {
		return nil, fmt.Errorf("introspecting: %w", err)
	}

	dev := &Device{
		obj:    obj,
		serial: serial,
		caps:   caps,
	}

	if err := obj.CallWithContext(ctx, IfaceMisc+".getDeviceName", 0).Store(&dev.name); err != nil {
		return nil, fmt.Errorf("getting device name: %w", err)
	}
	if err := obj.CallWithContext(ctx, IfaceMisc+".getDeviceType", 0).Store(&dev.devType); err != nil {
		return nil, fmt.Errorf("getting device type: %w", err)
	}

	return dev, nil
}
