package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteBattery writes a battery telemetry measurement for a mouse.
//
// The write is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - serial: Device serial number
//   - model: Device model name (e.g., "Razer Viper Ultimate")
//   - level: Battery charge percentage (0-100)
//   - charging: Whether the device is currently charging
//
// Example:
//
//	client.WriteBattery("PM2023H01234567", "Razer Viper Ultimate", 82.5, false)
func (c *Client) WriteBattery(serial string, model string, level float64, charging bool) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"battery",
		map[string]string{
			"serial": serial,
			"model":  model,
		},
		map[string]interface{}{
			"level":    level,
			"charging": charging,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteChangeEvent records a settings change applied to a device.
//
// Used for tracking configuration drift over time: how often a
// property diverges from its desired value and gets corrected.
//
// Parameters:
//   - serial: Device serial number
//   - property: The property that was written (e.g., "dpi", "poll_rate")
func (c *Client) WriteChangeEvent(serial string, property string) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"settings_change",
		map[string]string{
			"serial":   serial,
			"property": property,
		},
		map[string]interface{}{
			"count": 1,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for custom measurements that don't fit the helper methods.
//
// Parameters:
//   - measurement: The measurement name (table)
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}
