package influxdb

import "errors"

// Sentinel errors for the telemetry sink, checked with errors.Is().
var (
	// ErrNotConnected indicates the telemetry client is not connected.
	ErrNotConnected = errors.New("influxdb: not connected")

	// ErrConnectionFailed indicates the initial connection attempt failed.
	ErrConnectionFailed = errors.New("influxdb: connection failed")

	// ErrWriteFailed indicates a telemetry write failed. Most write errors
	// surface asynchronously through the SetOnError callback instead.
	ErrWriteFailed = errors.New("influxdb: write failed")

	// ErrDisabled indicates telemetry is disabled in the configuration.
	ErrDisabled = errors.New("influxdb: disabled in configuration")
)
