package influxdb

import (
	"context"
	"errors"
	"testing"

	"github.com/180254/razerctl/internal/infrastructure/config"
)

func TestConnect_Disabled(t *testing.T) {
	_, err := Connect(config.InfluxDBConfig{Enabled: false})
	if !errors.Is(err, ErrDisabled) {
		t.Errorf("Connect() error = %v, want ErrDisabled", err)
	}
}

func TestHealthCheck_NotConnected(t *testing.T) {
	c := &Client{}
	if err := c.HealthCheck(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("HealthCheck() error = %v, want ErrNotConnected", err)
	}
}

func TestWriteBattery_DisconnectedIsNoop(t *testing.T) {
	// A disconnected client silently drops writes; the absence of a
	// panic on the nil write API is the assertion.
	c := &Client{}
	c.WriteBattery("PM1", "Razer Viper Ultimate", 82.5, false)
	c.WriteChangeEvent("PM1", "dpi")
}

func TestClose_NeverConnected(t *testing.T) {
	c := &Client{}
	if err := c.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestFlush_NeverConnected(t *testing.T) {
	c := &Client{}
	c.Flush()
}
