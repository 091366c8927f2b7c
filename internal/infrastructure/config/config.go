package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/180254/razerctl/internal/reconcile"
)

// Config is the root configuration for razerctl.
// Loaded from YAML with environment variable overrides on top.
type Config struct {
	// Mouse holds the default desired settings enforced on every mouse.
	Mouse reconcile.Settings `yaml:"mouse"`

	// Overrides adjusts the desired settings for specific devices,
	// matched by serial or name.
	Overrides []reconcile.Override `yaml:"overrides"`

	Daemon   DaemonConfig   `yaml:"daemon"`
	History  HistoryConfig  `yaml:"history"`
	Watch    WatchConfig    `yaml:"watch"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DaemonConfig controls how the openrazer daemon is reached.
type DaemonConfig struct {
	// Managed starts openrazer-daemon when org.razer is not on the bus.
	// Leave false when the daemon runs as a session service.
	Managed bool `yaml:"managed"`

	// Binary is the path to the openrazer-daemon executable.
	Binary string `yaml:"binary"`

	// StartTimeout is how long to wait for the daemon to claim its bus
	// name after a managed start (seconds).
	StartTimeout int `yaml:"start_timeout"`
}

// HistoryConfig contains run-history database settings.
type HistoryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// WatchConfig contains watch-mode settings.
type WatchConfig struct {
	// Interval between reconciliation passes (seconds).
	Interval int `yaml:"interval"`
}

// MQTTConfig contains MQTT broker connection settings.
// MQTT is only used in watch mode.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings (seconds).
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// InfluxDBConfig contains battery telemetry settings.
// InfluxDB is only written to in watch mode.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment
// variable overrides.
//
// Loading order:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern RAZERCTL_SECTION_KEY, e.g.
// RAZERCTL_HISTORY_PATH, RAZERCTL_MQTT_HOST.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault behaves like Load, but a missing file yields the built-in
// defaults instead of an error. Used for the default config path so the
// tool works without any configuration.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg = defaultConfig()
		applyEnvOverrides(cfg)
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("validating config: %w", err)
		}
		return cfg, nil
	}
	return cfg, err
}

// defaultConfig returns a Config matching a stock wireless Razer mouse
// setup: 1200 dpi, 1000 Hz, five minute idle timeout, logo off.
func defaultConfig() *Config {
	return &Config{
		Mouse: reconcile.Settings{
			DPI:                 1200,
			PollRate:            1000,
			IdleTime:            300,
			LowBatteryThreshold: 10,
			Logo: reconcile.LogoSettings{
				Brightness: 0,
				Effect:     "none",
			},
		},
		Daemon: DaemonConfig{
			Binary:       "openrazer-daemon",
			StartTimeout: 10,
		},
		History: HistoryConfig{
			Enabled:     true,
			Path:        "./data/razerctl.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		Watch: WatchConfig{
			Interval: 60,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "razerctl",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies RAZERCTL_* environment variables on top of the
// loaded configuration.
func applyEnvOverrides(cfg *Config) {
	// History
	if v := os.Getenv("RAZERCTL_HISTORY_PATH"); v != "" {
		cfg.History.Path = v
	}

	// MQTT
	if v := os.Getenv("RAZERCTL_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("RAZERCTL_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("RAZERCTL_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// InfluxDB
	if v := os.Getenv("RAZERCTL_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	// Logging
	if v := os.Getenv("RAZERCTL_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	// Watch
	if v := os.Getenv("RAZERCTL_WATCH_INTERVAL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Watch.Interval = n
		}
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []string

	if err := c.Table().Validate(); err != nil {
		errs = append(errs, err.Error())
	}

	if c.History.Enabled && c.History.Path == "" {
		errs = append(errs, "history.path is required when history is enabled")
	}

	if c.Watch.Interval < 1 {
		errs = append(errs, "watch.interval must be at least 1 second")
	}

	if c.MQTT.Enabled {
		if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
			errs = append(errs, "mqtt.qos must be 0, 1, or 2")
		}
		if c.MQTT.Broker.Port < 1 || c.MQTT.Broker.Port > 65535 {
			errs = append(errs, "mqtt.broker.port must be between 1 and 65535")
		}
	}

	if c.InfluxDB.Enabled {
		if c.InfluxDB.URL == "" {
			errs = append(errs, "influxdb.url is required when influxdb is enabled")
		}
		if c.InfluxDB.Org == "" || c.InfluxDB.Bucket == "" {
			errs = append(errs, "influxdb.org and influxdb.bucket are required when influxdb is enabled")
		}
	}

	if c.Daemon.Managed && c.Daemon.Binary == "" {
		errs = append(errs, "daemon.binary is required when daemon is managed")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Table returns the desired-configuration table assembled from the mouse
// defaults and the per-device overrides.
func (c *Config) Table() reconcile.Table {
	return reconcile.Table{Defaults: c.Mouse, Overrides: c.Overrides}
}

// WatchInterval returns the watch-mode pass interval as a Duration.
func (c *Config) WatchInterval() time.Duration {
	return time.Duration(c.Watch.Interval) * time.Second
}

// DaemonStartTimeout returns the managed daemon start timeout as a Duration.
func (c *Config) DaemonStartTimeout() time.Duration {
	return time.Duration(c.Daemon.StartTimeout) * time.Second
}
