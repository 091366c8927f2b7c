// Package config handles loading and validating razerctl configuration.
//
// This package manages:
//   - Loading the desired-configuration table and ambient settings from YAML
//   - Overriding with RAZERCTL_* environment variables
//   - Default value handling and validation
//
// The desired-configuration table itself (what each mouse should be set to)
// lives in the reconcile package; config embeds it and layers the rest of
// the tool's settings (history database, watch mode, MQTT, InfluxDB,
// logging) around it.
//
// Sensitive values (MQTT password, InfluxDB token) should be set via
// environment variables rather than the file.
//
// Usage:
//
//	cfg, err := config.LoadOrDefault("~/.config/razerctl/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
