// Package logging provides structured logging for razerctl.
//
// It wraps log/slog with consistent defaults: text output for interactive
// use, JSON for running under a service manager, level filtering, and
// service/version attributes on every entry.
//
// Configured via the logging section of config.yaml:
//
//	logging:
//	  level: "info"    # debug, info, warn, error
//	  format: "text"   # text, json
//	  output: "stdout" # stdout, stderr
package logging
