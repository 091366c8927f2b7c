// Package daemon supervises an optional openrazer-daemon subprocess.
//
// Most installs run the daemon per-session (autostart or systemd user
// unit) and razerctl just talks to it over D-Bus. When daemon.managed
// is enabled in config and the org.razer bus name has no owner, this
// package starts openrazer-daemon in the foreground, waits for the bus
// name to appear, and terminates the process on shutdown.
//
// The process runs in its own process group so that Stop can signal the
// daemon together with any children. Shutdown is SIGTERM first, SIGKILL
// after a graceful timeout.
package daemon
