package daemon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"syscall"
	"time"
)

// Status represents the current state of the managed daemon process.
type Status string

const (
	StatusStopped  Status = "stopped"
	StatusStarting Status = "starting"
	StatusRunning  Status = "running"
	StatusFailed   Status = "failed"
)

const (
	// outputBufferSize is the buffer size for capturing daemon stdout/stderr.
	outputBufferSize = 4096

	// readyPollInterval is how often WaitReady probes for the bus name.
	readyPollInterval = 250 * time.Millisecond

	// defaultGracefulTimeout is how long Stop waits before SIGKILL.
	defaultGracefulTimeout = 10 * time.Second
)

// Logger defines the logging interface for the daemon manager.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}

// Manager supervises an openrazer-daemon subprocess.
//
// It is used when the daemon is not already running for the session:
// the process is started in the foreground, its output is captured for
// debug logging, and it is terminated together with razerctl.
type Manager struct {
	binary          string
	args            []string
	gracefulTimeout time.Duration
	logger          Logger

	mu        sync.RWMutex
	cmd       *exec.Cmd
	status    Status
	lastError error

	done chan struct{}
}

// NewManager creates a manager for the given daemon binary.
//
// For openrazer-daemon pass "--foreground" so the process stays
// attached and dies with razerctl.
func NewManager(binary string, args ...string) *Manager {
	return &Manager{
		binary:          binary,
		args:            args,
		gracefulTimeout: defaultGracefulTimeout,
		logger:          noopLogger{},
		status:          StatusStopped,
	}
}

// SetLogger sets the logger for the manager.
func (m *Manager) SetLogger(logger Logger) {
	m.logger = logger
}

// Start launches the daemon process in the foreground.
//
// Returns an error if the process is already running or fails to start.
// The daemon's stdout/stderr are captured and logged at debug level.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.status == StatusRunning || m.status == StatusStarting {
		m.mu.Unlock()
		return fmt.Errorf("daemon %s is already running", m.binary)
	}
	m.status = StatusStarting
	m.done = make(chan struct{})
	m.mu.Unlock()

	m.logger.Info("starting daemon", "binary", m.binary, "args", m.args)

	cmd := exec.CommandContext(ctx, m.binary, m.args...) //nolint:gosec // Binary path comes from validated config

	// New process group so Stop can signal the daemon and its children.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		m.fail(err)
		return fmt.Errorf("creating stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		m.fail(err)
		return fmt.Errorf("creating stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		m.fail(err)
		return fmt.Errorf("starting %s: %w", m.binary, err)
	}

	m.mu.Lock()
	m.cmd = cmd
	m.status = StatusRunning
	m.mu.Unlock()

	go m.captureOutput("stdout", stdout)
	go m.captureOutput("stderr", stderr)
	go m.monitor(cmd)

	m.logger.Info("daemon started", "binary", m.binary, "pid", cmd.Process.Pid)

	return nil
}

func (m *Manager) fail(err error) {
	m.mu.Lock()
	m.status = StatusFailed
	m.lastError = err
	m.mu.Unlock()
}

// captureOutput reads from the given reader and logs each chunk.
func (m *Manager) captureOutput(stream string, r io.Reader) {
	buf := make([]byte, outputBufferSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			m.logger.Debug("daemon output",
				"stream", stream,
				"output", string(buf[:n]),
			)
		}
		if err != nil {
			return
		}
	}
}

// monitor waits for the process to exit and records its final state.
func (m *Manager) monitor(cmd *exec.Cmd) {
	defer close(m.done)

	err := cmd.Wait()

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil && m.status == StatusRunning {
		m.status = StatusFailed
		m.lastError = err
		m.logger.Warn("daemon exited unexpectedly", "binary", m.binary, "error", err)
		return
	}
	m.status = StatusStopped
}

// WaitReady polls the given probe until it reports true or the timeout
// elapses.
//
// The probe typically checks whether the daemon's bus name has an owner.
// Returns an error if the daemon exits, the context is cancelled, or the
// timeout expires before the probe succeeds.
func (m *Manager) WaitReady(ctx context.Context, probe func() bool, timeout time.Duration) error {
	if probe() {
		return nil
	}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(readyPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-m.done:
			if err := m.LastError(); err != nil {
				return fmt.Errorf("daemon %s exited before becoming ready: %w", m.binary, err)
			}
			return fmt.Errorf("daemon %s exited before becoming ready", m.binary)
		case <-deadline.C:
			return fmt.Errorf("daemon %s not ready after %s", m.binary, timeout)
		case <-ticker.C:
			if probe() {
				return nil
			}
		}
	}
}

// Stop gracefully stops the daemon.
//
// It sends SIGTERM to the process group and waits for exit, then SIGKILL
// if the graceful timeout elapses. Safe to call when not running.
func (m *Manager) Stop() error {
	m.mu.Lock()
	if m.status != StatusRunning && m.status != StatusStarting {
		m.mu.Unlock()
		return nil
	}
	m.status = StatusStopped
	cmd := m.cmd
	done := m.done
	m.mu.Unlock()

	if cmd == nil || cmd.Process == nil || done == nil {
		return nil
	}

	pid := cmd.Process.Pid
	m.logger.Info("stopping daemon", "binary", m.binary, "pid", pid)

	// Negative PID signals the whole process group (created via Setpgid).
	if err := syscall.Kill(-pid, syscall.SIGTERM); err != nil {
		if !errors.Is(err, syscall.ESRCH) {
			m.logger.Warn("failed to send SIGTERM to daemon", "error", err)
		}
	}

	select {
	case <-done:
		m.logger.Info("daemon stopped gracefully")
		return nil
	case <-time.After(m.gracefulTimeout):
		m.logger.Warn("graceful shutdown timeout, sending SIGKILL", "timeout", m.gracefulTimeout)
	}

	if err := syscall.Kill(-pid, syscall.SIGKILL); err != nil {
		if !errors.Is(err, syscall.ESRCH) {
			return fmt.Errorf("killing daemon process group: %w", err)
		}
	}

	<-done
	m.logger.Info("daemon killed")

	return nil
}

// Status returns the current status of the managed daemon.
func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// IsRunning returns true if the daemon is currently running.
func (m *Manager) IsRunning() bool {
	return m.Status() == StatusRunning
}

// LastError returns the error from the last unexpected exit, if any.
func (m *Manager) LastError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastError
}

// PID returns the daemon's process ID, or 0 if not running.
func (m *Manager) PID() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.cmd != nil && m.cmd.Process != nil {
		return m.cmd.Process.Pid
	}
	return 0
}
