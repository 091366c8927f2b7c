package watch

import (
	"context"
	"time"
)

// PassFunc runs a single reconciliation pass.
type PassFunc func(ctx context.Context) error

// Logger defines the logging interface for the watcher.
type Logger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

// Watcher runs reconciliation passes on a fixed interval.
//
// A pass can also be triggered on demand via Trigger, which is how MQTT
// reconcile commands are wired in. A failed pass is logged and the loop
// continues; only context cancellation stops it.
type Watcher struct {
	interval time.Duration
	pass     PassFunc
	logger   Logger

	trigger chan struct{}
}

// New creates a watcher that runs pass every interval.
func New(interval time.Duration, pass PassFunc, logger Logger) *Watcher {
	return &Watcher{
		interval: interval,
		pass:     pass,
		logger:   logger,
		trigger:  make(chan struct{}, 1),
	}
}

// Trigger requests an immediate pass.
//
// Non-blocking: if a trigger is already pending, the request is
// coalesced into it. Safe to call from any goroutine, including MQTT
// message handlers.
func (w *Watcher) Trigger() {
	select {
	case w.trigger <- struct{}{}:
	default:
	}
}

// Run executes the watch loop until ctx is cancelled.
//
// An initial pass runs immediately; subsequent passes run on the
// interval or when triggered. Returns ctx.Err() on cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.runPass(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.runPass(ctx)
		case <-w.trigger:
			w.logger.Info("pass triggered on demand")
			w.runPass(ctx)
		}
	}
}

func (w *Watcher) runPass(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := w.pass(ctx); err != nil {
		w.logger.Error("reconciliation pass failed", "error", err)
	}
}
