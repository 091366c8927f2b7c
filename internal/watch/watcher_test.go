package watch

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type testLogger struct{}

func (testLogger) Info(string, ...any)  {}
func (testLogger) Error(string, ...any) {}

func TestRun_InitialPassAndCancellation(t *testing.T) {
	var passes atomic.Int32
	pass := func(context.Context) error {
		passes.Add(1)
		return nil
	}

	w := New(time.Hour, pass, testLogger{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// The initial pass runs without waiting for the first tick.
	waitFor(t, func() bool { return passes.Load() == 1 })

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run() error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return after cancellation")
	}
}

func TestRun_TriggerRunsPass(t *testing.T) {
	var passes atomic.Int32
	pass := func(context.Context) error {
		passes.Add(1)
		return nil
	}

	w := New(time.Hour, pass, testLogger{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx) //nolint:errcheck // Stopped via cancel

	waitFor(t, func() bool { return passes.Load() == 1 })

	w.Trigger()
	waitFor(t, func() bool { return passes.Load() == 2 })
}

func TestRun_FailedPassContinues(t *testing.T) {
	var passes atomic.Int32
	pass := func(context.Context) error {
		passes.Add(1)
		return errors.New("daemon went away")
	}

	w := New(10*time.Millisecond, pass, testLogger{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx) //nolint:errcheck // Stopped via cancel

	// Failures do not stop the loop; more passes keep coming.
	waitFor(t, func() bool { return passes.Load() >= 3 })
}

func TestTrigger_CoalescesPendingRequests(t *testing.T) {
	w := New(time.Hour, func(context.Context) error { return nil }, testLogger{})

	// Without a running loop, repeated triggers must not block.
	for i := 0; i < 10; i++ {
		w.Trigger()
	}

	if len(w.trigger) != 1 {
		t.Errorf("pending triggers = %d, want 1", len(w.trigger))
	}
}

// waitFor polls cond until it holds or the deadline expires.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}
