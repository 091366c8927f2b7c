// Package watch turns the one-shot reconciliation pass into a loop.
//
// The watcher runs a pass immediately, then on a fixed interval, and
// additionally whenever Trigger is called (wired to the MQTT reconcile
// command). Pass failures are logged and the loop keeps going; the loop
// only stops when its context is cancelled.
package watch
