// Package reconcile enforces desired settings on Razer mice.
//
// The package is built around three pieces:
//
//   - Table: the desired-configuration table, default Settings plus
//     per-device overrides matched by serial or name.
//   - Diff: reads a device's current values and produces a Plan listing
//     exactly the properties that drifted, with current and desired values.
//   - Apply: performs the writes in a Plan, nothing more.
//
// Dry runs stop after Diff. A device that already matches its desired
// settings yields an empty Plan and no setter is ever called.
//
// The engine works against the Mouse interface rather than the openrazer
// client directly, so tests can drive it with a call-recording fake.
//
// Properties whose capability the device lacks are skipped. Properties a
// device can write but not read (setIdleTime without getIdleTime is common
// on wireless mice) are always planned, with the current value reported as
// "?".
package reconcile
