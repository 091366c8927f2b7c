package reconcile

import "errors"

// Domain errors for the reconcile package. Check with errors.Is().
var (
	// ErrInvalidSettings is returned when settings validation fails.
	ErrInvalidSettings = errors.New("reconcile: invalid settings")

	// ErrInvalidOverride is returned when an override has no device selector.
	ErrInvalidOverride = errors.New("reconcile: override must set serial or name")
)
