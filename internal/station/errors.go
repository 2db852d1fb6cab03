package station

import "errors"

// Domain-specific errors for the station simulator.
var (
	// ErrNoDialer is returned when no client factory is supplied.
	ErrNoDialer = errors.New("station: client dialer is required")

	// ErrCycleFailed wraps any failure inside a wake cycle.
	ErrCycleFailed = errors.New("station: cycle failed")
)
