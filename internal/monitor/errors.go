package monitor

import "errors"

// Domain-specific errors for the monitor.
var (
	// ErrNoClient is returned when no MQTT client is supplied.
	ErrNoClient = errors.New("monitor: MQTT client is required")

	// ErrNoOutput is returned when no output writer is supplied.
	ErrNoOutput = errors.New("monitor: output writer is required")

	// ErrInvalidFormat is returned for an unknown output format.
	ErrInvalidFormat = errors.New("monitor: unknown output format")
)
