package devices

import "errors"

var (
	// ErrStopped is returned when a handler's worker goroutine has exited.
	ErrStopped = errors.New("devices: worker stopped")

	// ErrInvalidConfig is returned when a device configuration is incomplete.
	ErrInvalidConfig = errors.New("devices: invalid configuration")
)
