package connector

import "errors"

// Domain-specific errors for connector operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrSerialization is returned when a discovery document cannot be encoded.
	ErrSerialization = errors.New("connector: serialization failed")

	// ErrTransport is returned when the underlying session rejects or fails an operation.
	ErrTransport = errors.New("connector: transport error")

	// ErrHandler wraps an error returned by Handler.Connected or Handler.Restarted.
	// It terminates Run.
	ErrHandler = errors.New("connector: handler error")

	// ErrNotConnected is returned when publishing or subscribing without an open connection.
	ErrNotConnected = errors.New("connector: not connected")

	// ErrInvalidTopic is returned when an empty topic is provided.
	ErrInvalidTopic = errors.New("connector: topic cannot be empty")

	// ErrInvalidQoS is returned when a QoS level other than 0, 1 or 2 is specified.
	ErrInvalidQoS = errors.New("connector: invalid QoS level (must be 0, 1, or 2)")

	// ErrInvalidOptions is returned by New when the options fail validation.
	ErrInvalidOptions = errors.New("connector: invalid options")

	// ErrForcedDisconnect is reported by a session after the connector dropped
	// the connection on purpose.
	ErrForcedDisconnect = errors.New("connector: forced disconnect")

	// ErrSessionClosed is returned by Poll after the session was closed.
	ErrSessionClosed = errors.New("connector: session closed")
)
