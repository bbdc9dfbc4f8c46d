package connector

import "context"

// EventKind identifies a transport event returned by Session.Poll.
type EventKind int

// Transport event kinds.
const (
	// EventOther is any event the connector does not act on.
	EventOther EventKind = iota

	// EventConnAck signals an established connection.
	EventConnAck

	// EventDisconnect signals that the connection was closed.
	EventDisconnect

	// EventPublish carries an inbound message.
	EventPublish
)

// String returns a readable name for the event kind.
func (k EventKind) String() string {
	switch k {
	case EventConnAck:
		return "connack"
	case EventDisconnect:
		return "disconnect"
	case EventPublish:
		return "publish"
	default:
		return "other"
	}
}

// Publish is an inbound message.
type Publish struct {
	Topic    string
	Payload  []byte
	QoS      byte
	Retained bool
}

// Event is one item of the session's event stream.
type Event struct {
	Kind    EventKind
	Publish Publish
}

// Token tracks completion of an asynchronous session operation.
// paho's Token satisfies it.
type Token interface {
	// Done is closed once the operation completed or failed.
	Done() <-chan struct{}

	// Error returns the result once Done is closed.
	Error() error
}

// Session is the transport the connector drives.
//
// Poll is only called from the connector's run loop. Publish, Subscribe and
// Disconnect may be called from any goroutine.
type Session interface {
	// Poll returns the next transport event. It (re)connects as needed, so a
	// disconnected session reports EventConnAck or an error on the next call.
	Poll(ctx context.Context) (Event, error)

	// Publish submits a message for delivery.
	Publish(topic string, qos byte, retained bool, payload []byte) Token

	// Subscribe registers topic for inbound delivery through Poll.
	Subscribe(topic string, qos byte) Token

	// Disconnect drops the current connection. Poll still returns messages
	// received before the drop, then reports ErrForcedDisconnect.
	Disconnect()

	// Close disconnects gracefully and releases the session.
	Close()
}

// SessionFactory creates the session for resolved options.
type SessionFactory func(opts Options, logger Logger) (Session, error)

// waitToken blocks until tok completes or ctx is done.
func waitToken(ctx context.Context, tok Token) error {
	select {
	case <-tok.Done():
		return tok.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// completedToken is a Token that is already done.
type completedToken struct {
	err error
}

var closedChan = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

func (t completedToken) Done() <-chan struct{} { return closedChan }
func (t completedToken) Error() error          { return t.err }
