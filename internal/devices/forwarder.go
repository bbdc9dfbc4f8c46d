package devices

import (
	"context"
	"sync"

	"github.com/nerrad567/hass-agent/internal/connector"
)

// forwardBufferSize is the capacity of the Forwarder event channel.
const forwardBufferSize = 8

// EventKind identifies a forwarded handler callback.
type EventKind int

// Forwarded event kinds.
const (
	EventConnection EventKind = iota + 1
	EventRestarted
	EventMessage
)

// String returns a readable name for the event kind.
func (k EventKind) String() string {
	switch k {
	case EventConnection:
		return "connection"
	case EventRestarted:
		return "restarted"
	case EventMessage:
		return "message"
	default:
		return "unknown"
	}
}

// Event is one forwarded callback.
type Event struct {
	Kind EventKind

	// Connected is set for EventConnection.
	Connected bool

	// Topic and Payload are set for EventMessage. Topic is namespace-relative.
	Topic   string
	Payload []byte
}

// ConsumeFunc processes forwarded events until the channel is closed or
// ctx is done.
type ConsumeFunc func(ctx context.Context, events <-chan Event, client *connector.Client) error

// Forwarder is a Handler that forwards every callback as an Event.
//
// Callbacks block while the channel is full. Once the consumer returns,
// callbacks fail with ErrStopped, which ends the connector run for
// Connected and Restarted.
type Forwarder struct {
	events chan Event
	done   chan struct{}

	mu  sync.Mutex
	err error
}

// NewForwarder starts consume in a goroutine and returns the handler feeding it.
func NewForwarder(ctx context.Context, client *connector.Client, consume ConsumeFunc) *Forwarder {
	f := &Forwarder{
		events: make(chan Event, forwardBufferSize),
		done:   make(chan struct{}),
	}

	go func() {
		defer close(f.done)
		err := consume(ctx, f.events, client)
		f.mu.Lock()
		f.err = err
		f.mu.Unlock()
	}()

	return f
}

// Connected forwards a connection change.
func (f *Forwarder) Connected(ctx context.Context, state bool) error {
	return f.send(ctx, Event{Kind: EventConnection, Connected: state})
}

// Restarted forwards a restart notification.
func (f *Forwarder) Restarted(ctx context.Context) error {
	return f.send(ctx, Event{Kind: EventRestarted})
}

// Message forwards an inbound message.
func (f *Forwarder) Message(ctx context.Context, topic string, payload []byte) error {
	return f.send(ctx, Event{Kind: EventMessage, Topic: topic, Payload: payload})
}

// Close closes the event channel and waits for the consumer.
// The handler must not be used afterwards.
func (f *Forwarder) Close() error {
	close(f.events)
	<-f.done
	return f.Err()
}

// Err returns the consumer's result once it has returned.
func (f *Forwarder) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (f *Forwarder) send(ctx context.Context, event Event) error {
	select {
	case <-f.done:
		return ErrStopped
	default:
	}

	select {
	case f.events <- event:
		return nil
	case <-f.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LogEvents is a ConsumeFunc that logs every event.
func LogEvents(logger Logger) ConsumeFunc {
	if logger == nil {
		logger = noopLogger{}
	}
	return func(ctx context.Context, events <-chan Event, _ *connector.Client) error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case event, ok := <-events:
				if !ok {
					logger.Info("event stream closed")
					return nil
				}
				logger.Info("event",
					"kind", event.Kind.String(),
					"connected", event.Connected,
					"topic", event.Topic,
					"len", len(event.Payload),
				)
			}
		}
	}
}
