package connector

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

// eventBufferSize is the capacity of the inbound event queue.
const eventBufferSize = 128

// sessionItem is one queued Poll result.
type sessionItem struct {
	event Event
	err   error
}

// pahoSession adapts paho's callback API to the Session poll model.
//
// Inbound messages and connection loss are queued by paho's callbacks and
// returned by Poll in arrival order. Subscriptions use a nil callback, so
// every message reaches the default publish handler.
type pahoSession struct {
	client pahomqtt.Client
	logger Logger

	events    chan sessionItem
	closed    chan struct{}
	closeOnce sync.Once

	// forced is set by Disconnect and consumed by the next Poll.
	forced atomic.Bool
}

// NewPahoSession returns a Session backed by paho.mqtt.golang.
func NewPahoSession(opts Options, logger Logger) (Session, error) {
	if logger == nil {
		logger = noopLogger{}
	}

	s := &pahoSession{
		logger: logger,
		events: make(chan sessionItem, eventBufferSize),
		closed: make(chan struct{}),
	}

	popts := buildClientOptions(opts)
	popts.SetDefaultPublishHandler(s.onMessage)
	popts.SetConnectionLostHandler(s.onConnectionLost)

	s.client = pahomqtt.NewClient(popts)
	return s, nil
}

// Poll returns queued events first, then connects if no connection is open,
// then waits for the next event.
func (s *pahoSession) Poll(ctx context.Context) (Event, error) {
	if s.forced.Load() {
		return s.pollForced()
	}

	select {
	case item := <-s.events:
		return item.event, item.err
	default:
	}

	select {
	case <-s.closed:
		return Event{}, ErrSessionClosed
	default:
	}

	if !s.client.IsConnectionOpen() {
		if err := waitToken(ctx, s.client.Connect()); err != nil {
			return Event{}, fmt.Errorf("%w: connect: %w", ErrTransport, err)
		}
		return Event{Kind: EventConnAck}, nil
	}

	select {
	case item := <-s.events:
		return item.event, item.err
	case <-s.closed:
		return Event{}, ErrSessionClosed
	case <-ctx.Done():
		return Event{}, ctx.Err()
	}
}

// Publish submits a message. The payload is copied by paho.
func (s *pahoSession) Publish(topic string, qos byte, retained bool, payload []byte) Token {
	if !s.client.IsConnectionOpen() {
		return completedToken{err: ErrNotConnected}
	}
	return s.client.Publish(topic, qos, retained, payload)
}

// Subscribe registers topic with the default publish handler.
func (s *pahoSession) Subscribe(topic string, qos byte) Token {
	if !s.client.IsConnectionOpen() {
		return completedToken{err: ErrNotConnected}
	}
	return s.client.Subscribe(topic, qos, nil)
}

// Disconnect drops the connection without waiting for in-flight work.
func (s *pahoSession) Disconnect() {
	s.forced.Store(true)
	if s.client.IsConnectionOpen() {
		s.client.Disconnect(forcedDisconnectQuiesce)
	}
}

// Close disconnects gracefully. Poll returns ErrSessionClosed afterwards.
func (s *pahoSession) Close() {
	s.closeOnce.Do(func() {
		close(s.closed)
		if s.client.IsConnectionOpen() {
			s.client.Disconnect(defaultDisconnectQuiesce)
		}
	})
}

func (s *pahoSession) onMessage(_ pahomqtt.Client, msg pahomqtt.Message) {
	s.push(sessionItem{event: Event{
		Kind: EventPublish,
		Publish: Publish{
			Topic:    msg.Topic(),
			Payload:  msg.Payload(),
			QoS:      msg.Qos(),
			Retained: msg.Retained(),
		},
	}})
}

func (s *pahoSession) onConnectionLost(_ pahomqtt.Client, err error) {
	s.logger.Warn("MQTT connection lost", "error", err)
	s.push(sessionItem{event: Event{Kind: EventDisconnect}})
}

// push queues an item. It blocks while the queue is full so that no
// QoS 1/2 message is dropped, and gives up once the session is closed.
func (s *pahoSession) push(item sessionItem) {
	select {
	case s.events <- item:
	case <-s.closed:
	}
}

// pollForced returns the messages queued before a forced disconnect and
// reports ErrForcedDisconnect once none are left. paho has already
// acknowledged them, so the broker will not deliver them again. Connection
// events of the dropped connection are discarded.
func (s *pahoSession) pollForced() (Event, error) {
	for {
		select {
		case item := <-s.events:
			if item.event.Kind == EventPublish {
				return item.event, item.err
			}
		default:
			s.forced.Store(false)
			return Event{}, ErrForcedDisconnect
		}
	}
}
