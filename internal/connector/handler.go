package connector

import "context"

// Handler is implemented by device logic driven by the connector.
//
// The connector calls Handler methods from a single goroutine in the order
// transport events arrive. Methods must return in bounded time.
type Handler interface {
	// Connected is called when the connection state changes. It may be
	// called repeatedly with the same state. An error ends Run.
	Connected(ctx context.Context, state bool) error

	// Restarted is called when Home Assistant announced a restart on the
	// status topic. The handler must re-announce its entities. An error ends Run.
	Restarted(ctx context.Context) error

	// Message is called for every inbound message inside the namespace.
	// The topic is namespace-relative, e.g. "switch/relay-1/set". Handlers
	// only receive topics they subscribed to and match them themselves.
	Message(ctx context.Context, topic string, payload []byte) error
}

// HandlerFuncs adapts plain functions to Handler. Nil fields are no-ops.
type HandlerFuncs struct {
	OnConnected func(ctx context.Context, state bool) error
	OnRestarted func(ctx context.Context) error
	OnMessage   func(ctx context.Context, topic string, payload []byte) error
}

// Connected calls OnConnected.
func (h HandlerFuncs) Connected(ctx context.Context, state bool) error {
	if h.OnConnected == nil {
		return nil
	}
	return h.OnConnected(ctx, state)
}

// Restarted calls OnRestarted.
func (h HandlerFuncs) Restarted(ctx context.Context) error {
	if h.OnRestarted == nil {
		return nil
	}
	return h.OnRestarted(ctx)
}

// Message calls OnMessage.
func (h HandlerFuncs) Message(ctx context.Context, topic string, payload []byte) error {
	if h.OnMessage == nil {
		return nil
	}
	return h.OnMessage(ctx, topic, payload)
}
