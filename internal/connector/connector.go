package connector

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nerrad567/hass-agent/internal/model"
)

// shutdownTimeout bounds the offline publish during shutdown.
const shutdownTimeout = 2 * time.Second

// Logger interface for optional logging support.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Option customises a Connector.
type Option func(*Connector)

// WithLogger sets the logger used by the connector and its client.
func WithLogger(logger Logger) Option {
	return func(c *Connector) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithObserver adds an observer. May be given more than once.
func WithObserver(observer Observer) Option {
	return func(c *Connector) {
		if observer != nil {
			c.observers = append(c.observers, observer)
		}
	}
}

// WithSessionFactory replaces the paho-backed session.
func WithSessionFactory(factory SessionFactory) Option {
	return func(c *Connector) {
		if factory != nil {
			c.newSession = factory
		}
	}
}

// Connector owns the session loop and drives a Handler.
type Connector struct {
	opts   Options
	topics model.Topics

	session Session
	client  *Client
	handler Handler

	logger     Logger
	observers  Observers
	newSession SessionFactory
}

// New validates opts, creates the session and builds the handler from the
// Client it will use.
//
// The session does not connect until Run is called.
func New(opts Options, factory func(*Client) Handler, options ...Option) (*Connector, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if factory == nil {
		return nil, fmt.Errorf("%w: handler factory is required", ErrInvalidOptions)
	}

	c := &Connector{
		opts:       opts.withDefaults(),
		logger:     noopLogger{},
		newSession: NewPahoSession,
	}
	for _, opt := range options {
		opt(c)
	}
	c.topics = model.NewTopics(c.opts.TopicBase)

	session, err := c.newSession(c.opts, c.logger)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	c.session = session

	c.client = newClient(session, c.topics, c.logger, c.observers)
	c.handler = factory(c.client)
	if c.handler == nil {
		session.Close()
		return nil, fmt.Errorf("%w: handler factory returned nil", ErrInvalidOptions)
	}

	return c, nil
}

// Client returns the client shared with the handler.
func (c *Connector) Client() *Client {
	return c.client
}

// ClientID returns the resolved client id.
func (c *Connector) ClientID() string {
	return c.opts.ClientID
}

// Run drives the session until a lifecycle callback fails or ctx is done.
//
// It returns an error wrapping ErrHandler when Handler.Connected or
// Handler.Restarted fails, and nil after ctx is cancelled. Before returning
// it publishes "offline" on the availability topic and closes the session.
func (c *Connector) Run(ctx context.Context) error {
	defer c.shutdown(ctx)

	c.logger.Info("connector starting",
		"broker", c.opts.BrokerURL(),
		"client_id", c.opts.ClientID,
		"topic_base", c.topics.Base(),
	)

	for {
		event, err := c.session.Poll(ctx)
		if ctx.Err() != nil {
			return nil
		}

		if err != nil {
			if errors.Is(err, ErrSessionClosed) {
				return err
			}
			c.logger.Warn("connection failed", "error", err, "retry_in", c.opts.ReconnectDelay)
			if err := c.setConnected(ctx, false); err != nil {
				return err
			}
			if !sleep(ctx, c.opts.ReconnectDelay) {
				return nil
			}
			continue
		}

		if err := c.dispatch(ctx, event); err != nil {
			return err
		}
	}
}

// dispatch handles one transport event.
func (c *Connector) dispatch(ctx context.Context, event Event) error {
	switch event.Kind {
	case EventConnAck:
		return c.handleConnAck(ctx)
	case EventDisconnect:
		c.logger.Info("disconnected")
		return c.setConnected(ctx, false)
	case EventPublish:
		return c.handlePublish(ctx, event.Publish)
	default:
		return nil
	}
}

func (c *Connector) handleConnAck(ctx context.Context) error {
	c.logger.Info("connected")

	subscribed := true
	if err := c.client.subscribe(ctx, c.topics.Status(), QoSAtLeastOnce); err != nil {
		c.logger.Warn("failed to subscribe to the status topic", "error", err)
		c.forceDisconnect()
		subscribed = false
	}

	if err := c.setConnected(ctx, true); err != nil {
		return err
	}

	if !subscribed {
		return nil
	}
	if topic := c.opts.AvailabilityTopic; topic != "" {
		if err := c.client.Publish(ctx, topic, []byte(availabilityOnline), QoSAtLeastOnce, true); err != nil {
			c.logger.Warn("failed to announce availability", "topic", topic, "error", err)
			c.forceDisconnect()
		}
	}
	return nil
}

func (c *Connector) handlePublish(ctx context.Context, msg Publish) error {
	if msg.Topic == c.topics.Status() {
		payload := toValidUTF8(msg.Payload)
		c.logger.Debug("status received", "payload", payload)
		if payload != model.StatusPayloadOnline {
			return nil
		}

		c.logger.Info("Home Assistant restart detected")
		c.observers.RestartDetected()
		if err := c.handler.Restarted(ctx); err != nil {
			return fmt.Errorf("%w: restarted: %w", ErrHandler, err)
		}
		return nil
	}

	topic, ok := c.topics.Strip(msg.Topic)
	if !ok {
		c.logger.Debug("ignoring message outside namespace", "topic", msg.Topic)
		return nil
	}

	c.logger.Debug("message received", "topic", topic, "qos", msg.QoS, "len", len(msg.Payload))
	err := c.handler.Message(ctx, topic, msg.Payload)
	c.observers.MessageReceived(topic, msg.QoS, err)
	if err == nil {
		return nil
	}

	if msg.QoS != QoSAtMostOnce {
		c.logger.Warn("failed to process message", "topic", topic, "qos", msg.QoS, "error", err)
		c.forceDisconnect()
		return nil
	}

	c.logger.Info("failed to process message, ignoring due to QoS", "topic", topic, "error", err)
	return nil
}

// setConnected notifies the handler and observers of a connection change.
func (c *Connector) setConnected(ctx context.Context, state bool) error {
	if err := c.handler.Connected(ctx, state); err != nil {
		return fmt.Errorf("%w: connected(%t): %w", ErrHandler, state, err)
	}
	c.observers.ConnectionChanged(state)
	return nil
}

func (c *Connector) forceDisconnect() {
	c.logger.Warn("forcing disconnect")
	c.session.Disconnect()
}

// shutdown publishes the offline marker and closes the session.
func (c *Connector) shutdown(ctx context.Context) {
	if topic := c.opts.AvailabilityTopic; topic != "" {
		pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		if err := c.client.Publish(pubCtx, topic, []byte(availabilityOffline), QoSAtLeastOnce, true); err != nil {
			c.logger.Debug("offline marker not published", "error", err)
		}
		cancel()
	}
	c.session.Close()
	c.logger.Info("connector stopped")
}

// sleep waits for d. It returns false if ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// toValidUTF8 decodes payload, replacing invalid sequences.
func toValidUTF8(payload []byte) string {
	return strings.ToValidUTF8(string(payload), "�")
}
