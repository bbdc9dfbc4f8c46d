package connector

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nerrad567/hass-agent/internal/model"
)

// QoS levels used by the client.
const (
	QoSAtMostOnce  byte = 0
	QoSAtLeastOnce byte = 1
	QoSExactlyOnce byte = 2
)

// Client publishes and subscribes on behalf of device handlers.
//
// Topics passed to UpdateState and Subscribe are namespace-relative and are
// prefixed with the topic base. Publish takes an absolute topic.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
//   - No operation retries; reconnection is owned by the Connector.
type Client struct {
	session  Session
	topics   model.Topics
	logger   Logger
	observer Observer
}

func newClient(session Session, topics model.Topics, logger Logger, observer Observer) *Client {
	return &Client{
		session:  session,
		topics:   topics,
		logger:   logger,
		observer: observer,
	}
}

// Topics returns the namespace the client publishes under.
func (c *Client) Topics() model.Topics {
	return c.topics
}

// Topic resolves a namespace-relative topic.
func (c *Client) Topic(relative string) string {
	return c.topics.Resolve(relative)
}

// Publish sends a message to an absolute topic and waits until the
// transport accepted it.
//
// Returns:
//   - ErrInvalidTopic / ErrInvalidQoS for bad arguments
//   - ErrTransport wrapping the session error on failure
func (c *Client) Publish(ctx context.Context, topic string, payload []byte, qos byte, retained bool) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}

	if err := waitToken(ctx, c.session.Publish(topic, qos, retained, payload)); err != nil {
		return fmt.Errorf("%w: publish %s: %w", ErrTransport, topic, err)
	}
	return nil
}

// UpdateState publishes a state payload on a namespace-relative topic at
// QoS 1, not retained.
//
// The call does not wait for the broker. An error is returned only if the
// transport already rejected the message when UpdateState returns.
func (c *Client) UpdateState(_ context.Context, topic string, payload []byte) error {
	if topic == "" {
		return ErrInvalidTopic
	}

	abs := c.topics.Resolve(topic)
	c.logger.Debug("updating state", "topic", abs)

	tok := c.session.Publish(abs, QoSAtLeastOnce, false, payload)
	select {
	case <-tok.Done():
		if err := tok.Error(); err != nil {
			c.logger.Warn("failed to publish state", "topic", abs, "error", err)
			return fmt.Errorf("%w: publish %s: %w", ErrTransport, abs, err)
		}
	default:
	}

	c.observer.StateUpdated(topic, payload)
	return nil
}

// Announce publishes the discovery document of id on its config topic at
// QoS 1, not retained, and waits until the transport accepted it.
func (c *Client) Announce(ctx context.Context, id model.DeviceID, doc *model.Discovery) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrSerialization, id, err)
	}

	topic := c.topics.Config(id)
	c.logger.Info("announcing entity", "id", id.ID, "topic", topic)

	if err := waitToken(ctx, c.session.Publish(topic, QoSAtLeastOnce, false, data)); err != nil {
		return fmt.Errorf("%w: announce %s: %w", ErrTransport, id, err)
	}

	c.observer.Announced(id, doc)
	return nil
}

// Subscribe registers a namespace-relative topic for delivery to
// Handler.Message and waits for the transport's acknowledgment.
func (c *Client) Subscribe(ctx context.Context, topic string, qos byte) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	return c.subscribe(ctx, c.topics.Resolve(topic), qos)
}

// subscribe registers an absolute topic.
func (c *Client) subscribe(ctx context.Context, topic string, qos byte) error {
	if qos > maxQoS {
		return ErrInvalidQoS
	}

	c.logger.Info("subscribing", "topic", topic)
	if err := waitToken(ctx, c.session.Subscribe(topic, qos)); err != nil {
		return fmt.Errorf("%w: subscribe %s: %w", ErrTransport, topic, err)
	}
	return nil
}
