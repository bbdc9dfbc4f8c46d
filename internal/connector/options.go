package connector

import (
	"crypto/rand"
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/hass-agent/internal/model"
)

// Connection defaults.
const (
	// DefaultPortTLS is used when TLS is enabled and no port is set.
	DefaultPortTLS = 8883

	// DefaultPort is used when TLS is disabled and no port is set.
	DefaultPort = 1883

	// DefaultKeepAlive is the keep-alive interval of the session.
	DefaultKeepAlive = 5 * time.Second

	// DefaultReconnectDelay is the fixed wait after a failed poll.
	DefaultReconnectDelay = 5 * time.Second

	// defaultConnectTimeout is the maximum time to wait for a connection attempt.
	defaultConnectTimeout = 10 * time.Second

	// defaultDisconnectQuiesce is the time to wait for pending operations on disconnect.
	defaultDisconnectQuiesce = 1000 // milliseconds

	// forcedDisconnectQuiesce is the quiesce period of a forced disconnect.
	forcedDisconnectQuiesce = 100 // milliseconds

	// clientIDLength is the MQTT 3.1 client id limit.
	clientIDLength = 23

	// maxQoS is the maximum QoS level supported.
	maxQoS = 2

	// tlsMinVersion is the minimum TLS version for secure connections.
	tlsMinVersion = tls.VersionTLS12
)

// Availability payloads published on the availability topic.
const (
	availabilityOnline  = "online"
	availabilityOffline = "offline"
)

// Options configures the connector. It is consumed once by New.
//
// Zero values select defaults: topic base "homeassistant", port 8883 with TLS
// or 1883 without, a random client id, and a 5 second keep-alive and
// reconnect delay.
type Options struct {
	// Host is the broker hostname. Required.
	Host string

	// Port is the broker port.
	Port int

	// ClientID identifies the session. Random when empty.
	ClientID string

	// Username and Password are optional credentials.
	Username string
	Password string

	// TopicBase is the discovery namespace prefix.
	TopicBase string

	// DisableTLS connects over plain TCP. TLS is used by default.
	DisableTLS bool

	// KeepAlive is the keep-alive interval.
	KeepAlive time.Duration

	// ReconnectDelay is the fixed wait after a connection error.
	ReconnectDelay time.Duration

	// ConnectTimeout bounds a single connection attempt.
	ConnectTimeout time.Duration

	// AvailabilityTopic, when set, receives a retained "online" after every
	// connect and is the last-will topic with a retained "offline".
	AvailabilityTopic string
}

// withDefaults returns a copy of o with all defaults resolved.
func (o Options) withDefaults() Options {
	if o.TopicBase == "" {
		o.TopicBase = model.DefaultTopicBase
	}
	if o.Port == 0 {
		if o.DisableTLS {
			o.Port = DefaultPort
		} else {
			o.Port = DefaultPortTLS
		}
	}
	if o.ClientID == "" {
		o.ClientID = randomClientID()
	}
	if o.KeepAlive <= 0 {
		o.KeepAlive = DefaultKeepAlive
	}
	if o.ReconnectDelay <= 0 {
		o.ReconnectDelay = DefaultReconnectDelay
	}
	if o.ConnectTimeout <= 0 {
		o.ConnectTimeout = defaultConnectTimeout
	}
	return o
}

// Validate checks the options for errors.
func (o Options) Validate() error {
	var errs []error

	if o.Host == "" {
		errs = append(errs, errors.New("host is required"))
	}
	if o.Port < 0 || o.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", o.Port))
	}
	if len(o.ClientID) > 65535 {
		errs = append(errs, errors.New("client id too long"))
	}
	if o.Password != "" && o.Username == "" {
		errs = append(errs, errors.New("password set without username"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidOptions, errors.Join(errs...))
	}
	return nil
}

// BrokerURL returns the broker address in paho form.
func (o Options) BrokerURL() string {
	scheme := "ssl"
	if o.DisableTLS {
		scheme = "tcp"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, o.Host, o.Port)
}

// randomClientID returns a 23 character client id. rand.Text draws from the
// base32 alphabet, so only upper-case letters and the digits 2-7 appear.
func randomClientID() string {
	return rand.Text()[:clientIDLength]
}

// buildClientOptions creates paho options from resolved connector options.
//
// Reconnection is driven by the connector's poll loop, so paho's own
// auto-reconnect and connect-retry are disabled. Subscriptions do not
// survive a reconnect; handlers subscribe again in Connected(true).
func buildClientOptions(o Options) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()
	opts.AddBroker(o.BrokerURL())
	opts.SetClientID(o.ClientID)

	if o.Username != "" {
		opts.SetUsername(o.Username)
		opts.SetPassword(o.Password)
	}

	opts.SetCleanSession(true)
	opts.SetAutoReconnect(false)
	opts.SetConnectRetry(false)
	opts.SetOrderMatters(true)
	opts.SetConnectTimeout(o.ConnectTimeout)
	opts.SetKeepAlive(o.KeepAlive)

	if !o.DisableTLS {
		opts.SetTLSConfig(&tls.Config{
			MinVersion: tlsMinVersion,
		})
	}

	if o.AvailabilityTopic != "" {
		configureLWT(opts, o.AvailabilityTopic)
	}

	return opts
}

// configureLWT sets the last will published by the broker if the session
// ends uncleanly.
//
// QoS: 1, Retained: true
func configureLWT(opts *pahomqtt.ClientOptions, topic string) {
	opts.SetWill(topic, availabilityOffline, 1, true)
}
