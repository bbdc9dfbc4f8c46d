package devices

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/nerrad567/hass-agent/internal/connector"
)

type doneToken struct{ err error }

func (t doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

func (t doneToken) Error() error { return t.err }

// recordSession is a connector.Session that reports every publish and
// subscribe on a channel.
type recordSession struct {
	calls chan string
}

func (s *recordSession) Poll(ctx context.Context) (connector.Event, error) {
	<-ctx.Done()
	return connector.Event{}, ctx.Err()
}

func (s *recordSession) Publish(topic string, _ byte, retained bool, payload []byte) connector.Token {
	s.calls <- fmt.Sprintf("publish %s %s", topic, payload)
	return doneToken{}
}

func (s *recordSession) Subscribe(topic string, qos byte) connector.Token {
	s.calls <- fmt.Sprintf("subscribe %s %d", topic, qos)
	return doneToken{}
}

func (s *recordSession) Disconnect() {}
func (s *recordSession) Close()      {}

// newTestClient returns a connector client whose session records calls.
func newTestClient(t *testing.T) (*connector.Client, *recordSession) {
	t.Helper()

	session := &recordSession{calls: make(chan string, 256)}
	conn, err := connector.New(
		connector.Options{Host: "broker.test"},
		func(*connector.Client) connector.Handler { return connector.HandlerFuncs{} },
		connector.WithSessionFactory(func(connector.Options, connector.Logger) (connector.Session, error) {
			return session, nil
		}),
	)
	if err != nil {
		t.Fatalf("connector.New() error = %v", err)
	}
	return conn.Client(), session
}

// expectCall waits for the next recorded call to equal want.
func (s *recordSession) expectCall(t *testing.T, want string) {
	t.Helper()
	select {
	case got := <-s.calls:
		if got != want {
			t.Fatalf("call = %q, want %q", got, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %q", want)
	}
}

// skipUntil discards calls until want is seen.
func (s *recordSession) skipUntil(t *testing.T, want string) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case got := <-s.calls:
			if got == want {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %q", want)
		}
	}
}
