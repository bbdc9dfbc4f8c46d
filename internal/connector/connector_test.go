package connector

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"
)

var errDevice = errors.New("device failure")

type harness struct {
	journal *journal
	session *fakeSession
	handler *recordingHandler
	conn    *Connector
	ctx     context.Context
}

func newHarness(t *testing.T, opts Options, script ...step) *harness {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	j := &journal{}
	h := &harness{
		journal: j,
		session: newFakeSession(j, cancel, script...),
		handler: &recordingHandler{journal: j, connectedErr: map[bool]error{}},
		ctx:     ctx,
	}

	if opts.Host == "" {
		opts.Host = "broker.test"
	}
	if opts.ReconnectDelay == 0 {
		opts.ReconnectDelay = time.Millisecond
	}

	conn, err := New(opts, func(*Client) Handler { return h.handler }, WithSessionFactory(h.session.factory))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	h.conn = conn
	return h
}

func (h *harness) run(t *testing.T) error {
	t.Helper()
	return h.conn.Run(h.ctx)
}

// =============================================================================
// Connection Lifecycle Tests
// =============================================================================

func TestRunConnAck(t *testing.T) {
	h := newHarness(t, Options{}, connAck())

	if err := h.run(t); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := []string{
		"subscribe homeassistant/status qos=1",
		"connected true",
		"close",
	}
	if got := h.journal.list(); !reflect.DeepEqual(got, want) {
		t.Errorf("journal = %q, want %q", got, want)
	}
}

func TestRunConnAckPublishesAvailability(t *testing.T) {
	h := newHarness(t, Options{AvailabilityTopic: "agent/availability"}, connAck())

	if err := h.run(t); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := []string{
		"subscribe homeassistant/status qos=1",
		"connected true",
		"publish agent/availability online qos=1 retained=true",
		"publish agent/availability offline qos=1 retained=true",
		"close",
	}
	if got := h.journal.list(); !reflect.DeepEqual(got, want) {
		t.Errorf("journal = %q, want %q", got, want)
	}
}

func TestRunAvailabilityFailureForcesDisconnect(t *testing.T) {
	h := newHarness(t, Options{AvailabilityTopic: "agent/availability"}, connAck())
	h.session.publishErr["agent/availability"] = errors.New("queue full")

	if err := h.run(t); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if n := h.journal.count("disconnect"); n != 1 {
		t.Errorf("disconnect count = %d, want 1", n)
	}
}

func TestRunStatusSubscribeFailureForcesDisconnect(t *testing.T) {
	h := newHarness(t, Options{}, connAck(), pollError(ErrForcedDisconnect))
	h.session.subscribeErr["homeassistant/status"] = errors.New("rejected")

	if err := h.run(t); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := []string{
		"subscribe homeassistant/status qos=1",
		"disconnect",
		"connected true",
		"connected false",
		"close",
	}
	if got := h.journal.list(); !reflect.DeepEqual(got, want) {
		t.Errorf("journal = %q, want %q", got, want)
	}
	if n := h.journal.count("connected true"); n != 1 {
		t.Errorf("connected true count = %d, want 1", n)
	}
}

func TestRunStatusSubscribeFailureSkipsAvailability(t *testing.T) {
	h := newHarness(t, Options{AvailabilityTopic: "agent/availability"}, connAck(), pollError(ErrForcedDisconnect))
	h.session.subscribeErr["homeassistant/status"] = errors.New("rejected")

	if err := h.run(t); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if n := h.journal.count("connected true"); n != 1 {
		t.Errorf("connected true count = %d, want 1", n)
	}
	for _, entry := range h.journal.list() {
		if strings.HasPrefix(entry, "publish agent/availability") && strings.Contains(entry, "online") {
			t.Errorf("journal entry %q, want no online marker after a failed status subscribe", entry)
		}
	}
}

func TestRunDisconnectEvent(t *testing.T) {
	h := newHarness(t, Options{}, connAck(), disconnect(), connAck())

	if err := h.run(t); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if n := h.journal.count("connected true"); n != 2 {
		t.Errorf("connected true count = %d, want 2", n)
	}
	if n := h.journal.count("connected false"); n != 1 {
		t.Errorf("connected false count = %d, want 1", n)
	}
}

func TestRunPollErrorWaitsAndReports(t *testing.T) {
	delay := 20 * time.Millisecond
	h := newHarness(t, Options{ReconnectDelay: delay}, pollError(errors.New("dial tcp: refused")), connAck())

	start := time.Now()
	if err := h.run(t); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed < delay {
		t.Errorf("Run() returned after %v, want at least %v", elapsed, delay)
	}

	got := h.journal.list()
	if len(got) < 2 || got[0] != "connected false" || got[1] != "subscribe homeassistant/status qos=1" {
		t.Errorf("journal = %q, want connected false before reconnect", got)
	}
}

func TestRunCancelDuringDelay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	j := &journal{}
	session := newFakeSession(j, cancel, pollError(errors.New("refused")))
	handler := &recordingHandler{journal: j, connectedErr: map[bool]error{}}

	conn, err := New(Options{Host: "broker.test", ReconnectDelay: time.Hour},
		func(*Client) Handler { return handler }, WithSessionFactory(session.factory))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- conn.Run(ctx) }()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}

// =============================================================================
// Message Dispatch Tests
// =============================================================================

func TestRunStatusOnlineTriggersRestart(t *testing.T) {
	h := newHarness(t, Options{}, connAck(), publish("homeassistant/status", "online", 1))

	if err := h.run(t); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if n := h.journal.count("restarted"); n != 1 {
		t.Errorf("restarted count = %d, want 1", n)
	}
	for _, e := range h.journal.list() {
		if strings.HasPrefix(e, "message") {
			t.Errorf("unexpected message call %q", e)
		}
	}
}

func TestRunStatusOtherPayloadIgnored(t *testing.T) {
	h := newHarness(t, Options{}, connAck(), publish("homeassistant/status", "offline", 1))

	if err := h.run(t); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if n := h.journal.count("restarted"); n != 0 {
		t.Errorf("restarted count = %d, want 0", n)
	}
}

func TestRunMessageStripsNamespace(t *testing.T) {
	h := newHarness(t, Options{TopicBase: "ha"}, connAck(), publish("ha/switch/relay-1/set", "ON", 1))

	if err := h.run(t); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if n := h.journal.count("message switch/relay-1/set ON"); n != 1 {
		t.Errorf("message count = %d, want 1; journal = %q", n, h.journal.list())
	}
}

func TestRunMessageOutsideNamespaceSkipped(t *testing.T) {
	h := newHarness(t, Options{}, connAck(), publish("zigbee2mqtt/bridge/state", "online", 1))

	if err := h.run(t); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	for _, e := range h.journal.list() {
		if strings.HasPrefix(e, "message") {
			t.Errorf("unexpected message call %q", e)
		}
	}
}

func TestRunMessageFailureQoSGating(t *testing.T) {
	tests := []struct {
		name            string
		qos             byte
		wantDisconnects int
	}{
		{"qos 0 ignored", 0, 0},
		{"qos 1 disconnects", 1, 1},
		{"qos 2 disconnects", 2, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, Options{}, connAck(), publish("homeassistant/switch/relay-1/set", "ON", tt.qos))
			h.handler.messageErr = errDevice

			if err := h.run(t); err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if n := h.journal.count("disconnect"); n != tt.wantDisconnects {
				t.Errorf("disconnect count = %d, want %d", n, tt.wantDisconnects)
			}
		})
	}
}

// =============================================================================
// Fatal Handler Error Tests
// =============================================================================

func TestRunHandlerErrorsAreFatal(t *testing.T) {
	tests := []struct {
		name   string
		script []step
		setup  func(h *recordingHandler)
	}{
		{
			name:   "connected true",
			script: []step{connAck()},
			setup:  func(h *recordingHandler) { h.connectedErr[true] = errDevice },
		},
		{
			name:   "connected false on poll error",
			script: []step{pollError(errors.New("refused"))},
			setup:  func(h *recordingHandler) { h.connectedErr[false] = errDevice },
		},
		{
			name:   "connected false on disconnect",
			script: []step{connAck(), disconnect()},
			setup:  func(h *recordingHandler) { h.connectedErr[false] = errDevice },
		},
		{
			name:   "restarted",
			script: []step{connAck(), publish("homeassistant/status", "online", 0)},
			setup:  func(h *recordingHandler) { h.restartedErr = errDevice },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, Options{}, tt.script...)
			tt.setup(h.handler)

			err := h.run(t)
			if !errors.Is(err, ErrHandler) {
				t.Errorf("Run() error = %v, want ErrHandler", err)
			}
			if !errors.Is(err, errDevice) {
				t.Errorf("Run() error = %v, want wrapped device error", err)
			}
			if !h.session.closed {
				t.Error("session not closed after fatal error")
			}
		})
	}
}

// =============================================================================
// Construction Tests
// =============================================================================

func TestNewValidation(t *testing.T) {
	factory := func(*Client) Handler { return HandlerFuncs{} }

	if _, err := New(Options{}, factory); !errors.Is(err, ErrInvalidOptions) {
		t.Errorf("New() without host error = %v, want ErrInvalidOptions", err)
	}
	if _, err := New(Options{Host: "h"}, nil); !errors.Is(err, ErrInvalidOptions) {
		t.Errorf("New() without factory error = %v, want ErrInvalidOptions", err)
	}

	session := newFakeSession(&journal{}, func() {})
	nilFactory := func(*Client) Handler { return nil }
	if _, err := New(Options{Host: "h"}, nilFactory, WithSessionFactory(session.factory)); !errors.Is(err, ErrInvalidOptions) {
		t.Errorf("New() with nil handler error = %v, want ErrInvalidOptions", err)
	}
}

func TestNewResolvesDefaults(t *testing.T) {
	session := newFakeSession(&journal{}, func() {})
	conn, err := New(Options{Host: "h"}, func(*Client) Handler { return HandlerFuncs{} }, WithSessionFactory(session.factory))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if session.opts.Port != DefaultPortTLS {
		t.Errorf("Port = %d, want %d", session.opts.Port, DefaultPortTLS)
	}
	if len(conn.ClientID()) != clientIDLength {
		t.Errorf("ClientID() length = %d, want %d", len(conn.ClientID()), clientIDLength)
	}
	if got := conn.Client().Topics().Base(); got != "homeassistant" {
		t.Errorf("topic base = %q, want %q", got, "homeassistant")
	}
}
