package connector

import (
	"context"
	"fmt"
	"sync"
)

// step is one scripted Poll result.
type step struct {
	event Event
	err   error
}

func connAck() step { return step{event: Event{Kind: EventConnAck}} }

func disconnect() step { return step{event: Event{Kind: EventDisconnect}} }

func publish(topic, payload string, qos byte) step {
	return step{event: Event{Kind: EventPublish, Publish: Publish{Topic: topic, Payload: []byte(payload), QoS: qos}}}
}

func pollError(err error) step { return step{err: err} }

// journal records calls from the session and the handler in order.
type journal struct {
	mu      sync.Mutex
	entries []string
}

func (j *journal) add(format string, args ...any) {
	j.mu.Lock()
	j.entries = append(j.entries, fmt.Sprintf(format, args...))
	j.mu.Unlock()
}

func (j *journal) list() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.entries...)
}

func (j *journal) count(entry string) int {
	n := 0
	for _, e := range j.list() {
		if e == entry {
			n++
		}
	}
	return n
}

// fakeSession replays a script and records every call. Once the script is
// exhausted, Poll cancels the run context.
type fakeSession struct {
	journal *journal
	cancel  context.CancelFunc

	mu           sync.Mutex
	script       []step
	subscribeErr map[string]error
	publishErr   map[string]error
	closed       bool
	opts         Options
}

func newFakeSession(j *journal, cancel context.CancelFunc, script ...step) *fakeSession {
	return &fakeSession{
		journal:      j,
		cancel:       cancel,
		script:       script,
		subscribeErr: make(map[string]error),
		publishErr:   make(map[string]error),
	}
}

func (s *fakeSession) factory(opts Options, _ Logger) (Session, error) {
	s.opts = opts
	return s, nil
}

func (s *fakeSession) Poll(ctx context.Context) (Event, error) {
	s.mu.Lock()
	if len(s.script) == 0 {
		s.mu.Unlock()
		s.cancel()
		<-ctx.Done()
		return Event{}, ctx.Err()
	}
	next := s.script[0]
	s.script = s.script[1:]
	s.mu.Unlock()
	return next.event, next.err
}

func (s *fakeSession) Publish(topic string, qos byte, retained bool, payload []byte) Token {
	s.journal.add("publish %s %s qos=%d retained=%t", topic, payload, qos, retained)
	s.mu.Lock()
	defer s.mu.Unlock()
	return completedToken{err: s.publishErr[topic]}
}

func (s *fakeSession) Subscribe(topic string, qos byte) Token {
	s.journal.add("subscribe %s qos=%d", topic, qos)
	s.mu.Lock()
	defer s.mu.Unlock()
	return completedToken{err: s.subscribeErr[topic]}
}

func (s *fakeSession) Disconnect() {
	s.journal.add("disconnect")
}

func (s *fakeSession) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.journal.add("close")
}

// recordingHandler journals every callback and returns configured errors.
type recordingHandler struct {
	journal      *journal
	connectedErr map[bool]error
	restartedErr error
	messageErr   error
}

func (h *recordingHandler) Connected(_ context.Context, state bool) error {
	h.journal.add("connected %t", state)
	return h.connectedErr[state]
}

func (h *recordingHandler) Restarted(context.Context) error {
	h.journal.add("restarted")
	return h.restartedErr
}

func (h *recordingHandler) Message(_ context.Context, topic string, payload []byte) error {
	h.journal.add("message %s %s", topic, payload)
	return h.messageErr
}
