package entity

import (
	"context"
	"sync"
	"time"

	"github.com/nerrad567/hass-agent/internal/connector"
	"github.com/nerrad567/hass-agent/internal/model"
)

// recordTimeout bounds each ledger write.
const recordTimeout = 2 * time.Second

// recordQueueSize is the number of writes buffered for the writer goroutine.
const recordQueueSize = 256

// Logger is the logging interface used by Recorder.
type Logger interface {
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Warn(string, ...any) {}

// record is one queued ledger write. Exactly one of doc and payload is used.
type record struct {
	id      model.DeviceID
	doc     *model.Discovery
	topic   string
	payload []byte
}

// Recorder writes announcements and state updates into a Repository.
//
// It implements connector.Observer. Writes are queued and applied by a
// single goroutine in call order, so the observer hooks never wait on
// SQLite. When the queue is full the write is dropped and logged. Write
// failures are logged and never reach the connector.
type Recorder struct {
	connector.NopObserver

	repo   Repository
	logger Logger

	mu     sync.RWMutex
	closed bool
	queue  chan record
	done   chan struct{}
}

// NewRecorder returns a Recorder writing to repo and starts its writer
// goroutine. logger may be nil. Call Close to flush and stop it.
func NewRecorder(repo Repository, logger Logger) *Recorder {
	return newRecorder(repo, logger, recordQueueSize)
}

func newRecorder(repo Repository, logger Logger, size int) *Recorder {
	if logger == nil {
		logger = noopLogger{}
	}
	r := &Recorder{
		repo:   repo,
		logger: logger,
		queue:  make(chan record, size),
		done:   make(chan struct{}),
	}
	go r.run()
	return r
}

// Announced queues the discovery document for recording.
func (r *Recorder) Announced(id model.DeviceID, doc *model.Discovery) {
	if doc == nil {
		return
	}
	r.enqueue(record{id: id, doc: doc})
}

// StateUpdated queues payload as the last state of topic.
func (r *Recorder) StateUpdated(topic string, payload []byte) {
	r.enqueue(record{topic: topic, payload: append([]byte(nil), payload...)})
}

// Close applies the queued writes and stops the writer goroutine. Later
// notifications are ignored.
func (r *Recorder) Close() {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()
	<-r.done
}

func (r *Recorder) enqueue(rec record) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return
	}

	select {
	case r.queue <- rec:
	default:
		r.logger.Warn("ledger queue full, dropping write", "topic", rec.logTopic())
	}
}

func (r *Recorder) run() {
	defer close(r.done)
	for rec := range r.queue {
		r.write(rec)
	}
}

func (r *Recorder) write(rec record) {
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	if rec.doc != nil {
		if err := r.repo.RecordAnnouncement(ctx, rec.id, rec.doc); err != nil {
			r.logger.Warn("recording announcement failed", "topic", rec.logTopic(), "error", err)
		}
		return
	}
	if err := r.repo.SaveState(ctx, rec.topic, rec.payload); err != nil {
		r.logger.Warn("recording state failed", "topic", rec.topic, "error", err)
	}
}

func (rec record) logTopic() string {
	if rec.doc != nil {
		return rec.id.ConfigTopic()
	}
	return rec.topic
}
