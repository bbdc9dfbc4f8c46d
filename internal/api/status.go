package api

import (
	"sync"
	"time"

	"github.com/nerrad567/hass-agent/internal/model"
)

// Counters are cumulative connector event counts.
type Counters struct {
	Connects        uint64 `json:"connects"`
	Disconnects     uint64 `json:"disconnects"`
	Restarts        uint64 `json:"restarts"`
	Messages        uint64 `json:"messages"`
	MessageFailures uint64 `json:"message_failures"`
	Announcements   uint64 `json:"announcements"`
	StateUpdates    uint64 `json:"state_updates"`
}

// StatusSnapshot is a point-in-time copy of a StatusTracker.
type StatusSnapshot struct {
	Connected  bool       `json:"connected"`
	LastChange *time.Time `json:"last_change,omitempty"`
	Counters   Counters   `json:"counters"`
}

// StatusTracker counts connector events. It implements connector.Observer
// and is safe for concurrent use.
type StatusTracker struct {
	now func() time.Time

	mu         sync.RWMutex
	connected  bool
	lastChange time.Time
	counters   Counters
}

// NewStatusTracker returns a tracker in the disconnected state.
func NewStatusTracker() *StatusTracker {
	return &StatusTracker{now: time.Now}
}

// ConnectionChanged records a connection state change. Reports that do not
// change the state are ignored.
func (t *StatusTracker) ConnectionChanged(connected bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if connected == t.connected {
		return
	}
	t.connected = connected
	t.lastChange = t.now().UTC()
	if connected {
		t.counters.Connects++
	} else {
		t.counters.Disconnects++
	}
}

// RestartDetected counts a Home Assistant restart.
func (t *StatusTracker) RestartDetected() {
	t.mu.Lock()
	t.counters.Restarts++
	t.mu.Unlock()
}

// MessageReceived counts a handled message, or a failure if err is set.
func (t *StatusTracker) MessageReceived(_ string, _ byte, err error) {
	t.mu.Lock()
	t.counters.Messages++
	if err != nil {
		t.counters.MessageFailures++
	}
	t.mu.Unlock()
}

// Announced counts a discovery announcement.
func (t *StatusTracker) Announced(model.DeviceID, *model.Discovery) {
	t.mu.Lock()
	t.counters.Announcements++
	t.mu.Unlock()
}

// StateUpdated counts a state update.
func (t *StatusTracker) StateUpdated(string, []byte) {
	t.mu.Lock()
	t.counters.StateUpdates++
	t.mu.Unlock()
}

// Snapshot returns the current state.
func (t *StatusTracker) Snapshot() StatusSnapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	snap := StatusSnapshot{
		Connected: t.connected,
		Counters:  t.counters,
	}
	if !t.lastChange.IsZero() {
		lc := t.lastChange
		snap.LastChange = &lc
	}
	return snap
}
