package connector

import "github.com/nerrad567/hass-agent/internal/model"

// Observer receives notifications about connector activity.
//
// Announced and StateUpdated are called from whichever goroutine uses the
// Client, so implementations must be safe for concurrent use. Observers
// must not block: hand slow work such as storage writes to a goroutine.
type Observer interface {
	// ConnectionChanged is called after Handler.Connected returned.
	ConnectionChanged(connected bool)

	// RestartDetected is called when Home Assistant announced a restart.
	RestartDetected()

	// MessageReceived is called after Handler.Message returned. topic is
	// namespace-relative; err is the handler result.
	MessageReceived(topic string, qos byte, err error)

	// Announced is called after a discovery document was published.
	Announced(id model.DeviceID, doc *model.Discovery)

	// StateUpdated is called after a state update was submitted. topic is
	// namespace-relative.
	StateUpdated(topic string, payload []byte)
}

// Observers fans notifications out to every member in order.
type Observers []Observer

// ConnectionChanged notifies all observers.
func (o Observers) ConnectionChanged(connected bool) {
	for _, obs := range o {
		obs.ConnectionChanged(connected)
	}
}

// RestartDetected notifies all observers.
func (o Observers) RestartDetected() {
	for _, obs := range o {
		obs.RestartDetected()
	}
}

// MessageReceived notifies all observers.
func (o Observers) MessageReceived(topic string, qos byte, err error) {
	for _, obs := range o {
		obs.MessageReceived(topic, qos, err)
	}
}

// Announced notifies all observers.
func (o Observers) Announced(id model.DeviceID, doc *model.Discovery) {
	for _, obs := range o {
		obs.Announced(id, doc)
	}
}

// StateUpdated notifies all observers.
func (o Observers) StateUpdated(topic string, payload []byte) {
	for _, obs := range o {
		obs.StateUpdated(topic, payload)
	}
}

// NopObserver ignores all notifications. Embed it to implement a subset.
type NopObserver struct{}

func (NopObserver) ConnectionChanged(bool)                     {}
func (NopObserver) RestartDetected()                           {}
func (NopObserver) MessageReceived(string, byte, error)        {}
func (NopObserver) Announced(model.DeviceID, *model.Discovery) {}
func (NopObserver) StateUpdated(string, []byte)                {}
