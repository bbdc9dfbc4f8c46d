package influxdb

import (
	"strconv"
	"strings"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names.
const (
	MeasurementConnectorEvents = "connector_events"
	MeasurementEntityStates    = "entity_states"
)

// Values of the event tag on connector_events.
const (
	EventConnected     = "connected"
	EventDisconnected  = "disconnected"
	EventRestarted     = "restarted"
	EventMessage       = "message"
	EventMessageFailed = "message_failed"
	EventAnnounced     = "announced"
)

// eventPoint builds a connector_events point. topic is stored as a field
// when set, to keep tag cardinality down.
func eventPoint(event, topic string, ts time.Time) *write.Point {
	fields := map[string]interface{}{
		"count": 1,
	}
	if topic != "" {
		fields["topic"] = topic
	}
	return write.NewPoint(
		MeasurementConnectorEvents,
		map[string]string{"event": event},
		fields,
		ts,
	)
}

// statePoint builds an entity_states point. A numeric value field is added
// when the payload is a number or ON/OFF.
func statePoint(topic string, payload []byte, ts time.Time) *write.Point {
	fields := map[string]interface{}{
		"payload": string(payload),
	}
	if v, ok := stateValue(string(payload)); ok {
		fields["value"] = v
	}
	return write.NewPoint(
		MeasurementEntityStates,
		map[string]string{"topic": topic},
		fields,
		ts,
	)
}

// stateValue maps ON to 1, OFF to 0 and numeric payloads to their value.
func stateValue(payload string) (float64, bool) {
	switch strings.ToUpper(strings.TrimSpace(payload)) {
	case "ON":
		return 1, true
	case "OFF":
		return 0, true
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(payload), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
