package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/nerrad567/hass-agent/internal/connector"
	"github.com/nerrad567/hass-agent/internal/model"
)

// PointWriter accepts points for asynchronous delivery. *Client and the
// library's api.WriteAPI both implement it.
type PointWriter interface {
	WritePoint(p *write.Point)
}

// Telemetry records connector activity as InfluxDB points.
//
// It implements connector.Observer. Writes never block the connector.
type Telemetry struct {
	w   PointWriter
	now func() time.Time
}

// NewTelemetry returns a Telemetry observer writing to w.
func NewTelemetry(w PointWriter) *Telemetry {
	return &Telemetry{w: w, now: time.Now}
}

// ConnectionChanged records connected or disconnected.
func (t *Telemetry) ConnectionChanged(connected bool) {
	event := EventDisconnected
	if connected {
		event = EventConnected
	}
	t.w.WritePoint(eventPoint(event, "", t.now()))
}

// RestartDetected records a Home Assistant restart.
func (t *Telemetry) RestartDetected() {
	t.w.WritePoint(eventPoint(EventRestarted, "", t.now()))
}

// MessageReceived records a handled or failed message.
func (t *Telemetry) MessageReceived(topic string, _ byte, err error) {
	event := EventMessage
	if err != nil {
		event = EventMessageFailed
	}
	t.w.WritePoint(eventPoint(event, topic, t.now()))
}

// Announced records a discovery announcement.
func (t *Telemetry) Announced(id model.DeviceID, _ *model.Discovery) {
	t.w.WritePoint(eventPoint(EventAnnounced, id.ConfigTopic(), t.now()))
}

// StateUpdated records the published payload.
func (t *Telemetry) StateUpdated(topic string, payload []byte) {
	t.w.WritePoint(statePoint(topic, payload, t.now()))
}

var _ connector.Observer = (*Telemetry)(nil)
