// Package influxdb writes connector telemetry to InfluxDB.
//
// Client wraps the official influxdb-client-go v2 library: it verifies the
// server on Connect and queues points on the batched, non-blocking write
// API. Telemetry is a connector.Observer that turns connector activity into
// two measurements:
//
//	connector_events  tag event (connected, disconnected, restarted,
//	                  message, message_failed, announced); fields count, topic
//	entity_states     tag topic; fields payload and, for numeric or ON/OFF
//	                  payloads, value
//
// Usage:
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	observers = append(observers, influxdb.NewTelemetry(client))
//
// Write failures are delivered asynchronously to the callback set with
// SetOnError. Connection and health check errors are returned directly.
package influxdb
