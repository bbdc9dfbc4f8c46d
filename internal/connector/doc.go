// Package connector maintains the MQTT session of a Home Assistant agent and
// dispatches connection and message events to a device Handler.
//
// This package manages:
//   - The connection lifecycle (connect, fixed-delay reconnect, forced disconnect)
//   - Restart detection via the reserved {base}/status topic
//   - Ordered, single-goroutine dispatch of events to the Handler
//   - An optional availability topic with a retained "offline" last will
//   - A Client handle for publishing state, announcing entities and subscribing
//
// # Lifecycle
//
//	Disconnected ──poll──▶ Connecting ──ConnAck──▶ Connected
//	      ▲                    │                       │
//	      └──── 5s delay ◀─ error ◀── error / forced disconnect
//
// On ConnAck the connector subscribes to {base}/status. If that fails, the
// connection is dropped and Handler.Connected(true) is still called, followed
// by Connected(false) once the session reports the drop. Messages on
// the status topic with payload "online" call Handler.Restarted; all other
// messages inside the namespace reach Handler.Message with the namespace
// stripped from the topic.
//
// A Handler.Message error on a QoS 1 or 2 delivery forces a disconnect. At
// QoS 0 it is logged and ignored. Errors from Connected and Restarted end Run.
//
// # Concurrency
//
// Handler methods are never called concurrently and must return in bounded
// time. The Client is safe for concurrent use; devices that need background
// work start their own goroutines and talk to the handler over a channel.
//
// # Usage
//
//	conn, err := connector.New(opts, func(c *connector.Client) connector.Handler {
//	    return devices.NewMotionSwitch(c, cfg)
//	}, connector.WithLogger(log))
//	if err != nil {
//	    return err
//	}
//	return conn.Run(ctx)
package connector
