// Package api serves the agent's read-only status API and a WebSocket
// stream of connector events.
//
// Endpoints:
//
//	GET /api/v1/health    liveness and version
//	GET /api/v1/status    connection state, event counters, runtime stats
//	GET /api/v1/entities  announced entities with their last state
//	GET /api/v1/ws        WebSocket event stream
//
// The server observes the connector through Observer(): every connection
// change, restart, handled message, announcement and state update updates
// the status counters and is pushed to WebSocket clients as
//
//	{"type":"event","event_type":"state.updated","timestamp":"...","payload":{...}}
//
// A client receives every event type unless it subscribes to a subset with
// {"type":"subscribe","payload":{"channels":["state.updated"]}}.
//
// There is no authentication. The default configuration binds to 127.0.0.1.
package api
