// Package entity keeps a SQLite ledger of the entities the agent has
// announced to Home Assistant and the last state it published for each.
//
// The ledger is written by Recorder, which plugs into the connector as an
// Observer, and read by the status API and by devices restoring their
// state after a restart.
//
// Topics stored here are namespace-relative:
//
//	entities.config_topic      binary_sensor/motion-1/config
//	entity_states.state_topic  binary_sensor/motion-1/state
package entity
