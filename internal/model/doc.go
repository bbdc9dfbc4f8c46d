// Package model describes the entities a connector announces to Home Assistant.
//
// This package manages:
//   - Entity identity (DeviceID): component, optional node grouping, object id
//   - Topic derivation for the config, state and command topics of an entity
//   - The physical Device an entity belongs to
//   - The MQTT discovery document published on the config topic
//
// Nothing in this package performs I/O. Topic derivation is a pure function
// of (component, node id, object id, namespace prefix), so re-deriving a topic
// from the same inputs always yields the same string. Changing any of these
// inputs changes the topic and orphans the previously announced entity.
//
// # Topic layout
//
//	{prefix}/{component}/[{node_id}/]{object_id}/{config|state|set}
//
// The namespace prefix defaults to "homeassistant". The {prefix}/status topic
// is reserved for the broker-side birth/last-will of Home Assistant itself.
//
// # Encoding rules
//
// The discovery consumer treats "field absent" and "field null" differently
// for name and device_class, so those two fields are always encoded (as value
// or null). Every other optional field is omitted entirely when unset.
//
// # Usage
//
//	topics := model.NewTopics("homeassistant")
//	id := model.NewDeviceID("motion-1", model.BinarySensor(model.BinarySensorMotion))
//	dev := model.NewDevice("Hallway", "hallway-01")
//	doc := model.NewDiscovery(topics, id, dev)
//	// topics.Config(id) == "homeassistant/binary_sensor/motion-1/config"
package model
