package model

import "strings"

// Topic suffixes for per-entity topics.
const (
	SuffixConfig  = "config"
	SuffixState   = "state"
	SuffixCommand = "set"
)

// DeviceID identifies one logical entity.
//
// ID must be unique within the (component, node id) scope. A DeviceID is
// built once at startup and never modified; every topic it yields is derived
// from its fields.
type DeviceID struct {
	// ID is the object id of the entity.
	ID string

	// Component is the platform (and device class) of the entity.
	Component Component

	// NodeID optionally groups entities below the component segment.
	// Empty means no node grouping.
	NodeID string
}

// NewDeviceID returns a DeviceID without node grouping.
func NewDeviceID(id string, component Component) DeviceID {
	return DeviceID{ID: id, Component: component}
}

// NewDeviceIDWithNode returns a DeviceID grouped below nodeID.
func NewDeviceIDWithNode(id string, component Component, nodeID string) DeviceID {
	return DeviceID{ID: id, Component: component, NodeID: nodeID}
}

// String returns the object id.
func (d DeviceID) String() string {
	return d.ID
}

// ConfigTopic returns the namespace-relative discovery topic.
//
// Example: binary_sensor/motion-1/config
func (d DeviceID) ConfigTopic() string {
	return EntityTopic(d.Component.Kind(), d.NodeID, d.ID, SuffixConfig)
}

// StateTopic returns the namespace-relative state topic, or false if the
// component does not publish state.
//
// Example: switch/lab/relay-1/state
func (d DeviceID) StateTopic() (string, bool) {
	if !d.Component.Kind().HasState() {
		return "", false
	}
	return EntityTopic(d.Component.Kind(), d.NodeID, d.ID, SuffixState), true
}

// CommandTopic returns the namespace-relative command topic, or false if the
// component does not accept commands.
//
// Example: switch/lab/relay-1/set
func (d DeviceID) CommandTopic() (string, bool) {
	if !d.Component.Kind().HasCommand() {
		return "", false
	}
	return EntityTopic(d.Component.Kind(), d.NodeID, d.ID, SuffixCommand), true
}

// EntityTopic formats {kind}/[{nodeID}/]{id}/{suffix}.
// The node segment and its separator are omitted when nodeID is empty.
func EntityTopic(kind Kind, nodeID, id, suffix string) string {
	var b strings.Builder
	b.Grow(len(kind) + len(nodeID) + len(id) + len(suffix) + 3)
	b.WriteString(string(kind))
	b.WriteByte('/')
	if nodeID != "" {
		b.WriteString(nodeID)
		b.WriteByte('/')
	}
	b.WriteString(id)
	b.WriteByte('/')
	b.WriteString(suffix)
	return b.String()
}
