package model

import "strings"

// DefaultTopicBase is the discovery prefix Home Assistant listens on by default.
const DefaultTopicBase = "homeassistant"

// StatusPayloadOnline is the birth payload Home Assistant publishes on
// {base}/status when it (re)starts.
const StatusPayloadOnline = "online"

// Topics resolves namespace-relative topics against a discovery prefix.
// Using these helpers keeps every outward topic rooted at the same base.
//
//	topics := model.NewTopics("homeassistant")
//	topics.Config(id)   // "homeassistant/switch/relay-1/config"
//	topics.Status()     // "homeassistant/status"
type Topics struct {
	base string
}

// NewTopics returns a Topics rooted at base. An empty base selects DefaultTopicBase.
func NewTopics(base string) Topics {
	if base == "" {
		base = DefaultTopicBase
	}
	return Topics{base: base}
}

// Base returns the namespace prefix.
func (t Topics) Base() string {
	if t.base == "" {
		return DefaultTopicBase
	}
	return t.base
}

// Resolve prefixes a namespace-relative topic with the base and a "/".
func (t Topics) Resolve(relative string) string {
	return t.Base() + "/" + relative
}

// Strip removes the base and its separator from an absolute topic.
// It returns false if topic is not inside the namespace.
func (t Topics) Strip(topic string) (string, bool) {
	rest, ok := strings.CutPrefix(topic, t.Base()+"/")
	if !ok || rest == "" {
		return "", false
	}
	return rest, true
}

// Status returns the reserved Home Assistant status topic.
//
// Example: homeassistant/status
func (t Topics) Status() string {
	return t.Resolve("status")
}

// Config returns the absolute discovery topic of an entity.
func (t Topics) Config(id DeviceID) string {
	return t.Resolve(id.ConfigTopic())
}

// State returns the absolute state topic of an entity, if it has one.
func (t Topics) State(id DeviceID) (string, bool) {
	rel, ok := id.StateTopic()
	if !ok {
		return "", false
	}
	return t.Resolve(rel), true
}

// Command returns the absolute command topic of an entity, if it has one.
func (t Topics) Command(id DeviceID) (string, bool) {
	rel, ok := id.CommandTopic()
	if !ok {
		return "", false
	}
	return t.Resolve(rel), true
}
