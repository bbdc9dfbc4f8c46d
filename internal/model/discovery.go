package model

import "encoding/json"

// Discovery is the document published on the config topic of an entity.
//
// Name and DeviceClass are always encoded, as null when nil. All other
// optional fields are omitted when unset. AvailabilityMode is only encoded
// when it differs from AvailabilityLatest.
type Discovery struct {
	Name              *string          `json:"name"`
	UniqueID          string           `json:"unique_id,omitempty"`
	ObjectID          string           `json:"object_id,omitempty"`
	Device            *Device          `json:"device,omitempty"`
	DeviceClass       *string          `json:"device_class"`
	StateClass        StateClass       `json:"state_class,omitempty"`
	StateTopic        string           `json:"state_topic,omitempty"`
	CommandTopic      string           `json:"command_topic,omitempty"`
	UnitOfMeasurement string           `json:"unit_of_measurement,omitempty"`
	ValueTemplate     string           `json:"value_template,omitempty"`
	CommandTemplate   string           `json:"command_template,omitempty"`
	PayloadOn         string           `json:"payload_on,omitempty"`
	PayloadOff        string           `json:"payload_off,omitempty"`
	PayloadPress      string           `json:"payload_press,omitempty"`
	EnabledByDefault  *bool            `json:"enabled_by_default,omitempty"`
	Availability      []Availability   `json:"availability,omitempty"`
	AvailabilityMode  AvailabilityMode `json:"availability_mode,omitempty"`
}

// DiscoveryOption customises a document built by NewDiscovery.
type DiscoveryOption func(*Discovery)

// NewDiscovery builds the discovery document of an entity.
//
// The unique id defaults to the object id, the device class is taken from
// the component, and the state and command topics are filled in (absolute,
// under topics) only when the component supports them.
func NewDiscovery(topics Topics, id DeviceID, device *Device, opts ...DiscoveryOption) *Discovery {
	d := &Discovery{
		UniqueID: id.ID,
		Device:   device,
	}

	if class, ok := id.Component.DeviceClass(); ok {
		d.DeviceClass = &class
	}
	if topic, ok := topics.State(id); ok {
		d.StateTopic = topic
	}
	if topic, ok := topics.Command(id); ok {
		d.CommandTopic = topic
	}

	for _, opt := range opts {
		opt(d)
	}
	return d
}

// WithName sets the entity name.
func WithName(name string) DiscoveryOption {
	return func(d *Discovery) { d.Name = &name }
}

// WithUniqueID overrides the unique id. An empty id removes it.
func WithUniqueID(uniqueID string) DiscoveryOption {
	return func(d *Discovery) { d.UniqueID = uniqueID }
}

// WithObjectID sets the object id Home Assistant derives the entity id from.
func WithObjectID(objectID string) DiscoveryOption {
	return func(d *Discovery) { d.ObjectID = objectID }
}

// WithStateClass sets the state class of a sensor.
func WithStateClass(class StateClass) DiscoveryOption {
	return func(d *Discovery) { d.StateClass = class }
}

// WithUnit sets the unit of measurement.
func WithUnit(unit string) DiscoveryOption {
	return func(d *Discovery) { d.UnitOfMeasurement = unit }
}

// WithValueTemplate sets the template used to extract the state value.
func WithValueTemplate(tpl string) DiscoveryOption {
	return func(d *Discovery) { d.ValueTemplate = tpl }
}

// WithCommandTemplate sets the template used to render command payloads.
func WithCommandTemplate(tpl string) DiscoveryOption {
	return func(d *Discovery) { d.CommandTemplate = tpl }
}

// WithPayloads sets the on/off payloads of switches and binary sensors.
func WithPayloads(on, off string) DiscoveryOption {
	return func(d *Discovery) {
		d.PayloadOn = on
		d.PayloadOff = off
	}
}

// WithPressPayload sets the payload a button publishes when pressed.
func WithPressPayload(payload string) DiscoveryOption {
	return func(d *Discovery) { d.PayloadPress = payload }
}

// WithEnabledByDefault sets whether the entity is enabled when first added.
func WithEnabledByDefault(enabled bool) DiscoveryOption {
	return func(d *Discovery) { d.EnabledByDefault = &enabled }
}

// WithAvailability appends entries to the availability list.
func WithAvailability(entries ...Availability) DiscoveryOption {
	return func(d *Discovery) { d.Availability = append(d.Availability, entries...) }
}

// WithAvailabilityMode sets how the availability entries are combined.
func WithAvailabilityMode(mode AvailabilityMode) DiscoveryOption {
	return func(d *Discovery) { d.AvailabilityMode = mode }
}

// Mode returns the effective availability mode.
func (d *Discovery) Mode() AvailabilityMode {
	if d.AvailabilityMode == "" {
		return AvailabilityLatest
	}
	return d.AvailabilityMode
}

// MarshalJSON encodes the document, dropping the default availability mode.
func (d Discovery) MarshalJSON() ([]byte, error) {
	type plain Discovery
	p := plain(d)
	if p.AvailabilityMode == AvailabilityLatest {
		p.AvailabilityMode = ""
	}
	return json.Marshal(p)
}

// UnmarshalJSON decodes the document, normalising an explicit default mode to unset.
func (d *Discovery) UnmarshalJSON(data []byte) error {
	type plain Discovery
	if err := json.Unmarshal(data, (*plain)(d)); err != nil {
		return err
	}
	if d.AvailabilityMode == AvailabilityLatest {
		d.AvailabilityMode = ""
	}
	return nil
}
