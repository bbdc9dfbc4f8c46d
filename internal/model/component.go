package model

// Kind is the Home Assistant MQTT integration platform of an entity.
type Kind string

// Supported component kinds.
const (
	KindButton       Kind = "button"
	KindSwitch       Kind = "switch"
	KindBinarySensor Kind = "binary_sensor"
	KindSensor       Kind = "sensor"
)

// String returns the topic segment for the kind.
func (k Kind) String() string {
	return string(k)
}

// HasState reports whether entities of this kind publish state.
// Buttons are stateless.
func (k Kind) HasState() bool {
	switch k {
	case KindSwitch, KindBinarySensor, KindSensor:
		return true
	default:
		return false
	}
}

// HasCommand reports whether entities of this kind accept commands.
// Sensors and binary sensors are read-only.
func (k Kind) HasCommand() bool {
	switch k {
	case KindButton, KindSwitch:
		return true
	default:
		return false
	}
}

// IsValid reports whether k is one of the supported kinds.
func (k Kind) IsValid() bool {
	switch k {
	case KindButton, KindSwitch, KindBinarySensor, KindSensor:
		return true
	default:
		return false
	}
}

// Component is a component kind together with its optional device class.
//
// Components are built with Button, Switch, BinarySensor or Sensor so that a
// device class can only be paired with the kind it belongs to. The zero value
// is not a valid component.
type Component struct {
	kind  Kind
	class string
}

// Button returns a button component. Pass ButtonClassNone for no class.
func Button(class ButtonClass) Component {
	return Component{kind: KindButton, class: string(class)}
}

// Switch returns a switch component. Pass SwitchClassNone for no class.
func Switch(class SwitchClass) Component {
	return Component{kind: KindSwitch, class: string(class)}
}

// BinarySensor returns a binary sensor component. Pass BinarySensorClassNone for no class.
func BinarySensor(class BinarySensorClass) Component {
	return Component{kind: KindBinarySensor, class: string(class)}
}

// Sensor returns a sensor component. Pass SensorClassNone for no class.
func Sensor(class SensorClass) Component {
	return Component{kind: KindSensor, class: string(class)}
}

// Kind returns the component kind.
func (c Component) Kind() Kind {
	return c.kind
}

// DeviceClass returns the device class and whether one is set.
func (c Component) DeviceClass() (string, bool) {
	return c.class, c.class != ""
}

// String returns the topic segment for the component.
func (c Component) String() string {
	return string(c.kind)
}
