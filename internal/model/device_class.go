package model

// ButtonClass is the device class of a button entity.
type ButtonClass string

// Button device classes.
const (
	ButtonClassNone     ButtonClass = ""
	ButtonClassIdentify ButtonClass = "identify"
	ButtonClassRestart  ButtonClass = "restart"
	ButtonClassUpdate   ButtonClass = "update"
)

// SwitchClass is the device class of a switch entity.
type SwitchClass string

// Switch device classes.
const (
	SwitchClassNone   SwitchClass = ""
	SwitchClassOutlet SwitchClass = "outlet"
	SwitchClassSwitch SwitchClass = "switch"
)

// BinarySensorClass is the device class of a binary sensor entity.
type BinarySensorClass string

// Binary sensor device classes.
const (
	BinarySensorClassNone    BinarySensorClass = ""
	BinarySensorMotion       BinarySensorClass = "motion"
	BinarySensorDoor         BinarySensorClass = "door"
	BinarySensorWindow       BinarySensorClass = "window"
	BinarySensorOccupancy    BinarySensorClass = "occupancy"
	BinarySensorPresence     BinarySensorClass = "presence"
	BinarySensorConnectivity BinarySensorClass = "connectivity"
)

// SensorClass is the device class of a sensor entity.
type SensorClass string

// Sensor device classes.
const (
	SensorClassNone   SensorClass = ""
	SensorTemperature SensorClass = "temperature"
	SensorHumidity    SensorClass = "humidity"
	SensorPower       SensorClass = "power"
	SensorEnergy      SensorClass = "energy"
	SensorVoltage     SensorClass = "voltage"
	SensorCurrent     SensorClass = "current"
	SensorBattery     SensorClass = "battery"
)

// StateClass describes how Home Assistant aggregates sensor values.
type StateClass string

// State classes. The zero value means "not set" and is omitted on the wire.
const (
	StateClassMeasurement     StateClass = "measurement"
	StateClassTotal           StateClass = "total"
	StateClassTotalIncreasing StateClass = "total_increasing"
)
