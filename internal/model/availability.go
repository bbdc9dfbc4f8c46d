package model

// AvailabilityMode controls how multiple availability topics are combined.
type AvailabilityMode string

// Availability modes. AvailabilityLatest is the Home Assistant default and is
// never written to the wire.
const (
	AvailabilityAll    AvailabilityMode = "all"
	AvailabilityAny    AvailabilityMode = "any"
	AvailabilityLatest AvailabilityMode = "latest"
)

// Default payloads of an availability topic.
const (
	PayloadAvailable    = "online"
	PayloadNotAvailable = "offline"
)

// Availability is one entry of the availability list of a discovery document.
type Availability struct {
	Topic               string `json:"topic"`
	PayloadAvailable    string `json:"payload_available,omitempty"`
	PayloadNotAvailable string `json:"payload_not_available,omitempty"`
	ValueTemplate       string `json:"value_template,omitempty"`
}

// NewAvailability returns an availability entry using the default online/offline payloads.
func NewAvailability(topic string) Availability {
	return Availability{Topic: topic}
}
