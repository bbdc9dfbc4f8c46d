package model

import "encoding/json"

// Device is the physical or logical device that entities are grouped under.
//
// One *Device is shared by every entity that belongs to it; the discovery
// documents of those entities reference the same value.
type Device struct {
	// Identifiers are stable ids Home Assistant uses to merge entities into one device.
	Identifiers []string `json:"identifiers,omitempty"`

	// Name is the display name. Encoded as null when nil.
	Name *string `json:"name"`

	// BaseTopic is the "~" abbreviation base for topics in the document.
	BaseTopic string `json:"~,omitempty"`

	// SWVersion is the software version of the device.
	SWVersion string `json:"sw_version,omitempty"`

	// SupportURL links to the support page of the device.
	SupportURL string `json:"support_url,omitempty"`
}

// NewDevice returns a Device with a display name and identifiers.
func NewDevice(name string, identifiers ...string) *Device {
	return &Device{
		Identifiers: identifiers,
		Name:        &name,
	}
}

// DisplayName returns the device name, or "" if none is set.
func (d *Device) DisplayName() string {
	if d == nil || d.Name == nil {
		return ""
	}
	return *d.Name
}

// UnmarshalJSON accepts the "sw" and "url" abbreviations next to the long field names.
func (d *Device) UnmarshalJSON(data []byte) error {
	type plain Device
	aux := struct {
		*plain
		SW  string `json:"sw,omitempty"`
		URL string `json:"url,omitempty"`
	}{plain: (*plain)(d)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if d.SWVersion == "" {
		d.SWVersion = aux.SW
	}
	if d.SupportURL == "" {
		d.SupportURL = aux.URL
	}
	return nil
}
