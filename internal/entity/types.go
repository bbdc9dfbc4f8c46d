package entity

import (
	"encoding/json"
	"time"
)

// Entity is one announced discovery document.
type Entity struct {
	ConfigTopic string `json:"config_topic"`
	UniqueID    string `json:"unique_id,omitempty"`
	Component   string `json:"component"`
	NodeID      string `json:"node_id,omitempty"`
	ObjectID    string `json:"object_id"`

	// Document is the discovery payload exactly as published.
	Document json.RawMessage `json:"document"`

	AnnouncedAt   time.Time `json:"announced_at"`
	AnnounceCount int       `json:"announce_count"`

	// State is the last payload published on the entity's state topic, if any.
	State *State `json:"state,omitempty"`
}

// State is the last payload published on a state topic.
type State struct {
	Topic     string    `json:"topic"`
	Payload   string    `json:"payload"`
	UpdatedAt time.Time `json:"updated_at"`
}
