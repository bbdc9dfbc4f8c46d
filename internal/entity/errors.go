package entity

import "errors"

var (
	// ErrEntityNotFound is returned when no entity is recorded for a config topic.
	ErrEntityNotFound = errors.New("entity not found")

	// ErrStateNotFound is returned when no state is recorded for a state topic.
	ErrStateNotFound = errors.New("entity state not found")
)
