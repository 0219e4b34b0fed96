package models

import "time"

// Position event types published after successful mutations.
const (
	EventPositionCreated = "POSITION_CREATED"
	EventPositionUpdated = "POSITION_UPDATED"
	EventPositionDeleted = "POSITION_DELETED"
)

// PositionEvent represents a Kafka event for position changes
type PositionEvent struct {
	EventType  string    `json:"event_type"`
	Position   *Position `json:"position,omitempty"`
	PositionID int       `json:"position_id"`
	Timestamp  time.Time `json:"timestamp"`
}
