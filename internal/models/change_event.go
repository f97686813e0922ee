package models

import "time"

type ChangeKind string

const (
	ChangeMessageInserted  ChangeKind = "message_inserted"
	ChangeMessageUpdated   ChangeKind = "message_updated"
	ChangeMessageDeleted   ChangeKind = "message_deleted"
	ChangeReactionInserted ChangeKind = "reaction_inserted"
	ChangeReactionDeleted  ChangeKind = "reaction_deleted"
)

// ChangeEvent is published to Redis Pub/Sub whenever a message or reaction
// row changes. Message events are scoped to a room channel; reaction events
// go out on a single global channel and are filtered client-side by message
// membership.
type ChangeEvent struct {
	Kind       ChangeKind `json:"kind"`
	RoomID     string     `json:"room_id,omitempty"`
	MessageID  string     `json:"message_id"`
	ReactionID string     `json:"reaction_id,omitempty"`
	Timestamp  time.Time  `json:"timestamp"`
}
