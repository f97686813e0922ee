package models

import "time"

// Message is one chat entry in a room. Position is the sender's position at
// send time; replies may omit it and inherit spoiler risk from their parent.
type Message struct {
	ID              string     `json:"id"`
	RoomID          string     `json:"room_id"`
	UserID          string     `json:"user_id"`
	AuthorName      string     `json:"author_name"`
	Text            string     `json:"text"`
	Position        *Position  `json:"position,omitempty"`
	ThreadDepth     int        `json:"thread_depth"`
	ParentMessageID *string    `json:"parent_message_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	EditedAt        *time.Time `json:"edited_at,omitempty"`
	IsDeleted       bool       `json:"is_deleted"`
	Reactions       []Reaction `json:"reactions"`
}

// Reaction is a single emoji reaction. At most one reaction exists per
// (message, user) pair; adding a new one replaces the previous.
type Reaction struct {
	ID        string    `json:"id"`
	MessageID string    `json:"message_id"`
	UserID    string    `json:"user_id"`
	Emoji     string    `json:"emoji"`
	CreatedAt time.Time `json:"created_at"`
}
