package kafka

import (
	"time"

	"github.com/steph-crown/movie-moments/internal/models"
)

// Events published BY MovieMoments

type RoomJoinedEvent struct {
	RoomID    string    `json:"room_id"`
	UserID    string    `json:"user_id"`
	Role      string    `json:"role"`
	JoinedAt  time.Time `json:"joined_at"`
	Timestamp time.Time `json:"timestamp"`
}

type RoomLeftEvent struct {
	RoomID    string    `json:"room_id"`
	UserID    string    `json:"user_id"`
	Reason    string    `json:"reason"` // user_left, kicked
	LeftAt    time.Time `json:"left_at"`
	Timestamp time.Time `json:"timestamp"`
}

type PositionUpdatedEvent struct {
	RoomID    string          `json:"room_id"`
	UserID    string          `json:"user_id"`
	Position  models.Position `json:"position"`
	UpdatedAt time.Time       `json:"updated_at"`
	Timestamp time.Time       `json:"timestamp"`
}

// Events consumed BY MovieMoments (from the player integration)

type PlaybackProgressEvent struct {
	RoomID           string    `json:"room_id"`
	UserID           string    `json:"user_id"`
	SeasonToken      *string   `json:"season_token,omitempty"`
	Episode          *int      `json:"episode,omitempty"`
	TimestampSeconds int       `json:"timestamp_seconds"`
	ReportedAt       time.Time `json:"reported_at"`
	Timestamp        time.Time `json:"timestamp"`
}

// Topic names
const (
	TopicRoomJoined       = "ROOM_JOINED"
	TopicRoomLeft         = "ROOM_LEFT"
	TopicPositionUpdated  = "POSITION_UPDATED"
	TopicPlaybackProgress = "PLAYBACK_PROGRESS"
)
