package service

import (
	"time"

	"github.com/steph-crown/movie-moments/internal/models"
)

type CreateRoomInput struct {
	Title         string             `json:"title"`
	ContentType   models.ContentType `json:"content_type"`
	ContentRef    string             `json:"content_ref"`
	Privacy       models.RoomPrivacy `json:"privacy"`
	SpoilerPolicy bool               `json:"spoiler_policy"`
}

type SendMessageInput struct {
	Text            string           `json:"text"`
	Position        *models.Position `json:"position,omitempty"`
	ParentMessageID *string          `json:"parent_message_id,omitempty"`
}

// RenderedMessage is one message plus the per-viewer render decisions the UI
// consumes: cluster start flag, spoiler blur, and the resolved parent
// preview (nil when the parent is unknown to the log).
type RenderedMessage struct {
	Message    models.Message  `json:"message"`
	GroupStart bool            `json:"group_start"`
	Blurred    bool            `json:"blurred"`
	Parent     *models.Message `json:"parent,omitempty"`
}

type PlaybackProgressInput struct {
	RoomID           string
	UserID           string
	SeasonToken      *string
	Episode          *int
	TimestampSeconds int
	ReportedAt       time.Time
}
