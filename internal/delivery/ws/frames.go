package ws

import (
	"github.com/steph-crown/movie-moments/internal/models"
	"github.com/steph-crown/movie-moments/internal/service"
)

const (
	frameSendMessage      = "send_message"
	frameAddReaction      = "add_reaction"
	frameRemoveReaction   = "remove_reaction"
	frameUpdatePosition   = "update_position"
	frameDismissStaleness = "dismiss_staleness"
	frameReveal           = "reveal"
	frameHeartbeat        = "heartbeat"
)

// clientFrame is the tagged union read off the socket. Only the fields
// relevant to Type are populated.
type clientFrame struct {
	Type string `json:"type"`

	Text            string           `json:"text,omitempty"`
	Position        *models.Position `json:"position,omitempty"`
	ParentMessageID *string          `json:"parent_message_id,omitempty"`

	MessageID  string `json:"message_id,omitempty"`
	Emoji      string `json:"emoji,omitempty"`
	ReactionID string `json:"reaction_id,omitempty"`
}

type snapshotFrame struct {
	Type     string                    `json:"type"`
	State    service.StreamState       `json:"state"`
	Messages []service.RenderedMessage `json:"messages"`
}

type statsFrame struct {
	Type     string               `json:"type"`
	Position models.Position      `json:"position"`
	Stats    models.PositionStats `json:"stats"`
}

type stalenessFrame struct {
	Type string `json:"type"`
}

type errorFrame struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

func newSnapshotFrame(state service.StreamState, msgs []service.RenderedMessage) snapshotFrame {
	return snapshotFrame{Type: "snapshot", State: state, Messages: msgs}
}

func newStatsFrame(pos models.Position, stats models.PositionStats) statsFrame {
	return statsFrame{Type: "stats", Position: pos, Stats: stats}
}

func newStalenessFrame() stalenessFrame {
	return stalenessFrame{Type: "staleness"}
}

func newErrorFrame(msg string) errorFrame {
	return errorFrame{Type: "error", Error: msg}
}
