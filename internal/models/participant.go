package models

import "time"

type ParticipantStatus string

const (
	ParticipantStatusNotMember ParticipantStatus = "not_member"
	ParticipantStatusPending   ParticipantStatus = "pending"
	ParticipantStatusJoined    ParticipantStatus = "joined"
	ParticipantStatusLeft      ParticipantStatus = "left"
)

type ParticipantRole string

const (
	ParticipantRoleCreator ParticipantRole = "creator"
	ParticipantRoleMember  ParticipantRole = "member"
)

// Participant is one (room, user) membership row, owned by the room.
type Participant struct {
	UserID            string            `json:"user_id"`
	RoomID            string            `json:"room_id"`
	DisplayName       string            `json:"display_name"`
	Status            ParticipantStatus `json:"status"`
	Role              ParticipantRole   `json:"role"`
	Position          Position          `json:"position"`
	PositionUpdatedAt time.Time         `json:"position_updated_at"`
	LastSeenAt        time.Time         `json:"last_seen_at"`
	JoinedAt          time.Time         `json:"joined_at"`
}

func (p *Participant) IsJoined() bool {
	return p.Status == ParticipantStatusJoined
}
