package models

import "time"

type RoomPrivacy string

const (
	RoomPrivacyPublic  RoomPrivacy = "public"
	RoomPrivacyPrivate RoomPrivacy = "private"
)

// Room is a shared chat space bound to one movie or series. ContentRef is an
// opaque reference into the external metadata catalog.
type Room struct {
	ID            string      `json:"id"`
	Title         string      `json:"title"`
	ContentType   ContentType `json:"content_type"`
	ContentRef    string      `json:"content_ref"`
	CreatorID     string      `json:"creator_id"`
	Privacy       RoomPrivacy `json:"privacy"`
	SpoilerPolicy bool        `json:"spoiler_policy"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}
