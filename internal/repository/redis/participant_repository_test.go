package repository

import (
	"context"
	"testing"
	"time"

	"github.com/steph-crown/movie-moments/internal/models"
	"github.com/steph-crown/movie-moments/pkg/logger"
)

func newTestParticipantRepo(t *testing.T) ParticipantRepository {
	t.Helper()
	return NewRedisParticipantRepository(newTestClient(t), logger.InitializeTestZapLogger())
}

func storedParticipant(roomID, userID string) *models.Participant {
	episode := 1
	return &models.Participant{
		UserID:      userID,
		RoomID:      roomID,
		DisplayName: userID,
		Status:      models.ParticipantStatusJoined,
		Role:        models.ParticipantRoleMember,
		Position: models.Position{
			Episode:          &episode,
			TimestampSeconds: 0,
		},
		JoinedAt: time.Now(),
	}
}

func TestParticipantRepositoryCreateGet(t *testing.T) {
	ctx := context.Background()
	r := newTestParticipantRepo(t)

	if err := r.Create(ctx, storedParticipant("room-1", "u1")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := r.Get(ctx, "room-1", "u1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.UserID != "u1" || !got.IsJoined() {
		t.Fatalf("Get() = %+v", got)
	}

	if _, err := r.Get(ctx, "room-1", "ghost"); err != ErrNotFound {
		t.Fatalf("Get(ghost) error = %v, want ErrNotFound", err)
	}
}

func TestParticipantRepositoryUpdatePosition(t *testing.T) {
	ctx := context.Background()
	r := newTestParticipantRepo(t)

	r.Create(ctx, storedParticipant("room-1", "u1"))

	before, _ := r.Get(ctx, "room-1", "u1")

	token := "2|Season 2|202|10"
	episode := 4
	pos := models.Position{
		SeasonToken:      &token,
		Episode:          &episode,
		TimestampSeconds: 1800,
	}
	if err := r.UpdatePosition(ctx, "room-1", "u1", pos); err != nil {
		t.Fatalf("UpdatePosition() error = %v", err)
	}

	got, err := r.Get(ctx, "room-1", "u1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Position.TimestampSeconds != 1800 || got.Position.SeasonToken == nil || *got.Position.SeasonToken != token {
		t.Fatalf("Position = %+v", got.Position)
	}
	if !got.PositionUpdatedAt.After(before.PositionUpdatedAt) {
		t.Fatal("PositionUpdatedAt not stamped")
	}

	if err := r.UpdatePosition(ctx, "room-1", "ghost", pos); err != ErrNotFound {
		t.Fatalf("UpdatePosition(ghost) error = %v, want ErrNotFound", err)
	}
}

func TestParticipantRepositoryUpdateLastSeen(t *testing.T) {
	ctx := context.Background()
	r := newTestParticipantRepo(t)

	r.Create(ctx, storedParticipant("room-1", "u1"))

	at := time.Now().Add(time.Minute)
	if err := r.UpdateLastSeen(ctx, "room-1", "u1", at); err != nil {
		t.Fatalf("UpdateLastSeen() error = %v", err)
	}

	got, _ := r.Get(ctx, "room-1", "u1")
	if !got.LastSeenAt.Equal(at) {
		t.Fatalf("LastSeenAt = %v, want %v", got.LastSeenAt, at)
	}
}

func TestParticipantRepositoryListByRoom(t *testing.T) {
	ctx := context.Background()
	r := newTestParticipantRepo(t)

	r.Create(ctx, storedParticipant("room-1", "u1"))
	r.Create(ctx, storedParticipant("room-1", "u2"))
	r.Create(ctx, storedParticipant("room-2", "u3"))

	participants, err := r.ListByRoom(ctx, "room-1")
	if err != nil {
		t.Fatalf("ListByRoom() error = %v", err)
	}
	if len(participants) != 2 {
		t.Fatalf("ListByRoom() len = %d, want 2", len(participants))
	}

	empty, err := r.ListByRoom(ctx, "room-9")
	if err != nil {
		t.Fatalf("ListByRoom(empty) error = %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("ListByRoom(empty) len = %d, want 0", len(empty))
	}
}
