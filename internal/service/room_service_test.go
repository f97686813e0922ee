package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/steph-crown/movie-moments/internal/models"
	repo "github.com/steph-crown/movie-moments/internal/repository/redis"
	"github.com/steph-crown/movie-moments/pkg/logger"
)

type fakeRoomRepo struct {
	mu    sync.Mutex
	rooms map[string]*models.Room
}

func newFakeRoomRepo() *fakeRoomRepo {
	return &fakeRoomRepo{rooms: make(map[string]*models.Room)}
}

func (f *fakeRoomRepo) Create(ctx context.Context, room *models.Room) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *room
	f.rooms[room.ID] = &clone
	return nil
}

func (f *fakeRoomRepo) Get(ctx context.Context, roomID string) (*models.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	room, ok := f.rooms[roomID]
	if !ok {
		return nil, repo.ErrNotFound
	}
	clone := *room
	return &clone, nil
}

func (f *fakeRoomRepo) Update(ctx context.Context, room *models.Room) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *room
	f.rooms[room.ID] = &clone
	return nil
}

func newTestRoomService(roomRepo repo.RoomRepository, pRepo repo.ParticipantRepository) RoomService {
	return NewRoomService(roomRepo, pRepo, nil, logger.InitializeTestZapLogger())
}

func identityCtx(userID, name string) context.Context {
	return WithIdentity(context.Background(), Identity{UserID: userID, DisplayName: name})
}

func TestRoomServiceCreateRoomSeedsCreator(t *testing.T) {
	roomRepo := newFakeRoomRepo()
	pRepo := newFakeParticipantRepo()
	s := newTestRoomService(roomRepo, pRepo)

	ctx := identityCtx("u1", "Ada")
	room, err := s.CreateRoom(ctx, CreateRoomInput{
		Title:         "Severance S2",
		ContentType:   models.ContentTypeSeries,
		ContentRef:    "severance",
		Privacy:       models.RoomPrivacyPrivate,
		SpoilerPolicy: true,
	})
	if err != nil {
		t.Fatalf("CreateRoom() error = %v", err)
	}
	if room.CreatorID != "u1" {
		t.Fatalf("CreatorID = %s, want u1", room.CreatorID)
	}

	p, err := pRepo.Get(context.Background(), room.ID, "u1")
	if err != nil {
		t.Fatalf("creator membership missing: %v", err)
	}
	if p.Role != models.ParticipantRoleCreator || !p.IsJoined() {
		t.Fatalf("creator participant = %+v", p)
	}

	// Fresh members start at episode 1, timestamp 0.
	if p.Position.EpisodeOrDefault() != 1 || p.Position.TimestampSeconds != 0 {
		t.Fatalf("seed position = %+v", p.Position)
	}
}

func TestRoomServiceCreateRoomRequiresIdentity(t *testing.T) {
	s := newTestRoomService(newFakeRoomRepo(), newFakeParticipantRepo())

	_, err := s.CreateRoom(context.Background(), CreateRoomInput{Title: "x"})
	if !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("CreateRoom() error = %v, want ErrNotAuthenticated", err)
	}
}

func TestRoomServiceJoinRoom(t *testing.T) {
	roomRepo := newFakeRoomRepo()
	pRepo := newFakeParticipantRepo()
	s := newTestRoomService(roomRepo, pRepo)

	room, err := s.CreateRoom(identityCtx("u1", "Ada"), CreateRoomInput{
		Title:       "Movie night",
		ContentType: models.ContentTypeMovie,
		ContentRef:  "heat-1995",
	})
	if err != nil {
		t.Fatalf("CreateRoom() error = %v", err)
	}

	p, err := s.JoinRoom(identityCtx("u2", "Bob"), room.ID)
	if err != nil {
		t.Fatalf("JoinRoom() error = %v", err)
	}
	if p.Role != models.ParticipantRoleMember {
		t.Fatalf("Role = %s, want member", p.Role)
	}

	if _, err := s.JoinRoom(identityCtx("u2", "Bob"), room.ID); !errors.Is(err, ErrAlreadyJoined) {
		t.Fatalf("second JoinRoom() error = %v, want ErrAlreadyJoined", err)
	}

	if _, err := s.JoinRoom(identityCtx("u3", "Eve"), "no-such-room"); !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("JoinRoom(unknown) error = %v, want ErrRoomNotFound", err)
	}
}

func TestRoomServiceLeaveRoom(t *testing.T) {
	roomRepo := newFakeRoomRepo()
	pRepo := newFakeParticipantRepo()
	s := newTestRoomService(roomRepo, pRepo)

	room, _ := s.CreateRoom(identityCtx("u1", "Ada"), CreateRoomInput{
		Title:       "Movie night",
		ContentType: models.ContentTypeMovie,
		ContentRef:  "heat-1995",
	})
	s.JoinRoom(identityCtx("u2", "Bob"), room.ID)

	if err := s.LeaveRoom(identityCtx("u1", "Ada"), room.ID); !errors.Is(err, ErrCreatorCannotLeave) {
		t.Fatalf("creator LeaveRoom() error = %v, want ErrCreatorCannotLeave", err)
	}

	if err := s.LeaveRoom(identityCtx("u2", "Bob"), room.ID); err != nil {
		t.Fatalf("LeaveRoom() error = %v", err)
	}

	p, _ := pRepo.Get(context.Background(), room.ID, "u2")
	if p.IsJoined() {
		t.Fatal("participant still joined after leave")
	}

	if err := s.LeaveRoom(identityCtx("u2", "Bob"), room.ID); !errors.Is(err, ErrNotAMember) {
		t.Fatalf("second LeaveRoom() error = %v, want ErrNotAMember", err)
	}
}

func TestRoomServiceListParticipantsFiltersLeft(t *testing.T) {
	roomRepo := newFakeRoomRepo()
	pRepo := newFakeParticipantRepo()
	s := newTestRoomService(roomRepo, pRepo)

	room, _ := s.CreateRoom(identityCtx("u1", "Ada"), CreateRoomInput{
		Title:       "Movie night",
		ContentType: models.ContentTypeMovie,
		ContentRef:  "heat-1995",
	})
	s.JoinRoom(identityCtx("u2", "Bob"), room.ID)
	s.JoinRoom(identityCtx("u3", "Eve"), room.ID)
	s.LeaveRoom(identityCtx("u3", "Eve"), room.ID)

	participants, err := s.ListParticipants(context.Background(), room.ID)
	if err != nil {
		t.Fatalf("ListParticipants() error = %v", err)
	}
	if len(participants) != 2 {
		t.Fatalf("ListParticipants() len = %d, want 2", len(participants))
	}
}

func TestRoomServiceApplyPlaybackProgress(t *testing.T) {
	roomRepo := newFakeRoomRepo()
	pRepo := newFakeParticipantRepo()
	s := newTestRoomService(roomRepo, pRepo)

	room, _ := s.CreateRoom(identityCtx("u1", "Ada"), CreateRoomInput{
		Title:       "Severance S2",
		ContentType: models.ContentTypeSeries,
		ContentRef:  "severance",
	})

	token := "2|Season 2|202|10"
	episode := 3
	err := s.ApplyPlaybackProgress(context.Background(), PlaybackProgressInput{
		RoomID:           room.ID,
		UserID:           "u1",
		SeasonToken:      &token,
		Episode:          &episode,
		TimestampSeconds: -10,
		ReportedAt:       time.Now(),
	})
	if err != nil {
		t.Fatalf("ApplyPlaybackProgress() error = %v", err)
	}

	p, _ := pRepo.Get(context.Background(), room.ID, "u1")
	if p.Position.TimestampSeconds != 0 {
		t.Fatalf("TimestampSeconds = %d, want clamped to 0", p.Position.TimestampSeconds)
	}
	if p.Position.Episode == nil || *p.Position.Episode != 3 {
		t.Fatalf("Episode = %v, want 3", p.Position.Episode)
	}

	// Progress for someone who never joined is dropped, not an error.
	err = s.ApplyPlaybackProgress(context.Background(), PlaybackProgressInput{
		RoomID: room.ID,
		UserID: "stranger",
	})
	if err != nil {
		t.Fatalf("ApplyPlaybackProgress(stranger) error = %v", err)
	}
}

func TestRoomServiceHeartbeat(t *testing.T) {
	roomRepo := newFakeRoomRepo()
	pRepo := newFakeParticipantRepo()
	s := newTestRoomService(roomRepo, pRepo)

	room, _ := s.CreateRoom(identityCtx("u1", "Ada"), CreateRoomInput{
		Title:       "Movie night",
		ContentType: models.ContentTypeMovie,
		ContentRef:  "heat-1995",
	})

	if err := s.Heartbeat(identityCtx("u1", "Ada"), room.ID); err != nil {
		t.Fatalf("Heartbeat() error = %v", err)
	}

	if err := s.Heartbeat(identityCtx("ghost", "?"), room.ID); !errors.Is(err, ErrNotAMember) {
		t.Fatalf("Heartbeat(ghost) error = %v, want ErrNotAMember", err)
	}
}
