package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	kafka "github.com/steph-crown/movie-moments/internal/delivery/kafka"
	"github.com/steph-crown/movie-moments/internal/delivery/kafka/producer"
	"github.com/steph-crown/movie-moments/internal/models"
	repo "github.com/steph-crown/movie-moments/internal/repository/redis"
	"github.com/steph-crown/movie-moments/pkg/logger"
)

type RoomService interface {
	CreateRoom(ctx context.Context, in CreateRoomInput) (*models.Room, error)
	GetRoom(ctx context.Context, roomID string) (*models.Room, error)
	JoinRoom(ctx context.Context, roomID string) (*models.Participant, error)
	LeaveRoom(ctx context.Context, roomID string) error
	ListParticipants(ctx context.Context, roomID string) ([]models.Participant, error)
	Heartbeat(ctx context.Context, roomID string) error

	// ApplyPlaybackProgress writes a position reported by the external player
	// integration on behalf of a participant.
	ApplyPlaybackProgress(ctx context.Context, in PlaybackProgressInput) error
}

type roomService struct {
	roomRepo repo.RoomRepository
	pRepo    repo.ParticipantRepository
	prod     producer.Producer
	l        logger.Logger
}

func NewRoomService(
	roomRepo repo.RoomRepository,
	pRepo repo.ParticipantRepository,
	prod producer.Producer,
	l logger.Logger,
) RoomService {
	return &roomService{
		roomRepo: roomRepo,
		pRepo:    pRepo,
		prod:     prod,
		l:        l,
	}
}

func (s *roomService) CreateRoom(ctx context.Context, in CreateRoomInput) (*models.Room, error) {
	id, err := IdentityFrom(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	room := &models.Room{
		ID:            uuid.New().String(),
		Title:         in.Title,
		ContentType:   in.ContentType,
		ContentRef:    in.ContentRef,
		CreatorID:     id.UserID,
		Privacy:       in.Privacy,
		SpoilerPolicy: in.SpoilerPolicy,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.roomRepo.Create(ctx, room); err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}

	if _, err := s.join(ctx, room, id, models.ParticipantRoleCreator); err != nil {
		return nil, fmt.Errorf("failed to seed creator membership: %w", err)
	}

	s.l.Info(ctx, "Room created",
		"room_id", room.ID,
		"creator_id", id.UserID,
		"content_type", room.ContentType,
	)

	return room, nil
}

func (s *roomService) GetRoom(ctx context.Context, roomID string) (*models.Room, error) {
	room, err := s.roomRepo.Get(ctx, roomID)
	if err != nil {
		if err == repo.ErrNotFound {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}

	return room, nil
}

func (s *roomService) JoinRoom(ctx context.Context, roomID string) (*models.Participant, error) {
	id, err := IdentityFrom(ctx)
	if err != nil {
		return nil, err
	}

	room, err := s.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	if existing, err := s.pRepo.Get(ctx, roomID, id.UserID); err == nil && existing.IsJoined() {
		return nil, ErrAlreadyJoined
	} else if err != nil && err != repo.ErrNotFound {
		return nil, fmt.Errorf("failed to check existing membership: %w", err)
	}

	return s.join(ctx, room, id, models.ParticipantRoleMember)
}

func (s *roomService) join(ctx context.Context, room *models.Room, id Identity, role models.ParticipantRole) (*models.Participant, error) {
	now := time.Now()
	episode := 1

	// Fresh members start at episode 1, timestamp 0, season unknown.
	p := &models.Participant{
		UserID:      id.UserID,
		RoomID:      room.ID,
		DisplayName: id.DisplayName,
		Status:      models.ParticipantStatusJoined,
		Role:        role,
		Position: models.Position{
			Episode:          &episode,
			TimestampSeconds: 0,
		},
		PositionUpdatedAt: now,
		LastSeenAt:        now,
		JoinedAt:          now,
	}

	if err := s.pRepo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create participant: %w", err)
	}

	if s.prod != nil {
		if err := s.prod.PublishRoomJoined(ctx, kafka.RoomJoinedEvent{
			RoomID:   room.ID,
			UserID:   id.UserID,
			Role:     string(role),
			JoinedAt: now,
		}); err != nil {
			s.l.Errorf(ctx, "roomService.join: failed to publish room joined event: %v", err)
		}
	}

	s.l.Info(ctx, "User joined room",
		"room_id", room.ID,
		"user_id", id.UserID,
		"role", role,
	)

	return p, nil
}

// LeaveRoom marks the membership left. Creators cannot leave their own room;
// the attempt is rejected, not ignored.
func (s *roomService) LeaveRoom(ctx context.Context, roomID string) error {
	id, err := IdentityFrom(ctx)
	if err != nil {
		return err
	}

	p, err := s.pRepo.Get(ctx, roomID, id.UserID)
	if err != nil {
		if err == repo.ErrNotFound {
			return ErrNotAMember
		}
		return err
	}

	if p.Role == models.ParticipantRoleCreator {
		return ErrCreatorCannotLeave
	}
	if !p.IsJoined() {
		return ErrNotAMember
	}

	p.Status = models.ParticipantStatusLeft
	if err := s.pRepo.Update(ctx, p); err != nil {
		return fmt.Errorf("failed to leave room: %w", err)
	}

	if s.prod != nil {
		if err := s.prod.PublishRoomLeft(ctx, kafka.RoomLeftEvent{
			RoomID: roomID,
			UserID: id.UserID,
			Reason: "user_left",
			LeftAt: time.Now(),
		}); err != nil {
			s.l.Errorf(ctx, "roomService.LeaveRoom: failed to publish room left event: %v", err)
		}
	}

	s.l.Info(ctx, "User left room",
		"room_id", roomID,
		"user_id", id.UserID,
	)

	return nil
}

func (s *roomService) ListParticipants(ctx context.Context, roomID string) ([]models.Participant, error) {
	participants, err := s.pRepo.ListByRoom(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}

	joined := participants[:0]
	for _, p := range participants {
		if p.IsJoined() {
			joined = append(joined, p)
		}
	}

	return joined, nil
}

func (s *roomService) Heartbeat(ctx context.Context, roomID string) error {
	id, err := IdentityFrom(ctx)
	if err != nil {
		return err
	}

	if err := s.pRepo.UpdateLastSeen(ctx, roomID, id.UserID, time.Now()); err != nil {
		if err == repo.ErrNotFound {
			return ErrNotAMember
		}
		return err
	}

	return nil
}

func (s *roomService) ApplyPlaybackProgress(ctx context.Context, in PlaybackProgressInput) error {
	pos := models.Position{
		SeasonToken:      in.SeasonToken,
		Episode:          in.Episode,
		TimestampSeconds: in.TimestampSeconds,
	}
	if pos.TimestampSeconds < 0 {
		pos.TimestampSeconds = 0
	}

	if err := s.pRepo.UpdatePosition(ctx, in.RoomID, in.UserID, pos); err != nil {
		if err == repo.ErrNotFound {
			// Progress for someone who never joined; nothing to update.
			s.l.Warnf(ctx, "roomService.ApplyPlaybackProgress: unknown participant %s in room %s", in.UserID, in.RoomID)
			return nil
		}
		return fmt.Errorf("failed to apply playback progress: %w", err)
	}

	if s.prod != nil {
		if err := s.prod.PublishPositionUpdated(ctx, kafka.PositionUpdatedEvent{
			RoomID:    in.RoomID,
			UserID:    in.UserID,
			Position:  pos,
			UpdatedAt: time.Now(),
		}); err != nil {
			s.l.Errorf(ctx, "roomService.ApplyPlaybackProgress: failed to publish position updated event: %v", err)
		}
	}

	return nil
}
