package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/steph-crown/movie-moments/internal/models"
	"github.com/steph-crown/movie-moments/pkg/logger"
)

type ParticipantRepository interface {
	Create(ctx context.Context, p *models.Participant) error
	Get(ctx context.Context, roomID, userID string) (*models.Participant, error)
	Update(ctx context.Context, p *models.Participant) error
	UpdatePosition(ctx context.Context, roomID, userID string, pos models.Position) error
	UpdateLastSeen(ctx context.Context, roomID, userID string, at time.Time) error
	ListByRoom(ctx context.Context, roomID string) ([]models.Participant, error)
}

type redisParticipantRepository struct {
	cli *redis.Client
	l   logger.Logger
}

func NewRedisParticipantRepository(cli *redis.Client, l logger.Logger) ParticipantRepository {
	return &redisParticipantRepository{
		cli: cli,
		l:   l,
	}
}

func (r *redisParticipantRepository) Create(ctx context.Context, p *models.Participant) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal participant: %w", err)
	}

	pipe := r.cli.Pipeline()
	pipe.Set(ctx, participantKey(p.RoomID, p.UserID), data, 0)
	pipe.SAdd(ctx, roomParticipantsKey(p.RoomID), p.UserID)

	if _, err := pipe.Exec(ctx); err != nil {
		r.l.Errorf(ctx, "redisParticipantRepository.Create: %v", err)
		return err
	}

	return nil
}

func (r *redisParticipantRepository) Get(ctx context.Context, roomID, userID string) (*models.Participant, error) {
	data, err := r.cli.Get(ctx, participantKey(roomID, userID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.l.Errorf(ctx, "redisParticipantRepository.Get: %v", err)
		}
		return nil, err
	}

	var p models.Participant
	if err := json.Unmarshal(data, &p); err != nil {
		r.l.Errorf(ctx, "redisParticipantRepository.Get: %v", err)
		return nil, err
	}

	return &p, nil
}

func (r *redisParticipantRepository) Update(ctx context.Context, p *models.Participant) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal participant: %w", err)
	}

	if err := r.cli.Set(ctx, participantKey(p.RoomID, p.UserID), data, 0).Err(); err != nil {
		r.l.Errorf(ctx, "redisParticipantRepository.Update: %v", err)
		return err
	}

	return nil
}

// UpdatePosition overwrites the position and stamps the server-acknowledged
// update time. Positions are never deleted, only overwritten.
func (r *redisParticipantRepository) UpdatePosition(ctx context.Context, roomID, userID string, pos models.Position) error {
	p, err := r.Get(ctx, roomID, userID)
	if err != nil {
		return err
	}

	p.Position = pos
	p.PositionUpdatedAt = time.Now()

	return r.Update(ctx, p)
}

func (r *redisParticipantRepository) UpdateLastSeen(ctx context.Context, roomID, userID string, at time.Time) error {
	p, err := r.Get(ctx, roomID, userID)
	if err != nil {
		return err
	}

	p.LastSeenAt = at

	return r.Update(ctx, p)
}

func (r *redisParticipantRepository) ListByRoom(ctx context.Context, roomID string) ([]models.Participant, error) {
	userIDs, err := r.cli.SMembers(ctx, roomParticipantsKey(roomID)).Result()
	if err != nil {
		r.l.Errorf(ctx, "redisParticipantRepository.ListByRoom: %v", err)
		return nil, err
	}

	participants := make([]models.Participant, 0, len(userIDs))
	for _, userID := range userIDs {
		p, err := r.Get(ctx, roomID, userID)
		if err != nil {
			if err == redis.Nil {
				continue
			}
			return nil, err
		}
		participants = append(participants, *p)
	}

	return participants, nil
}
