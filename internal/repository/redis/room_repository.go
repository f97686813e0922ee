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

type RoomRepository interface {
	Create(ctx context.Context, room *models.Room) error
	Get(ctx context.Context, roomID string) (*models.Room, error)
	Update(ctx context.Context, room *models.Room) error
}

type redisRoomRepository struct {
	cli *redis.Client
	l   logger.Logger
}

func NewRedisRoomRepository(cli *redis.Client, l logger.Logger) RoomRepository {
	return &redisRoomRepository{
		cli: cli,
		l:   l,
	}
}

func (r *redisRoomRepository) Create(ctx context.Context, room *models.Room) error {
	data, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("failed to marshal room: %w", err)
	}

	if err := r.cli.Set(ctx, roomKey(room.ID), data, 0).Err(); err != nil {
		r.l.Errorf(ctx, "redisRoomRepository.Create: %v", err)
		return err
	}

	return nil
}

func (r *redisRoomRepository) Get(ctx context.Context, roomID string) (*models.Room, error) {
	data, err := r.cli.Get(ctx, roomKey(roomID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.l.Errorf(ctx, "redisRoomRepository.Get: %v", err)
		}
		return nil, err
	}

	var room models.Room
	if err := json.Unmarshal(data, &room); err != nil {
		r.l.Errorf(ctx, "redisRoomRepository.Get: %v", err)
		return nil, err
	}

	return &room, nil
}

func (r *redisRoomRepository) Update(ctx context.Context, room *models.Room) error {
	room.UpdatedAt = time.Now()

	data, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("failed to marshal room: %w", err)
	}

	if err := r.cli.Set(ctx, roomKey(room.ID), data, 0).Err(); err != nil {
		r.l.Errorf(ctx, "redisRoomRepository.Update: %v", err)
		return err
	}

	return nil
}
