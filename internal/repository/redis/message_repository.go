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

type MessageRepository interface {
	Create(ctx context.Context, msg *models.Message) error
	Get(ctx context.Context, msgID string) (*models.Message, error)
	ListByRoom(ctx context.Context, roomID string) ([]models.Message, error)
	UpdateText(ctx context.Context, msgID, text string) error
	SoftDelete(ctx context.Context, msgID string) error

	AddReaction(ctx context.Context, r *models.Reaction) error
	RemoveReaction(ctx context.Context, reactionID string) error
	GetReaction(ctx context.Context, reactionID string) (*models.Reaction, error)

	Subscribe(ctx context.Context, roomID string) (Subscription, error)
}

type redisMessageRepository struct {
	cli *redis.Client
	l   logger.Logger
}

func NewRedisMessageRepository(cli *redis.Client, l logger.Logger) MessageRepository {
	return &redisMessageRepository{
		cli: cli,
		l:   l,
	}
}

func (r *redisMessageRepository) Create(ctx context.Context, msg *models.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	pipe := r.cli.Pipeline()
	pipe.Set(ctx, messageKey(msg.ID), data, 0)
	pipe.ZAdd(ctx, roomMessagesKey(msg.RoomID), redis.Z{
		Score:  float64(msg.CreatedAt.UnixMilli()),
		Member: msg.ID,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		r.l.Errorf(ctx, "redisMessageRepository.Create: %v", err)
		return err
	}

	r.publishRoomChange(ctx, models.ChangeEvent{
		Kind:      models.ChangeMessageInserted,
		RoomID:    msg.RoomID,
		MessageID: msg.ID,
	})

	return nil
}

// Get returns the message with its reactions attached.
func (r *redisMessageRepository) Get(ctx context.Context, msgID string) (*models.Message, error) {
	data, err := r.cli.Get(ctx, messageKey(msgID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.l.Errorf(ctx, "redisMessageRepository.Get: %v", err)
		}
		return nil, err
	}

	var msg models.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		r.l.Errorf(ctx, "redisMessageRepository.Get: %v", err)
		return nil, err
	}

	reactions, err := r.listReactions(ctx, msgID)
	if err != nil {
		return nil, err
	}
	msg.Reactions = reactions

	return &msg, nil
}

// ListByRoom returns the room's non-deleted messages in created-at ascending
// order, reactions attached.
func (r *redisMessageRepository) ListByRoom(ctx context.Context, roomID string) ([]models.Message, error) {
	ids, err := r.cli.ZRange(ctx, roomMessagesKey(roomID), 0, -1).Result()
	if err != nil {
		r.l.Errorf(ctx, "redisMessageRepository.ListByRoom: %v", err)
		return nil, err
	}

	msgs := make([]models.Message, 0, len(ids))
	for _, id := range ids {
		msg, err := r.Get(ctx, id)
		if err != nil {
			if err == redis.Nil {
				// Index entry without a row; skip.
				continue
			}
			return nil, err
		}
		if msg.IsDeleted {
			continue
		}
		msgs = append(msgs, *msg)
	}

	return msgs, nil
}

func (r *redisMessageRepository) UpdateText(ctx context.Context, msgID, text string) error {
	msg, err := r.Get(ctx, msgID)
	if err != nil {
		return err
	}

	now := time.Now()
	msg.Text = text
	msg.EditedAt = &now

	if err := r.save(ctx, msg); err != nil {
		return err
	}

	r.publishRoomChange(ctx, models.ChangeEvent{
		Kind:      models.ChangeMessageUpdated,
		RoomID:    msg.RoomID,
		MessageID: msg.ID,
	})

	return nil
}

// SoftDelete marks the row deleted; historical loads filter it out, and a
// deletion event tells live subscribers to drop it.
func (r *redisMessageRepository) SoftDelete(ctx context.Context, msgID string) error {
	msg, err := r.Get(ctx, msgID)
	if err != nil {
		return err
	}

	msg.IsDeleted = true

	if err := r.save(ctx, msg); err != nil {
		return err
	}

	r.publishRoomChange(ctx, models.ChangeEvent{
		Kind:      models.ChangeMessageDeleted,
		RoomID:    msg.RoomID,
		MessageID: msg.ID,
	})

	return nil
}

// AddReaction inserts a reaction, replacing any existing reaction by the
// same user on the same message. The replaced reaction is announced as
// deleted before the new one is announced as inserted.
func (r *redisMessageRepository) AddReaction(ctx context.Context, reaction *models.Reaction) error {
	prev, err := r.cli.HGet(ctx, messageReactionsKey(reaction.MessageID), reaction.UserID).Bytes()
	if err != nil && err != redis.Nil {
		r.l.Errorf(ctx, "redisMessageRepository.AddReaction: %v", err)
		return err
	}

	var replaced *models.Reaction
	if err == nil {
		var old models.Reaction
		if jerr := json.Unmarshal(prev, &old); jerr == nil {
			replaced = &old
		}
	}

	data, err := json.Marshal(reaction)
	if err != nil {
		return fmt.Errorf("failed to marshal reaction: %w", err)
	}

	pipe := r.cli.Pipeline()
	if replaced != nil {
		pipe.Del(ctx, reactionKey(replaced.ID))
	}
	pipe.HSet(ctx, messageReactionsKey(reaction.MessageID), reaction.UserID, data)
	pipe.Set(ctx, reactionKey(reaction.ID), data, 0)

	if _, err := pipe.Exec(ctx); err != nil {
		r.l.Errorf(ctx, "redisMessageRepository.AddReaction: %v", err)
		return err
	}

	if replaced != nil {
		r.publishReactionChange(ctx, models.ChangeEvent{
			Kind:       models.ChangeReactionDeleted,
			MessageID:  replaced.MessageID,
			ReactionID: replaced.ID,
		})
	}

	r.publishReactionChange(ctx, models.ChangeEvent{
		Kind:       models.ChangeReactionInserted,
		MessageID:  reaction.MessageID,
		ReactionID: reaction.ID,
	})

	return nil
}

func (r *redisMessageRepository) RemoveReaction(ctx context.Context, reactionID string) error {
	reaction, err := r.GetReaction(ctx, reactionID)
	if err != nil {
		if err == redis.Nil {
			return nil // Already removed
		}
		return err
	}

	pipe := r.cli.Pipeline()
	pipe.HDel(ctx, messageReactionsKey(reaction.MessageID), reaction.UserID)
	pipe.Del(ctx, reactionKey(reactionID))

	if _, err := pipe.Exec(ctx); err != nil {
		r.l.Errorf(ctx, "redisMessageRepository.RemoveReaction: %v", err)
		return err
	}

	r.publishReactionChange(ctx, models.ChangeEvent{
		Kind:       models.ChangeReactionDeleted,
		MessageID:  reaction.MessageID,
		ReactionID: reactionID,
	})

	return nil
}

func (r *redisMessageRepository) GetReaction(ctx context.Context, reactionID string) (*models.Reaction, error) {
	data, err := r.cli.Get(ctx, reactionKey(reactionID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.l.Errorf(ctx, "redisMessageRepository.GetReaction: %v", err)
		}
		return nil, err
	}

	var reaction models.Reaction
	if err := json.Unmarshal(data, &reaction); err != nil {
		r.l.Errorf(ctx, "redisMessageRepository.GetReaction: %v", err)
		return nil, err
	}

	return &reaction, nil
}

func (r *redisMessageRepository) Subscribe(ctx context.Context, roomID string) (Subscription, error) {
	return newRedisSubscription(ctx, r.cli, roomID, r.l), nil
}

func (r *redisMessageRepository) save(ctx context.Context, msg *models.Message) error {
	// Reactions live in their own hash; never persist them in the row.
	clone := *msg
	clone.Reactions = nil

	data, err := json.Marshal(&clone)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if err := r.cli.Set(ctx, messageKey(msg.ID), data, 0).Err(); err != nil {
		r.l.Errorf(ctx, "redisMessageRepository.save: %v", err)
		return err
	}

	return nil
}

func (r *redisMessageRepository) listReactions(ctx context.Context, msgID string) ([]models.Reaction, error) {
	rows, err := r.cli.HGetAll(ctx, messageReactionsKey(msgID)).Result()
	if err != nil {
		r.l.Errorf(ctx, "redisMessageRepository.listReactions: %v", err)
		return nil, err
	}

	reactions := make([]models.Reaction, 0, len(rows))
	for _, raw := range rows {
		var reaction models.Reaction
		if err := json.Unmarshal([]byte(raw), &reaction); err != nil {
			r.l.Warnf(ctx, "redisMessageRepository.listReactions: skipping bad row: %v", err)
			continue
		}
		reactions = append(reactions, reaction)
	}

	return reactions, nil
}

func (r *redisMessageRepository) publishRoomChange(ctx context.Context, ev models.ChangeEvent) {
	ev.Timestamp = time.Now()
	r.publish(ctx, roomChangesChannel(ev.RoomID), ev)
}

func (r *redisMessageRepository) publishReactionChange(ctx context.Context, ev models.ChangeEvent) {
	ev.Timestamp = time.Now()
	r.publish(ctx, reactionChangesChannel, ev)
}

func (r *redisMessageRepository) publish(ctx context.Context, channel string, ev models.ChangeEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		r.l.Errorf(ctx, "redisMessageRepository.publish: %v", err)
		return
	}

	if err := r.cli.Publish(ctx, channel, data).Err(); err != nil {
		// Change notification failure is not a write failure; subscribers
		// reconcile on their next full reload.
		r.l.Warnf(ctx, "redisMessageRepository.publish: %v", err)
	}
}
