package repository

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/steph-crown/movie-moments/internal/models"
	"github.com/steph-crown/movie-moments/pkg/logger"
)

// Subscription delivers change events for one room until closed. Events
// arrive in the order the transport delivers them; nothing is re-sorted.
type Subscription interface {
	Events() <-chan models.ChangeEvent
	Close() error
}

type redisSubscription struct {
	pubsub *redis.PubSub
	events chan models.ChangeEvent
	l      logger.Logger
}

// newRedisSubscription listens on the room's message channel and the global
// reaction channel, decoding every payload into a tagged ChangeEvent.
func newRedisSubscription(ctx context.Context, cli *redis.Client, roomID string, l logger.Logger) *redisSubscription {
	pubsub := cli.Subscribe(ctx, roomChangesChannel(roomID), reactionChangesChannel)

	s := &redisSubscription{
		pubsub: pubsub,
		events: make(chan models.ChangeEvent, 64),
		l:      l,
	}

	go s.pump(ctx)

	return s
}

func (s *redisSubscription) pump(ctx context.Context) {
	defer close(s.events)

	for msg := range s.pubsub.Channel() {
		var ev models.ChangeEvent
		if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
			s.l.Warnf(ctx, "repository.redisSubscription.pump: dropping undecodable payload: %v", err)
			continue
		}

		select {
		case s.events <- ev:
		case <-ctx.Done():
			return
		}
	}
}

func (s *redisSubscription) Events() <-chan models.ChangeEvent {
	return s.events
}

func (s *redisSubscription) Close() error {
	return s.pubsub.Close()
}
