package consumer

import (
	"context"
	"encoding/json"

	"github.com/IBM/sarama"

	kafka "github.com/steph-crown/movie-moments/internal/delivery/kafka"
	"github.com/steph-crown/movie-moments/internal/service"
)

func (c *Consumer) HandlePlaybackProgress(ctx context.Context, message *sarama.ConsumerMessage) error {
	var e kafka.PlaybackProgressEvent
	if err := json.Unmarshal(message.Value, &e); err != nil {
		c.l.Errorf(ctx, "delivery.kafka.consumer.HandlePlaybackProgress: %v", err)
		return err
	}

	if err := c.rmSvc.ApplyPlaybackProgress(ctx, service.PlaybackProgressInput{
		RoomID:           e.RoomID,
		UserID:           e.UserID,
		SeasonToken:      e.SeasonToken,
		Episode:          e.Episode,
		TimestampSeconds: e.TimestampSeconds,
		ReportedAt:       e.ReportedAt,
	}); err != nil {
		c.l.Errorf(ctx, "delivery.kafka.consumer.HandlePlaybackProgress: %v", err)
		return err
	}

	return nil
}
