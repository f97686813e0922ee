package producer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/IBM/sarama"

	kafka "github.com/steph-crown/movie-moments/internal/delivery/kafka"
	"github.com/steph-crown/movie-moments/pkg/logger"
)

type Producer interface {
	PublishRoomJoined(ctx context.Context, event kafka.RoomJoinedEvent) error
	PublishRoomLeft(ctx context.Context, event kafka.RoomLeftEvent) error
	PublishPositionUpdated(ctx context.Context, event kafka.PositionUpdatedEvent) error
	Close() error
}

type implProducer struct {
	l    logger.Logger
	prod sarama.SyncProducer
}

func NewProducer(prod sarama.SyncProducer, l logger.Logger) Producer {
	return &implProducer{
		l:    l,
		prod: prod,
	}
}

func (p *implProducer) PublishRoomJoined(ctx context.Context, event kafka.RoomJoinedEvent) error {
	event.Timestamp = time.Now()
	return p.send(ctx, kafka.TopicRoomJoined, event.RoomID, event)
}

func (p *implProducer) PublishRoomLeft(ctx context.Context, event kafka.RoomLeftEvent) error {
	event.Timestamp = time.Now()
	return p.send(ctx, kafka.TopicRoomLeft, event.RoomID, event)
}

func (p *implProducer) PublishPositionUpdated(ctx context.Context, event kafka.PositionUpdatedEvent) error {
	event.Timestamp = time.Now()
	return p.send(ctx, kafka.TopicPositionUpdated, event.RoomID, event)
}

func (p *implProducer) send(ctx context.Context, topic, key string, event any) error {
	val, err := json.Marshal(event)
	if err != nil {
		p.l.Errorf(ctx, "delivery.kafka.producer.send: %v", err)
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key), // Partition by room_id for ordering
		Value: sarama.ByteEncoder(val),
		Headers: []sarama.RecordHeader{
			{
				Key:   []byte("timestamp"),
				Value: []byte(time.Now().Format(time.RFC3339)),
			},
		},
	}

	_, _, err = p.prod.SendMessage(msg)
	return err
}

func (p *implProducer) Close() error {
	return p.prod.Close()
}
