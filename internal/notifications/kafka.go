package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

type KafkaConfig struct {
	Brokers      []string
	Topic        string
	MaxAttempts  int
	RetryBackoff time.Duration
}

// messageWriter is the part of kafka.Writer the channel needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaChannel appends moderation events to the event log topic, keyed by
// project so a project's events stay ordered.
type KafkaChannel struct {
	writer messageWriter
	topic  string
}

func NewKafkaChannel(cfg KafkaConfig) *KafkaChannel {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireAll,
		MaxAttempts:            cfg.MaxAttempts,
		WriteBackoffMin:        cfg.RetryBackoff,
		WriteBackoffMax:        cfg.RetryBackoff * 10,
	}
	return &KafkaChannel{writer: writer, topic: cfg.Topic}
}

func (k *KafkaChannel) Name() string { return "kafka" }

func (k *KafkaChannel) Deliver(ctx context.Context, event ModerationEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.ProjectID.String()),
		Value: data,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write to %s: %w", k.topic, err)
	}
	return nil
}

func (k *KafkaChannel) Close() error {
	return k.writer.Close()
}
