package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/tengise174/poll-bot-button/internal/core/domain"
	"github.com/tengise174/poll-bot-button/internal/core/ports"
)

type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher writes vote events keyed by poll id, so every vote of a
// poll lands on the same partition in order.
func NewKafkaPublisher(brokers []string, topic string) ports.VotePublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		BatchTimeout:           10 * time.Millisecond,
		MaxAttempts:            3,
		Compression:            kafka.Snappy,
		AllowAutoTopicCreation: true,
	}

	return &KafkaPublisher{writer: w}
}

func (kp *KafkaPublisher) Publish(ctx context.Context, ev domain.VoteEvent) error {
	msg, err := newMessage(ev)
	if err != nil {
		return err
	}

	if err := kp.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write vote event to kafka: %w", err)
	}
	return nil
}

func (kp *KafkaPublisher) Close() error {
	if err := kp.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer: %w", err)
	}
	return nil
}

func newMessage(ev domain.VoteEvent) (kafka.Message, error) {
	value, err := json.Marshal(ev)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to marshal vote event: %w", err)
	}
	return kafka.Message{
		Key:   []byte(ev.PollID),
		Value: value,
		Time:  ev.CastAt,
	}, nil
}
