// Package events publishes accepted payments for downstream consumers.
package events

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/josh-kwaku/mobile-payments/internal/codec"
	"github.com/josh-kwaku/mobile-payments/internal/domain"
)

type Publisher interface {
	PublishAccepted(ctx context.Context, res domain.PaymentResult) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer messageWriter
	logger *slog.Logger
}

// NewKafkaPublisher uses an async writer: PublishAccepted returns once the
// message is queued, and failed deliveries are logged from the writer's
// completion callback. Close flushes whatever is still queued.
func NewKafkaPublisher(brokers []string, topic string, logger *slog.Logger) *KafkaPublisher {
	p := &KafkaPublisher{logger: logger}
	p.writer = &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 10 * time.Millisecond,
		Async:        true,
		Completion:   p.completed,
	}
	return p
}

func (p *KafkaPublisher) completed(msgs []kafka.Message, err error) {
	if err == nil {
		return
	}
	for _, m := range msgs {
		p.logger.Warn("failed to deliver accepted payment event", "payment_id", string(m.Key), "error", err)
	}
}

// PublishAccepted writes the result in its wire shape, keyed by payment id so
// all events for one payment land on one partition.
func (p *KafkaPublisher) PublishAccepted(ctx context.Context, res domain.PaymentResult) error {
	value, err := codec.EncodeResult(res)
	if err != nil {
		return fmt.Errorf("PublishAccepted: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(res.ID),
		Value: value,
		Time:  res.AcceptedAt(),
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte("payment.accepted")},
		},
	})
	if err != nil {
		return fmt.Errorf("PublishAccepted: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher is used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) PublishAccepted(context.Context, domain.PaymentResult) error { return nil }

func (NopPublisher) Close() error { return nil }

// New picks the Kafka publisher when brokers are configured.
func New(brokers []string, topic string, logger *slog.Logger) Publisher {
	if len(brokers) == 0 {
		return NopPublisher{}
	}
	return NewKafkaPublisher(brokers, topic, logger)
}
