package kafka

import (
	"context"

	"travelpartner/pkg/logger"
)

// EventPublisher publishes domain events keyed for partition ordering.
type EventPublisher interface {
	PublishEvent(ctx context.Context, eventType string, key string, payload any) error
}

type ProducerPublisher struct {
	producer *Producer
	source   string
}

func NewProducerPublisher(producer *Producer, source string) *ProducerPublisher {
	return &ProducerPublisher{producer: producer, source: source}
}

func (p *ProducerPublisher) PublishEvent(ctx context.Context, eventType string, key string, payload any) error {
	msg, err := NewMessage().
		WithKey(key).
		WithEventType(eventType).
		WithSource(p.source).
		WithCorrelationID(logger.RequestID(ctx)).
		WithValue(payload).
		Build()
	if err != nil {
		return err
	}
	return p.producer.Publish(ctx, msg)
}

// LogPublisher stands in when Kafka is disabled; events only reach the log.
type LogPublisher struct {
	log *logger.Logger
}

func NewLogPublisher(log *logger.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) PublishEvent(_ context.Context, eventType string, key string, payload any) error {
	p.log.Info("Domain event", "event_type", eventType, "key", key, "payload", payload)
	return nil
}
