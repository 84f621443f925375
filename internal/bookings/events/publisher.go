// Package events publishes booking lifecycle events.
package events

import (
	"context"
	"fmt"

	"innkeep/pkg/kafka"
	"innkeep/pkg/logger"
	"innkeep/pkg/middleware"
	"innkeep/pkg/model"
)

const source = "innkeep-bookings"

type Publisher interface {
	Publish(ctx context.Context, event *model.BookingEvent) error
	Close() error
}

type eventProducer interface {
	Publish(ctx context.Context, msg kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	producer eventProducer
	log      *logger.Logger
}

func NewKafkaPublisher(producer *kafka.Producer, log *logger.Logger) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, log: log}
}

// Publish keys messages by booking ID so one booking's events stay ordered.
// The request ID, when present, is carried as the correlation ID.
func (p *KafkaPublisher) Publish(ctx context.Context, event *model.BookingEvent) error {
	msg, err := kafka.NewMessage().
		WithKey(event.BookingID).
		WithValue(event).
		WithEventType(event.Type).
		WithCorrelationID(middleware.RequestID(ctx)).
		WithSchemaVersion(model.EventSchemaVersion).
		WithSource(source).
		Build()
	if err != nil {
		return fmt.Errorf("build %s event: %w", event.Type, err)
	}

	if err := p.producer.Publish(ctx, msg); err != nil {
		return fmt.Errorf("publish %s event: %w", event.Type, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

// NoopPublisher logs events instead of publishing them, for deployments
// without Kafka.
type NoopPublisher struct {
	log *logger.Logger
}

func NewNoopPublisher(log *logger.Logger) *NoopPublisher {
	return &NoopPublisher{log: log}
}

func (p *NoopPublisher) Publish(ctx context.Context, event *model.BookingEvent) error {
	p.log.Debug("Booking event not published, Kafka disabled",
		"event_type", event.Type,
		"booking_id", event.BookingID,
	)
	return nil
}

func (p *NoopPublisher) Close() error {
	return nil
}
