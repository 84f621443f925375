package consumer

import (
	"context"

	"innkeep/internal/payments/service"
	"innkeep/pkg/kafka"
	"innkeep/pkg/logger"
	"innkeep/pkg/middleware"
	"innkeep/pkg/model"
)

const Source = "payments-consumer"

// NewOutcomeHandler applies payment outcome messages to bookings. Errors are
// returned as-is so the consumer can classify them: refusals such as an
// illegal transition are dead-lettered, infrastructure failures are retried.
func NewOutcomeHandler(svc service.OutcomeService, log *logger.Logger) kafka.MessageHandler {
	return func(ctx context.Context, msg kafka.Message) error {
		if eventType := msg.GetEventType(); eventType != "" && eventType != model.EventPaymentOutcome {
			log.Debug("Ignoring unrelated event", "event_type", eventType, "key", msg.Key)
			return nil
		}

		var event model.PaymentOutcomeEvent
		if err := msg.DecodeValue(&event); err != nil {
			return err
		}
		if event.BookingID == "" {
			event.BookingID = msg.Key
		}

		if correlationID := msg.GetCorrelationID(); correlationID != "" {
			ctx = context.WithValue(ctx, middleware.RequestIDKey, correlationID)
		}
		_, err := svc.Apply(ctx, Source, &event)
		return err
	}
}
