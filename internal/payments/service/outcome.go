package service

import (
	"context"
	"errors"

	"innkeep/pkg/auth"
	apperrors "innkeep/pkg/errors"
	"innkeep/pkg/logger"
	"innkeep/pkg/model"
	"innkeep/pkg/sanitizer"
	"innkeep/pkg/validation"

	"github.com/go-playground/validator/v10"
)

// PaymentRecorder is the booking operation outcomes are applied through.
type PaymentRecorder interface {
	RecordPayment(ctx context.Context, id string, outcome *model.PaymentOutcome) (*model.Booking, error)
}

type OutcomeService interface {
	Apply(ctx context.Context, source string, event *model.PaymentOutcomeEvent) (*model.Booking, error)
}

type outcomeService struct {
	recorder PaymentRecorder
	validate *validator.Validate
	log      *logger.Logger
}

func NewOutcomeService(recorder PaymentRecorder, log *logger.Logger) (OutcomeService, error) {
	v, err := validation.New()
	if err != nil {
		return nil, err
	}

	return &outcomeService{
		recorder: recorder,
		validate: v,
		log:      log,
	}, nil
}

// Apply records an outcome reported by a trusted channel. source names the
// channel and becomes the system principal the booking change is attributed to.
func (s *outcomeService) Apply(ctx context.Context, source string, event *model.PaymentOutcomeEvent) (*model.Booking, error) {
	event.BookingID = sanitizer.TrimAndNormalize(event.BookingID)
	event.Outcome = sanitizer.TrimAndNormalize(event.Outcome)

	if err := validation.Translate(s.validate.Struct(event)); err != nil {
		s.log.Warn("Payment outcome rejected", "source", source, "booking_id", event.BookingID, "error", err)
		var verrs validation.ValidationErrors
		if errors.As(err, &verrs) {
			return nil, apperrors.Validation("Payment outcome validation failed", verrs.Details())
		}
		return nil, apperrors.Validation("Payment outcome validation failed", map[string]any{"error": err.Error()})
	}

	ctx = auth.WithPrincipal(ctx, auth.System(source))
	booking, err := s.recorder.RecordPayment(ctx, event.BookingID, &event.PaymentOutcome)
	if err != nil {
		return nil, err
	}

	s.log.Info("Payment outcome applied",
		"source", source,
		"booking_id", booking.ID,
		"outcome", event.Outcome,
		"status", booking.Status,
		"payment_status", booking.PaymentStatus,
	)
	return booking, nil
}
