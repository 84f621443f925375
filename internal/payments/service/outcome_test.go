package service

import (
	"context"
	"testing"

	"innkeep/pkg/auth"
	apperrors "innkeep/pkg/errors"
	"innkeep/pkg/logger"
	"innkeep/pkg/model"
)

type fakeRecorder struct {
	gotID        string
	gotOutcome   *model.PaymentOutcome
	gotPrincipal auth.Principal
	err          error
}

func (f *fakeRecorder) RecordPayment(ctx context.Context, id string, outcome *model.PaymentOutcome) (*model.Booking, error) {
	f.gotID = id
	f.gotOutcome = outcome
	f.gotPrincipal = auth.FromContext(ctx)
	if f.err != nil {
		return nil, f.err
	}
	return &model.Booking{ID: id, Status: model.StatusConfirmed, PaymentStatus: model.PaymentPaid}, nil
}

func TestApply(t *testing.T) {
	const bookingID = "64b7f0c2a1b2c3d4e5f60718"

	tests := []struct {
		name     string
		event    model.PaymentOutcomeEvent
		err      error
		wantCode string
	}{
		{
			name:  "succeeded",
			event: model.PaymentOutcomeEvent{BookingID: " " + bookingID, PaymentOutcome: model.PaymentOutcome{Outcome: "succeeded", Reference: "pi_1"}},
		},
		{
			name:     "missing booking",
			event:    model.PaymentOutcomeEvent{PaymentOutcome: model.PaymentOutcome{Outcome: "succeeded"}},
			wantCode: apperrors.CodeValidation,
		},
		{
			name:     "malformed booking id",
			event:    model.PaymentOutcomeEvent{BookingID: "b1", PaymentOutcome: model.PaymentOutcome{Outcome: "succeeded"}},
			wantCode: apperrors.CodeValidation,
		},
		{
			name:     "unknown outcome",
			event:    model.PaymentOutcomeEvent{BookingID: bookingID, PaymentOutcome: model.PaymentOutcome{Outcome: "pending"}},
			wantCode: apperrors.CodeValidation,
		},
		{
			name:     "recorder refuses",
			event:    model.PaymentOutcomeEvent{BookingID: bookingID, PaymentOutcome: model.PaymentOutcome{Outcome: "succeeded"}},
			err:      apperrors.IllegalTransition("Booking is cancelled"),
			wantCode: apperrors.CodeIllegalTransition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := &fakeRecorder{err: tt.err}
			svc, err := NewOutcomeService(recorder, logger.Discard())
			if err != nil {
				t.Fatalf("NewOutcomeService() error = %v", err)
			}

			booking, err := svc.Apply(context.Background(), "payment-webhook", &tt.event)
			if tt.wantCode != "" {
				if !apperrors.HasCode(err, tt.wantCode) {
					t.Errorf("error = %v, want %s", err, tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("Apply() error = %v", err)
			}
			if booking.ID != bookingID || recorder.gotID != bookingID {
				t.Errorf("booking = %q, recorded %q", booking.ID, recorder.gotID)
			}
			if recorder.gotPrincipal.Role != auth.RoleSystem || recorder.gotPrincipal.Subject != "payment-webhook" {
				t.Errorf("principal = %+v", recorder.gotPrincipal)
			}
		})
	}
}
