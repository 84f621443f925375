package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "innkeep/pkg/errors"
	"innkeep/pkg/logger"
	"innkeep/pkg/middleware"
	"innkeep/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type fakeOutcomeService struct {
	got *model.PaymentOutcomeEvent
	err error
}

func (f *fakeOutcomeService) Apply(ctx context.Context, source string, event *model.PaymentOutcomeEvent) (*model.Booking, error) {
	f.got = event
	if f.err != nil {
		return nil, f.err
	}
	return &model.Booking{ID: event.BookingID, Status: model.StatusConfirmed}, nil
}

func TestReceive(t *testing.T) {
	const secret = "whsec_test"
	body := `{"booking_id":"64b7f0c2a1b2c3d4e5f60718","outcome":"succeeded","provider":"stripe","reference":"pi_1"}`

	tests := []struct {
		name       string
		body       string
		signature  string
		err        error
		wantStatus int
		wantApply  bool
	}{
		{"signed", body, "sha256=" + middleware.Sign([]byte(body), secret), nil, http.StatusOK, true},
		{"unsigned", body, "", nil, http.StatusUnauthorized, false},
		{"wrong signature", body, "sha256=" + middleware.Sign([]byte(body), "other"), nil, http.StatusUnauthorized, false},
		{"malformed", `{"booking_id":`, "sha256=" + middleware.Sign([]byte(`{"booking_id":`), secret), nil, http.StatusBadRequest, false},
		{"illegal", body, "sha256=" + middleware.Sign([]byte(body), secret), apperrors.IllegalTransition("Booking is cancelled"), http.StatusConflict, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeOutcomeService{err: tt.err}
			router := httprouter.New()
			NewWebhookHandler(svc, logger.Discard()).RegisterRoutes(router)
			signed := middleware.PaymentSignatureVerification(secret, logger.Discard())(router)

			req := httptest.NewRequest(http.MethodPost, WebhookPath, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			if tt.signature != "" {
				req.Header.Set(middleware.SignatureHeader, tt.signature)
			}
			w := httptest.NewRecorder()
			signed.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d: %s", w.Code, tt.wantStatus, w.Body.String())
			}
			if (svc.got != nil) != tt.wantApply {
				t.Errorf("applied = %v, want %v", svc.got != nil, tt.wantApply)
			}
		})
	}
}
