// Package verifier checks payment outcomes against the payment provider
// before a booking is marked paid.
package verifier

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	apperrors "innkeep/pkg/errors"
	"innkeep/pkg/logger"
	"innkeep/pkg/model"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

const (
	ProviderStripe = "stripe"

	// MetadataBookingID is the PaymentIntent metadata key naming the booking.
	MetadataBookingID = "booking_id"
)

type Verifier interface {
	Verify(ctx context.Context, booking *model.Booking, outcome *model.PaymentOutcome) error
}

// NoopVerifier accepts every outcome. Used when no provider key is configured.
type NoopVerifier struct{}

func (NoopVerifier) Verify(ctx context.Context, booking *model.Booking, outcome *model.PaymentOutcome) error {
	return nil
}

type paymentIntentGetter interface {
	Get(id string, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

// StripeVerifier confirms that a Stripe PaymentIntent succeeded for the
// booking's exact total and currency. Outcomes from other providers pass.
type StripeVerifier struct {
	intents paymentIntentGetter
	log     *logger.Logger
}

func NewStripeVerifier(secretKey string, log *logger.Logger) *StripeVerifier {
	sc := &client.API{}
	sc.Init(secretKey, nil)

	return &StripeVerifier{
		intents: sc.PaymentIntents,
		log:     log,
	}
}

func (v *StripeVerifier) Verify(ctx context.Context, booking *model.Booking, outcome *model.PaymentOutcome) error {
	if !strings.EqualFold(outcome.Provider, ProviderStripe) {
		return nil
	}
	if !strings.HasPrefix(outcome.Reference, "pi_") {
		return apperrors.PaymentRejected("Stripe payments must reference a PaymentIntent ID")
	}

	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	intent, err := v.intents.Get(outcome.Reference, params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.HTTPStatusCode == http.StatusNotFound {
			return apperrors.PaymentRejected("Payment intent not found").WithCause(err)
		}
		v.log.Error("Failed to retrieve payment intent",
			"booking_id", booking.ID,
			"reference", outcome.Reference,
			"error", err,
		)
		return apperrors.Unavailable("payment provider").WithCause(err)
	}

	if intent.Status != stripe.PaymentIntentStatusSucceeded {
		return apperrors.PaymentRejected(fmt.Sprintf("Payment intent status is %s", intent.Status))
	}
	if intent.Amount != booking.TotalPrice {
		v.log.Warn("Payment amount mismatch",
			"booking_id", booking.ID,
			"reference", outcome.Reference,
			"expected", booking.TotalPrice,
			"received", intent.Amount,
		)
		return apperrors.PaymentRejected("Payment amount does not match booking total")
	}
	if !strings.EqualFold(string(intent.Currency), booking.Currency) {
		return apperrors.PaymentRejected("Payment currency does not match booking currency")
	}
	if id, ok := intent.Metadata[MetadataBookingID]; ok && id != booking.ID {
		return apperrors.PaymentRejected("Payment intent belongs to another booking")
	}

	return nil
}
