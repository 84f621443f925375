package validator

import (
	"fmt"

	"innkeep/pkg/logger"
	"innkeep/pkg/model"
	"innkeep/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type BookingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	v, err := validation.New()
	if err != nil {
		log.Fatal("Failed to build booking validator", "error", err)
	}

	return &BookingValidator{
		validate: v,
		logger:   log,
	}
}

func (v *BookingValidator) ValidateQuoteRequest(req *model.QuoteRequest) error {
	return validation.Translate(v.validate.Struct(req))
}

// ValidateGuest checks contact details and the special request of a submission.
func (v *BookingValidator) ValidateGuest(req *model.SubmitRequest) error {
	if err := v.validate.Struct(&req.Guest); err != nil {
		return validation.Translate(err)
	}
	return validation.Translate(v.validate.Var(req.SpecialRequest, "omitempty,max=1000"))
}

// ValidateParty requires at least one adult, no negative counts and a party
// that fits the room.
func (v *BookingValidator) ValidateParty(party model.GuestParty, capacity int) error {
	var errs validation.ValidationErrors

	if party.Adults < 1 {
		errs = append(errs, validation.ValidationError{
			Field:   "adults",
			Message: "at least one adult is required",
		})
	}
	if party.Children < 0 {
		errs = append(errs, validation.ValidationError{
			Field:   "children",
			Message: "children cannot be negative",
		})
	}
	if len(errs) == 0 && party.Size() > capacity {
		errs = append(errs, validation.ValidationError{
			Field:   "adults",
			Message: fmt.Sprintf("party of %d exceeds room capacity of %d", party.Size(), capacity),
		})
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func (v *BookingValidator) Validate(booking *model.Booking) error {
	return validation.Translate(v.validate.Struct(booking))
}

func (v *BookingValidator) ValidatePaymentOutcome(outcome *model.PaymentOutcome) error {
	return validation.Translate(v.validate.Struct(outcome))
}

func (v *BookingValidator) ValidateCancel(req *model.CancelRequest) error {
	return validation.Translate(v.validate.Struct(req))
}
