// Package validation builds the validator/v10 instance shared by the domain
// validators, with the custom tags used on pkg/model types.
package validation

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// MaxCurrencyAmount keeps amounts far enough below MaxInt64 that
// rate * nights cannot overflow for any realistic stay.
const MaxCurrencyAmount = math.MaxInt64 / 100_000

const (
	maxAmenityLength = 50
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// Details renders the errors for an AppError details map.
func (v ValidationErrors) Details() map[string]any {
	fields := make(map[string]string, len(v))
	for _, err := range v {
		fields[err.Field] = err.Message
	}
	return map[string]any{"fields": fields}
}

func New() (*validator.Validate, error) {
	v := validator.New(validator.WithRequiredStructEnabled())

	// report JSON field names, not Go ones
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})

	if err := v.RegisterValidation("currency_amount", validateCurrencyAmount); err != nil {
		return nil, fmt.Errorf("register currency_amount: %w", err)
	}
	if err := v.RegisterValidation("amenities", validateAmenities); err != nil {
		return nil, fmt.Errorf("register amenities: %w", err)
	}

	return v, nil
}

// validateCurrencyAmount accepts non-negative integral amounts up to MaxCurrencyAmount.
func validateCurrencyAmount(fl validator.FieldLevel) bool {
	field := fl.Field()
	switch field.Kind() {
	case reflect.Int, reflect.Int32, reflect.Int64:
		amount := field.Int()
		return amount >= 0 && amount <= MaxCurrencyAmount
	}
	return false
}

func validateAmenities(fl validator.FieldLevel) bool {
	amenities, ok := fl.Field().Interface().([]string)
	if !ok {
		return false
	}

	seen := make(map[string]struct{}, len(amenities))
	for _, amenity := range amenities {
		if amenity == "" || len(amenity) > maxAmenityLength {
			return false
		}
		if _, dup := seen[amenity]; dup {
			return false
		}
		seen[amenity] = struct{}{}
	}
	return true
}

// Translate converts validator errors into readable per-field messages.
// Non-validator errors are returned unchanged.
func Translate(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	var out ValidationErrors
	for _, fe := range validationErrs {
		out = append(out, ValidationError{
			Field:   fe.Field(),
			Message: message(fe),
		})
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "len":
		return fmt.Sprintf("%s must have length %s", fe.Field(), fe.Param())
	case "mongodb":
		return fmt.Sprintf("%s must be a valid MongoDB ObjectID", fe.Field())
	case "e164":
		return fmt.Sprintf("%s must be in E.164 format (e.g., +254712345678)", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "currency_amount":
		return fmt.Sprintf("%s must be a non-negative whole amount no greater than %d", fe.Field(), MaxCurrencyAmount)
	case "amenities":
		return fmt.Sprintf("%s must be unique non-empty labels of at most %d characters", fe.Field(), maxAmenityLength)
	}
	return fe.Error()
}
