package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Quote is the priced result of a prospective stay. Token carries the quote
// inputs between the quote and submission steps; totals are recomputed on submit.
type Quote struct {
	RoomID       string    `json:"room_id"`
	PackageID    string    `json:"package_id,omitempty"`
	CheckIn      time.Time `json:"check_in"`
	CheckOut     time.Time `json:"check_out"`
	Adults       int       `json:"adults"`
	Children     int       `json:"children"`
	Nights       int       `json:"nights"`
	RoomRate     int64     `json:"room_rate"`
	RoomTotal    int64     `json:"room_total"`
	PackageRate  int64     `json:"package_rate,omitempty"`
	PackageTotal int64     `json:"package_total,omitempty"`
	Total        int64     `json:"total"`
	Currency     string    `json:"currency"`
	Available    bool      `json:"available"`
	Token        string    `json:"token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type QuoteRequest struct {
	RoomID    string    `json:"room_id" validate:"required,mongodb"`
	PackageID string    `json:"package_id,omitempty" validate:"omitempty,mongodb"`
	CheckIn   time.Time `json:"check_in" validate:"required"`
	CheckOut  time.Time `json:"check_out" validate:"required"`
	Adults    int       `json:"adults"`
	Children  int       `json:"children"`
}

// UnmarshalJSON accepts check_in and check_out either as a calendar date
// ("2024-05-10") or as an RFC 3339 timestamp.
func (r *QuoteRequest) UnmarshalJSON(data []byte) error {
	type plain QuoteRequest
	aux := struct {
		*plain
		CheckIn  json.RawMessage `json:"check_in"`
		CheckOut json.RawMessage `json:"check_out"`
	}{plain: (*plain)(r)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	var err error
	if r.CheckIn, err = decodeStayDate("check_in", aux.CheckIn); err != nil {
		return err
	}
	if r.CheckOut, err = decodeStayDate("check_out", aux.CheckOut); err != nil {
		return err
	}
	return nil
}

func decodeStayDate(field string, raw json.RawMessage) (time.Time, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return time.Time{}, nil
	}

	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return time.Time{}, fmt.Errorf("%s: expected a date string", field)
	}
	t, err := ParseStayDate(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", field, err)
	}
	return t, nil
}

// ParseStayDate parses YYYY-MM-DD (as UTC midnight) or RFC 3339.
func ParseStayDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, value); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%q is not a YYYY-MM-DD or RFC 3339 date", value)
}

// SubmitRequest either references a sealed quote through QuoteToken or
// repeats the quote inputs inline.
type SubmitRequest struct {
	QuoteToken     string        `json:"quote_token,omitempty"`
	Quote          *QuoteRequest `json:"quote,omitempty"`
	Guest          GuestInfo     `json:"guest"`
	SpecialRequest string        `json:"special_request,omitempty" validate:"omitempty,max=1000"`
}

const (
	PaymentOutcomeSucceeded = "succeeded"
	PaymentOutcomeFailed    = "failed"
)

type PaymentOutcome struct {
	Outcome   string `json:"outcome" validate:"required,oneof=succeeded failed"`
	Provider  string `json:"provider,omitempty" validate:"omitempty,max=50"`
	Reference string `json:"reference,omitempty" validate:"omitempty,max=255"`
}

type CancelRequest struct {
	Refund bool   `json:"refund,omitempty"`
	Reason string `json:"reason,omitempty" validate:"omitempty,max=500"`
	Email  string `json:"email,omitempty" validate:"omitempty,email"`
}

type DashboardStats struct {
	TotalBookings     int64      `json:"total_bookings"`
	PendingBookings   int64      `json:"pending_bookings"`
	ConfirmedBookings int64      `json:"confirmed_bookings"`
	CancelledBookings int64      `json:"cancelled_bookings"`
	CompletedBookings int64      `json:"completed_bookings"`
	Rooms             int64      `json:"rooms"`
	Packages          int64      `json:"packages"`
	CheckInsToday     int64      `json:"check_ins_today"`
	CheckOutsToday    int64      `json:"check_outs_today"`
	Revenue           int64      `json:"revenue"`
	Currency          string     `json:"currency"`
	RecentBookings    []*Booking `json:"recent_bookings"`
}
