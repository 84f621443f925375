package model

import "time"

const (
	EventBookingCreated   = "booking.created"
	EventBookingPaid      = "booking.paid"
	EventBookingCancelled = "booking.cancelled"
	EventBookingCompleted = "booking.completed"
	EventPaymentFailed    = "booking.payment_failed"

	EventPaymentOutcome = "payment.outcome"

	EventSchemaVersion = "1"
)

// BookingEvent is the payload published on the booking events topic.
type BookingEvent struct {
	Type          string    `json:"type"`
	BookingID     string    `json:"booking_id"`
	RoomID        string    `json:"room_id"`
	PackageID     string    `json:"package_id,omitempty"`
	CheckIn       time.Time `json:"check_in"`
	CheckOut      time.Time `json:"check_out"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"payment_status"`
	TotalPrice    int64     `json:"total_price"`
	Currency      string    `json:"currency"`
	Reference     string    `json:"reference,omitempty"`
	Reason        string    `json:"reason,omitempty"`
	Actor         string    `json:"actor,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// PaymentOutcomeEvent is consumed from the payment outcomes topic.
type PaymentOutcomeEvent struct {
	BookingID string `json:"booking_id" validate:"required,mongodb"`
	PaymentOutcome
}

func NewBookingEvent(eventType string, b *Booking, actor string) *BookingEvent {
	return &BookingEvent{
		Type:          eventType,
		BookingID:     b.ID,
		RoomID:        b.RoomID,
		PackageID:     b.PackageID,
		CheckIn:       b.CheckIn,
		CheckOut:      b.CheckOut,
		Status:        b.Status,
		PaymentStatus: b.PaymentStatus,
		TotalPrice:    b.TotalPrice,
		Currency:      b.Currency,
		Reference:     b.PaymentReference,
		Reason:        b.CancellationReason,
		Actor:         actor,
		OccurredAt:    time.Now().UTC(),
	}
}
