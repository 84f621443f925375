package model

import (
	"time"
)

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"

	PaymentUnpaid   = "unpaid"
	PaymentPaid     = "paid"
	PaymentRefunded = "refunded"
)

// StayInterval is the half-open range [CheckIn, CheckOut) of calendar dates.
type StayInterval struct {
	CheckIn  time.Time `json:"check_in" bson:"check_in" validate:"required"`
	CheckOut time.Time `json:"check_out" bson:"check_out" validate:"required"`
}

type GuestParty struct {
	Adults   int `json:"adults" bson:"adults" validate:"min=0,max=50"`
	Children int `json:"children" bson:"children" validate:"min=0,max=50"`
}

func (p GuestParty) Size() int {
	return p.Adults + p.Children
}

type GuestInfo struct {
	Name  string `json:"guest_name" bson:"guest_name" validate:"required,min=2,max=100"`
	Email string `json:"guest_email" bson:"guest_email" validate:"required,email,max=254"`
	Phone string `json:"guest_phone,omitempty" bson:"guest_phone,omitempty" validate:"omitempty,e164"`
}

type Booking struct {
	ID        string `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	RoomID    string `json:"room_id" bson:"room_id" validate:"required,mongodb"`
	PackageID string `json:"package_id,omitempty" bson:"package_id,omitempty" validate:"omitempty,mongodb"`

	StayInterval `bson:",inline"`
	GuestParty   `bson:",inline"`
	GuestInfo    `bson:",inline"`

	SpecialRequest string `json:"special_request,omitempty" bson:"special_request,omitempty" validate:"omitempty,max=1000"`

	Nights      int    `json:"nights" bson:"nights" validate:"min=1"`
	RoomRate    int64  `json:"room_rate" bson:"room_rate" validate:"currency_amount"`
	PackageRate int64  `json:"package_rate,omitempty" bson:"package_rate,omitempty" validate:"currency_amount"`
	TotalPrice  int64  `json:"total_price" bson:"total_price" validate:"currency_amount"`
	Currency    string `json:"currency" bson:"currency" validate:"required,len=3"`

	Status             string `json:"status" bson:"status" validate:"required,oneof=pending confirmed cancelled completed"`
	PaymentStatus      string `json:"payment_status" bson:"payment_status" validate:"required,oneof=unpaid paid refunded"`
	PaymentReference   string `json:"payment_reference,omitempty" bson:"payment_reference,omitempty"`
	CancellationReason string `json:"cancellation_reason,omitempty" bson:"cancellation_reason,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// BookingFilter narrows admin listings. Zero values match everything.
type BookingFilter struct {
	Status        string
	PaymentStatus string
	RoomID        string
	CheckInFrom   *time.Time
	CheckInTo     *time.Time
	SortAscending bool
}

// BookingTransition is a conditional status write: it only applies while the
// stored booking still holds the From state.
type BookingTransition struct {
	FromStatus         string
	FromPaymentStatus  string
	ToStatus           string
	ToPaymentStatus    string
	PaymentReference   string
	CancellationReason string
}
