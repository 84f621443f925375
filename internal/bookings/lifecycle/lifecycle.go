// Package lifecycle holds the booking state machine over the combined
// (status, payment status) pair.
package lifecycle

import (
	"errors"
	"fmt"

	"innkeep/pkg/model"
)

var ErrIllegalTransition = errors.New("illegal booking transition")

type Event string

const (
	EventPaymentSucceeded Event = "payment_succeeded"
	EventCancel           Event = "cancel"
	EventCancelWithRefund Event = "cancel_with_refund"
	EventComplete         Event = "complete"
)

type State struct {
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
}

func (s State) String() string {
	return fmt.Sprintf("(%s, %s)", s.Status, s.PaymentStatus)
}

var (
	pendingUnpaid     = State{model.StatusPending, model.PaymentUnpaid}
	confirmedPaid     = State{model.StatusConfirmed, model.PaymentPaid}
	cancelledUnpaid   = State{model.StatusCancelled, model.PaymentUnpaid}
	cancelledPaid     = State{model.StatusCancelled, model.PaymentPaid}
	cancelledRefunded = State{model.StatusCancelled, model.PaymentRefunded}
	completedPaid     = State{model.StatusCompleted, model.PaymentPaid}
)

// validTransitions is the complete table; any pair not listed is illegal.
var validTransitions = map[State]map[Event]State{
	pendingUnpaid: {
		EventPaymentSucceeded: confirmedPaid,
		EventCancel:           cancelledUnpaid,
	},
	confirmedPaid: {
		EventCancel:           cancelledPaid,
		EventCancelWithRefund: cancelledRefunded,
		EventComplete:         completedPaid,
	},
}

// Initial is the state of every newly submitted booking.
func Initial() State {
	return pendingUnpaid
}

func Of(b *model.Booking) State {
	return State{Status: b.Status, PaymentStatus: b.PaymentStatus}
}

func Transition(from State, ev Event) (State, error) {
	if to, ok := validTransitions[from][ev]; ok {
		return to, nil
	}
	return State{}, fmt.Errorf("%w: %s from %s", ErrIllegalTransition, ev, from)
}

// CanApply reports whether ev is legal from the given state.
func CanApply(from State, ev Event) bool {
	_, ok := validTransitions[from][ev]
	return ok
}

// IsTerminal reports whether no event can leave the state.
func IsTerminal(s State) bool {
	return len(validTransitions[s]) == 0
}

// IsActive reports whether a booking in this status holds its room.
func IsActive(status string) bool {
	return status == model.StatusPending || status == model.StatusConfirmed
}

func ActiveStatuses() []string {
	return []string{model.StatusPending, model.StatusConfirmed}
}
