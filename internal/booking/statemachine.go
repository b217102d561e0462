package booking

import (
	"net/http"

	"github.com/pinehollow/club-booking-backend/internal/pkg/apperror"
)

// ErrInvalidTransition is returned when an action is not legal from the
// booking's current state.
var ErrInvalidTransition = apperror.New(http.StatusConflict, "action is not valid for the booking's current state")

// transitions is the lifecycle table. Cancellation is handled separately in
// Transition because its target depends on the booking, not just the state.
var transitions = map[Status]map[Action]Status{
	StatusPending: {
		ActionApprove: StatusApproved,
		ActionDecline: StatusDeclined,
	},
	StatusApproved: {
		ActionConfirm: StatusConfirmed,
		ActionDecline: StatusDeclined,
	},
	StatusConfirmed: {
		ActionAttend:  StatusAttended,
		ActionNoShow:  StatusNoShow,
		ActionDecline: StatusDeclined,
	},
	StatusCancellationPending: {
		ActionAckCancel: StatusCancelled,
	},
}

// Transition computes the next status for the given action. It does not
// mutate the booking.
//
// Cancelling a booking that is already cancelled, or whose cancellation is
// already pending, is an idempotent no-op. Bookings linked to an external
// calendar import enter cancellation_pending instead of cancelling outright;
// staff acknowledge the cancellation once the external system is updated.
func Transition(b *Booking, action Action) (Status, error) {
	if action == ActionCancel {
		switch b.Status {
		case StatusCancelled, StatusCancellationPending:
			return b.Status, nil
		case StatusPending, StatusApproved, StatusConfirmed:
			if b.CalendarImportRef != nil {
				return StatusCancellationPending, nil
			}
			return StatusCancelled, nil
		default:
			return "", ErrInvalidTransition
		}
	}

	next, ok := transitions[b.Status][action]
	if !ok {
		return "", ErrInvalidTransition
	}
	return next, nil
}
