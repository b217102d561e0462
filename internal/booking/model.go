package booking

import (
	"fmt"
	"net/http"
	"time"

	"github.com/pinehollow/club-booking-backend/internal/pkg/apperror"
	"github.com/pinehollow/club-booking-backend/internal/resource"
)

var (
	ErrNotFound             = apperror.New(http.StatusNotFound, "booking not found")
	ErrParticipantNotFound  = apperror.New(http.StatusNotFound, "participant not found")
	ErrSlotTaken            = apperror.New(http.StatusConflict, "slot is no longer available")
	ErrInvalidTimeRange     = apperror.New(http.StatusBadRequest, "start time must be before end time")
	ErrDurationMismatch     = apperror.New(http.StatusBadRequest, "duration does not match start and end time")
	ErrTierPermissionDenied = apperror.New(http.StatusForbidden, "membership tier cannot book this resource type")
	ErrAdvanceWindow        = apperror.New(http.StatusBadRequest, "date is outside the tier's advance booking window")
	ErrIncompleteGuestInfo  = apperror.New(http.StatusBadRequest, "guest roster has entries without name or email")
	ErrConsentRequired      = apperror.New(http.StatusBadRequest, "guardian consent is required for this member")
	ErrPrepaymentRequired   = apperror.New(http.StatusPaymentRequired, "overage fee must be prepaid for conference room bookings")
	ErrNotBookable          = apperror.New(http.StatusBadRequest, "resource type is not booked through this endpoint")
	ErrPermissionDenied     = apperror.New(http.StatusForbidden, "permission denied")
)

// Status is a booking's lifecycle state.
type Status string

const (
	StatusPending             Status = "pending"
	StatusApproved            Status = "approved"
	StatusConfirmed           Status = "confirmed"
	StatusAttended            Status = "attended"
	StatusNoShow              Status = "no_show"
	StatusDeclined            Status = "declined"
	StatusCancelled           Status = "cancelled"
	StatusCancellationPending Status = "cancellation_pending"
)

// Action is a lifecycle transition request.
type Action string

const (
	ActionApprove   Action = "approve"
	ActionConfirm   Action = "confirm"
	ActionAttend    Action = "attend"
	ActionNoShow    Action = "no_show"
	ActionDecline   Action = "decline"
	ActionCancel    Action = "cancel"
	ActionAckCancel Action = "acknowledge_cancellation"
)

// ParticipantType distinguishes members from guests on a roster.
type ParticipantType string

const (
	ParticipantMember ParticipantType = "member"
	ParticipantGuest  ParticipantType = "guest"
)

// InviteStatus tracks the accept/decline sub-protocol. It is only meaningful
// for member participants other than the owner.
type InviteStatus string

const (
	InvitePending  InviteStatus = "pending"
	InviteAccepted InviteStatus = "accepted"
	InviteDeclined InviteStatus = "declined"
)

// Participant is one roster entry on a booking.
type Participant struct {
	ID           string
	BookingID    string
	Type         ParticipantType
	MemberEmail  string // member participants
	GuestName    string // guest participants
	GuestEmail   string
	InviteStatus InviteStatus
	CreatedAt    time.Time
}

// HasIdentity reports whether a guest entry is resolvable. Guests without
// identity still count toward fees but block submission.
func (p Participant) HasIdentity() bool {
	if p.Type == ParticipantMember {
		return p.MemberEmail != ""
	}
	return p.GuestName != "" || p.GuestEmail != ""
}

// Booking is a reservation request for a simulator bay or conference room.
// The resource type is carried explicitly; it is never inferred from notes
// or display names.
type Booking struct {
	ID                  string
	OwnerEmail          string
	OwnerTier           string
	ResourceID          string
	ResourceName        string
	ResourceType        resource.Type
	Date                string // "YYYY-MM-DD"
	StartTime           string // "HH:MM"
	EndTime             string // "HH:MM"
	DurationMinutes     int
	DeclaredPlayerCount int
	Notes               string
	Status              Status
	Participants        []Participant

	OverageMinutes  int
	OverageFeeCents int
	OveragePaid     bool

	// CalendarImportRef links a booking to an external calendar import.
	// Such bookings cannot be deleted directly; cancellation goes through
	// the cancellation_pending handshake and is flagged for manual follow-up.
	CalendarImportRef   *string
	NeedsManualFollowUp bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// AcceptedParticipantEmails returns the emails of non-owner member
// participants who accepted their invite.
func (b *Booking) AcceptedParticipantEmails() []string {
	var emails []string
	for _, p := range b.Participants {
		if p.Type == ParticipantMember && p.InviteStatus == InviteAccepted {
			emails = append(emails, p.MemberEmail)
		}
	}
	return emails
}

// Terminal reports whether the booking is logically retired. Retired
// bookings are never deleted.
func (s Status) Terminal() bool {
	switch s {
	case StatusAttended, StatusNoShow, StatusDeclined, StatusCancelled:
		return true
	}
	return false
}

// Filter defines parameters for listing bookings.
type Filter struct {
	OwnerEmail   string
	ResourceID   string
	ResourceType string
	Date         string
	Status       string
	Page         int
	PageSize     int
}

// DailyLimitError reports the one-active-simulator-booking-per-day rule,
// surfacing the existing booking so the caller can show it instead of a
// slot picker.
type DailyLimitError struct {
	Existing *Booking
}

func (e *DailyLimitError) Error() string {
	return fmt.Sprintf("member already holds an active simulator booking on %s (booking %s)",
		e.Existing.Date, e.Existing.ID)
}
