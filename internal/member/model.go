package member

import (
	"net/http"
	"time"

	"github.com/pinehollow/club-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound           = apperror.New(http.StatusNotFound, "member not found")
	ErrEmailAlreadyUsed   = apperror.New(http.StatusConflict, "email already used")
	ErrInvalidCredentials = apperror.New(http.StatusUnauthorized, "invalid email or password")
	ErrInactiveMember     = apperror.New(http.StatusForbidden, "membership is inactive")
	ErrEmailRequired      = apperror.New(http.StatusBadRequest, "email is required")
	ErrPasswordTooShort   = apperror.New(http.StatusBadRequest, "password is too short")
	ErrInvalidWaiver      = apperror.New(http.StatusBadRequest, "waiver image could not be processed")
)

// adultAge is the age at which the guardian consent gate stops applying.
const adultAge = 18

// Member represents a club member account.
type Member struct {
	ID           string // UUID
	Email        string
	PasswordHash string
	DisplayName  *string
	Tier         string
	DateOfBirth  *time.Time

	GuestPassesTotal int
	GuestPassesUsed  int

	CreatedAt   time.Time
	LastLoginAt *time.Time
	IsActive    bool
	IsStaff     bool
}

// IsMinor reports whether the member is under 18 on the given date.
// An unknown date of birth never blocks anything.
func (m *Member) IsMinor(on time.Time) bool {
	if m.DateOfBirth == nil {
		return false
	}
	age := on.Year() - m.DateOfBirth.Year()
	anniversary := m.DateOfBirth.AddDate(age, 0, 0)
	if anniversary.After(on) {
		age--
	}
	return age < adultAge
}

// GuestPassBalance is the member's consumable guest-pass credit.
type GuestPassBalance struct {
	MemberEmail string
	Total       int
	Used        int
}

// Remaining is the usable pass count, never negative.
func (b GuestPassBalance) Remaining() int {
	r := b.Total - b.Used
	if r < 0 {
		return 0
	}
	return r
}

// GuardianConsent is the one-time consent payload captured for a minor
// member's first booking. Subsequent bookings reuse it.
type GuardianConsent struct {
	ID           string
	MemberEmail  string
	GuardianName string
	WaiverPath   string
	CapturedAt   time.Time
}
