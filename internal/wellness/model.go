package wellness

import (
	"net/http"
	"time"

	"github.com/pinehollow/club-booking-backend/internal/pkg/apperror"
)

var (
	ErrClassNotFound      = apperror.New(http.StatusNotFound, "class not found")
	ErrEnrollmentNotFound = apperror.New(http.StatusNotFound, "enrollment not found")
	ErrClassFull          = apperror.New(http.StatusConflict, "class is full and has no waitlist")
	ErrAlreadyEnrolled    = apperror.New(http.StatusConflict, "member is already enrolled in this class")
	ErrTierDenied         = apperror.New(http.StatusForbidden, "membership tier cannot enroll in wellness classes")
	ErrNoSeatFree         = apperror.New(http.StatusConflict, "class has no free seat to promote into")
	ErrNotWaitlisted      = apperror.New(http.StatusConflict, "enrollment is not on the waitlist")
	ErrClassInPast        = apperror.New(http.StatusBadRequest, "class date has already passed")
	ErrInvalidCapacity    = apperror.New(http.StatusBadRequest, "capacity must be positive")
	ErrInvalidTimeRange   = apperror.New(http.StatusBadRequest, "start time must be before end time")
)

// EnrollmentStatus is the state of one member's spot in a class.
type EnrollmentStatus string

const (
	EnrollmentSeated     EnrollmentStatus = "seated"
	EnrollmentWaitlisted EnrollmentStatus = "waitlisted"
	EnrollmentCancelled  EnrollmentStatus = "cancelled"
)

// Class is a scheduled wellness class. A nil Capacity means the class is
// uncapped and never waitlists.
type Class struct {
	ID              string
	Name            string
	InstructorName  string
	Date            string // "YYYY-MM-DD"
	StartTime       string // "HH:MM"
	EndTime         string // "HH:MM"
	Capacity        *int
	WaitlistEnabled bool

	// Derived counts, populated on read.
	SeatedCount   int
	WaitlistCount int

	CreatedAt time.Time
}

// HasFreeSeat reports whether another member fits in a seat right now.
func (c *Class) HasFreeSeat() bool {
	if c.Capacity == nil {
		return true
	}
	return c.SeatedCount < *c.Capacity
}

// Enrollment is one member's spot (or queued spot) in a class.
type Enrollment struct {
	ID          string
	ClassID     string
	MemberEmail string
	Status      EnrollmentStatus

	// Position is the 1-based waitlist position; zero unless waitlisted.
	Position int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ClassFilter defines parameters for listing classes.
type ClassFilter struct {
	Date     string
	Page     int
	PageSize int
}
