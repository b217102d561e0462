package tier

import (
	"net/http"

	"github.com/pinehollow/club-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound = apperror.New(http.StatusNotFound, "membership tier not found")
)

// Permissions describes what a membership tier is allowed to do and what
// it pays. Resolved once per member per request; never persisted per-booking.
type Permissions struct {
	Tier                  string
	DailySimulatorMinutes int
	DailyConfRoomMinutes  int
	AdvanceBookingDays    int
	UnlimitedAccess       bool
	CanBookSimulator      bool
	CanBookConfRoom       bool
	CanBookWellness       bool

	// Billing parameters, integer cents.
	GuestFeeCents       int
	OverageRateCents    int // flat rate per 30-minute overage block
	GuestPassesPerMonth int
}

// DefaultPermissions is the fallback for an unknown or not-yet-loaded tier.
func DefaultPermissions(tier string) Permissions {
	return Permissions{
		Tier:                  tier,
		DailySimulatorMinutes: 60,
		DailyConfRoomMinutes:  60,
		AdvanceBookingDays:    7,
		UnlimitedAccess:       false,
		CanBookSimulator:      true,
		CanBookConfRoom:       true,
		CanBookWellness:       true,
		GuestFeeCents:         2000,
		OverageRateCents:      1500,
		GuestPassesPerMonth:   0,
	}
}

// DailyAllowance returns the daily minute allowance for the given resource type name.
func (p Permissions) DailyAllowance(resourceType string) int {
	switch resourceType {
	case "conference_room":
		return p.DailyConfRoomMinutes
	default:
		return p.DailySimulatorMinutes
	}
}

// CanBook reports whether the tier may book the given resource type.
func (p Permissions) CanBook(resourceType string) bool {
	switch resourceType {
	case "simulator":
		return p.CanBookSimulator
	case "conference_room":
		return p.CanBookConfRoom
	case "wellness_class":
		return p.CanBookWellness
	default:
		return false
	}
}
