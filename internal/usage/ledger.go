// Package usage derives how many minutes a member has already consumed per
// resource type on a day. It is a pure function over a booking snapshot; the
// booking service maps its records into Entry values before calling in.
package usage

import "math"

// Unlimited is the remaining-minutes sentinel reported for tiers with
// unlimited access.
const Unlimited = math.MaxInt32

// Entry is the slice of a booking record the ledger needs.
type Entry struct {
	Date            string // "YYYY-MM-DD"
	ResourceType    string
	Status          string
	OwnerEmail      string
	DurationMinutes int
	PlayerCount     int      // declared players, owner included
	AcceptedEmails  []string // non-owner member participants who accepted
}

// countedStatuses are the booking states that consume allowance. Cancelled,
// declined and no-show bookings never count.
var countedStatuses = map[string]struct{}{
	"pending":   {},
	"approved":  {},
	"confirmed": {},
	"attended":  {},
}

// UsedMinutes sums the member's share of every counted booking on the date
// for the resource type. A shared booking's duration is split evenly across
// its declared player count, rounding each share up, so the summed shares
// never under-count the booked time.
func UsedMinutes(email, resourceType, date string, entries []Entry) int {
	total := 0
	for _, e := range entries {
		if e.Date != date || e.ResourceType != resourceType {
			continue
		}
		if _, ok := countedStatuses[e.Status]; !ok {
			continue
		}
		if !involves(e, email) {
			continue
		}

		players := e.PlayerCount
		if players < 1 {
			players = 1
		}
		total += ceilDiv(e.DurationMinutes, players)
	}
	return total
}

// RemainingMinutes reports the informational remainder of a daily allowance.
// It never goes negative and never blocks a booking; crossing it only means
// the prospective booking runs into overage.
func RemainingMinutes(allowanceMinutes int, unlimitedAccess bool, usedMinutes int) int {
	if unlimitedAccess {
		return Unlimited
	}
	remaining := allowanceMinutes - usedMinutes
	if remaining < 0 {
		return 0
	}
	return remaining
}

func involves(e Entry, email string) bool {
	if e.OwnerEmail == email {
		return true
	}
	for _, p := range e.AcceptedEmails {
		if p == email {
			return true
		}
	}
	return false
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
