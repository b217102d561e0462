package usage

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func entry(date, rtype, status, owner string, duration, players int) Entry {
	return Entry{
		Date:            date,
		ResourceType:    rtype,
		Status:          status,
		OwnerEmail:      owner,
		DurationMinutes: duration,
		PlayerCount:     players,
	}
}

func TestUsedMinutesEmptyLedger(t *testing.T) {
	require.Equal(t, 0, UsedMinutes("a@club.test", "simulator", "2026-09-01", nil))
	require.Equal(t, 0, UsedMinutes("a@club.test", "simulator", "2026-09-01", []Entry{}))
}

func TestUsedMinutesFiltersDateTypeAndStatus(t *testing.T) {
	entries := []Entry{
		entry("2026-09-01", "simulator", "confirmed", "a@club.test", 60, 1),
		entry("2026-09-02", "simulator", "confirmed", "a@club.test", 60, 1), // wrong date
		entry("2026-09-01", "conference_room", "confirmed", "a@club.test", 60, 1), // wrong type
		entry("2026-09-01", "simulator", "cancelled", "a@club.test", 60, 1),  // excluded status
		entry("2026-09-01", "simulator", "no_show", "a@club.test", 60, 1),    // excluded status
		entry("2026-09-01", "simulator", "declined", "a@club.test", 60, 1),   // excluded status
		entry("2026-09-01", "simulator", "pending", "b@club.test", 60, 1),    // other member
	}

	require.Equal(t, 60, UsedMinutes("a@club.test", "simulator", "2026-09-01", entries))
}

func TestUsedMinutesSplitsSharedBookings(t *testing.T) {
	entries := []Entry{
		entry("2026-09-01", "simulator", "approved", "a@club.test", 90, 4),
	}

	// ceil(90/4) = 23; share rounding never under-counts the total.
	require.Equal(t, 23, UsedMinutes("a@club.test", "simulator", "2026-09-01", entries))
	require.GreaterOrEqual(t, 23*4, 90)
}

func TestUsedMinutesZeroPlayerCountTreatedAsOne(t *testing.T) {
	entries := []Entry{
		entry("2026-09-01", "simulator", "pending", "a@club.test", 45, 0),
	}
	require.Equal(t, 45, UsedMinutes("a@club.test", "simulator", "2026-09-01", entries))
}

func TestUsedMinutesCountsAcceptedParticipants(t *testing.T) {
	e := entry("2026-09-01", "simulator", "confirmed", "a@club.test", 120, 2)
	e.AcceptedEmails = []string{"b@club.test"}

	entries := []Entry{e}
	require.Equal(t, 60, UsedMinutes("b@club.test", "simulator", "2026-09-01", entries))
}

func TestUsedMinutesMonotone(t *testing.T) {
	entries := []Entry{
		entry("2026-09-01", "simulator", "confirmed", "a@club.test", 60, 2),
	}
	before := UsedMinutes("a@club.test", "simulator", "2026-09-01", entries)

	entries = append(entries, entry("2026-09-01", "simulator", "pending", "a@club.test", 30, 1))
	after := UsedMinutes("a@club.test", "simulator", "2026-09-01", entries)

	require.Greater(t, after, before)
}

func TestRemainingMinutes(t *testing.T) {
	require.Equal(t, 30, RemainingMinutes(60, false, 30))
	require.Equal(t, 0, RemainingMinutes(60, false, 90))
	require.Equal(t, Unlimited, RemainingMinutes(60, true, 9999))
}
