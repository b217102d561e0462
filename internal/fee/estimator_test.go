package fee

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEstimateSinglePlayerOverage(t *testing.T) {
	// 60 min/day allowance, no prior usage, 90 minute solo booking:
	// 30 minutes of overage, one block.
	b := Estimate(Params{
		DurationMinutes:       90,
		ResourceType:          "simulator",
		PlayerCount:           1,
		DailyAllowanceMinutes: 60,
		OverageRateCents:      1500,
	})

	require.Equal(t, 90, b.ShareMinutes)
	require.Equal(t, 30, b.OverageMinutes)
	require.Equal(t, 1, b.OverageBlocks)
	require.Equal(t, 1500, b.OverageFeeCents)
	require.Equal(t, 1500, b.TotalFeeCents)
}

func TestEstimateSharedBookingSplitsDuration(t *testing.T) {
	// 120 minutes for 2 players against a 60 minute allowance: each share
	// is exactly the allowance, no overage.
	b := Estimate(Params{
		DurationMinutes:       120,
		ResourceType:          "simulator",
		PlayerCount:           2,
		DailyAllowanceMinutes: 60,
		OverageRateCents:      1500,
	})

	require.Equal(t, 60, b.ShareMinutes)
	require.Equal(t, 0, b.OverageMinutes)
	require.Equal(t, 0, b.TotalFeeCents)
}

func TestEstimateConferenceRoomChargesFullDuration(t *testing.T) {
	b := Estimate(Params{
		DurationMinutes:       120,
		ResourceType:          "conference_room",
		PlayerCount:           4, // ignored for conference rooms
		DailyAllowanceMinutes: 60,
		OverageRateCents:      1000,
	})

	require.Equal(t, 120, b.ShareMinutes)
	require.Equal(t, 60, b.OverageMinutes)
	require.Equal(t, 2, b.OverageBlocks)
	require.Equal(t, 2000, b.OverageFeeCents)
}

func TestEstimateGuestPassConsumption(t *testing.T) {
	// 2 guests, 1 pass remaining, $20 guest fee.
	b := Estimate(Params{
		DurationMinutes:       60,
		ResourceType:          "simulator",
		PlayerCount:           3,
		GuestCount:            2,
		GuestsWithIdentity:    2,
		DailyAllowanceMinutes: 60,
		GuestFeeCents:         2000,
		GuestPassesRemaining:  1,
	})

	require.Equal(t, 1, b.GuestsUsingPasses)
	require.Equal(t, 1, b.GuestsCharged)
	require.Equal(t, 2000, b.GuestFeesCents)
	require.Equal(t, 0, b.PassesRemainingAfter)
	require.Equal(t, 2000, b.TotalFeeCents)
}

func TestEstimatePassConsumptionBounded(t *testing.T) {
	cases := []struct {
		name   string
		guests int
		passes int
	}{
		{"more passes than guests", 1, 5},
		{"more guests than passes", 5, 2},
		{"no passes", 3, 0},
		{"no guests", 0, 4},
		{"negative inputs clamped", -2, -3},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := Estimate(Params{
				GuestCount:           tc.guests,
				GuestPassesRemaining: tc.passes,
				GuestFeeCents:        2000,
			})
			require.LessOrEqual(t, b.GuestsUsingPasses, max(tc.passes, 0))
			require.LessOrEqual(t, b.GuestsUsingPasses, max(tc.guests, 0))
			require.GreaterOrEqual(t, b.PassesRemainingAfter, 0)
			require.GreaterOrEqual(t, b.GuestsCharged, 0)
		})
	}
}

func TestEstimateOverageMonotoneInUsedMinutes(t *testing.T) {
	base := Params{
		DurationMinutes:       60,
		ResourceType:          "simulator",
		PlayerCount:           1,
		DailyAllowanceMinutes: 60,
		OverageRateCents:      1500,
	}

	prev := -1
	for used := 0; used <= 240; used += 15 {
		p := base
		p.UsedMinutesForDay = used
		b := Estimate(p)
		require.GreaterOrEqual(t, b.OverageMinutes, prev)
		prev = b.OverageMinutes
	}
}

func TestEstimateUnlimitedTierHasNoOverage(t *testing.T) {
	b := Estimate(Params{
		DurationMinutes:       240,
		ResourceType:          "simulator",
		PlayerCount:           1,
		UsedMinutesForDay:     600,
		DailyAllowanceMinutes: 60,
		UnlimitedAccess:       true,
		OverageRateCents:      1500,
	})

	require.Equal(t, 0, b.OverageMinutes)
	require.Equal(t, 0, b.OverageFeeCents)
}

func TestEstimateFlagsGuestsWithoutIdentity(t *testing.T) {
	b := Estimate(Params{
		GuestCount:         3,
		GuestsWithIdentity: 1,
		GuestFeeCents:      2000,
	})

	// Unidentified guests still count for fee purposes, but are flagged so
	// the caller can block submission.
	require.Equal(t, 2, b.GuestsWithoutInfo)
	require.Equal(t, 3, b.GuestsCharged)
}

func TestEstimateZeroDataDegradesToZeroFees(t *testing.T) {
	b := Estimate(Params{})
	require.Zero(t, b.TotalFeeCents)
	require.Zero(t, b.OverageMinutes)
	require.Zero(t, b.GuestsCharged)
	require.Zero(t, b.PassesRemainingAfter)
}
