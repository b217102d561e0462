package availability

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAggregateMergesSharedStartTimes(t *testing.T) {
	raw := map[string][]RawSlot{
		"bay-1": {
			{Start: "09:00", End: "10:00", Available: true},
			{Start: "10:00", End: "11:00", Available: false, Requested: true},
		},
		"bay-2": {
			{Start: "09:00", End: "10:00", Available: true},
			{Start: "10:00", End: "11:00", Available: true},
		},
	}

	slots := Aggregate(raw)
	require.Len(t, slots, 2)

	require.Equal(t, "09:00", slots[0].StartTime)
	require.Equal(t, "10:00", slots[0].EndTime)
	require.Equal(t, []string{"bay-1", "bay-2"}, slots[0].AvailableResourceIDs)
	require.Empty(t, slots[0].RequestedResourceIDs)
	require.Equal(t, 2, slots[0].FreeCount)

	require.Equal(t, "10:00", slots[1].StartTime)
	require.Equal(t, []string{"bay-2"}, slots[1].AvailableResourceIDs)
	require.Equal(t, []string{"bay-1"}, slots[1].RequestedResourceIDs)
	require.Equal(t, 1, slots[1].FreeCount)
	require.True(t, slots[1].Bookable())
}

func TestAggregateUnionEqualsPerResourceFreeStatus(t *testing.T) {
	// Disjoint availability across three bays at a shared start time: the
	// merged available set must equal the union of individually free bays.
	raw := map[string][]RawSlot{
		"bay-1": {{Start: "14:00", End: "15:00", Available: true}},
		"bay-2": {{Start: "14:00", End: "15:00", Available: false}},
		"bay-3": {{Start: "14:00", End: "15:00", Available: true}},
	}

	slots := Aggregate(raw)
	require.Len(t, slots, 1)
	require.Equal(t, []string{"bay-1", "bay-3"}, slots[0].AvailableResourceIDs)
}

func TestAggregateDropsFullyBlockedSlots(t *testing.T) {
	raw := map[string][]RawSlot{
		"bay-1": {
			{Start: "09:00", End: "10:00", Available: false, Requested: false},
			{Start: "10:00", End: "11:00", Available: false, Requested: true},
		},
	}

	slots := Aggregate(raw)
	require.Len(t, slots, 1)
	require.Equal(t, "10:00", slots[0].StartTime)
	require.False(t, slots[0].Bookable())
	require.Equal(t, []string{"bay-1"}, slots[0].RequestedResourceIDs)
}

func TestAggregateSortsLexicographicallyByStart(t *testing.T) {
	raw := map[string][]RawSlot{
		"room-1": {
			{Start: "15:30", End: "16:30", Available: true},
			{Start: "08:00", End: "09:00", Available: true},
			{Start: "12:00", End: "13:00", Available: true},
		},
	}

	slots := Aggregate(raw)
	require.Len(t, slots, 3)
	require.Equal(t, "08:00", slots[0].StartTime)
	require.Equal(t, "12:00", slots[1].StartTime)
	require.Equal(t, "15:30", slots[2].StartTime)
}

func TestAggregateResourceCanBeRequestedThenAvailable(t *testing.T) {
	// Per-slot membership is independent: the same bay may be requested at
	// one slot and free at the next.
	raw := map[string][]RawSlot{
		"bay-1": {
			{Start: "09:00", End: "10:00", Available: false, Requested: true},
			{Start: "10:00", End: "11:00", Available: true},
		},
	}

	slots := Aggregate(raw)
	require.Len(t, slots, 2)
	require.Equal(t, []string{"bay-1"}, slots[0].RequestedResourceIDs)
	require.Equal(t, []string{"bay-1"}, slots[1].AvailableResourceIDs)
}

func TestAggregateEmptyInput(t *testing.T) {
	require.Empty(t, Aggregate(nil))
	require.Empty(t, Aggregate(map[string][]RawSlot{}))
}
