package availability

import "sort"

// Aggregate merges per-resource raw sub-slots into member-facing time slots.
//
// Slots from different resources sharing the same start time are merged: the
// merged slot's available set is the union of resource ids marked available
// at that start, and its requested set is the union of ids marked requested
// that are not already in the available set. Slots where both sets end up
// empty are dropped. Results are sorted lexicographically by start time,
// which is chronological because all starts are zero-padded "HH:MM" values
// on one date.
//
// A resource may appear as requested in one slot and available in an
// adjacent one; membership is per-slot, not per-resource. Overlap within a
// single resource's sub-slots is the source's responsibility, not ours.
func Aggregate(rawByResource map[string][]RawSlot) []TimeSlot {
	type bucket struct {
		end       string
		available map[string]struct{}
		requested map[string]struct{}
	}
	buckets := make(map[string]*bucket)

	for resourceID, slots := range rawByResource {
		for _, s := range slots {
			if !s.Available && !s.Requested {
				continue
			}
			b, ok := buckets[s.Start]
			if !ok {
				b = &bucket{
					end:       s.End,
					available: make(map[string]struct{}),
					requested: make(map[string]struct{}),
				}
				buckets[s.Start] = b
			}
			if s.Available {
				b.available[resourceID] = struct{}{}
			} else {
				b.requested[resourceID] = struct{}{}
			}
		}
	}

	starts := make([]string, 0, len(buckets))
	for start := range buckets {
		starts = append(starts, start)
	}
	sort.Strings(starts)

	result := make([]TimeSlot, 0, len(starts))
	for _, start := range starts {
		b := buckets[start]

		available := make([]string, 0, len(b.available))
		for id := range b.available {
			available = append(available, id)
		}
		sort.Strings(available)

		requested := make([]string, 0, len(b.requested))
		for id := range b.requested {
			// A resource free through one sub-slot is not also "requested".
			if _, ok := b.available[id]; ok {
				continue
			}
			requested = append(requested, id)
		}
		sort.Strings(requested)

		if len(available) == 0 && len(requested) == 0 {
			continue
		}

		result = append(result, TimeSlot{
			StartTime:            start,
			EndTime:              b.end,
			AvailableResourceIDs: available,
			RequestedResourceIDs: requested,
			FreeCount:            len(available),
		})
	}

	return result
}
