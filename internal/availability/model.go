package availability

// RawSlot is one sub-slot of a single resource's day, as reported by the
// slot source. Start and End are zero-padded "HH:MM" strings.
type RawSlot struct {
	Start     string
	End       string
	Available bool
	Requested bool
}

// TimeSlot is a member-facing slot merged across resources that share a
// start time. A slot is bookable iff AvailableResourceIDs is non-empty;
// if only RequestedResourceIDs is non-empty the slot is shown as
// "requested" and is not selectable.
type TimeSlot struct {
	StartTime            string   `json:"start_time"`
	EndTime              string   `json:"end_time"`
	AvailableResourceIDs []string `json:"available_resource_ids"`
	RequestedResourceIDs []string `json:"requested_resource_ids"`
	FreeCount            int      `json:"free_count"`
}

// Bookable reports whether at least one resource is free at this slot.
func (s TimeSlot) Bookable() bool {
	return len(s.AvailableResourceIDs) > 0
}
