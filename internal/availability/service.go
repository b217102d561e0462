package availability

import (
	"context"

	"github.com/pinehollow/club-booking-backend/internal/resource"
)

// Service computes member-facing availability for one resource type.
type Service interface {
	// Compute returns merged, sorted time slots for the date and duration.
	// excludeEmail suppresses occupancy from that member's own bookings.
	Compute(ctx context.Context, resourceType resource.Type, date string, durationMinutes int, excludeEmail string) ([]TimeSlot, error)

	// SlotIsFree reports whether the given resource still has a free
	// sub-slot starting at startTime for the duration.
	SlotIsFree(ctx context.Context, res *resource.Resource, date, startTime string, durationMinutes int) (bool, error)
}

type service struct {
	resources resource.Service
	source    SlotSource
}

func NewService(resources resource.Service, source SlotSource) Service {
	return &service{
		resources: resources,
		source:    source,
	}
}

func (s *service) Compute(ctx context.Context, resourceType resource.Type, date string, durationMinutes int, excludeEmail string) ([]TimeSlot, error) {
	resources, _, err := s.resources.List(ctx, resource.Filter{
		Type:     string(resourceType),
		PageSize: 100,
	})
	if err != nil {
		return nil, err
	}

	rawByResource := make(map[string][]RawSlot, len(resources))
	for _, res := range resources {
		raw, err := s.source.ResourceRawSlots(ctx, res, date, durationMinutes, excludeEmail)
		if err != nil {
			return nil, err
		}
		rawByResource[res.ID] = raw
	}

	return Aggregate(rawByResource), nil
}

func (s *service) SlotIsFree(ctx context.Context, res *resource.Resource, date, startTime string, durationMinutes int) (bool, error) {
	raw, err := s.source.ResourceRawSlots(ctx, res, date, durationMinutes, "")
	if err != nil {
		return false, err
	}
	for _, slot := range raw {
		if slot.Start == startTime {
			return slot.Available, nil
		}
	}
	return false, nil
}
