package availability

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pinehollow/club-booking-backend/internal/pkg/clock"
	"github.com/pinehollow/club-booking-backend/internal/resource"
)

// SlotSource supplies a single resource's raw sub-slots for a date at the
// given duration granularity. excludeEmail, when non-empty, suppresses
// occupancy caused only by that member's own bookings so the caller can
// offer a reschedule picker.
type SlotSource interface {
	ResourceRawSlots(ctx context.Context, res *resource.Resource, date string, durationMinutes int, excludeEmail string) ([]RawSlot, error)
}

type occupancyRow struct {
	start      string
	end        string
	status     string
	ownerEmail string
}

type pgxSlotSource struct {
	pool *pgxpool.Pool
}

// NewPgxSlotSource creates a SlotSource that derives sub-slots from the
// bookings table.
func NewPgxSlotSource(pool *pgxpool.Pool) SlotSource {
	return &pgxSlotSource{pool: pool}
}

func (s *pgxSlotSource) ResourceRawSlots(ctx context.Context, res *resource.Resource, date string, durationMinutes int, excludeEmail string) ([]RawSlot, error) {
	if durationMinutes <= 0 {
		return nil, fmt.Errorf("duration must be positive, got %d", durationMinutes)
	}

	open, err := clock.Minutes(res.OpenTime)
	if err != nil {
		return nil, fmt.Errorf("resource %s has invalid open time: %w", res.ID, err)
	}
	closeAt, err := clock.Minutes(res.CloseTime)
	if err != nil {
		return nil, fmt.Errorf("resource %s has invalid close time: %w", res.ID, err)
	}

	rows, err := s.occupancy(ctx, res.ID, date)
	if err != nil {
		return nil, err
	}

	var slots []RawSlot
	for start := open; start+durationMinutes <= closeAt; start += durationMinutes {
		end := start + durationMinutes

		free := true
		requested := false
		for _, row := range rows {
			if excludeEmail != "" && row.ownerEmail == excludeEmail {
				continue
			}
			rowStart, err := clock.Minutes(row.start)
			if err != nil {
				continue
			}
			rowEnd, err := clock.Minutes(row.end)
			if err != nil {
				continue
			}
			if rowStart >= end || rowEnd <= start {
				continue
			}
			free = false
			if row.status == "pending" {
				requested = true
			} else {
				// Hard occupancy wins over a pending request.
				requested = false
				break
			}
		}

		slots = append(slots, RawSlot{
			Start:     clock.Format(start),
			End:       clock.Format(end),
			Available: free,
			Requested: !free && requested,
		})
	}

	return slots, nil
}

func (s *pgxSlotSource) occupancy(ctx context.Context, resourceID, date string) ([]occupancyRow, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select("start_time", "end_time", "status", "owner_email").
		From("public.bookings").
		Where(squirrel.Eq{"resource_id": resourceID}).
		Where(squirrel.Eq{"date": date}).
		Where(squirrel.NotEq{"status": []string{"cancelled", "declined", "no_show"}}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build occupancy query failed: %w", err)
	}

	pgRows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query occupancy failed: %w", err)
	}
	defer pgRows.Close()

	var rows []occupancyRow
	for pgRows.Next() {
		var row occupancyRow
		if err := pgRows.Scan(&row.start, &row.end, &row.status, &row.ownerEmail); err != nil {
			return nil, fmt.Errorf("scan occupancy row failed: %w", err)
		}
		rows = append(rows, row)
	}

	return rows, nil
}
