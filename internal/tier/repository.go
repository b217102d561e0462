package tier

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	GetByName(ctx context.Context, name string) (*Permissions, error)
	List(ctx context.Context) ([]*Permissions, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) GetByName(ctx context.Context, name string) (*Permissions, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(
		"tier", "daily_simulator_minutes", "daily_conf_room_minutes",
		"advance_booking_days", "unlimited_access",
		"can_book_simulator", "can_book_conf_room", "can_book_wellness",
		"guest_fee_cents", "overage_rate_cents", "guest_passes_per_month",
	).
		From("public.tier_permissions").
		Where(squirrel.Eq{"tier": name}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get tier query failed: %w", err)
	}

	row := r.pool.QueryRow(ctx, query, args...)

	var p Permissions
	if err := row.Scan(
		&p.Tier, &p.DailySimulatorMinutes, &p.DailyConfRoomMinutes,
		&p.AdvanceBookingDays, &p.UnlimitedAccess,
		&p.CanBookSimulator, &p.CanBookConfRoom, &p.CanBookWellness,
		&p.GuestFeeCents, &p.OverageRateCents, &p.GuestPassesPerMonth,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get tier failed: %w", err)
	}
	return &p, nil
}

func (r *pgxRepository) List(ctx context.Context) ([]*Permissions, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(
		"tier", "daily_simulator_minutes", "daily_conf_room_minutes",
		"advance_booking_days", "unlimited_access",
		"can_book_simulator", "can_book_conf_room", "can_book_wellness",
		"guest_fee_cents", "overage_rate_cents", "guest_passes_per_month",
	).
		From("public.tier_permissions").
		OrderBy("tier ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list tiers query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tiers failed: %w", err)
	}
	defer rows.Close()

	var perms []*Permissions
	for rows.Next() {
		var p Permissions
		if err := rows.Scan(
			&p.Tier, &p.DailySimulatorMinutes, &p.DailyConfRoomMinutes,
			&p.AdvanceBookingDays, &p.UnlimitedAccess,
			&p.CanBookSimulator, &p.CanBookConfRoom, &p.CanBookWellness,
			&p.GuestFeeCents, &p.OverageRateCents, &p.GuestPassesPerMonth,
		); err != nil {
			return nil, fmt.Errorf("scan tier failed: %w", err)
		}
		perms = append(perms, &p)
	}

	return perms, nil
}
