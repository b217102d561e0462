package resource

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, res *Resource) error
	GetByID(ctx context.Context, id string) (*Resource, error)
	List(ctx context.Context, filter Filter) ([]*Resource, int, error)

	// ListClosures returns closures whose date range covers the given date.
	ListClosures(ctx context.Context, date string) ([]*Closure, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) Create(ctx context.Context, res *Resource) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.resources").
		Columns("type", "name", "capacity", "open_time", "close_time").
		Values(res.Type, res.Name, res.Capacity, res.OpenTime, res.CloseTime).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create resource query failed: %w", err)
	}

	return r.pool.QueryRow(ctx, query, args...).Scan(&res.ID, &res.CreatedAt)
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Resource, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(
		"id", "type", "name", "capacity", "open_time", "close_time", "created_at",
	).
		From("public.resources").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get resource query failed: %w", err)
	}

	row := r.pool.QueryRow(ctx, query, args...)

	var res Resource
	if err := row.Scan(
		&res.ID, &res.Type, &res.Name, &res.Capacity,
		&res.OpenTime, &res.CloseTime, &res.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get resource failed: %w", err)
	}
	return &res, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Resource, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(
		"id", "type", "name", "capacity", "open_time", "close_time", "created_at",
		"count(*) OVER() as total_count",
	).
		From("public.resources")

	if filter.Type != "" {
		query = query.Where(squirrel.Eq{"type": filter.Type})
	}

	query = query.OrderBy("name ASC")

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 50
	}
	offset := (filter.Page - 1) * filter.PageSize
	query = query.Limit(uint64(filter.PageSize)).Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list resources query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list resources failed: %w", err)
	}
	defer rows.Close()

	var resources []*Resource
	var total int

	for rows.Next() {
		var res Resource
		if err := rows.Scan(
			&res.ID, &res.Type, &res.Name, &res.Capacity,
			&res.OpenTime, &res.CloseTime, &res.CreatedAt, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan resource failed: %w", err)
		}
		resources = append(resources, &res)
	}

	return resources, total, nil
}

func (r *pgxRepository) ListClosures(ctx context.Context, date string) ([]*Closure, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(
		"id", "start_date", "end_date", "start_time", "end_time",
		"resource_types", "reason", "created_at",
	).
		From("public.closures").
		Where(squirrel.LtOrEq{"start_date": date}).
		Where(squirrel.GtOrEq{"end_date": date}).
		OrderBy("start_date ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list closures query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list closures failed: %w", err)
	}
	defer rows.Close()

	var closures []*Closure
	for rows.Next() {
		var c Closure
		var types []string
		if err := rows.Scan(
			&c.ID, &c.StartDate, &c.EndDate, &c.StartTime, &c.EndTime,
			&types, &c.Reason, &c.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan closure failed: %w", err)
		}
		for _, t := range types {
			c.ResourceTypes = append(c.ResourceTypes, Type(t))
		}
		closures = append(closures, &c)
	}

	return closures, nil
}
