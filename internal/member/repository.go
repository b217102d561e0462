package member

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, m *Member) error
	GetByEmail(ctx context.Context, email string) (*Member, error)
	GetByID(ctx context.Context, id string) (*Member, error)
	UpdateLastLogin(ctx context.Context, id string, t time.Time) error

	GetGuestPassBalance(ctx context.Context, email string) (*GuestPassBalance, error)

	GetConsent(ctx context.Context, email string) (*GuardianConsent, error)
	CreateConsent(ctx context.Context, c *GuardianConsent) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

const memberColumns = `id, email, password_hash, display_name, tier, date_of_birth,
	guest_passes_total, guest_passes_used, created_at, last_login_at, is_active, is_staff`

func scanMember(row pgx.Row) (*Member, error) {
	var m Member
	err := row.Scan(
		&m.ID, &m.Email, &m.PasswordHash, &m.DisplayName, &m.Tier, &m.DateOfBirth,
		&m.GuestPassesTotal, &m.GuestPassesUsed, &m.CreatedAt, &m.LastLoginAt, &m.IsActive, &m.IsStaff,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *pgxRepository) Create(ctx context.Context, m *Member) error {
	query, args, err := psql.Insert("public.members").
		Columns(
			"email", "password_hash", "display_name", "tier", "date_of_birth",
			"guest_passes_total", "guest_passes_used", "is_active", "is_staff",
		).
		Values(
			m.Email, m.PasswordHash, m.DisplayName, m.Tier, m.DateOfBirth,
			m.GuestPassesTotal, m.GuestPassesUsed, m.IsActive, m.IsStaff,
		).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create member query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&m.ID, &m.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrEmailAlreadyUsed
		}
		return fmt.Errorf("create member failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByEmail(ctx context.Context, email string) (*Member, error) {
	query, args, err := psql.Select(memberColumns).
		From("public.members").
		Where(squirrel.Eq{"email": email}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get member query failed: %w", err)
	}

	m, err := scanMember(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get member by email failed: %w", err)
	}
	return m, nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Member, error) {
	query, args, err := psql.Select(memberColumns).
		From("public.members").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get member query failed: %w", err)
	}

	m, err := scanMember(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get member by id failed: %w", err)
	}
	return m, nil
}

func (r *pgxRepository) UpdateLastLogin(ctx context.Context, id string, t time.Time) error {
	query, args, err := psql.Update("public.members").
		Set("last_login_at", t).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update last login query failed: %w", err)
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("update last login failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetGuestPassBalance(ctx context.Context, email string) (*GuestPassBalance, error) {
	query, args, err := psql.Select("email", "guest_passes_total", "guest_passes_used").
		From("public.members").
		Where(squirrel.Eq{"email": email}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build guest pass query failed: %w", err)
	}

	var b GuestPassBalance
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&b.MemberEmail, &b.Total, &b.Used); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get guest pass balance failed: %w", err)
	}
	return &b, nil
}

func (r *pgxRepository) GetConsent(ctx context.Context, email string) (*GuardianConsent, error) {
	query, args, err := psql.Select("id", "member_email", "guardian_name", "waiver_path", "captured_at").
		From("public.guardian_consents").
		Where(squirrel.Eq{"member_email": email}).
		OrderBy("captured_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get consent query failed: %w", err)
	}

	var c GuardianConsent
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&c.ID, &c.MemberEmail, &c.GuardianName, &c.WaiverPath, &c.CapturedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get consent failed: %w", err)
	}
	return &c, nil
}

func (r *pgxRepository) CreateConsent(ctx context.Context, c *GuardianConsent) error {
	query, args, err := psql.Insert("public.guardian_consents").
		Columns("member_email", "guardian_name", "waiver_path").
		Values(c.MemberEmail, c.GuardianName, c.WaiverPath).
		Suffix("RETURNING id, captured_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create consent query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&c.ID, &c.CapturedAt); err != nil {
		return fmt.Errorf("create consent failed: %w", err)
	}
	return nil
}
