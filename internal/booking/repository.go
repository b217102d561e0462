package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	// Create inserts the booking and its participants in one transaction.
	// The bookings table carries a uniqueness constraint on
	// (resource_id, date, start_time) for non-retired rows; a violation
	// means the caller lost a creation race and maps to ErrSlotTaken.
	Create(ctx context.Context, b *Booking) error

	GetByID(ctx context.Context, id string) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)
	Update(ctx context.Context, b *Booking) error

	// ListForMemberDate returns bookings on the date where the member is
	// the owner or a roster participant, with rosters loaded.
	ListForMemberDate(ctx context.Context, email, date string) ([]*Booking, error)

	// FindActiveSimulatorOnDate returns the member's pending or approved
	// simulator booking on the date, or ErrNotFound.
	FindActiveSimulatorOnDate(ctx context.Context, email, date string) (*Booking, error)

	GetParticipant(ctx context.Context, participantID string) (*Participant, error)
	UpdateParticipantInvite(ctx context.Context, participantID string, status InviteStatus) error

	// RemoveParticipant deletes the roster entry and shrinks the booking's
	// declared player count (floor 1) in one transaction.
	RemoveParticipant(ctx context.Context, bookingID, participantID string) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

const bookingColumns = `b.id, b.owner_email, b.owner_tier, b.resource_id, r.name, b.resource_type,
	b.date, b.start_time, b.end_time, b.duration_minutes, b.declared_player_count, b.notes,
	b.status, b.overage_minutes, b.overage_fee_cents, b.overage_paid,
	b.calendar_import_ref, b.needs_manual_follow_up, b.created_at, b.updated_at`

func scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking
	err := row.Scan(
		&b.ID, &b.OwnerEmail, &b.OwnerTier, &b.ResourceID, &b.ResourceName, &b.ResourceType,
		&b.Date, &b.StartTime, &b.EndTime, &b.DurationMinutes, &b.DeclaredPlayerCount, &b.Notes,
		&b.Status, &b.OverageMinutes, &b.OverageFeeCents, &b.OveragePaid,
		&b.CalendarImportRef, &b.NeedsManualFollowUp, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *pgxRepository) Create(ctx context.Context, b *Booking) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin create booking tx failed: %w", err)
	}
	defer tx.Rollback(ctx)

	query, args, err := psql.Insert("public.bookings").
		Columns(
			"owner_email", "owner_tier", "resource_id", "resource_type",
			"date", "start_time", "end_time", "duration_minutes",
			"declared_player_count", "notes", "status",
			"overage_minutes", "overage_fee_cents", "overage_paid",
			"calendar_import_ref",
		).
		Values(
			b.OwnerEmail, b.OwnerTier, b.ResourceID, b.ResourceType,
			b.Date, b.StartTime, b.EndTime, b.DurationMinutes,
			b.DeclaredPlayerCount, b.Notes, b.Status,
			b.OverageMinutes, b.OverageFeeCents, b.OveragePaid,
			b.CalendarImportRef,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create booking query failed: %w", err)
	}

	if err := tx.QueryRow(ctx, query, args...).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrSlotTaken
		}
		return fmt.Errorf("create booking failed: %w", err)
	}

	for i := range b.Participants {
		p := &b.Participants[i]
		p.BookingID = b.ID

		query, args, err := psql.Insert("public.booking_participants").
			Columns("booking_id", "type", "member_email", "guest_name", "guest_email", "invite_status").
			Values(p.BookingID, p.Type, p.MemberEmail, p.GuestName, p.GuestEmail, p.InviteStatus).
			Suffix("RETURNING id, created_at").
			ToSql()
		if err != nil {
			return fmt.Errorf("build create participant query failed: %w", err)
		}
		if err := tx.QueryRow(ctx, query, args...).Scan(&p.ID, &p.CreatedAt); err != nil {
			return fmt.Errorf("create participant failed: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit create booking tx failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Booking, error) {
	query, args, err := psql.Select(bookingColumns).
		From("public.bookings b").
		Join("public.resources r ON b.resource_id = r.id").
		Where(squirrel.Eq{"b.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get booking query failed: %w", err)
	}

	b, err := scanBooking(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking failed: %w", err)
	}

	if err := r.loadParticipants(ctx, []*Booking{b}); err != nil {
		return nil, err
	}
	return b, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	query := psql.Select(bookingColumns + ", count(*) OVER() as total_count").
		From("public.bookings b").
		Join("public.resources r ON b.resource_id = r.id")

	if filter.OwnerEmail != "" {
		query = query.Where(squirrel.Eq{"b.owner_email": filter.OwnerEmail})
	}
	if filter.ResourceID != "" {
		query = query.Where(squirrel.Eq{"b.resource_id": filter.ResourceID})
	}
	if filter.ResourceType != "" {
		query = query.Where(squirrel.Eq{"b.resource_type": filter.ResourceType})
	}
	if filter.Date != "" {
		query = query.Where(squirrel.Eq{"b.date": filter.Date})
	}
	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"b.status": filter.Status})
	}

	query = query.OrderBy("b.date DESC", "b.start_time ASC")

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize
	query = query.Limit(uint64(filter.PageSize)).Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list bookings query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookings failed: %w", err)
	}
	defer rows.Close()

	var bookings []*Booking
	var total int

	for rows.Next() {
		var b Booking
		if err := rows.Scan(
			&b.ID, &b.OwnerEmail, &b.OwnerTier, &b.ResourceID, &b.ResourceName, &b.ResourceType,
			&b.Date, &b.StartTime, &b.EndTime, &b.DurationMinutes, &b.DeclaredPlayerCount, &b.Notes,
			&b.Status, &b.OverageMinutes, &b.OverageFeeCents, &b.OveragePaid,
			&b.CalendarImportRef, &b.NeedsManualFollowUp, &b.CreatedAt, &b.UpdatedAt, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, &b)
	}

	if err := r.loadParticipants(ctx, bookings); err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

func (r *pgxRepository) Update(ctx context.Context, b *Booking) error {
	query, args, err := psql.Update("public.bookings").
		Set("status", b.Status).
		Set("declared_player_count", b.DeclaredPlayerCount).
		Set("overage_minutes", b.OverageMinutes).
		Set("overage_fee_cents", b.OverageFeeCents).
		Set("overage_paid", b.OveragePaid).
		Set("needs_manual_follow_up", b.NeedsManualFollowUp).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": b.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update booking query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update booking failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) ListForMemberDate(ctx context.Context, email, date string) ([]*Booking, error) {
	query, args, err := psql.Select(bookingColumns).
		From("public.bookings b").
		Join("public.resources r ON b.resource_id = r.id").
		Where(squirrel.Eq{"b.date": date}).
		Where(squirrel.Or{
			squirrel.Eq{"b.owner_email": email},
			squirrel.Expr(
				"EXISTS (SELECT 1 FROM public.booking_participants p WHERE p.booking_id = b.id AND p.member_email = ?)",
				email,
			),
		}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build member-date bookings query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("member-date bookings failed: %w", err)
	}
	defer rows.Close()

	var bookings []*Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, b)
	}

	if err := r.loadParticipants(ctx, bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *pgxRepository) FindActiveSimulatorOnDate(ctx context.Context, email, date string) (*Booking, error) {
	query, args, err := psql.Select(bookingColumns).
		From("public.bookings b").
		Join("public.resources r ON b.resource_id = r.id").
		Where(squirrel.Eq{
			"b.owner_email":   email,
			"b.date":          date,
			"b.resource_type": "simulator",
		}).
		Where(squirrel.Eq{"b.status": []string{string(StatusPending), string(StatusApproved)}}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build active simulator query failed: %w", err)
	}

	b, err := scanBooking(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("active simulator lookup failed: %w", err)
	}
	return b, nil
}

func (r *pgxRepository) GetParticipant(ctx context.Context, participantID string) (*Participant, error) {
	query, args, err := psql.Select(
		"id", "booking_id", "type", "member_email", "guest_name", "guest_email", "invite_status", "created_at",
	).
		From("public.booking_participants").
		Where(squirrel.Eq{"id": participantID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get participant query failed: %w", err)
	}

	var p Participant
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&p.ID, &p.BookingID, &p.Type, &p.MemberEmail, &p.GuestName, &p.GuestEmail, &p.InviteStatus, &p.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrParticipantNotFound
		}
		return nil, fmt.Errorf("get participant failed: %w", err)
	}
	return &p, nil
}

func (r *pgxRepository) UpdateParticipantInvite(ctx context.Context, participantID string, status InviteStatus) error {
	query, args, err := psql.Update("public.booking_participants").
		Set("invite_status", status).
		Where(squirrel.Eq{"id": participantID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update participant query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update participant failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrParticipantNotFound
	}
	return nil
}

func (r *pgxRepository) RemoveParticipant(ctx context.Context, bookingID, participantID string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin remove participant tx failed: %w", err)
	}
	defer tx.Rollback(ctx)

	query, args, err := psql.Delete("public.booking_participants").
		Where(squirrel.Eq{"id": participantID, "booking_id": bookingID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete participant query failed: %w", err)
	}

	ct, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete participant failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrParticipantNotFound
	}

	// Declined slots stop counting toward fee splitting, floor of one.
	query, args, err = psql.Update("public.bookings").
		Set("declared_player_count", squirrel.Expr("GREATEST(declared_player_count - 1, 1)")).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": bookingID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build shrink player count query failed: %w", err)
	}
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("shrink player count failed: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit remove participant tx failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) loadParticipants(ctx context.Context, bookings []*Booking) error {
	if len(bookings) == 0 {
		return nil
	}

	ids := make([]string, 0, len(bookings))
	byID := make(map[string]*Booking, len(bookings))
	for _, b := range bookings {
		ids = append(ids, b.ID)
		byID[b.ID] = b
	}

	query, args, err := psql.Select(
		"id", "booking_id", "type", "member_email", "guest_name", "guest_email", "invite_status", "created_at",
	).
		From("public.booking_participants").
		Where(squirrel.Eq{"booking_id": ids}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return fmt.Errorf("build load participants query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("load participants failed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p Participant
		if err := rows.Scan(
			&p.ID, &p.BookingID, &p.Type, &p.MemberEmail, &p.GuestName, &p.GuestEmail, &p.InviteStatus, &p.CreatedAt,
		); err != nil {
			return fmt.Errorf("scan participant failed: %w", err)
		}
		if b, ok := byID[p.BookingID]; ok {
			b.Participants = append(b.Participants, p)
		}
	}
	return nil
}
