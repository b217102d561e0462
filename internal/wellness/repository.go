package wellness

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

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

type Repository interface {
	CreateClass(ctx context.Context, class *Class) error
	GetClass(ctx context.Context, id string) (*Class, error)
	ListClasses(ctx context.Context, filter ClassFilter) ([]*Class, int, error)

	CreateEnrollment(ctx context.Context, e *Enrollment) error
	GetEnrollment(ctx context.Context, id string) (*Enrollment, error)
	// GetActiveEnrollment finds the member's non-cancelled spot in a class.
	GetActiveEnrollment(ctx context.Context, classID, email string) (*Enrollment, error)
	UpdateEnrollmentStatus(ctx context.Context, id string, status EnrollmentStatus) error
	ListEnrollments(ctx context.Context, classID string) ([]*Enrollment, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) CreateClass(ctx context.Context, class *Class) error {
	query, args, err := psql.Insert("public.wellness_classes").
		Columns("name", "instructor_name", "date", "start_time", "end_time", "capacity", "waitlist_enabled").
		Values(class.Name, class.InstructorName, class.Date, class.StartTime, class.EndTime, class.Capacity, class.WaitlistEnabled).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create class query failed: %w", err)
	}

	return r.pool.QueryRow(ctx, query, args...).Scan(&class.ID, &class.CreatedAt)
}

func (r *pgxRepository) GetClass(ctx context.Context, id string) (*Class, error) {
	query, args, err := psql.Select(
		"c.id", "c.name", "c.instructor_name", "c.date", "c.start_time", "c.end_time",
		"c.capacity", "c.waitlist_enabled", "c.created_at",
		"count(e.id) FILTER (WHERE e.status = 'seated') AS seated_count",
		"count(e.id) FILTER (WHERE e.status = 'waitlisted') AS waitlist_count",
	).
		From("public.wellness_classes c").
		LeftJoin("public.class_enrollments e ON e.class_id = c.id").
		Where(squirrel.Eq{"c.id": id}).
		GroupBy("c.id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get class query failed: %w", err)
	}

	row := r.pool.QueryRow(ctx, query, args...)

	var c Class
	if err := row.Scan(
		&c.ID, &c.Name, &c.InstructorName, &c.Date, &c.StartTime, &c.EndTime,
		&c.Capacity, &c.WaitlistEnabled, &c.CreatedAt,
		&c.SeatedCount, &c.WaitlistCount,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrClassNotFound
		}
		return nil, fmt.Errorf("get class failed: %w", err)
	}
	return &c, nil
}

func (r *pgxRepository) ListClasses(ctx context.Context, filter ClassFilter) ([]*Class, int, error) {
	query := psql.Select(
		"c.id", "c.name", "c.instructor_name", "c.date", "c.start_time", "c.end_time",
		"c.capacity", "c.waitlist_enabled", "c.created_at",
		"count(e.id) FILTER (WHERE e.status = 'seated') AS seated_count",
		"count(e.id) FILTER (WHERE e.status = 'waitlisted') AS waitlist_count",
		"count(*) OVER() AS total_count",
	).
		From("public.wellness_classes c").
		LeftJoin("public.class_enrollments e ON e.class_id = c.id").
		GroupBy("c.id")

	if filter.Date != "" {
		query = query.Where(squirrel.Eq{"c.date": filter.Date})
	}

	query = query.OrderBy("c.date ASC", "c.start_time ASC")

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
		return nil, 0, fmt.Errorf("build list classes query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list classes failed: %w", err)
	}
	defer rows.Close()

	var classes []*Class
	var total int

	for rows.Next() {
		var c Class
		if err := rows.Scan(
			&c.ID, &c.Name, &c.InstructorName, &c.Date, &c.StartTime, &c.EndTime,
			&c.Capacity, &c.WaitlistEnabled, &c.CreatedAt,
			&c.SeatedCount, &c.WaitlistCount, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan class failed: %w", err)
		}
		classes = append(classes, &c)
	}

	return classes, total, nil
}

func (r *pgxRepository) CreateEnrollment(ctx context.Context, e *Enrollment) error {
	query, args, err := psql.Insert("public.class_enrollments").
		Columns("class_id", "member_email", "status").
		Values(e.ClassID, e.MemberEmail, e.Status).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create enrollment query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt); err != nil {
		// Partial unique index on (class_id, member_email) for
		// non-cancelled rows catches the double-enroll race.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrAlreadyEnrolled
		}
		return fmt.Errorf("create enrollment failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetEnrollment(ctx context.Context, id string) (*Enrollment, error) {
	query, args, err := psql.Select(
		"id", "class_id", "member_email", "status", "created_at", "updated_at",
	).
		From("public.class_enrollments").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get enrollment query failed: %w", err)
	}

	return r.scanEnrollment(r.pool.QueryRow(ctx, query, args...))
}

func (r *pgxRepository) GetActiveEnrollment(ctx context.Context, classID, email string) (*Enrollment, error) {
	query, args, err := psql.Select(
		"id", "class_id", "member_email", "status", "created_at", "updated_at",
	).
		From("public.class_enrollments").
		Where(squirrel.Eq{"class_id": classID, "member_email": email}).
		Where(squirrel.NotEq{"status": EnrollmentCancelled}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get active enrollment query failed: %w", err)
	}

	return r.scanEnrollment(r.pool.QueryRow(ctx, query, args...))
}

func (r *pgxRepository) UpdateEnrollmentStatus(ctx context.Context, id string, status EnrollmentStatus) error {
	query, args, err := psql.Update("public.class_enrollments").
		Set("status", status).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update enrollment query failed: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update enrollment failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrEnrollmentNotFound
	}
	return nil
}

func (r *pgxRepository) ListEnrollments(ctx context.Context, classID string) ([]*Enrollment, error) {
	query, args, err := psql.Select(
		"id", "class_id", "member_email", "status", "created_at", "updated_at",
	).
		From("public.class_enrollments").
		Where(squirrel.Eq{"class_id": classID}).
		Where(squirrel.NotEq{"status": EnrollmentCancelled}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list enrollments query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list enrollments failed: %w", err)
	}
	defer rows.Close()

	var enrollments []*Enrollment
	position := 0
	for rows.Next() {
		var e Enrollment
		if err := rows.Scan(
			&e.ID, &e.ClassID, &e.MemberEmail, &e.Status, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan enrollment failed: %w", err)
		}
		// Waitlist position follows enrollment order.
		if e.Status == EnrollmentWaitlisted {
			position++
			e.Position = position
		}
		enrollments = append(enrollments, &e)
	}

	return enrollments, nil
}

func (r *pgxRepository) scanEnrollment(row pgx.Row) (*Enrollment, error) {
	var e Enrollment
	if err := row.Scan(
		&e.ID, &e.ClassID, &e.MemberEmail, &e.Status, &e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEnrollmentNotFound
		}
		return nil, fmt.Errorf("get enrollment failed: %w", err)
	}
	return &e, nil
}
