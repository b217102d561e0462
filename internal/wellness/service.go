package wellness

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/pinehollow/club-booking-backend/internal/events"
	"github.com/pinehollow/club-booking-backend/internal/pkg/clock"
	"github.com/pinehollow/club-booking-backend/internal/tier"
)

const dateLayout = "2006-01-02"

type CreateClassRequest struct {
	Name            string
	InstructorName  string
	Date            string
	StartTime       string
	EndTime         string
	Capacity        *int
	WaitlistEnabled bool
}

type Service interface {
	CreateClass(ctx context.Context, req CreateClassRequest) (*Class, error)
	GetClass(ctx context.Context, id string) (*Class, error)
	ListClasses(ctx context.Context, filter ClassFilter) ([]*Class, int, error)

	// Enroll seats the member if a seat is free, waitlists them when the
	// class is full and has a waitlist, and fails otherwise.
	Enroll(ctx context.Context, classID, email, tierName string) (*Enrollment, error)

	// Cancel releases the member's seat or waitlist spot. Cancelling an
	// enrollment that does not exist (or was already cancelled) is a no-op.
	// Freed seats are never auto-filled from the waitlist.
	Cancel(ctx context.Context, classID, email string) error

	// Promote moves a waitlisted enrollment into a seat. Staff-side;
	// the class must have a seat free.
	Promote(ctx context.Context, enrollmentID string) (*Enrollment, error)

	Roster(ctx context.Context, classID string) ([]*Enrollment, error)
}

type service struct {
	repo        Repository
	tiers       tier.Resolver
	broadcaster *events.Broadcaster
}

func NewService(repo Repository, tiers tier.Resolver, broadcaster *events.Broadcaster) Service {
	return &service{
		repo:        repo,
		tiers:       tiers,
		broadcaster: broadcaster,
	}
}

func (s *service) CreateClass(ctx context.Context, req CreateClassRequest) (*Class, error) {
	if req.Capacity != nil && *req.Capacity < 1 {
		return nil, ErrInvalidCapacity
	}
	if d, err := clock.Span(req.StartTime, req.EndTime); err != nil || d <= 0 {
		return nil, ErrInvalidTimeRange
	}

	c := &Class{
		Name:            strings.TrimSpace(req.Name),
		InstructorName:  strings.TrimSpace(req.InstructorName),
		Date:            req.Date,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		Capacity:        req.Capacity,
		WaitlistEnabled: req.WaitlistEnabled,
	}
	if err := s.repo.CreateClass(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) GetClass(ctx context.Context, id string) (*Class, error) {
	return s.repo.GetClass(ctx, id)
}

func (s *service) ListClasses(ctx context.Context, filter ClassFilter) ([]*Class, int, error) {
	return s.repo.ListClasses(ctx, filter)
}

func (s *service) Enroll(ctx context.Context, classID, email, tierName string) (*Enrollment, error) {
	perms := s.tiers.Resolve(ctx, tierName)
	if !perms.CanBookWellness {
		return nil, ErrTierDenied
	}

	class, err := s.repo.GetClass(ctx, classID)
	if err != nil {
		return nil, err
	}
	if err := checkClassDate(class.Date); err != nil {
		return nil, err
	}

	status := EnrollmentSeated
	if !class.HasFreeSeat() {
		if !class.WaitlistEnabled {
			return nil, ErrClassFull
		}
		status = EnrollmentWaitlisted
	}

	e := &Enrollment{
		ClassID:     classID,
		MemberEmail: email,
		Status:      status,
	}
	// The unique index on active (class_id, member_email) pairs turns a
	// double-enroll race into ErrAlreadyEnrolled.
	if err := s.repo.CreateEnrollment(ctx, e); err != nil {
		return nil, err
	}
	if status == EnrollmentWaitlisted {
		e.Position = class.WaitlistCount + 1
	}

	s.broadcaster.Publish(events.Event{
		Type:    "enrollment.created",
		ClassID: classID,
		Date:    class.Date,
	})
	return e, nil
}

func (s *service) Cancel(ctx context.Context, classID, email string) error {
	e, err := s.repo.GetActiveEnrollment(ctx, classID, email)
	if err != nil {
		if errors.Is(err, ErrEnrollmentNotFound) {
			// Already cancelled or never enrolled; cancelling is idempotent.
			return nil
		}
		return err
	}

	if err := s.repo.UpdateEnrollmentStatus(ctx, e.ID, EnrollmentCancelled); err != nil {
		return err
	}

	s.broadcaster.Publish(events.Event{
		Type:    "enrollment.cancelled",
		ClassID: classID,
	})
	return nil
}

func (s *service) Promote(ctx context.Context, enrollmentID string) (*Enrollment, error) {
	e, err := s.repo.GetEnrollment(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	if e.Status != EnrollmentWaitlisted {
		return nil, ErrNotWaitlisted
	}

	class, err := s.repo.GetClass(ctx, e.ClassID)
	if err != nil {
		return nil, err
	}
	if !class.HasFreeSeat() {
		return nil, ErrNoSeatFree
	}

	if err := s.repo.UpdateEnrollmentStatus(ctx, e.ID, EnrollmentSeated); err != nil {
		return nil, err
	}
	e.Status = EnrollmentSeated
	e.Position = 0

	s.broadcaster.Publish(events.Event{
		Type:    "enrollment.promoted",
		ClassID: class.ID,
		Date:    class.Date,
	})
	return e, nil
}

func (s *service) Roster(ctx context.Context, classID string) ([]*Enrollment, error) {
	if _, err := s.repo.GetClass(ctx, classID); err != nil {
		return nil, err
	}
	return s.repo.ListEnrollments(ctx, classID)
}

func checkClassDate(date string) error {
	d, err := time.Parse(dateLayout, date)
	if err != nil {
		return ErrClassNotFound
	}
	if d.Before(time.Now().UTC().Truncate(24 * time.Hour)) {
		return ErrClassInPast
	}
	return nil
}
