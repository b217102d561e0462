package wellness

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pinehollow/club-booking-backend/internal/events"
	"github.com/pinehollow/club-booking-backend/internal/tier"
)

type fakeRepo struct {
	classes     map[string]*Class
	enrollments map[string]*Enrollment
	nextID      int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		classes:     make(map[string]*Class),
		enrollments: make(map[string]*Enrollment),
	}
}

func (r *fakeRepo) id() string {
	r.nextID++
	return fmt.Sprintf("id-%d", r.nextID)
}

func (r *fakeRepo) CreateClass(ctx context.Context, class *Class) error {
	class.ID = r.id()
	class.CreatedAt = time.Now()
	r.classes[class.ID] = class
	return nil
}

func (r *fakeRepo) GetClass(ctx context.Context, id string) (*Class, error) {
	c, ok := r.classes[id]
	if !ok {
		return nil, ErrClassNotFound
	}
	// Recompute derived counts the way the SQL read does.
	out := *c
	out.SeatedCount = 0
	out.WaitlistCount = 0
	for _, e := range r.enrollments {
		if e.ClassID != id {
			continue
		}
		switch e.Status {
		case EnrollmentSeated:
			out.SeatedCount++
		case EnrollmentWaitlisted:
			out.WaitlistCount++
		}
	}
	return &out, nil
}

func (r *fakeRepo) ListClasses(ctx context.Context, filter ClassFilter) ([]*Class, int, error) {
	var out []*Class
	for id := range r.classes {
		c, _ := r.GetClass(ctx, id)
		out = append(out, c)
	}
	return out, len(out), nil
}

func (r *fakeRepo) CreateEnrollment(ctx context.Context, e *Enrollment) error {
	for _, other := range r.enrollments {
		if other.ClassID == e.ClassID && other.MemberEmail == e.MemberEmail &&
			other.Status != EnrollmentCancelled {
			return ErrAlreadyEnrolled
		}
	}
	e.ID = r.id()
	e.CreatedAt = time.Now()
	r.enrollments[e.ID] = e
	return nil
}

func (r *fakeRepo) GetEnrollment(ctx context.Context, id string) (*Enrollment, error) {
	e, ok := r.enrollments[id]
	if !ok {
		return nil, ErrEnrollmentNotFound
	}
	return e, nil
}

func (r *fakeRepo) GetActiveEnrollment(ctx context.Context, classID, email string) (*Enrollment, error) {
	for _, e := range r.enrollments {
		if e.ClassID == classID && e.MemberEmail == email && e.Status != EnrollmentCancelled {
			return e, nil
		}
	}
	return nil, ErrEnrollmentNotFound
}

func (r *fakeRepo) UpdateEnrollmentStatus(ctx context.Context, id string, status EnrollmentStatus) error {
	e, ok := r.enrollments[id]
	if !ok {
		return ErrEnrollmentNotFound
	}
	e.Status = status
	return nil
}

func (r *fakeRepo) ListEnrollments(ctx context.Context, classID string) ([]*Enrollment, error) {
	var out []*Enrollment
	for _, e := range r.enrollments {
		if e.ClassID == classID && e.Status != EnrollmentCancelled {
			out = append(out, e)
		}
	}
	return out, nil
}

type allowAllTiers struct{}

func (allowAllTiers) Resolve(ctx context.Context, name string) tier.Permissions {
	p := tier.DefaultPermissions(name)
	p.CanBookWellness = name != "social-lite"
	return p
}

func newTestService(t *testing.T) (Service, *fakeRepo) {
	t.Helper()
	repo := newFakeRepo()
	return NewService(repo, allowAllTiers{}, events.NewBroadcaster()), repo
}

func futureDate() string {
	return time.Now().UTC().AddDate(0, 0, 2).Format(dateLayout)
}

func createClass(t *testing.T, svc Service, capacity int, waitlist bool) *Class {
	t.Helper()
	c, err := svc.CreateClass(context.Background(), CreateClassRequest{
		Name:            "Sunrise Yoga",
		InstructorName:  "R. Alvarez",
		Date:            futureDate(),
		StartTime:       "07:00",
		EndTime:         "08:00",
		Capacity:        &capacity,
		WaitlistEnabled: waitlist,
	})
	require.NoError(t, err)
	return c
}

func TestEnrollSeatsUntilCapacityThenWaitlists(t *testing.T) {
	svc, _ := newTestService(t)
	c := createClass(t, svc, 2, true)

	e1, err := svc.Enroll(context.Background(), c.ID, "a@club.test", "standard")
	require.NoError(t, err)
	require.Equal(t, EnrollmentSeated, e1.Status)

	e2, err := svc.Enroll(context.Background(), c.ID, "b@club.test", "standard")
	require.NoError(t, err)
	require.Equal(t, EnrollmentSeated, e2.Status)

	// Class is full; the third and fourth members queue in order.
	e3, err := svc.Enroll(context.Background(), c.ID, "c@club.test", "standard")
	require.NoError(t, err)
	require.Equal(t, EnrollmentWaitlisted, e3.Status)
	require.Equal(t, 1, e3.Position)

	e4, err := svc.Enroll(context.Background(), c.ID, "d@club.test", "standard")
	require.NoError(t, err)
	require.Equal(t, 2, e4.Position)
}

func TestEnrollFullClassWithoutWaitlist(t *testing.T) {
	svc, _ := newTestService(t)
	c := createClass(t, svc, 1, false)

	_, err := svc.Enroll(context.Background(), c.ID, "a@club.test", "standard")
	require.NoError(t, err)

	_, err = svc.Enroll(context.Background(), c.ID, "b@club.test", "standard")
	require.ErrorIs(t, err, ErrClassFull)
}

func TestEnrollRejectsDuplicatesAndDeniedTiers(t *testing.T) {
	svc, _ := newTestService(t)
	c := createClass(t, svc, 5, true)

	_, err := svc.Enroll(context.Background(), c.ID, "a@club.test", "standard")
	require.NoError(t, err)

	_, err = svc.Enroll(context.Background(), c.ID, "a@club.test", "standard")
	require.ErrorIs(t, err, ErrAlreadyEnrolled)

	_, err = svc.Enroll(context.Background(), c.ID, "b@club.test", "social-lite")
	require.ErrorIs(t, err, ErrTierDenied)
}

func TestUncappedClassNeverWaitlists(t *testing.T) {
	svc, repo := newTestService(t)
	class := &Class{Name: "Open Stretch", Date: futureDate(), StartTime: "07:00", EndTime: "08:00"}
	require.NoError(t, repo.CreateClass(context.Background(), class))

	for i := 0; i < 40; i++ {
		e, err := svc.Enroll(context.Background(), class.ID, fmt.Sprintf("m%d@club.test", i), "standard")
		require.NoError(t, err)
		require.Equal(t, EnrollmentSeated, e.Status)
	}
}

func TestCancelFreesSeatWithoutAutoPromotion(t *testing.T) {
	svc, _ := newTestService(t)
	c := createClass(t, svc, 1, true)

	_, err := svc.Enroll(context.Background(), c.ID, "seated@club.test", "standard")
	require.NoError(t, err)
	queued, err := svc.Enroll(context.Background(), c.ID, "queued@club.test", "standard")
	require.NoError(t, err)

	require.NoError(t, svc.Cancel(context.Background(), c.ID, "seated@club.test"))

	// The seat is free but the waitlisted member stays queued until a
	// staff promotion.
	got, err := svc.GetClass(context.Background(), c.ID)
	require.NoError(t, err)
	require.Equal(t, 0, got.SeatedCount)
	require.Equal(t, 1, got.WaitlistCount)

	promoted, err := svc.Promote(context.Background(), queued.ID)
	require.NoError(t, err)
	require.Equal(t, EnrollmentSeated, promoted.Status)

	got, err = svc.GetClass(context.Background(), c.ID)
	require.NoError(t, err)
	require.Equal(t, 1, got.SeatedCount)
	require.Equal(t, 0, got.WaitlistCount)
}

func TestCancelIsIdempotent(t *testing.T) {
	svc, _ := newTestService(t)
	c := createClass(t, svc, 2, true)

	_, err := svc.Enroll(context.Background(), c.ID, "a@club.test", "standard")
	require.NoError(t, err)

	require.NoError(t, svc.Cancel(context.Background(), c.ID, "a@club.test"))
	require.NoError(t, svc.Cancel(context.Background(), c.ID, "a@club.test"))
	require.NoError(t, svc.Cancel(context.Background(), c.ID, "never-enrolled@club.test"))
}

func TestCancelAndReenroll(t *testing.T) {
	svc, _ := newTestService(t)
	c := createClass(t, svc, 1, true)

	_, err := svc.Enroll(context.Background(), c.ID, "a@club.test", "standard")
	require.NoError(t, err)
	require.NoError(t, svc.Cancel(context.Background(), c.ID, "a@club.test"))

	// A cancelled spot does not block re-enrolling.
	e, err := svc.Enroll(context.Background(), c.ID, "a@club.test", "standard")
	require.NoError(t, err)
	require.Equal(t, EnrollmentSeated, e.Status)
}

func TestPromoteGuards(t *testing.T) {
	svc, _ := newTestService(t)
	c := createClass(t, svc, 1, true)

	seated, err := svc.Enroll(context.Background(), c.ID, "a@club.test", "standard")
	require.NoError(t, err)
	queued, err := svc.Enroll(context.Background(), c.ID, "b@club.test", "standard")
	require.NoError(t, err)

	// Seated enrollments cannot be promoted, and a full class has no
	// seat to promote into.
	_, err = svc.Promote(context.Background(), seated.ID)
	require.ErrorIs(t, err, ErrNotWaitlisted)

	_, err = svc.Promote(context.Background(), queued.ID)
	require.ErrorIs(t, err, ErrNoSeatFree)
}

func TestCreateClassValidation(t *testing.T) {
	svc, _ := newTestService(t)

	zero := 0
	_, err := svc.CreateClass(context.Background(), CreateClassRequest{
		Name: "Bad", Date: futureDate(), StartTime: "07:00", EndTime: "08:00", Capacity: &zero,
	})
	require.ErrorIs(t, err, ErrInvalidCapacity)

	_, err = svc.CreateClass(context.Background(), CreateClassRequest{
		Name: "Bad", Date: futureDate(), StartTime: "08:00", EndTime: "07:00",
	})
	require.ErrorIs(t, err, ErrInvalidTimeRange)
}

func TestEnrollRejectsPastClass(t *testing.T) {
	svc, repo := newTestService(t)
	class := &Class{Name: "Old", Date: "2020-01-01", StartTime: "07:00", EndTime: "08:00"}
	require.NoError(t, repo.CreateClass(context.Background(), class))

	_, err := svc.Enroll(context.Background(), class.ID, "a@club.test", "standard")
	require.ErrorIs(t, err, ErrClassInPast)
}
