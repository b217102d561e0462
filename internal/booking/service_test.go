package booking

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pinehollow/club-booking-backend/internal/availability"
	"github.com/pinehollow/club-booking-backend/internal/events"
	"github.com/pinehollow/club-booking-backend/internal/member"
	"github.com/pinehollow/club-booking-backend/internal/resource"
	"github.com/pinehollow/club-booking-backend/internal/tier"
)

// --- fakes ---

type fakeRepo struct {
	bookings     map[string]*Booking
	participants map[string]*Participant
	nextID       int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		bookings:     make(map[string]*Booking),
		participants: make(map[string]*Participant),
	}
}

func (r *fakeRepo) id() string {
	r.nextID++
	return fmt.Sprintf("id-%d", r.nextID)
}

func (r *fakeRepo) Create(ctx context.Context, b *Booking) error {
	for _, other := range r.bookings {
		if other.ResourceID == b.ResourceID && other.Date == b.Date &&
			other.StartTime == b.StartTime && !other.Status.Terminal() {
			return ErrSlotTaken
		}
	}
	b.ID = r.id()
	b.CreatedAt = time.Now()
	for i := range b.Participants {
		p := &b.Participants[i]
		p.ID = r.id()
		p.BookingID = b.ID
		r.participants[p.ID] = p
	}
	r.bookings[b.ID] = b
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, id string) (*Booking, error) {
	b, ok := r.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	return b, nil
}

func (r *fakeRepo) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	var out []*Booking
	for _, b := range r.bookings {
		out = append(out, b)
	}
	return out, len(out), nil
}

func (r *fakeRepo) Update(ctx context.Context, b *Booking) error {
	if _, ok := r.bookings[b.ID]; !ok {
		return ErrNotFound
	}
	r.bookings[b.ID] = b
	return nil
}

func (r *fakeRepo) ListForMemberDate(ctx context.Context, email, date string) ([]*Booking, error) {
	var out []*Booking
	for _, b := range r.bookings {
		if b.Date != date {
			continue
		}
		if b.OwnerEmail == email {
			out = append(out, b)
			continue
		}
		for _, p := range b.Participants {
			if p.MemberEmail == email {
				out = append(out, b)
				break
			}
		}
	}
	return out, nil
}

func (r *fakeRepo) FindActiveSimulatorOnDate(ctx context.Context, email, date string) (*Booking, error) {
	for _, b := range r.bookings {
		if b.OwnerEmail == email && b.Date == date &&
			b.ResourceType == resource.TypeSimulator &&
			(b.Status == StatusPending || b.Status == StatusApproved) {
			return b, nil
		}
	}
	return nil, ErrNotFound
}

func (r *fakeRepo) GetParticipant(ctx context.Context, id string) (*Participant, error) {
	p, ok := r.participants[id]
	if !ok {
		return nil, ErrParticipantNotFound
	}
	return p, nil
}

func (r *fakeRepo) UpdateParticipantInvite(ctx context.Context, id string, status InviteStatus) error {
	p, ok := r.participants[id]
	if !ok {
		return ErrParticipantNotFound
	}
	p.InviteStatus = status
	return nil
}

func (r *fakeRepo) RemoveParticipant(ctx context.Context, bookingID, participantID string) error {
	if _, ok := r.participants[participantID]; !ok {
		return ErrParticipantNotFound
	}
	delete(r.participants, participantID)
	b := r.bookings[bookingID]
	kept := b.Participants[:0]
	for _, p := range b.Participants {
		if p.ID != participantID {
			kept = append(kept, p)
		}
	}
	b.Participants = kept
	if b.DeclaredPlayerCount > 1 {
		b.DeclaredPlayerCount--
	}
	return nil
}

type fakeResources struct {
	byID map[string]*resource.Resource
}

func (f *fakeResources) Create(ctx context.Context, req resource.CreateRequest) (*resource.Resource, error) {
	return nil, nil
}

func (f *fakeResources) GetByID(ctx context.Context, id string) (*resource.Resource, error) {
	r, ok := f.byID[id]
	if !ok {
		return nil, resource.ErrNotFound
	}
	return r, nil
}

func (f *fakeResources) List(ctx context.Context, filter resource.Filter) ([]*resource.Resource, int, error) {
	var out []*resource.Resource
	for _, r := range f.byID {
		if filter.Type == "" || string(r.Type) == filter.Type {
			out = append(out, r)
		}
	}
	return out, len(out), nil
}

func (f *fakeResources) ListClosures(ctx context.Context, date string) ([]*resource.Closure, error) {
	return nil, nil
}

type fakeTiers struct {
	perms map[string]tier.Permissions
}

func (f *fakeTiers) Resolve(ctx context.Context, name string) tier.Permissions {
	if p, ok := f.perms[name]; ok {
		return p
	}
	return tier.DefaultPermissions(name)
}

type fakeAvailability struct {
	free bool
}

func (f *fakeAvailability) Compute(ctx context.Context, resourceType resource.Type, date string, durationMinutes int, excludeEmail string) ([]availability.TimeSlot, error) {
	return nil, nil
}

func (f *fakeAvailability) SlotIsFree(ctx context.Context, res *resource.Resource, date, startTime string, durationMinutes int) (bool, error) {
	return f.free, nil
}

type fakeMembers struct {
	byEmail map[string]*member.Member
	passes  map[string]*member.GuestPassBalance
	consent map[string]bool
}

func (f *fakeMembers) Register(ctx context.Context, req member.RegisterRequest) (*member.Member, error) {
	return nil, nil
}

func (f *fakeMembers) Login(ctx context.Context, email, password string) (*member.Member, error) {
	return nil, nil
}

func (f *fakeMembers) GetByID(ctx context.Context, id string) (*member.Member, error) {
	return nil, member.ErrNotFound
}

func (f *fakeMembers) GetByEmail(ctx context.Context, email string) (*member.Member, error) {
	m, ok := f.byEmail[email]
	if !ok {
		return nil, member.ErrNotFound
	}
	return m, nil
}

func (f *fakeMembers) GuestPassBalance(ctx context.Context, email string) (*member.GuestPassBalance, error) {
	b, ok := f.passes[email]
	if !ok {
		return nil, member.ErrNotFound
	}
	return b, nil
}

func (f *fakeMembers) HasConsent(ctx context.Context, email string) (bool, error) {
	return f.consent[email], nil
}

func (f *fakeMembers) RecordConsent(ctx context.Context, req member.ConsentRequest) (*member.GuardianConsent, error) {
	f.consent[req.MemberEmail] = true
	return &member.GuardianConsent{MemberEmail: req.MemberEmail}, nil
}

// --- fixture ---

type fixture struct {
	svc     Service
	repo    *fakeRepo
	avail   *fakeAvailability
	members *fakeMembers
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	repo := newFakeRepo()
	resources := &fakeResources{byID: map[string]*resource.Resource{
		"bay-1": {ID: "bay-1", Type: resource.TypeSimulator, Name: "Bay 1", Capacity: 4, OpenTime: "06:00", CloseTime: "22:00"},
		"room-1": {ID: "room-1", Type: resource.TypeConfRoom, Name: "Boardroom", Capacity: 8, OpenTime: "08:00", CloseTime: "20:00"},
		"studio": {ID: "studio", Type: resource.TypeWellnessClass, Name: "Studio", Capacity: 20, OpenTime: "06:00", CloseTime: "22:00"},
	}}
	tiers := &fakeTiers{perms: map[string]tier.Permissions{
		"standard": {
			Tier:                  "standard",
			DailySimulatorMinutes: 60,
			DailyConfRoomMinutes:  60,
			AdvanceBookingDays:    7,
			CanBookSimulator:      true,
			CanBookConfRoom:       true,
			CanBookWellness:       true,
			GuestFeeCents:         2000,
			OverageRateCents:      1500,
		},
		"social": {
			Tier:               "social",
			AdvanceBookingDays: 7,
			CanBookWellness:    true,
		},
	}}
	avail := &fakeAvailability{free: true}
	members := &fakeMembers{
		byEmail: map[string]*member.Member{},
		passes:  map[string]*member.GuestPassBalance{},
		consent: map[string]bool{},
	}

	return &fixture{
		svc:     NewService(repo, resources, tiers, avail, members, events.NewBroadcaster()),
		repo:    repo,
		avail:   avail,
		members: members,
	}
}

func tomorrow() string {
	return time.Now().UTC().AddDate(0, 0, 1).Format(dateLayout)
}

func baseRequest() CreateRequest {
	return CreateRequest{
		OwnerEmail: "owner@club.test",
		OwnerTier:  "standard",
		ResourceID: "bay-1",
		Date:       tomorrow(),
		StartTime:  "10:00",
		EndTime:    "11:00",
	}
}

// --- tests ---

func TestCreateSimulatorBookingStartsPending(t *testing.T) {
	f := newFixture(t)

	b, err := f.svc.Create(context.Background(), baseRequest())
	require.NoError(t, err)
	require.Equal(t, StatusPending, b.Status)
	require.Equal(t, 60, b.DurationMinutes)
	require.Equal(t, 1, b.DeclaredPlayerCount)
	require.Equal(t, resource.TypeSimulator, b.ResourceType)
	require.Zero(t, b.OverageFeeCents)
}

func TestCreateConferenceRoomSelfApproves(t *testing.T) {
	f := newFixture(t)

	req := baseRequest()
	req.ResourceID = "room-1"
	b, err := f.svc.Create(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, StatusConfirmed, b.Status)
}

func TestCreateConferenceRoomOverageRequiresPrepayment(t *testing.T) {
	f := newFixture(t)

	req := baseRequest()
	req.ResourceID = "room-1"
	req.StartTime = "10:00"
	req.EndTime = "12:00" // 120 min vs 60 min allowance

	_, err := f.svc.Create(context.Background(), req)
	require.ErrorIs(t, err, ErrPrepaymentRequired)

	req.PrepaymentConfirmed = true
	b, err := f.svc.Create(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, StatusConfirmed, b.Status)
	require.Equal(t, 60, b.OverageMinutes)
	require.Equal(t, 2*1500, b.OverageFeeCents)
	require.True(t, b.OveragePaid)
}

func TestCreateDeniedForTierWithoutAccess(t *testing.T) {
	f := newFixture(t)

	req := baseRequest()
	req.OwnerTier = "social"
	_, err := f.svc.Create(context.Background(), req)
	require.ErrorIs(t, err, ErrTierPermissionDenied)
}

func TestCreateRejectsWellnessResource(t *testing.T) {
	f := newFixture(t)

	req := baseRequest()
	req.ResourceID = "studio"
	_, err := f.svc.Create(context.Background(), req)
	require.ErrorIs(t, err, ErrNotBookable)
}

func TestCreateEnforcesAdvanceWindow(t *testing.T) {
	f := newFixture(t)

	req := baseRequest()
	req.Date = time.Now().UTC().AddDate(0, 0, 30).Format(dateLayout)
	_, err := f.svc.Create(context.Background(), req)
	require.ErrorIs(t, err, ErrAdvanceWindow)

	req.Date = "2020-01-01"
	_, err = f.svc.Create(context.Background(), req)
	require.ErrorIs(t, err, ErrDatePast)
}

func TestCreateOneSimulatorBookingPerDay(t *testing.T) {
	f := newFixture(t)

	first, err := f.svc.Create(context.Background(), baseRequest())
	require.NoError(t, err)

	req := baseRequest()
	req.StartTime = "14:00"
	req.EndTime = "15:00"
	_, err = f.svc.Create(context.Background(), req)

	var dle *DailyLimitError
	require.ErrorAs(t, err, &dle)
	require.Equal(t, first.ID, dle.Existing.ID)
}

func TestCreateSlotRace(t *testing.T) {
	f := newFixture(t)
	f.avail.free = false

	_, err := f.svc.Create(context.Background(), baseRequest())
	require.ErrorIs(t, err, ErrSlotTaken)
}

func TestCreateBlocksAnonymousGuests(t *testing.T) {
	f := newFixture(t)

	req := baseRequest()
	req.Players = []PlayerInput{{Type: ParticipantGuest}}
	_, err := f.svc.Create(context.Background(), req)
	require.ErrorIs(t, err, ErrIncompleteGuestInfo)
}

func TestCreateGuardianConsentGate(t *testing.T) {
	f := newFixture(t)

	dob := time.Now().UTC().AddDate(-15, 0, 0)
	f.members.byEmail["owner@club.test"] = &member.Member{
		Email:       "owner@club.test",
		DateOfBirth: &dob,
	}

	_, err := f.svc.Create(context.Background(), baseRequest())
	require.ErrorIs(t, err, ErrConsentRequired)

	// Once consent is on file the same member books freely.
	f.members.consent["owner@club.test"] = true
	_, err = f.svc.Create(context.Background(), baseRequest())
	require.NoError(t, err)
}

func TestEstimateCountsExistingUsageAndPasses(t *testing.T) {
	f := newFixture(t)
	f.members.passes["owner@club.test"] = &member.GuestPassBalance{Total: 1}

	// Existing confirmed hour consumes the whole allowance.
	_, err := f.svc.Create(context.Background(), baseRequest())
	require.NoError(t, err)

	est, err := f.svc.Estimate(context.Background(), EstimateRequest{
		OwnerEmail: "owner@club.test",
		OwnerTier:  "standard",
		ResourceID: "bay-1",
		Date:       tomorrow(),
		StartTime:  "14:00",
		EndTime:    "15:00",
		Players: []PlayerInput{
			{Type: ParticipantGuest, GuestName: "Pat"},
			{Type: ParticipantGuest, GuestName: "Sam"},
		},
		PlayerCount: 3,
	})
	require.NoError(t, err)

	require.Equal(t, 60, est.UsedMinutes)
	require.Equal(t, 0, est.RemainingMinutes)
	// Share is ceil(60/3)=20, all in overage: one block.
	require.Equal(t, 20, est.OverageMinutes)
	require.Equal(t, 1500, est.OverageFeeCents)
	require.Equal(t, 1, est.GuestsUsingPasses)
	require.Equal(t, 1, est.GuestsCharged)
	require.Equal(t, 2000, est.GuestFeesCents)
	require.Equal(t, 1500+2000, est.TotalFeeCents)
}

func TestInviteAcceptAndDecline(t *testing.T) {
	f := newFixture(t)

	req := baseRequest()
	req.Players = []PlayerInput{
		{Type: ParticipantMember, MemberEmail: "friend@club.test"},
		{Type: ParticipantMember, MemberEmail: "buddy@club.test"},
	}
	b, err := f.svc.Create(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, 3, b.DeclaredPlayerCount)
	require.Equal(t, InvitePending, b.Participants[0].InviteStatus)

	// A stranger cannot act on someone else's invite.
	_, err = f.svc.AcceptInvite(context.Background(), b.Participants[0].ID, "stranger@club.test")
	require.ErrorIs(t, err, ErrPermissionDenied)

	got, err := f.svc.AcceptInvite(context.Background(), b.Participants[0].ID, "friend@club.test")
	require.NoError(t, err)
	require.Contains(t, got.AcceptedParticipantEmails(), "friend@club.test")

	// Accepting twice is an invalid transition.
	_, err = f.svc.AcceptInvite(context.Background(), b.Participants[0].ID, "friend@club.test")
	require.ErrorIs(t, err, ErrInvalidTransition)

	// Decline removes the roster slot and shrinks the declared count.
	got, err = f.svc.DeclineInvite(context.Background(), b.Participants[1].ID, "buddy@club.test")
	require.NoError(t, err)
	require.Equal(t, 2, got.DeclaredPlayerCount)
	require.Len(t, got.Participants, 1)
}

func TestTransitionPermissions(t *testing.T) {
	f := newFixture(t)

	b, err := f.svc.Create(context.Background(), baseRequest())
	require.NoError(t, err)

	// Member cannot approve their own booking.
	_, err = f.svc.Transition(context.Background(), b.ID, ActionApprove, b.OwnerEmail, false)
	require.ErrorIs(t, err, ErrPermissionDenied)

	// Staff approve then confirm.
	got, err := f.svc.Transition(context.Background(), b.ID, ActionApprove, "staff@club.test", true)
	require.NoError(t, err)
	require.Equal(t, StatusApproved, got.Status)

	got, err = f.svc.Transition(context.Background(), b.ID, ActionConfirm, "staff@club.test", true)
	require.NoError(t, err)
	require.Equal(t, StatusConfirmed, got.Status)

	// Owner cancels; cancelling again is a no-op.
	got, err = f.svc.Transition(context.Background(), b.ID, ActionCancel, b.OwnerEmail, false)
	require.NoError(t, err)
	require.Equal(t, StatusCancelled, got.Status)

	got, err = f.svc.Transition(context.Background(), b.ID, ActionCancel, b.OwnerEmail, false)
	require.NoError(t, err)
	require.Equal(t, StatusCancelled, got.Status)
}

func TestCancellationPendingHandshake(t *testing.T) {
	f := newFixture(t)

	b, err := f.svc.Create(context.Background(), baseRequest())
	require.NoError(t, err)

	ref := "ext-cal-7"
	b.CalendarImportRef = &ref
	require.NoError(t, f.repo.Update(context.Background(), b))

	got, err := f.svc.Transition(context.Background(), b.ID, ActionCancel, b.OwnerEmail, false)
	require.NoError(t, err)
	require.Equal(t, StatusCancellationPending, got.Status)
	require.True(t, got.NeedsManualFollowUp)

	// Second cancel is a no-op, not an error.
	got, err = f.svc.Transition(context.Background(), b.ID, ActionCancel, b.OwnerEmail, false)
	require.NoError(t, err)
	require.Equal(t, StatusCancellationPending, got.Status)

	// Staff acknowledge once the external system caught up.
	got, err = f.svc.Transition(context.Background(), b.ID, ActionAckCancel, "staff@club.test", true)
	require.NoError(t, err)
	require.Equal(t, StatusCancelled, got.Status)
}
