package booking

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/pinehollow/club-booking-backend/internal/availability"
	"github.com/pinehollow/club-booking-backend/internal/events"
	"github.com/pinehollow/club-booking-backend/internal/fee"
	"github.com/pinehollow/club-booking-backend/internal/member"
	"github.com/pinehollow/club-booking-backend/internal/pkg/apperror"
	"github.com/pinehollow/club-booking-backend/internal/pkg/clock"
	"github.com/pinehollow/club-booking-backend/internal/resource"
	"github.com/pinehollow/club-booking-backend/internal/tier"
	"github.com/pinehollow/club-booking-backend/internal/usage"
)

// ErrDatePast rejects bookings for dates that have already passed.
var ErrDatePast = apperror.New(http.StatusBadRequest, "cannot book a date in the past")

const dateLayout = "2006-01-02"

// PlayerInput is one non-owner roster entry on a create or estimate request.
type PlayerInput struct {
	Type        ParticipantType
	MemberEmail string
	GuestName   string
	GuestEmail  string
}

type CreateRequest struct {
	OwnerEmail string
	OwnerTier  string
	ResourceID string
	Date       string // "YYYY-MM-DD"
	StartTime  string // "HH:MM"
	EndTime    string // "HH:MM"
	Notes      string
	Players    []PlayerInput

	// PlayerCount overrides the declared player count when guests are
	// still anonymous; zero means 1 + len(Players).
	PlayerCount int

	// PrepaymentConfirmed acknowledges the synchronous overage prepayment
	// required for self-approving conference room bookings.
	PrepaymentConfirmed bool
}

type EstimateRequest struct {
	OwnerEmail  string
	OwnerTier   string
	ResourceID  string
	Date        string
	StartTime   string
	EndTime     string
	Players     []PlayerInput
	PlayerCount int
}

// Estimate is a fee breakdown plus the ledger context it was computed from.
type Estimate struct {
	fee.Breakdown
	UsedMinutes      int
	RemainingMinutes int
	AllowanceMinutes int
}

type Service interface {
	Estimate(ctx context.Context, req EstimateRequest) (*Estimate, error)
	Create(ctx context.Context, req CreateRequest) (*Booking, error)
	GetByID(ctx context.Context, id string) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)

	// Transition applies a lifecycle action. Members may only cancel their
	// own bookings; every other action is staff-side.
	Transition(ctx context.Context, id string, action Action, actorEmail string, isStaff bool) (*Booking, error)

	AcceptInvite(ctx context.Context, participantID, actorEmail string) (*Booking, error)
	DeclineInvite(ctx context.Context, participantID, actorEmail string) (*Booking, error)

	// UsedMinutes reports the member's consumed and remaining allowance
	// for the resource type on the date.
	UsedMinutes(ctx context.Context, email, tierName, resourceType, date string) (used, remaining int, err error)
}

type service struct {
	repo         Repository
	resources    resource.Service
	tiers        tier.Resolver
	availability availability.Service
	members      member.Service
	broadcaster  *events.Broadcaster
}

func NewService(
	repo Repository,
	resources resource.Service,
	tiers tier.Resolver,
	availabilitySvc availability.Service,
	members member.Service,
	broadcaster *events.Broadcaster,
) Service {
	return &service{
		repo:         repo,
		resources:    resources,
		tiers:        tiers,
		availability: availabilitySvc,
		members:      members,
		broadcaster:  broadcaster,
	}
}

func (s *service) Estimate(ctx context.Context, req EstimateRequest) (*Estimate, error) {
	res, err := s.resources.GetByID(ctx, req.ResourceID)
	if err != nil {
		return nil, err
	}

	duration, err := clock.Span(req.StartTime, req.EndTime)
	if err != nil || duration <= 0 {
		return nil, ErrInvalidTimeRange
	}

	perms := s.tiers.Resolve(ctx, req.OwnerTier)
	return s.estimate(ctx, req, res, perms, duration)
}

// estimate never fails on missing ledger or pass data; it degrades to
// conservative zero values so fee display survives a partial outage.
func (s *service) estimate(ctx context.Context, req EstimateRequest, res *resource.Resource, perms tier.Permissions, duration int) (*Estimate, error) {
	used := 0
	if entries, err := s.usageEntries(ctx, req.OwnerEmail, req.Date); err == nil {
		used = usage.UsedMinutes(req.OwnerEmail, string(res.Type), req.Date, entries)
	}

	passesRemaining := 0
	if balance, err := s.members.GuestPassBalance(ctx, req.OwnerEmail); err == nil {
		passesRemaining = balance.Remaining()
	}

	guests, guestsWithInfo := countGuests(req.Players)

	players := req.PlayerCount
	if players < 1 {
		players = 1 + len(req.Players)
	}

	allowance := perms.DailyAllowance(string(res.Type))
	breakdown := fee.Estimate(fee.Params{
		DurationMinutes:       duration,
		ResourceType:          string(res.Type),
		PlayerCount:           players,
		GuestCount:            guests,
		GuestsWithIdentity:    guestsWithInfo,
		UsedMinutesForDay:     used,
		DailyAllowanceMinutes: allowance,
		UnlimitedAccess:       perms.UnlimitedAccess,
		GuestFeeCents:         perms.GuestFeeCents,
		OverageRateCents:      perms.OverageRateCents,
		GuestPassesRemaining:  passesRemaining,
	})

	return &Estimate{
		Breakdown:        breakdown,
		UsedMinutes:      used,
		RemainingMinutes: usage.RemainingMinutes(allowance, perms.UnlimitedAccess, used),
		AllowanceMinutes: allowance,
	}, nil
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Booking, error) {
	res, err := s.resources.GetByID(ctx, req.ResourceID)
	if err != nil {
		return nil, err
	}
	if res.Type != resource.TypeSimulator && res.Type != resource.TypeConfRoom {
		// Wellness classes enroll through the class endpoints.
		return nil, ErrNotBookable
	}

	perms := s.tiers.Resolve(ctx, req.OwnerTier)
	if !perms.CanBook(string(res.Type)) {
		return nil, ErrTierPermissionDenied
	}

	duration, err := clock.Span(req.StartTime, req.EndTime)
	if err != nil || duration <= 0 {
		return nil, ErrInvalidTimeRange
	}

	if err := checkAdvanceWindow(req.Date, perms.AdvanceBookingDays); err != nil {
		return nil, err
	}

	// One active simulator booking per member per day; surface the
	// existing booking instead of a slot picker.
	if res.Type == resource.TypeSimulator {
		existing, err := s.repo.FindActiveSimulatorOnDate(ctx, req.OwnerEmail, req.Date)
		if err == nil {
			return nil, &DailyLimitError{Existing: existing}
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}

	if err := s.checkGuardianConsent(ctx, req.OwnerEmail, req.Date); err != nil {
		return nil, err
	}

	// Unidentified guests block submission, not fee display.
	for _, p := range req.Players {
		if p.Type == ParticipantGuest && p.GuestName == "" && p.GuestEmail == "" {
			return nil, ErrIncompleteGuestInfo
		}
	}

	free, err := s.availability.SlotIsFree(ctx, res, req.Date, req.StartTime, duration)
	if err != nil {
		return nil, err
	}
	if !free {
		return nil, ErrSlotTaken
	}

	est, err := s.estimate(ctx, EstimateRequest{
		OwnerEmail:  req.OwnerEmail,
		OwnerTier:   req.OwnerTier,
		ResourceID:  req.ResourceID,
		Date:        req.Date,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Players:     req.Players,
		PlayerCount: req.PlayerCount,
	}, res, perms, duration)
	if err != nil {
		return nil, err
	}

	// Conference rooms self-approve; overage must be prepaid synchronously.
	status := StatusPending
	overagePaid := false
	if res.Type == resource.TypeConfRoom {
		if est.OverageFeeCents > 0 && !req.PrepaymentConfirmed {
			return nil, ErrPrepaymentRequired
		}
		status = StatusConfirmed
		overagePaid = est.OverageFeeCents > 0
	}

	players := req.PlayerCount
	if players < 1 {
		players = 1 + len(req.Players)
	}

	b := &Booking{
		OwnerEmail:          req.OwnerEmail,
		OwnerTier:           req.OwnerTier,
		ResourceID:          res.ID,
		ResourceName:        res.Name,
		ResourceType:        res.Type,
		Date:                req.Date,
		StartTime:           req.StartTime,
		EndTime:             req.EndTime,
		DurationMinutes:     duration,
		DeclaredPlayerCount: players,
		Notes:               req.Notes,
		Status:              status,
		OverageMinutes:      est.OverageMinutes,
		OverageFeeCents:     est.OverageFeeCents,
		OveragePaid:         overagePaid,
	}

	for _, p := range req.Players {
		participant := Participant{
			Type:         p.Type,
			MemberEmail:  p.MemberEmail,
			GuestName:    p.GuestName,
			GuestEmail:   p.GuestEmail,
			InviteStatus: InviteAccepted,
		}
		// Only non-owner member participants go through the invite
		// sub-protocol.
		if p.Type == ParticipantMember {
			participant.InviteStatus = InvitePending
		}
		b.Participants = append(b.Participants, participant)
	}

	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}

	s.broadcaster.Publish(events.Event{
		Type:       "booking.created",
		BookingID:  b.ID,
		Date:       b.Date,
		ResourceID: b.ResourceID,
	})
	return b, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Booking, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Transition(ctx context.Context, id string, action Action, actorEmail string, isStaff bool) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	isOwner := b.OwnerEmail == actorEmail
	if !isStaff {
		// Members may only cancel, and only their own bookings.
		if !isOwner || action != ActionCancel {
			return nil, ErrPermissionDenied
		}
	}

	next, err := Transition(b, action)
	if err != nil {
		return nil, err
	}
	if next == b.Status {
		// Idempotent cancel; nothing to persist.
		return b, nil
	}

	b.Status = next
	if next == StatusCancellationPending {
		// Linked to an external calendar import; staff must reconcile.
		b.NeedsManualFollowUp = true
	}

	if err := s.repo.Update(ctx, b); err != nil {
		return nil, err
	}

	s.broadcaster.Publish(events.Event{
		Type:       "booking." + string(next),
		BookingID:  b.ID,
		Date:       b.Date,
		ResourceID: b.ResourceID,
	})
	return b, nil
}

func (s *service) AcceptInvite(ctx context.Context, participantID, actorEmail string) (*Booking, error) {
	p, err := s.participantForActor(ctx, participantID, actorEmail)
	if err != nil {
		return nil, err
	}

	if p.InviteStatus != InvitePending {
		return nil, ErrInvalidTransition
	}
	if err := s.repo.UpdateParticipantInvite(ctx, p.ID, InviteAccepted); err != nil {
		return nil, err
	}

	b, err := s.repo.GetByID(ctx, p.BookingID)
	if err != nil {
		return nil, err
	}

	s.broadcaster.Publish(events.Event{
		Type:      "booking.invite_accepted",
		BookingID: b.ID,
		Date:      b.Date,
	})
	return b, nil
}

func (s *service) DeclineInvite(ctx context.Context, participantID, actorEmail string) (*Booking, error) {
	p, err := s.participantForActor(ctx, participantID, actorEmail)
	if err != nil {
		return nil, err
	}

	if p.InviteStatus != InvitePending {
		return nil, ErrInvalidTransition
	}

	// Decline removes the slot from the roster entirely; the booking
	// itself stands and is re-billed on the next ledger run.
	if err := s.repo.RemoveParticipant(ctx, p.BookingID, p.ID); err != nil {
		return nil, err
	}

	b, err := s.repo.GetByID(ctx, p.BookingID)
	if err != nil {
		return nil, err
	}

	s.broadcaster.Publish(events.Event{
		Type:      "booking.invite_declined",
		BookingID: b.ID,
		Date:      b.Date,
	})
	return b, nil
}

func (s *service) UsedMinutes(ctx context.Context, email, tierName, resourceType, date string) (int, int, error) {
	perms := s.tiers.Resolve(ctx, tierName)

	if perms.UnlimitedAccess {
		return 0, usage.Unlimited, nil
	}

	entries, err := s.usageEntries(ctx, email, date)
	if err != nil {
		return 0, 0, err
	}

	used := usage.UsedMinutes(email, resourceType, date, entries)
	remaining := usage.RemainingMinutes(perms.DailyAllowance(resourceType), false, used)
	return used, remaining, nil
}

func (s *service) participantForActor(ctx context.Context, participantID, actorEmail string) (*Participant, error) {
	p, err := s.repo.GetParticipant(ctx, participantID)
	if err != nil {
		return nil, err
	}
	if p.Type != ParticipantMember || p.MemberEmail != actorEmail {
		return nil, ErrPermissionDenied
	}
	return p, nil
}

func (s *service) checkGuardianConsent(ctx context.Context, email, date string) error {
	m, err := s.members.GetByEmail(ctx, email)
	if err != nil {
		// Unknown member record (e.g. external import): consent gate
		// cannot apply.
		if errors.Is(err, member.ErrNotFound) {
			return nil
		}
		return err
	}

	on, err := time.Parse(dateLayout, date)
	if err != nil {
		return ErrInvalidTimeRange
	}
	if !m.IsMinor(on) {
		return nil
	}

	has, err := s.members.HasConsent(ctx, email)
	if err != nil {
		return err
	}
	if !has {
		return ErrConsentRequired
	}
	return nil
}

func (s *service) usageEntries(ctx context.Context, email, date string) ([]usage.Entry, error) {
	bookings, err := s.repo.ListForMemberDate(ctx, email, date)
	if err != nil {
		return nil, err
	}

	entries := make([]usage.Entry, 0, len(bookings))
	for _, b := range bookings {
		entries = append(entries, usage.Entry{
			Date:            b.Date,
			ResourceType:    string(b.ResourceType),
			Status:          string(b.Status),
			OwnerEmail:      b.OwnerEmail,
			DurationMinutes: b.DurationMinutes,
			PlayerCount:     b.DeclaredPlayerCount,
			AcceptedEmails:  b.AcceptedParticipantEmails(),
		})
	}
	return entries, nil
}

func checkAdvanceWindow(date string, advanceDays int) error {
	d, err := time.Parse(dateLayout, date)
	if err != nil {
		return ErrInvalidTimeRange
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	if d.Before(today) {
		return ErrDatePast
	}
	if d.After(today.AddDate(0, 0, advanceDays)) {
		return ErrAdvanceWindow
	}
	return nil
}

func countGuests(players []PlayerInput) (guests, withInfo int) {
	for _, p := range players {
		if p.Type != ParticipantGuest {
			continue
		}
		guests++
		if p.GuestName != "" || p.GuestEmail != "" {
			withInfo++
		}
	}
	return guests, withInfo
}
