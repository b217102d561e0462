// Package fee computes the monetary consequences of a prospective booking:
// overage against the tier's daily allowance and guest fees net of guest-pass
// consumption. Estimation is read-only; pass consumption is applied by the
// booking commit, never here.
package fee

// OverageBlockMinutes is the billing granularity for overage time.
const OverageBlockMinutes = 30

// Params are the inputs to an estimate. All monetary values are integer cents.
type Params struct {
	DurationMinutes    int
	ResourceType       string
	PlayerCount        int // declared players, owner included
	GuestCount         int
	GuestsWithIdentity int // guests with a resolvable name/email

	UsedMinutesForDay     int
	DailyAllowanceMinutes int
	UnlimitedAccess       bool

	GuestFeeCents        int
	OverageRateCents     int // flat rate per 30-minute block
	GuestPassesRemaining int
}

// Breakdown is the result of an estimate.
type Breakdown struct {
	ShareMinutes    int
	OverageMinutes  int
	OverageBlocks   int
	OverageFeeCents int

	GuestsUsingPasses    int
	GuestsCharged        int
	GuestFeesCents       int
	PassesRemainingAfter int

	// GuestsWithoutInfo blocks submission, never fee display.
	GuestsWithoutInfo int

	TotalFeeCents int
}

// Estimate computes the fee breakdown for a prospective booking. Missing or
// zero inputs degrade to zero fees rather than failing, so a partial data
// outage never blocks read-only display.
func Estimate(p Params) Breakdown {
	var b Breakdown

	b.ShareMinutes = shareMinutes(p)

	if !p.UnlimitedAccess {
		over := p.UsedMinutesForDay + b.ShareMinutes - p.DailyAllowanceMinutes
		if over > 0 {
			b.OverageMinutes = over
			b.OverageBlocks = ceilDiv(over, OverageBlockMinutes)
			b.OverageFeeCents = b.OverageBlocks * p.OverageRateCents
		}
	}

	guests := p.GuestCount
	if guests < 0 {
		guests = 0
	}
	passes := p.GuestPassesRemaining
	if passes < 0 {
		passes = 0
	}

	// Passes are consumed in FIFO order, one pass waiving one guest's fee.
	b.GuestsUsingPasses = min(guests, passes)
	b.GuestsCharged = guests - b.GuestsUsingPasses
	b.GuestFeesCents = b.GuestsCharged * p.GuestFeeCents
	b.PassesRemainingAfter = passes - b.GuestsUsingPasses

	withInfo := p.GuestsWithIdentity
	if withInfo > guests {
		withInfo = guests
	}
	if withInfo < 0 {
		withInfo = 0
	}
	b.GuestsWithoutInfo = guests - withInfo

	b.TotalFeeCents = b.OverageFeeCents + b.GuestFeesCents
	return b
}

// shareMinutes is the billable duration charged against the tier allowance.
// Simulator time is split evenly across declared players; conference rooms
// charge the full duration to the booking owner.
func shareMinutes(p Params) int {
	if p.DurationMinutes <= 0 {
		return 0
	}
	if p.ResourceType == "conference_room" {
		return p.DurationMinutes
	}
	players := p.PlayerCount
	if players < 1 {
		players = 1
	}
	return ceilDiv(p.DurationMinutes, players)
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
