package http

import (
	"time"

	"github.com/pinehollow/club-booking-backend/internal/booking"
)

type PlayerRequest struct {
	Type        string `json:"type" binding:"required,oneof=member guest"`
	MemberEmail string `json:"member_email" binding:"omitempty,email"`
	GuestName   string `json:"guest_name"`
	GuestEmail  string `json:"guest_email" binding:"omitempty,email"`
}

type CreateBookingRequest struct {
	ResourceID string          `json:"resource_id" binding:"required"`
	Date       string          `json:"date" binding:"required,datetime=2006-01-02"`
	StartTime  string          `json:"start_time" binding:"required,datetime=15:04"`
	EndTime    string          `json:"end_time" binding:"required,datetime=15:04"`
	Notes      string          `json:"notes" binding:"max=500"`
	Players    []PlayerRequest `json:"players" binding:"dive"`

	PlayerCount         int  `json:"player_count" binding:"omitempty,min=1,max=8"`
	PrepaymentConfirmed bool `json:"prepayment_confirmed"`
}

type EstimateBookingRequest struct {
	ResourceID  string          `json:"resource_id" binding:"required"`
	Date        string          `json:"date" binding:"required,datetime=2006-01-02"`
	StartTime   string          `json:"start_time" binding:"required,datetime=15:04"`
	EndTime     string          `json:"end_time" binding:"required,datetime=15:04"`
	Players     []PlayerRequest `json:"players" binding:"dive"`
	PlayerCount int             `json:"player_count" binding:"omitempty,min=1,max=8"`
}

type ListBookingsQuery struct {
	Date         string `form:"date" binding:"omitempty,datetime=2006-01-02"`
	Status       string `form:"status"`
	ResourceID   string `form:"resource_id"`
	ResourceType string `form:"resource_type" binding:"omitempty,oneof=simulator conference_room"`
	OwnerEmail   string `form:"owner_email" binding:"omitempty,email"` // staff only
	Page         int    `form:"page"`
	PageSize     int    `form:"page_size"`
}

type AvailabilityQuery struct {
	ResourceType string `form:"resource_type" binding:"required,oneof=simulator conference_room"`
	Date         string `form:"date" binding:"required,datetime=2006-01-02"`

	// DurationMinutes defaults to the configured slot granularity.
	DurationMinutes int `form:"duration_minutes" binding:"omitempty,min=15,max=480"`

	// ExcludeSelf hides occupancy caused by the caller's own bookings,
	// so a reschedule view shows the slot they currently hold as free.
	ExcludeSelf bool `form:"exclude_self"`
}

type UsageQuery struct {
	ResourceType string `form:"resource_type" binding:"required,oneof=simulator conference_room"`
	Date         string `form:"date" binding:"required,datetime=2006-01-02"`
}

type ParticipantResponse struct {
	ID           string `json:"id"`
	Type         string `json:"type"`
	MemberEmail  string `json:"member_email,omitempty"`
	GuestName    string `json:"guest_name,omitempty"`
	GuestEmail   string `json:"guest_email,omitempty"`
	InviteStatus string `json:"invite_status"`
}

type BookingResponse struct {
	ID                  string                `json:"id"`
	OwnerEmail          string                `json:"owner_email"`
	ResourceID          string                `json:"resource_id"`
	ResourceName        string                `json:"resource_name"`
	ResourceType        string                `json:"resource_type"`
	Date                string                `json:"date"`
	StartTime           string                `json:"start_time"`
	EndTime             string                `json:"end_time"`
	DurationMinutes     int                   `json:"duration_minutes"`
	DeclaredPlayerCount int                   `json:"declared_player_count"`
	Notes               string                `json:"notes,omitempty"`
	Status              string                `json:"status"`
	Participants        []ParticipantResponse `json:"participants"`

	OverageMinutes  int  `json:"overage_minutes"`
	OverageFeeCents int  `json:"overage_fee_cents"`
	OveragePaid     bool `json:"overage_paid"`

	CalendarImportRef   *string `json:"calendar_import_ref,omitempty"`
	NeedsManualFollowUp bool    `json:"needs_manual_follow_up,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewBookingResponse(b *booking.Booking) BookingResponse {
	participants := make([]ParticipantResponse, 0, len(b.Participants))
	for _, p := range b.Participants {
		participants = append(participants, ParticipantResponse{
			ID:           p.ID,
			Type:         string(p.Type),
			MemberEmail:  p.MemberEmail,
			GuestName:    p.GuestName,
			GuestEmail:   p.GuestEmail,
			InviteStatus: string(p.InviteStatus),
		})
	}

	return BookingResponse{
		ID:                  b.ID,
		OwnerEmail:          b.OwnerEmail,
		ResourceID:          b.ResourceID,
		ResourceName:        b.ResourceName,
		ResourceType:        string(b.ResourceType),
		Date:                b.Date,
		StartTime:           b.StartTime,
		EndTime:             b.EndTime,
		DurationMinutes:     b.DurationMinutes,
		DeclaredPlayerCount: b.DeclaredPlayerCount,
		Notes:               b.Notes,
		Status:              string(b.Status),
		Participants:        participants,
		OverageMinutes:      b.OverageMinutes,
		OverageFeeCents:     b.OverageFeeCents,
		OveragePaid:         b.OveragePaid,
		CalendarImportRef:   b.CalendarImportRef,
		NeedsManualFollowUp: b.NeedsManualFollowUp,
		CreatedAt:           b.CreatedAt,
		UpdatedAt:           b.UpdatedAt,
	}
}

type EstimateResponse struct {
	ShareMinutes     int `json:"share_minutes"`
	UsedMinutes      int `json:"used_minutes"`
	RemainingMinutes int `json:"remaining_minutes"`
	AllowanceMinutes int `json:"allowance_minutes"`

	OverageMinutes  int `json:"overage_minutes"`
	OverageBlocks   int `json:"overage_blocks"`
	OverageFeeCents int `json:"overage_fee_cents"`

	GuestsUsingPasses    int `json:"guests_using_passes"`
	GuestsCharged        int `json:"guests_charged"`
	GuestFeesCents       int `json:"guest_fees_cents"`
	PassesRemainingAfter int `json:"passes_remaining_after"`
	GuestsWithoutInfo    int `json:"guests_without_info"`

	TotalFeeCents int `json:"total_fee_cents"`
}

func NewEstimateResponse(e *booking.Estimate) EstimateResponse {
	return EstimateResponse{
		ShareMinutes:         e.ShareMinutes,
		UsedMinutes:          e.UsedMinutes,
		RemainingMinutes:     e.RemainingMinutes,
		AllowanceMinutes:     e.AllowanceMinutes,
		OverageMinutes:       e.OverageMinutes,
		OverageBlocks:        e.OverageBlocks,
		OverageFeeCents:      e.OverageFeeCents,
		GuestsUsingPasses:    e.GuestsUsingPasses,
		GuestsCharged:        e.GuestsCharged,
		GuestFeesCents:       e.GuestFeesCents,
		PassesRemainingAfter: e.PassesRemainingAfter,
		GuestsWithoutInfo:    e.GuestsWithoutInfo,
		TotalFeeCents:        e.TotalFeeCents,
	}
}

type UsageResponse struct {
	Date             string `json:"date"`
	ResourceType     string `json:"resource_type"`
	UsedMinutes      int    `json:"used_minutes"`
	RemainingMinutes int    `json:"remaining_minutes"`
	Unlimited        bool   `json:"unlimited"`
}

func toPlayerInputs(players []PlayerRequest) []booking.PlayerInput {
	out := make([]booking.PlayerInput, 0, len(players))
	for _, p := range players {
		out = append(out, booking.PlayerInput{
			Type:        booking.ParticipantType(p.Type),
			MemberEmail: p.MemberEmail,
			GuestName:   p.GuestName,
			GuestEmail:  p.GuestEmail,
		})
	}
	return out
}
