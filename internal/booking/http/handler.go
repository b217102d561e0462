package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pinehollow/club-booking-backend/internal/auth"
	"github.com/pinehollow/club-booking-backend/internal/availability"
	"github.com/pinehollow/club-booking-backend/internal/booking"
	"github.com/pinehollow/club-booking-backend/internal/member"
	"github.com/pinehollow/club-booking-backend/internal/pkg/request"
	"github.com/pinehollow/club-booking-backend/internal/pkg/response"
	"github.com/pinehollow/club-booking-backend/internal/resource"
	"github.com/pinehollow/club-booking-backend/internal/tier"
	"github.com/pinehollow/club-booking-backend/internal/usage"
)

type Handler struct {
	service      booking.Service
	availability availability.Service
	tiers        tier.Resolver
	members      member.Service

	// defaultSlotMinutes is used when an availability query omits the
	// duration.
	defaultSlotMinutes int
}

func NewHandler(service booking.Service, availabilitySvc availability.Service, tiers tier.Resolver, members member.Service, defaultSlotMinutes int) *Handler {
	return &Handler{
		service:            service,
		availability:       availabilitySvc,
		tiers:              tiers,
		members:            members,
		defaultSlotMinutes: defaultSlotMinutes,
	}
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	b, err := h.service.Create(c.Request.Context(), booking.CreateRequest{
		OwnerEmail:          auth.GetMemberEmail(c),
		OwnerTier:           auth.GetMemberTier(c),
		ResourceID:          req.ResourceID,
		Date:                req.Date,
		StartTime:           req.StartTime,
		EndTime:             req.EndTime,
		Notes:               req.Notes,
		Players:             toPlayerInputs(req.Players),
		PlayerCount:         req.PlayerCount,
		PrepaymentConfirmed: req.PrepaymentConfirmed,
	})
	if err != nil {
		// The one-per-day rule returns the booking already held so the
		// client can show it instead of a slot picker.
		var dle *booking.DailyLimitError
		if errors.As(err, &dle) {
			c.JSON(http.StatusConflict, gin.H{
				"error":            dle.Error(),
				"existing_booking": NewBookingResponse(dle.Existing),
			})
			return
		}
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewBookingResponse(b))
}

func (h *Handler) Estimate(c *gin.Context) {
	var req EstimateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	est, err := h.service.Estimate(c.Request.Context(), booking.EstimateRequest{
		OwnerEmail:  auth.GetMemberEmail(c),
		OwnerTier:   auth.GetMemberTier(c),
		ResourceID:  req.ResourceID,
		Date:        req.Date,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Players:     toPlayerInputs(req.Players),
		PlayerCount: req.PlayerCount,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewEstimateResponse(est))
}

func (h *Handler) List(c *gin.Context) {
	var q ListBookingsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	params := request.ListParams{Page: q.Page, PageSize: q.PageSize}
	params.Normalize()

	filter := booking.Filter{
		OwnerEmail:   q.OwnerEmail,
		ResourceID:   q.ResourceID,
		ResourceType: q.ResourceType,
		Date:         q.Date,
		Status:       q.Status,
		Page:         params.Page,
		PageSize:     params.PageSize,
	}

	// Members only see their own bookings.
	if !h.isStaff(c) {
		filter.OwnerEmail = auth.GetMemberEmail(c)
	}

	bookings, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		items = append(items, NewBookingResponse(b))
	}
	c.JSON(http.StatusOK, response.NewPageResponse(items, params.Page, params.PageSize, total))
}

func (h *Handler) Get(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	b, err := h.service.GetByID(c.Request.Context(), req.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	// Owners, rostered members and staff may view; others get a 404 so
	// booking ids cannot be probed.
	if !h.canView(c, b) {
		response.Error(c, booking.ErrNotFound)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

// Cancel retires the booking. Bookings linked to an external calendar
// import park in cancellation_pending instead of cancelling outright.
func (h *Handler) Cancel(c *gin.Context) {
	h.transition(c, booking.ActionCancel)
}

// Action returns a handler applying one staff-side lifecycle action.
func (h *Handler) Action(action booking.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		h.transition(c, action)
	}
}

func (h *Handler) transition(c *gin.Context, action booking.Action) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	b, err := h.service.Transition(c.Request.Context(), req.ID, action, auth.GetMemberEmail(c), h.isStaff(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

func (h *Handler) AcceptInvite(c *gin.Context) {
	h.invite(c, h.service.AcceptInvite)
}

func (h *Handler) DeclineInvite(c *gin.Context) {
	h.invite(c, h.service.DeclineInvite)
}

func (h *Handler) invite(c *gin.Context, apply func(ctx context.Context, participantID, actorEmail string) (*booking.Booking, error)) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	b, err := apply(c.Request.Context(), req.ID, auth.GetMemberEmail(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

// Availability returns the merged slot grid for a resource type and date.
func (h *Handler) Availability(c *gin.Context) {
	var q AvailabilityQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if q.DurationMinutes == 0 {
		q.DurationMinutes = h.defaultSlotMinutes
	}

	perms := h.tiers.Resolve(c.Request.Context(), auth.GetMemberTier(c))
	if !perms.CanBook(q.ResourceType) {
		response.Error(c, booking.ErrTierPermissionDenied)
		return
	}

	excludeEmail := ""
	if q.ExcludeSelf {
		excludeEmail = auth.GetMemberEmail(c)
	}

	slots, err := h.availability.Compute(c.Request.Context(),
		resource.Type(q.ResourceType), q.Date, q.DurationMinutes, excludeEmail)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date":             q.Date,
		"resource_type":    q.ResourceType,
		"duration_minutes": q.DurationMinutes,
		"slots":            slots,
	})
}

// Usage reports the caller's consumed and remaining daily allowance.
func (h *Handler) Usage(c *gin.Context) {
	var q UsageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	used, remaining, err := h.service.UsedMinutes(c.Request.Context(),
		auth.GetMemberEmail(c), auth.GetMemberTier(c), q.ResourceType, q.Date)
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := UsageResponse{
		Date:         q.Date,
		ResourceType: q.ResourceType,
		UsedMinutes:  used,
	}
	if remaining == usage.Unlimited {
		resp.Unlimited = true
	} else {
		resp.RemainingMinutes = remaining
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) isStaff(c *gin.Context) bool {
	m, err := h.members.GetByEmail(c.Request.Context(), auth.GetMemberEmail(c))
	if err != nil {
		return false
	}
	return m.IsStaff
}

func (h *Handler) canView(c *gin.Context, b *booking.Booking) bool {
	email := auth.GetMemberEmail(c)
	if b.OwnerEmail == email {
		return true
	}
	for _, p := range b.Participants {
		if p.MemberEmail == email {
			return true
		}
	}
	return h.isStaff(c)
}
