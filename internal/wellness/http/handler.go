package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pinehollow/club-booking-backend/internal/auth"
	"github.com/pinehollow/club-booking-backend/internal/member"
	"github.com/pinehollow/club-booking-backend/internal/pkg/request"
	"github.com/pinehollow/club-booking-backend/internal/pkg/response"
	"github.com/pinehollow/club-booking-backend/internal/wellness"
)

type Handler struct {
	service wellness.Service
	members member.Service
}

func NewHandler(service wellness.Service, members member.Service) *Handler {
	return &Handler{
		service: service,
		members: members,
	}
}

func (h *Handler) CreateClass(c *gin.Context) {
	if !h.isStaff(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "staff only"})
		return
	}

	var req CreateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	class, err := h.service.CreateClass(c.Request.Context(), wellness.CreateClassRequest{
		Name:            req.Name,
		InstructorName:  req.InstructorName,
		Date:            req.Date,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		Capacity:        req.Capacity,
		WaitlistEnabled: req.WaitlistEnabled,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewClassResponse(class))
}

func (h *Handler) ListClasses(c *gin.Context) {
	var q ListClassesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	params := request.ListParams{Page: q.Page, PageSize: q.PageSize}
	params.Normalize()

	classes, total, err := h.service.ListClasses(c.Request.Context(), wellness.ClassFilter{
		Date:     q.Date,
		Page:     params.Page,
		PageSize: params.PageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]ClassResponse, 0, len(classes))
	for _, class := range classes {
		items = append(items, NewClassResponse(class))
	}
	c.JSON(http.StatusOK, response.NewPageResponse(items, params.Page, params.PageSize, total))
}

func (h *Handler) GetClass(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	class, err := h.service.GetClass(c.Request.Context(), req.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewClassResponse(class))
}

func (h *Handler) Enroll(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	e, err := h.service.Enroll(c.Request.Context(), req.ID,
		auth.GetMemberEmail(c), auth.GetMemberTier(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewEnrollmentResponse(e))
}

func (h *Handler) CancelEnrollment(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.Cancel(c.Request.Context(), req.ID, auth.GetMemberEmail(c)); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) Promote(c *gin.Context) {
	if !h.isStaff(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "staff only"})
		return
	}

	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	e, err := h.service.Promote(c.Request.Context(), req.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewEnrollmentResponse(e))
}

func (h *Handler) Roster(c *gin.Context) {
	if !h.isStaff(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "staff only"})
		return
	}

	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	enrollments, err := h.service.Roster(c.Request.Context(), req.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]EnrollmentResponse, 0, len(enrollments))
	for _, e := range enrollments {
		items = append(items, NewEnrollmentResponse(e))
	}
	c.JSON(http.StatusOK, gin.H{"enrollments": items})
}

func (h *Handler) isStaff(c *gin.Context) bool {
	m, err := h.members.GetByEmail(c.Request.Context(), auth.GetMemberEmail(c))
	if err != nil {
		return false
	}
	return m.IsStaff
}
