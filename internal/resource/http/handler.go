package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pinehollow/club-booking-backend/internal/auth"
	"github.com/pinehollow/club-booking-backend/internal/member"
	"github.com/pinehollow/club-booking-backend/internal/pkg/request"
	"github.com/pinehollow/club-booking-backend/internal/pkg/response"
	"github.com/pinehollow/club-booking-backend/internal/resource"
)

type Handler struct {
	service resource.Service
	members member.Service
}

func NewHandler(service resource.Service, members member.Service) *Handler {
	return &Handler{
		service: service,
		members: members,
	}
}

func (h *Handler) Create(c *gin.Context) {
	if !h.isStaff(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "staff only"})
		return
	}

	var req CreateResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.service.Create(c.Request.Context(), resource.CreateRequest{
		Name:      req.Name,
		Type:      req.Type,
		Capacity:  req.Capacity,
		OpenTime:  req.OpenTime,
		CloseTime: req.CloseTime,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewResourceResponse(res))
}

func (h *Handler) List(c *gin.Context) {
	var req ListResourcesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.Normalize()

	resources, total, err := h.service.List(c.Request.Context(), resource.Filter{
		Type:     req.Type,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]ResourceResponse, 0, len(resources))
	for _, r := range resources {
		items = append(items, NewResourceResponse(r))
	}
	c.JSON(http.StatusOK, response.NewPageResponse(items, req.Page, req.PageSize, total))
}

func (h *Handler) Get(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.service.GetByID(c.Request.Context(), req.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewResourceResponse(res))
}

func (h *Handler) ListClosures(c *gin.Context) {
	var req ListClosuresRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	closures, err := h.service.ListClosures(c.Request.Context(), req.Date)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]ClosureResponse, 0, len(closures))
	for _, cl := range closures {
		items = append(items, NewClosureResponse(cl))
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) isStaff(c *gin.Context) bool {
	m, err := h.members.GetByEmail(c.Request.Context(), auth.GetMemberEmail(c))
	if err != nil {
		return false
	}
	return m.IsStaff
}
