package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pinehollow/club-booking-backend/internal/auth"
	"github.com/pinehollow/club-booking-backend/internal/member"
	"github.com/pinehollow/club-booking-backend/internal/pkg/response"
)

type Handler struct {
	service    member.Service
	jwtManager *auth.JWTManager
}

func NewHandler(service member.Service, jwtManager *auth.JWTManager) *Handler {
	return &Handler{
		service:    service,
		jwtManager: jwtManager,
	}
}

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var dob *time.Time
	if req.DateOfBirth != "" {
		t, err := time.Parse("2006-01-02", req.DateOfBirth)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date_of_birth"})
			return
		}
		dob = &t
	}

	m, err := h.service.Register(c.Request.Context(), member.RegisterRequest{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		Tier:        req.Tier,
		DateOfBirth: dob,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewMemberResponse(m))
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	m, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	token, err := h.jwtManager.GenerateAccessToken(m.ID, m.Email, m.Tier)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		AccessToken: token,
		Member:      NewMemberResponse(m),
	})
}

func (h *Handler) Me(c *gin.Context) {
	m, err := h.service.GetByID(c.Request.Context(), auth.GetMemberID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewMemberResponse(m))
}

func (h *Handler) GuestPasses(c *gin.Context) {
	balance, err := h.service.GuestPassBalance(c.Request.Context(), auth.GetMemberEmail(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, GuestPassResponse{
		Total:     balance.Total,
		Used:      balance.Used,
		Remaining: balance.Remaining(),
	})
}

// SubmitConsent captures a guardian consent with an optional signed waiver
// image uploaded as multipart form data.
func (h *Handler) SubmitConsent(c *gin.Context) {
	guardianName := c.PostForm("guardian_name")
	if guardianName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "guardian_name is required"})
		return
	}

	req := member.ConsentRequest{
		MemberEmail:  auth.GetMemberEmail(c),
		GuardianName: guardianName,
	}

	if file, err := c.FormFile("waiver"); err == nil {
		f, err := file.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "could not read waiver upload"})
			return
		}
		defer f.Close()
		req.Waiver = f
	}

	consent, err := h.service.RecordConsent(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, ConsentResponse{
		ID:           consent.ID,
		GuardianName: consent.GuardianName,
		CapturedAt:   consent.CapturedAt,
	})
}
