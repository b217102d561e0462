package http

import (
	"time"

	"github.com/pinehollow/club-booking-backend/internal/member"
)

type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	DisplayName string `json:"display_name"`
	Tier        string `json:"tier"`
	DateOfBirth string `json:"date_of_birth" binding:"omitempty,datetime=2006-01-02"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	AccessToken string         `json:"access_token"`
	Member      MemberResponse `json:"member"`
}

type MemberResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName *string   `json:"display_name,omitempty"`
	Tier        string    `json:"tier"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewMemberResponse(m *member.Member) MemberResponse {
	return MemberResponse{
		ID:          m.ID,
		Email:       m.Email,
		DisplayName: m.DisplayName,
		Tier:        m.Tier,
		CreatedAt:   m.CreatedAt,
	}
}

type GuestPassResponse struct {
	Total     int `json:"passes_total"`
	Used      int `json:"passes_used"`
	Remaining int `json:"passes_remaining"`
}

type ConsentResponse struct {
	ID           string    `json:"id"`
	GuardianName string    `json:"guardian_name"`
	CapturedAt   time.Time `json:"captured_at"`
}
