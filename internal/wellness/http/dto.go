package http

import (
	"github.com/pinehollow/club-booking-backend/internal/wellness"
)

type CreateClassRequest struct {
	Name            string `json:"name" binding:"required,max=120"`
	InstructorName  string `json:"instructor_name" binding:"max=120"`
	Date            string `json:"date" binding:"required,datetime=2006-01-02"`
	StartTime       string `json:"start_time" binding:"required,datetime=15:04"`
	EndTime         string `json:"end_time" binding:"required,datetime=15:04"`
	Capacity        *int   `json:"capacity" binding:"omitempty,min=1"`
	WaitlistEnabled bool   `json:"waitlist_enabled"`
}

type ListClassesQuery struct {
	Date     string `form:"date" binding:"omitempty,datetime=2006-01-02"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

type ClassResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	InstructorName  string `json:"instructor_name,omitempty"`
	Date            string `json:"date"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	Capacity        *int   `json:"capacity,omitempty"`
	WaitlistEnabled bool   `json:"waitlist_enabled"`
	SeatedCount     int    `json:"seated_count"`
	WaitlistCount   int    `json:"waitlist_count"`
	SeatsLeft       *int   `json:"seats_left,omitempty"`
}

func NewClassResponse(c *wellness.Class) ClassResponse {
	resp := ClassResponse{
		ID:              c.ID,
		Name:            c.Name,
		InstructorName:  c.InstructorName,
		Date:            c.Date,
		StartTime:       c.StartTime,
		EndTime:         c.EndTime,
		Capacity:        c.Capacity,
		WaitlistEnabled: c.WaitlistEnabled,
		SeatedCount:     c.SeatedCount,
		WaitlistCount:   c.WaitlistCount,
	}
	if c.Capacity != nil {
		left := *c.Capacity - c.SeatedCount
		if left < 0 {
			left = 0
		}
		resp.SeatsLeft = &left
	}
	return resp
}

type EnrollmentResponse struct {
	ID          string `json:"id"`
	ClassID     string `json:"class_id"`
	MemberEmail string `json:"member_email"`
	Status      string `json:"status"`
	Position    int    `json:"waitlist_position,omitempty"`
}

func NewEnrollmentResponse(e *wellness.Enrollment) EnrollmentResponse {
	return EnrollmentResponse{
		ID:          e.ID,
		ClassID:     e.ClassID,
		MemberEmail: e.MemberEmail,
		Status:      string(e.Status),
		Position:    e.Position,
	}
}
