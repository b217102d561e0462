package http

import (
	"time"

	"github.com/pinehollow/club-booking-backend/internal/pkg/request"
	"github.com/pinehollow/club-booking-backend/internal/resource"
)

// ListResourcesRequest defines query parameters for listing resources.
type ListResourcesRequest struct {
	request.ListParams
	Type string `form:"type" binding:"omitempty,oneof=simulator conference_room wellness_class"`
}

// ListClosuresRequest binds the date for which closures should be listed.
type ListClosuresRequest struct {
	Date string `form:"date" binding:"required,datetime=2006-01-02"`
}

// CreateResourceRequest defines the payload for registering a resource.
type CreateResourceRequest struct {
	Name      string `json:"name" binding:"required,max=120"`
	Type      string `json:"type" binding:"required,oneof=simulator conference_room wellness_class"`
	Capacity  int    `json:"capacity" binding:"omitempty,min=1"`
	OpenTime  string `json:"open_time" binding:"omitempty,datetime=15:04"`
	CloseTime string `json:"close_time" binding:"omitempty,datetime=15:04"`
}

type ResourceResponse struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Name      string    `json:"name"`
	Capacity  int       `json:"capacity"`
	OpenTime  string    `json:"open_time"`
	CloseTime string    `json:"close_time"`
	CreatedAt time.Time `json:"created_at"`
}

func NewResourceResponse(r *resource.Resource) ResourceResponse {
	return ResourceResponse{
		ID:        r.ID,
		Type:      string(r.Type),
		Name:      r.Name,
		Capacity:  r.Capacity,
		OpenTime:  r.OpenTime,
		CloseTime: r.CloseTime,
		CreatedAt: r.CreatedAt,
	}
}

type ClosureResponse struct {
	ID            string   `json:"id"`
	StartDate     string   `json:"start_date"`
	EndDate       string   `json:"end_date"`
	StartTime     *string  `json:"start_time,omitempty"`
	EndTime       *string  `json:"end_time,omitempty"`
	ResourceTypes []string `json:"resource_types"`
	Reason        string   `json:"reason"`
}

func NewClosureResponse(c *resource.Closure) ClosureResponse {
	types := make([]string, 0, len(c.ResourceTypes))
	for _, t := range c.ResourceTypes {
		types = append(types, string(t))
	}
	return ClosureResponse{
		ID:            c.ID,
		StartDate:     c.StartDate,
		EndDate:       c.EndDate,
		StartTime:     c.StartTime,
		EndTime:       c.EndTime,
		ResourceTypes: types,
		Reason:        c.Reason,
	}
}
