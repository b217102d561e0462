package resource

import (
	"net/http"
	"time"

	"github.com/pinehollow/club-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound    = apperror.New(http.StatusNotFound, "resource not found")
	ErrEmptyName   = apperror.New(http.StatusBadRequest, "name cannot be empty")
	ErrInvalidType = apperror.New(http.StatusBadRequest, "invalid resource type")
)

// Type classifies a bookable resource. Bookings carry this value explicitly;
// it is never inferred from display names or notes.
type Type string

const (
	TypeSimulator     Type = "simulator"
	TypeConfRoom      Type = "conference_room"
	TypeWellnessClass Type = "wellness_class"
)

// ValidTypes lists the accepted resource type values.
var ValidTypes = []Type{TypeSimulator, TypeConfRoom, TypeWellnessClass}

// Resource represents a bookable unit (e.g., Bay 3, Boardroom).
// Catalog entries are immutable with respect to bookings.
type Resource struct {
	ID        string
	Type      Type
	Name      string
	Capacity  int
	OpenTime  string // "HH:MM", local club time
	CloseTime string // "HH:MM"
	CreatedAt time.Time
}

// Closure is an advisory notice covering a date range and optionally a time
// range for some resource types. Closures are banners only; they never feed
// slot occupancy.
type Closure struct {
	ID            string
	StartDate     string // "YYYY-MM-DD"
	EndDate       string
	StartTime     *string // "HH:MM", nil = all day
	EndTime       *string
	ResourceTypes []Type
	Reason        string
	CreatedAt     time.Time
}

// Filter defines parameters for listing resources.
type Filter struct {
	Type     string
	Page     int
	PageSize int
}
