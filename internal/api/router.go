package api

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/pinehollow/club-booking-backend/internal/auth"
	"github.com/pinehollow/club-booking-backend/internal/availability"
	"github.com/pinehollow/club-booking-backend/internal/booking"
	bookingHttp "github.com/pinehollow/club-booking-backend/internal/booking/http"
	"github.com/pinehollow/club-booking-backend/internal/events"
	"github.com/pinehollow/club-booking-backend/internal/member"
	memberHttp "github.com/pinehollow/club-booking-backend/internal/member/http"
	"github.com/pinehollow/club-booking-backend/internal/resource"
	resourceHttp "github.com/pinehollow/club-booking-backend/internal/resource/http"
	"github.com/pinehollow/club-booking-backend/internal/tier"
	"github.com/pinehollow/club-booking-backend/internal/wellness"
	wellnessHttp "github.com/pinehollow/club-booking-backend/internal/wellness/http"
)

// Config holds the services and settings the router assembles.
type Config struct {
	IsProduction bool
	ProdOrigins  string

	MemberService       member.Service
	ResourceService     resource.Service
	TierResolver        tier.Resolver
	AvailabilityService availability.Service
	BookingService      booking.Service
	WellnessService     wellness.Service
	Broadcaster         *events.Broadcaster

	JWTManager  *auth.JWTManager
	RateLimiter *RateLimiter

	// SlotGranularityMinutes is the default availability slot duration.
	SlotGranularityMinutes int
}

// NewRouter assembles middleware (logger, recovery, CORS, rate limiting)
// and registers every module's routes under /v1.
func NewRouter(cfg Config) *gin.Engine {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if cfg.IsProduction {
		corsConfig.AllowOrigins = strings.Split(cfg.ProdOrigins, ",")
	} else {
		corsConfig.AllowOrigins = []string{"http://localhost:3000", "http://localhost:8081"}
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Middleware())
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authMiddleware := auth.AuthRequired(cfg.JWTManager)

	memberHandler := memberHttp.NewHandler(cfg.MemberService, cfg.JWTManager)
	resourceHandler := resourceHttp.NewHandler(cfg.ResourceService, cfg.MemberService)
	bookingHandler := bookingHttp.NewHandler(cfg.BookingService, cfg.AvailabilityService, cfg.TierResolver, cfg.MemberService, cfg.SlotGranularityMinutes)
	wellnessHandler := wellnessHttp.NewHandler(cfg.WellnessService, cfg.MemberService)

	v1 := r.Group("/v1")
	{
		memberHttp.RegisterRoutes(v1, memberHandler, authMiddleware)
		resourceHttp.RegisterRoutes(v1, resourceHandler, authMiddleware)
		bookingHttp.RegisterRoutes(v1, bookingHandler, authMiddleware)
		wellnessHttp.RegisterRoutes(v1, wellnessHandler, authMiddleware)

		// Live booking updates for open calendar views.
		v1.GET("/ws/bookings", authMiddleware, events.WSHandler(cfg.Broadcaster))
	}

	return r
}
