package app

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pinehollow/club-booking-backend/internal/api"
	"github.com/pinehollow/club-booking-backend/internal/auth"
	"github.com/pinehollow/club-booking-backend/internal/availability"
	"github.com/pinehollow/club-booking-backend/internal/booking"
	"github.com/pinehollow/club-booking-backend/internal/events"
	"github.com/pinehollow/club-booking-backend/internal/member"
	"github.com/pinehollow/club-booking-backend/internal/pkg/storage"
	"github.com/pinehollow/club-booking-backend/internal/resource"
	"github.com/pinehollow/club-booking-backend/internal/tier"
	"github.com/pinehollow/club-booking-backend/internal/wellness"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	DBPool       *pgxpool.Pool
	JWTSecret    string
	JWTTTL       time.Duration
	BcryptCost   int

	WaiverStorageDir       string
	RateLimitPerSecond     int
	RateLimitBurst         int
	SlotGranularityMinutes int
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router      *gin.Engine
	JWTManager  *auth.JWTManager
	Broadcaster *events.Broadcaster
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) (*Container, error) {
	passwordHasher := auth.NewBcryptPasswordHasherWithCost(cfg.BcryptCost)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)
	broadcaster := events.NewBroadcaster()

	waiverStorage, err := storage.NewLocalStorage(cfg.WaiverStorageDir)
	if err != nil {
		return nil, err
	}

	// Member module
	memberRepo := member.NewPgxRepository(cfg.DBPool)
	memberService := member.NewService(memberRepo, passwordHasher, waiverStorage)

	// Tier module
	tierRepo := tier.NewPgxRepository(cfg.DBPool)
	tierResolver := tier.NewResolver(tierRepo)

	// Resource module
	resourceRepo := resource.NewPgxRepository(cfg.DBPool)
	resourceService := resource.NewService(resourceRepo)

	// Availability module
	slotSource := availability.NewPgxSlotSource(cfg.DBPool)
	availabilityService := availability.NewService(resourceService, slotSource)

	// Booking module
	bookingRepo := booking.NewPgxRepository(cfg.DBPool)
	bookingService := booking.NewService(bookingRepo, resourceService, tierResolver, availabilityService, memberService, broadcaster)

	// Wellness module
	wellnessRepo := wellness.NewPgxRepository(cfg.DBPool)
	wellnessService := wellness.NewService(wellnessRepo, tierResolver, broadcaster)

	router := api.NewRouter(api.Config{
		IsProduction:           cfg.IsProduction,
		ProdOrigins:            cfg.ProdOrigins,
		MemberService:          memberService,
		ResourceService:        resourceService,
		TierResolver:           tierResolver,
		AvailabilityService:    availabilityService,
		BookingService:         bookingService,
		WellnessService:        wellnessService,
		Broadcaster:            broadcaster,
		JWTManager:             jwtManager,
		RateLimiter:            api.NewRateLimiter(cfg.RateLimitPerSecond, cfg.RateLimitBurst),
		SlotGranularityMinutes: cfg.SlotGranularityMinutes,
	})

	return &Container{
		Router:      router,
		JWTManager:  jwtManager,
		Broadcaster: broadcaster,
	}, nil
}
