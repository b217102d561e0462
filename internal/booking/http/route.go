package http

import (
	"github.com/gin-gonic/gin"

	"github.com/pinehollow/club-booking-backend/internal/booking"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	authed := g.Group("")
	authed.Use(authMiddleware)
	{
		authed.GET("/availability", h.Availability)
		authed.GET("/usage", h.Usage)
		authed.POST("/estimates", h.Estimate)

		bookings := authed.Group("/bookings")
		{
			bookings.POST("", h.Create)
			bookings.GET("", h.List)
			bookings.GET("/:id", h.Get)
			bookings.DELETE("/:id", h.Cancel)

			// Staff-side lifecycle actions; permission is enforced in the
			// service so a member hitting these gets a 403, not a 404.
			bookings.POST("/:id/approve", h.Action(booking.ActionApprove))
			bookings.POST("/:id/confirm", h.Action(booking.ActionConfirm))
			bookings.POST("/:id/attend", h.Action(booking.ActionAttend))
			bookings.POST("/:id/no-show", h.Action(booking.ActionNoShow))
			bookings.POST("/:id/decline", h.Action(booking.ActionDecline))
			bookings.POST("/:id/acknowledge-cancellation", h.Action(booking.ActionAckCancel))
		}

		invites := authed.Group("/participants")
		{
			invites.POST("/:id/accept", h.AcceptInvite)
			invites.POST("/:id/decline", h.DeclineInvite)
		}
	}
}
