package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	authGroup := g.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
	}

	members := g.Group("/members")
	members.Use(authMiddleware)
	{
		members.GET("/me", h.Me)
		members.GET("/me/guest-passes", h.GuestPasses)
		members.POST("/me/consent", h.SubmitConsent)
	}
}
