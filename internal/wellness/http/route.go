package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	classes := g.Group("/classes")
	classes.Use(authMiddleware)
	{
		classes.POST("", h.CreateClass)
		classes.GET("", h.ListClasses)
		classes.GET("/:id", h.GetClass)
		classes.POST("/:id/enroll", h.Enroll)
		classes.DELETE("/:id/enrollment", h.CancelEnrollment)
		classes.GET("/:id/roster", h.Roster)
	}

	enrollments := g.Group("/enrollments")
	enrollments.Use(authMiddleware)
	{
		enrollments.POST("/:id/promote", h.Promote)
	}
}
