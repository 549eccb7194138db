package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/volunteer-bridge/backend/internal/applications"
	"github.com/volunteer-bridge/backend/internal/attendance"
	"github.com/volunteer-bridge/backend/internal/auth"
	"github.com/volunteer-bridge/backend/internal/events"
	"github.com/volunteer-bridge/backend/internal/hours"
	"github.com/volunteer-bridge/backend/internal/middleware"
	"github.com/volunteer-bridge/backend/internal/models"
	"github.com/volunteer-bridge/backend/internal/notifications"
	"github.com/volunteer-bridge/backend/internal/opportunities"
	"github.com/volunteer-bridge/backend/internal/users"
	"github.com/volunteer-bridge/backend/pkg/redis"
	"github.com/volunteer-bridge/backend/pkg/response"
)

type routeDeps struct {
	jwt           *auth.JWTService
	limiter       *middleware.RateLimiter
	health        gin.HandlerFunc
	auth          *auth.Handler
	profile       *users.Handler
	opportunities *opportunities.Handler
	applications  *applications.Handler
	hours         *hours.Handler
	events        *events.Handler
	attendance    *attendance.Handler
	notifications *notifications.Handler
	ws            gin.HandlerFunc
}

func registerRoutes(router *gin.Engine, d routeDeps) {
	volunteer := middleware.RequireRole(models.RoleVolunteer)
	organization := middleware.RequireRole(models.RoleOrganization)

	router.GET("/health", d.health)

	// WebSocket (token in query; no Authorization header required)
	router.GET("/ws/notifications", d.ws)

	authGroup := router.Group("/auth", d.limiter.Limit())
	{
		authGroup.POST("/register", d.auth.Register)
		authGroup.POST("/login", d.auth.Login)
		authGroup.POST("/refresh", d.auth.Refresh)
	}

	// Protected API (JWT required)
	api := router.Group("")
	api.Use(middleware.JWT(d.jwt), d.limiter.Limit())
	{
		api.GET("/profile", d.profile.GetProfile)
		api.PUT("/profile", d.profile.UpdateProfile)

		// Opportunities
		api.GET("/opportunities", d.opportunities.List)
		api.POST("/opportunities", organization, d.opportunities.Create)
		api.GET("/opportunities/organization", organization, d.opportunities.ListMine)
		api.GET("/opportunities/recommended", volunteer, d.opportunities.Recommended)
		api.GET("/opportunities/:id", d.opportunities.Get)
		api.PUT("/opportunities/:id", organization, d.opportunities.Update)
		api.DELETE("/opportunities/:id", organization, d.opportunities.Delete)
		api.PATCH("/opportunities/:id/status", organization, d.opportunities.SetStatus)
		api.GET("/opportunities/:id/matches", organization, d.opportunities.Matches)

		// Applications
		api.POST("/opportunities/:id/apply", volunteer, d.applications.Apply)
		api.GET("/opportunities/:id/applications", organization, d.applications.ListByOpportunity)
		api.GET("/applications/volunteer", volunteer, d.applications.ListMine)
		api.GET("/applications/organization", organization, d.applications.ListOrganization)
		api.PATCH("/applications/:id", organization, d.applications.UpdateStatus)

		// Volunteer hours
		api.POST("/volunteer-hours", volunteer, d.hours.Log)
		api.GET("/volunteer-hours", d.hours.List)
		api.POST("/volunteer-hours/:id/verify", organization, d.hours.Verify)
		api.POST("/volunteer-hours/:id/unverify", organization, d.hours.Unverify)
		api.POST("/opportunities/:id/hours/export", organization, d.hours.Export)

		// Events and attendance
		api.GET("/events", d.events.List)
		api.POST("/events", d.events.Create)
		api.GET("/events/:id", d.events.Get)
		api.PUT("/events/:id", d.events.Update)
		api.DELETE("/events/:id", d.events.Delete)
		api.POST("/events/:id/rsvp", d.attendance.RSVP)
		api.POST("/events/:id/attend", d.attendance.RSVP)
		api.DELETE("/events/:id/rsvp", d.attendance.Cancel)
		api.GET("/events/:id/rsvps", d.attendance.ListByEvent)
		api.GET("/rsvps/mine", d.attendance.ListMine)

		// Notifications
		api.GET("/notifications", d.notifications.List)
		api.POST("/notifications/read-all", d.notifications.MarkAllRead)
		api.POST("/notifications/:id/read", d.notifications.MarkRead)
	}
}

func healthCheck(pool *pgxpool.Pool, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			response.ServiceUnavailable(c, "database: "+err.Error())
			return
		}
		if err := rdb.Healthy(ctx); err != nil {
			response.ServiceUnavailable(c, "redis: "+err.Error())
			return
		}
		response.OK(c, gin.H{"status": "ok"})
	}
}
