package v1

import (
	"net/http"

	"go_releasehub/api/v1/auth"
	"go_releasehub/api/v1/middleware"
	"go_releasehub/api/v1/preferences"
	"go_releasehub/api/v1/releases"
	internalauth "go_releasehub/internal/auth"
	"go_releasehub/internal/httpx"
	"go_releasehub/internal/model"
	"go_releasehub/internal/release"
	"go_releasehub/internal/ws"

	"github.com/gin-gonic/gin"
)

// Deps are the services the API is built from
type Deps struct {
	Users    auth.UserFinder
	Tokens   *internalauth.TokenManager
	Releases *release.Service
	Registry *release.Registry
	Replay   ws.Replayer
	Layouts  preferences.LayoutStore
	// Socket is mounted at /socket.io/ when set
	Socket http.Handler
}

// SetupRouter sets up the API v1 routes
func SetupRouter(r *gin.Engine, deps Deps) {
	if deps.Socket != nil {
		r.GET("/socket.io/*any", gin.WrapH(deps.Socket))
		r.POST("/socket.io/*any", gin.WrapH(deps.Socket))
	}

	v1 := r.Group("/api/v1")
	{
		v1.GET("/ping", pingHandler)

		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/login", auth.LoginHandler(deps.Users, deps.Tokens))
		}

		protected := v1.Group("")
		protected.Use(middleware.AuthRequired(deps.Tokens))
		{
			protected.GET("/me", meHandler)

			canEdit := middleware.RequireRole(model.CanEdit, "editor role required")
			canPublish := middleware.RequireRole(model.CanPublish, "publisher role required")

			rh := releases.NewHandler(deps.Releases, deps.Registry, deps.Replay)
			rg := protected.Group("/releases")
			{
				rg.GET("", rh.List)
				rg.POST("", canEdit, rh.Create)
				rg.GET("/:id", rh.Get)
				rg.PUT("/:id", canEdit, rh.Update)
				rg.DELETE("/:id", canEdit, rh.Delete)
				rg.POST("/:id/entities/add", canEdit, rh.AddEntities)
				rg.POST("/:id/entities/remove", canEdit, rh.RemoveEntities)

				rg.GET("/:id/state", rh.State)
				rg.PUT("/:id/tab", rh.SetTab)
				rg.POST("/:id/validate", canPublish, rh.Validate)
				rg.POST("/:id/publish", canPublish, rh.Publish)

				rg.GET("/:id/jobs", rh.Jobs)
				rg.POST("/:id/jobs", canPublish, rh.Schedule)
				rg.POST("/:id/jobs/:jobId/cancel", canPublish, rh.CancelJob)

				rg.GET("/:id/notifications", rh.Notifications)
			}

			ph := preferences.NewHandler(deps.Layouts)
			pg := protected.Group("/preferences")
			{
				pg.GET("/layout", ph.GetLayout)
				pg.PUT("/layout", ph.SetLayout)
			}
		}
	}
}

// pingHandler handles the ping request using unified response
func pingHandler(c *gin.Context) {
	httpx.OK(c, gin.H{
		"pong": true,
	})
}

// meHandler returns current user information
func meHandler(c *gin.Context) {
	httpx.OK(c, gin.H{
		"uid":      c.GetInt("uid"),
		"username": c.GetString("username"),
		"role":     c.GetString("role"),
	})
}
