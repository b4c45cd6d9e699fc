package main

import (
	"github.com/gin-gonic/gin"

	"github.com/labebook/backend/internal/handlers"
	"github.com/labebook/backend/internal/middleware"
	"github.com/labebook/backend/internal/models"
	"github.com/labebook/backend/pkg/logger"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	// Middleware
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS())

	// Rate limiter for auth routes, bounds from config
	authLimiter := middleware.NewRateLimiter(svc.cfg.RateLimit.AuthRPS, svc.cfg.RateLimit.AuthBurst)

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "service": "labebook"})
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public, rate limited)
		auth := api.Group("/auth", authLimiter.Middleware())
		{
			auth.POST("/login", svc.authHandler.Login)
			auth.POST("/refresh", svc.authHandler.Refresh)
			auth.GET("/config", svc.authHandler.GetAuthConfig)
		}

		// Protected routes. TeamSession loads the caller's active team
		// selection, so every handler below sees a session handle.
		protected := api.Group("")
		protected.Use(middleware.AuthRequired(), middleware.TeamSession(svc.sessions))
		{
			// Auth
			protected.GET("/auth/me", svc.authHandler.GetCurrentUser)
			protected.POST("/auth/logout", svc.authHandler.Logout)
			protected.POST("/auth/change-password", svc.authHandler.ChangePassword)

			// Users (share pickers, invitation forms)
			userHandler := handlers.NewUserHandler(models.GetDB())
			protected.GET("/users", userHandler.List)
			protected.GET("/users/:id", userHandler.GetByID)

			// Teams
			teamHandler := handlers.NewTeamHandler(models.GetDB(), svc.sessions)
			protected.GET("/teams", teamHandler.List)
			protected.GET("/teams/:id", teamHandler.GetByID)
			protected.POST("/teams", teamHandler.Create)
			protected.PUT("/teams/:id", teamHandler.Rename)
			protected.DELETE("/teams/:id", teamHandler.Delete)
			protected.POST("/teams/switch", teamHandler.Switch)
			protected.GET("/teams/:id/members", teamHandler.ListMembers)
			protected.DELETE("/teams/:id/members/:user_id", teamHandler.RemoveMember)

			// Invitations
			invitationHandler := handlers.NewInvitationHandler(models.GetDB(), svc.taskQueue)
			protected.POST("/teams/:id/invitations", invitationHandler.Invite)
			protected.GET("/invitations/pending", invitationHandler.ListPending)
			protected.POST("/invitations/:id/accept", invitationHandler.Accept)
			protected.POST("/invitations/:id/decline", invitationHandler.Decline)
			protected.DELETE("/invitations/:id", invitationHandler.Cancel)
			protected.POST("/invitations/:id/resend", invitationHandler.Resend)

			// Pipelines
			pipelineHandler := handlers.NewPipelineHandler(models.GetDB())
			protected.GET("/pipelines", pipelineHandler.List)
			protected.GET("/pipelines/:id", pipelineHandler.GetByID)
			protected.POST("/pipelines", pipelineHandler.Create)
			protected.PUT("/pipelines/:id", pipelineHandler.Update)
			protected.DELETE("/pipelines/:id", pipelineHandler.Delete)
			protected.PUT("/pipelines/:id/share", pipelineHandler.Share)

			// Pipeline folders
			folderHandler := handlers.NewPipelineFolderHandler(models.GetDB())
			protected.GET("/folders", folderHandler.List)
			protected.GET("/folders/:id", folderHandler.GetByID)
			protected.POST("/folders", folderHandler.Create)
			protected.PUT("/folders/:id", folderHandler.Update)
			protected.DELETE("/folders/:id", folderHandler.Delete)
			protected.PUT("/folders/:id/permissions", folderHandler.SetPermissions)

			// Project folders
			projectFolderHandler := handlers.NewProjectFolderHandler(models.GetDB())
			protected.GET("/project-folders", projectFolderHandler.List)
			protected.GET("/project-folders/:id", projectFolderHandler.GetByID)
			protected.POST("/project-folders", projectFolderHandler.Create)
			protected.PUT("/project-folders/:id", projectFolderHandler.Update)
			protected.DELETE("/project-folders/:id", projectFolderHandler.Delete)
			protected.PUT("/project-folders/:id/permissions", projectFolderHandler.SetPermissions)

			// Projects
			projectHandler := handlers.NewProjectHandler(models.GetDB())
			protected.GET("/projects", projectHandler.List)
			protected.GET("/projects/:id", projectHandler.GetByID)
			protected.POST("/projects", projectHandler.Create)
			protected.PUT("/projects/:id", projectHandler.Update)
			protected.DELETE("/projects/:id", projectHandler.Delete)

			// Method catalog (read only)
			methodHandler := handlers.NewMethodHandler(models.GetDB())
			protected.GET("/methods", methodHandler.List)
			protected.GET("/methods/:id", methodHandler.GetByID)

			// System Logs (PI only, enforced in the handler)
			systemLogHandler := handlers.NewSystemLogHandler(models.GetDB())
			protected.GET("/system-logs", systemLogHandler.List)
			protected.GET("/system-logs/retention", systemLogHandler.GetRetention)
			protected.PUT("/system-logs/retention", systemLogHandler.SetRetention)
			protected.POST("/system-logs/cleanup", systemLogHandler.Cleanup)
		}
	}
}
