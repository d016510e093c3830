package routes

import (
	"github.com/labstack/echo/v4"

	"emberfront/internal/api/middleware"
	"emberfront/internal/authz"
	"emberfront/internal/handlers"
	"emberfront/internal/shopapi"
)

func SetupAdminRoutes(e *echo.Echo, api *shopapi.Client) {
	adminHandler := handlers.NewAdminHandler(api)

	base := e.Group("/api/v1")
	admin := base.Group("/admin")

	// Public admin routes (no admin session required)
	admin.POST("/login", adminHandler.Login)

	// Protected admin routes (require a restored admin session)
	protected := admin.Group("")
	protected.Use(middleware.RequireAdminSession())

	protected.POST("/logout", adminHandler.Logout)
	protected.GET("/me", adminHandler.Me)
	protected.GET("/stats", adminHandler.Stats)

	// Customer management (requires the users permission)
	users := protected.Group("/users")
	users.Use(middleware.RequireAdminPermission(authz.ResourceUsers, authz.ActionManage))
	users.GET("", adminHandler.Users)
	users.PUT("/:id/:section", adminHandler.UpdateUser)

	// Platform administrator management (super admin only)
	admins := protected.Group("/admins")
	admins.Use(middleware.RequireSuperAdmin())
	admins.GET("", adminHandler.Admins)
	admins.POST("/invite", adminHandler.Invite)
	admins.PUT("/:id", adminHandler.UpdateAdmin)
	admins.DELETE("/:id", adminHandler.DeleteAdmin)
}
