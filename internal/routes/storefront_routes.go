package routes

import (
	"github.com/labstack/echo/v4"

	"emberfront/internal/api/middleware"
	"emberfront/internal/config"
	"emberfront/internal/guard"
	"emberfront/internal/handlers"
	"emberfront/internal/notify"
)

func SetupStorefrontRoutes(e *echo.Echo, notifications *notify.Service, cfg *config.Config) {
	dashboardHandler := handlers.NewDashboardHandler()
	notifyHandler := handlers.NewNotifyHandler(notifications)

	base := e.Group("/api/v1")
	wait := cfg.Session.CheckWait

	// Account area: any authenticated customer
	account := base.Group("/account")
	account.Use(middleware.Guard(guard.Requirements{}, wait))
	account.GET("/profile", dashboardHandler.Profile)

	// Dashboard: elevated accounts only
	dashboard := base.Group("/dashboard")
	dashboard.Use(middleware.Guard(guard.Requirements{RequireAdmin: true}, wait))
	dashboard.GET("", dashboardHandler.Overview)

	// Platform area inside the dashboard, super admins only
	platform := base.Group("/dashboard/platform")
	platform.Use(middleware.Guard(guard.Requirements{RequireAdmin: true, RequireSuperAdmin: true}, wait))
	platform.GET("", dashboardHandler.Platform)

	advisories := base.Group("/notifications")
	advisories.GET("", notifyHandler.Current)
	advisories.POST("/dismiss", notifyHandler.Dismiss)
}
