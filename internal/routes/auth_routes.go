package routes

import (
	"github.com/labstack/echo/v4"

	"emberfront/internal/handlers"
	"emberfront/internal/shopapi"
	"emberfront/internal/stepup"
)

func SetupAuthRoutes(e *echo.Echo, api *shopapi.Client, registry *stepup.Registry) {
	authHandler := handlers.NewAuthHandler(api)
	corporateHandler := handlers.NewCorporateHandler(registry)

	base := e.Group("/api/v1")

	// Public auth routes group
	auth := base.Group("/auth")

	auth.POST("/signup", authHandler.Signup)
	auth.POST("/login", authHandler.Login)
	auth.POST("/logout", authHandler.Logout)
	auth.GET("/me", authHandler.Me)

	auth.POST("/forgot-password", authHandler.ForgotPassword)
	auth.POST("/reset-password", authHandler.ResetPassword)
	auth.GET("/verify-reset-token/:token", authHandler.VerifyResetToken)

	// Corporate step-up re-authentication. Every challenge starts from a
	// fresh session id, so a page reload always re-challenges.
	corporate := base.Group("/corporate")
	corporate.POST("/challenge", corporateHandler.Challenge)
	corporate.POST("/login", corporateHandler.Login)
	corporate.GET("/status", corporateHandler.Status)
}
