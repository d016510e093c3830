package api

import (
	"net/http"

	apimiddleware "emberfront/internal/api/middleware"
	"emberfront/internal/routes"

	_ "emberfront/docs/swagger"

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

func (s *Server) registerRoutes() {
	s.echo.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "Emberfront session gateway")
	})
	// Health check
	// @Summary Health check
	// @Description Check if the server is running
	// @Accept json
	// @Produce json
	// @Success 200 {object} map[string]string "OK"
	// @Router /health [get]
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/swagger/*", echoSwagger.WrapHandler)

	// Every API route runs behind the device session middleware so that
	// each browsing device gets its own store bundle.
	sessionMW := apimiddleware.NewSessionMiddleware(s.sessions, s.config.Session)
	s.echo.Use(sessionMW.Middleware())

	routes.SetupAuthRoutes(s.echo, s.api, s.stepup)
	routes.SetupAdminRoutes(s.echo, s.api)
	routes.SetupStorefrontRoutes(s.echo, s.notifications, s.config)
}
