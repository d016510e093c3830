package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"emberfront/internal/api/middleware"
	"emberfront/internal/authz"
	"emberfront/internal/utils/logger"
)

// DashboardHandler serves the guarded areas. By the time any of these run,
// the route guard has already placed a passing identity in context; the
// handlers only describe what that identity can do.
type DashboardHandler struct {
	log *logger.Logger
}

func NewDashboardHandler() *DashboardHandler {
	return &DashboardHandler{log: logger.New("DashboardHandler")}
}

// Profile returns the signed-in identity.
// @Summary Account profile
// @Tags account
// @Produce json
// @Success 200 {object} models.Identity
// @Router /account/profile [get]
func (h *DashboardHandler) Profile(c echo.Context) error {
	return c.JSON(http.StatusOK, middleware.Identity(c))
}

// Overview returns the identity together with its tier's capability table.
// @Summary Dashboard overview
// @Tags dashboard
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /dashboard [get]
func (h *DashboardHandler) Overview(c echo.Context) error {
	identity := middleware.Identity(c)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"identity":     identity,
		"capabilities": authz.TierTemplate(identity.Tier),
	})
}

// Platform is the super-admin-only area.
// @Summary Platform administration
// @Tags dashboard
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /dashboard/platform [get]
func (h *DashboardHandler) Platform(c echo.Context) error {
	identity := middleware.Identity(c)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"identity":     identity,
		"capabilities": authz.TierTemplate(identity.Tier),
		"area":         "platform",
	})
}
