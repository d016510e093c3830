package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"emberfront/internal/api/middleware"
	"emberfront/internal/notify"
	"emberfront/internal/utils/logger"
)

type NotifyHandler struct {
	service *notify.Service
	log     *logger.Logger
}

func NewNotifyHandler(service *notify.Service) *NotifyHandler {
	return &NotifyHandler{service: service, log: logger.New("NotifyHandler")}
}

// Current re-derives advisories from the session state and returns the
// visible slot plus the backlog depth.
// @Summary Current notification
// @Tags notifications
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /notifications [get]
func (h *NotifyHandler) Current(c echo.Context) error {
	deviceID := middleware.DeviceID(c)
	bundle := middleware.Stores(c)

	h.service.Refresh(c.Request().Context(), deviceID, bundle.Store.Identity())

	center := h.service.CenterFor(deviceID)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"current": center.Current(),
		"pending": center.Pending(),
	})
}

// Dismiss closes the visible notification; the backlog head, if any, takes
// the slot and comes back in the response.
// @Summary Dismiss the visible notification
// @Tags notifications
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /notifications/dismiss [post]
func (h *NotifyHandler) Dismiss(c echo.Context) error {
	deviceID := middleware.DeviceID(c)

	dismissed := h.service.Dismiss(c.Request().Context(), deviceID)
	center := h.service.CenterFor(deviceID)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"dismissed": dismissed,
		"current":   center.Current(),
		"pending":   center.Pending(),
	})
}
