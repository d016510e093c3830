package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"emberfront/internal/config"
	"emberfront/internal/session"
	console "emberfront/internal/utils/logger"
)

var log = console.New("session_middleware")

const (
	ctxKeyDeviceID = "deviceID"
	ctxKeyBundle   = "sessionBundle"
	ctxKeyIdentity = "identity"
)

// SessionMiddleware binds every request to its device's session stores. The
// device cookie is the browsing-session handle; a visitor without one gets a
// fresh id and therefore fresh (anonymous) stores.
type SessionMiddleware struct {
	manager *session.Manager
	cfg     config.SessionConfig
}

func NewSessionMiddleware(manager *session.Manager, cfg config.SessionConfig) *SessionMiddleware {
	return &SessionMiddleware{manager: manager, cfg: cfg}
}

func (m *SessionMiddleware) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			deviceID := m.deviceID(c)

			bundle := m.manager.For(deviceID)
			bundle.Store.EnsureChecked()
			bundle.Admin.EnsureRestored()

			c.Set(ctxKeyDeviceID, deviceID)
			c.Set(ctxKeyBundle, bundle)

			return next(c)
		}
	}
}

func (m *SessionMiddleware) deviceID(c echo.Context) string {
	cookie, err := c.Cookie(m.cfg.DeviceCookieName)
	if err == nil && cookie.Value != "" {
		return cookie.Value
	}

	id := uuid.New().String()
	c.SetCookie(&http.Cookie{
		Name:     m.cfg.DeviceCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(365 * 24 * time.Hour),
	})
	log.Debug("issued device id %s", id)
	return id
}

// DeviceID Helper functions to get values from context
func DeviceID(c echo.Context) string {
	if id, ok := c.Get(ctxKeyDeviceID).(string); ok {
		return id
	}
	return ""
}

func Stores(c echo.Context) *session.Bundle {
	if bundle, ok := c.Get(ctxKeyBundle).(*session.Bundle); ok {
		return bundle
	}
	return nil
}
