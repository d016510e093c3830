package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"emberfront/internal/models"
	"emberfront/internal/session"
)

// adminReadyWait bounds how long a gated request waits for the one-time
// admin session restore before giving up with a retryable status.
const adminReadyWait = 2 * time.Second

// requireAdmin resolves the device's admin session, waiting for the restore
// from the persisted token to finish first. Without the wait, the request
// that triggers the restore would be judged against an empty in-memory
// identity and bounced although a valid token is persisted.
func requireAdmin(c echo.Context) (*session.Bundle, error) {
	bundle := Stores(c)
	if bundle == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Admin session required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), adminReadyWait)
	defer cancel()
	if err := bundle.Admin.Ready(ctx); err != nil {
		return nil, echo.NewHTTPError(http.StatusServiceUnavailable, "Session restore in progress, retry shortly")
	}

	if !bundle.Admin.IsAuthenticated(c.Request().Context()) {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Admin session required")
	}
	return bundle, nil
}

// RequireAdminSession gates a route on the parallel admin session: both the
// in-memory identity and the persisted token must be present.
func RequireAdminSession() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, err := requireAdmin(c); err != nil {
				return err
			}
			return next(c)
		}
	}
}

// RequireAdminPermission checks the admin identity's attached permission set
// for (resource, action). Fail-closed: no session, no entry, no action all
// deny.
func RequireAdminPermission(resource, action string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			bundle, err := requireAdmin(c)
			if err != nil {
				return err
			}
			if !bundle.Admin.HasPermission(resource, action) {
				return echo.NewHTTPError(http.StatusForbidden, "insufficient permissions")
			}
			return next(c)
		}
	}
}

// RequireSuperAdmin is the strict conjunctive gate for admin management.
func RequireSuperAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			bundle, err := requireAdmin(c)
			if err != nil {
				return err
			}
			if !bundle.Admin.IsSuperAdmin() {
				return echo.NewHTTPError(http.StatusForbidden, "Super Admin Access Required")
			}
			return next(c)
		}
	}
}

// Identity returns the customer identity placed in context by the guard.
func Identity(c echo.Context) *models.Identity {
	if identity, ok := c.Get(ctxKeyIdentity).(*models.Identity); ok {
		return identity
	}
	return nil
}
