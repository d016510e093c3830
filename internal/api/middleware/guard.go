package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"emberfront/internal/guard"
)

// Guard maps guard decisions onto HTTP. The client-side "loading" state
// becomes a bounded wait on the initial session check; a check that cannot
// finish in time fails the request rather than guessing.
func Guard(req guard.Requirements, checkWait time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			bundle := Stores(c)
			if bundle == nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "session stores unavailable")
			}
			store := bundle.Store

			decision := guard.Decide(store.State(), store.Identity(), req)
			if decision.Outcome == guard.OutcomeLoading {
				ctx, cancel := context.WithTimeout(c.Request().Context(), checkWait)
				err := store.Ready(ctx)
				cancel()
				if err != nil {
					return echo.NewHTTPError(http.StatusServiceUnavailable, "session check in progress")
				}
				decision = guard.Decide(store.State(), store.Identity(), req)
			}

			switch decision.Outcome {
			case guard.OutcomeRedirect:
				return c.Redirect(http.StatusFound, "/")
			case guard.OutcomeDenied:
				return echo.NewHTTPError(http.StatusForbidden, decision.Message)
			case guard.OutcomeAllow:
				c.Set(ctxKeyIdentity, store.Identity())
				return next(c)
			default:
				return echo.NewHTTPError(http.StatusServiceUnavailable, "session check in progress")
			}
		}
	}
}
