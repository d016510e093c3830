package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"emberfront/internal/shopapi"
	"emberfront/internal/stepup"
	"emberfront/internal/utils/logger"
)

const stepUpCookie = "ef_stepup"

// CorporateHandler runs the step-up re-authentication flow. The challenge
// cookie is session-scoped and the grants live only in memory, so a reload
// or restart always re-challenges regardless of the main session.
type CorporateHandler struct {
	registry *stepup.Registry
	log      *logger.Logger
}

func NewCorporateHandler(registry *stepup.Registry) *CorporateHandler {
	return &CorporateHandler{registry: registry, log: logger.New("CorporateHandler")}
}

type CorporateLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Challenge starts (or restarts) the step-up flow: a fresh challenge id is
// issued and any previous grant for this browser is orphaned.
// @Summary Start corporate step-up
// @Description Issue a fresh step-up challenge; any prior grant is dropped
// @Tags corporate
// @Produce json
// @Success 200 {object} map[string]string
// @Router /corporate/challenge [post]
func (h *CorporateHandler) Challenge(c echo.Context) error {
	if cookie, err := c.Cookie(stepUpCookie); err == nil && cookie.Value != "" {
		h.registry.Revoke(cookie.Value)
	}

	sid := uuid.New().String()
	// No Expires: the cookie dies with the browser session.
	c.SetCookie(&http.Cookie{
		Name:     stepUpCookie,
		Value:    sid,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	return c.JSON(http.StatusOK, map[string]string{"message": "Corporate sign in required"})
}

// Login submits fresh credentials for the step-up challenge. An identity
// that authenticates but lacks corporate access gets an explicit access
// denial, never a "wrong password".
// @Summary Submit corporate step-up credentials
// @Tags corporate
// @Accept json
// @Produce json
// @Param request body CorporateLoginRequest true "Corporate credentials"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string "Invalid credentials"
// @Failure 403 {object} map[string]string "Valid credentials, no corporate access"
// @Router /corporate/login [post]
func (h *CorporateHandler) Login(c echo.Context) error {
	var req CorporateLoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	cookie, err := c.Cookie(stepUpCookie)
	if err != nil || cookie.Value == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "No step-up challenge in progress"})
	}

	identity, err := h.registry.Submit(c.Request().Context(), cookie.Value, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, stepup.ErrNotAuthorized):
			return c.JSON(http.StatusForbidden, map[string]string{"error": "Access Denied: your account does not have corporate access"})
		case errors.Is(err, shopapi.ErrBadCredentials), errors.Is(err, shopapi.ErrUnauthorized):
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
		default:
			return c.JSON(http.StatusBadGateway, map[string]string{"error": "Service unavailable, please try again"})
		}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":  "Corporate access granted",
		"identity": identity,
	})
}

// Status reports whether this browsing session holds a live grant.
// @Summary Step-up status
// @Tags corporate
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /corporate/status [get]
func (h *CorporateHandler) Status(c echo.Context) error {
	cookie, err := c.Cookie(stepUpCookie)
	if err != nil || cookie.Value == "" {
		return c.JSON(http.StatusOK, map[string]interface{}{"authenticated": false})
	}

	identity, ok := h.registry.Status(cookie.Value)
	if !ok {
		return c.JSON(http.StatusOK, map[string]interface{}{"authenticated": false})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"authenticated": true,
		"identity":      identity,
	})
}
