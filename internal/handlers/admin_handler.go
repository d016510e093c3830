package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"emberfront/internal/api/middleware"
	"emberfront/internal/shopapi"
	"emberfront/internal/utils/logger"
)

// AdminHandler fronts the upstream admin endpoints. Every proxied call
// carries the bearer token from the admin session store; the customer cookie
// channel is never used here.
type AdminHandler struct {
	api *shopapi.Client
	log *logger.Logger
}

func NewAdminHandler(api *shopapi.Client) *AdminHandler {
	return &AdminHandler{api: api, log: logger.New("AdminHandler")}
}

type AdminLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AdminInviteRequest struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"required,identity_role"`
}

// Login authenticates the parallel admin session.
// @Summary Admin login
// @Description Authenticate against the admin endpoint and persist the bearer token
// @Tags admin
// @Accept json
// @Produce json
// @Param request body AdminLoginRequest true "Admin credentials"
// @Success 200 {object} session.Result
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 401 {object} session.Result "Invalid credentials"
// @Router /admin/login [post]
func (h *AdminHandler) Login(c echo.Context) error {
	var req AdminLoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	bundle := middleware.Stores(c)
	result := bundle.Admin.AdminLogin(c.Request().Context(), req.Email, req.Password)
	if !result.Success {
		return c.JSON(http.StatusUnauthorized, result)
	}
	return c.JSON(http.StatusOK, result)
}

// Logout clears the admin session and its persisted token.
// @Summary Admin logout
// @Tags admin
// @Produce json
// @Success 200 {object} session.Result
// @Router /admin/logout [post]
func (h *AdminHandler) Logout(c echo.Context) error {
	bundle := middleware.Stores(c)
	return c.JSON(http.StatusOK, bundle.Admin.Logout(c.Request().Context()))
}

// Me returns the admin identity and its resolved capability set.
// @Summary Admin identity
// @Tags admin
// @Produce json
// @Success 200 {object} models.Identity
// @Failure 401 {object} map[string]string "No admin session"
// @Router /admin/me [get]
func (h *AdminHandler) Me(c echo.Context) error {
	bundle := middleware.Stores(c)
	identity := bundle.Admin.Identity()
	if identity == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Admin session required"})
	}
	return c.JSON(http.StatusOK, identity)
}

// Stats proxies the platform stats endpoint.
// @Summary Platform stats
// @Tags admin
// @Produce json
// @Success 200 {object} shopapi.AdminStats
// @Failure 401 {object} map[string]string "No admin session"
// @Router /admin/stats [get]
func (h *AdminHandler) Stats(c echo.Context) error {
	bundle := middleware.Stores(c)
	stats, err := h.api.AdminStats(c.Request().Context(), bundle.Admin.Token())
	if err != nil {
		return h.upstreamError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

// Users proxies the user list.
// @Summary List users
// @Tags admin
// @Produce json
// @Success 200 {array} shopapi.AuthUser
// @Router /admin/users [get]
func (h *AdminHandler) Users(c echo.Context) error {
	bundle := middleware.Stores(c)
	users, err := h.api.AdminUsers(c.Request().Context(), bundle.Admin.Token())
	if err != nil {
		return h.upstreamError(c, err)
	}
	return c.JSON(http.StatusOK, users)
}

// UpdateUser proxies PUT /admin/users/:id/:section with an opaque payload.
// @Summary Update a user record section
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param section path string true "Record section"
// @Success 200 {object} shopapi.MessageResponse
// @Router /admin/users/{id}/{section} [put]
func (h *AdminHandler) UpdateUser(c echo.Context) error {
	payload, err := io.ReadAll(io.LimitReader(c.Request().Body, 1<<20))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid payload"})
	}

	bundle := middleware.Stores(c)
	resp, err := h.api.UpdateAdminUser(c.Request().Context(), bundle.Admin.Token(),
		c.Param("id"), c.Param("section"), json.RawMessage(payload))
	if err != nil {
		return h.upstreamError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// Invite sends an admin invitation.
// @Summary Invite an admin
// @Tags admin
// @Accept json
// @Produce json
// @Param request body AdminInviteRequest true "Invite details"
// @Success 200 {object} shopapi.MessageResponse
// @Router /admin/invite [post]
func (h *AdminHandler) Invite(c echo.Context) error {
	var req AdminInviteRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	bundle := middleware.Stores(c)
	resp, err := h.api.InviteAdmin(c.Request().Context(), bundle.Admin.Token(),
		shopapi.AdminInviteRequest{Email: req.Email, Role: req.Role})
	if err != nil {
		return h.upstreamError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// Admins proxies the admin list.
// @Summary List admins
// @Tags admin
// @Produce json
// @Success 200 {array} shopapi.AuthUser
// @Router /admin/admins [get]
func (h *AdminHandler) Admins(c echo.Context) error {
	bundle := middleware.Stores(c)
	admins, err := h.api.ListAdmins(c.Request().Context(), bundle.Admin.Token())
	if err != nil {
		return h.upstreamError(c, err)
	}
	return c.JSON(http.StatusOK, admins)
}

// UpdateAdmin proxies PUT /admin/admins/:id.
// @Summary Update an admin
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Admin ID"
// @Success 200 {object} shopapi.MessageResponse
// @Router /admin/admins/{id} [put]
func (h *AdminHandler) UpdateAdmin(c echo.Context) error {
	payload, err := io.ReadAll(io.LimitReader(c.Request().Body, 1<<20))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid payload"})
	}

	bundle := middleware.Stores(c)
	resp, err := h.api.UpdateAdmin(c.Request().Context(), bundle.Admin.Token(),
		c.Param("id"), json.RawMessage(payload))
	if err != nil {
		return h.upstreamError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// DeleteAdmin proxies DELETE /admin/admins/:id.
// @Summary Delete an admin
// @Tags admin
// @Produce json
// @Param id path string true "Admin ID"
// @Success 200 {object} shopapi.MessageResponse
// @Router /admin/admins/{id} [delete]
func (h *AdminHandler) DeleteAdmin(c echo.Context) error {
	bundle := middleware.Stores(c)
	resp, err := h.api.DeleteAdmin(c.Request().Context(), bundle.Admin.Token(), c.Param("id"))
	if err != nil {
		return h.upstreamError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// upstreamError keeps the two failure families apart: 401 means the admin
// session is gone, 403 means it lacks authority; neither is conflated with
// an unreachable backend.
func (h *AdminHandler) upstreamError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, shopapi.ErrUnauthorized):
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Admin session expired"})
	case errors.Is(err, shopapi.ErrForbidden):
		return c.JSON(http.StatusForbidden, map[string]string{"error": "Access denied"})
	default:
		h.log.Warn("admin upstream call failed: %v", err)
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "Service unavailable, please try again"})
	}
}
