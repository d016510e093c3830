package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"emberfront/internal/api/middleware"
	"emberfront/internal/session"
	"emberfront/internal/shopapi"
	"emberfront/internal/utils/logger"
)

type AuthHandler struct {
	api *shopapi.Client
	log *logger.Logger
}

func NewAuthHandler(api *shopapi.Client) *AuthHandler {
	return &AuthHandler{api: api, log: logger.New("AuthHandler")}
}

type SignupRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

// Signup creates a storefront account upstream and establishes the session.
// @Summary Sign up
// @Description Create a new customer account and establish a session
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SignupRequest true "Signup details"
// @Success 201 {object} session.Result
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 401 {object} session.Result "Signup rejected"
// @Router /auth/signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req SignupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	bundle := middleware.Stores(c)
	result := bundle.Store.Signup(c.Request().Context(), req.Username, req.Email, req.Password)
	if !result.Success {
		return c.JSON(http.StatusUnauthorized, result)
	}
	return c.JSON(http.StatusCreated, result)
}

// Login authenticates the customer session.
// @Summary Log in
// @Description Authenticate with username or email and establish a session
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} session.Result
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 401 {object} session.Result "Invalid credentials"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	bundle := middleware.Stores(c)
	result := bundle.Store.Login(c.Request().Context(), req.Identifier, req.Password)
	if !result.Success {
		return c.JSON(http.StatusUnauthorized, result)
	}
	return c.JSON(http.StatusOK, result)
}

// Logout ends the customer session. Local state is cleared even when the
// upstream call fails, so the response is always a success.
// @Summary Log out
// @Description Invalidate the upstream session and clear local state
// @Tags auth
// @Produce json
// @Success 200 {object} session.Result
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	bundle := middleware.Stores(c)
	result := bundle.Store.Logout(c.Request().Context())
	return c.JSON(http.StatusOK, result)
}

// Me returns the current customer identity.
// @Summary Current identity
// @Description Return the identity behind the current session
// @Tags auth
// @Produce json
// @Success 200 {object} models.Identity
// @Failure 401 {object} map[string]string "Not authenticated"
// @Router /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	bundle := middleware.Stores(c)
	if err := bundle.Store.Ready(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "session check in progress"})
	}

	identity := bundle.Store.Identity()
	if identity == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Not authenticated"})
	}
	return c.JSON(http.StatusOK, identity)
}

// ForgotPassword forwards the reset request upstream.
// @Summary Request password reset
// @Description Ask the backend to send a password reset link
// @Tags auth
// @Accept json
// @Produce json
// @Param request body ForgotPasswordRequest true "Account email"
// @Success 200 {object} shopapi.MessageResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Router /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req ForgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	resp, err := h.api.ForgotPassword(c.Request().Context(), session.NormalizeIdentifier(req.Email))
	if err != nil {
		// Same response whether or not the email exists
		return c.JSON(http.StatusOK, map[string]string{"message": "If the email exists, a reset link will be sent"})
	}
	return c.JSON(http.StatusOK, resp)
}

// ResetPassword completes a password reset with a token.
// @Summary Reset password
// @Description Set a new password using a reset token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body ResetPasswordRequest true "Token and new password"
// @Success 200 {object} shopapi.MessageResponse
// @Failure 400 {object} map[string]string "Invalid or expired token"
// @Router /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	resp, err := h.api.ResetPassword(c.Request().Context(), req.Token, req.Password)
	if err != nil {
		if errors.Is(err, shopapi.ErrUnavailable) {
			return c.JSON(http.StatusBadGateway, map[string]string{"error": "Service unavailable, please try again"})
		}
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, resp)
}

// VerifyResetToken checks whether a reset token is still valid.
// @Summary Verify reset token
// @Description Check a password reset token before showing the reset form
// @Tags auth
// @Produce json
// @Param token path string true "Reset token"
// @Success 200 {object} shopapi.MessageResponse
// @Failure 400 {object} map[string]string "Invalid or expired token"
// @Router /auth/verify-reset-token/{token} [get]
func (h *AuthHandler) VerifyResetToken(c echo.Context) error {
	token := c.Param("token")
	if token == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Missing token"})
	}

	resp, err := h.api.VerifyResetToken(c.Request().Context(), token)
	if err != nil {
		if errors.Is(err, shopapi.ErrUnavailable) {
			return c.JSON(http.StatusBadGateway, map[string]string{"error": "Service unavailable, please try again"})
		}
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid or expired reset token"})
	}
	return c.JSON(http.StatusOK, resp)
}
