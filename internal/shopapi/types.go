package shopapi

import (
	"time"

	"emberfront/internal/models"
)

// Wire shapes of the upstream storefront API. Field names mirror the
// backend's JSON and must not drift (compatibility requirement).

type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest carries the normalized identifier in both fields; the backend
// matches either username or email.
type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthUser struct {
	ID                 string              `json:"id"`
	Username           string              `json:"username"`
	Email              string              `json:"email"`
	Role               string              `json:"role"`
	IsAdmin            bool                `json:"isAdmin"`
	SubscriptionStatus string              `json:"subscriptionStatus,omitempty"`
	Permissions        []models.Permission `json:"permissions,omitempty"`
	BusinessInfo       *BusinessInfo       `json:"businessInfo,omitempty"`
}

type BusinessInfo struct {
	Name           string    `json:"name"`
	OwnerName      string    `json:"ownerName"`
	Phone          string    `json:"phone,omitempty"`
	NextPaymentDue time.Time `json:"nextPaymentDue,omitempty"`
}

type AuthResponse struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	User    *AuthUser `json:"user,omitempty"`
	Token   string    `json:"token,omitempty"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type AdminLoginResponse struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	Token   string    `json:"token"`
	Admin   *AuthUser `json:"admin,omitempty"`
}

type AdminStats struct {
	TotalUsers      int `json:"totalUsers"`
	TotalAdmins     int `json:"totalAdmins"`
	TotalBusinesses int `json:"totalBusinesses"`
	ActiveSessions  int `json:"activeSessions"`
}

type AdminInviteRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}
