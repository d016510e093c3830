package shopapi

import (
	"context"
	"encoding/json"
	"net/http"
)

// Admin channel. Every call here carries an explicit bearer token issued by
// AdminLogin; none of them read or write the customer cookie jar.

// AdminLogin authenticates against the separate admin endpoint and returns
// the issued bearer token together with the full admin identity.
func (c *Client) AdminLogin(ctx context.Context, email, password string) (string, *AuthUser, error) {
	body := map[string]string{"email": email, "password": password}
	var resp AdminLoginResponse
	if err := c.doAdmin(ctx, http.MethodPost, "/admin/login", "", body, &resp); err != nil {
		return "", nil, asCredentialFailure(err)
	}
	if resp.Token == "" {
		return "", nil, &apiError{kind: ErrUnavailable, message: "admin login response missing token"}
	}
	return resp.Token, resp.Admin, nil
}

// AdminMe returns the full identity behind an admin token. Used on session
// restore so the store never holds a placeholder identity.
func (c *Client) AdminMe(ctx context.Context, token string) (*AuthUser, error) {
	var resp AdminLoginResponse
	if err := c.doRetry(ctx, http.MethodGet, "/admin/me", token, &resp); err != nil {
		return nil, err
	}
	if resp.Admin == nil {
		return nil, &apiError{kind: ErrUnauthorized, message: "admin session expired"}
	}
	return resp.Admin, nil
}

func (c *Client) AdminStats(ctx context.Context, token string) (*AdminStats, error) {
	var stats AdminStats
	if err := c.doRetry(ctx, http.MethodGet, "/admin/stats", token, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *Client) AdminUsers(ctx context.Context, token string) ([]AuthUser, error) {
	var users []AuthUser
	if err := c.doRetry(ctx, http.MethodGet, "/admin/users", token, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateAdminUser hits PUT /admin/users/:id/:section with an opaque payload;
// the section path segment selects which slice of the record changes.
func (c *Client) UpdateAdminUser(ctx context.Context, token, id, section string, payload json.RawMessage) (*MessageResponse, error) {
	var resp MessageResponse
	if err := c.doAdmin(ctx, http.MethodPut, "/admin/users/"+id+"/"+section, token, payload, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) InviteAdmin(ctx context.Context, token string, req AdminInviteRequest) (*MessageResponse, error) {
	var resp MessageResponse
	if err := c.doAdmin(ctx, http.MethodPost, "/admin/invite", token, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) ListAdmins(ctx context.Context, token string) ([]AuthUser, error) {
	var admins []AuthUser
	if err := c.doRetry(ctx, http.MethodGet, "/admin/admins", token, &admins); err != nil {
		return nil, err
	}
	return admins, nil
}

func (c *Client) UpdateAdmin(ctx context.Context, token, id string, payload json.RawMessage) (*MessageResponse, error) {
	var resp MessageResponse
	if err := c.doAdmin(ctx, http.MethodPut, "/admin/admins/"+id, token, payload, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) DeleteAdmin(ctx context.Context, token, id string) (*MessageResponse, error) {
	var resp MessageResponse
	if err := c.doAdmin(ctx, http.MethodDelete, "/admin/admins/"+id, token, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
