package shopapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"

	"github.com/hashicorp/go-retryablehttp"

	"emberfront/internal/config"
	console "emberfront/internal/utils/logger"
)

var log = console.New("shopapi")

// Sentinel errors; callers classify with errors.Is. Anything the caller
// cannot act on (network loss, timeout, 5xx) collapses into ErrUnavailable.
var (
	ErrBadCredentials = errors.New("invalid credentials")
	ErrUnauthorized   = errors.New("not authenticated")
	ErrForbidden      = errors.New("access denied")
	ErrUnavailable    = errors.New("storefront api unavailable")
)

// apiError keeps the upstream message while staying classifiable.
type apiError struct {
	kind    error
	message string
}

func (e *apiError) Error() string {
	if e.message == "" {
		return e.kind.Error()
	}
	return e.message
}

func (e *apiError) Unwrap() error { return e.kind }

// Client is the typed client for the storefront REST backend. The customer
// channel is cookie-credentialed (shared jar); admin calls carry an explicit
// bearer token and never touch the jar's trust domain.
type Client struct {
	baseURL string
	cfg     config.ShopAPIConfig
	http    *http.Client
	retry   *retryablehttp.Client
}

func NewClient(cfg config.ShopAPIConfig) *Client {
	jar, _ := cookiejar.New(nil)

	plain := &http.Client{
		Timeout: cfg.Timeout,
		Jar:     jar,
	}

	// Retries only wrap idempotent reads; credential posts stay single-shot
	// so a retried login can never double-submit.
	retry := retryablehttp.NewClient()
	retry.RetryMax = cfg.RetryMax
	retry.HTTPClient = &http.Client{Timeout: cfg.Timeout, Jar: jar}
	retry.Logger = nil

	return &Client{
		baseURL: cfg.BaseURL,
		cfg:     cfg,
		http:    plain,
		retry:   retry,
	}
}

// Isolated returns a client with the same configuration and a fresh cookie
// jar. The corporate step-up flow verifies credentials through one of these
// so the customer session's cookies are never touched.
func (c *Client) Isolated() *Client {
	return NewClient(c.cfg)
}

func (c *Client) url(path string) string {
	return c.baseURL + path
}

// do issues a single-shot request on the cookie channel.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	return c.request(ctx, c.http, method, path, "", body, out)
}

// doRetry issues an idempotent request with retries.
func (c *Client) doRetry(ctx context.Context, method, path, bearer string, out interface{}) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, method, c.url(path), nil)
	if err != nil {
		return &apiError{kind: ErrUnavailable, message: err.Error()}
	}
	req.Header.Set("Accept", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.retry.Do(req)
	if err != nil {
		return &apiError{kind: ErrUnavailable, message: err.Error()}
	}
	defer resp.Body.Close()

	return decodeResponse(resp, out)
}

// doAdmin issues a single-shot request on the bearer channel.
func (c *Client) doAdmin(ctx context.Context, method, path, bearer string, body, out interface{}) error {
	return c.request(ctx, c.http, method, path, bearer, body, out)
}

func (c *Client) request(ctx context.Context, client *http.Client, method, path, bearer string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), reader)
	if err != nil {
		return &apiError{kind: ErrUnavailable, message: err.Error()}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := client.Do(req)
	if err != nil {
		log.Debug("request %s %s failed: %v", method, path, err)
		return &apiError{kind: ErrUnavailable, message: err.Error()}
	}
	defer resp.Body.Close()

	return decodeResponse(resp, out)
}

func decodeResponse(resp *http.Response, out interface{}) error {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &apiError{kind: ErrUnavailable, message: err.Error()}
	}

	if resp.StatusCode >= 400 {
		return classifyStatus(resp.StatusCode, upstreamMessage(raw))
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return &apiError{kind: ErrUnavailable, message: "malformed upstream response"}
		}
	}
	return nil
}

func classifyStatus(status int, message string) error {
	switch {
	case status == http.StatusUnauthorized:
		return &apiError{kind: ErrUnauthorized, message: message}
	case status == http.StatusForbidden:
		return &apiError{kind: ErrForbidden, message: message}
	case status >= 500:
		return &apiError{kind: ErrUnavailable, message: message}
	default:
		return &apiError{kind: ErrBadCredentials, message: message}
	}
}

func upstreamMessage(raw []byte) string {
	var envelope struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return ""
	}
	if envelope.Message != "" {
		return envelope.Message
	}
	return envelope.Error
}

// asCredentialFailure rewrites a 401 from an auth endpoint, where it means
// "wrong credentials", not "session missing".
func asCredentialFailure(err error) error {
	if errors.Is(err, ErrUnauthorized) {
		var ae *apiError
		if errors.As(err, &ae) {
			return &apiError{kind: ErrBadCredentials, message: ae.message}
		}
		return ErrBadCredentials
	}
	return err
}

// Signup creates a new account and establishes the cookie session.
func (c *Client) Signup(ctx context.Context, req SignupRequest) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/signup", req, &resp); err != nil {
		return nil, asCredentialFailure(err)
	}
	if resp.User == nil {
		return nil, &apiError{kind: ErrUnavailable, message: "signup response missing user"}
	}
	return &resp, nil
}

// Login authenticates the cookie channel. The identifier must already be
// normalized; it is sent as both username and email.
func (c *Client) Login(ctx context.Context, identifier, password string) (*AuthResponse, error) {
	body := LoginRequest{Username: identifier, Email: identifier, Password: password}
	var resp AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &resp); err != nil {
		return nil, asCredentialFailure(err)
	}
	if resp.User == nil {
		return nil, &apiError{kind: ErrUnavailable, message: "login response missing user"}
	}
	return &resp, nil
}

// Logout invalidates the server-side cookie session. Best effort; callers
// clear local state regardless of the outcome.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

// Me returns the identity behind the current cookie session. The bearer is
// the optional per-device token from the device store; it lets a session
// survive a process restart, when the cookie jar starts empty.
func (c *Client) Me(ctx context.Context, bearer string) (*AuthUser, error) {
	var resp AuthResponse
	if err := c.doRetry(ctx, http.MethodGet, "/auth/me", bearer, &resp); err != nil {
		return nil, err
	}
	if resp.User == nil {
		return nil, &apiError{kind: ErrUnauthorized, message: "no active session"}
	}
	return resp.User, nil
}

func (c *Client) ForgotPassword(ctx context.Context, email string) (*MessageResponse, error) {
	var resp MessageResponse
	body := map[string]string{"email": email}
	if err := c.do(ctx, http.MethodPost, "/auth/forgot-password", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) ResetPassword(ctx context.Context, token, password string) (*MessageResponse, error) {
	var resp MessageResponse
	body := map[string]string{"token": token, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/reset-password", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) VerifyResetToken(ctx context.Context, token string) (*MessageResponse, error) {
	var resp MessageResponse
	if err := c.doRetry(ctx, http.MethodGet, "/auth/verify-reset-token/"+token, "", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
