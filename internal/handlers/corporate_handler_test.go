package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"emberfront/internal/api/validator"
	"emberfront/internal/config"
	"emberfront/internal/events"
	"emberfront/internal/handlers"
	"emberfront/internal/shopapi"
	"emberfront/internal/stepup"
)

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func corporateEcho(t *testing.T) *echo.Echo {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req shopapi.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		switch req.Email {
		case "boss@example.com":
			writeJSON(w, http.StatusOK, shopapi.AuthResponse{
				Success: true,
				User:    &shopapi.AuthUser{ID: "a1", Email: "boss@example.com", Role: "admin", IsAdmin: true},
			})
		case "shopper@example.com":
			writeJSON(w, http.StatusOK, shopapi.AuthResponse{
				Success: true,
				User:    &shopapi.AuthUser{ID: "u1", Email: "shopper@example.com", Role: "customer"},
			})
		default:
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
		}
	})
	mux.HandleFunc("/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	api := shopapi.NewClient(config.ShopAPIConfig{BaseURL: srv.URL, Timeout: 2 * time.Second, LoginTimeout: time.Second})
	registry := stepup.NewRegistry(api, events.NewEventBus(), time.Minute, time.Second)
	h := handlers.NewCorporateHandler(registry)

	e := echo.New()
	e.Validator = validator.NewValidator()
	e.POST("/corporate/challenge", h.Challenge)
	e.POST("/corporate/login", h.Login)
	e.GET("/corporate/status", h.Status)
	return e
}

func challenge(t *testing.T, e *echo.Echo, prior *http.Cookie) *http.Cookie {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/corporate/challenge", nil)
	if prior != nil {
		req.AddCookie(prior)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == "ef_stepup" {
			// Session-scoped: no Expires, no Max-Age.
			require.True(t, cookie.Expires.IsZero())
			require.Zero(t, cookie.MaxAge)
			return cookie
		}
	}
	t.Fatal("challenge did not set the step-up cookie")
	return nil
}

func corporateLogin(e *echo.Echo, cookie *http.Cookie, email, password string) *httptest.ResponseRecorder {
	body := `{"email":"` + email + `","password":"` + password + `"}`
	req := httptest.NewRequest(http.MethodPost, "/corporate/login", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func corporateStatus(e *echo.Echo, cookie *http.Cookie) map[string]interface{} {
	req := httptest.NewRequest(http.MethodGet, "/corporate/status", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var body map[string]interface{}
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	return body
}

func TestCorporateFlowGrantsAccess(t *testing.T) {
	t.Parallel()
	e := corporateEcho(t)

	cookie := challenge(t, e, nil)
	require.Equal(t, false, corporateStatus(e, cookie)["authenticated"])

	rec := corporateLogin(e, cookie, "boss@example.com", "secret")
	require.Equal(t, http.StatusOK, rec.Code)

	require.Equal(t, true, corporateStatus(e, cookie)["authenticated"])
}

func TestCorporateLoginWithoutChallenge(t *testing.T) {
	t.Parallel()
	e := corporateEcho(t)

	rec := corporateLogin(e, nil, "boss@example.com", "secret")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCorporateDenialIsNotACredentialError(t *testing.T) {
	t.Parallel()
	e := corporateEcho(t)

	cookie := challenge(t, e, nil)

	rec := corporateLogin(e, cookie, "shopper@example.com", "secret")
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Contains(t, rec.Body.String(), "does not have corporate access")

	rec = corporateLogin(e, cookie, "nobody@example.com", "wrong")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "Invalid credentials")
}

// A new challenge orphans whatever grant the previous one carried.
func TestRechallengeRevokesPreviousGrant(t *testing.T) {
	t.Parallel()
	e := corporateEcho(t)

	first := challenge(t, e, nil)
	rec := corporateLogin(e, first, "boss@example.com", "secret")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, corporateStatus(e, first)["authenticated"])

	second := challenge(t, e, first)
	require.NotEqual(t, first.Value, second.Value)

	require.Equal(t, false, corporateStatus(e, first)["authenticated"])
	require.Equal(t, false, corporateStatus(e, second)["authenticated"])
}
