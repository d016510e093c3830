package session_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"emberfront/internal/authz"
	"emberfront/internal/config"
	"emberfront/internal/device"
	"emberfront/internal/events"
	"emberfront/internal/models"
	"emberfront/internal/session"
	"emberfront/internal/shopapi"
)

const testDevice = "dev-1"

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func newStoreWithBackend(t *testing.T, handler http.Handler, loginTimeout time.Duration) (*session.Store, *miniredis.Miniredis) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	api := shopapi.NewClient(config.ShopAPIConfig{
		BaseURL:      srv.URL,
		Timeout:      2 * time.Second,
		LoginTimeout: loginTimeout,
	})
	devices := device.NewStore(client, time.Hour)

	return session.NewStore(api, devices, testDevice, events.NewEventBus(), loginTimeout), mr
}

// newSessionBackend is for tests that need several stores (or several HTTP
// clients) sharing one backend and one device store.
func newSessionBackend(t *testing.T, handler http.Handler) (string, *device.Store) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return srv.URL, device.NewStore(client, time.Hour)
}

func newAPIClient(baseURL string) *shopapi.Client {
	return shopapi.NewClient(config.ShopAPIConfig{
		BaseURL:      baseURL,
		Timeout:      2 * time.Second,
		LoginTimeout: time.Second,
	})
}

func customerUser() *shopapi.AuthUser {
	return &shopapi.AuthUser{ID: "u1", Username: "wick", Email: "wick@example.com", Role: "customer"}
}

func TestLoginEstablishesSession(t *testing.T) {
	t.Parallel()

	store, mr := newStoreWithBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/login", r.URL.Path)
		writeJSON(w, http.StatusOK, shopapi.AuthResponse{Success: true, User: customerUser(), Token: "bearer-1"})
	}), time.Second)

	result := store.Login(context.Background(), "  Wick@Example.com ", "secret")
	require.True(t, result.Success)
	require.Equal(t, session.StateAuthenticated, store.State())

	identity := store.Identity()
	require.NotNil(t, identity)
	require.Equal(t, models.TierCustomer, identity.Tier)
	require.True(t, identity.Can(authz.ResourceProducts, authz.ActionRead))

	// The issued bearer is mirrored into the device store.
	token, err := mr.Get("device:dev-1:auth_token")
	require.NoError(t, err)
	require.Equal(t, "bearer-1", token)
}

func TestLoginBadCredentialsKeepsUpstreamMessage(t *testing.T) {
	t.Parallel()

	store, _ := newStoreWithBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid username or password"})
	}), time.Second)

	result := store.Login(context.Background(), "wick", "wrong")
	require.False(t, result.Success)
	require.Equal(t, "Invalid username or password", result.Message)
	require.Equal(t, session.StateAnonymous, store.State())
	require.Nil(t, store.Identity())
}

// A failed attempt must tear down whatever session a previous attempt built.
func TestFailedLoginAfterSuccessLeavesAnonymous(t *testing.T) {
	t.Parallel()

	var fail bool
	store, _ := newStoreWithBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid username or password"})
			return
		}
		writeJSON(w, http.StatusOK, shopapi.AuthResponse{Success: true, User: customerUser()})
	}), time.Second)

	require.True(t, store.Login(context.Background(), "wick", "secret").Success)
	require.Equal(t, session.StateAuthenticated, store.State())

	fail = true
	require.False(t, store.Login(context.Background(), "wick", "wrong").Success)
	require.Equal(t, session.StateAnonymous, store.State())
	require.Nil(t, store.Identity())
}

func TestLoginTimeoutResolvesToFailure(t *testing.T) {
	t.Parallel()

	store, _ := newStoreWithBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		writeJSON(w, http.StatusOK, shopapi.AuthResponse{Success: true, User: customerUser()})
	}), 100*time.Millisecond)

	start := time.Now()
	result := store.Login(context.Background(), "wick", "secret")
	require.False(t, result.Success)
	require.Less(t, time.Since(start), 400*time.Millisecond)
	require.Equal(t, session.StateAnonymous, store.State())
}

func TestConcurrentLoginIsRejected(t *testing.T) {
	t.Parallel()

	entered := make(chan struct{})
	release := make(chan struct{})
	store, _ := newStoreWithBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-release
		writeJSON(w, http.StatusOK, shopapi.AuthResponse{Success: true, User: customerUser()})
	}), 5*time.Second)

	var wg sync.WaitGroup
	var first session.Result
	wg.Add(1)
	go func() {
		defer wg.Done()
		first = store.Login(context.Background(), "wick", "secret")
	}()

	<-entered
	second := store.Login(context.Background(), "wick", "secret")
	require.False(t, second.Success)
	require.Contains(t, second.Message, "already in progress")

	close(release)
	wg.Wait()
	require.True(t, first.Success)
	require.Equal(t, session.StateAuthenticated, store.State())
}

func TestSignupEstablishesSession(t *testing.T) {
	t.Parallel()

	store, _ := newStoreWithBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/signup", r.URL.Path)

		var req shopapi.SignupRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "wick", req.Username)
		require.Equal(t, "wick@example.com", req.Email)

		writeJSON(w, http.StatusOK, shopapi.AuthResponse{Success: true, User: customerUser()})
	}), time.Second)

	result := store.Signup(context.Background(), " wick ", "Wick@Example.COM", "secret")
	require.True(t, result.Success)
	require.Equal(t, session.StateAuthenticated, store.State())
}

// Remote logout failing must not leave the client signed in.
func TestLogoutClearsLocallyWhenBackendFails(t *testing.T) {
	t.Parallel()

	var failLogout bool
	store, mr := newStoreWithBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/logout" && failLogout {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "boom"})
			return
		}
		writeJSON(w, http.StatusOK, shopapi.AuthResponse{Success: true, User: customerUser(), Token: "bearer-1"})
	}), time.Second)

	require.True(t, store.Login(context.Background(), "wick", "secret").Success)

	failLogout = true
	result := store.Logout(context.Background())
	require.True(t, result.Success)
	require.Equal(t, session.StateAnonymous, store.State())
	require.Nil(t, store.Identity())
	require.False(t, mr.Exists("device:dev-1:auth_token"))
}

func TestCheckSessionFailureIsSilentlyAnonymous(t *testing.T) {
	t.Parallel()

	store, _ := newStoreWithBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "no session"})
	}), time.Second)

	store.CheckSession(context.Background())
	require.Equal(t, session.StateAnonymous, store.State())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, store.Ready(ctx))
}

func TestCheckSessionRestoresIdentity(t *testing.T) {
	t.Parallel()

	store, _ := newStoreWithBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/me", r.URL.Path)
		user := customerUser()
		user.Role = "manager"
		writeJSON(w, http.StatusOK, shopapi.AuthResponse{Success: true, User: user})
	}), time.Second)

	store.EnsureChecked()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, store.Ready(ctx))

	require.Equal(t, session.StateAuthenticated, store.State())
	require.Equal(t, models.TierManager, store.Identity().Tier)
}

// A fresh process starts with an empty cookie jar; the bearer token persisted
// at login is what brings the session back.
func TestCheckSessionUsesPersistedBearer(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, shopapi.AuthResponse{Success: true, User: customerUser(), Token: "bearer-7"})
	})
	mux.HandleFunc("/auth/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer bearer-7" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "no session"})
			return
		}
		writeJSON(w, http.StatusOK, shopapi.AuthResponse{Success: true, User: customerUser()})
	})

	baseURL, devices := newSessionBackend(t, mux)

	first := session.NewStore(newAPIClient(baseURL), devices, testDevice, events.NewEventBus(), time.Second)
	require.True(t, first.Login(context.Background(), "wick", "secret").Success)

	// New store, new HTTP client, same device: only the persisted token can
	// authenticate the check.
	restarted := session.NewStore(newAPIClient(baseURL), devices, testDevice, events.NewEventBus(), time.Second)
	restarted.CheckSession(context.Background())
	require.Equal(t, session.StateAuthenticated, restarted.State())
	require.Equal(t, "u1", restarted.Identity().ID)
}

// A session check already in flight when the user logs out must not bring the
// identity back once its response lands.
func TestLogoutInvalidatesInFlightCheck(t *testing.T) {
	t.Parallel()

	entered := make(chan struct{})
	release := make(chan struct{})
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	})
	mux.HandleFunc("/auth/me", func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-release
		writeJSON(w, http.StatusOK, shopapi.AuthResponse{Success: true, User: customerUser()})
	})

	baseURL, devices := newSessionBackend(t, mux)
	store := session.NewStore(newAPIClient(baseURL), devices, testDevice, events.NewEventBus(), time.Second)

	go store.CheckSession(context.Background())
	<-entered

	require.True(t, store.Logout(context.Background()).Success)
	close(release)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, store.Ready(ctx))
	require.Equal(t, session.StateAnonymous, store.State())
	require.Nil(t, store.Identity())
}

// Login and an independent session check must agree on who is signed in.
func TestLoginCheckSessionRoundTrip(t *testing.T) {
	t.Parallel()

	manager := &shopapi.AuthUser{ID: "m1", Username: "pam", Email: "pam@example.com", Role: "manager", IsAdmin: true}
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "sid", Value: "s-1", Path: "/"})
		writeJSON(w, http.StatusOK, shopapi.AuthResponse{Success: true, User: manager})
	})
	mux.HandleFunc("/auth/me", func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie("sid"); err != nil || cookie.Value != "s-1" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "no session"})
			return
		}
		writeJSON(w, http.StatusOK, shopapi.AuthResponse{Success: true, User: manager})
	})

	store, _ := newStoreWithBackend(t, mux, time.Second)

	loggedIn := store.Login(context.Background(), "pam@example.com", "secret")
	require.True(t, loggedIn.Success)

	store.CheckSession(context.Background())
	require.Equal(t, session.StateAuthenticated, store.State())

	restored := store.Identity()
	require.NotNil(t, restored)
	require.Equal(t, loggedIn.User.Role, restored.Role)
	require.Equal(t, loggedIn.User.IsAdmin, restored.IsAdmin)
	require.Equal(t, loggedIn.User.Tier, restored.Tier)
}

func TestNormalizeIdentifier(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"  Wick@Example.COM  ", "wick@example.com"},
		{"JohnWick", "JohnWick"},
		{"  JohnWick  ", "JohnWick"},
		{"wick@example.com", "wick@example.com"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, session.NormalizeIdentifier(tt.in))
	}
}

func TestEstablishResolvesTierAndPermissions(t *testing.T) {
	t.Parallel()

	identity := session.Establish(&shopapi.AuthUser{ID: "a1", Role: "admin", IsAdmin: true})
	require.Equal(t, models.TierSuperAdmin, identity.Tier)
	require.True(t, identity.Can(authz.ResourcePlatform, authz.ActionManage))

	// Whatever permissions the wire claims are ignored; only the resolved
	// set counts.
	inflated := session.Establish(&shopapi.AuthUser{
		ID:          "u2",
		Role:        "customer",
		Permissions: []models.Permission{{Resource: authz.ResourcePlatform, Actions: []string{authz.ActionManage}}},
	})
	require.False(t, inflated.Can(authz.ResourcePlatform, authz.ActionManage))
}

func TestEstablishUnknownRoleFailsClosed(t *testing.T) {
	t.Parallel()

	identity := session.Establish(&shopapi.AuthUser{ID: "u3", Role: "auditor"})
	require.Equal(t, models.TierCustomer, identity.Tier)
	require.Nil(t, identity.Permissions)
	require.False(t, identity.Can(authz.ResourceProducts, authz.ActionRead))
}
