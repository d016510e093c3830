package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"emberfront/internal/device"
	"emberfront/internal/events"
	"emberfront/internal/models"
	"emberfront/internal/shopapi"
	console "emberfront/internal/utils/logger"
)

var adminLog = console.New("admin-session")

// AdminChange is emitted on every admin session transition.
type AdminChange struct {
	Authenticated bool
	Identity      *models.Identity
}

// AdminStore is the parallel, separately-tokened session for elevated
// identities. Its bearer token lives in the device store under its own key;
// the token and the in-memory identity move together or not at all.
type AdminStore struct {
	mu       sync.Mutex
	identity *models.Identity
	token    string

	api      *shopapi.Client
	devices  *device.Store
	deviceID string
	bus      *events.EventBus

	loginTimeout time.Duration
	inFlight     bool
	restoreOnce  sync.Once
	ready        chan struct{}
	readyOnce    sync.Once
}

func NewAdminStore(api *shopapi.Client, devices *device.Store, deviceID string, bus *events.EventBus, loginTimeout time.Duration) *AdminStore {
	return &AdminStore{
		api:          api,
		devices:      devices,
		deviceID:     deviceID,
		bus:          bus,
		loginTimeout: loginTimeout,
		ready:        make(chan struct{}),
	}
}

// Ready blocks until the one-time restore from the persisted token has
// completed, so the request that triggered it is not judged against an empty
// in-memory identity.
func (s *AdminStore) Ready(ctx context.Context) error {
	select {
	case <-s.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *AdminStore) markReady() {
	s.readyOnce.Do(func() { close(s.ready) })
}

// AdminLogin authenticates against the dedicated admin endpoint. The token
// is persisted before the identity becomes visible; if persisting fails the
// login fails, so the two can never diverge.
func (s *AdminStore) AdminLogin(ctx context.Context, email, password string) Result {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return Result{Success: false, Message: "An admin sign in attempt is already in progress"}
	}
	s.inFlight = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.inFlight = false
		s.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(ctx, s.loginTimeout)
	defer cancel()

	token, admin, err := s.api.AdminLogin(ctx, NormalizeIdentifier(email), password)
	if err != nil {
		return failureResult(err, "Unable to sign in right now, please try again")
	}
	if admin == nil {
		return Result{Success: false, Message: "Unable to sign in right now, please try again"}
	}

	if err := s.devices.SetAdminToken(ctx, s.deviceID, token); err != nil {
		return Result{Success: false, Message: "Unable to sign in right now, please try again"}
	}

	identity := Establish(admin)
	s.mu.Lock()
	s.identity = identity
	s.token = token
	s.mu.Unlock()

	s.bus.EmitSync(events.TopicAdminSessionChanged, AdminChange{Authenticated: true, Identity: identity})
	adminLog.Success("admin session established for %s (%s)", identity.Email, identity.Tier)
	s.markReady()
	return Result{Success: true, Message: "Signed in", User: identity}
}

// Restore rebuilds the admin session from a persisted token, fetching the
// full identity from the backend rather than synthesizing a placeholder. A
// rejected token is cleared; an unreachable backend leaves the token in
// place for the next attempt and the session unauthenticated for now.
func (s *AdminStore) Restore(ctx context.Context) error {
	token, err := s.devices.AdminToken(ctx, s.deviceID)
	if err != nil || token == "" {
		return err
	}

	if tokenExpired(token) {
		adminLog.Info("persisted admin token expired, discarding")
		return s.clear(ctx)
	}

	admin, err := s.api.AdminMe(ctx, token)
	if err != nil {
		if errors.Is(err, shopapi.ErrUnauthorized) || errors.Is(err, shopapi.ErrForbidden) {
			adminLog.Info("persisted admin token rejected, discarding")
			return s.clear(ctx)
		}
		adminLog.Debug("admin session restore deferred: %v", err)
		return nil
	}

	identity := Establish(admin)
	s.mu.Lock()
	s.identity = identity
	s.token = token
	s.mu.Unlock()

	s.bus.EmitSync(events.TopicAdminSessionChanged, AdminChange{Authenticated: true, Identity: identity})
	return nil
}

// EnsureRestored runs the one-time restore from the persisted token. Callers
// that need the outcome wait on Ready.
func (s *AdminStore) EnsureRestored() {
	s.restoreOnce.Do(func() {
		go func() {
			defer s.markReady()
			if err := s.Restore(context.Background()); err != nil {
				adminLog.Warn("admin session restore failed: %v", err)
			}
		}()
	})
}

// IsAuthenticated requires both halves: an in-memory identity AND the
// persisted token. Either one missing means false.
func (s *AdminStore) IsAuthenticated(ctx context.Context) bool {
	s.mu.Lock()
	identity := s.identity
	s.mu.Unlock()
	if identity == nil {
		return false
	}

	token, err := s.devices.AdminToken(ctx, s.deviceID)
	if err != nil {
		return false
	}
	return token != ""
}

// HasPermission consults only the session-attached resolved set. Missing or
// malformed data denies.
func (s *AdminStore) HasPermission(resource, action string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity.Can(resource, action)
}

// IsSuperAdmin is the strict conjunctive check, expressed over the tier.
func (s *AdminStore) IsSuperAdmin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity.IsSuperAdmin()
}

// Identity returns the admin identity, nil when not authenticated.
func (s *AdminStore) Identity() *models.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

// Token returns the bearer for proxied admin calls, "" when absent.
func (s *AdminStore) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Logout drops the persisted token and the in-memory identity together.
func (s *AdminStore) Logout(ctx context.Context) Result {
	if err := s.clear(ctx); err != nil {
		adminLog.Warn("failed to clear persisted admin token: %v", err)
	}
	return Result{Success: true, Message: "Signed out"}
}

func (s *AdminStore) clear(ctx context.Context) error {
	err := s.devices.ClearAdminToken(ctx, s.deviceID)

	s.mu.Lock()
	s.identity = nil
	s.token = ""
	s.mu.Unlock()

	s.bus.EmitSync(events.TopicAdminSessionChanged, AdminChange{Authenticated: false})
	return err
}

// tokenExpired inspects the exp claim locally without verifying the
// signature; verification is the backend's job.
func tokenExpired(token string) bool {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		// Opaque tokens are fine; the backend decides their fate.
		return false
	}
	return claims.ExpiresAt != nil && claims.ExpiresAt.Before(time.Now())
}
