package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"emberfront/internal/authz"
	"emberfront/internal/device"
	"emberfront/internal/events"
	"emberfront/internal/models"
	"emberfront/internal/shopapi"
	console "emberfront/internal/utils/logger"
)

var log = console.New("session")

// State is the customer session lifecycle. The only legal transitions are
// unknown -> checking -> {authenticated|anonymous},
// authenticated -> anonymous (logout or invalidated check),
// anonymous -> authenticated (successful login/signup).
type State string

const (
	StateUnknown       State = "UNKNOWN"
	StateChecking      State = "CHECKING"
	StateAuthenticated State = "AUTHENTICATED"
	StateAnonymous     State = "ANONYMOUS"
)

// Result is the structured outcome of a store operation. Expected failures
// (bad credentials, network loss, double submit) come back here, never as a
// panic or an error the caller has to classify.
type Result struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	User    *models.Identity `json:"user,omitempty"`
}

// Change is the payload emitted on every session transition.
type Change struct {
	State    State
	Identity *models.Identity
}

// Store holds the customer session for one device. It owns the session
// exclusively; the permission model and guard only read it. All transitions
// are serialized, and overlapping login attempts are rejected rather than
// raced.
type Store struct {
	mu       sync.Mutex
	state    State
	identity *models.Identity

	api      *shopapi.Client
	devices  *device.Store
	deviceID string
	bus      *events.EventBus

	loginTimeout time.Duration

	inFlight  bool
	gen       uint64
	ready     chan struct{}
	readyOnce sync.Once
	checkOnce sync.Once
}

func NewStore(api *shopapi.Client, devices *device.Store, deviceID string, bus *events.EventBus, loginTimeout time.Duration) *Store {
	return &Store{
		state:        StateUnknown,
		api:          api,
		devices:      devices,
		deviceID:     deviceID,
		bus:          bus,
		loginTimeout: loginTimeout,
		ready:        make(chan struct{}),
	}
}

// State returns the current lifecycle state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Identity returns the current identity, nil when not authenticated.
func (s *Store) Identity() *models.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

// Ready blocks until the initial CheckSession has completed.
func (s *Store) Ready(ctx context.Context) error {
	select {
	case <-s.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) markReady() {
	s.readyOnce.Do(func() { close(s.ready) })
}

// EnsureChecked kicks off the one-time initial session check. Safe to call
// on every request; only the first call does anything.
func (s *Store) EnsureChecked() {
	s.checkOnce.Do(func() {
		go s.CheckSession(context.Background())
	})
}

// beginAttempt takes the in-flight guard; a second concurrent login or
// signup fails fast instead of racing the first.
func (s *Store) beginAttempt() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight {
		return false
	}
	s.inFlight = true
	return true
}

func (s *Store) endAttempt() {
	s.mu.Lock()
	s.inFlight = false
	s.mu.Unlock()
}

// transition applies the new state under the lock and notifies observers
// synchronously, so a logout is fully visible before the method returns.
func (s *Store) transition(state State, identity *models.Identity) {
	s.mu.Lock()
	s.state = state
	s.identity = identity
	s.mu.Unlock()

	s.bus.EmitSync(events.TopicSessionChanged, Change{State: state, Identity: identity})
}

// NormalizeIdentifier trims surrounding whitespace and lowercases anything
// that looks like an email. Usernames keep their case.
func NormalizeIdentifier(identifier string) string {
	identifier = strings.TrimSpace(identifier)
	if strings.Contains(identifier, "@") {
		identifier = strings.ToLower(identifier)
	}
	return identifier
}

// Login authenticates against the storefront backend. The attempt is bounded
// by the configured hard timeout; a hanging backend resolves to a failed
// login, never a pending session. A failed attempt always leaves the store
// anonymous, even if a previous attempt had succeeded.
func (s *Store) Login(ctx context.Context, identifier, password string) Result {
	if !s.beginAttempt() {
		return Result{Success: false, Message: "A sign in attempt is already in progress"}
	}
	defer s.endAttempt()

	ctx, cancel := context.WithTimeout(ctx, s.loginTimeout)
	defer cancel()

	resp, err := s.api.Login(ctx, NormalizeIdentifier(identifier), password)
	if err != nil {
		s.transition(StateAnonymous, nil)
		return failureResult(err, "Unable to sign in right now, please try again")
	}

	identity := Establish(resp.User)
	s.persistAuthToken(ctx, resp.Token)
	s.transition(StateAuthenticated, identity)
	log.Success("customer session established for %s", identity.Username)
	return Result{Success: true, Message: "Signed in", User: identity}
}

// Signup creates the account upstream and establishes the session the same
// way a login would.
func (s *Store) Signup(ctx context.Context, username, email, password string) Result {
	if !s.beginAttempt() {
		return Result{Success: false, Message: "A sign up attempt is already in progress"}
	}
	defer s.endAttempt()

	ctx, cancel := context.WithTimeout(ctx, s.loginTimeout)
	defer cancel()

	req := shopapi.SignupRequest{
		Username: strings.TrimSpace(username),
		Email:    NormalizeIdentifier(email),
		Password: password,
	}
	resp, err := s.api.Signup(ctx, req)
	if err != nil {
		s.transition(StateAnonymous, nil)
		return failureResult(err, "Unable to create the account right now, please try again")
	}

	identity := Establish(resp.User)
	s.persistAuthToken(ctx, resp.Token)
	s.transition(StateAuthenticated, identity)
	log.Success("customer account created for %s", identity.Username)
	return Result{Success: true, Message: "Account created", User: identity}
}

// Logout invalidates the remote session best-effort and clears local state
// unconditionally: a failed remote call must never leave the client silently
// signed in. Bumping the generation invalidates any session check already in
// flight, so its response cannot re-hydrate the identity afterwards.
func (s *Store) Logout(ctx context.Context) Result {
	s.mu.Lock()
	s.gen++
	s.mu.Unlock()

	if err := s.api.Logout(ctx); err != nil {
		log.Warn("remote logout failed, clearing local session anyway: %v", err)
	}
	if err := s.devices.ClearAuthToken(ctx, s.deviceID); err != nil {
		log.Warn("failed to clear persisted auth token: %v", err)
	}

	s.transition(StateAnonymous, nil)
	return Result{Success: true, Message: "Signed out"}
}

// CheckSession asks the backend who the current cookie session belongs to,
// carrying the persisted bearer token so a session survives a restart of this
// process. Any failure (401, network, timeout) silently resolves to
// anonymous; absence of a session is a normal state, not an error. A check
// that was overtaken by a logout discards its outcome.
func (s *Store) CheckSession(ctx context.Context) {
	defer s.markReady()

	s.mu.Lock()
	s.state = StateChecking
	gen := s.gen
	s.mu.Unlock()

	bearer, err := s.devices.AuthToken(ctx, s.deviceID)
	if err != nil {
		log.Debug("auth token lookup failed: %v", err)
		bearer = ""
	}

	user, err := s.api.Me(ctx, bearer)
	if err != nil {
		if !errors.Is(err, shopapi.ErrUnauthorized) {
			log.Debug("session check failed: %v", err)
		}
		s.transitionIfCurrent(gen, StateAnonymous, nil)
		return
	}

	s.transitionIfCurrent(gen, StateAuthenticated, Establish(user))
}

// transitionIfCurrent applies the transition only when no logout has happened
// since gen was read. A stale check resolves to a no-op.
func (s *Store) transitionIfCurrent(gen uint64, state State, identity *models.Identity) {
	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return
	}
	s.state = state
	s.identity = identity
	s.mu.Unlock()

	s.bus.EmitSync(events.TopicSessionChanged, Change{State: state, Identity: identity})
}

// persistAuthToken mirrors the optional customer bearer token. The channel
// stays cookie-credentialed either way; a token is only stored when issued.
func (s *Store) persistAuthToken(ctx context.Context, token string) {
	if token == "" {
		return
	}
	if err := s.devices.SetAuthToken(ctx, s.deviceID, token); err != nil {
		log.Warn("failed to persist auth token: %v", err)
	}
}

func failureResult(err error, fallback string) Result {
	if errors.Is(err, shopapi.ErrBadCredentials) {
		return Result{Success: false, Message: err.Error()}
	}
	return Result{Success: false, Message: fallback}
}

// Establish maps the wire identity to the session identity: the tier is
// resolved here, once, and the permission set attached here is the only one
// any later check reads. An unrecognized role resolves fail-closed to an
// empty capability set.
func Establish(user *shopapi.AuthUser) *models.Identity {
	role := models.Role(user.Role)

	identity := &models.Identity{
		ID:           user.ID,
		Username:     user.Username,
		Email:        user.Email,
		Role:         role,
		IsAdmin:      user.IsAdmin,
		Subscription: models.SubscriptionStatus(user.SubscriptionStatus),
	}

	if user.BusinessInfo != nil {
		identity.Business = &models.BusinessInfo{
			Name:           user.BusinessInfo.Name,
			OwnerName:      user.BusinessInfo.OwnerName,
			Phone:          user.BusinessInfo.Phone,
			NextPaymentDue: user.BusinessInfo.NextPaymentDue,
		}
	}

	if !models.IsValidRole(role) {
		identity.Tier = models.TierCustomer
		identity.Permissions = nil
		return identity
	}

	identity.Tier = models.ResolveTier(role, user.IsAdmin)
	identity.Permissions = authz.ResolvePermissions(identity.Tier)
	return identity
}
