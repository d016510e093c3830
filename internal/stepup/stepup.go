package stepup

import (
	"context"
	"errors"
	"sync"
	"time"

	"emberfront/internal/events"
	"emberfront/internal/models"
	"emberfront/internal/session"
	"emberfront/internal/shopapi"
	console "emberfront/internal/utils/logger"
)

var log = console.New("stepup")

// ErrNotAuthorized is the authorization failure: the submitted credentials
// were valid, the identity behind them just is not corporate. Deliberately
// distinct from a wrong-password failure.
var ErrNotAuthorized = errors.New("corporate access required")

type grant struct {
	identity  *models.Identity
	expiresAt time.Time
}

// Registry holds step-up grants keyed by browsing-session id, in memory
// only. Nothing here is persisted: a reload means a fresh id and therefore a
// fresh challenge, whatever the main session says.
type Registry struct {
	mu     sync.Mutex
	grants map[string]grant

	api     *shopapi.Client
	bus     *events.EventBus
	ttl     time.Duration
	timeout time.Duration
}

func NewRegistry(api *shopapi.Client, bus *events.EventBus, ttl, timeout time.Duration) *Registry {
	return &Registry{
		grants:  make(map[string]grant),
		api:     api,
		bus:     bus,
		ttl:     ttl,
		timeout: timeout,
	}
}

// Status reports whether the browsing session holds a live grant. Unknown
// and expired ids both read as unauthenticated, which is what forces the
// challenge on entry.
func (r *Registry) Status(sid string) (*models.Identity, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.grants[sid]
	if !ok || time.Now().After(g.expiresAt) {
		delete(r.grants, sid)
		return nil, false
	}
	return g.identity, true
}

// Submit verifies a fresh credential pair and, on success, requires
// corporate access before granting. Verification runs through an isolated
// upstream session with its own cookie jar; the customer session store is
// never touched, so whichever account the customer signed in with keeps
// winning everywhere else in the app.
func (r *Registry) Submit(ctx context.Context, sid, email, password string) (*models.Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	iso := r.api.Isolated()
	resp, err := iso.Login(ctx, session.NormalizeIdentifier(email), password)
	if err != nil {
		return nil, err
	}

	identity := session.Establish(resp.User)

	// Drop the throwaway upstream session either way; the grant lives here.
	if err := iso.Logout(ctx); err != nil {
		log.Debug("throwaway step-up session logout failed: %v", err)
	}

	if !identity.HasCorporateAccess() {
		log.Warn("step-up denied for %s: valid credentials, no corporate access", identity.Email)
		return nil, ErrNotAuthorized
	}

	r.mu.Lock()
	r.grants[sid] = grant{identity: identity, expiresAt: time.Now().Add(r.ttl)}
	r.mu.Unlock()

	r.bus.Emit(events.TopicStepUpGranted, identity)
	log.Success("step-up granted for %s", identity.Email)
	return identity, nil
}

// Revoke drops a grant explicitly.
func (r *Registry) Revoke(sid string) {
	r.mu.Lock()
	delete(r.grants, sid)
	r.mu.Unlock()
}

// Sweep removes expired grants and returns how many were dropped.
func (r *Registry) Sweep(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	dropped := 0
	for sid, g := range r.grants {
		if now.After(g.expiresAt) {
			delete(r.grants, sid)
			dropped++
		}
	}
	return dropped
}
