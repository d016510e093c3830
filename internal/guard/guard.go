package guard

import (
	"strings"

	"emberfront/internal/models"
	"emberfront/internal/session"
)

// Requirements are independent gates; every specified gate must pass.
type Requirements struct {
	RequiredRole      models.Role
	RequireAdmin      bool
	RequireSuperAdmin bool
}

type Outcome int

const (
	// OutcomeLoading: the session store has not finished its initial check.
	OutcomeLoading Outcome = iota
	// OutcomeRedirect: anonymous visitor, send home.
	OutcomeRedirect
	// OutcomeDenied: authenticated but failing a gate; Message names it.
	OutcomeDenied
	// OutcomeAllow: every specified gate passed.
	OutcomeAllow
)

type Decision struct {
	Outcome Outcome
	Message string
}

// Decide evaluates the gates in fixed order (loading, authentication, exact
// role, loose admin, strict super admin) and short-circuits on the first
// failure so the caller renders that gate's specific denial. Exactly one
// outcome is produced.
func Decide(state session.State, identity *models.Identity, req Requirements) Decision {
	if state == session.StateUnknown || state == session.StateChecking {
		return Decision{Outcome: OutcomeLoading}
	}

	if state != session.StateAuthenticated || identity == nil {
		return Decision{Outcome: OutcomeRedirect}
	}

	if req.RequiredRole != "" && identity.Role != req.RequiredRole {
		return Decision{Outcome: OutcomeDenied, Message: denialMessage(string(req.RequiredRole))}
	}

	// The loose gate: admin flag regardless of role, OR admin role
	// regardless of flag. Weaker than the super admin conjunction below;
	// that asymmetry is inherited policy, not an accident.
	if req.RequireAdmin && !identity.Elevated() {
		return Decision{Outcome: OutcomeDenied, Message: "Admin Access Required"}
	}

	if req.RequireSuperAdmin && !identity.IsSuperAdmin() {
		return Decision{Outcome: OutcomeDenied, Message: "Super Admin Access Required"}
	}

	return Decision{Outcome: OutcomeAllow}
}

func denialMessage(role string) string {
	if role == "" {
		return "Access Required"
	}
	return strings.ToUpper(role[:1]) + role[1:] + " Access Required"
}
