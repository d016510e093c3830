package models

import (
	"time"
)

// Permission grants a set of actions on one resource. Absence of a resource
// entry means denied; there is no implicit grant anywhere.
type Permission struct {
	Resource string   `json:"resource"`
	Actions  []string `json:"actions"`
}

// Allows reports whether the action is present on this entry.
func (p Permission) Allows(action string) bool {
	for _, a := range p.Actions {
		if a == action {
			return true
		}
	}
	return false
}

// BusinessInfo is attached to business-owner identities.
type BusinessInfo struct {
	Name           string    `json:"name"`
	OwnerName      string    `json:"ownerName"`
	Phone          string    `json:"phone,omitempty"`
	NextPaymentDue time.Time `json:"nextPaymentDue,omitempty"`
}

// Identity is the authenticated actor as the gateway sees it. Role and
// IsAdmin are kept verbatim for upstream compatibility; Tier and Permissions
// are derived once when the session is established and are the only fields
// the gates consult.
type Identity struct {
	ID           string             `json:"id"`
	Username     string             `json:"username"`
	Email        string             `json:"email"`
	Role         Role               `json:"role"`
	IsAdmin      bool               `json:"isAdmin"`
	Tier         AccessTier         `json:"tier"`
	Subscription SubscriptionStatus `json:"subscriptionStatus,omitempty"`
	Permissions  []Permission       `json:"permissions,omitempty"`
	Business     *BusinessInfo      `json:"businessInfo,omitempty"`
}

// IsSuperAdmin is the strict conjunction: role "admin" AND the admin flag.
// After tier resolution that is exactly TierSuperAdmin.
func (i *Identity) IsSuperAdmin() bool {
	return i != nil && i.Tier == TierSuperAdmin
}

// Elevated reports whether the loose admin gate admits this identity:
// the admin flag, regardless of role, OR role "admin", regardless of the
// flag. Deliberately weaker than IsSuperAdmin; the asymmetry is policy.
func (i *Identity) Elevated() bool {
	return i != nil && (i.IsAdmin || i.Role == RoleAdmin)
}

// HasCorporateAccess gates the corporate step-up area; same disjunction as
// Elevated, named for the flow that consumes it.
func (i *Identity) HasCorporateAccess() bool {
	return i.Elevated()
}

// Can checks the identity's attached permission set. Fail-closed: nil
// identity, empty set or missing resource all deny.
func (i *Identity) Can(resource, action string) bool {
	if i == nil {
		return false
	}
	for _, p := range i.Permissions {
		if p.Resource == resource && p.Allows(action) {
			return true
		}
	}
	return false
}
