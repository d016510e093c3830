package models

// Role is the role string served by the upstream storefront API. Together
// with the IsAdmin flag it is the legacy two-axis encoding; nothing outside
// ResolveTier should ever branch on the pair directly.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleManager  Role = "manager"
	RoleSupport  Role = "support"
	RoleViewer   Role = "viewer"
	RoleAdmin    Role = "admin"
)

// IsValidRole checks if a given role is valid
func IsValidRole(role Role) bool {
	switch role {
	case RoleCustomer, RoleManager, RoleSupport, RoleViewer, RoleAdmin:
		return true
	}
	return false
}

// AccessTier is the closed tier enum the gates read. It is resolved exactly
// once, at session establishment, from the upstream (role, isAdmin) pair.
type AccessTier string

const (
	TierCustomer      AccessTier = "CUSTOMER"
	TierViewer        AccessTier = "VIEWER"
	TierSupport       AccessTier = "SUPPORT"
	TierManager       AccessTier = "MANAGER"
	TierBusinessOwner AccessTier = "BUSINESS_OWNER"
	TierSuperAdmin    AccessTier = "SUPER_ADMIN"
)

// ResolveTier collapses the legacy two-axis encoding into one tier:
// role "admin" with the admin flag set is the platform super admin, role
// "admin" without it is a business owner. For every other role the flag does
// not change the tier; it only satisfies the loose admin gate (Elevated).
func ResolveTier(role Role, isAdmin bool) AccessTier {
	switch role {
	case RoleAdmin:
		if isAdmin {
			return TierSuperAdmin
		}
		return TierBusinessOwner
	case RoleManager:
		return TierManager
	case RoleSupport:
		return TierSupport
	case RoleViewer:
		return TierViewer
	default:
		return TierCustomer
	}
}

type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "ACTIVE"
	SubscriptionTrial    SubscriptionStatus = "TRIAL"
	SubscriptionOverdue  SubscriptionStatus = "OVERDUE"
	SubscriptionCanceled SubscriptionStatus = "CANCELED"
)
