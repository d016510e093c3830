package authz

import "emberfront/internal/models"

// template is one tier's grant table. extends names a lower tier whose
// flattened grants are inherited before this tier's grants and revokes are
// applied, so overlapping capability is written once.
type template struct {
	extends models.AccessTier
	grants  map[string][]string
	revokes map[string][]string
}

var crud = []string{ActionRead, ActionCreate, ActionUpdate, ActionDelete}
var full = []string{ActionRead, ActionCreate, ActionUpdate, ActionDelete, ActionManage}

var templates = map[models.AccessTier]template{
	// Storefront customers: browse and follow their own orders.
	models.TierCustomer: {
		grants: map[string][]string{
			ResourceProducts:   {ActionRead},
			ResourceCategories: {ActionRead},
			ResourceOrders:     {ActionRead},
		},
	},

	// Viewer: read-only back office.
	models.TierViewer: {
		extends: models.TierCustomer,
		grants: map[string][]string{
			ResourceAnalytics: {ActionRead},
			ResourceInventory: {ActionRead},
		},
	},

	// Support: order handling plus customer lookup, no catalog changes.
	models.TierSupport: {
		extends: models.TierViewer,
		grants: map[string][]string{
			ResourceOrders:    {ActionUpdate},
			ResourceCustomers: {ActionRead},
		},
	},

	// Manager: runs the catalog and inventory day to day.
	models.TierManager: {
		extends: models.TierSupport,
		grants: map[string][]string{
			ResourceProducts:   {ActionCreate, ActionUpdate, ActionDelete},
			ResourceCategories: {ActionCreate, ActionUpdate},
			ResourceOrders:     {ActionCreate, ActionDelete},
			ResourceInventory:  {ActionCreate, ActionUpdate},
		},
	},

	// Business owner: full authority over their own shop, including staff,
	// but nothing platform-wide.
	models.TierBusinessOwner: {
		extends: models.TierManager,
		grants: map[string][]string{
			ResourceProducts:       full,
			ResourceCategories:     full,
			ResourceOrders:         full,
			ResourceInventory:      full,
			ResourceUsers:          crud,
			ResourceTeamManagement: full,
			ResourceSettings:       {ActionRead, ActionUpdate, ActionManage},
			ResourceAnalytics:      {ActionRead, ActionManage},
		},
	},

	// Super admin: the whole platform, including other admins. Explicitly
	// not reachable by extending the business owner alone.
	models.TierSuperAdmin: {
		extends: models.TierBusinessOwner,
		grants: map[string][]string{
			ResourceUsers:           full,
			ResourceSettings:        full,
			ResourcePlatform:        full,
			ResourceBusinessOwners:  full,
			ResourceAdmins:          full,
			ResourceCustomers:       full,
			ResourceAdminManagement: full,
		},
	},
}
