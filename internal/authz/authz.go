package authz

import (
	"sort"

	"emberfront/internal/models"
)

// Resources are fixed strings; an unknown resource never grants anything.
const (
	ResourceProducts        = "products"
	ResourceCategories      = "categories"
	ResourceOrders          = "orders"
	ResourceUsers           = "users"
	ResourceAnalytics       = "analytics"
	ResourceSettings        = "settings"
	ResourceAdminManagement = "admin_management"
	ResourceTeamManagement  = "team_management"
	ResourceInventory       = "inventory"
	ResourcePlatform        = "platform"
	ResourceBusinessOwners  = "business_owners"
	ResourceAdmins          = "admins"
	ResourceCustomers       = "customers"
)

const (
	ActionRead   = "read"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionManage = "manage"
)

var allActions = []string{ActionRead, ActionCreate, ActionUpdate, ActionDelete, ActionManage}

// flattened[tier][resource] -> allowed action set, built from the template
// chain at init. Lookups after init are read-only.
var flattened map[models.AccessTier]map[string]map[string]bool

func init() {
	flattened = make(map[models.AccessTier]map[string]map[string]bool, len(templates))
	for tier := range templates {
		flattened[tier] = flatten(tier)
	}
}

func flatten(tier models.AccessTier) map[string]map[string]bool {
	tmpl, ok := templates[tier]
	if !ok {
		return map[string]map[string]bool{}
	}

	var grants map[string]map[string]bool
	if tmpl.extends != "" {
		grants = flatten(tmpl.extends)
	} else {
		grants = map[string]map[string]bool{}
	}

	for resource, actions := range tmpl.grants {
		if grants[resource] == nil {
			grants[resource] = map[string]bool{}
		}
		for _, action := range actions {
			grants[resource][action] = true
		}
	}
	for resource, actions := range tmpl.revokes {
		for _, action := range actions {
			delete(grants[resource], action)
		}
		if len(grants[resource]) == 0 {
			delete(grants, resource)
		}
	}
	return grants
}

// Can resolves (tier, resource, action) against the flattened templates.
// Fail-closed: unknown tier, resource or action all deny.
func Can(tier models.AccessTier, resource, action string) bool {
	grants, ok := flattened[tier]
	if !ok {
		return false
	}
	actions, ok := grants[resource]
	if !ok {
		return false
	}
	return actions[action]
}

// ResolvePermissions materializes a tier's effective capability set. Stores
// call this once at session establishment and attach the result; every later
// check reads only the attached set. Output order is stable.
func ResolvePermissions(tier models.AccessTier) []models.Permission {
	grants, ok := flattened[tier]
	if !ok {
		return nil
	}

	resources := make([]string, 0, len(grants))
	for resource := range grants {
		resources = append(resources, resource)
	}
	sort.Strings(resources)

	perms := make([]models.Permission, 0, len(resources))
	for _, resource := range resources {
		var actions []string
		for _, action := range allActions {
			if grants[resource][action] {
				actions = append(actions, action)
			}
		}
		perms = append(perms, models.Permission{Resource: resource, Actions: actions})
	}
	return perms
}

// TierTemplate reports a tier's grants as resource -> actions, for the admin
// capability endpoint.
func TierTemplate(tier models.AccessTier) map[string][]string {
	grants, ok := flattened[tier]
	if !ok {
		return nil
	}
	out := make(map[string][]string, len(grants))
	for resource, set := range grants {
		var actions []string
		for _, action := range allActions {
			if set[action] {
				actions = append(actions, action)
			}
		}
		out[resource] = actions
	}
	return out
}
