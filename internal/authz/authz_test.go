package authz_test

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"emberfront/internal/authz"
	"emberfront/internal/models"
)

func TestCanTruthTable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		tier     models.AccessTier
		resource string
		action   string
		want     bool
	}{
		{"customer reads products", models.TierCustomer, authz.ResourceProducts, authz.ActionRead, true},
		{"customer cannot delete products", models.TierCustomer, authz.ResourceProducts, authz.ActionDelete, false},
		{"customer cannot see analytics", models.TierCustomer, authz.ResourceAnalytics, authz.ActionRead, false},
		{"viewer reads analytics", models.TierViewer, authz.ResourceAnalytics, authz.ActionRead, true},
		{"viewer cannot update orders", models.TierViewer, authz.ResourceOrders, authz.ActionUpdate, false},
		{"support updates orders", models.TierSupport, authz.ResourceOrders, authz.ActionUpdate, true},
		{"support reads customers", models.TierSupport, authz.ResourceCustomers, authz.ActionRead, true},
		{"support cannot create products", models.TierSupport, authz.ResourceProducts, authz.ActionCreate, false},
		{"manager creates products", models.TierManager, authz.ResourceProducts, authz.ActionCreate, true},
		{"manager cannot manage settings", models.TierManager, authz.ResourceSettings, authz.ActionManage, false},
		{"business owner manages team", models.TierBusinessOwner, authz.ResourceTeamManagement, authz.ActionManage, true},
		{"business owner cannot touch the platform", models.TierBusinessOwner, authz.ResourcePlatform, authz.ActionRead, false},
		{"business owner cannot manage admins", models.TierBusinessOwner, authz.ResourceAdmins, authz.ActionManage, false},
		{"super admin manages the platform", models.TierSuperAdmin, authz.ResourcePlatform, authz.ActionManage, true},
		{"super admin manages admins", models.TierSuperAdmin, authz.ResourceAdmins, authz.ActionManage, true},
		{"unknown tier denies", models.AccessTier("AUDITOR"), authz.ResourceProducts, authz.ActionRead, false},
		{"unknown resource denies", models.TierSuperAdmin, "warehouses", authz.ActionRead, false},
		{"unknown action denies", models.TierSuperAdmin, authz.ResourceProducts, "export", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, authz.Can(tt.tier, tt.resource, tt.action))
		})
	}
}

// Each tier must keep every capability of the tier it extends; the chain only
// ever adds.
func TestTierChainIsMonotonic(t *testing.T) {
	t.Parallel()

	chain := []models.AccessTier{
		models.TierCustomer,
		models.TierViewer,
		models.TierSupport,
		models.TierManager,
		models.TierBusinessOwner,
		models.TierSuperAdmin,
	}

	for i := 1; i < len(chain); i++ {
		lower, higher := chain[i-1], chain[i]
		for _, perm := range authz.ResolvePermissions(lower) {
			for _, action := range perm.Actions {
				require.True(t, authz.Can(higher, perm.Resource, action),
					"%s should inherit %s:%s from %s", higher, perm.Resource, action, lower)
			}
		}
	}
}

func TestResolvePermissionsStable(t *testing.T) {
	t.Parallel()

	first := authz.ResolvePermissions(models.TierBusinessOwner)
	second := authz.ResolvePermissions(models.TierBusinessOwner)
	require.Equal(t, first, second)

	resources := make([]string, 0, len(first))
	for _, perm := range first {
		resources = append(resources, perm.Resource)
	}
	require.True(t, sort.StringsAreSorted(resources))

	require.Nil(t, authz.ResolvePermissions(models.AccessTier("AUDITOR")))
}

func TestResolvePermissionsMatchesCan(t *testing.T) {
	t.Parallel()

	for _, perm := range authz.ResolvePermissions(models.TierSuperAdmin) {
		for _, action := range perm.Actions {
			require.True(t, authz.Can(models.TierSuperAdmin, perm.Resource, action))
		}
	}
}

func TestTierTemplate(t *testing.T) {
	t.Parallel()

	tmpl := authz.TierTemplate(models.TierCustomer)
	require.Equal(t, []string{authz.ActionRead}, tmpl[authz.ResourceProducts])
	require.NotContains(t, tmpl, authz.ResourcePlatform)

	require.Nil(t, authz.TierTemplate(models.AccessTier("AUDITOR")))
}
