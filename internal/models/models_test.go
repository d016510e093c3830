package models_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"emberfront/internal/models"
)

func TestResolveTier(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		role    models.Role
		isAdmin bool
		want    models.AccessTier
	}{
		{"admin role with flag is super admin", models.RoleAdmin, true, models.TierSuperAdmin},
		{"admin role without flag is business owner", models.RoleAdmin, false, models.TierBusinessOwner},
		{"manager ignores the flag", models.RoleManager, true, models.TierManager},
		{"manager without flag", models.RoleManager, false, models.TierManager},
		{"support ignores the flag", models.RoleSupport, true, models.TierSupport},
		{"viewer", models.RoleViewer, false, models.TierViewer},
		{"customer", models.RoleCustomer, false, models.TierCustomer},
		{"unknown role falls back to customer", models.Role("auditor"), false, models.TierCustomer},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, models.ResolveTier(tt.role, tt.isAdmin))
		})
	}
}

func TestIsSuperAdminRequiresBothAxes(t *testing.T) {
	t.Parallel()

	both := &models.Identity{Role: models.RoleAdmin, IsAdmin: true, Tier: models.ResolveTier(models.RoleAdmin, true)}
	roleOnly := &models.Identity{Role: models.RoleAdmin, IsAdmin: false, Tier: models.ResolveTier(models.RoleAdmin, false)}
	flagOnly := &models.Identity{Role: models.RoleManager, IsAdmin: true, Tier: models.ResolveTier(models.RoleManager, true)}

	require.True(t, both.IsSuperAdmin())
	require.False(t, roleOnly.IsSuperAdmin())
	require.False(t, flagOnly.IsSuperAdmin())

	var nilIdentity *models.Identity
	require.False(t, nilIdentity.IsSuperAdmin())
}

func TestElevatedIsDisjunctive(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		role    models.Role
		isAdmin bool
		want    bool
	}{
		{"flag alone elevates", models.RoleCustomer, true, true},
		{"admin role alone elevates", models.RoleAdmin, false, true},
		{"both elevate", models.RoleAdmin, true, true},
		{"neither does not", models.RoleManager, false, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			identity := &models.Identity{Role: tt.role, IsAdmin: tt.isAdmin}
			require.Equal(t, tt.want, identity.Elevated())
			require.Equal(t, tt.want, identity.HasCorporateAccess())
		})
	}

	var nilIdentity *models.Identity
	require.False(t, nilIdentity.Elevated())
}

func TestIdentityCanFailsClosed(t *testing.T) {
	t.Parallel()

	identity := &models.Identity{
		Permissions: []models.Permission{
			{Resource: "orders", Actions: []string{"read"}},
			{Resource: "orders", Actions: []string{"update"}},
		},
	}

	// Entries for the same resource are additive; a later entry must not be
	// shadowed by an earlier one.
	require.True(t, identity.Can("orders", "read"))
	require.True(t, identity.Can("orders", "update"))
	require.False(t, identity.Can("orders", "delete"))
	require.False(t, identity.Can("products", "read"))

	empty := &models.Identity{}
	require.False(t, empty.Can("orders", "read"))

	var nilIdentity *models.Identity
	require.False(t, nilIdentity.Can("orders", "read"))
}

func TestPermissionAllows(t *testing.T) {
	t.Parallel()

	p := models.Permission{Resource: "products", Actions: []string{"read", "create"}}
	require.True(t, p.Allows("read"))
	require.False(t, p.Allows("delete"))
	require.False(t, models.Permission{}.Allows("read"))
}
