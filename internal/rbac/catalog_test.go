package rbac

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEveryPermissionBelongsToExactlyOneGroup(t *testing.T) {
	seen := make(map[string]string)
	for _, g := range Groups() {
		require.NotEmpty(t, g.Name)
		require.NotEmpty(t, g.Permissions)
		for _, p := range g.Permissions {
			prev, dup := seen[p]
			require.Falsef(t, dup, "permission %s in both %s and %s", p, prev, g.Name)
			seen[p] = g.Name
		}
	}
	require.Len(t, seen, len(AllPermissions()))
}

func TestRoleDefaultsAreSubsetOfCatalog(t *testing.T) {
	for _, role := range BuiltinRoles() {
		for _, p := range DefaultsFor(role) {
			require.Truef(t, Known(p), "role %s grants uncatalogued permission %s", role, p)
		}
	}
}

func TestAdminDefaultsCoverCatalog(t *testing.T) {
	defaults := make(map[string]struct{})
	for _, p := range DefaultsFor(RoleAdmin) {
		defaults[p] = struct{}{}
	}
	for _, p := range AllPermissions() {
		_, ok := defaults[p]
		require.Truef(t, ok, "admin missing %s", p)
	}
}

func TestUnknownRoleHasEmptyDefaults(t *testing.T) {
	require.Empty(t, DefaultsFor("contractor"))
}

func TestKnown(t *testing.T) {
	require.True(t, Known(PermManageLeaves))
	require.False(t, Known("launch_rockets"))
}
