package rbac

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func activePrincipal(role string, perms ...string) Principal {
	return Principal{UserID: 7, RoleName: role, RoleActive: true, Permissions: perms}
}

func TestAuthorizePermission(t *testing.T) {
	manager := activePrincipal(RoleManagement, PermManageLeaves, PermViewLeaves)

	require.Equal(t, Allow, Authorize(manager, RequirePermission(PermManageLeaves)))
	require.Equal(t, Deny, Authorize(manager, RequirePermission(PermManageRoles)))
}

func TestAuthorizeDeniesInactiveRole(t *testing.T) {
	p := activePrincipal(RoleManagement, PermManageLeaves)
	p.RoleActive = false

	require.Equal(t, Deny, Authorize(p, RequirePermission(PermManageLeaves)))
	require.Equal(t, Deny, Authorize(p, RequireRole(RoleManagement)))
}

func TestAuthorizeRoleIsStrictEquality(t *testing.T) {
	admin := activePrincipal(RoleAdmin, DefaultsFor(RoleAdmin)...)
	member := activePrincipal(RoleTeamMember, DefaultsFor(RoleTeamMember)...)

	require.Equal(t, Allow, Authorize(admin, RequireRole(RoleAdmin)))
	// No rank comparison in either direction.
	require.Equal(t, Deny, Authorize(admin, RequireRole(RoleTeamMember)))
	require.Equal(t, Deny, Authorize(member, RequireRole(RoleAdmin)))
}

func TestAuthorizeDefaultsOnlyPrincipal(t *testing.T) {
	// No sub-role: evaluation happens purely on the role defaults.
	u := activePrincipal(RoleManagement, DefaultsFor(RoleManagement)...)

	require.Equal(t, Allow, Authorize(u, RequirePermission(PermManageLeaves)))
	require.Equal(t, Deny, Authorize(u, RequirePermission(PermManageRoles)))
}

func TestAuthorizeSubRoleGrants(t *testing.T) {
	// "Team Lead" sub-role under team_member granted view_analytics only.
	subRoleID := int64(3)
	lead := Principal{
		UserID:      11,
		RoleName:    RoleTeamMember,
		RoleActive:  true,
		SubRoleID:   &subRoleID,
		Permissions: append(DefaultsFor(RoleTeamMember), PermViewAnalytics),
	}

	require.Equal(t, Allow, Authorize(lead, RequirePermission(PermViewAnalytics)))
	require.Equal(t, Deny, Authorize(lead, RequirePermission(PermManageLeaves)))
}

func TestDecisionIsValueNotError(t *testing.T) {
	d := Authorize(Principal{}, RequirePermission(PermViewLeaves))
	require.False(t, d.Allowed())
	require.Equal(t, "deny", d.String())
	require.Equal(t, "allow", Allow.String())
}
