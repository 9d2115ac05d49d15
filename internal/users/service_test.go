package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mahesh42646/SkylithAdmin-sub001/internal/rbac"
	"github.com/mahesh42646/SkylithAdmin-sub001/internal/roles"
)

type memoryUsersRepo struct {
	users map[int64]User
}

func newMemoryUsersRepo() *memoryUsersRepo {
	return &memoryUsersRepo{users: make(map[int64]User)}
}

func (r *memoryUsersRepo) GetUser(ctx context.Context, id int64) (User, error) {
	u, ok := r.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (r *memoryUsersRepo) ListUsers(ctx context.Context) ([]User, error) {
	out := make([]User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, nil
}

func (r *memoryUsersRepo) ListActiveIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	for id, u := range r.users {
		if u.IsActive {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r *memoryUsersRepo) ListIDsByRole(ctx context.Context, roleID int64) ([]int64, error) {
	var ids []int64
	for id, u := range r.users {
		if u.RoleID == roleID {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r *memoryUsersRepo) ListIDsBySubRole(ctx context.Context, subRoleID int64) ([]int64, error) {
	var ids []int64
	for id, u := range r.users {
		if u.SubRoleID != nil && *u.SubRoleID == subRoleID {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r *memoryUsersRepo) SetAssignment(ctx context.Context, userID, roleID int64, subRoleID *int64, permissions []string) error {
	u, ok := r.users[userID]
	if !ok {
		return ErrNotFound
	}
	u.RoleID = roleID
	u.SubRoleID = subRoleID
	u.Permissions = permissions
	r.users[userID] = u
	return nil
}

func (r *memoryUsersRepo) SetActive(ctx context.Context, userID int64, active bool) error {
	u, ok := r.users[userID]
	if !ok {
		return ErrNotFound
	}
	u.IsActive = active
	r.users[userID] = u
	return nil
}

type memoryRolesPort struct {
	roles map[int64]roles.Role
}

func (p *memoryRolesPort) GetRole(ctx context.Context, id int64) (roles.Role, error) {
	role, ok := p.roles[id]
	if !ok {
		return roles.Role{}, roles.ErrNotFound
	}
	return role, nil
}

func fixtureRolesPort() *memoryRolesPort {
	return &memoryRolesPort{roles: map[int64]roles.Role{
		1: {
			ID:                 1,
			Name:               rbac.RoleTeamMember,
			IsActive:           true,
			DefaultPermissions: rbac.DefaultsFor(rbac.RoleTeamMember),
			SubRoles: []roles.SubRole{
				{ID: 10, RoleID: 1, Name: "Team Lead", Permissions: []string{rbac.PermViewAnalytics}},
			},
		},
		2: {
			ID:                 2,
			Name:               rbac.RoleManagement,
			IsActive:           true,
			DefaultPermissions: rbac.DefaultsFor(rbac.RoleManagement),
		},
	}}
}

func TestAssignRoleMaterializesUnion(t *testing.T) {
	repo := newMemoryUsersRepo()
	repo.users[5] = User{ID: 5, Email: "lead@skylith.local", RoleID: 1, IsActive: true}
	svc := NewService(repo, fixtureRolesPort(), nil, nil)
	ctx := context.Background()

	subRoleID := int64(10)
	require.NoError(t, svc.AssignRole(ctx, 5, 1, &subRoleID))

	u, err := repo.GetUser(ctx, 5)
	require.NoError(t, err)
	require.ElementsMatch(t, append(rbac.DefaultsFor(rbac.RoleTeamMember), rbac.PermViewAnalytics), u.Permissions)
}

func TestAssignRoleRejectsForeignSubRole(t *testing.T) {
	repo := newMemoryUsersRepo()
	repo.users[5] = User{ID: 5, RoleID: 1, IsActive: true}
	svc := NewService(repo, fixtureRolesPort(), nil, nil)

	subRoleID := int64(10) // belongs to role 1, not role 2
	err := svc.AssignRole(context.Background(), 5, 2, &subRoleID)
	require.ErrorIs(t, err, ErrSubRoleMismatch)
}

func TestAssignRoleHonorsCustomOverride(t *testing.T) {
	repo := newMemoryUsersRepo()
	repo.users[5] = User{ID: 5, RoleID: 1, IsActive: true, CustomPermissions: []string{rbac.PermViewCalendar}}
	svc := NewService(repo, fixtureRolesPort(), nil, nil)

	require.NoError(t, svc.AssignRole(context.Background(), 5, 2, nil))
	u, _ := repo.GetUser(context.Background(), 5)
	require.Equal(t, []string{rbac.PermViewCalendar}, u.Permissions)
}

func TestRecomputeForSubRoleRemovalRevokesGrants(t *testing.T) {
	repo := newMemoryUsersRepo()
	subRoleID := int64(10)
	repo.users[5] = User{
		ID:          5,
		RoleID:      1,
		SubRoleID:   &subRoleID,
		Permissions: append(rbac.DefaultsFor(rbac.RoleTeamMember), rbac.PermViewAnalytics),
		IsActive:    true,
	}
	svc := NewService(repo, fixtureRolesPort(), nil, nil)
	ctx := context.Background()

	require.NoError(t, svc.RecomputeForSubRoleRemoval(ctx, 1, subRoleID))

	u, err := repo.GetUser(ctx, 5)
	require.NoError(t, err)
	require.Nil(t, u.SubRoleID)
	require.ElementsMatch(t, rbac.DefaultsFor(rbac.RoleTeamMember), u.Permissions)
	require.NotContains(t, u.Permissions, rbac.PermViewAnalytics)
}

func TestRecomputeForSubRoleRemovalNoHoldersIsNoop(t *testing.T) {
	repo := newMemoryUsersRepo()
	repo.users[5] = User{ID: 5, RoleID: 1, Permissions: rbac.DefaultsFor(rbac.RoleTeamMember), IsActive: true}
	svc := NewService(repo, fixtureRolesPort(), nil, nil)

	// Deleting a sub-role nobody holds must not disturb anyone.
	require.NoError(t, svc.RecomputeForSubRoleRemoval(context.Background(), 1, 999))
	u, _ := repo.GetUser(context.Background(), 5)
	require.ElementsMatch(t, rbac.DefaultsFor(rbac.RoleTeamMember), u.Permissions)
}

func TestResolvePrincipalSnapshot(t *testing.T) {
	repo := newMemoryUsersRepo()
	repo.users[5] = User{
		ID:          5,
		RoleID:      2,
		RoleName:    rbac.RoleManagement,
		RoleActive:  true,
		Permissions: rbac.DefaultsFor(rbac.RoleManagement),
		IsActive:    true,
	}
	svc := NewService(repo, fixtureRolesPort(), nil, nil)

	principal, err := svc.ResolvePrincipal(context.Background(), 5)
	require.NoError(t, err)
	require.Equal(t, int64(5), principal.UserID)
	require.Equal(t, rbac.RoleManagement, principal.RoleName)
	require.Equal(t, rbac.Allow, rbac.Authorize(principal, rbac.RequirePermission(rbac.PermManageLeaves)))

	_, err = svc.ResolvePrincipal(context.Background(), 404)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeactivatedRoleDeniesThroughPrincipal(t *testing.T) {
	repo := newMemoryUsersRepo()
	repo.users[5] = User{
		ID:          5,
		RoleID:      2,
		RoleName:    rbac.RoleManagement,
		RoleActive:  false,
		Permissions: rbac.DefaultsFor(rbac.RoleManagement),
		IsActive:    true,
	}
	svc := NewService(repo, fixtureRolesPort(), nil, nil)

	principal, err := svc.ResolvePrincipal(context.Background(), 5)
	require.NoError(t, err)
	require.Equal(t, rbac.Deny, rbac.Authorize(principal, rbac.RequirePermission(rbac.PermManageLeaves)))
}
