package roles

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mahesh42646/SkylithAdmin-sub001/internal/rbac"
)

type memoryRolesRepo struct {
	roles    map[int64]Role
	subRoles map[int64]SubRole
	nextID   int64
}

func newMemoryRolesRepo() *memoryRolesRepo {
	return &memoryRolesRepo{roles: make(map[int64]Role), subRoles: make(map[int64]SubRole)}
}

func (r *memoryRolesRepo) next() int64 {
	r.nextID++
	return r.nextID
}

func (r *memoryRolesRepo) CreateRole(ctx context.Context, name, displayName string, permissions []string) (Role, error) {
	for _, existing := range r.roles {
		if strings.EqualFold(existing.Name, name) {
			return Role{}, ErrDuplicateRole
		}
	}
	role := Role{ID: r.next(), Name: name, DisplayName: displayName, DefaultPermissions: permissions, IsActive: true}
	r.roles[role.ID] = role
	return role, nil
}

func (r *memoryRolesRepo) GetRole(ctx context.Context, id int64) (Role, error) {
	role, ok := r.roles[id]
	if !ok {
		return Role{}, ErrNotFound
	}
	for _, sr := range r.subRoles {
		if sr.RoleID == id {
			role.SubRoles = append(role.SubRoles, sr)
		}
	}
	return role, nil
}

func (r *memoryRolesRepo) GetRoleByName(ctx context.Context, name string) (Role, error) {
	for id, role := range r.roles {
		if strings.EqualFold(role.Name, name) {
			return r.GetRole(ctx, id)
		}
	}
	return Role{}, ErrNotFound
}

func (r *memoryRolesRepo) ListRoles(ctx context.Context) ([]Role, error) {
	out := make([]Role, 0, len(r.roles))
	for id := range r.roles {
		role, _ := r.GetRole(ctx, id)
		out = append(out, role)
	}
	return out, nil
}

func (r *memoryRolesRepo) AddSubRole(ctx context.Context, roleID int64, name, description string, permissions []string) (SubRole, error) {
	if _, ok := r.roles[roleID]; !ok {
		return SubRole{}, ErrNotFound
	}
	sr := SubRole{ID: r.next(), RoleID: roleID, Name: name, Description: description, Permissions: permissions}
	r.subRoles[sr.ID] = sr
	return sr, nil
}

func (r *memoryRolesRepo) DeleteSubRole(ctx context.Context, roleID, subRoleID int64) error {
	sr, ok := r.subRoles[subRoleID]
	if !ok || sr.RoleID != roleID {
		return ErrSubRoleNotFound
	}
	delete(r.subRoles, subRoleID)
	return nil
}

func (r *memoryRolesRepo) DeactivateRole(ctx context.Context, id int64) error {
	role, ok := r.roles[id]
	if !ok {
		return ErrNotFound
	}
	role.IsActive = false
	r.roles[id] = role
	return nil
}

type recordingRecomputer struct {
	roleCalls    []int64
	removalCalls [][2]int64
}

func (rc *recordingRecomputer) RecomputeForRole(ctx context.Context, roleID int64) error {
	rc.roleCalls = append(rc.roleCalls, roleID)
	return nil
}

func (rc *recordingRecomputer) RecomputeForSubRoleRemoval(ctx context.Context, roleID, subRoleID int64) error {
	rc.removalCalls = append(rc.removalCalls, [2]int64{roleID, subRoleID})
	return nil
}

func newTestService() (*Service, *memoryRolesRepo, *recordingRecomputer) {
	repo := newMemoryRolesRepo()
	recompute := &recordingRecomputer{}
	return NewService(repo, recompute, nil, nil), repo, recompute
}

func TestCreateRoleNormalizesAndDefaultsDisplayName(t *testing.T) {
	svc, _, _ := newTestService()

	role, err := svc.CreateRole(context.Background(), 1, CreateRoleInput{
		Name:        "  Shift Manager ",
		Permissions: []string{rbac.PermManageLeaves, rbac.PermViewLeaves},
	})
	require.NoError(t, err)
	require.Equal(t, "shift_manager", role.Name)
	require.Equal(t, "Shift Manager", role.DisplayName)
	require.True(t, role.IsActive)
}

func TestCreateRoleDuplicateNameCaseInsensitive(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.CreateRole(ctx, 1, CreateRoleInput{Name: "management", Permissions: []string{rbac.PermManageLeaves}})
	require.NoError(t, err)

	_, err = svc.CreateRole(ctx, 1, CreateRoleInput{Name: "MANAGEMENT", Permissions: []string{rbac.PermViewLeaves}})
	require.ErrorIs(t, err, ErrDuplicateRole)
}

func TestCreateRoleRejectsUncataloguedPermission(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.CreateRole(context.Background(), 1, CreateRoleInput{
		Name:        "auditor",
		Permissions: []string{"launch_rockets"},
	})
	require.ErrorIs(t, err, ErrInvalidPermission)
}

func TestAddSubRoleValidatesParentAndPermissions(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	role, err := svc.CreateRole(ctx, 1, CreateRoleInput{Name: "team_member", Permissions: rbac.DefaultsFor(rbac.RoleTeamMember)})
	require.NoError(t, err)

	sr, err := svc.AddSubRole(ctx, 1, role.ID, AddSubRoleInput{
		Name:        "Team Lead",
		Permissions: []string{rbac.PermViewAnalytics},
	})
	require.NoError(t, err)
	require.Equal(t, []string{rbac.PermViewAnalytics}, sr.Permissions)

	_, err = svc.AddSubRole(ctx, 1, role.ID+99, AddSubRoleInput{Name: "Ghost"})
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.AddSubRole(ctx, 1, role.ID, AddSubRoleInput{Name: "Bad", Permissions: []string{"nope"}})
	require.ErrorIs(t, err, ErrInvalidPermission)
}

func TestDeleteSubRoleTriggersRevocationRecompute(t *testing.T) {
	svc, _, recompute := newTestService()
	ctx := context.Background()

	role, err := svc.CreateRole(ctx, 1, CreateRoleInput{Name: "team_member", Permissions: rbac.DefaultsFor(rbac.RoleTeamMember)})
	require.NoError(t, err)
	sr, err := svc.AddSubRole(ctx, 1, role.ID, AddSubRoleInput{Name: "Team Lead", Permissions: []string{rbac.PermViewAnalytics}})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteSubRole(ctx, 1, role.ID, sr.ID))
	require.Equal(t, [][2]int64{{role.ID, sr.ID}}, recompute.removalCalls)

	// Second delete no longer resolves under the parent.
	err = svc.DeleteSubRole(ctx, 1, role.ID, sr.ID)
	require.ErrorIs(t, err, ErrSubRoleNotFound)
}

func TestDeleteSubRoleWrongParent(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	roleA, err := svc.CreateRole(ctx, 1, CreateRoleInput{Name: "role_a", Permissions: []string{rbac.PermViewLeaves}})
	require.NoError(t, err)
	roleB, err := svc.CreateRole(ctx, 1, CreateRoleInput{Name: "role_b", Permissions: []string{rbac.PermViewLeaves}})
	require.NoError(t, err)
	sr, err := svc.AddSubRole(ctx, 1, roleA.ID, AddSubRoleInput{Name: "Lead"})
	require.NoError(t, err)

	err = svc.DeleteSubRole(ctx, 1, roleB.ID, sr.ID)
	require.ErrorIs(t, err, ErrSubRoleNotFound)
}

func TestDeactivateRole(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	role, err := svc.CreateRole(ctx, 1, CreateRoleInput{Name: "management", Permissions: rbac.DefaultsFor(rbac.RoleManagement)})
	require.NoError(t, err)

	require.NoError(t, svc.DeactivateRole(ctx, 1, role.ID))
	stored, err := repo.GetRole(ctx, role.ID)
	require.NoError(t, err)
	require.False(t, stored.IsActive)

	require.ErrorIs(t, svc.DeactivateRole(ctx, 1, role.ID+99), ErrNotFound)
}

func TestSeedBuiltinRolesIsIdempotent(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	require.NoError(t, svc.SeedBuiltinRoles(ctx))
	require.Len(t, repo.roles, len(rbac.BuiltinRoles()))

	require.NoError(t, svc.SeedBuiltinRoles(ctx))
	require.Len(t, repo.roles, len(rbac.BuiltinRoles()))

	admin, err := repo.GetRoleByName(ctx, rbac.RoleAdmin)
	require.NoError(t, err)
	require.ElementsMatch(t, rbac.DefaultsFor(rbac.RoleAdmin), admin.DefaultPermissions)
}
