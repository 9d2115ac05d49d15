package users

import (
	"context"
	"log/slog"

	"github.com/mahesh42646/SkylithAdmin-sub001/internal/rbac"
	"github.com/mahesh42646/SkylithAdmin-sub001/internal/roles"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	GetUser(ctx context.Context, id int64) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
	ListActiveIDs(ctx context.Context) ([]int64, error)
	ListIDsByRole(ctx context.Context, roleID int64) ([]int64, error)
	ListIDsBySubRole(ctx context.Context, subRoleID int64) ([]int64, error)
	SetAssignment(ctx context.Context, userID, roleID int64, subRoleID *int64, permissions []string) error
	SetActive(ctx context.Context, userID int64, active bool) error
}

// RolesPort exposes the role store lookups the resolver needs.
type RolesPort interface {
	GetRole(ctx context.Context, id int64) (roles.Role, error)
}

// Service resolves principals and keeps stored effective permission sets in
// step with role and sub-role state. It implements roles.EffectiveRecomputer
// and rbac.PrincipalResolver.
type Service struct {
	repo   RepositoryPort
	roles  RolesPort
	cache  *PrincipalCache
	logger *slog.Logger
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, rolesPort RolesPort, cache *PrincipalCache, logger *slog.Logger) *Service {
	return &Service{repo: repo, roles: rolesPort, cache: cache, logger: logger}
}

// ResolvePrincipal returns a point-in-time snapshot for authorization checks.
func (s *Service) ResolvePrincipal(ctx context.Context, userID int64) (rbac.Principal, error) {
	if cached, ok := s.cache.Get(ctx, userID); ok {
		return cached, nil
	}
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return rbac.Principal{}, err
	}
	principal := rbac.Principal{
		UserID:      user.ID,
		RoleName:    user.RoleName,
		RoleActive:  user.RoleActive,
		SubRoleID:   user.SubRoleID,
		Permissions: user.Permissions,
	}
	s.cache.Set(ctx, principal)
	return principal, nil
}

// ListUsers returns all users.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.ListUsers(ctx)
}

// GetUser fetches one user.
func (s *Service) GetUser(ctx context.Context, id int64) (User, error) {
	return s.repo.GetUser(ctx, id)
}

// ListActiveIDs returns IDs of active users, used by the attendance
// finalizer.
func (s *Service) ListActiveIDs(ctx context.Context) ([]int64, error) {
	return s.repo.ListActiveIDs(ctx)
}

// AssignRole points the user at a role and optional sub-role and materializes
// the effective permission set in the same write.
func (s *Service) AssignRole(ctx context.Context, userID, roleID int64, subRoleID *int64) error {
	role, err := s.roles.GetRole(ctx, roleID)
	if err != nil {
		return err
	}
	var subRole *roles.SubRole
	if subRoleID != nil {
		found := findSubRole(role, *subRoleID)
		if found == nil {
			return ErrSubRoleMismatch
		}
		subRole = found
	}
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	effective := effectiveSet(role, subRole, user.CustomPermissions)
	if err := s.repo.SetAssignment(ctx, userID, roleID, subRoleID, effective); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, userID)
	return nil
}

// SetActive toggles the user's status.
func (s *Service) SetActive(ctx context.Context, userID int64, active bool) error {
	if err := s.repo.SetActive(ctx, userID, active); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, userID)
	return nil
}

// RecomputeForRole re-resolves every holder of the role. Invoked after role
// mutations, including deactivation, so stale snapshots cannot outlive the
// change.
func (s *Service) RecomputeForRole(ctx context.Context, roleID int64) error {
	ids, err := s.repo.ListIDsByRole(ctx, roleID)
	if err != nil {
		return err
	}
	role, err := s.roles.GetRole(ctx, roleID)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := s.recomputeUser(ctx, role, id); err != nil {
			return err
		}
	}
	return nil
}

// RecomputeForSubRoleRemoval revokes the deleted sub-role's grants from every
// user that held it. The sub-role reference is cleared; this is revocation,
// not an error.
func (s *Service) RecomputeForSubRoleRemoval(ctx context.Context, roleID, subRoleID int64) error {
	ids, err := s.repo.ListIDsBySubRole(ctx, subRoleID)
	if err != nil {
		return err
	}
	role, err := s.roles.GetRole(ctx, roleID)
	if err != nil {
		return err
	}
	for _, id := range ids {
		user, err := s.repo.GetUser(ctx, id)
		if err != nil {
			return err
		}
		effective := effectiveSet(role, nil, user.CustomPermissions)
		if err := s.repo.SetAssignment(ctx, id, roleID, nil, effective); err != nil {
			return err
		}
		s.cache.Invalidate(ctx, id)
	}
	return nil
}

func (s *Service) recomputeUser(ctx context.Context, role roles.Role, userID int64) error {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	var subRole *roles.SubRole
	if user.SubRoleID != nil {
		subRole = findSubRole(role, *user.SubRoleID)
	}
	effective := effectiveSet(role, subRole, user.CustomPermissions)
	if err := s.repo.SetAssignment(ctx, userID, role.ID, user.SubRoleID, effective); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, userID)
	return nil
}

// effectiveSet materializes role defaults ∪ sub-role grants, or the per-user
// override when one is present. Sub-role permissions are an independent
// explicit set, not a restriction of the parent defaults.
func effectiveSet(role roles.Role, subRole *roles.SubRole, custom []string) []string {
	if custom != nil {
		return append([]string(nil), custom...)
	}
	seen := make(map[string]struct{}, len(role.DefaultPermissions))
	out := make([]string, 0, len(role.DefaultPermissions))
	for _, p := range role.DefaultPermissions {
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	if subRole != nil {
		for _, p := range subRole.Permissions {
			if _, dup := seen[p]; dup {
				continue
			}
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	return out
}

func findSubRole(role roles.Role, subRoleID int64) *roles.SubRole {
	for i := range role.SubRoles {
		if role.SubRoles[i].ID == subRoleID {
			return &role.SubRoles[i]
		}
	}
	return nil
}
