package roles

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mahesh42646/SkylithAdmin-sub001/internal/rbac"
	"github.com/mahesh42646/SkylithAdmin-sub001/internal/shared"
)

// RepositoryPort defines data access methods for roles.
type RepositoryPort interface {
	CreateRole(ctx context.Context, name, displayName string, permissions []string) (Role, error)
	GetRole(ctx context.Context, id int64) (Role, error)
	GetRoleByName(ctx context.Context, name string) (Role, error)
	ListRoles(ctx context.Context) ([]Role, error)
	AddSubRole(ctx context.Context, roleID int64, name, description string, permissions []string) (SubRole, error)
	DeleteSubRole(ctx context.Context, roleID, subRoleID int64) error
	DeactivateRole(ctx context.Context, id int64) error
}

// EffectiveRecomputer re-resolves stored effective permission sets after a
// role or sub-role mutation. Revocation is an explicit step, not a side
// effect of deletion.
type EffectiveRecomputer interface {
	RecomputeForRole(ctx context.Context, roleID int64) error
	RecomputeForSubRoleRemoval(ctx context.Context, roleID, subRoleID int64) error
}

// AuditPort records role mutations.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service owns role business rules: catalog validation, name normalization
// and effective-permission recomputation ordering.
type Service struct {
	repo      RepositoryPort
	recompute EffectiveRecomputer
	audit     AuditPort
	logger    *slog.Logger
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, recompute EffectiveRecomputer, audit AuditPort, logger *slog.Logger) *Service {
	return &Service{repo: repo, recompute: recompute, audit: audit, logger: logger}
}

var titleCaser = cases.Title(language.English)

// CreateRoleInput carries role creation fields.
type CreateRoleInput struct {
	Name        string
	DisplayName string
	Permissions []string
}

// CreateRole validates permissions against the catalog, normalizes names and
// persists the role. Duplicate names (case-insensitive) fail with
// ErrDuplicateRole.
func (s *Service) CreateRole(ctx context.Context, actorID int64, input CreateRoleInput) (Role, error) {
	name := normalizeRoleName(input.Name)
	if name == "" {
		return Role{}, ErrNameRequired
	}
	perms, err := validatePermissions(input.Permissions)
	if err != nil {
		return Role{}, err
	}
	displayName := strings.TrimSpace(input.DisplayName)
	if displayName == "" {
		displayName = titleCaser.String(strings.ReplaceAll(name, "_", " "))
	}
	role, err := s.repo.CreateRole(ctx, name, displayName, perms)
	if err != nil {
		return Role{}, err
	}
	s.recordAudit(ctx, actorID, "ROLE_CREATE", role.ID, map[string]any{"name": role.Name})
	return role, nil
}

// GetRole fetches a role by ID.
func (s *Service) GetRole(ctx context.Context, id int64) (Role, error) {
	return s.repo.GetRole(ctx, id)
}

// ListRoles returns all roles.
func (s *Service) ListRoles(ctx context.Context) ([]Role, error) {
	return s.repo.ListRoles(ctx)
}

// AddSubRoleInput carries sub-role creation fields.
type AddSubRoleInput struct {
	Name        string
	Description string
	Permissions []string
}

// AddSubRole attaches a sub-role with an independently chosen permission
// subset to the parent role.
func (s *Service) AddSubRole(ctx context.Context, actorID, roleID int64, input AddSubRoleInput) (SubRole, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return SubRole{}, ErrNameRequired
	}
	perms, err := validatePermissions(input.Permissions)
	if err != nil {
		return SubRole{}, err
	}
	sr, err := s.repo.AddSubRole(ctx, roleID, name, strings.TrimSpace(input.Description), perms)
	if err != nil {
		return SubRole{}, err
	}
	s.recordAudit(ctx, actorID, "SUBROLE_ADD", roleID, map[string]any{"sub_role": sr.Name})
	return sr, nil
}

// DeleteSubRole revokes the sub-role's grants from every holder, then removes
// the row. Revocation runs first because the delete clears sub_role_id on
// holders, which would hide them from the recompute.
func (s *Service) DeleteSubRole(ctx context.Context, actorID, roleID, subRoleID int64) error {
	if err := s.recompute.RecomputeForSubRoleRemoval(ctx, roleID, subRoleID); err != nil {
		return err
	}
	if err := s.repo.DeleteSubRole(ctx, roleID, subRoleID); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "SUBROLE_DELETE", roleID, map[string]any{"sub_role_id": subRoleID})
	return nil
}

// DeactivateRole disables the role. Principals keep the reference but every
// authorization check against an inactive role denies.
func (s *Service) DeactivateRole(ctx context.Context, actorID, roleID int64) error {
	if err := s.repo.DeactivateRole(ctx, roleID); err != nil {
		return err
	}
	// Drop cached principal snapshots so the deactivation takes effect on the
	// next check, not after a cache expiry.
	if err := s.recompute.RecomputeForRole(ctx, roleID); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "ROLE_DEACTIVATE", roleID, nil)
	return nil
}

// SeedBuiltinRoles creates the built-in roles from catalog defaults when
// missing. Existing roles are left untouched.
func (s *Service) SeedBuiltinRoles(ctx context.Context) error {
	for _, name := range rbac.BuiltinRoles() {
		if _, err := s.repo.GetRoleByName(ctx, name); err == nil {
			continue
		}
		if _, err := s.repo.CreateRole(ctx, name, titleCaser.String(strings.ReplaceAll(name, "_", " ")), rbac.DefaultsFor(name)); err != nil && err != ErrDuplicateRole {
			return err
		}
	}
	return nil
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, roleID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	log := shared.AuditLog{ActorID: actorID, Action: action, Entity: "role", EntityID: strconv.FormatInt(roleID, 10), Meta: meta}
	if err := s.audit.Record(ctx, log); err != nil && s.logger != nil {
		s.logger.Warn("record role audit", slog.String("action", action), slog.Any("error", err))
	}
}

func normalizeRoleName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.ReplaceAll(name, " ", "_")
}

func validatePermissions(perms []string) ([]string, error) {
	unique := make([]string, 0, len(perms))
	seen := make(map[string]struct{}, len(perms))
	for _, p := range perms {
		p = strings.TrimSpace(strings.ToLower(p))
		if p == "" {
			continue
		}
		if !rbac.Known(p) {
			return nil, ErrInvalidPermission
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		unique = append(unique, p)
	}
	return unique, nil
}
