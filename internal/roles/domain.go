package roles

import (
	"fmt"
	"time"

	"github.com/mahesh42646/SkylithAdmin-sub001/internal/platform/httpx"
)

// Role is a coarse principal category owning a default permission set and an
// ordered sequence of sub-roles. Sub-roles cannot outlive their parent.
type Role struct {
	ID                 int64
	Name               string
	DisplayName        string
	DefaultPermissions []string
	IsActive           bool
	SubRoles           []SubRole
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// SubRole is a finer specialization under exactly one parent role. Its
// permission set is independently assigned, not inherited from the parent.
type SubRole struct {
	ID          int64
	RoleID      int64
	Name        string
	Description string
	Permissions []string
	Position    int
	CreatedAt   time.Time
}

// Sentinel outcomes surfaced to callers as distinguishable errors.
var (
	ErrNotFound          = fmt.Errorf("%w: role", httpx.ErrNotFound)
	ErrSubRoleNotFound   = fmt.Errorf("%w: sub-role", httpx.ErrNotFound)
	ErrDuplicateRole     = fmt.Errorf("%w: role name already exists", httpx.ErrDuplicate)
	ErrInvalidPermission = fmt.Errorf("%w: permission not in catalog", httpx.ErrValidation)
	ErrNameRequired      = fmt.Errorf("%w: name required", httpx.ErrValidation)
)
