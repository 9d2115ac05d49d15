package users

import (
	"fmt"
	"time"

	"github.com/mahesh42646/SkylithAdmin-sub001/internal/platform/httpx"
)

// User represents a workforce member. Permissions holds the materialized
// effective set, resolved at assignment/update time from the role defaults
// and the optional sub-role grants, unless a per-user override is present.
type User struct {
	ID                int64
	Email             string
	Name              string
	RoleID            int64
	RoleName          string
	RoleActive        bool
	SubRoleID         *int64
	Permissions       []string
	CustomPermissions []string
	IsActive          bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

var (
	ErrNotFound        = fmt.Errorf("%w: user", httpx.ErrNotFound)
	ErrSubRoleMismatch = fmt.Errorf("%w: sub-role does not belong to role", httpx.ErrValidation)
)
