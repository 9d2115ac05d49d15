package rbac

import "context"

// Principal is a snapshot of the authenticated actor taken at resolution time.
// Authorization decisions are made over this snapshot; callers re-resolve a
// fresh principal when store state may have changed.
type Principal struct {
	UserID      int64
	RoleName    string
	RoleActive  bool
	SubRoleID   *int64
	Permissions []string
}

// HasPermission reports whether the effective set contains perm.
func (p Principal) HasPermission(perm string) bool {
	for _, granted := range p.Permissions {
		if granted == perm {
			return true
		}
	}
	return false
}

type principalContextKey struct{}

// ContextWithPrincipal stores the resolved principal in context.
func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the principal from context.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(Principal)
	return p, ok
}
