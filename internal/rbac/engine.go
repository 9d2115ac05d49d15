package rbac

// Decision is the outcome of an authorization check. Deny is a normal value
// the caller branches on, never an error.
type Decision int

const (
	// Deny rejects the action.
	Deny Decision = iota
	// Allow permits the action.
	Allow
)

// Allowed reports whether the decision grants access.
func (d Decision) Allowed() bool {
	return d == Allow
}

func (d Decision) String() string {
	if d == Allow {
		return "allow"
	}
	return "deny"
}

// Requirement describes what a caller must hold: either a single permission or
// an exact role name. Construct with RequirePermission or RequireRole.
type Requirement struct {
	permission string
	role       string
}

// RequirePermission builds a permission requirement.
func RequirePermission(perm string) Requirement {
	return Requirement{permission: perm}
}

// RequireRole builds an exact role-name requirement. There is no hierarchy
// between roles: admin does not satisfy a team_member gate.
func RequireRole(name string) Requirement {
	return Requirement{role: name}
}

// Authorize decides allow/deny for the principal snapshot against the
// requirement. It is a pure function with no side effects; an inactive role
// denies every check.
func Authorize(p Principal, req Requirement) Decision {
	if !p.RoleActive {
		return Deny
	}
	if req.role != "" {
		if p.RoleName == req.role {
			return Allow
		}
		return Deny
	}
	if req.permission != "" && p.HasPermission(req.permission) {
		return Allow
	}
	return Deny
}
