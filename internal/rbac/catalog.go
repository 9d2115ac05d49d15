package rbac

// Atomic capabilities gating privileged actions. The catalog is process-wide
// static data: every permission checked anywhere in the application is declared
// here and belongs to exactly one group.
const (
	PermManageLeaves = "manage_leaves"
	PermViewLeaves   = "view_leaves"
	PermApplyLeave   = "apply_leave"

	PermViewAttendance   = "view_attendance"
	PermManageAttendance = "manage_attendance"
	PermMarkAttendance   = "mark_attendance"

	PermManageTeam = "manage_team"
	PermViewTeam   = "view_team"

	PermViewAnalytics = "view_analytics"

	PermManageCalendar = "manage_calendar"
	PermViewCalendar   = "view_calendar"

	PermManageRoles = "manage_roles"
	PermManageUsers = "manage_users"
	PermViewUsers   = "view_users"
)

// Built-in role names.
const (
	RoleAdmin      = "admin"
	RoleManagement = "management"
	RoleTeamMember = "team_member"
)

// Group is a named ordered collection of permissions shown together in the
// role management UI.
type Group struct {
	Name        string
	Permissions []string
}

var groups = []Group{
	{Name: "Leave Management", Permissions: []string{PermManageLeaves, PermViewLeaves, PermApplyLeave}},
	{Name: "Attendance", Permissions: []string{PermViewAttendance, PermManageAttendance, PermMarkAttendance}},
	{Name: "Team Management", Permissions: []string{PermManageTeam, PermViewTeam}},
	{Name: "Analytics", Permissions: []string{PermViewAnalytics}},
	{Name: "Calendar", Permissions: []string{PermManageCalendar, PermViewCalendar}},
	{Name: "Administration", Permissions: []string{PermManageRoles, PermManageUsers, PermViewUsers}},
}

var roleDefaults = map[string][]string{
	RoleAdmin: {
		PermManageLeaves, PermViewLeaves, PermApplyLeave,
		PermViewAttendance, PermManageAttendance, PermMarkAttendance,
		PermManageTeam, PermViewTeam,
		PermViewAnalytics,
		PermManageCalendar, PermViewCalendar,
		PermManageRoles, PermManageUsers, PermViewUsers,
	},
	RoleManagement: {
		PermManageLeaves, PermViewLeaves, PermApplyLeave,
		PermViewAttendance, PermManageAttendance, PermMarkAttendance,
		PermManageTeam, PermViewTeam,
		PermViewAnalytics,
		PermViewCalendar,
		PermViewUsers,
	},
	RoleTeamMember: {
		PermApplyLeave,
		PermMarkAttendance,
		PermViewCalendar,
	},
}

// Groups returns the ordered permission groups.
func Groups() []Group {
	out := make([]Group, len(groups))
	for i, g := range groups {
		out[i] = Group{Name: g.Name, Permissions: append([]string(nil), g.Permissions...)}
	}
	return out
}

// AllPermissions returns every catalogued permission in group order.
func AllPermissions() []string {
	var all []string
	for _, g := range groups {
		all = append(all, g.Permissions...)
	}
	return all
}

// Known reports whether the permission is part of the catalog.
func Known(perm string) bool {
	for _, g := range groups {
		for _, p := range g.Permissions {
			if p == perm {
				return true
			}
		}
	}
	return false
}

// DefaultsFor returns the default permission set of a built-in role. Unknown
// role names resolve to an empty set.
func DefaultsFor(roleName string) []string {
	return append([]string(nil), roleDefaults[roleName]...)
}

// BuiltinRoles lists the role names seeded at startup.
func BuiltinRoles() []string {
	return []string{RoleAdmin, RoleManagement, RoleTeamMember}
}
