package rbac

import "fmt"

// Role represents a subject's tier within one organization
type Role string

const (
	// RoleOwner has full control over the organization
	RoleOwner Role = "owner"
	// RoleTrainer can manage workouts and view members/analytics
	RoleTrainer Role = "trainer"
	// RoleUser is a regular member with access to their own data
	RoleUser Role = "user"
)

// Permission represents one granted capability
type Permission string

const (
	PermissionViewMembers    Permission = "view_members"
	PermissionManageMembers  Permission = "manage_members"
	PermissionCreateWorkouts Permission = "create_workouts"
	PermissionAssignWorkouts Permission = "assign_workouts"
	PermissionViewWorkouts   Permission = "view_workouts"
	PermissionViewAnalytics  Permission = "view_analytics"
	PermissionManageSettings Permission = "manage_settings"
	PermissionManageBilling  Permission = "manage_billing"
	PermissionViewOwnData    Permission = "view_own_data"
)

// Action represents an operation performed on another subject's data
type Action string

const (
	ActionView   Action = "view"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
	ActionManage Action = "manage"
)

// rolePermissions is the role-permission table. Every declared role has an
// entry; the table is the single source of truth for permission checks on
// both the server guard and, via MembershipSummary, the client mirror.
var rolePermissions = map[Role][]Permission{
	RoleOwner: {
		PermissionViewMembers,
		PermissionManageMembers,
		PermissionCreateWorkouts,
		PermissionAssignWorkouts,
		PermissionViewWorkouts,
		PermissionViewAnalytics,
		PermissionManageSettings,
		PermissionManageBilling,
		PermissionViewOwnData,
	},
	RoleTrainer: {
		PermissionViewMembers,
		PermissionCreateWorkouts,
		PermissionAssignWorkouts,
		PermissionViewWorkouts,
		PermissionViewAnalytics,
		PermissionViewOwnData,
	},
	RoleUser: {
		PermissionViewWorkouts,
		PermissionViewOwnData,
	},
}

// roleRank orders the roles. Higher rank does not imply a superset of
// permissions; the table above stays authoritative for capability checks.
var roleRank = map[Role]int{
	RoleOwner:   3,
	RoleTrainer: 2,
	RoleUser:    1,
}

// AllRoles returns every declared role, highest rank first.
func AllRoles() []Role {
	return []Role{RoleOwner, RoleTrainer, RoleUser}
}

// AllPermissions returns the full permission enumeration.
func AllPermissions() []Permission {
	return []Permission{
		PermissionViewMembers,
		PermissionManageMembers,
		PermissionCreateWorkouts,
		PermissionAssignWorkouts,
		PermissionViewWorkouts,
		PermissionViewAnalytics,
		PermissionManageSettings,
		PermissionManageBilling,
		PermissionViewOwnData,
	}
}

// PermissionsForRole returns a copy of the role's permission set. An
// unknown role yields an empty set.
func PermissionsForRole(role Role) []Permission {
	perms, ok := rolePermissions[role]
	if !ok {
		return []Permission{}
	}
	out := make([]Permission, len(perms))
	copy(out, perms)
	return out
}

// HierarchyRank returns the role's position in the hierarchy. Unknown
// roles rank below every declared role.
func HierarchyRank(role Role) int {
	return roleRank[role]
}

// UnknownRoleError is returned by ParseRole when a stored or transported
// role string is not one of the declared roles.
type UnknownRoleError struct {
	Value string
}

func (e *UnknownRoleError) Error() string {
	return fmt.Sprintf("unknown role: %q", e.Value)
}

// ParseRole validates a role string read from storage or the wire. It is
// the only path from an untyped string to a Role; callers must never cast.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleOwner, RoleTrainer, RoleUser:
		return Role(s), nil
	default:
		return "", &UnknownRoleError{Value: s}
	}
}

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}

// String returns the string representation of the permission
func (p Permission) String() string {
	return string(p)
}
