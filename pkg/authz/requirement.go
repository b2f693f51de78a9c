package authz

import (
	"strings"

	"github.com/strydehq/stryde/pkg/rbac"
)

// Requirement describes what a route demands of the acting member:
// membership in one of Roles, holding Permissions (any by default, all
// when RequireAll is set), or both.
type Requirement struct {
	Roles       []rbac.Role
	Permissions []rbac.Permission
	RequireAll  bool
}

// Evaluate checks the role against the requirement. On denial it returns
// the exact message for the 403 body.
func (req Requirement) Evaluate(role rbac.Role) (bool, string) {
	if len(req.Roles) > 0 && !roleIn(role, req.Roles) {
		return false, "Access denied. Required role: " + joinRoles(req.Roles)
	}
	if len(req.Permissions) > 0 {
		ok := rbac.HasAnyPermission(role, req.Permissions)
		if req.RequireAll {
			ok = rbac.HasAllPermissions(role, req.Permissions)
		}
		if !ok {
			return false, "Access denied. Required permission: " + joinPermissions(req.Permissions)
		}
	}
	return true, ""
}

func roleIn(role rbac.Role, roles []rbac.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

func joinRoles(roles []rbac.Role) string {
	parts := make([]string, len(roles))
	for i, r := range roles {
		parts[i] = r.String()
	}
	return strings.Join(parts, ", ")
}

func joinPermissions(perms []rbac.Permission) string {
	parts := make([]string, len(perms))
	for i, p := range perms {
		parts[i] = p.String()
	}
	return strings.Join(parts, ", ")
}
