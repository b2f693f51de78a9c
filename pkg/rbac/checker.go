package rbac

// HasPermission reports whether the role's permission set contains perm.
func HasPermission(role Role, perm Permission) bool {
	for _, p := range rolePermissions[role] {
		if p == perm {
			return true
		}
	}
	return false
}

// HasAnyPermission reports whether at least one of perms is granted to the
// role (OR semantics). An empty list is false.
func HasAnyPermission(role Role, perms []Permission) bool {
	for _, p := range perms {
		if HasPermission(role, p) {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether every one of perms is granted to the
// role (AND semantics). An empty list is vacuously true.
func HasAllPermissions(role Role, perms []Permission) bool {
	for _, p := range perms {
		if !HasPermission(role, p) {
			return false
		}
	}
	return true
}

// HierarchyAtLeast reports whether actor ranks at or above target.
func HierarchyAtLeast(actor, target Role) bool {
	return HierarchyRank(actor) >= HierarchyRank(target)
}

// manageableRoles is the explicit role-management relation. It is NOT
// rank-derived: a trainer outranks other trainers' members but may only
// manage users, never peers.
var manageableRoles = map[Role][]Role{
	RoleOwner:   {RoleOwner, RoleTrainer, RoleUser},
	RoleTrainer: {RoleUser},
	RoleUser:    {},
}

// CanManageRole reports whether manager may assign, change, or revoke the
// target role. Owners manage every role including other owners.
func CanManageRole(manager, target Role) bool {
	for _, r := range manageableRoles[manager] {
		if r == target {
			return true
		}
	}
	return false
}

// actionAllowList restricts which actions each role may take on a
// lower-ranked subject. Distinct from manageableRoles: a trainer may edit
// a user's data but not change the user's role, and vice versa would also
// be expressible here.
var actionAllowList = map[Role][]Action{
	RoleOwner:   {ActionView, ActionEdit, ActionDelete, ActionManage},
	RoleTrainer: {ActionView, ActionEdit},
	RoleUser:    {},
}

// CanPerformAction reports whether actor may perform action on a subject
// holding target. Except for owners, acting on an equal-or-higher rank is
// always denied; past the rank gate the per-role allow-list applies.
func CanPerformAction(actor, target Role, action Action) bool {
	if !HierarchyAtLeast(actor, target) {
		return false
	}
	if actor != RoleOwner && HierarchyRank(actor) <= HierarchyRank(target) {
		return false
	}
	for _, a := range actionAllowList[actor] {
		if a == action {
			return true
		}
	}
	return false
}
