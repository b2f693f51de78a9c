// Package rbac defines the role and permission model for the Stryde platform
// and the pure evaluation functions over it.
//
// # Overview
//
// Stryde is multi-tenant: every subject (user) holds at most one role per
// organization. The role set is closed (owner, trainer, user) and totally
// ordered by a hierarchy rank. Each role maps to a fixed set of permission
// tags through the role-permission table, which is the single source of
// truth for "what can this role do". The table is process-wide configuration
// fixed at build time; it is never loaded from storage or mutated at runtime.
//
// # Roles and Permissions
//
// Roles:
//
//	RoleOwner   - organization owner, rank 3
//	RoleTrainer - coach/staff, rank 2
//	RoleUser    - regular member, rank 1
//
// Permissions are opaque capability tags (view_members, manage_members,
// create_workouts, ...). The evaluator never interprets their meaning, only
// set membership.
//
// # Evaluation
//
// All checks are pure functions of (role, permission):
//
//	rbac.HasPermission(rbac.RoleTrainer, rbac.PermissionCreateWorkouts) // true
//	rbac.HasAllPermissions(role, perms)                                 // AND
//	rbac.HasAnyPermission(role, perms)                                  // OR
//
// Two additional authority relations exist alongside the permission table
// and are deliberately NOT derived from it or from each other:
//
//	rbac.CanManageRole(manager, target)       - who may change whose role
//	rbac.CanPerformAction(actor, target, act) - who may act on whose data
//
// Both are explicit small relations; see the tables in checker.go.
//
// # Fail-Closed
//
// An unrecognized role has an empty permission set and fails every
// predicate. No function in this package panics or returns an error; the
// validating boundary is ParseRole, which storage and transport layers must
// use before trusting a role string.
//
// # Related Packages
//
//   - pkg/authz: resolves organization context and enforces requirements
//   - pkg/orgs: membership persistence and member management
//   - pkg/mirror: client-side evaluation over a server-computed summary
package rbac
