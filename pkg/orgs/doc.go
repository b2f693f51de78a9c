// Package orgs manages organizations, memberships and invitations.
//
// # Overview
//
// Every authenticated user acts within an organization. A membership row
// binds a user to an organization with exactly one role, and the role is
// the sole input to permission evaluation (see pkg/rbac).
//
// # Components
//
//   - Store: persistence interface backed by Postgres
//   - MembershipFinder: the narrow read interface the request resolver needs
//   - Service: member management with role-transition validation
//
// The Service re-validates every role transition with rbac.CanManageRole
// regardless of what the HTTP layer already checked, so a handler bug
// cannot produce an unauthorized role change.
package orgs
