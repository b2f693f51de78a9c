// Package authz resolves the acting member for a request and enforces
// role and permission requirements on HTTP routes.
//
// # Overview
//
// Authorization happens in two steps. The Resolver turns a request into
// an authorization Context: it verifies the session, locates the
// organization the request targets, and loads the caller's membership in
// that organization. The Guard wraps route handlers and rejects requests
// whose resolved role fails the route's requirement.
//
// # Organization Hints
//
// The target organization is taken from the first hint present, in order:
// the session's active organization, the org_id query parameter, then the
// org_id path variable. A request with no hint is rejected before any
// membership lookup happens.
//
// # Denials
//
// Every denial is a JSON body with a single message field. The bodies are
// fixed strings so clients can rely on them:
//
//	401 {"message": "Unauthorized"}
//	400 {"message": "Organization ID is required"}
//	403 {"message": "User is not a member of this organization"}
//	403 {"message": "Access denied. Required role: owner, trainer"}
//	403 {"message": "Access denied. Required permission: manage_members"}
//
// Unknown or unparseable roles always deny.
package authz
