// Package api assembles the HTTP surface: the membership summary
// endpoint, member management routes and health checks, each behind the
// authorization guard from pkg/authz.
package api
