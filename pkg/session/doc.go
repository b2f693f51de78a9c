// Package session defines the session collaborator consumed by the
// authorization core.
//
// Credential issuance and verification live outside this repository; the
// core only needs to answer "who is the subject on this request, and which
// organization is active on their session". The Store interface captures
// exactly that boundary, with a Redis-backed implementation for the server
// deployment.
//
// A nil *Session with a nil error means "no authenticated subject" — an
// expected state, not a failure. Errors are reserved for transport
// problems talking to the session backend.
package session
