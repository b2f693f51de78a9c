// Package mirror is the client SDK for permission-aware UIs and tools.
//
// # Overview
//
// The server remains the only authority: a client fetches the membership
// summary from /api/me/membership and answers permission questions from
// the summary's can map, never from a local copy of the role table. The
// Client caches the summary for a TTL and collapses concurrent fetches
// into one request.
//
// # Fail Closed
//
// Every question answered before the first successful fetch, or after a
// fetch error with nothing cached, is answered no. A Guard in that state
// evaluates to the loading or denied branch, never allowed.
package mirror
