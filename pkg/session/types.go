package session

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// Subject is the authenticated identity attached to a session.
type Subject struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

// Session is the verified session state for one subject.
type Session struct {
	Subject Subject `json:"subject"`

	// ActiveOrganizationID is the organization the subject last switched
	// to; empty when none is selected.
	ActiveOrganizationID string `json:"active_organization_id,omitempty"`

	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session has passed its expiry.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// Store reads verified sessions. Returns (nil, nil) when the token does not
// resolve to a live session.
type Store interface {
	Get(ctx context.Context, token string) (*Session, error)
}

// TokenFromRequest extracts the bearer token from the Authorization header.
// Returns "" when the header is absent or malformed.
func TokenFromRequest(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

// FromRequest resolves the session for an HTTP request using store.
// Requests without a bearer token resolve to (nil, nil).
func FromRequest(ctx context.Context, store Store, r *http.Request) (*Session, error) {
	token := TokenFromRequest(r)
	if token == "" {
		return nil, nil
	}
	return store.Get(ctx, token)
}
