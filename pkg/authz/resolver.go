package authz

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/strydehq/stryde/pkg/orgs"
	"github.com/strydehq/stryde/pkg/session"
)

// Resolver turns an HTTP request into an authorization Context.
type Resolver struct {
	sessions    session.Store
	memberships orgs.MembershipFinder
}

// NewResolver creates a resolver over the given session and membership
// stores.
func NewResolver(sessions session.Store, memberships orgs.MembershipFinder) *Resolver {
	return &Resolver{sessions: sessions, memberships: memberships}
}

// Resolve verifies the session, picks the target organization and loads
// the caller's membership. It returns ErrUnauthenticated,
// ErrMissingOrganizationContext or ErrNotAMember for the corresponding
// failures; any other error is an infrastructure failure.
func (r *Resolver) Resolve(req *http.Request) (*Context, error) {
	ctx := req.Context()

	sess, err := session.FromRequest(ctx, r.sessions, req)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve session: %w", err)
	}
	if sess == nil {
		return nil, ErrUnauthenticated
	}

	orgID := organizationHint(sess, req)
	if orgID == "" {
		return nil, ErrMissingOrganizationContext
	}

	membership, err := r.memberships.FindMembership(ctx, sess.Subject.ID, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to load membership: %w", err)
	}
	if membership == nil {
		return nil, ErrNotAMember
	}

	return &Context{
		Subject:        sess.Subject,
		OrganizationID: orgID,
		Role:           membership.Role,
		Membership:     membership,
	}, nil
}

// ResolveSubject verifies the session only, for routes that need an
// authenticated caller but no organization membership.
func (r *Resolver) ResolveSubject(req *http.Request) (session.Subject, error) {
	sess, err := session.FromRequest(req.Context(), r.sessions, req)
	if err != nil {
		return session.Subject{}, fmt.Errorf("failed to resolve session: %w", err)
	}
	if sess == nil {
		return session.Subject{}, ErrUnauthenticated
	}
	return sess.Subject, nil
}

// organizationHint returns the first organization hint present: the
// session's active organization, then the org_id query parameter, then
// the org_id path variable.
func organizationHint(sess *session.Session, req *http.Request) string {
	if sess.ActiveOrganizationID != "" {
		return sess.ActiveOrganizationID
	}
	if v := req.URL.Query().Get("org_id"); v != "" {
		return v
	}
	if v, ok := mux.Vars(req)["org_id"]; ok && v != "" {
		return v
	}
	return ""
}
