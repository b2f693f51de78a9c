package authz

import (
	"context"
	"errors"

	"github.com/strydehq/stryde/pkg/orgs"
	"github.com/strydehq/stryde/pkg/rbac"
	"github.com/strydehq/stryde/pkg/session"
)

var (
	// ErrUnauthenticated indicates the request carries no valid session.
	ErrUnauthenticated = errors.New("request is not authenticated")

	// ErrMissingOrganizationContext indicates no organization hint was
	// found in the session, query or path.
	ErrMissingOrganizationContext = errors.New("no organization context in request")

	// ErrNotAMember indicates the subject has no membership in the
	// target organization.
	ErrNotAMember = errors.New("subject is not a member of the organization")
)

// Context is the resolved authorization state for one request: who is
// acting, in which organization, and with what role.
type Context struct {
	Subject        session.Subject
	OrganizationID string
	Role           rbac.Role
	Membership     *orgs.Membership
}

type contextKey struct{}

type subjectKey struct{}

// WithContext attaches the authorization context to ctx.
func WithContext(ctx context.Context, ac *Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ac)
}

// FromContext returns the authorization context set by the Guard, or nil
// when the request did not pass through it.
func FromContext(ctx context.Context) *Context {
	ac, _ := ctx.Value(contextKey{}).(*Context)
	return ac
}

// WithSubject attaches an authenticated subject without any
// organization context.
func WithSubject(ctx context.Context, sub session.Subject) context.Context {
	return context.WithValue(ctx, subjectKey{}, sub)
}

// SubjectFromContext returns the subject set by RequireSession.
func SubjectFromContext(ctx context.Context) (session.Subject, bool) {
	sub, ok := ctx.Value(subjectKey{}).(session.Subject)
	return sub, ok
}
