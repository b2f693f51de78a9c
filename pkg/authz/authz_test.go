package authz

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/strydehq/stryde/pkg/observability"
	"github.com/strydehq/stryde/pkg/orgs"
	"github.com/strydehq/stryde/pkg/rbac"
	"github.com/strydehq/stryde/pkg/session"
)

// fakeSessionStore resolves tokens from an in-memory map.
type fakeSessionStore struct {
	sessions map[string]*session.Session
	err      error
}

func (f *fakeSessionStore) Get(_ context.Context, token string) (*session.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.sessions[token], nil
}

// fakeMembershipStore keys memberships by "userID/orgID".
type fakeMembershipStore struct {
	memberships map[string]*orgs.Membership
	orgsByID    map[string]*orgs.Organization
	err         error
}

func (f *fakeMembershipStore) FindMembership(_ context.Context, userID, orgID string) (*orgs.Membership, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.memberships[userID+"/"+orgID], nil
}

func (f *fakeMembershipStore) GetOrganization(_ context.Context, id string) (*orgs.Organization, error) {
	if f.err != nil {
		return nil, f.err
	}
	org, ok := f.orgsByID[id]
	if !ok {
		return nil, orgs.ErrOrganizationNotFound
	}
	return org, nil
}

var errStoreDown = errors.New("store down")

func testLogger() *observability.Logger {
	return observability.NewLogger(observability.ErrorLevel, io.Discard)
}

// testFixture wires a resolver over one organization with an owner, a
// trainer and a user, each authenticated by the token "<role>-token".
func testFixture() (*Resolver, *fakeSessionStore, *fakeMembershipStore) {
	expiry := time.Now().Add(time.Hour)
	sessions := &fakeSessionStore{sessions: map[string]*session.Session{
		"owner-token": {
			Subject:              session.Subject{ID: "owner-1", Email: "owner@example.com"},
			ActiveOrganizationID: "org-1",
			ExpiresAt:            expiry,
		},
		"trainer-token": {
			Subject:              session.Subject{ID: "trainer-1", Email: "trainer@example.com"},
			ActiveOrganizationID: "org-1",
			ExpiresAt:            expiry,
		},
		"user-token": {
			Subject:              session.Subject{ID: "user-1", Email: "user@example.com"},
			ActiveOrganizationID: "org-1",
			ExpiresAt:            expiry,
		},
		"drifter-token": {
			Subject:   session.Subject{ID: "drifter-1", Email: "drifter@example.com"},
			ExpiresAt: expiry,
		},
	}}

	joined := time.Now().Add(-30 * 24 * time.Hour)
	members := &fakeMembershipStore{
		memberships: map[string]*orgs.Membership{
			"owner-1/org-1":   {UserID: "owner-1", OrganizationID: "org-1", Role: rbac.RoleOwner, JoinedAt: joined},
			"trainer-1/org-1": {UserID: "trainer-1", OrganizationID: "org-1", Role: rbac.RoleTrainer, JoinedAt: joined},
			"user-1/org-1":    {UserID: "user-1", OrganizationID: "org-1", Role: rbac.RoleUser, JoinedAt: joined},
		},
		orgsByID: map[string]*orgs.Organization{
			"org-1": {ID: "org-1", Name: "Iron Temple", Slug: "iron-temple"},
		},
	}

	return NewResolver(sessions, members), sessions, members
}
