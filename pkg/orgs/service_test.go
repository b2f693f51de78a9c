package orgs

import (
	"context"
	"database/sql"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strydehq/stryde/pkg/audit"
	"github.com/strydehq/stryde/pkg/observability"
	"github.com/strydehq/stryde/pkg/rbac"
)

func newTestService(t *testing.T) (*Service, *PostgresStore, *sql.DB) {
	db := setupTestDB(t)
	store := NewPostgresStore(db)
	logger := observability.NewLogger(observability.ErrorLevel, io.Discard)
	return NewService(store, logger), store, db
}

func seedOrgWithMembers(t *testing.T, db *sql.DB, store *PostgresStore) (owner, trainer, user *Membership) {
	t.Helper()
	seedOrg(t, db, "org-1")
	seedUser(t, db, "owner-1", "owner@example.com", "Olivia")
	seedUser(t, db, "trainer-1", "trainer@example.com", "Theo")
	seedUser(t, db, "user-1", "user@example.com", "Uma")
	seedMember(t, db, store, "owner-1", "org-1", rbac.RoleOwner)
	seedMember(t, db, store, "trainer-1", "org-1", rbac.RoleTrainer)
	seedMember(t, db, store, "user-1", "org-1", rbac.RoleUser)

	ctx := context.Background()
	var err error
	owner, err = store.FindMembership(ctx, "owner-1", "org-1")
	require.NoError(t, err)
	trainer, err = store.FindMembership(ctx, "trainer-1", "org-1")
	require.NoError(t, err)
	user, err = store.FindMembership(ctx, "user-1", "org-1")
	require.NoError(t, err)
	return owner, trainer, user
}

// captureRecorder collects audit events for assertions.
type captureRecorder struct {
	events []audit.Event
}

func (c *captureRecorder) Record(_ context.Context, ev audit.Event) {
	c.events = append(c.events, ev)
}

func TestService_AuditTrail(t *testing.T) {
	svc, store, db := newTestService(t)
	owner, _, _ := seedOrgWithMembers(t, db, store)
	rec := &captureRecorder{}
	svc.WithAudit(rec)
	ctx := context.Background()

	require.NoError(t, svc.ChangeRole(ctx, owner, "user-1", rbac.RoleTrainer))
	require.NoError(t, svc.RemoveMember(ctx, owner, "trainer-1"))
	_, err := svc.Invite(ctx, owner, "new@example.com", rbac.RoleUser)
	require.NoError(t, err)

	require.Len(t, rec.events, 3)
	assert.Equal(t, audit.EventRoleChanged, rec.events[0].Type)
	assert.Equal(t, "trainer", rec.events[0].Details["new_role"])
	assert.Equal(t, audit.EventMemberRemoved, rec.events[1].Type)
	assert.Equal(t, "trainer-1", rec.events[1].TargetID)
	assert.Equal(t, audit.EventMemberInvited, rec.events[2].Type)
	assert.Equal(t, "org-1", rec.events[2].OrganizationID)
}

func TestService_ChangeRole_OwnerPromotesUser(t *testing.T) {
	svc, store, db := newTestService(t)
	owner, _, _ := seedOrgWithMembers(t, db, store)
	ctx := context.Background()

	require.NoError(t, svc.ChangeRole(ctx, owner, "user-1", rbac.RoleTrainer))

	m, err := store.FindMembership(ctx, "user-1", "org-1")
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleTrainer, m.Role)
}

func TestService_ChangeRole_TrainerCannotPromoteToTrainer(t *testing.T) {
	svc, store, db := newTestService(t)
	_, trainer, _ := seedOrgWithMembers(t, db, store)

	// Trainers manage users only, so the target role trainer is out of reach.
	err := svc.ChangeRole(context.Background(), trainer, "user-1", rbac.RoleTrainer)
	assert.ErrorIs(t, err, ErrRoleNotManageable)
}

func TestService_ChangeRole_TrainerCannotTouchOwner(t *testing.T) {
	svc, store, db := newTestService(t)
	_, trainer, _ := seedOrgWithMembers(t, db, store)

	err := svc.ChangeRole(context.Background(), trainer, "owner-1", rbac.RoleUser)
	assert.ErrorIs(t, err, ErrRoleNotManageable)
}

func TestService_ChangeRole_LastOwnerCannotStepDown(t *testing.T) {
	svc, store, db := newTestService(t)
	owner, _, _ := seedOrgWithMembers(t, db, store)

	err := svc.ChangeRole(context.Background(), owner, "owner-1", rbac.RoleTrainer)
	assert.ErrorIs(t, err, ErrLastOwner)
}

func TestService_ChangeRole_OwnerStepsDownWithCoOwner(t *testing.T) {
	svc, store, db := newTestService(t)
	owner, _, _ := seedOrgWithMembers(t, db, store)
	ctx := context.Background()

	seedUser(t, db, "owner-2", "cofounder@example.com", "Omar")
	seedMember(t, db, store, "owner-2", "org-1", rbac.RoleOwner)

	require.NoError(t, svc.ChangeRole(ctx, owner, "owner-1", rbac.RoleTrainer))

	m, err := store.FindMembership(ctx, "owner-1", "org-1")
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleTrainer, m.Role)
}

func TestService_ChangeRole_TargetNotAMember(t *testing.T) {
	svc, store, db := newTestService(t)
	owner, _, _ := seedOrgWithMembers(t, db, store)

	err := svc.ChangeRole(context.Background(), owner, "ghost", rbac.RoleUser)
	assert.ErrorIs(t, err, ErrMemberNotFound)
}

func TestService_RemoveMember(t *testing.T) {
	svc, store, db := newTestService(t)
	owner, _, _ := seedOrgWithMembers(t, db, store)
	ctx := context.Background()

	require.NoError(t, svc.RemoveMember(ctx, owner, "trainer-1"))

	m, err := store.FindMembership(ctx, "trainer-1", "org-1")
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestService_RemoveMember_SelfLeave(t *testing.T) {
	svc, store, db := newTestService(t)
	_, _, user := seedOrgWithMembers(t, db, store)
	ctx := context.Background()

	// A member may always remove their own membership.
	require.NoError(t, svc.RemoveMember(ctx, user, "user-1"))

	m, err := store.FindMembership(ctx, "user-1", "org-1")
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestService_RemoveMember_UserCannotRemoveOthers(t *testing.T) {
	svc, store, db := newTestService(t)
	_, _, user := seedOrgWithMembers(t, db, store)

	err := svc.RemoveMember(context.Background(), user, "trainer-1")
	assert.ErrorIs(t, err, ErrRoleNotManageable)
}

func TestService_RemoveMember_LastOwner(t *testing.T) {
	svc, store, db := newTestService(t)
	owner, _, _ := seedOrgWithMembers(t, db, store)

	err := svc.RemoveMember(context.Background(), owner, "owner-1")
	assert.ErrorIs(t, err, ErrLastOwner)
}

func TestService_Invite(t *testing.T) {
	svc, store, db := newTestService(t)
	owner, _, _ := seedOrgWithMembers(t, db, store)
	ctx := context.Background()

	inv, err := svc.Invite(ctx, owner, "new@example.com", rbac.RoleTrainer)
	require.NoError(t, err)
	assert.NotEmpty(t, inv.ID)
	assert.NotEmpty(t, inv.Token)
	assert.Equal(t, "org-1", inv.OrganizationID)
	assert.Equal(t, rbac.RoleTrainer, inv.Role)
	assert.WithinDuration(t, time.Now().Add(InvitationTTL), inv.ExpiresAt, time.Minute)

	got, err := store.GetInvitationByToken(ctx, inv.Token)
	require.NoError(t, err)
	assert.Equal(t, inv.ID, got.ID)
}

func TestService_Invite_TrainerCannotInviteTrainer(t *testing.T) {
	svc, store, db := newTestService(t)
	_, trainer, _ := seedOrgWithMembers(t, db, store)

	_, err := svc.Invite(context.Background(), trainer, "new@example.com", rbac.RoleTrainer)
	assert.ErrorIs(t, err, ErrRoleNotManageable)
}

func TestService_AcceptInvitation(t *testing.T) {
	svc, store, db := newTestService(t)
	owner, _, _ := seedOrgWithMembers(t, db, store)
	ctx := context.Background()

	seedUser(t, db, "new-1", "new@example.com", "Nia")
	inv, err := svc.Invite(ctx, owner, "new@example.com", rbac.RoleUser)
	require.NoError(t, err)

	m, err := svc.AcceptInvitation(ctx, inv.Token, "new-1")
	require.NoError(t, err)
	assert.Equal(t, "org-1", m.OrganizationID)
	assert.Equal(t, rbac.RoleUser, m.Role)
	assert.Equal(t, "owner-1", m.InvitedBy)

	// The token is single use.
	_, err = svc.AcceptInvitation(ctx, inv.Token, "new-1")
	assert.ErrorIs(t, err, ErrInvitationAccepted)
}

func TestService_AcceptInvitation_Expired(t *testing.T) {
	svc, store, db := newTestService(t)
	owner, _, _ := seedOrgWithMembers(t, db, store)
	ctx := context.Background()

	inv, err := svc.Invite(ctx, owner, "late@example.com", rbac.RoleUser)
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(InvitationTTL + time.Hour) }

	_, err = svc.AcceptInvitation(ctx, inv.Token, "late-1")
	assert.ErrorIs(t, err, ErrInvitationExpired)
}

func TestService_AcceptInvitation_AlreadyMember(t *testing.T) {
	svc, store, db := newTestService(t)
	owner, _, _ := seedOrgWithMembers(t, db, store)
	ctx := context.Background()

	inv, err := svc.Invite(ctx, owner, "user@example.com", rbac.RoleUser)
	require.NoError(t, err)

	_, err = svc.AcceptInvitation(ctx, inv.Token, "user-1")
	assert.ErrorIs(t, err, ErrAlreadyMember)
}

func TestService_AcceptInvitation_UnknownToken(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.AcceptInvitation(context.Background(), "no-such-token", "user-1")
	assert.ErrorIs(t, err, ErrInvitationNotFound)
}

func TestService_CleanupExpiredInvitations(t *testing.T) {
	svc, store, db := newTestService(t)
	owner, _, _ := seedOrgWithMembers(t, db, store)
	ctx := context.Background()

	inv, err := svc.Invite(ctx, owner, "stale@example.com", rbac.RoleUser)
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(InvitationTTL + time.Hour) }
	require.NoError(t, svc.CleanupExpiredInvitations(ctx))

	_, err = store.GetInvitationByToken(ctx, inv.Token)
	assert.ErrorIs(t, err, ErrInvitationNotFound)
}
