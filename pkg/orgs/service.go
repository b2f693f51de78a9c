package orgs

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/strydehq/stryde/pkg/audit"
	"github.com/strydehq/stryde/pkg/observability"
	"github.com/strydehq/stryde/pkg/rbac"
)

// Service implements member management. Every role transition is
// validated with rbac.CanManageRole here, independently of whatever
// the HTTP layer checked.
type Service struct {
	store  Store
	logger *observability.Logger
	audit  audit.Recorder
	now    func() time.Time
}

// NewService creates a member management service.
func NewService(store Store, logger *observability.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
		audit:  audit.NopRecorder{},
		now:    time.Now,
	}
}

// WithAudit sets the audit recorder and returns the service.
func (s *Service) WithAudit(rec audit.Recorder) *Service {
	s.audit = rec
	return s
}

// ListMembers returns the members of the organization.
func (s *Service) ListMembers(ctx context.Context, organizationID string) ([]*Member, error) {
	return s.store.ListMembers(ctx, organizationID)
}

// ChangeRole sets the target member's role to newRole. The actor must be
// able to manage both the target's current role and the new role, and the
// change must not leave the organization without an owner.
func (s *Service) ChangeRole(ctx context.Context, actor *Membership, targetUserID string, newRole rbac.Role) error {
	target, err := s.store.FindMembership(ctx, targetUserID, actor.OrganizationID)
	if err != nil {
		return err
	}
	if target == nil {
		return ErrMemberNotFound
	}

	if !rbac.CanManageRole(actor.Role, target.Role) || !rbac.CanManageRole(actor.Role, newRole) {
		return ErrRoleNotManageable
	}

	if target.Role == rbac.RoleOwner && newRole != rbac.RoleOwner {
		if err := s.requireAnotherOwner(ctx, actor.OrganizationID); err != nil {
			return err
		}
	}

	if err := s.store.UpdateMemberRole(ctx, targetUserID, actor.OrganizationID, newRole); err != nil {
		return err
	}

	s.logger.WithFields(map[string]any{
		"organization_id": actor.OrganizationID,
		"actor_id":        actor.UserID,
		"target_id":       targetUserID,
		"old_role":        target.Role.String(),
		"new_role":        newRole.String(),
	}).Info("member role changed")
	s.audit.Record(ctx, audit.Event{
		Type:           audit.EventRoleChanged,
		OrganizationID: actor.OrganizationID,
		ActorID:        actor.UserID,
		TargetID:       targetUserID,
		Details:        map[string]string{"old_role": target.Role.String(), "new_role": newRole.String()},
	})
	return nil
}

// RemoveMember removes the target from the actor's organization. Members
// may remove themselves; removing anyone else requires a manageable role.
// The last owner can never be removed.
func (s *Service) RemoveMember(ctx context.Context, actor *Membership, targetUserID string) error {
	target, err := s.store.FindMembership(ctx, targetUserID, actor.OrganizationID)
	if err != nil {
		return err
	}
	if target == nil {
		return ErrMemberNotFound
	}

	if actor.UserID != targetUserID && !rbac.CanManageRole(actor.Role, target.Role) {
		return ErrRoleNotManageable
	}

	if target.Role == rbac.RoleOwner {
		if err := s.requireAnotherOwner(ctx, actor.OrganizationID); err != nil {
			return err
		}
	}

	if err := s.store.RemoveMember(ctx, targetUserID, actor.OrganizationID); err != nil {
		return err
	}

	s.logger.WithFields(map[string]any{
		"organization_id": actor.OrganizationID,
		"actor_id":        actor.UserID,
		"target_id":       targetUserID,
	}).Info("member removed")
	s.audit.Record(ctx, audit.Event{
		Type:           audit.EventMemberRemoved,
		OrganizationID: actor.OrganizationID,
		ActorID:        actor.UserID,
		TargetID:       targetUserID,
	})
	return nil
}

// Invite creates an invitation to join the actor's organization with the
// given role. The actor must be able to manage that role.
func (s *Service) Invite(ctx context.Context, actor *Membership, email string, role rbac.Role) (*Invitation, error) {
	if !rbac.CanManageRole(actor.Role, role) {
		return nil, ErrRoleNotManageable
	}

	now := s.now()
	inv := &Invitation{
		ID:             uuid.New().String(),
		OrganizationID: actor.OrganizationID,
		Email:          email,
		Role:           role,
		Token:          uuid.New().String(),
		InvitedBy:      actor.UserID,
		CreatedAt:      now,
		ExpiresAt:      now.Add(InvitationTTL),
	}
	if err := s.store.CreateInvitation(ctx, inv); err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]any{
		"organization_id": actor.OrganizationID,
		"actor_id":        actor.UserID,
		"invitation_id":   inv.ID,
		"role":            role.String(),
	}).Info("invitation created")
	s.audit.Record(ctx, audit.Event{
		Type:           audit.EventMemberInvited,
		OrganizationID: actor.OrganizationID,
		ActorID:        actor.UserID,
		Details:        map[string]string{"email": email, "role": role.String()},
	})
	return inv, nil
}

// AcceptInvitation redeems a token and creates a membership with the
// invited role. Tokens are single use and reject after expiry.
func (s *Service) AcceptInvitation(ctx context.Context, token, userID string) (*Membership, error) {
	inv, err := s.store.GetInvitationByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if inv.AcceptedAt != nil {
		return nil, ErrInvitationAccepted
	}
	now := s.now()
	if now.After(inv.ExpiresAt) {
		return nil, ErrInvitationExpired
	}

	existing, err := s.store.FindMembership(ctx, userID, inv.OrganizationID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyMember
	}

	if err := s.store.AcceptInvitation(ctx, inv.ID, userID, now); err != nil {
		return nil, err
	}

	m := &Membership{
		UserID:         userID,
		OrganizationID: inv.OrganizationID,
		Role:           inv.Role,
		InvitedBy:      inv.InvitedBy,
		JoinedAt:       now,
	}
	if err := s.store.AddMember(ctx, m); err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]any{
		"organization_id": inv.OrganizationID,
		"user_id":         userID,
		"role":            inv.Role.String(),
	}).Info("invitation accepted")
	s.audit.Record(ctx, audit.Event{
		Type:           audit.EventInvitationAccepted,
		OrganizationID: inv.OrganizationID,
		ActorID:        userID,
		Details:        map[string]string{"role": inv.Role.String()},
	})
	return m, nil
}

// CleanupExpiredInvitations deletes unredeemed invitations past their
// expiry. Wired to a cron schedule in the server entrypoint.
func (s *Service) CleanupExpiredInvitations(ctx context.Context) error {
	deleted, err := s.store.DeleteExpiredInvitations(ctx, s.now())
	if err != nil {
		return fmt.Errorf("failed to clean up invitations: %w", err)
	}
	if deleted > 0 {
		s.logger.WithField("deleted", deleted).Info("expired invitations removed")
	}
	return nil
}

func (s *Service) requireAnotherOwner(ctx context.Context, organizationID string) error {
	owners, err := s.store.CountMembersWithRole(ctx, organizationID, rbac.RoleOwner)
	if err != nil {
		return err
	}
	if owners <= 1 {
		return ErrLastOwner
	}
	return nil
}
