package orgs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/strydehq/stryde/pkg/rbac"
)

// PostgresStore implements Store on a relational database. Queries use
// numbered placeholders and work against Postgres in production and
// sqlite in tests.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a store on an existing database handle.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) GetOrganization(ctx context.Context, id string) (*Organization, error) {
	query := `
		SELECT id, name, slug, created_at, updated_at
		FROM organizations
		WHERE id = $1`

	var org Organization
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&org.ID, &org.Name, &org.Slug, &org.CreatedAt, &org.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrganizationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}
	return &org, nil
}

// FindMembership returns (nil, nil) when the user is not a member.
func (s *PostgresStore) FindMembership(ctx context.Context, userID, organizationID string) (*Membership, error) {
	query := `
		SELECT user_id, organization_id, role, invited_by, joined_at
		FROM organization_members
		WHERE user_id = $1 AND organization_id = $2`

	var m Membership
	var roleStr string
	var invitedBy sql.NullString
	err := s.db.QueryRowContext(ctx, query, userID, organizationID).Scan(
		&m.UserID, &m.OrganizationID, &roleStr, &invitedBy, &m.JoinedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find membership: %w", err)
	}

	role, err := rbac.ParseRole(roleStr)
	if err != nil {
		return nil, fmt.Errorf("failed to find membership: %w", err)
	}
	m.Role = role
	m.InvitedBy = invitedBy.String
	return &m, nil
}

func (s *PostgresStore) ListMembers(ctx context.Context, organizationID string) ([]*Member, error) {
	query := `
		SELECT m.user_id, m.organization_id, m.role, u.email, u.name, m.joined_at
		FROM organization_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.organization_id = $1
		ORDER BY m.joined_at ASC`

	rows, err := s.db.QueryContext(ctx, query, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []*Member
	for rows.Next() {
		var m Member
		var roleStr string
		if err := rows.Scan(&m.UserID, &m.OrganizationID, &roleStr, &m.Email, &m.Name, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		role, err := rbac.ParseRole(roleStr)
		if err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		m.Role = role
		members = append(members, &m)
	}
	return members, rows.Err()
}

func (s *PostgresStore) AddMember(ctx context.Context, m *Membership) error {
	query := `
		INSERT INTO organization_members (user_id, organization_id, role, invited_by, joined_at)
		VALUES ($1, $2, $3, $4, $5)`

	var invitedBy sql.NullString
	if m.InvitedBy != "" {
		invitedBy = sql.NullString{String: m.InvitedBy, Valid: true}
	}
	_, err := s.db.ExecContext(ctx, query, m.UserID, m.OrganizationID, m.Role.String(), invitedBy, m.JoinedAt)
	if err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateMemberRole(ctx context.Context, userID, organizationID string, role rbac.Role) error {
	query := `
		UPDATE organization_members
		SET role = $1
		WHERE user_id = $2 AND organization_id = $3`

	result, err := s.db.ExecContext(ctx, query, role.String(), userID, organizationID)
	if err != nil {
		return fmt.Errorf("failed to update member role: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update member role: %w", err)
	}
	if affected == 0 {
		return ErrMemberNotFound
	}
	return nil
}

func (s *PostgresStore) RemoveMember(ctx context.Context, userID, organizationID string) error {
	query := `
		DELETE FROM organization_members
		WHERE user_id = $1 AND organization_id = $2`

	result, err := s.db.ExecContext(ctx, query, userID, organizationID)
	if err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}
	if affected == 0 {
		return ErrMemberNotFound
	}
	return nil
}

func (s *PostgresStore) CountMembersWithRole(ctx context.Context, organizationID string, role rbac.Role) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM organization_members
		WHERE organization_id = $1 AND role = $2`

	var count int
	err := s.db.QueryRowContext(ctx, query, organizationID, role.String()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count members: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) CreateInvitation(ctx context.Context, inv *Invitation) error {
	query := `
		INSERT INTO organization_invitations
			(id, organization_id, email, role, token, invited_by, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := s.db.ExecContext(ctx, query,
		inv.ID, inv.OrganizationID, inv.Email, inv.Role.String(),
		inv.Token, inv.InvitedBy, inv.CreatedAt, inv.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create invitation: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetInvitationByToken(ctx context.Context, token string) (*Invitation, error) {
	query := `
		SELECT id, organization_id, email, role, token, invited_by,
		       created_at, expires_at, accepted_at, accepted_by
		FROM organization_invitations
		WHERE token = $1`

	var inv Invitation
	var roleStr string
	var acceptedAt sql.NullTime
	var acceptedBy sql.NullString
	err := s.db.QueryRowContext(ctx, query, token).Scan(
		&inv.ID, &inv.OrganizationID, &inv.Email, &roleStr, &inv.Token,
		&inv.InvitedBy, &inv.CreatedAt, &inv.ExpiresAt, &acceptedAt, &acceptedBy,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvitationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}

	role, err := rbac.ParseRole(roleStr)
	if err != nil {
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}
	inv.Role = role
	if acceptedAt.Valid {
		t := acceptedAt.Time
		inv.AcceptedAt = &t
	}
	inv.AcceptedBy = acceptedBy.String
	return &inv, nil
}

func (s *PostgresStore) AcceptInvitation(ctx context.Context, id, userID string, acceptedAt time.Time) error {
	query := `
		UPDATE organization_invitations
		SET accepted_at = $1, accepted_by = $2
		WHERE id = $3 AND accepted_at IS NULL`

	result, err := s.db.ExecContext(ctx, query, acceptedAt, userID, id)
	if err != nil {
		return fmt.Errorf("failed to accept invitation: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to accept invitation: %w", err)
	}
	if affected == 0 {
		return ErrInvitationAccepted
	}
	return nil
}

func (s *PostgresStore) DeleteExpiredInvitations(ctx context.Context, now time.Time) (int64, error) {
	query := `
		DELETE FROM organization_invitations
		WHERE accepted_at IS NULL AND expires_at < $1`

	result, err := s.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired invitations: %w", err)
	}
	return result.RowsAffected()
}
