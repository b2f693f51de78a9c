package orgs

import (
	"context"
	"errors"
	"time"

	"github.com/strydehq/stryde/pkg/rbac"
)

// Organization is a tenant. All memberships, workouts and invitations
// hang off an organization ID.
type Organization struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Membership binds a user to an organization with exactly one role.
type Membership struct {
	UserID         string    `json:"user_id"`
	OrganizationID string    `json:"organization_id"`
	Role           rbac.Role `json:"role"`
	InvitedBy      string    `json:"invited_by,omitempty"`
	JoinedAt       time.Time `json:"joined_at"`
}

// Member is a membership joined with user profile fields for listing.
type Member struct {
	UserID         string    `json:"user_id"`
	OrganizationID string    `json:"organization_id"`
	Role           rbac.Role `json:"role"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	JoinedAt       time.Time `json:"joined_at"`
}

// Invitation is a pending offer to join an organization with a given role.
// The token is single use and expires after InvitationTTL.
type Invitation struct {
	ID             string     `json:"id"`
	OrganizationID string     `json:"organization_id"`
	Email          string     `json:"email"`
	Role           rbac.Role  `json:"role"`
	Token          string     `json:"-"`
	InvitedBy      string     `json:"invited_by"`
	CreatedAt      time.Time  `json:"created_at"`
	ExpiresAt      time.Time  `json:"expires_at"`
	AcceptedAt     *time.Time `json:"accepted_at,omitempty"`
	AcceptedBy     string     `json:"accepted_by,omitempty"`
}

// InvitationTTL is how long an invitation token stays redeemable.
const InvitationTTL = 7 * 24 * time.Hour

var (
	// ErrOrganizationNotFound indicates the organization ID does not exist.
	ErrOrganizationNotFound = errors.New("organization not found")

	// ErrMemberNotFound indicates the user is not a member of the organization.
	ErrMemberNotFound = errors.New("member not found")

	// ErrAlreadyMember indicates the user already has a membership in the
	// organization. Memberships are unique per (user, organization).
	ErrAlreadyMember = errors.New("user is already a member of the organization")

	// ErrRoleNotManageable indicates the acting member's role does not
	// permit managing the role involved in the operation.
	ErrRoleNotManageable = errors.New("role is not manageable by the acting member")

	// ErrLastOwner indicates the operation would leave the organization
	// without any owner.
	ErrLastOwner = errors.New("organization must retain at least one owner")

	// ErrInvitationNotFound indicates the invitation token is unknown.
	ErrInvitationNotFound = errors.New("invitation not found")

	// ErrInvitationExpired indicates the invitation token is past its expiry.
	ErrInvitationExpired = errors.New("invitation has expired")

	// ErrInvitationAccepted indicates the invitation token was already redeemed.
	ErrInvitationAccepted = errors.New("invitation has already been accepted")
)

// MembershipFinder is the narrow read interface the request resolver
// depends on. FindMembership returns (nil, nil) when the user has no
// membership in the organization.
type MembershipFinder interface {
	FindMembership(ctx context.Context, userID, organizationID string) (*Membership, error)
}

// Store is the persistence interface for organization data.
type Store interface {
	MembershipFinder

	GetOrganization(ctx context.Context, id string) (*Organization, error)
	ListMembers(ctx context.Context, organizationID string) ([]*Member, error)
	AddMember(ctx context.Context, m *Membership) error
	UpdateMemberRole(ctx context.Context, userID, organizationID string, role rbac.Role) error
	RemoveMember(ctx context.Context, userID, organizationID string) error
	CountMembersWithRole(ctx context.Context, organizationID string, role rbac.Role) (int, error)

	CreateInvitation(ctx context.Context, inv *Invitation) error
	GetInvitationByToken(ctx context.Context, token string) (*Invitation, error)
	AcceptInvitation(ctx context.Context, id, userID string, acceptedAt time.Time) error
	DeleteExpiredInvitations(ctx context.Context, now time.Time) (int64, error)
}
