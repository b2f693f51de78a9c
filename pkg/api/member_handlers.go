package api

import (
	"errors"
	"net/http"

	"github.com/strydehq/stryde/pkg/authz"
	"github.com/strydehq/stryde/pkg/httputil"
	"github.com/strydehq/stryde/pkg/orgs"
	"github.com/strydehq/stryde/pkg/rbac"
)

func (s *Server) listMembers(w http.ResponseWriter, r *http.Request) {
	ac := authz.FromContext(r.Context())

	members, err := s.members.ListMembers(r.Context(), ac.OrganizationID)
	if err != nil {
		s.logger.WithError(err).Error("failed to list members")
		httputil.WriteMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	httputil.WriteSuccess(w, map[string]any{"members": members})
}

type changeRoleRequest struct {
	Role string `json:"role"`
}

func (s *Server) changeMemberRole(w http.ResponseWriter, r *http.Request) {
	ac := authz.FromContext(r.Context())

	targetID, ok := httputil.ParsePathStringOrError(w, r, "user_id")
	if !ok {
		return
	}

	var req changeRoleRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	newRole, err := rbac.ParseRole(req.Role)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid role: "+req.Role)
		return
	}

	if err := s.members.ChangeRole(r.Context(), ac.Membership, targetID, newRole); err != nil {
		s.writeMemberError(w, err)
		return
	}

	s.summaries.Invalidate(targetID, ac.OrganizationID)
	httputil.WriteNoContent(w)
}

func (s *Server) removeMember(w http.ResponseWriter, r *http.Request) {
	ac := authz.FromContext(r.Context())

	targetID, ok := httputil.ParsePathStringOrError(w, r, "user_id")
	if !ok {
		return
	}

	if err := s.members.RemoveMember(r.Context(), ac.Membership, targetID); err != nil {
		s.writeMemberError(w, err)
		return
	}

	s.summaries.Invalidate(targetID, ac.OrganizationID)
	httputil.WriteNoContent(w)
}

func (s *Server) leaveOrganization(w http.ResponseWriter, r *http.Request) {
	ac := authz.FromContext(r.Context())

	if err := s.members.RemoveMember(r.Context(), ac.Membership, ac.Subject.ID); err != nil {
		s.writeMemberError(w, err)
		return
	}

	s.summaries.Invalidate(ac.Subject.ID, ac.OrganizationID)
	httputil.WriteNoContent(w)
}

type inviteRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (s *Server) createInvitation(w http.ResponseWriter, r *http.Request) {
	ac := authz.FromContext(r.Context())

	var req inviteRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, req.Email, "email") {
		return
	}

	role, err := rbac.ParseRole(req.Role)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid role: "+req.Role)
		return
	}

	inv, err := s.members.Invite(r.Context(), ac.Membership, req.Email, role)
	if err != nil {
		s.writeMemberError(w, err)
		return
	}
	httputil.WriteCreated(w, inv)
}

func (s *Server) acceptInvitation(w http.ResponseWriter, r *http.Request) {
	sub, ok := authz.SubjectFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Unauthorized")
		return
	}

	token, ok := httputil.ParsePathStringOrError(w, r, "token")
	if !ok {
		return
	}

	membership, err := s.members.AcceptInvitation(r.Context(), token, sub.ID)
	if err != nil {
		s.writeMemberError(w, err)
		return
	}
	httputil.WriteCreated(w, membership)
}

// writeMemberError maps member management errors onto the wire.
func (s *Server) writeMemberError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, orgs.ErrMemberNotFound):
		httputil.WriteNotFound(w, "Member not found")
	case errors.Is(err, orgs.ErrRoleNotManageable):
		httputil.WriteForbidden(w, "Access denied. Role is not manageable")
	case errors.Is(err, orgs.ErrLastOwner):
		httputil.WriteConflict(w, "Organization must retain at least one owner")
	case errors.Is(err, orgs.ErrInvitationNotFound):
		httputil.WriteNotFound(w, "Invitation not found")
	case errors.Is(err, orgs.ErrInvitationExpired):
		httputil.WriteMessage(w, http.StatusGone, "Invitation has expired")
	case errors.Is(err, orgs.ErrInvitationAccepted):
		httputil.WriteConflict(w, "Invitation has already been accepted")
	case errors.Is(err, orgs.ErrAlreadyMember):
		httputil.WriteConflict(w, "User is already a member of this organization")
	default:
		s.logger.WithError(err).Error("member operation failed")
		httputil.WriteMessage(w, http.StatusInternalServerError, "Internal server error")
	}
}
