package api

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/strydehq/stryde/pkg/audit"
	"github.com/strydehq/stryde/pkg/authz"
	"github.com/strydehq/stryde/pkg/httputil"
	"github.com/strydehq/stryde/pkg/observability"
	"github.com/strydehq/stryde/pkg/orgs"
	"github.com/strydehq/stryde/pkg/rbac"
)

// AuditLister reads back recorded audit events.
type AuditLister interface {
	List(ctx context.Context, organizationID string, limit int) ([]audit.Event, error)
}

// Server wires handlers onto a router behind the authorization guard.
type Server struct {
	guard     *authz.Guard
	summaries *authz.SummaryService
	members   *orgs.Service
	auditLog  AuditLister
	logger    *observability.Logger
	metrics   *observability.Metrics
}

// NewServer creates the API server.
func NewServer(
	guard *authz.Guard,
	summaries *authz.SummaryService,
	members *orgs.Service,
	logger *observability.Logger,
	metrics *observability.Metrics,
) *Server {
	return &Server{
		guard:     guard,
		summaries: summaries,
		members:   members,
		logger:    logger,
		metrics:   metrics,
	}
}

// WithAuditLog enables the audit log endpoint and returns the server.
func (s *Server) WithAuditLog(l AuditLister) *Server {
	s.auditLog = l
	return s
}

// RegisterRoutes attaches all API routes to router.
func (s *Server) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/health", s.health).Methods("GET")
	if s.metrics != nil {
		router.Handle("/metrics", s.metrics.Handler()).Methods("GET")
	}

	// The summary endpoint admits any member; the payload itself is how
	// clients learn what else they may do.
	me := router.PathPrefix("/api/me").Subrouter()
	me.Use(s.guard.RequireContext())
	me.HandleFunc("/membership", s.getMembershipSummary).Methods("GET")

	members := router.PathPrefix("/api/orgs/{org_id}/members").Subrouter()
	members.Use(s.guard.RequirePermissions(rbac.PermissionViewMembers))
	members.HandleFunc("", s.listMembers).Methods("GET")

	admin := router.PathPrefix("/api/orgs/{org_id}").Subrouter()
	admin.Use(s.guard.RequirePermissions(rbac.PermissionManageMembers))
	admin.HandleFunc("/members/{user_id}/role", s.changeMemberRole).Methods("PUT")
	admin.HandleFunc("/members/{user_id}", s.removeMember).Methods("DELETE")
	admin.HandleFunc("/invitations", s.createInvitation).Methods("POST")

	if s.auditLog != nil {
		auditRoutes := router.PathPrefix("/api/orgs/{org_id}/audit").Subrouter()
		auditRoutes.Use(s.guard.RequireRoles(rbac.RoleOwner))
		auditRoutes.HandleFunc("", s.listAuditEvents).Methods("GET")
	}

	// Accepting an invitation needs a session but no existing membership.
	invitations := router.PathPrefix("/api/invitations").Subrouter()
	invitations.Use(s.guard.RequireSession())
	invitations.HandleFunc("/{token}/accept", s.acceptInvitation).Methods("POST")

	// Leaving is allowed for any member regardless of role.
	leave := router.PathPrefix("/api/orgs/{org_id}/leave").Subrouter()
	leave.Use(s.guard.RequireContext())
	leave.HandleFunc("", s.leaveOrganization).Methods("POST")
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	httputil.WriteSuccess(w, map[string]string{"status": "ok"})
}
