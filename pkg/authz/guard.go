package authz

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/strydehq/stryde/pkg/httputil"
	"github.com/strydehq/stryde/pkg/observability"
	"github.com/strydehq/stryde/pkg/rbac"
)

// Decision outcomes recorded on the authz metrics counter.
const (
	outcomeAllowed      = "allowed"
	outcomeUnauthorized = "unauthorized"
	outcomeMissingOrg   = "missing_org"
	outcomeNotAMember   = "not_a_member"
	outcomeForbidden    = "forbidden"
	outcomeError        = "error"
)

// Guard builds route middleware that resolves the acting member and
// enforces requirements before the handler runs.
type Guard struct {
	resolver *Resolver
	logger   *observability.Logger
	metrics  *observability.Metrics
}

// NewGuard creates a guard. metrics may be nil.
func NewGuard(resolver *Resolver, logger *observability.Logger, metrics *observability.Metrics) *Guard {
	return &Guard{resolver: resolver, logger: logger, metrics: metrics}
}

// RequireContext admits any authenticated member of the target
// organization. Handlers downstream read the result with FromContext.
func (g *Guard) RequireContext() mux.MiddlewareFunc {
	return g.Require(Requirement{})
}

// RequireRoles admits members whose role is one of roles.
func (g *Guard) RequireRoles(roles ...rbac.Role) mux.MiddlewareFunc {
	return g.Require(Requirement{Roles: roles})
}

// RequirePermissions admits members whose role grants at least one of
// perms.
func (g *Guard) RequirePermissions(perms ...rbac.Permission) mux.MiddlewareFunc {
	return g.Require(Requirement{Permissions: perms})
}

// RequireAllPermissions admits members whose role grants every one of
// perms.
func (g *Guard) RequireAllPermissions(perms ...rbac.Permission) mux.MiddlewareFunc {
	return g.Require(Requirement{Permissions: perms, RequireAll: true})
}

// RequireSession admits any authenticated subject without resolving an
// organization. Handlers read the subject with SubjectFromContext.
func (g *Guard) RequireSession() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sub, err := g.resolver.ResolveSubject(r)
			if err != nil {
				g.deny(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSubject(r.Context(), sub)))
		})
	}
}

// Require builds middleware enforcing an arbitrary requirement.
func (g *Guard) Require(req Requirement) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ac, err := g.resolver.Resolve(r)
			if err != nil {
				g.deny(w, r, err)
				return
			}

			ok, denial := req.Evaluate(ac.Role)
			if !ok {
				g.record(outcomeForbidden)
				g.logger.WithFields(map[string]any{
					"subject_id":      ac.Subject.ID,
					"organization_id": ac.OrganizationID,
					"role":            ac.Role.String(),
					"path":            r.URL.Path,
					"denial":          denial,
				}).Warn("request denied by access requirement")
				httputil.WriteForbidden(w, denial)
				return
			}

			g.record(outcomeAllowed)
			next.ServeHTTP(w, r.WithContext(WithContext(r.Context(), ac)))
		})
	}
}

func (g *Guard) deny(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		g.record(outcomeUnauthorized)
		httputil.WriteUnauthorized(w, "Unauthorized")
	case errors.Is(err, ErrMissingOrganizationContext):
		g.record(outcomeMissingOrg)
		httputil.WriteBadRequest(w, "Organization ID is required")
	case errors.Is(err, ErrNotAMember):
		g.record(outcomeNotAMember)
		httputil.WriteForbidden(w, "User is not a member of this organization")
	default:
		g.record(outcomeError)
		g.logger.WithError(err).WithField("path", r.URL.Path).Error("authorization resolution failed")
		httputil.WriteMessage(w, http.StatusInternalServerError, "Internal server error")
	}
}

func (g *Guard) record(outcome string) {
	if g.metrics != nil {
		g.metrics.RecordDecision(outcome)
	}
}
