package api

import (
	"net/http"
	"strconv"

	"github.com/strydehq/stryde/pkg/authz"
	"github.com/strydehq/stryde/pkg/httputil"
)

func (s *Server) listAuditEvents(w http.ResponseWriter, r *http.Request) {
	ac := authz.FromContext(r.Context())

	limit := 50
	if v := httputil.ParseQueryString(r, "limit", ""); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 || parsed > 500 {
			httputil.WriteBadRequest(w, "Invalid limit")
			return
		}
		limit = parsed
	}

	events, err := s.auditLog.List(r.Context(), ac.OrganizationID, limit)
	if err != nil {
		s.logger.WithError(err).Error("failed to list audit events")
		httputil.WriteMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	httputil.WriteSuccess(w, map[string]any{"events": events})
}
