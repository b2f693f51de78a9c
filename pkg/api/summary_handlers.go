package api

import (
	"net/http"

	"github.com/strydehq/stryde/pkg/authz"
	"github.com/strydehq/stryde/pkg/httputil"
)

// getMembershipSummary returns the caller's resolved membership plus the
// full permission map for their role. Client mirrors poll this endpoint
// and answer all their checks from the payload.
func (s *Server) getMembershipSummary(w http.ResponseWriter, r *http.Request) {
	ac := authz.FromContext(r.Context())

	summary, err := s.summaries.Summary(r.Context(), ac)
	if err != nil {
		s.logger.WithError(err).Error("failed to build membership summary")
		httputil.WriteMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	httputil.WriteSuccess(w, summary)
}
