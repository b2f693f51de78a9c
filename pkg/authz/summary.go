package authz

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/strydehq/stryde/pkg/observability"
	"github.com/strydehq/stryde/pkg/orgs"
	"github.com/strydehq/stryde/pkg/rbac"
)

// MembershipSummary is the wire form of an authorization context. It is
// the single payload clients consume for UI gating, so permission checks
// client side and server side read from the same role table.
//
// Can is total: it has an entry for every known permission, true or
// false, so a missing key is always a client bug rather than a denied
// permission.
type MembershipSummary struct {
	Subject      SummarySubject      `json:"subject"`
	Member       SummaryMember       `json:"member"`
	Organization SummaryOrganization `json:"organization"`
	Role         string              `json:"role"`
	Permissions  []string            `json:"permissions"`
	Can          map[string]bool     `json:"can"`
	GeneratedAt  time.Time           `json:"generatedAt"`
}

type SummarySubject struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

type SummaryMember struct {
	SubjectID      string `json:"subjectId"`
	OrganizationID string `json:"organizationId"`
	Role           string `json:"role"`
}

type SummaryOrganization struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// HasPermission reports whether the summary grants perm.
func (s *MembershipSummary) HasPermission(perm string) bool {
	return s.Can[perm]
}

// SummaryCacheTTL bounds how stale a cached summary can get after a
// role change lands in the database.
const SummaryCacheTTL = 30 * time.Second

const summaryCacheSize = 4096

// OrganizationGetter loads organization records for summaries.
type OrganizationGetter interface {
	GetOrganization(ctx context.Context, id string) (*orgs.Organization, error)
}

// SummaryService builds membership summaries and caches them briefly to
// absorb the polling pattern of client mirrors.
type SummaryService struct {
	store   OrganizationGetter
	cache   *expirable.LRU[string, *MembershipSummary]
	metrics *observability.Metrics
	now     func() time.Time
}

// NewSummaryService creates a summary service with a TTL cache. metrics
// may be nil.
func NewSummaryService(store OrganizationGetter, ttl time.Duration, metrics *observability.Metrics) *SummaryService {
	if ttl <= 0 {
		ttl = SummaryCacheTTL
	}
	return &SummaryService{
		store:   store,
		cache:   expirable.NewLRU[string, *MembershipSummary](summaryCacheSize, nil, ttl),
		metrics: metrics,
		now:     time.Now,
	}
}

// Summary returns the membership summary for the resolved context,
// serving from cache within the TTL.
func (s *SummaryService) Summary(ctx context.Context, ac *Context) (*MembershipSummary, error) {
	if s.metrics != nil {
		s.metrics.SummaryRequestsTotal.Inc()
	}

	key := ac.Subject.ID + "/" + ac.OrganizationID
	if cached, ok := s.cache.Get(key); ok {
		if s.metrics != nil {
			s.metrics.SummaryCacheHitsTotal.Inc()
		}
		return cached, nil
	}

	org, err := s.store.GetOrganization(ctx, ac.OrganizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to build membership summary: %w", err)
	}

	summary := buildSummary(ac, org, s.now())
	s.cache.Add(key, summary)
	return summary, nil
}

// Invalidate drops the cached summary for a member, used after role
// changes so the next fetch reflects the new role.
func (s *SummaryService) Invalidate(subjectID, organizationID string) {
	s.cache.Remove(subjectID + "/" + organizationID)
}

func buildSummary(ac *Context, org *orgs.Organization, now time.Time) *MembershipSummary {
	granted := rbac.PermissionsForRole(ac.Role)
	permissions := make([]string, len(granted))
	for i, p := range granted {
		permissions[i] = p.String()
	}

	can := make(map[string]bool, len(rbac.AllPermissions()))
	for _, p := range rbac.AllPermissions() {
		can[p.String()] = rbac.HasPermission(ac.Role, p)
	}

	return &MembershipSummary{
		Subject: SummarySubject{
			ID:    ac.Subject.ID,
			Email: ac.Subject.Email,
			Name:  ac.Subject.Name,
		},
		Member: SummaryMember{
			SubjectID:      ac.Subject.ID,
			OrganizationID: ac.OrganizationID,
			Role:           ac.Role.String(),
		},
		Organization: SummaryOrganization{
			ID:   org.ID,
			Name: org.Name,
			Slug: org.Slug,
		},
		Role:        ac.Role.String(),
		Permissions: permissions,
		Can:         can,
		GeneratedAt: now,
	}
}
