package mirror

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/strydehq/stryde/pkg/authz"
	"github.com/strydehq/stryde/pkg/rbac"
)

// Status is the client's view of the membership summary lifecycle.
type Status string

const (
	// StatusLoading means no fetch has completed yet.
	StatusLoading Status = "loading"
	// StatusReady means a summary is cached and answering checks.
	StatusReady Status = "ready"
	// StatusError means the last fetch failed with nothing cached.
	StatusError Status = "error"
)

// DefaultTTL is how long a fetched summary answers checks before the
// client revalidates.
const DefaultTTL = 30 * time.Second

const summaryPath = "/api/me/membership"

// TokenSource supplies the bearer token for summary fetches.
type TokenSource func() string

// DenialError is returned when the server refuses the summary fetch.
type DenialError struct {
	StatusCode int
	Message    string
}

func (e *DenialError) Error() string {
	return fmt.Sprintf("membership fetch denied (%d): %s", e.StatusCode, e.Message)
}

// Client fetches and caches the membership summary. Safe for concurrent
// use; concurrent fetches for the same client collapse into one request.
type Client struct {
	baseURL    string
	token      TokenSource
	httpClient *http.Client
	ttl        time.Duration

	group singleflight.Group

	mu        sync.RWMutex
	summary   *authz.MembershipSummary
	fetchedAt time.Time
	lastErr   error
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client used for fetches.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTTL sets how long a fetched summary stays fresh.
func WithTTL(ttl time.Duration) Option {
	return func(c *Client) { c.ttl = ttl }
}

// NewClient creates a mirror client for the given API base URL.
func NewClient(baseURL string, token TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		ttl:        DefaultTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Summary returns the cached membership summary, fetching when the cache
// is empty or stale. Concurrent callers share a single fetch.
func (c *Client) Summary(ctx context.Context) (*authz.MembershipSummary, error) {
	c.mu.RLock()
	summary, fresh := c.summary, time.Since(c.fetchedAt) < c.ttl
	c.mu.RUnlock()
	if summary != nil && fresh {
		return summary, nil
	}
	return c.Refresh(ctx)
}

// Refresh fetches the summary regardless of cache freshness. Concurrent
// refreshes still collapse into one request, and the shared fetch
// outlives the caller that started it: a waiter tearing down must not
// cancel the request the remaining waiters depend on. The HTTP client's
// timeout bounds the request instead.
func (c *Client) Refresh(ctx context.Context) (*authz.MembershipSummary, error) {
	fetchCtx := context.WithoutCancel(ctx)
	v, err, _ := c.group.Do("summary", func() (interface{}, error) {
		summary, err := c.fetch(fetchCtx)

		c.mu.Lock()
		c.lastErr = err
		if err == nil {
			c.summary = summary
			c.fetchedAt = time.Now()
		}
		c.mu.Unlock()

		return summary, err
	})
	if err != nil {
		return nil, err
	}
	return v.(*authz.MembershipSummary), nil
}

func (c *Client) fetch(ctx context.Context) (*authz.MembershipSummary, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+summaryPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build membership request: %w", err)
	}
	if c.token != nil {
		if tok := c.token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch membership summary: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var body struct {
			Message string `json:"message"`
		}
		json.NewDecoder(resp.Body).Decode(&body)
		return nil, &DenialError{StatusCode: resp.StatusCode, Message: body.Message}
	}

	var summary authz.MembershipSummary
	if err := json.NewDecoder(resp.Body).Decode(&summary); err != nil {
		return nil, fmt.Errorf("failed to decode membership summary: %w", err)
	}
	return &summary, nil
}

// Status reports the client's lifecycle state.
func (c *Client) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	switch {
	case c.summary != nil:
		return StatusReady
	case c.lastErr != nil:
		return StatusError
	default:
		return StatusLoading
	}
}

// Cached returns the cached summary without fetching, or nil.
func (c *Client) Cached() *authz.MembershipSummary {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.summary
}

// Can reports whether the cached summary grants the permissions, read
// from the materialized can map rather than the role tables. With
// requireAll false any single grant suffices (OR), with requireAll true
// every permission must be granted (AND, vacuously true for an empty
// list). Answers false until a summary is cached.
func (c *Client) Can(perms []rbac.Permission, requireAll bool) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.summary == nil {
		return false
	}
	if requireAll {
		for _, p := range perms {
			if !c.summary.Can[p.String()] {
				return false
			}
		}
		return true
	}
	for _, p := range perms {
		if c.summary.Can[p.String()] {
			return true
		}
	}
	return false
}

// HasRole reports whether the cached summary's role is one of roles.
func (c *Client) HasRole(roles ...rbac.Role) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.summary == nil {
		return false
	}
	for _, r := range roles {
		if c.summary.Role == r.String() {
			return true
		}
	}
	return false
}

// Invalidate drops the cached summary so the next check refetches.
func (c *Client) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.summary = nil
	c.fetchedAt = time.Time{}
}
