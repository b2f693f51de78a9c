package mirror

import (
	"github.com/strydehq/stryde/pkg/rbac"
)

// Branch is the outcome of evaluating a Guard against a client.
type Branch int

const (
	// BranchLoading means no summary has arrived yet.
	BranchLoading Branch = iota
	// BranchDenied means the summary denies the requirement, or the
	// last fetch failed. Errors always land here, never in allowed.
	BranchDenied
	// BranchAllowed means the summary satisfies the requirement.
	BranchAllowed
)

func (b Branch) String() string {
	switch b {
	case BranchLoading:
		return "loading"
	case BranchDenied:
		return "denied"
	default:
		return "allowed"
	}
}

// Guard gates a piece of UI or tooling on roles and permissions. The
// zero Guard admits any member with a loaded summary.
type Guard struct {
	Roles       []rbac.Role
	Permissions []rbac.Permission
	RequireAll  bool
}

// Evaluate answers which branch the client's current state selects.
// All checks read the server-built summary, so a guard can never grant
// something the server-side enforcement would deny.
func (g Guard) Evaluate(c *Client) Branch {
	switch c.Status() {
	case StatusLoading:
		return BranchLoading
	case StatusError:
		return BranchDenied
	}

	if len(g.Roles) > 0 && !c.HasRole(g.Roles...) {
		return BranchDenied
	}
	if len(g.Permissions) > 0 && !c.Can(g.Permissions, g.RequireAll) {
		return BranchDenied
	}
	return BranchAllowed
}

// Handlers hold the per-branch callbacks for Render. Nil entries are
// skipped.
type Handlers struct {
	Allowed func()
	Denied  func()
	Loading func()
	// Error runs in place of Denied when the client is in the error
	// state. When nil the error state renders Denied.
	Error func()
}

// Render evaluates the guard and runs the matching handler, returning
// the branch it selected.
func (g Guard) Render(c *Client, h Handlers) Branch {
	branch := g.Evaluate(c)
	switch branch {
	case BranchAllowed:
		if h.Allowed != nil {
			h.Allowed()
		}
	case BranchDenied:
		if c.Status() == StatusError && h.Error != nil {
			h.Error()
		} else if h.Denied != nil {
			h.Denied()
		}
	case BranchLoading:
		if h.Loading != nil {
			h.Loading()
		}
	}
	return branch
}
