package audit

import (
	"context"
	"time"
)

// EventType identifies what happened.
type EventType string

const (
	EventRoleChanged        EventType = "member.role_changed"
	EventMemberRemoved      EventType = "member.removed"
	EventMemberInvited      EventType = "member.invited"
	EventInvitationAccepted EventType = "member.invitation_accepted"
)

// Event is one audit log entry.
type Event struct {
	ID             int64             `json:"id"`
	Type           EventType         `json:"type"`
	OrganizationID string            `json:"organization_id"`
	ActorID        string            `json:"actor_id"`
	TargetID       string            `json:"target_id,omitempty"`
	Details        map[string]string `json:"details,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
}

// Recorder persists audit events. Recording failures must not fail the
// operation being audited; implementations log and swallow errors.
type Recorder interface {
	Record(ctx context.Context, event Event)
}

// NopRecorder discards all events.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, Event) {}
