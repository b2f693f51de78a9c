package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/strydehq/stryde/pkg/observability"
)

// DBRecorder writes audit events to the audit_log table.
type DBRecorder struct {
	db     *sql.DB
	logger *observability.Logger
	now    func() time.Time
}

// NewDBRecorder creates a database-backed recorder.
func NewDBRecorder(db *sql.DB, logger *observability.Logger) *DBRecorder {
	return &DBRecorder{db: db, logger: logger, now: time.Now}
}

// Record writes the event. Failures are logged, never returned; an
// audit outage must not block member management.
func (r *DBRecorder) Record(ctx context.Context, event Event) {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = r.now()
	}

	var details []byte
	if len(event.Details) > 0 {
		details, _ = json.Marshal(event.Details)
	}

	query := `
		INSERT INTO audit_log (event_type, organization_id, actor_id, target_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	var target sql.NullString
	if event.TargetID != "" {
		target = sql.NullString{String: event.TargetID, Valid: true}
	}

	if _, err := r.db.ExecContext(ctx, query,
		string(event.Type), event.OrganizationID, event.ActorID, target, details, event.CreatedAt,
	); err != nil {
		r.logger.WithError(err).WithField("event_type", string(event.Type)).Error("failed to record audit event")
	}
}

// List returns the most recent events for an organization, newest first.
func (r *DBRecorder) List(ctx context.Context, organizationID string, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, event_type, organization_id, actor_id, target_id, details, created_at
		FROM audit_log
		WHERE organization_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, organizationID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var ev Event
		var eventType string
		var target sql.NullString
		var details []byte
		if err := rows.Scan(&ev.ID, &eventType, &ev.OrganizationID, &ev.ActorID, &target, &details, &ev.CreatedAt); err != nil {
			return nil, err
		}
		ev.Type = EventType(eventType)
		ev.TargetID = target.String
		if len(details) > 0 {
			json.Unmarshal(details, &ev.Details)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}
