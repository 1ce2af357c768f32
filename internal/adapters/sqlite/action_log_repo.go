package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/flowboard/internal/ctxutil"
	"github.com/example/flowboard/internal/ports/secondary"
)

// ActionLogRepository implements secondary.ActionLogWriter with SQLite.
// The log is best-effort text logging, not an audit-grade event store.
type ActionLogRepository struct {
	db *sql.DB
}

// NewActionLogRepository creates a new SQLite action log repository.
func NewActionLogRepository(db *sql.DB) *ActionLogRepository {
	return &ActionLogRepository{db: db}
}

// LogAction records an orchestration action. The actor is taken from
// the request context when present.
func (r *ActionLogRepository) LogAction(ctx context.Context, entityType, entityID, action, detail string) error {
	actor := ctxutil.ActorFromContext(ctx)

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO action_log (actor, entity_type, entity_id, action, detail) VALUES (?, ?, ?, ?, ?)",
		nullString(actor), entityType, entityID, action, nullString(detail),
	)
	if err != nil {
		return fmt.Errorf("failed to log action: %w", err)
	}

	return nil
}

// ActionLogEntry is one recorded action.
type ActionLogEntry struct {
	ID         int64
	Actor      string
	EntityType string
	EntityID   string
	Action     string
	Detail     string
	CreatedAt  string
}

// Recent returns the most recent log entries, newest first.
func (r *ActionLogRepository) Recent(ctx context.Context, limit int) ([]*ActionLogEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT id, actor, entity_type, entity_id, action, detail, created_at FROM action_log ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list action log: %w", err)
	}
	defer rows.Close()

	var entries []*ActionLogEntry
	for rows.Next() {
		var (
			actor     sql.NullString
			detail    sql.NullString
			createdAt time.Time
		)
		entry := &ActionLogEntry{}
		if err := rows.Scan(&entry.ID, &actor, &entry.EntityType, &entry.EntityID, &entry.Action, &detail, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan action log entry: %w", err)
		}
		entry.Actor = actor.String
		entry.Detail = detail.String
		entry.CreatedAt = createdAt.Format(time.RFC3339)
		entries = append(entries, entry)
	}

	return entries, nil
}

// Ensure ActionLogRepository implements the interface
var _ secondary.ActionLogWriter = (*ActionLogRepository)(nil)
