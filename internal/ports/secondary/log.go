package secondary

import "context"

// ActionLogWriter records orchestration actions as best-effort text
// log entries. Failures are tolerated - the log is not audit-grade.
type ActionLogWriter interface {
	LogAction(ctx context.Context, entityType, entityID, action, detail string) error
}
