package primary

import (
	"context"
	"time"
)

// UndoRequest reverses the last phase/gate change on an issue. The
// request is ephemeral - everything needed is encoded in the callback
// payload, nothing is stored server-side.
//
// RestoreStatus: nil leaves the phase untouched. RestoreReviewStatus:
// nil leaves the gate untouched, a pointer to "" clears it, any other
// pointer sets it.
type UndoRequest struct {
	IssueNumber         int
	RestoreStatus       *string
	RestoreReviewStatus *string

	// Timestamp is when the original action happened; Window bounds
	// how long after that an undo is accepted (zero means the 5 minute
	// default).
	Timestamp time.Time
	Window    time.Duration
}

// UndoResponse reports the outcome. Expired and AlreadyDone are
// distinct from failure so callers can render "too late" or "nothing to
// do" rather than "broken".
type UndoResponse struct {
	Success     bool
	Expired     bool
	AlreadyDone bool
}

// UndoService reverses recent transitions within a bounded window,
// idempotently.
type UndoService interface {
	UndoStatusChange(ctx context.Context, req UndoRequest) (*UndoResponse, error)
}
