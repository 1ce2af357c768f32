package workflow

import "time"

// DefaultUndoWindow is how long after a transition an undo may still be
// applied. Undo exists to correct a misclick, not to serve as a durable
// rollback mechanism, so the window is deliberately short.
const DefaultUndoWindow = 5 * time.Minute

// UndoTarget describes the state an undo should restore.
//
// Status: nil leaves the phase untouched, otherwise the phase is set.
// ReviewStatus: nil leaves the gate untouched; a pointer to ReviewNone
// clears the gate; any other pointer sets the gate. The distinction
// between nil and a pointer is load-bearing - collapsing them breaks
// gate clearing.
type UndoTarget struct {
	Status       *Status
	ReviewStatus *ReviewStatus
}

// WithinUndoWindow reports whether an action taken at originatedAt may
// still be undone at now. A zero window means the default.
func WithinUndoWindow(originatedAt, now time.Time, window time.Duration) bool {
	if window <= 0 {
		window = DefaultUndoWindow
	}
	return now.Sub(originatedAt) <= window
}

// UndoAlreadyApplied reports whether the current board state already
// matches the restoration target. This makes undo safe to receive
// twice: the second delivery observes the restored state and becomes a
// no-op.
func UndoAlreadyApplied(current Status, currentGate ReviewStatus, target UndoTarget) bool {
	if target.Status != nil && current != *target.Status {
		return false
	}
	if target.ReviewStatus != nil && currentGate != *target.ReviewStatus {
		return false
	}
	return true
}
