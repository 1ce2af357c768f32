// Package secondary defines the secondary ports (driven adapters) of
// the application: the external project board, the internal mirror
// store, the intake store, notifications, and the action log.
package secondary

import "context"

// BoardItem is a card on the external project board. The board is the
// authoritative source of truth for an item's phase and review gate;
// the internal store only mirrors it.
type BoardItem struct {
	ID           string
	IssueNumber  int
	Title        string
	Status       string
	ReviewStatus string
}

// BoardIssue is the issue content behind a board item.
type BoardIssue struct {
	Number int
	URL    string
	Title  string
	Body   string
	State  string
}

// BoardComment is a single comment on an issue, oldest first in listings.
type BoardComment struct {
	ID        int64
	Author    string
	Body      string
	CreatedAt string
}

// BoardPR describes a pull request on the board's backing repository.
type BoardPR struct {
	Number  int
	Title   string
	State   string
	HeadRef string
	Merged  bool
}

// BoardItemFilter narrows ListItems. Zero values match everything.
type BoardItemFilter struct {
	Status string
}

// Board is the capability interface over an external kanban-style
// project board. Multiple backends may implement it; the backend is
// selected by configuration at startup.
//
// Mutating calls are at-least-once idempotent at the adapter's
// discretion. The core never retries - failures surface to the caller.
type Board interface {
	// Init verifies connectivity and any lazily resolved identifiers.
	Init(ctx context.Context) error

	// ListItems returns the board items matching the filter. Resolving
	// "the item for issue N" is a ListItems call plus a linear scan;
	// callers must tolerate the O(n) cost and absence.
	ListItems(ctx context.Context, filter BoardItemFilter) ([]*BoardItem, error)

	GetIssueDetails(ctx context.Context, issueNumber int) (*BoardIssue, error)
	GetIssueComments(ctx context.Context, issueNumber int) ([]*BoardComment, error)
	AddIssueComment(ctx context.Context, issueNumber int, body string) error

	// CreateIssue opens a new issue and returns it. Used when an
	// approved intake record enters the pipeline.
	CreateIssue(ctx context.Context, title, body string) (*BoardIssue, error)

	UpdateItemStatus(ctx context.Context, itemID, status string) error
	UpdateItemReviewStatus(ctx context.Context, itemID, status string) error
	ClearItemReviewStatus(ctx context.Context, itemID string) error

	// HasReviewStatusField reports whether the backend models review
	// gates at all. When false, gate mutations are silent no-ops.
	HasReviewStatusField() bool

	// RemoveItem detaches an item from the board when its work item is
	// explicitly deleted.
	RemoveItem(ctx context.Context, itemID string) error

	MergePullRequest(ctx context.Context, prNumber int, title, body string) error
	GetPRDetails(ctx context.Context, prNumber int) (*BoardPR, error)
	DeleteBranch(ctx context.Context, name string) error
}

// FindItemByIssue resolves the board item for an issue number via the
// canonical list-and-scan. Returns nil when no item exists (not yet
// created or already closed).
func FindItemByIssue(ctx context.Context, board Board, issueNumber int) (*BoardItem, error) {
	items, err := board.ListItems(ctx, BoardItemFilter{})
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if item.IssueNumber == issueNumber {
			return item, nil
		}
	}
	return nil, nil
}
