// Package memboard is an in-memory implementation of the Board port.
// It backs local development and tests, and doubles as the reference
// for what a board backend must guarantee: single-field mutations are
// atomic, lookups by issue number are list-and-scan.
package memboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/example/flowboard/internal/ports/secondary"
)

// Board is an in-memory project board.
type Board struct {
	mu sync.Mutex

	nextIssue   int
	nextItem    int
	nextComment int64

	issues   map[int]*secondary.BoardIssue
	comments map[int][]*secondary.BoardComment
	items    map[string]*secondary.BoardItem
	prs      map[int]*secondary.BoardPR
	branches map[string]bool

	// NoReviewField simulates a backend without a review status field.
	NoReviewField bool
}

// New creates an empty in-memory board.
func New() *Board {
	return &Board{
		nextIssue: 1,
		nextItem:  1,
		issues:    make(map[int]*secondary.BoardIssue),
		comments:  make(map[int][]*secondary.BoardComment),
		items:     make(map[string]*secondary.BoardItem),
		prs:       make(map[int]*secondary.BoardPR),
		branches:  make(map[string]bool),
	}
}

// Init implements secondary.Board.
func (b *Board) Init(ctx context.Context) error {
	return nil
}

// ListItems implements secondary.Board.
func (b *Board) ListItems(ctx context.Context, filter secondary.BoardItemFilter) ([]*secondary.BoardItem, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var items []*secondary.BoardItem
	for _, item := range b.items {
		if filter.Status != "" && item.Status != filter.Status {
			continue
		}
		copied := *item
		items = append(items, &copied)
	}
	return items, nil
}

// GetIssueDetails implements secondary.Board.
func (b *Board) GetIssueDetails(ctx context.Context, issueNumber int) (*secondary.BoardIssue, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	issue, ok := b.issues[issueNumber]
	if !ok {
		return nil, fmt.Errorf("issue #%d not found", issueNumber)
	}
	copied := *issue
	return &copied, nil
}

// GetIssueComments implements secondary.Board. Comments are returned
// oldest first.
func (b *Board) GetIssueComments(ctx context.Context, issueNumber int) ([]*secondary.BoardComment, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.issues[issueNumber]; !ok {
		return nil, fmt.Errorf("issue #%d not found", issueNumber)
	}

	var out []*secondary.BoardComment
	for _, c := range b.comments[issueNumber] {
		copied := *c
		out = append(out, &copied)
	}
	return out, nil
}

// AddIssueComment implements secondary.Board.
func (b *Board) AddIssueComment(ctx context.Context, issueNumber int, body string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.issues[issueNumber]; !ok {
		return fmt.Errorf("issue #%d not found", issueNumber)
	}

	b.nextComment++
	b.comments[issueNumber] = append(b.comments[issueNumber], &secondary.BoardComment{
		ID:        b.nextComment,
		Body:      body,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	})
	return nil
}

// CreateIssue implements secondary.Board. A board item is created
// alongside the issue, mirroring how project automation adds new issues
// to the board.
func (b *Board) CreateIssue(ctx context.Context, title, body string) (*secondary.BoardIssue, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	number := b.nextIssue
	b.nextIssue++

	issue := &secondary.BoardIssue{
		Number: number,
		URL:    fmt.Sprintf("memboard://issues/%d", number),
		Title:  title,
		Body:   body,
		State:  "open",
	}
	b.issues[number] = issue

	itemID := fmt.Sprintf("ITEM-%d", b.nextItem)
	b.nextItem++
	b.items[itemID] = &secondary.BoardItem{
		ID:          itemID,
		IssueNumber: number,
		Title:       title,
	}

	copied := *issue
	return &copied, nil
}

// UpdateItemStatus implements secondary.Board.
func (b *Board) UpdateItemStatus(ctx context.Context, itemID, status string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	item, ok := b.items[itemID]
	if !ok {
		return fmt.Errorf("board item %s not found", itemID)
	}
	item.Status = status
	return nil
}

// UpdateItemReviewStatus implements secondary.Board.
func (b *Board) UpdateItemReviewStatus(ctx context.Context, itemID, status string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.NoReviewField {
		return nil
	}
	item, ok := b.items[itemID]
	if !ok {
		return fmt.Errorf("board item %s not found", itemID)
	}
	item.ReviewStatus = status
	return nil
}

// ClearItemReviewStatus implements secondary.Board.
func (b *Board) ClearItemReviewStatus(ctx context.Context, itemID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.NoReviewField {
		return nil
	}
	item, ok := b.items[itemID]
	if !ok {
		return fmt.Errorf("board item %s not found", itemID)
	}
	item.ReviewStatus = ""
	return nil
}

// HasReviewStatusField implements secondary.Board.
func (b *Board) HasReviewStatusField() bool {
	return !b.NoReviewField
}

// RemoveItem implements secondary.Board.
func (b *Board) RemoveItem(ctx context.Context, itemID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.items[itemID]; !ok {
		return fmt.Errorf("board item %s not found", itemID)
	}
	delete(b.items, itemID)
	return nil
}

// MergePullRequest implements secondary.Board.
func (b *Board) MergePullRequest(ctx context.Context, prNumber int, title, body string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	pr, ok := b.prs[prNumber]
	if !ok {
		return fmt.Errorf("pull request #%d not found", prNumber)
	}
	if pr.Merged {
		return fmt.Errorf("pull request #%d already merged", prNumber)
	}
	pr.Merged = true
	pr.State = "closed"
	return nil
}

// GetPRDetails implements secondary.Board.
func (b *Board) GetPRDetails(ctx context.Context, prNumber int) (*secondary.BoardPR, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	pr, ok := b.prs[prNumber]
	if !ok {
		return nil, fmt.Errorf("pull request #%d not found", prNumber)
	}
	copied := *pr
	return &copied, nil
}

// DeleteBranch implements secondary.Board.
func (b *Board) DeleteBranch(ctx context.Context, name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.branches[name] {
		return fmt.Errorf("branch %s not found", name)
	}
	delete(b.branches, name)
	return nil
}

// SeedPR adds a pull request, for tests and local development.
func (b *Board) SeedPR(prNumber int, title, headRef string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.prs[prNumber] = &secondary.BoardPR{
		Number:  prNumber,
		Title:   title,
		State:   "open",
		HeadRef: headRef,
	}
	if headRef != "" {
		b.branches[headRef] = true
	}
}

// Ensure Board implements the interface
var _ secondary.Board = (*Board)(nil)
