package github

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/example/flowboard/internal/ports/secondary"
)

const (
	statusLabelPrefix = "status: "
	reviewLabelPrefix = "review: "

	perPage  = 100
	maxPages = 10
)

// Board implements secondary.Board on top of a GitHub repository.
// Columns are "status: X" labels and review gates are "review: X"
// labels; at most one of each is kept per issue.
type Board struct {
	client *Client
}

// NewBoard creates a Board backed by the given client.
func NewBoard(client *Client) *Board {
	return &Board{client: client}
}

type ghLabel struct {
	Name string `json:"name"`
}

type ghIssue struct {
	Number      int       `json:"number"`
	HTMLURL     string    `json:"html_url"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	State       string    `json:"state"`
	Labels      []ghLabel `json:"labels"`
	PullRequest *struct{} `json:"pull_request,omitempty"`
}

type ghComment struct {
	ID        int64  `json:"id"`
	Body      string `json:"body"`
	CreatedAt string `json:"created_at"`
	User      struct {
		Login string `json:"login"`
	} `json:"user"`
}

type ghPR struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	State  string `json:"state"`
	Merged bool   `json:"merged"`
	Head   struct {
		Ref string `json:"ref"`
	} `json:"head"`
}

func itemID(issueNumber int) string {
	return fmt.Sprintf("issue-%d", issueNumber)
}

func parseItemID(id string) (int, error) {
	rest, ok := strings.CutPrefix(id, "issue-")
	if !ok {
		return 0, fmt.Errorf("invalid board item id %q", id)
	}
	n, err := strconv.Atoi(rest)
	if err != nil {
		return 0, fmt.Errorf("invalid board item id %q", id)
	}
	return n, nil
}

func labelsToItem(issue *ghIssue) *secondary.BoardItem {
	item := &secondary.BoardItem{
		ID:          itemID(issue.Number),
		IssueNumber: issue.Number,
		Title:       issue.Title,
	}
	for _, l := range issue.Labels {
		if v, ok := strings.CutPrefix(l.Name, statusLabelPrefix); ok {
			item.Status = v
		}
		if v, ok := strings.CutPrefix(l.Name, reviewLabelPrefix); ok {
			item.ReviewStatus = v
		}
	}
	return item
}

// Init implements secondary.Board. It verifies the token can see the
// repository before the server starts taking traffic.
func (b *Board) Init(ctx context.Context) error {
	if err := b.client.get(ctx, b.client.repoPath(), nil, nil); err != nil {
		return fmt.Errorf("failed to access repository: %w", err)
	}
	return nil
}

// ListItems implements secondary.Board. Every open issue is a board
// item; pull requests are excluded.
func (b *Board) ListItems(ctx context.Context, filter secondary.BoardItemFilter) ([]*secondary.BoardItem, error) {
	var items []*secondary.BoardItem
	for page := 1; page <= maxPages; page++ {
		var issues []*ghIssue
		params := map[string]string{
			"state":    "open",
			"per_page": strconv.Itoa(perPage),
			"page":     strconv.Itoa(page),
		}
		if err := b.client.get(ctx, b.client.repoPath()+"/issues", params, &issues); err != nil {
			return nil, fmt.Errorf("failed to list issues: %w", err)
		}
		for _, issue := range issues {
			if issue.PullRequest != nil {
				continue
			}
			item := labelsToItem(issue)
			if filter.Status != "" && item.Status != filter.Status {
				continue
			}
			items = append(items, item)
		}
		if len(issues) < perPage {
			break
		}
	}
	return items, nil
}

// GetIssueDetails implements secondary.Board.
func (b *Board) GetIssueDetails(ctx context.Context, issueNumber int) (*secondary.BoardIssue, error) {
	var issue ghIssue
	path := fmt.Sprintf("%s/issues/%d", b.client.repoPath(), issueNumber)
	if err := b.client.get(ctx, path, nil, &issue); err != nil {
		return nil, fmt.Errorf("failed to get issue #%d: %w", issueNumber, err)
	}
	return &secondary.BoardIssue{
		Number: issue.Number,
		URL:    issue.HTMLURL,
		Title:  issue.Title,
		Body:   issue.Body,
		State:  issue.State,
	}, nil
}

// GetIssueComments implements secondary.Board. The API returns comments
// oldest first, which is the order callers rely on.
func (b *Board) GetIssueComments(ctx context.Context, issueNumber int) ([]*secondary.BoardComment, error) {
	var comments []*ghComment
	path := fmt.Sprintf("%s/issues/%d/comments", b.client.repoPath(), issueNumber)
	params := map[string]string{"per_page": strconv.Itoa(perPage)}
	if err := b.client.get(ctx, path, params, &comments); err != nil {
		return nil, fmt.Errorf("failed to list comments on #%d: %w", issueNumber, err)
	}
	out := make([]*secondary.BoardComment, 0, len(comments))
	for _, c := range comments {
		out = append(out, &secondary.BoardComment{
			ID:        c.ID,
			Author:    c.User.Login,
			Body:      c.Body,
			CreatedAt: c.CreatedAt,
		})
	}
	return out, nil
}

// AddIssueComment implements secondary.Board.
func (b *Board) AddIssueComment(ctx context.Context, issueNumber int, body string) error {
	path := fmt.Sprintf("%s/issues/%d/comments", b.client.repoPath(), issueNumber)
	req := map[string]string{"body": body}
	if err := b.client.send(ctx, http.MethodPost, path, req, nil); err != nil {
		return fmt.Errorf("failed to comment on #%d: %w", issueNumber, err)
	}
	return nil
}

// CreateIssue implements secondary.Board.
func (b *Board) CreateIssue(ctx context.Context, title, body string) (*secondary.BoardIssue, error) {
	var issue ghIssue
	req := map[string]string{"title": title, "body": body}
	if err := b.client.send(ctx, http.MethodPost, b.client.repoPath()+"/issues", req, &issue); err != nil {
		return nil, fmt.Errorf("failed to create issue: %w", err)
	}
	return &secondary.BoardIssue{
		Number: issue.Number,
		URL:    issue.HTMLURL,
		Title:  issue.Title,
		Body:   issue.Body,
		State:  issue.State,
	}, nil
}

// setLabels replaces one prefixed label group on an issue, leaving all
// unrelated labels alone. An empty value removes the group.
func (b *Board) setLabels(ctx context.Context, issueNumber int, prefix, value string) error {
	var issue ghIssue
	path := fmt.Sprintf("%s/issues/%d", b.client.repoPath(), issueNumber)
	if err := b.client.get(ctx, path, nil, &issue); err != nil {
		return fmt.Errorf("failed to get issue #%d: %w", issueNumber, err)
	}

	labels := make([]string, 0, len(issue.Labels)+1)
	for _, l := range issue.Labels {
		if strings.HasPrefix(l.Name, prefix) {
			continue
		}
		labels = append(labels, l.Name)
	}
	if value != "" {
		labels = append(labels, prefix+value)
	}

	req := map[string][]string{"labels": labels}
	if err := b.client.send(ctx, http.MethodPut, path+"/labels", req, nil); err != nil {
		return fmt.Errorf("failed to set labels on #%d: %w", issueNumber, err)
	}
	return nil
}

// UpdateItemStatus implements secondary.Board.
func (b *Board) UpdateItemStatus(ctx context.Context, id, status string) error {
	issueNumber, err := parseItemID(id)
	if err != nil {
		return err
	}
	return b.setLabels(ctx, issueNumber, statusLabelPrefix, status)
}

// UpdateItemReviewStatus implements secondary.Board.
func (b *Board) UpdateItemReviewStatus(ctx context.Context, id, status string) error {
	issueNumber, err := parseItemID(id)
	if err != nil {
		return err
	}
	return b.setLabels(ctx, issueNumber, reviewLabelPrefix, status)
}

// ClearItemReviewStatus implements secondary.Board.
func (b *Board) ClearItemReviewStatus(ctx context.Context, id string) error {
	issueNumber, err := parseItemID(id)
	if err != nil {
		return err
	}
	return b.setLabels(ctx, issueNumber, reviewLabelPrefix, "")
}

// HasReviewStatusField implements secondary.Board. Labels always exist,
// so review gates are always available on this backend.
func (b *Board) HasReviewStatusField() bool {
	return true
}

// RemoveItem implements secondary.Board. Closing the issue takes it off
// the board since only open issues are listed.
func (b *Board) RemoveItem(ctx context.Context, id string) error {
	issueNumber, err := parseItemID(id)
	if err != nil {
		return err
	}
	path := fmt.Sprintf("%s/issues/%d", b.client.repoPath(), issueNumber)
	req := map[string]string{"state": "closed"}
	if err := b.client.send(ctx, http.MethodPatch, path, req, nil); err != nil {
		return fmt.Errorf("failed to close issue #%d: %w", issueNumber, err)
	}
	return nil
}

// MergePullRequest implements secondary.Board. Squash merge keeps the
// main branch history one commit per work item.
func (b *Board) MergePullRequest(ctx context.Context, prNumber int, title, body string) error {
	path := fmt.Sprintf("%s/pulls/%d/merge", b.client.repoPath(), prNumber)
	req := map[string]string{
		"commit_title":   title,
		"commit_message": body,
		"merge_method":   "squash",
	}
	if err := b.client.send(ctx, http.MethodPut, path, req, nil); err != nil {
		return fmt.Errorf("failed to merge PR #%d: %w", prNumber, err)
	}
	return nil
}

// GetPRDetails implements secondary.Board.
func (b *Board) GetPRDetails(ctx context.Context, prNumber int) (*secondary.BoardPR, error) {
	var pr ghPR
	path := fmt.Sprintf("%s/pulls/%d", b.client.repoPath(), prNumber)
	if err := b.client.get(ctx, path, nil, &pr); err != nil {
		return nil, fmt.Errorf("failed to get PR #%d: %w", prNumber, err)
	}
	return &secondary.BoardPR{
		Number:  pr.Number,
		Title:   pr.Title,
		State:   pr.State,
		HeadRef: pr.Head.Ref,
		Merged:  pr.Merged,
	}, nil
}

// DeleteBranch implements secondary.Board.
func (b *Board) DeleteBranch(ctx context.Context, name string) error {
	path := b.client.repoPath() + "/git/refs/heads/" + name
	if _, err := b.client.doRequest(ctx, http.MethodDelete, b.client.buildURL(path, nil), nil); err != nil {
		return fmt.Errorf("failed to delete branch %s: %w", name, err)
	}
	return nil
}

// Ensure Board implements the interface
var _ secondary.Board = (*Board)(nil)
