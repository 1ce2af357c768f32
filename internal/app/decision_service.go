package app

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/example/flowboard/internal/core/decision"
	"github.com/example/flowboard/internal/core/workflow"
	"github.com/example/flowboard/internal/ports/primary"
	"github.com/example/flowboard/internal/ports/secondary"
)

// DecisionServiceImpl implements the DecisionService interface: the
// routing engine resolving decision submissions into phase transitions.
type DecisionServiceImpl struct {
	board     secondary.Board
	itemRepo  secondary.WorkflowItemRepository
	notifier  secondary.Notifier
	actionLog secondary.ActionLogWriter

	secret      []byte
	tokenBucket time.Duration
	tables      workflow.RoutingTables
	baseURL     string

	now func() time.Time
}

// NewDecisionService creates a new DecisionService with injected
// dependencies. A zero tokenBucket means the default.
func NewDecisionService(
	board secondary.Board,
	itemRepo secondary.WorkflowItemRepository,
	notifier secondary.Notifier,
	actionLog secondary.ActionLogWriter,
	secret []byte,
	tokenBucket time.Duration,
	tables workflow.RoutingTables,
	baseURL string,
) *DecisionServiceImpl {
	return &DecisionServiceImpl{
		board:       board,
		itemRepo:    itemRepo,
		notifier:    notifier,
		actionLog:   actionLog,
		secret:      secret,
		tokenBucket: tokenBucket,
		tables:      tables,
		baseURL:     baseURL,
		now:         time.Now,
	}
}

// PublishDecision attaches a pending decision payload to the issue,
// flips the review gate to Waiting for Review, and announces the
// tokenized link. The token is minted from the current bucket, so the
// link stays valid until the bucket rolls over.
func (s *DecisionServiceImpl) PublishDecision(ctx context.Context, req primary.PublishDecisionRequest) (*primary.PublishDecisionResponse, error) {
	if req.IssueNumber <= 0 {
		return nil, fmt.Errorf("issue number is required")
	}
	kind := req.Kind
	if kind == "" {
		kind = decision.KindDecision
	}
	if kind != decision.KindDecision && kind != decision.KindFixSelection {
		return nil, fmt.Errorf("unknown decision kind %q", kind)
	}
	if len(req.Options) == 0 {
		return nil, fmt.Errorf("a decision needs at least one option")
	}

	payload := &decision.Payload{
		Kind:        kind,
		IssueNumber: req.IssueNumber,
		Prompt:      req.Prompt,
	}
	for _, opt := range req.Options {
		payload.Options = append(payload.Options, decision.Option{
			ID:          opt.ID,
			Label:       opt.Label,
			Description: opt.Description,
			Metadata:    opt.Metadata,
			Recommended: opt.Recommended,
		})
	}
	if req.Routing != nil {
		payload.Routing = &decision.Routing{
			MetadataKey:                req.Routing.MetadataKey,
			StatusMap:                  req.Routing.StatusMap,
			CustomDestinationStatusMap: req.Routing.CustomDestinationStatusMap,
		}
	}

	body, err := decision.Encode(payload)
	if err != nil {
		return nil, err
	}
	if err := s.board.AddIssueComment(ctx, req.IssueNumber, body); err != nil {
		return nil, fmt.Errorf("failed to post decision payload: %w", err)
	}

	// The payload is on the issue; from here failures are logged, the
	// link itself still works.
	if err := s.setGate(ctx, req.IssueNumber, workflow.ReviewWaiting); err != nil {
		log.Printf("warning: failed to set review gate on issue #%d: %v", req.IssueNumber, err)
	}

	token := decision.Token(req.IssueNumber, kind, s.secret, decision.TokenBucket(s.now(), s.tokenBucket))
	link := s.decisionLink(kind, req.IssueNumber, token)

	if s.notifier != nil {
		msg := fmt.Sprintf("Decision needed on issue #%d: %s", req.IssueNumber, link)
		if err := s.notifier.Send(ctx, msg); err != nil {
			log.Printf("warning: failed to send decision notification: %v", err)
		}
	}
	s.logAction(ctx, req.IssueNumber, "publish-decision", kind)

	return &primary.PublishDecisionResponse{Link: link, Token: token}, nil
}

func (s *DecisionServiceImpl) decisionLink(kind string, issueNumber int, token string) string {
	path := "decisions"
	if kind == decision.KindFixSelection {
		path = "fix-selection"
	}
	return fmt.Sprintf("%s/%s/%d?token=%s", s.baseURL, path, issueNumber, url.QueryEscape(token))
}

// SubmitDecision resolves a decision against the issue's pending
// payload and routes the item accordingly. An unrouted resolution
// leaves the item in its phase with the gate set to Approved.
func (s *DecisionServiceImpl) SubmitDecision(ctx context.Context, req primary.SubmitDecisionRequest) (*primary.SubmitDecisionResponse, error) {
	return s.submit(ctx, req, decision.KindDecision)
}

// SubmitFixSelection resolves a bug-fix selection. Destinations are
// restricted to the configured fix destinations regardless of what the
// payload carries.
func (s *DecisionServiceImpl) SubmitFixSelection(ctx context.Context, req primary.SubmitDecisionRequest) (*primary.SubmitDecisionResponse, error) {
	return s.submit(ctx, req, decision.KindFixSelection)
}

func (s *DecisionServiceImpl) submit(ctx context.Context, req primary.SubmitDecisionRequest, kind string) (*primary.SubmitDecisionResponse, error) {
	if !decision.VerifyToken(req.Token, req.IssueNumber, kind, s.secret, s.now(), s.tokenBucket) {
		return nil, primary.ErrInvalidDecisionToken
	}

	payload, err := s.pendingPayload(ctx, req.IssueNumber, kind)
	if err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, fmt.Errorf("no pending decision on issue #%d", req.IssueNumber)
	}
	if kind == decision.KindFixSelection {
		s.restrictToFixDestinations(payload)
	}

	res, err := decision.Resolve(payload, decision.Selection{
		OptionID:          req.Selection.SelectedOptionID,
		ChooseRecommended: req.Selection.ChooseRecommended,
		CustomSolution:    req.Selection.CustomSolution,
		CustomDestination: req.Selection.CustomDestination,
	})
	if err != nil {
		return nil, err
	}

	if err := s.board.AddIssueComment(ctx, req.IssueNumber, outcomeComment(res)); err != nil {
		log.Printf("warning: failed to record decision on issue #%d: %v", req.IssueNumber, err)
	}

	if res.MissingMapping != "" {
		log.Printf("warning: no routing destination configured for %q on issue #%d", res.MissingMapping, req.IssueNumber)
	}

	if res.Routed && workflow.IsRoutableDestination(res.RoutedTo) {
		if err := s.routeItem(ctx, req.IssueNumber, res.RoutedTo); err != nil {
			return nil, err
		}
		s.logAction(ctx, req.IssueNumber, "decision", string(res.RoutedTo))
		return &primary.SubmitDecisionResponse{RoutedTo: string(res.RoutedTo), Routed: true}, nil
	}

	// Unrouted: leave the phase alone and mark the decision made.
	if err := s.setGate(ctx, req.IssueNumber, workflow.ReviewApproved); err != nil {
		return nil, err
	}
	s.logAction(ctx, req.IssueNumber, "decision", "approved in place")
	return &primary.SubmitDecisionResponse{Routed: false}, nil
}

// ApprovePullRequest merges the PR, deletes its branch best-effort, and
// routes the item to Done. The previous phase and gate are returned so
// the caller can offer an undo.
func (s *DecisionServiceImpl) ApprovePullRequest(ctx context.Context, req primary.ApprovePRRequest) (*primary.ApprovePRResponse, error) {
	item, err := secondary.FindItemByIssue(ctx, s.board, req.IssueNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve board item: %w", err)
	}
	if item == nil {
		return nil, fmt.Errorf("no board item for issue #%d", req.IssueNumber)
	}
	prevStatus, prevReview := item.Status, item.ReviewStatus

	pr, err := s.board.GetPRDetails(ctx, req.PRNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to get PR #%d: %w", req.PRNumber, err)
	}
	if !pr.Merged {
		if err := s.board.MergePullRequest(ctx, pr.Number, pr.Title, ""); err != nil {
			return nil, fmt.Errorf("failed to merge PR #%d: %w", pr.Number, err)
		}
	}
	if pr.HeadRef != "" {
		if err := s.board.DeleteBranch(ctx, pr.HeadRef); err != nil {
			log.Printf("warning: failed to delete branch %s: %v", pr.HeadRef, err)
		}
	}

	if err := s.board.UpdateItemStatus(ctx, item.ID, string(workflow.StatusDone)); err != nil {
		return nil, fmt.Errorf("failed to move item to Done: %w", err)
	}
	if s.board.HasReviewStatusField() {
		if err := s.board.ClearItemReviewStatus(ctx, item.ID); err != nil {
			log.Printf("warning: failed to clear review gate on %s: %v", item.ID, err)
		}
	}
	s.mirror(ctx, req.IssueNumber, secondary.WorkflowFieldsPatch{
		Status:       secondary.SetString(string(workflow.StatusDone)),
		ReviewStatus: secondary.ClearString(),
	})

	if s.notifier != nil {
		msg := fmt.Sprintf("PR #%d merged, issue #%d is done", pr.Number, req.IssueNumber)
		if err := s.notifier.Send(ctx, msg); err != nil {
			log.Printf("warning: failed to send merge notification: %v", err)
		}
	}
	s.logAction(ctx, req.IssueNumber, "approve-pr", fmt.Sprintf("PR #%d", req.PRNumber))

	return &primary.ApprovePRResponse{
		PreviousStatus:       prevStatus,
		PreviousReviewStatus: prevReview,
	}, nil
}

// RequestClarification puts the item's gate into Waiting for
// Clarification and posts the question on the issue.
func (s *DecisionServiceImpl) RequestClarification(ctx context.Context, issueNumber int, question string) error {
	if question != "" {
		if err := s.board.AddIssueComment(ctx, issueNumber, question); err != nil {
			return fmt.Errorf("failed to post clarification question: %w", err)
		}
	}
	if err := s.setGate(ctx, issueNumber, workflow.ReviewWaitingClarification); err != nil {
		return err
	}
	s.logAction(ctx, issueNumber, "request-clarification", "")
	return nil
}

// MarkClarificationReceived flips the gate to Clarification Received.
func (s *DecisionServiceImpl) MarkClarificationReceived(ctx context.Context, issueNumber int) error {
	if err := s.setGate(ctx, issueNumber, workflow.ReviewClarificationReceived); err != nil {
		return err
	}
	s.logAction(ctx, issueNumber, "clarification-received", "")
	return nil
}

// pendingPayload returns the most recent decision payload of the given
// kind on the issue, newest comment first.
func (s *DecisionServiceImpl) pendingPayload(ctx context.Context, issueNumber int, kind string) (*decision.Payload, error) {
	comments, err := s.board.GetIssueComments(ctx, issueNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to read comments on issue #%d: %w", issueNumber, err)
	}
	bodies := make([]string, 0, len(comments))
	for i := len(comments) - 1; i >= 0; i-- {
		bodies = append(bodies, comments[i].Body)
	}
	return decision.LatestPayload(bodies, kind), nil
}

// restrictToFixDestinations forces the payload's routing through the
// configured fix destination table.
func (s *DecisionServiceImpl) restrictToFixDestinations(p *decision.Payload) {
	statusMap := make(map[string]string, len(s.tables.FixDestinations))
	for key, status := range s.tables.FixDestinations {
		statusMap[key] = string(status)
	}
	p.Routing = &decision.Routing{
		MetadataKey:                "destination",
		StatusMap:                  statusMap,
		CustomDestinationStatusMap: statusMap,
	}
}

func (s *DecisionServiceImpl) routeItem(ctx context.Context, issueNumber int, dest workflow.Status) error {
	item, err := secondary.FindItemByIssue(ctx, s.board, issueNumber)
	if err != nil {
		return fmt.Errorf("failed to resolve board item: %w", err)
	}
	if item == nil {
		return fmt.Errorf("no board item for issue #%d", issueNumber)
	}
	if err := s.board.UpdateItemStatus(ctx, item.ID, string(dest)); err != nil {
		return fmt.Errorf("failed to route item to %s: %w", dest, err)
	}
	if s.board.HasReviewStatusField() {
		if err := s.board.ClearItemReviewStatus(ctx, item.ID); err != nil {
			log.Printf("warning: failed to clear review gate on %s: %v", item.ID, err)
		}
	}
	s.mirror(ctx, issueNumber, secondary.WorkflowFieldsPatch{
		Status:       secondary.SetString(string(dest)),
		ReviewStatus: secondary.ClearString(),
	})
	return nil
}

func (s *DecisionServiceImpl) setGate(ctx context.Context, issueNumber int, gate workflow.ReviewStatus) error {
	item, err := secondary.FindItemByIssue(ctx, s.board, issueNumber)
	if err != nil {
		return fmt.Errorf("failed to resolve board item: %w", err)
	}
	if item == nil {
		return fmt.Errorf("no board item for issue #%d", issueNumber)
	}
	if guard := workflow.CanApplyGate(workflow.Status(item.Status), gate); !guard.Allowed {
		return guard.Error()
	}
	if s.board.HasReviewStatusField() {
		if err := s.board.UpdateItemReviewStatus(ctx, item.ID, string(gate)); err != nil {
			return fmt.Errorf("failed to set review gate: %w", err)
		}
	}
	s.mirror(ctx, issueNumber, secondary.WorkflowFieldsPatch{
		ReviewStatus: secondary.SetString(string(gate)),
	})
	return nil
}

// mirror applies a patch to the internal record for an issue. Mirror
// failures never fail the caller; the board already holds the truth.
func (s *DecisionServiceImpl) mirror(ctx context.Context, issueNumber int, patch secondary.WorkflowFieldsPatch) {
	record, err := s.itemRepo.GetByIssueNumber(ctx, issueNumber)
	if err != nil || record == nil {
		log.Printf("warning: no mirror record for issue #%d", issueNumber)
		return
	}
	if err := s.itemRepo.UpdateFields(ctx, record.ID, patch); err != nil {
		log.Printf("warning: failed to mirror issue #%d: %v", issueNumber, err)
	}
}

func (s *DecisionServiceImpl) logAction(ctx context.Context, issueNumber int, action, detail string) {
	if s.actionLog == nil {
		return
	}
	entityID := fmt.Sprintf("issue-%d", issueNumber)
	if err := s.actionLog.LogAction(ctx, "workflow_item", entityID, action, detail); err != nil {
		log.Printf("warning: failed to write action log: %v", err)
	}
}

func outcomeComment(res *decision.Resolution) string {
	var text string
	switch {
	case res.Custom:
		text = fmt.Sprintf("**Decision: custom solution**\n\n%s", res.CustomSolution)
	case res.Option != nil:
		text = fmt.Sprintf("**Decision: %s**", res.Option.Label)
		if res.Option.Description != "" {
			text += "\n\n" + res.Option.Description
		}
	default:
		text = "**Decision recorded**"
	}
	if res.Routed {
		text += fmt.Sprintf("\n\nRouting to **%s**.", res.RoutedTo)
	}
	return text
}
