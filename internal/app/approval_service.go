package app

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log"

	"github.com/example/flowboard/internal/core/intake"
	"github.com/example/flowboard/internal/core/workflow"
	"github.com/example/flowboard/internal/ports/primary"
	"github.com/example/flowboard/internal/ports/secondary"
)

// ApprovalServiceImpl implements the ApprovalService interface.
type ApprovalServiceImpl struct {
	intakeRepo secondary.IntakeRepository
	itemRepo   secondary.WorkflowItemRepository
	board      secondary.Board
	notifier   secondary.Notifier
	actionLog  secondary.ActionLogWriter
}

// NewApprovalService creates a new ApprovalService with injected
// dependencies.
func NewApprovalService(
	intakeRepo secondary.IntakeRepository,
	itemRepo secondary.WorkflowItemRepository,
	board secondary.Board,
	notifier secondary.Notifier,
	actionLog secondary.ActionLogWriter,
) *ApprovalServiceImpl {
	return &ApprovalServiceImpl{
		intakeRepo: intakeRepo,
		itemRepo:   itemRepo,
		board:      board,
		notifier:   notifier,
		actionLog:  actionLog,
	}
}

// RedeemApproval redeems a single-use approval token. The claim happens
// before the token comparison: whichever concurrent request wins the
// claim holds the only copy of the stored token, so validation and
// invalidation cannot interleave.
//
// On ErrAlreadyApproved the response is non-nil and carries the
// existing issue, so the caller can link to it.
func (s *ApprovalServiceImpl) RedeemApproval(ctx context.Context, req primary.RedeemApprovalRequest) (*primary.RedeemApprovalResponse, error) {
	claimed, err := s.intakeRepo.ClaimApprovalToken(ctx, req.IntakeID)
	if err != nil {
		return nil, fmt.Errorf("failed to claim approval token: %w", err)
	}

	if claimed == nil {
		// No live token. Either the record was approved earlier, the
		// record does not exist, or a concurrent claim won.
		rec, err := s.intakeRepo.GetByID(ctx, req.IntakeID)
		if err != nil || rec == nil {
			return nil, primary.ErrInvalidApprovalToken
		}
		if rec.IssueURL != "" {
			return &primary.RedeemApprovalResponse{
				IssueNumber: rec.IssueNumber,
				IssueURL:    rec.IssueURL,
				IssueTitle:  rec.Title,
			}, primary.ErrAlreadyApproved
		}
		return nil, primary.ErrInvalidApprovalToken
	}

	if subtle.ConstantTimeCompare([]byte(claimed.ApprovalToken), []byte(req.Token)) != 1 {
		// Wrong token against a live record: put the token back so the
		// legitimate link still works.
		s.restoreToken(ctx, claimed.ID, claimed.ApprovalToken)
		return nil, primary.ErrInvalidApprovalToken
	}

	resp, err := s.admitToPipeline(ctx, claimed)
	if err != nil {
		s.restoreToken(ctx, claimed.ID, claimed.ApprovalToken)
		return nil, err
	}
	return resp, nil
}

// admitToPipeline creates the issue and the mirrored work item for an
// approved intake record. Once the issue exists the approval is
// irreversible; later failures are logged, not rolled back.
func (s *ApprovalServiceImpl) admitToPipeline(ctx context.Context, rec *secondary.IntakeRecord) (*primary.RedeemApprovalResponse, error) {
	issue, err := s.board.CreateIssue(ctx, rec.Title, issueBody(rec))
	if err != nil {
		return nil, fmt.Errorf("failed to create issue: %w", err)
	}

	if err := s.intakeRepo.UpdateIssueFields(ctx, rec.ID, issue.Number, issue.URL); err != nil {
		log.Printf("warning: failed to link issue #%d to intake %s: %v", issue.Number, rec.ID, err)
	}

	boardItemID := ""
	if boardItem, err := secondary.FindItemByIssue(ctx, s.board, issue.Number); err == nil && boardItem != nil {
		boardItemID = boardItem.ID
	}

	itemID, err := s.itemRepo.GetNextID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate work item ID: %w", err)
	}

	itemType := intake.ItemType(intake.Type(rec.Type))
	record := &secondary.WorkflowItemRecord{
		ID:          itemID,
		BoardItemID: boardItemID,
		IssueNumber: issue.Number,
		IssueURL:    issue.URL,
		IssueTitle:  issue.Title,
		Type:        string(itemType),
		Status:      string(workflow.InitialStatus()),
		SourceType:  rec.Type,
		SourceID:    rec.ID,
	}
	if err := s.itemRepo.Create(ctx, record); err != nil {
		// The issue already exists on the board; the mirror catches up
		// via a later status update.
		log.Printf("warning: failed to mirror work item for issue #%d: %v", issue.Number, err)
	}

	if s.notifier != nil {
		msg := fmt.Sprintf("%s approved: %s (issue #%d)", rec.ID, rec.Title, issue.Number)
		if err := s.notifier.Send(ctx, msg); err != nil {
			log.Printf("warning: failed to send approval notification: %v", err)
		}
	}
	if s.actionLog != nil {
		if err := s.actionLog.LogAction(ctx, "intake", rec.ID, "approve", fmt.Sprintf("issue #%d", issue.Number)); err != nil {
			log.Printf("warning: failed to write action log: %v", err)
		}
	}

	return &primary.RedeemApprovalResponse{
		ItemID:      itemID,
		IssueNumber: issue.Number,
		IssueURL:    issue.URL,
		IssueTitle:  issue.Title,
	}, nil
}

func (s *ApprovalServiceImpl) restoreToken(ctx context.Context, id, token string) {
	if err := s.intakeRepo.SetApprovalToken(ctx, id, token); err != nil {
		// The record is now tokenless without an issue; ReissueToken is
		// the manual recovery path.
		log.Printf("warning: failed to restore approval token on %s: %v", id, err)
	}
}

func issueBody(rec *secondary.IntakeRecord) string {
	body := rec.Description
	if rec.Submitter != "" {
		body += fmt.Sprintf("\n\n_Submitted by %s (%s)_", rec.Submitter, rec.ID)
	} else {
		body += fmt.Sprintf("\n\n_Intake record %s_", rec.ID)
	}
	return body
}
