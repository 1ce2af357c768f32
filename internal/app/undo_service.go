package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/example/flowboard/internal/core/workflow"
	"github.com/example/flowboard/internal/ports/primary"
	"github.com/example/flowboard/internal/ports/secondary"
)

// UndoServiceImpl implements the UndoService interface.
type UndoServiceImpl struct {
	board     secondary.Board
	itemRepo  secondary.WorkflowItemRepository
	actionLog secondary.ActionLogWriter

	now func() time.Time
}

// NewUndoService creates a new UndoService with injected dependencies.
func NewUndoService(
	board secondary.Board,
	itemRepo secondary.WorkflowItemRepository,
	actionLog secondary.ActionLogWriter,
) *UndoServiceImpl {
	return &UndoServiceImpl{
		board:     board,
		itemRepo:  itemRepo,
		actionLog: actionLog,
		now:       time.Now,
	}
}

// UndoStatusChange restores the phase and gate captured in the request,
// if the undo window has not elapsed. Receiving the same undo twice is
// safe: the second delivery observes the restored state and reports
// AlreadyDone.
func (s *UndoServiceImpl) UndoStatusChange(ctx context.Context, req primary.UndoRequest) (*primary.UndoResponse, error) {
	if !workflow.WithinUndoWindow(req.Timestamp, s.now(), req.Window) {
		return &primary.UndoResponse{Expired: true}, nil
	}

	item, err := secondary.FindItemByIssue(ctx, s.board, req.IssueNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve board item: %w", err)
	}
	if item == nil {
		return nil, fmt.Errorf("no board item for issue #%d", req.IssueNumber)
	}

	target := undoTarget(req)
	if workflow.UndoAlreadyApplied(workflow.Status(item.Status), workflow.ReviewStatus(item.ReviewStatus), target) {
		return &primary.UndoResponse{Success: true, AlreadyDone: true}, nil
	}

	var patch secondary.WorkflowFieldsPatch

	if target.Status != nil {
		if guard := workflow.CanSetStatus(*target.Status); !guard.Allowed {
			return nil, guard.Error()
		}
		if err := s.board.UpdateItemStatus(ctx, item.ID, string(*target.Status)); err != nil {
			return nil, fmt.Errorf("failed to restore status: %w", err)
		}
		patch.Status = secondary.SetString(string(*target.Status))
	}

	if target.ReviewStatus != nil {
		restoredStatus := workflow.Status(item.Status)
		if target.Status != nil {
			restoredStatus = *target.Status
		}
		if guard := workflow.CanApplyGate(restoredStatus, *target.ReviewStatus); !guard.Allowed {
			return nil, guard.Error()
		}
		if *target.ReviewStatus == workflow.ReviewNone {
			if s.board.HasReviewStatusField() {
				if err := s.board.ClearItemReviewStatus(ctx, item.ID); err != nil {
					return nil, fmt.Errorf("failed to clear review gate: %w", err)
				}
			}
			patch.ReviewStatus = secondary.ClearString()
		} else {
			if s.board.HasReviewStatusField() {
				if err := s.board.UpdateItemReviewStatus(ctx, item.ID, string(*target.ReviewStatus)); err != nil {
					return nil, fmt.Errorf("failed to restore review gate: %w", err)
				}
			}
			patch.ReviewStatus = secondary.SetString(string(*target.ReviewStatus))
		}
	}

	s.mirror(ctx, req.IssueNumber, patch)

	if s.actionLog != nil {
		detail := undoDetail(target)
		entityID := fmt.Sprintf("issue-%d", req.IssueNumber)
		if err := s.actionLog.LogAction(ctx, "workflow_item", entityID, "undo", detail); err != nil {
			log.Printf("warning: failed to write action log: %v", err)
		}
	}

	return &primary.UndoResponse{Success: true}, nil
}

func (s *UndoServiceImpl) mirror(ctx context.Context, issueNumber int, patch secondary.WorkflowFieldsPatch) {
	record, err := s.itemRepo.GetByIssueNumber(ctx, issueNumber)
	if err != nil || record == nil {
		log.Printf("warning: no mirror record for issue #%d", issueNumber)
		return
	}
	if err := s.itemRepo.UpdateFields(ctx, record.ID, patch); err != nil {
		log.Printf("warning: failed to mirror issue #%d: %v", issueNumber, err)
	}
}

// undoTarget converts the wire-level pointers into the core target. A
// nil pointer leaves the field untouched; a pointer to the empty string
// clears the gate.
func undoTarget(req primary.UndoRequest) workflow.UndoTarget {
	var target workflow.UndoTarget
	if req.RestoreStatus != nil {
		status := workflow.Status(*req.RestoreStatus)
		target.Status = &status
	}
	if req.RestoreReviewStatus != nil {
		gate := workflow.ReviewStatus(*req.RestoreReviewStatus)
		target.ReviewStatus = &gate
	}
	return target
}

func undoDetail(target workflow.UndoTarget) string {
	switch {
	case target.Status != nil && target.ReviewStatus != nil:
		return fmt.Sprintf("restored %s / %s", *target.Status, gateLabel(*target.ReviewStatus))
	case target.Status != nil:
		return fmt.Sprintf("restored %s", *target.Status)
	case target.ReviewStatus != nil:
		return fmt.Sprintf("restored gate %s", gateLabel(*target.ReviewStatus))
	}
	return "nothing to restore"
}

func gateLabel(gate workflow.ReviewStatus) string {
	if gate == workflow.ReviewNone {
		return "(cleared)"
	}
	return string(gate)
}
