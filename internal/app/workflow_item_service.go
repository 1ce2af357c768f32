// Package app contains the application services implementing the
// primary ports. Services orchestrate the board, the mirror store, and
// the pure core logic; they hold no business rules of their own.
package app

import (
	"context"
	"fmt"
	"log"

	"github.com/example/flowboard/internal/core/workflow"
	"github.com/example/flowboard/internal/ports/primary"
	"github.com/example/flowboard/internal/ports/secondary"
)

// WorkflowItemServiceImpl implements the WorkflowItemService interface.
type WorkflowItemServiceImpl struct {
	itemRepo  secondary.WorkflowItemRepository
	board     secondary.Board
	actionLog secondary.ActionLogWriter
}

// NewWorkflowItemService creates a new WorkflowItemService with
// injected dependencies.
func NewWorkflowItemService(
	itemRepo secondary.WorkflowItemRepository,
	board secondary.Board,
	actionLog secondary.ActionLogWriter,
) *WorkflowItemServiceImpl {
	return &WorkflowItemServiceImpl{
		itemRepo:  itemRepo,
		board:     board,
		actionLog: actionLog,
	}
}

// GetWorkflowItem retrieves a work item by ID. The issue title is
// refreshed from the board when it can be reached; the board holds the
// current title, the mirror may lag behind a rename.
func (s *WorkflowItemServiceImpl) GetWorkflowItem(ctx context.Context, id string) (*primary.WorkflowItem, error) {
	record, err := s.itemRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	item := recordToWorkflowItem(record)
	if record.IssueNumber > 0 {
		if issue, err := s.board.GetIssueDetails(ctx, record.IssueNumber); err == nil && issue != nil {
			item.IssueTitle = issue.Title
		}
	}
	return item, nil
}

// GetWorkflowItemBySource retrieves a work item by its intake source.
func (s *WorkflowItemServiceImpl) GetWorkflowItemBySource(ctx context.Context, sourceType, sourceID string) (*primary.WorkflowItem, error) {
	record, err := s.itemRepo.GetBySource(ctx, sourceType, sourceID)
	if err != nil {
		return nil, err
	}
	return recordToWorkflowItem(record), nil
}

// ListWorkflowItems lists work items matching the filters.
func (s *WorkflowItemServiceImpl) ListWorkflowItems(ctx context.Context, filters primary.WorkflowItemFilters) ([]*primary.WorkflowItem, error) {
	records, err := s.itemRepo.List(ctx, secondary.WorkflowItemFilters{
		Status:       filters.Status,
		ReviewStatus: filters.ReviewStatus,
		Limit:        filters.Limit,
	})
	if err != nil {
		return nil, err
	}

	items := make([]*primary.WorkflowItem, 0, len(records))
	for _, record := range records {
		items = append(items, recordToWorkflowItem(record))
	}
	return items, nil
}

// UpdateStatus moves an item to a new phase. Routable destinations go
// through the board first; everything else updates only the mirror. A
// phase change always clears a pending review gate, and terminal phases
// never carry one.
func (s *WorkflowItemServiceImpl) UpdateStatus(ctx context.Context, req primary.UpdateStatusRequest) (*primary.UpdateStatusResponse, error) {
	record, err := s.resolveItem(ctx, req)
	if err != nil {
		return nil, err
	}

	status := workflow.Status(req.Status)
	if guard := workflow.CanSetStatus(status); !guard.Allowed {
		return nil, guard.Error()
	}

	mirrorOnly := true
	if workflow.IsRoutableDestination(status) {
		boardItem, err := secondary.FindItemByIssue(ctx, s.board, record.IssueNumber)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve board item: %w", err)
		}
		if boardItem != nil {
			if err := s.board.UpdateItemStatus(ctx, boardItem.ID, req.Status); err != nil {
				return nil, fmt.Errorf("failed to update board status: %w", err)
			}
			if s.board.HasReviewStatusField() {
				if err := s.board.ClearItemReviewStatus(ctx, boardItem.ID); err != nil {
					log.Printf("warning: failed to clear review gate on board item %s: %v", boardItem.ID, err)
				}
			}
			mirrorOnly = false
		}
	}

	patch := secondary.WorkflowFieldsPatch{
		Status:       secondary.SetString(req.Status),
		ReviewStatus: secondary.ClearString(),
	}
	if err := s.itemRepo.UpdateFields(ctx, record.ID, patch); err != nil {
		if mirrorOnly {
			return nil, fmt.Errorf("failed to update workflow item: %w", err)
		}
		// The board already moved; the mirror catches up later.
		log.Printf("warning: failed to mirror status of %s: %v", record.ID, err)
	}

	s.logAction(ctx, record.ID, "status-change", req.Status)

	updated, err := s.itemRepo.GetByID(ctx, record.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch updated item: %w", err)
	}
	return &primary.UpdateStatusResponse{
		Item:       recordToWorkflowItem(updated),
		MirrorOnly: mirrorOnly,
	}, nil
}

// DeleteWorkflowItem removes the item from the mirror and detaches its
// board item.
func (s *WorkflowItemServiceImpl) DeleteWorkflowItem(ctx context.Context, id string) error {
	record, err := s.itemRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if record.BoardItemID != "" {
		if err := s.board.RemoveItem(ctx, record.BoardItemID); err != nil {
			log.Printf("warning: failed to remove board item %s: %v", record.BoardItemID, err)
		}
	}

	if err := s.itemRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete workflow item: %w", err)
	}

	s.logAction(ctx, id, "delete", record.IssueTitle)
	return nil
}

func (s *WorkflowItemServiceImpl) resolveItem(ctx context.Context, req primary.UpdateStatusRequest) (*secondary.WorkflowItemRecord, error) {
	if req.ItemID != "" {
		return s.itemRepo.GetByID(ctx, req.ItemID)
	}
	if req.SourceType != "" && req.SourceID != "" {
		return s.itemRepo.GetBySource(ctx, req.SourceType, req.SourceID)
	}
	return nil, fmt.Errorf("no item reference supplied")
}

func (s *WorkflowItemServiceImpl) logAction(ctx context.Context, id, action, detail string) {
	if s.actionLog == nil {
		return
	}
	if err := s.actionLog.LogAction(ctx, "workflow_item", id, action, detail); err != nil {
		log.Printf("warning: failed to write action log: %v", err)
	}
}

func recordToWorkflowItem(record *secondary.WorkflowItemRecord) *primary.WorkflowItem {
	return &primary.WorkflowItem{
		ID:                  record.ID,
		BoardItemID:         record.BoardItemID,
		IssueNumber:         record.IssueNumber,
		IssueURL:            record.IssueURL,
		IssueTitle:          record.IssueTitle,
		Type:                record.Type,
		Status:              record.Status,
		ReviewStatus:        record.ReviewStatus,
		ImplementationPhase: record.ImplementationPhase,
		SourceType:          record.SourceType,
		SourceID:            record.SourceID,
		CreatedAt:           record.CreatedAt,
		UpdatedAt:           record.UpdatedAt,
	}
}
