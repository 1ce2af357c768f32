package app

import (
	"context"
	"testing"
	"time"

	"github.com/example/flowboard/internal/adapters/memboard"
	"github.com/example/flowboard/internal/ports/primary"
	"github.com/example/flowboard/internal/ports/secondary"
)

func strptr(s string) *string { return &s }

func newUndoService(board secondary.Board, itemRepo *mockItemRepo) *UndoServiceImpl {
	svc := NewUndoService(board, itemRepo, &mockActionLog{})
	svc.now = func() time.Time { return testNow }
	return svc
}

func TestUndoRestoresStatusAndGate(t *testing.T) {
	board := memboard.New()
	itemRepo := newMockItemRepo()
	record := seedMirroredItem(t, board, itemRepo, "WF-001")
	ctx := context.Background()

	// The action being undone moved the item to Done.
	if err := board.UpdateItemStatus(ctx, record.BoardItemID, "Done"); err != nil {
		t.Fatalf("seed status: %v", err)
	}
	itemRepo.items["WF-001"].Status = "Done"

	svc := newUndoService(board, itemRepo)
	resp, err := svc.UndoStatusChange(ctx, primary.UndoRequest{
		IssueNumber:         record.IssueNumber,
		RestoreStatus:       strptr("PR Review"),
		RestoreReviewStatus: strptr("Waiting for Review"),
		Timestamp:           testNow.Add(-2 * time.Minute),
	})
	if err != nil {
		t.Fatalf("UndoStatusChange() error: %v", err)
	}
	if !resp.Success || resp.Expired || resp.AlreadyDone {
		t.Errorf("resp = %+v", resp)
	}

	boardItem, _ := secondary.FindItemByIssue(ctx, board, record.IssueNumber)
	if boardItem.Status != "PR Review" {
		t.Errorf("board status = %q", boardItem.Status)
	}
	if boardItem.ReviewStatus != "Waiting for Review" {
		t.Errorf("board gate = %q", boardItem.ReviewStatus)
	}
	if itemRepo.items["WF-001"].Status != "PR Review" {
		t.Errorf("mirror status = %q", itemRepo.items["WF-001"].Status)
	}
}

func TestUndoExpiredWindow(t *testing.T) {
	board := memboard.New()
	itemRepo := newMockItemRepo()
	record := seedMirroredItem(t, board, itemRepo, "WF-001")

	svc := newUndoService(board, itemRepo)
	resp, err := svc.UndoStatusChange(context.Background(), primary.UndoRequest{
		IssueNumber:   record.IssueNumber,
		RestoreStatus: strptr("PR Review"),
		Timestamp:     testNow.Add(-10 * time.Minute),
	})
	if err != nil {
		t.Fatalf("UndoStatusChange() error: %v", err)
	}
	if !resp.Expired || resp.Success {
		t.Errorf("resp = %+v, want expired", resp)
	}

	// Nothing moved.
	boardItem, _ := secondary.FindItemByIssue(context.Background(), board, record.IssueNumber)
	if boardItem.Status != "" {
		t.Errorf("board status changed to %q", boardItem.Status)
	}
}

func TestUndoCustomWindow(t *testing.T) {
	board := memboard.New()
	itemRepo := newMockItemRepo()
	record := seedMirroredItem(t, board, itemRepo, "WF-001")

	svc := newUndoService(board, itemRepo)

	// 400s ago is past a 300s window even though it fits the default.
	resp, err := svc.UndoStatusChange(context.Background(), primary.UndoRequest{
		IssueNumber:   record.IssueNumber,
		RestoreStatus: strptr("PR Review"),
		Timestamp:     testNow.Add(-400 * time.Second),
		Window:        300 * time.Second,
	})
	if err != nil {
		t.Fatalf("UndoStatusChange() error: %v", err)
	}
	if !resp.Expired {
		t.Errorf("resp = %+v, want expired", resp)
	}

	resp, err = svc.UndoStatusChange(context.Background(), primary.UndoRequest{
		IssueNumber:   record.IssueNumber,
		RestoreStatus: strptr("PR Review"),
		Timestamp:     testNow.Add(-400 * time.Second),
		Window:        10 * time.Minute,
	})
	if err != nil {
		t.Fatalf("UndoStatusChange() error: %v", err)
	}
	if !resp.Success {
		t.Errorf("resp = %+v, want success", resp)
	}
}

func TestUndoSecondDeliveryIsNoOp(t *testing.T) {
	board := memboard.New()
	itemRepo := newMockItemRepo()
	record := seedMirroredItem(t, board, itemRepo, "WF-001")
	ctx := context.Background()

	svc := newUndoService(board, itemRepo)
	req := primary.UndoRequest{
		IssueNumber:         record.IssueNumber,
		RestoreStatus:       strptr("Implementation"),
		RestoreReviewStatus: strptr(""),
		Timestamp:           testNow.Add(-time.Minute),
	}

	first, err := svc.UndoStatusChange(ctx, req)
	if err != nil {
		t.Fatalf("first UndoStatusChange() error: %v", err)
	}
	if !first.Success || first.AlreadyDone {
		t.Errorf("first = %+v", first)
	}

	second, err := svc.UndoStatusChange(ctx, req)
	if err != nil {
		t.Fatalf("second UndoStatusChange() error: %v", err)
	}
	if !second.AlreadyDone {
		t.Errorf("second = %+v, want AlreadyDone", second)
	}
}

func TestUndoClearsGateWithEmptyPointer(t *testing.T) {
	board := memboard.New()
	itemRepo := newMockItemRepo()
	record := seedMirroredItem(t, board, itemRepo, "WF-001")
	ctx := context.Background()

	if err := board.UpdateItemReviewStatus(ctx, record.BoardItemID, "Approved"); err != nil {
		t.Fatalf("seed gate: %v", err)
	}
	itemRepo.items["WF-001"].ReviewStatus = "Approved"

	svc := newUndoService(board, itemRepo)
	resp, err := svc.UndoStatusChange(ctx, primary.UndoRequest{
		IssueNumber:         record.IssueNumber,
		RestoreReviewStatus: strptr(""),
		Timestamp:           testNow.Add(-time.Minute),
	})
	if err != nil {
		t.Fatalf("UndoStatusChange() error: %v", err)
	}
	if !resp.Success {
		t.Errorf("resp = %+v", resp)
	}

	boardItem, _ := secondary.FindItemByIssue(ctx, board, record.IssueNumber)
	if boardItem.ReviewStatus != "" {
		t.Errorf("gate = %q, want cleared", boardItem.ReviewStatus)
	}
	if itemRepo.items["WF-001"].ReviewStatus != "" {
		t.Errorf("mirror gate = %q, want cleared", itemRepo.items["WF-001"].ReviewStatus)
	}
}

func TestUndoLeavesUntouchedFieldsAlone(t *testing.T) {
	board := memboard.New()
	itemRepo := newMockItemRepo()
	record := seedMirroredItem(t, board, itemRepo, "WF-001")
	ctx := context.Background()

	if err := board.UpdateItemStatus(ctx, record.BoardItemID, "Implementation"); err != nil {
		t.Fatalf("seed status: %v", err)
	}
	if err := board.UpdateItemReviewStatus(ctx, record.BoardItemID, "Request Changes"); err != nil {
		t.Fatalf("seed gate: %v", err)
	}

	// Only the gate is restored; nil status pointer leaves the phase.
	svc := newUndoService(board, itemRepo)
	if _, err := svc.UndoStatusChange(ctx, primary.UndoRequest{
		IssueNumber:         record.IssueNumber,
		RestoreReviewStatus: strptr("Waiting for Review"),
		Timestamp:           testNow.Add(-time.Minute),
	}); err != nil {
		t.Fatalf("UndoStatusChange() error: %v", err)
	}

	boardItem, _ := secondary.FindItemByIssue(ctx, board, record.IssueNumber)
	if boardItem.Status != "Implementation" {
		t.Errorf("status moved to %q", boardItem.Status)
	}
	if boardItem.ReviewStatus != "Waiting for Review" {
		t.Errorf("gate = %q", boardItem.ReviewStatus)
	}
}
