package app

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/example/flowboard/internal/adapters/memboard"
	"github.com/example/flowboard/internal/core/decision"
	"github.com/example/flowboard/internal/core/workflow"
	"github.com/example/flowboard/internal/ports/primary"
	"github.com/example/flowboard/internal/ports/secondary"
)

var testSecret = []byte("test-secret")

var testNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func newDecisionService(board secondary.Board, itemRepo *mockItemRepo) *DecisionServiceImpl {
	svc := NewDecisionService(board, itemRepo, nil, &mockActionLog{},
		testSecret, 0, workflow.DefaultRoutingTables(), "https://flowboard.example.com")
	svc.now = func() time.Time { return testNow }
	return svc
}

func mintToken(issueNumber int, kind string) string {
	return decision.Token(issueNumber, kind, testSecret, decision.TokenBucket(testNow, 0))
}

// postPayload attaches a decision payload comment to the issue.
func postPayload(t *testing.T, board secondary.Board, issueNumber int, p *decision.Payload) {
	t.Helper()
	body, err := decision.Encode(p)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	if err := board.AddIssueComment(context.Background(), issueNumber, body); err != nil {
		t.Fatalf("AddIssueComment() error: %v", err)
	}
}

func designPayload() *decision.Payload {
	return &decision.Payload{
		Kind:   decision.KindDecision,
		Prompt: "Pick a design direction",
		Options: []decision.Option{
			{ID: "opt-a", Label: "Minimal", Metadata: map[string]string{"phase": "product-design"}},
			{ID: "opt-b", Label: "Full redesign", Metadata: map[string]string{"phase": "product-design"}, Recommended: true},
		},
		Routing: &decision.Routing{
			MetadataKey: "phase",
			StatusMap:   map[string]string{"product-design": "Technical Design"},
			CustomDestinationStatusMap: map[string]string{
				"tech-design": "Technical Design",
			},
		},
	}
}

func TestSubmitDecisionRoutes(t *testing.T) {
	board := memboard.New()
	itemRepo := newMockItemRepo()
	record := seedMirroredItem(t, board, itemRepo, "WF-001")
	ctx := context.Background()

	postPayload(t, board, record.IssueNumber, designPayload())

	svc := newDecisionService(board, itemRepo)
	resp, err := svc.SubmitDecision(ctx, primary.SubmitDecisionRequest{
		IssueNumber: record.IssueNumber,
		Token:       mintToken(record.IssueNumber, decision.KindDecision),
		Selection:   primary.DecisionSelection{SelectedOptionID: "opt-a"},
	})
	if err != nil {
		t.Fatalf("SubmitDecision() error: %v", err)
	}
	if !resp.Routed || resp.RoutedTo != "Technical Design" {
		t.Errorf("resp = %+v, want routed to Technical Design", resp)
	}

	boardItem, _ := secondary.FindItemByIssue(ctx, board, record.IssueNumber)
	if boardItem.Status != "Technical Design" {
		t.Errorf("board status = %q", boardItem.Status)
	}
	if boardItem.ReviewStatus != "" {
		t.Errorf("board gate not cleared: %q", boardItem.ReviewStatus)
	}
	if itemRepo.items["WF-001"].Status != "Technical Design" {
		t.Errorf("mirror status = %q", itemRepo.items["WF-001"].Status)
	}

	// The outcome is recorded on the issue.
	comments, _ := board.GetIssueComments(ctx, record.IssueNumber)
	last := comments[len(comments)-1].Body
	if !strings.Contains(last, "Decision: Minimal") {
		t.Errorf("outcome comment = %q", last)
	}
}

func TestSubmitDecisionInvalidToken(t *testing.T) {
	board := memboard.New()
	itemRepo := newMockItemRepo()
	record := seedMirroredItem(t, board, itemRepo, "WF-001")

	svc := newDecisionService(board, itemRepo)
	_, err := svc.SubmitDecision(context.Background(), primary.SubmitDecisionRequest{
		IssueNumber: record.IssueNumber,
		Token:       "forged",
		Selection:   primary.DecisionSelection{SelectedOptionID: "opt-a"},
	})
	if !errors.Is(err, primary.ErrInvalidDecisionToken) {
		t.Fatalf("err = %v, want ErrInvalidDecisionToken", err)
	}
}

func TestSubmitDecisionExpiredBucket(t *testing.T) {
	board := memboard.New()
	itemRepo := newMockItemRepo()
	record := seedMirroredItem(t, board, itemRepo, "WF-001")
	postPayload(t, board, record.IssueNumber, designPayload())

	// Token minted in a previous bucket.
	stale := decision.Token(record.IssueNumber, decision.KindDecision, testSecret,
		decision.TokenBucket(testNow.Add(-48*time.Hour), 0))

	svc := newDecisionService(board, itemRepo)
	_, err := svc.SubmitDecision(context.Background(), primary.SubmitDecisionRequest{
		IssueNumber: record.IssueNumber,
		Token:       stale,
		Selection:   primary.DecisionSelection{SelectedOptionID: "opt-a"},
	})
	if !errors.Is(err, primary.ErrInvalidDecisionToken) {
		t.Fatalf("err = %v, want ErrInvalidDecisionToken", err)
	}
}

func TestSubmitDecisionNoPendingPayload(t *testing.T) {
	board := memboard.New()
	itemRepo := newMockItemRepo()
	record := seedMirroredItem(t, board, itemRepo, "WF-001")

	svc := newDecisionService(board, itemRepo)
	_, err := svc.SubmitDecision(context.Background(), primary.SubmitDecisionRequest{
		IssueNumber: record.IssueNumber,
		Token:       mintToken(record.IssueNumber, decision.KindDecision),
		Selection:   primary.DecisionSelection{SelectedOptionID: "opt-a"},
	})
	if err == nil {
		t.Fatal("expected error with no pending payload")
	}
}

func TestSubmitDecisionMissingMappingApprovesInPlace(t *testing.T) {
	board := memboard.New()
	itemRepo := newMockItemRepo()
	record := seedMirroredItem(t, board, itemRepo, "WF-001")
	ctx := context.Background()

	p := designPayload()
	p.Options[0].Metadata["phase"] = "unmapped-phase"
	postPayload(t, board, record.IssueNumber, p)

	svc := newDecisionService(board, itemRepo)
	resp, err := svc.SubmitDecision(ctx, primary.SubmitDecisionRequest{
		IssueNumber: record.IssueNumber,
		Token:       mintToken(record.IssueNumber, decision.KindDecision),
		Selection:   primary.DecisionSelection{SelectedOptionID: "opt-a"},
	})
	if err != nil {
		t.Fatalf("SubmitDecision() error: %v", err)
	}
	if resp.Routed {
		t.Error("routed despite missing mapping")
	}

	boardItem, _ := secondary.FindItemByIssue(ctx, board, record.IssueNumber)
	if boardItem.Status != "" {
		t.Errorf("board status changed to %q", boardItem.Status)
	}
	if boardItem.ReviewStatus != "Approved" {
		t.Errorf("board gate = %q, want Approved", boardItem.ReviewStatus)
	}
}

func TestSubmitDecisionRecommendedFallback(t *testing.T) {
	board := memboard.New()
	itemRepo := newMockItemRepo()
	record := seedMirroredItem(t, board, itemRepo, "WF-001")
	postPayload(t, board, record.IssueNumber, designPayload())

	svc := newDecisionService(board, itemRepo)
	resp, err := svc.SubmitDecision(context.Background(), primary.SubmitDecisionRequest{
		IssueNumber: record.IssueNumber,
		Token:       mintToken(record.IssueNumber, decision.KindDecision),
		Selection:   primary.DecisionSelection{ChooseRecommended: true},
	})
	if err != nil {
		t.Fatalf("SubmitDecision() error: %v", err)
	}
	if !resp.Routed {
		t.Error("recommended option should have routed")
	}
}

func TestSubmitDecisionCustomRequiresSolution(t *testing.T) {
	board := memboard.New()
	itemRepo := newMockItemRepo()
	record := seedMirroredItem(t, board, itemRepo, "WF-001")
	postPayload(t, board, record.IssueNumber, designPayload())

	svc := newDecisionService(board, itemRepo)
	_, err := svc.SubmitDecision(context.Background(), primary.SubmitDecisionRequest{
		IssueNumber: record.IssueNumber,
		Token:       mintToken(record.IssueNumber, decision.KindDecision),
		Selection:   primary.DecisionSelection{SelectedOptionID: "custom"},
	})
	if err == nil {
		t.Fatal("expected error for custom selection without solution")
	}
}

func TestSubmitFixSelectionUsesFixDestinations(t *testing.T) {
	board := memboard.New()
	itemRepo := newMockItemRepo()
	record := seedMirroredItem(t, board, itemRepo, "WF-001")
	ctx := context.Background()

	// Payload routing is ignored; the configured fix table wins.
	p := &decision.Payload{
		Kind: decision.KindFixSelection,
		Options: []decision.Option{
			{ID: "fix-a", Label: "Patch it", Metadata: map[string]string{"destination": "implement"}},
			{ID: "fix-b", Label: "Redesign first", Metadata: map[string]string{"destination": "tech-design"}},
		},
		Routing: &decision.Routing{
			MetadataKey: "destination",
			StatusMap:   map[string]string{"implement": "Done"},
		},
	}
	postPayload(t, board, record.IssueNumber, p)

	svc := newDecisionService(board, itemRepo)
	resp, err := svc.SubmitFixSelection(ctx, primary.SubmitDecisionRequest{
		IssueNumber: record.IssueNumber,
		Token:       mintToken(record.IssueNumber, decision.KindFixSelection),
		Selection:   primary.DecisionSelection{SelectedOptionID: "fix-a"},
	})
	if err != nil {
		t.Fatalf("SubmitFixSelection() error: %v", err)
	}
	if resp.RoutedTo != "Implementation" {
		t.Errorf("RoutedTo = %q, want Implementation", resp.RoutedTo)
	}
}

func TestSubmitFixSelectionCustomDestination(t *testing.T) {
	board := memboard.New()
	itemRepo := newMockItemRepo()
	record := seedMirroredItem(t, board, itemRepo, "WF-001")

	p := &decision.Payload{
		Kind: decision.KindFixSelection,
		Options: []decision.Option{
			{ID: "fix-a", Label: "Patch it", Metadata: map[string]string{"destination": "implement"}},
		},
	}
	postPayload(t, board, record.IssueNumber, p)

	svc := newDecisionService(board, itemRepo)
	resp, err := svc.SubmitFixSelection(context.Background(), primary.SubmitDecisionRequest{
		IssueNumber: record.IssueNumber,
		Token:       mintToken(record.IssueNumber, decision.KindFixSelection),
		Selection: primary.DecisionSelection{
			SelectedOptionID:  "custom",
			CustomSolution:    "Rework the retry loop",
			CustomDestination: "tech-design",
		},
	})
	if err != nil {
		t.Fatalf("SubmitFixSelection() error: %v", err)
	}
	if resp.RoutedTo != "Technical Design" {
		t.Errorf("RoutedTo = %q, want Technical Design", resp.RoutedTo)
	}
}

func TestApprovePullRequest(t *testing.T) {
	board := memboard.New()
	itemRepo := newMockItemRepo()
	record := seedMirroredItem(t, board, itemRepo, "WF-001")
	ctx := context.Background()

	if err := board.UpdateItemStatus(ctx, record.BoardItemID, "PR Review"); err != nil {
		t.Fatalf("seed status: %v", err)
	}
	if err := board.UpdateItemReviewStatus(ctx, record.BoardItemID, "Waiting for Review"); err != nil {
		t.Fatalf("seed gate: %v", err)
	}
	board.SeedPR(12, "Fix login loop", "fix/login-loop")

	svc := newDecisionService(board, itemRepo)
	resp, err := svc.ApprovePullRequest(ctx, primary.ApprovePRRequest{
		IssueNumber: record.IssueNumber,
		PRNumber:    12,
	})
	if err != nil {
		t.Fatalf("ApprovePullRequest() error: %v", err)
	}
	if resp.PreviousStatus != "PR Review" || resp.PreviousReviewStatus != "Waiting for Review" {
		t.Errorf("previous state = %+v", resp)
	}

	pr, _ := board.GetPRDetails(ctx, 12)
	if !pr.Merged {
		t.Error("PR not merged")
	}

	boardItem, _ := secondary.FindItemByIssue(ctx, board, record.IssueNumber)
	if boardItem.Status != "Done" {
		t.Errorf("board status = %q, want Done", boardItem.Status)
	}
	if boardItem.ReviewStatus != "" {
		t.Errorf("board gate not cleared: %q", boardItem.ReviewStatus)
	}
	if itemRepo.items["WF-001"].Status != "Done" {
		t.Errorf("mirror status = %q", itemRepo.items["WF-001"].Status)
	}
}

func TestClarificationFlow(t *testing.T) {
	board := memboard.New()
	itemRepo := newMockItemRepo()
	record := seedMirroredItem(t, board, itemRepo, "WF-001")
	ctx := context.Background()

	svc := newDecisionService(board, itemRepo)
	if err := svc.RequestClarification(ctx, record.IssueNumber, "Which browsers matter?"); err != nil {
		t.Fatalf("RequestClarification() error: %v", err)
	}

	boardItem, _ := secondary.FindItemByIssue(ctx, board, record.IssueNumber)
	if boardItem.ReviewStatus != "Waiting for Clarification" {
		t.Errorf("gate = %q", boardItem.ReviewStatus)
	}
	comments, _ := board.GetIssueComments(ctx, record.IssueNumber)
	if len(comments) != 1 || comments[0].Body != "Which browsers matter?" {
		t.Errorf("comments = %+v", comments)
	}

	if err := svc.MarkClarificationReceived(ctx, record.IssueNumber); err != nil {
		t.Fatalf("MarkClarificationReceived() error: %v", err)
	}
	boardItem, _ = secondary.FindItemByIssue(ctx, board, record.IssueNumber)
	if boardItem.ReviewStatus != "Clarification Received" {
		t.Errorf("gate = %q", boardItem.ReviewStatus)
	}
}


// TestPublishDecisionMintsUsableLink publishes a decision and then
// drives the returned token through submission: the full produce and
// consume cycle against one board.
func TestPublishDecisionMintsUsableLink(t *testing.T) {
	board := memboard.New()
	itemRepo := newMockItemRepo()
	record := seedMirroredItem(t, board, itemRepo, "WF-001")
	ctx := context.Background()

	svc := newDecisionService(board, itemRepo)
	notifier := &mockNotifier{}
	svc.notifier = notifier

	pub, err := svc.PublishDecision(ctx, primary.PublishDecisionRequest{
		IssueNumber: record.IssueNumber,
		Prompt:      "Pick a design direction",
		Options: []primary.DecisionOption{
			{ID: "opt-a", Label: "Minimal", Metadata: map[string]string{"phase": "product-design"}},
		},
		Routing: &primary.DecisionRouting{
			MetadataKey: "phase",
			StatusMap:   map[string]string{"product-design": "Technical Design"},
		},
	})
	if err != nil {
		t.Fatalf("PublishDecision() error: %v", err)
	}
	wantPrefix := "https://flowboard.example.com/decisions/"
	if !strings.HasPrefix(pub.Link, wantPrefix) || !strings.Contains(pub.Link, "?token=") {
		t.Errorf("Link = %q, want %s<issue>?token=...", pub.Link, wantPrefix)
	}
	if pub.Token == "" {
		t.Error("no token minted")
	}

	// The payload is pending on the issue and the gate reflects it.
	boardItem, _ := secondary.FindItemByIssue(ctx, board, record.IssueNumber)
	if boardItem.ReviewStatus != "Waiting for Review" {
		t.Errorf("gate = %q, want Waiting for Review", boardItem.ReviewStatus)
	}
	if len(notifier.messages) != 1 || !strings.Contains(notifier.messages[0], pub.Link) {
		t.Errorf("notifications = %v, want one carrying the link", notifier.messages)
	}

	// The minted token submits the decision it announced.
	resp, err := svc.SubmitDecision(ctx, primary.SubmitDecisionRequest{
		IssueNumber: record.IssueNumber,
		Token:       pub.Token,
		Selection:   primary.DecisionSelection{SelectedOptionID: "opt-a"},
	})
	if err != nil {
		t.Fatalf("SubmitDecision() with minted token error: %v", err)
	}
	if !resp.Routed || resp.RoutedTo != "Technical Design" {
		t.Errorf("resp = %+v, want routed to Technical Design", resp)
	}
}

func TestPublishFixSelectionLink(t *testing.T) {
	board := memboard.New()
	itemRepo := newMockItemRepo()
	record := seedMirroredItem(t, board, itemRepo, "WF-001")
	ctx := context.Background()

	svc := newDecisionService(board, itemRepo)
	pub, err := svc.PublishDecision(ctx, primary.PublishDecisionRequest{
		IssueNumber: record.IssueNumber,
		Kind:        decision.KindFixSelection,
		Options: []primary.DecisionOption{
			{ID: "fix-a", Label: "Patch it", Metadata: map[string]string{"destination": "implement"}},
		},
	})
	if err != nil {
		t.Fatalf("PublishDecision() error: %v", err)
	}
	if !strings.Contains(pub.Link, "/fix-selection/") {
		t.Errorf("Link = %q, want a fix-selection path", pub.Link)
	}

	// A fix-selection token is not a decision token.
	_, err = svc.SubmitDecision(ctx, primary.SubmitDecisionRequest{
		IssueNumber: record.IssueNumber,
		Token:       pub.Token,
		Selection:   primary.DecisionSelection{SelectedOptionID: "fix-a"},
	})
	if !errors.Is(err, primary.ErrInvalidDecisionToken) {
		t.Fatalf("err = %v, want ErrInvalidDecisionToken", err)
	}

	resp, err := svc.SubmitFixSelection(ctx, primary.SubmitDecisionRequest{
		IssueNumber: record.IssueNumber,
		Token:       pub.Token,
		Selection:   primary.DecisionSelection{SelectedOptionID: "fix-a"},
	})
	if err != nil {
		t.Fatalf("SubmitFixSelection() error: %v", err)
	}
	if resp.RoutedTo != "Implementation" {
		t.Errorf("RoutedTo = %q, want Implementation", resp.RoutedTo)
	}
}

func TestPublishDecisionValidation(t *testing.T) {
	board := memboard.New()
	itemRepo := newMockItemRepo()
	svc := newDecisionService(board, itemRepo)
	ctx := context.Background()

	if _, err := svc.PublishDecision(ctx, primary.PublishDecisionRequest{IssueNumber: 0}); err == nil {
		t.Error("publish without an issue should fail")
	}
	if _, err := svc.PublishDecision(ctx, primary.PublishDecisionRequest{IssueNumber: 7}); err == nil {
		t.Error("publish without options should fail")
	}
	if _, err := svc.PublishDecision(ctx, primary.PublishDecisionRequest{
		IssueNumber: 7,
		Kind:        "escalation",
		Options:     []primary.DecisionOption{{ID: "a", Label: "A"}},
	}); err == nil {
		t.Error("publish with an unknown kind should fail")
	}
}
