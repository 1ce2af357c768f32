package app

import (
	"context"
	"fmt"

	"github.com/example/flowboard/internal/core/intake"
	"github.com/example/flowboard/internal/ports/secondary"
)

// Ensure mocks implement the interfaces
var (
	_ secondary.WorkflowItemRepository = (*mockItemRepo)(nil)
	_ secondary.IntakeRepository       = (*mockIntakeRepo)(nil)
	_ secondary.Notifier               = (*mockNotifier)(nil)
	_ secondary.ActionLogWriter        = (*mockActionLog)(nil)
)

// mockItemRepo implements secondary.WorkflowItemRepository for testing.
type mockItemRepo struct {
	items     map[string]*secondary.WorkflowItemRecord
	createErr error
	updateErr error
}

func newMockItemRepo() *mockItemRepo {
	return &mockItemRepo{items: make(map[string]*secondary.WorkflowItemRecord)}
}

func (m *mockItemRepo) Create(ctx context.Context, item *secondary.WorkflowItemRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	copied := *item
	m.items[item.ID] = &copied
	return nil
}

func (m *mockItemRepo) GetByID(ctx context.Context, id string) (*secondary.WorkflowItemRecord, error) {
	item, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("workflow item %s not found", id)
	}
	copied := *item
	return &copied, nil
}

func (m *mockItemRepo) GetBySource(ctx context.Context, sourceType, sourceID string) (*secondary.WorkflowItemRecord, error) {
	for _, item := range m.items {
		if item.SourceType == sourceType && item.SourceID == sourceID {
			copied := *item
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("no workflow item for %s %s", sourceType, sourceID)
}

func (m *mockItemRepo) GetByIssueNumber(ctx context.Context, issueNumber int) (*secondary.WorkflowItemRecord, error) {
	for _, item := range m.items {
		if item.IssueNumber == issueNumber {
			copied := *item
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *mockItemRepo) List(ctx context.Context, filters secondary.WorkflowItemFilters) ([]*secondary.WorkflowItemRecord, error) {
	var out []*secondary.WorkflowItemRecord
	for _, item := range m.items {
		if filters.Status != "" && item.Status != filters.Status {
			continue
		}
		if filters.ReviewStatus != "" && item.ReviewStatus != filters.ReviewStatus {
			continue
		}
		copied := *item
		out = append(out, &copied)
	}
	return out, nil
}

func (m *mockItemRepo) UpdateFields(ctx context.Context, id string, patch secondary.WorkflowFieldsPatch) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	item, ok := m.items[id]
	if !ok {
		return fmt.Errorf("workflow item %s not found", id)
	}
	applyPatch := func(field *string, p secondary.StringPatch) {
		if !p.Touched() {
			return
		}
		if p.Cleared() {
			*field = ""
			return
		}
		*field = p.Value()
	}
	applyPatch(&item.Status, patch.Status)
	applyPatch(&item.ReviewStatus, patch.ReviewStatus)
	applyPatch(&item.ImplementationPhase, patch.ImplementationPhase)
	return nil
}

func (m *mockItemRepo) UpdateIssueFields(ctx context.Context, id string, fields secondary.IssueFields) error {
	item, ok := m.items[id]
	if !ok {
		return fmt.Errorf("workflow item %s not found", id)
	}
	item.BoardItemID = fields.BoardItemID
	item.IssueNumber = fields.IssueNumber
	item.IssueURL = fields.IssueURL
	item.IssueTitle = fields.IssueTitle
	return nil
}

func (m *mockItemRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.items[id]; !ok {
		return fmt.Errorf("workflow item %s not found", id)
	}
	delete(m.items, id)
	return nil
}

func (m *mockItemRepo) GetNextID(ctx context.Context) (string, error) {
	return fmt.Sprintf("WF-%03d", len(m.items)+1), nil
}

// mockIntakeRepo implements secondary.IntakeRepository for testing. The
// claim is not concurrency-safe; the SQLite tests cover that.
type mockIntakeRepo struct {
	records  map[string]*secondary.IntakeRecord
	claimErr error
	setErr   error
}

func newMockIntakeRepo() *mockIntakeRepo {
	return &mockIntakeRepo{records: make(map[string]*secondary.IntakeRecord)}
}

func (m *mockIntakeRepo) Create(ctx context.Context, rec *secondary.IntakeRecord) error {
	copied := *rec
	m.records[rec.ID] = &copied
	return nil
}

func (m *mockIntakeRepo) GetByID(ctx context.Context, id string) (*secondary.IntakeRecord, error) {
	rec, ok := m.records[id]
	if !ok {
		return nil, nil
	}
	copied := *rec
	return &copied, nil
}

func (m *mockIntakeRepo) List(ctx context.Context, filters secondary.IntakeFilters) ([]*secondary.IntakeRecord, error) {
	var out []*secondary.IntakeRecord
	for _, rec := range m.records {
		if filters.Type != "" && rec.Type != filters.Type {
			continue
		}
		if filters.Pending && rec.ApprovalToken == "" {
			continue
		}
		copied := *rec
		out = append(out, &copied)
	}
	return out, nil
}

func (m *mockIntakeRepo) ClaimApprovalToken(ctx context.Context, id string) (*secondary.IntakeRecord, error) {
	if m.claimErr != nil {
		return nil, m.claimErr
	}
	rec, ok := m.records[id]
	if !ok || rec.ApprovalToken == "" {
		return nil, nil
	}
	copied := *rec
	rec.ApprovalToken = ""
	return &copied, nil
}

func (m *mockIntakeRepo) SetApprovalToken(ctx context.Context, id, token string) error {
	if m.setErr != nil {
		return m.setErr
	}
	rec, ok := m.records[id]
	if !ok {
		return fmt.Errorf("intake record %s not found", id)
	}
	rec.ApprovalToken = token
	return nil
}

func (m *mockIntakeRepo) UpdateIssueFields(ctx context.Context, id string, issueNumber int, issueURL string) error {
	rec, ok := m.records[id]
	if !ok {
		return fmt.Errorf("intake record %s not found", id)
	}
	rec.IssueNumber = issueNumber
	rec.IssueURL = issueURL
	return nil
}

func (m *mockIntakeRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.records[id]; !ok {
		return fmt.Errorf("intake record %s not found", id)
	}
	delete(m.records, id)
	return nil
}

func (m *mockIntakeRepo) GetNextID(ctx context.Context, intakeType string) (string, error) {
	count := 0
	for _, rec := range m.records {
		if rec.Type == intakeType {
			count++
		}
	}
	return intake.GenerateID(intake.Type(intakeType), count), nil
}

// mockNotifier implements secondary.Notifier for testing.
type mockNotifier struct {
	messages []string
	sendErr  error
}

func (m *mockNotifier) Send(ctx context.Context, text string) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.messages = append(m.messages, text)
	return nil
}

// mockActionLog implements secondary.ActionLogWriter for testing.
type loggedAction struct {
	entityType string
	entityID   string
	action     string
	detail     string
}

type mockActionLog struct {
	entries []loggedAction
}

func (m *mockActionLog) LogAction(ctx context.Context, entityType, entityID, action, detail string) error {
	m.entries = append(m.entries, loggedAction{entityType, entityID, action, detail})
	return nil
}
