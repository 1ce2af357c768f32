package secondary

import "context"

// StringPatch expresses a three-way field update: leave the stored
// value untouched (the zero value), clear it, or set it. The
// untouched/cleared distinction is load-bearing - collapsing them
// breaks the gate-clearing behavior used throughout routing and undo.
type StringPatch struct {
	touch bool
	clear bool
	value string
}

// SetString returns a patch that assigns v.
func SetString(v string) StringPatch {
	return StringPatch{touch: true, value: v}
}

// ClearString returns a patch that unsets the field.
func ClearString() StringPatch {
	return StringPatch{touch: true, clear: true}
}

// Touched reports whether the patch changes anything.
func (p StringPatch) Touched() bool { return p.touch }

// Cleared reports whether the patch unsets the field.
func (p StringPatch) Cleared() bool { return p.clear }

// Value returns the value to assign when Touched and not Cleared.
func (p StringPatch) Value() string { return p.value }

// WorkflowItemRecord is the persistence representation of a work item
// in the mirror store.
type WorkflowItemRecord struct {
	ID                  string
	BoardItemID         string
	IssueNumber         int
	IssueURL            string
	IssueTitle          string
	Type                string
	Status              string
	ReviewStatus        string
	ImplementationPhase string
	SourceType          string
	SourceID            string
	CreatedAt           string
	UpdatedAt           string
}

// WorkflowItemFilters narrows List. Zero values match everything.
type WorkflowItemFilters struct {
	Status       string
	ReviewStatus string
	Limit        int
}

// WorkflowFieldsPatch carries three-way updates for the mutable
// workflow fields.
type WorkflowFieldsPatch struct {
	Status              StringPatch
	ReviewStatus        StringPatch
	ImplementationPhase StringPatch
}

// IssueFields links a work item to its external issue and board item.
type IssueFields struct {
	BoardItemID string
	IssueNumber int
	IssueURL    string
	IssueTitle  string
}

// WorkflowItemRepository persists the internal mirror of board state.
// The mirror is best-effort: it may transiently disagree with the
// board, and readers needing authoritative state must query the board.
type WorkflowItemRepository interface {
	Create(ctx context.Context, item *WorkflowItemRecord) error
	GetByID(ctx context.Context, id string) (*WorkflowItemRecord, error)
	GetBySource(ctx context.Context, sourceType, sourceID string) (*WorkflowItemRecord, error)
	GetByIssueNumber(ctx context.Context, issueNumber int) (*WorkflowItemRecord, error)
	List(ctx context.Context, filters WorkflowItemFilters) ([]*WorkflowItemRecord, error)
	UpdateFields(ctx context.Context, id string, patch WorkflowFieldsPatch) error
	UpdateIssueFields(ctx context.Context, id string, fields IssueFields) error
	Delete(ctx context.Context, id string) error
	GetNextID(ctx context.Context) (string, error)
}

// IntakeRecord is the persistence representation of a feature request
// or bug report awaiting (or past) approval.
type IntakeRecord struct {
	ID            string
	Type          string
	Title         string
	Description   string
	Submitter     string
	ApprovalToken string
	IssueNumber   int
	IssueURL      string
	CreatedAt     string
}

// IntakeFilters narrows List. Zero values match everything.
type IntakeFilters struct {
	Type    string
	Pending bool
	Limit   int
}

// IntakeRepository persists intake records and owns the atomic approval
// token claim.
type IntakeRepository interface {
	Create(ctx context.Context, rec *IntakeRecord) error
	GetByID(ctx context.Context, id string) (*IntakeRecord, error)
	List(ctx context.Context, filters IntakeFilters) ([]*IntakeRecord, error)

	// ClaimApprovalToken atomically clears a live approval token and
	// returns the pre-claim record, token included. Returns (nil, nil)
	// when no live token existed - either never issued, already
	// claimed, or lost to a concurrent claim. For all concurrent
	// claims against one record, exactly one receives the record.
	ClaimApprovalToken(ctx context.Context, id string) (*IntakeRecord, error)

	// SetApprovalToken installs a token on a record, used both for
	// best-effort restoration after a failed approval and for manual
	// re-issue.
	SetApprovalToken(ctx context.Context, id, token string) error

	UpdateIssueFields(ctx context.Context, id string, issueNumber int, issueURL string) error
	Delete(ctx context.Context, id string) error
	GetNextID(ctx context.Context, intakeType string) (string, error)
}
