package primary

import "context"

// IntakeRecord is the service-level view of a feature request or bug
// report.
type IntakeRecord struct {
	ID          string
	Type        string
	Title       string
	Description string
	Submitter   string
	HasToken    bool
	IssueNumber int
	IssueURL    string
	CreatedAt   string
}

// SubmitIntakeRequest files a new feature request or bug report.
type SubmitIntakeRequest struct {
	Type        string
	Title       string
	Description string
	Submitter   string
}

// SubmitIntakeResponse carries the one-time approval link for the new
// record.
type SubmitIntakeResponse struct {
	IntakeID    string
	ApprovalURL string
}

// IntakeFilters narrows ListIntakes.
type IntakeFilters struct {
	Type    string
	Pending bool
	Limit   int
}

// IntakeService manages intake records and their approval tokens.
type IntakeService interface {
	SubmitIntake(ctx context.Context, req SubmitIntakeRequest) (*SubmitIntakeResponse, error)
	GetIntake(ctx context.Context, id string) (*IntakeRecord, error)
	ListIntakes(ctx context.Context, filters IntakeFilters) ([]*IntakeRecord, error)

	// ReissueToken installs a fresh approval token on a record that
	// lost its token without gaining an issue - the manual recovery
	// path for a failed approval whose token restore also failed.
	ReissueToken(ctx context.Context, id string) (*SubmitIntakeResponse, error)

	DeleteIntake(ctx context.Context, id string) error
}
