package primary

import (
	"context"
	"errors"
)

// ErrInvalidDecisionToken covers a malformed, forged, or bucket-expired
// decision link token.
var ErrInvalidDecisionToken = errors.New("invalid or expired decision token")

// DecisionSelection is what the caller picked. SelectedOptionID may be
// "custom", in which case CustomSolution is required and
// CustomDestination optionally names a configured destination.
// ChooseRecommended selects the payload's recommended option.
type DecisionSelection struct {
	SelectedOptionID  string
	ChooseRecommended bool
	CustomSolution    string
	CustomDestination string
}

// SubmitDecisionRequest submits a decision for the pending payload on
// an issue.
type SubmitDecisionRequest struct {
	IssueNumber int
	Token       string
	Selection   DecisionSelection
}

// SubmitDecisionResponse reports the transition. RoutedTo is empty when
// the decision resolved to no destination and the item was left in an
// approved review gate instead.
type SubmitDecisionResponse struct {
	RoutedTo string
	Routed   bool
}

// DecisionOption is one selectable choice in a published decision.
type DecisionOption struct {
	ID          string
	Label       string
	Description string
	Metadata    map[string]string
	Recommended bool
}

// DecisionRouting maps selections to destination phases: option
// metadata through StatusMap, or a free-text custom destination through
// CustomDestinationStatusMap.
type DecisionRouting struct {
	MetadataKey                string
	StatusMap                  map[string]string
	CustomDestinationStatusMap map[string]string
}

// PublishDecisionRequest attaches a pending decision to an issue. An
// empty Kind publishes a generic decision.
type PublishDecisionRequest struct {
	IssueNumber int
	Kind        string
	Prompt      string
	Options     []DecisionOption
	Routing     *DecisionRouting
}

// PublishDecisionResponse carries the tokenized link the decision is
// submitted through.
type PublishDecisionResponse struct {
	Link  string
	Token string
}

// ApprovePRRequest approves and merges a pull request from a chat
// button or UI action.
type ApprovePRRequest struct {
	IssueNumber int
	PRNumber    int
}

// ApprovePRResponse carries what an undo of the approval must restore.
type ApprovePRResponse struct {
	PreviousStatus       string
	PreviousReviewStatus string
}

// DecisionService is the routing engine's driving port: it resolves
// human or agent decisions into phase transitions.
type DecisionService interface {
	// PublishDecision posts a decision payload on the issue, mints the
	// matching link token, and announces the link.
	PublishDecision(ctx context.Context, req PublishDecisionRequest) (*PublishDecisionResponse, error)

	SubmitDecision(ctx context.Context, req SubmitDecisionRequest) (*SubmitDecisionResponse, error)

	// SubmitFixSelection is the bug-fix specialization: same parsing
	// and validation machinery, destinations restricted to the
	// configured fix destinations.
	SubmitFixSelection(ctx context.Context, req SubmitDecisionRequest) (*SubmitDecisionResponse, error)

	// ApprovePullRequest merges the PR, deletes its branch
	// best-effort, and routes the item to Done.
	ApprovePullRequest(ctx context.Context, req ApprovePRRequest) (*ApprovePRResponse, error)

	// RequestClarification puts the item's gate into Waiting for
	// Clarification; MarkClarificationReceived flips it to
	// Clarification Received.
	RequestClarification(ctx context.Context, issueNumber int, question string) error
	MarkClarificationReceived(ctx context.Context, issueNumber int) error
}
