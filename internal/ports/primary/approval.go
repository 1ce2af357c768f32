package primary

import (
	"context"
	"errors"
)

// Sentinel errors the approval link page distinguishes.
var (
	// ErrInvalidApprovalToken covers a missing, mismatched, or
	// already-claimed token.
	ErrInvalidApprovalToken = errors.New("invalid or expired token")

	// ErrAlreadyApproved means the intake record was approved earlier;
	// the page links to the existing issue instead of erroring.
	ErrAlreadyApproved = errors.New("already approved")
)

// RedeemApprovalRequest redeems the single-use token from an approval
// link.
type RedeemApprovalRequest struct {
	IntakeID string
	Token    string
}

// RedeemApprovalResponse describes the work item entering the pipeline.
type RedeemApprovalResponse struct {
	ItemID      string
	IssueNumber int
	IssueURL    string
	IssueTitle  string
}

// ApprovalService redeems approval links. The claim is atomic: of all
// concurrent redemptions for one intake record, exactly one succeeds.
type ApprovalService interface {
	RedeemApproval(ctx context.Context, req RedeemApprovalRequest) (*RedeemApprovalResponse, error)
}
