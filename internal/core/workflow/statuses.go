// Package workflow contains the pure business logic for the work item
// pipeline: the phase catalog, review gates, routing tables, and the
// undo rules. This is part of the Functional Core - no I/O, only pure
// functions over injected data.
package workflow

// Status represents the coarse pipeline phase of a work item.
type Status string

const (
	StatusPendingApproval     Status = "Pending Approval"
	StatusProductDevelopment  Status = "Product Development"
	StatusProductDesign       Status = "Product Design"
	StatusTechnicalDesign     Status = "Technical Design"
	StatusBugInvestigation    Status = "Bug Investigation"
	StatusReadyForDevelopment Status = "Ready for Development"
	StatusImplementation      Status = "Implementation"
	StatusPRReview            Status = "PR Review"
	StatusFinalReview         Status = "Final Review"
	StatusDone                Status = "Done"
	StatusRejected            Status = "Rejected"
)

// ReviewStatus represents the review gate within a phase. The empty
// string means no gate is pending.
type ReviewStatus string

const (
	ReviewNone                  ReviewStatus = ""
	ReviewWaiting               ReviewStatus = "Waiting for Review"
	ReviewApproved              ReviewStatus = "Approved"
	ReviewRequestChanges        ReviewStatus = "Request Changes"
	ReviewRejected              ReviewStatus = "Rejected"
	ReviewWaitingClarification  ReviewStatus = "Waiting for Clarification"
	ReviewClarificationReceived ReviewStatus = "Clarification Received"
)

// ItemType classifies a work item by its intake origin.
type ItemType string

const (
	TypeFeature ItemType = "feature"
	TypeBug     ItemType = "bug"
	TypeTask    ItemType = "task"
)

// AllStatuses is the fixed phase catalog, in pipeline order. Bug items
// may enter Bug Investigation instead of Product Design, so the order
// is advisory rather than strictly linear.
var AllStatuses = []Status{
	StatusPendingApproval,
	StatusProductDevelopment,
	StatusProductDesign,
	StatusTechnicalDesign,
	StatusBugInvestigation,
	StatusReadyForDevelopment,
	StatusImplementation,
	StatusPRReview,
	StatusFinalReview,
	StatusDone,
	StatusRejected,
}

// AllReviewStatuses is the fixed review gate catalog, excluding the
// cleared (empty) value.
var AllReviewStatuses = []ReviewStatus{
	ReviewWaiting,
	ReviewApproved,
	ReviewRequestChanges,
	ReviewRejected,
	ReviewWaitingClarification,
	ReviewClarificationReceived,
}

// ValidStatus reports whether s is in the phase catalog.
func ValidStatus(s Status) bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// ValidReviewStatus reports whether r is in the gate catalog. The
// cleared value is valid - it means no gate pending.
func ValidReviewStatus(r ReviewStatus) bool {
	if r == ReviewNone {
		return true
	}
	for _, known := range AllReviewStatuses {
		if r == known {
			return true
		}
	}
	return false
}

// IsTerminal reports whether s is a dead-end phase with no further
// transitions.
func IsTerminal(s Status) bool {
	return s == StatusDone || s == StatusRejected
}

// AdmitsGate reports whether the phase s may carry a pending review
// gate. Terminal phases never do - "Approved" is never paired with
// "Done".
func AdmitsGate(s Status) bool {
	return !IsTerminal(s)
}

// IsRoutableDestination reports whether s is a phase the routing engine
// may move an item into. PR Review and Done are board-only terminal
// displays driven by external events, and Pending Approval is only ever
// an initial state.
func IsRoutableDestination(s Status) bool {
	switch s {
	case StatusPendingApproval, StatusPRReview, StatusDone, StatusRejected:
		return false
	}
	return ValidStatus(s)
}

// InitialStatus returns the phase for a freshly approved work item.
func InitialStatus() Status {
	return StatusPendingApproval
}

// InitialStatusForType returns the entry phase an item of the given
// type routes into once work begins. Features start in Product
// Development, bugs in Bug Investigation.
func InitialStatusForType(t ItemType) Status {
	if t == TypeBug {
		return StatusBugInvestigation
	}
	return StatusProductDevelopment
}
