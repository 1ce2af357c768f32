// Package primary defines the primary ports (driving interfaces) of
// the application: the services invoked by the HTTP surface and the
// CLI.
package primary

import "context"

// WorkflowItem is the service-level view of a work item.
type WorkflowItem struct {
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

// WorkflowItemFilters narrows ListWorkflowItems.
type WorkflowItemFilters struct {
	Status       string
	ReviewStatus string
	Limit        int
}

// UpdateStatusRequest moves an item to a new phase. The item is
// addressed either by its internal ID or by its intake source.
type UpdateStatusRequest struct {
	ItemID     string
	SourceType string
	SourceID   string
	Status     string
}

// UpdateStatusResponse reports how the update was applied. MirrorOnly
// is true when the target phase is not a valid routing destination and
// only the internal mirror was updated.
type UpdateStatusResponse struct {
	Item       *WorkflowItem
	MirrorOnly bool
}

// WorkflowItemService manages work items and their phase updates.
type WorkflowItemService interface {
	GetWorkflowItem(ctx context.Context, id string) (*WorkflowItem, error)
	GetWorkflowItemBySource(ctx context.Context, sourceType, sourceID string) (*WorkflowItem, error)
	ListWorkflowItems(ctx context.Context, filters WorkflowItemFilters) ([]*WorkflowItem, error)

	// UpdateStatus routes the item to the requested phase on the board
	// and mirrors the result, falling back to a mirror-only update
	// when the phase is not a routable destination.
	UpdateStatus(ctx context.Context, req UpdateStatusRequest) (*UpdateStatusResponse, error)

	// DeleteWorkflowItem removes the item from the mirror and detaches
	// its board item.
	DeleteWorkflowItem(ctx context.Context, id string) error
}
