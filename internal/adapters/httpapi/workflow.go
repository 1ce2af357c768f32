package httpapi

import (
	"net/http"
	"strconv"

	"github.com/example/flowboard/internal/ports/primary"
)

// UpdateStatusRequest is the JSON request body for workflow status
// updates.
type UpdateStatusRequest struct {
	ItemID     string `json:"itemId,omitempty"`
	SourceType string `json:"sourceType,omitempty"`
	SourceID   string `json:"sourceId,omitempty"`
	Status     string `json:"status"`
}

// WorkflowItemJSON is the wire form of a work item.
type WorkflowItemJSON struct {
	ID                  string `json:"id"`
	IssueNumber         int    `json:"issueNumber,omitempty"`
	IssueURL            string `json:"issueUrl,omitempty"`
	IssueTitle          string `json:"issueTitle,omitempty"`
	Type                string `json:"type"`
	Status              string `json:"status"`
	ReviewStatus        string `json:"reviewStatus,omitempty"`
	ImplementationPhase string `json:"implementationPhase,omitempty"`
	SourceType          string `json:"sourceType,omitempty"`
	SourceID            string `json:"sourceId,omitempty"`
	UpdatedAt           string `json:"updatedAt,omitempty"`
}

// handleUpdateStatus handles POST /api/workflow/status.
func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed: use POST")
		return
	}

	var req UpdateStatusRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Status == "" {
		s.writeError(w, http.StatusBadRequest, "status is required")
		return
	}
	if req.ItemID == "" && (req.SourceType == "" || req.SourceID == "") {
		s.writeError(w, http.StatusBadRequest, "itemId or sourceType+sourceId is required")
		return
	}

	resp, err := s.items.UpdateStatus(r.Context(), primary.UpdateStatusRequest{
		ItemID:     req.ItemID,
		SourceType: req.SourceType,
		SourceID:   req.SourceID,
		Status:     req.Status,
	})
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"mirrorOnly": resp.MirrorOnly,
		"item":       itemToJSON(resp.Item),
	})
}

// handleListItems handles GET /api/workflow/items.
func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed: use GET")
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	items, err := s.items.ListWorkflowItems(r.Context(), primary.WorkflowItemFilters{
		Status:       r.URL.Query().Get("status"),
		ReviewStatus: r.URL.Query().Get("reviewStatus"),
		Limit:        limit,
	})
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	out := make([]WorkflowItemJSON, 0, len(items))
	for _, item := range items {
		out = append(out, itemToJSON(item))
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"items": out})
}

// IntakeSubmission is the JSON request body for filing a feature
// request or bug report.
type IntakeSubmission struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Submitter   string `json:"submitter,omitempty"`
}

// handleSubmitIntake handles POST /api/intake.
func (s *Server) handleSubmitIntake(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed: use POST")
		return
	}

	var req IntakeSubmission
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	resp, err := s.intakes.SubmitIntake(r.Context(), primary.SubmitIntakeRequest{
		Type:        req.Type,
		Title:       req.Title,
		Description: req.Description,
		Submitter:   req.Submitter,
	})
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	s.writeJSON(w, http.StatusCreated, map[string]any{
		"success":     true,
		"intakeId":    resp.IntakeID,
		"approvalUrl": resp.ApprovalURL,
	})
}

func itemToJSON(item *primary.WorkflowItem) WorkflowItemJSON {
	return WorkflowItemJSON{
		ID:                  item.ID,
		IssueNumber:         item.IssueNumber,
		IssueURL:            item.IssueURL,
		IssueTitle:          item.IssueTitle,
		Type:                item.Type,
		Status:              item.Status,
		ReviewStatus:        item.ReviewStatus,
		ImplementationPhase: item.ImplementationPhase,
		SourceType:          item.SourceType,
		SourceID:            item.SourceID,
		UpdatedAt:           item.UpdatedAt,
	}
}
