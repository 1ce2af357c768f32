package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/example/flowboard/internal/ports/primary"
)

// DecisionRequest is the JSON request body for decision submissions.
type DecisionRequest struct {
	IssueNumber       int    `json:"issueNumber"`
	Token             string `json:"token"`
	SelectedOptionID  string `json:"selectedOptionId,omitempty"`
	ChooseRecommended bool   `json:"chooseRecommended,omitempty"`
	CustomSolution    string `json:"customSolution,omitempty"`
	CustomDestination string `json:"customDestination,omitempty"`
}

// DecisionResponse is the JSON response body.
type DecisionResponse struct {
	Success  bool   `json:"success"`
	Routed   bool   `json:"routed,omitempty"`
	RoutedTo string `json:"routedTo,omitempty"`
	Error    string `json:"error,omitempty"`
}

// PublishDecisionRequest is the JSON body for publishing a pending
// decision on an issue. Kind defaults to a generic decision.
type PublishDecisionRequest struct {
	IssueNumber int                     `json:"issueNumber"`
	Kind        string                  `json:"kind,omitempty"`
	Prompt      string                  `json:"prompt,omitempty"`
	Options     []PublishDecisionOption `json:"options"`
	Routing     *PublishDecisionRouting `json:"routing,omitempty"`
}

// PublishDecisionOption is one selectable choice.
type PublishDecisionOption struct {
	ID          string            `json:"id"`
	Label       string            `json:"label"`
	Description string            `json:"description,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Recommended bool              `json:"recommended,omitempty"`
}

// PublishDecisionRouting maps selections to destination phases.
type PublishDecisionRouting struct {
	MetadataKey                string            `json:"metadataKey,omitempty"`
	StatusMap                  map[string]string `json:"statusMap,omitempty"`
	CustomDestinationStatusMap map[string]string `json:"customDestinationStatusMap,omitempty"`
}

// PublishDecisionResponse carries the tokenized decision link.
type PublishDecisionResponse struct {
	Success bool   `json:"success"`
	Link    string `json:"link,omitempty"`
	Token   string `json:"token,omitempty"`
	Error   string `json:"error,omitempty"`
}

// handlePublishDecision handles POST /api/decisions/publish.
func (s *Server) handlePublishDecision(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed: use POST")
		return
	}

	var req PublishDecisionRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.IssueNumber <= 0 {
		s.writeError(w, http.StatusBadRequest, "issueNumber is required")
		return
	}

	options := make([]primary.DecisionOption, 0, len(req.Options))
	for _, opt := range req.Options {
		options = append(options, primary.DecisionOption{
			ID:          opt.ID,
			Label:       opt.Label,
			Description: opt.Description,
			Metadata:    opt.Metadata,
			Recommended: opt.Recommended,
		})
	}
	var routing *primary.DecisionRouting
	if req.Routing != nil {
		routing = &primary.DecisionRouting{
			MetadataKey:                req.Routing.MetadataKey,
			StatusMap:                  req.Routing.StatusMap,
			CustomDestinationStatusMap: req.Routing.CustomDestinationStatusMap,
		}
	}

	resp, err := s.decisions.PublishDecision(r.Context(), primary.PublishDecisionRequest{
		IssueNumber: req.IssueNumber,
		Kind:        req.Kind,
		Prompt:      req.Prompt,
		Options:     options,
		Routing:     routing,
	})
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	s.writeJSON(w, http.StatusCreated, PublishDecisionResponse{
		Success: true,
		Link:    resp.Link,
		Token:   resp.Token,
	})
}

// handleDecision handles POST /api/decisions.
func (s *Server) handleDecision(w http.ResponseWriter, r *http.Request) {
	s.submitDecision(w, r, s.decisions.SubmitDecision)
}

// handleFixSelection handles POST /api/fix-selection.
func (s *Server) handleFixSelection(w http.ResponseWriter, r *http.Request) {
	s.submitDecision(w, r, s.decisions.SubmitFixSelection)
}

func (s *Server) submitDecision(
	w http.ResponseWriter,
	r *http.Request,
	submit func(context.Context, primary.SubmitDecisionRequest) (*primary.SubmitDecisionResponse, error),
) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed: use POST")
		return
	}

	var req DecisionRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.IssueNumber <= 0 {
		s.writeError(w, http.StatusBadRequest, "issueNumber is required")
		return
	}
	if req.Token == "" {
		s.writeError(w, http.StatusUnauthorized, "missing token")
		return
	}

	resp, err := submit(r.Context(), primary.SubmitDecisionRequest{
		IssueNumber: req.IssueNumber,
		Token:       req.Token,
		Selection: primary.DecisionSelection{
			SelectedOptionID:  req.SelectedOptionID,
			ChooseRecommended: req.ChooseRecommended,
			CustomSolution:    req.CustomSolution,
			CustomDestination: req.CustomDestination,
		},
	})
	if err != nil {
		if errors.Is(err, primary.ErrInvalidDecisionToken) {
			s.writeError(w, http.StatusForbidden, err.Error())
			return
		}
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, DecisionResponse{
		Success:  true,
		Routed:   resp.Routed,
		RoutedTo: resp.RoutedTo,
	})
}
