package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/example/flowboard/internal/ports/primary"
)

// ActionRequest is the JSON body posted by chat action buttons. Value
// carries the action-specific payload; OriginalText is the message the
// button lives on, which the response text replaces.
type ActionRequest struct {
	Action       string          `json:"action"`
	Value        json.RawMessage `json:"value"`
	OriginalText string          `json:"originalText,omitempty"`
}

// ActionResponse is the edited message text the chat surface renders in
// place of the original.
type ActionResponse struct {
	Success bool   `json:"success"`
	Text    string `json:"text,omitempty"`
	Error   string `json:"error,omitempty"`
}

type undoAction struct {
	IssueNumber         int     `json:"issueNumber"`
	PRNumber            int     `json:"prNumber,omitempty"`
	DesignType          string  `json:"designType,omitempty"`
	OriginalAction      string  `json:"originalAction,omitempty"`
	RestoreStatus       *string `json:"restoreStatus,omitempty"`
	RestoreReviewStatus *string `json:"restoreReviewStatus,omitempty"`
	Timestamp           string  `json:"timestamp"`
}

type approvePRAction struct {
	IssueNumber int `json:"issueNumber"`
	PRNumber    int `json:"prNumber"`
}

type clarificationAction struct {
	IssueNumber int    `json:"issueNumber"`
	Question    string `json:"question,omitempty"`
}

// handleAction handles POST /webhook/actions: the dispatcher behind
// chat message buttons. Unknown actions are rejected; everything the
// handler needs rides in the button payload, nothing is stored between
// the message being posted and the button being pressed.
func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed: use POST")
		return
	}

	var req ActionRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	var (
		text string
		err  error
	)
	switch req.Action {
	case "undo":
		text, err = s.runUndo(r, req)
	case "approve-pr":
		text, err = s.runApprovePR(r, req)
	case "request-clarification":
		text, err = s.runRequestClarification(r, req)
	case "clarification-received":
		text, err = s.runClarificationReceived(r, req)
	default:
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown action %q", req.Action))
		return
	}
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, ActionResponse{Success: true, Text: editedText(req.OriginalText, text)})
}

func (s *Server) runUndo(r *http.Request, req ActionRequest) (string, error) {
	var value undoAction
	if err := json.Unmarshal(req.Value, &value); err != nil {
		return "", fmt.Errorf("invalid undo payload: %w", err)
	}
	ts, err := time.Parse(time.RFC3339, value.Timestamp)
	if err != nil {
		return "", fmt.Errorf("invalid undo timestamp: %w", err)
	}

	resp, err := s.undo.UndoStatusChange(r.Context(), primary.UndoRequest{
		IssueNumber:         value.IssueNumber,
		RestoreStatus:       value.RestoreStatus,
		RestoreReviewStatus: value.RestoreReviewStatus,
		Timestamp:           ts,
		Window:              s.undoWindow,
	})
	if err != nil {
		return "", err
	}
	switch {
	case resp.Expired:
		return "Undo window has passed.", nil
	case resp.AlreadyDone:
		return "Already undone.", nil
	case value.OriginalAction != "":
		return fmt.Sprintf("Undid %s.", value.OriginalAction), nil
	default:
		return "Undone.", nil
	}
}

func (s *Server) runApprovePR(r *http.Request, req ActionRequest) (string, error) {
	var value approvePRAction
	if err := json.Unmarshal(req.Value, &value); err != nil {
		return "", fmt.Errorf("invalid approve-pr payload: %w", err)
	}

	_, err := s.decisions.ApprovePullRequest(r.Context(), primary.ApprovePRRequest{
		IssueNumber: value.IssueNumber,
		PRNumber:    value.PRNumber,
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("PR #%d merged.", value.PRNumber), nil
}

func (s *Server) runRequestClarification(r *http.Request, req ActionRequest) (string, error) {
	var value clarificationAction
	if err := json.Unmarshal(req.Value, &value); err != nil {
		return "", fmt.Errorf("invalid clarification payload: %w", err)
	}
	if err := s.decisions.RequestClarification(r.Context(), value.IssueNumber, value.Question); err != nil {
		return "", err
	}
	return "Clarification requested.", nil
}

func (s *Server) runClarificationReceived(r *http.Request, req ActionRequest) (string, error) {
	var value clarificationAction
	if err := json.Unmarshal(req.Value, &value); err != nil {
		return "", fmt.Errorf("invalid clarification payload: %w", err)
	}
	if err := s.decisions.MarkClarificationReceived(r.Context(), value.IssueNumber); err != nil {
		return "", err
	}
	return "Clarification received.", nil
}

// editedText appends the action outcome to the original message so the
// chat history keeps its context.
func editedText(original, outcome string) string {
	if original == "" {
		return outcome
	}
	return original + "\n\n_" + outcome + "_"
}
