package httpapi

import (
	"errors"
	"html/template"
	"log"
	"net/http"
	"strings"

	"github.com/example/flowboard/internal/ports/primary"
)

// approvalPage is the minimal HTML shell the approval link renders
// into. Approvers click these links from chat, so the page has to stand
// alone without assets.
var approvalPage = template.Must(template.New("approval").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; max-width: 40em; margin: 4em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
.ok { color: #1a7f37; }
.warn { color: #9a6700; }
.err { color: #cf222e; }
</style>
</head>
<body>
<h1 class="{{.Class}}">{{.Heading}}</h1>
<p>{{.Message}}</p>
{{if .IssueURL}}<p><a href="{{.IssueURL}}">{{.IssueTitle}}</a></p>{{end}}
</body>
</html>
`))

type approvalView struct {
	Title      string
	Class      string
	Heading    string
	Message    string
	IssueURL   string
	IssueTitle string
}

// handleApproval handles GET /approve/{id}?token=...
//
// The outcome is always a human-readable page: approvers land here
// from a chat link, not from an API client.
func (s *Server) handleApproval(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	intakeID := strings.TrimPrefix(r.URL.Path, "/approve/")
	token := r.URL.Query().Get("token")
	if intakeID == "" || token == "" {
		s.renderApproval(w, http.StatusBadRequest, approvalView{
			Title:   "Invalid link",
			Class:   "err",
			Heading: "Invalid approval link",
			Message: "The link is missing its record ID or token.",
		})
		return
	}

	resp, err := s.approvals.RedeemApproval(r.Context(), primary.RedeemApprovalRequest{
		IntakeID: intakeID,
		Token:    token,
	})

	switch {
	case err == nil:
		s.renderApproval(w, http.StatusOK, approvalView{
			Title:      "Approved",
			Class:      "ok",
			Heading:    "Approved",
			Message:    intakeID + " has entered the pipeline.",
			IssueURL:   resp.IssueURL,
			IssueTitle: resp.IssueTitle,
		})
	case errors.Is(err, primary.ErrAlreadyApproved):
		view := approvalView{
			Title:   "Already approved",
			Class:   "warn",
			Heading: "Already approved",
			Message: intakeID + " was approved earlier.",
		}
		if resp != nil {
			view.IssueURL = resp.IssueURL
			view.IssueTitle = resp.IssueTitle
			if view.IssueTitle == "" {
				view.IssueTitle = "View the issue"
			}
		}
		s.renderApproval(w, http.StatusOK, view)
	case errors.Is(err, primary.ErrInvalidApprovalToken):
		s.renderApproval(w, http.StatusForbidden, approvalView{
			Title:   "Invalid link",
			Class:   "err",
			Heading: "Invalid or expired link",
			Message: "This approval link is not valid. It may have been used already.",
		})
	default:
		log.Printf("approval of %s failed: %v", intakeID, err)
		s.renderApproval(w, http.StatusInternalServerError, approvalView{
			Title:   "Something went wrong",
			Class:   "err",
			Heading: "Something went wrong",
			Message: "The approval could not be completed. The link is still valid; try again shortly.",
		})
	}
}

func (s *Server) renderApproval(w http.ResponseWriter, status int, view approvalView) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := approvalPage.Execute(w, view); err != nil {
		log.Printf("failed to render approval page: %v", err)
	}
}
