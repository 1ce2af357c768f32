// Package httpapi exposes the application services over HTTP: the
// approval link pages, the decision endpoints, the workflow API, and
// the chat action webhook.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/example/flowboard/internal/ctxutil"
	"github.com/example/flowboard/internal/ports/primary"
)

const maxBodySize = 1 << 20

// actorHeader names the caller for the action log. Trusted callers
// (the chat integration, internal tools) set it; approval links clicked
// from an email carry no identity.
const actorHeader = "X-Flowboard-Actor"

// Config holds the services and settings the server needs.
type Config struct {
	Approvals primary.ApprovalService
	Decisions primary.DecisionService
	Items     primary.WorkflowItemService
	Intakes   primary.IntakeService
	Undo      primary.UndoService

	// UndoWindow bounds how long after an action its undo button keeps
	// working. Zero means the default.
	UndoWindow time.Duration
}

// Server handles the HTTP surface.
type Server struct {
	approvals primary.ApprovalService
	decisions primary.DecisionService
	items     primary.WorkflowItemService
	intakes   primary.IntakeService
	undo      primary.UndoService

	undoWindow time.Duration

	mux        *http.ServeMux
	handler    http.Handler
	httpServer *http.Server
}

// NewServer creates a new API server.
func NewServer(cfg Config) *Server {
	s := &Server{
		approvals:  cfg.Approvals,
		decisions:  cfg.Decisions,
		items:      cfg.Items,
		intakes:    cfg.Intakes,
		undo:       cfg.Undo,
		undoWindow: cfg.UndoWindow,
		mux:        http.NewServeMux(),
	}

	// Register routes
	s.mux.HandleFunc("/approve/", s.handleApproval)
	s.mux.HandleFunc("/api/decisions", s.handleDecision)
	s.mux.HandleFunc("/api/decisions/publish", s.handlePublishDecision)
	s.mux.HandleFunc("/api/fix-selection", s.handleFixSelection)
	s.mux.HandleFunc("/api/workflow/status", s.handleUpdateStatus)
	s.mux.HandleFunc("/api/workflow/items", s.handleListItems)
	s.mux.HandleFunc("/api/intake", s.handleSubmitIntake)
	s.mux.HandleFunc("/webhook/actions", s.handleAction)
	s.mux.HandleFunc("/health", s.handleHealth)

	s.handler = withActor(s.mux)

	return s
}

// withActor copies the caller identity header into the request context
// so the action log can attribute mutations.
func withActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if actor := r.Header.Get(actorHeader); actor != "" {
			r = r.WithContext(ctxutil.WithActorID(r.Context(), actor))
		}
		next.ServeHTTP(w, r)
	})
}

// Start starts the HTTP server on the given address.
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// Handler returns the HTTP handler for use with custom servers.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]any{"success": false, "error": msg})
}

// decodeBody parses a size-limited JSON request body into v.
func decodeBody(r *http.Request, v any) error {
	defer func() { _ = r.Body.Close() }()
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodySize))
	return dec.Decode(v)
}
