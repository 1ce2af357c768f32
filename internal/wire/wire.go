// Package wire provides dependency injection for the flowboard
// application. It builds the adapter and service graph from loaded
// configuration.
package wire

import (
	"database/sql"
	"fmt"

	"github.com/example/flowboard/internal/adapters/github"
	"github.com/example/flowboard/internal/adapters/httpapi"
	"github.com/example/flowboard/internal/adapters/memboard"
	"github.com/example/flowboard/internal/adapters/notify"
	"github.com/example/flowboard/internal/adapters/sqlite"
	"github.com/example/flowboard/internal/app"
	"github.com/example/flowboard/internal/config"
	"github.com/example/flowboard/internal/core/workflow"
	"github.com/example/flowboard/internal/db"
	"github.com/example/flowboard/internal/ports/primary"
	"github.com/example/flowboard/internal/ports/secondary"
)

// Container holds the wired application graph.
type Container struct {
	Config config.Config

	DB    *sql.DB
	Board secondary.Board

	Items     primary.WorkflowItemService
	Approvals primary.ApprovalService
	Decisions primary.DecisionService
	Intakes   primary.IntakeService
	Undo      primary.UndoService

	ActionLog *sqlite.ActionLogRepository

	Server *httpapi.Server
}

// New wires the full application from configuration.
func New(cfg config.Config) (*Container, error) {
	dbPath := cfg.DBPath
	if dbPath == "" {
		var err error
		dbPath, err = db.DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve database path: %w", err)
		}
	}
	database, err := db.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	board, err := buildBoard(cfg)
	if err != nil {
		_ = database.Close()
		return nil, err
	}

	itemRepo := sqlite.NewWorkflowItemRepository(database)
	intakeRepo := sqlite.NewIntakeRepository(database)
	actionLog := sqlite.NewActionLogRepository(database)

	var notifier secondary.Notifier
	if cfg.NotifyWebhookURL != "" {
		notifier = notify.NewWebhookNotifier(cfg.NotifyWebhookURL)
	} else {
		notifier = notify.NewLogNotifier()
	}

	items := app.NewWorkflowItemService(itemRepo, board, actionLog)
	approvals := app.NewApprovalService(intakeRepo, itemRepo, board, notifier, actionLog)
	decisions := app.NewDecisionService(board, itemRepo, notifier, actionLog,
		[]byte(cfg.DecisionSecret), cfg.TokenBucket, workflow.DefaultRoutingTables(), cfg.BaseURL)
	intakes := app.NewIntakeService(intakeRepo, notifier, actionLog, cfg.BaseURL)
	undo := app.NewUndoService(board, itemRepo, actionLog)

	server := httpapi.NewServer(httpapi.Config{
		Approvals:  approvals,
		Decisions:  decisions,
		Items:      items,
		Intakes:    intakes,
		Undo:       undo,
		UndoWindow: cfg.UndoWindow,
	})

	return &Container{
		Config:    cfg,
		DB:        database,
		Board:     board,
		Items:     items,
		Approvals: approvals,
		Decisions: decisions,
		Intakes:   intakes,
		Undo:      undo,
		ActionLog: actionLog,
		Server:    server,
	}, nil
}

// Close releases the container's resources.
func (c *Container) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

func buildBoard(cfg config.Config) (secondary.Board, error) {
	switch cfg.Board {
	case "github":
		client := github.NewClient(cfg.GitHub.Token, cfg.GitHub.Owner, cfg.GitHub.Repo)
		return github.NewBoard(client), nil
	case "memory":
		return memboard.New(), nil
	default:
		return nil, fmt.Errorf("unknown board backend %q", cfg.Board)
	}
}
