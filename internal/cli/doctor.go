package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/flowboard/internal/adapters/github"
	"github.com/example/flowboard/internal/config"
	"github.com/example/flowboard/internal/db"
)

// CheckResult represents the outcome of a single check
type CheckResult struct {
	Name    string
	Status  string // "✓", "⚠", "✗"
	Details string // Only shown if Status != "✓"
}

// DoctorCmd returns the doctor command for environment validation
func DoctorCmd() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Validate the flowboard environment",
		Long: `Environment health check for flowboard.

Validates:
- Configuration (board backend, decision secret)
- Mirror database (path, schema)
- Board backend connectivity

Examples:
  flowboard doctor          # Run full health check
  flowboard doctor --quiet  # Exit code only (0=healthy, 1=issues)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, cfgErr := config.Load()

			results := []CheckResult{
				checkConfig(cfg, cfgErr),
				checkDatabase(cfg),
				checkBoard(cfg),
			}

			hasErrors := false
			for _, r := range results {
				if r.Status == "✗" {
					hasErrors = true
					break
				}
			}

			if !quiet {
				fmt.Println()
				fmt.Println("Check              Status")
				fmt.Println("─────────────────────────")
				for _, r := range results {
					fmt.Printf("%-18s %s\n", r.Name, r.Status)
				}
				fmt.Println()
				for _, r := range results {
					if r.Status != "✓" && r.Details != "" {
						fmt.Printf("%s %s: %s\n", r.Status, r.Name, r.Details)
					}
				}
			}

			if hasErrors {
				os.Exit(1)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&quiet, "quiet", false, "Exit code only, no output")
	return cmd
}

func checkConfig(cfg config.Config, cfgErr error) CheckResult {
	result := CheckResult{Name: "Configuration"}
	if cfgErr != nil {
		result.Status = "✗"
		result.Details = cfgErr.Error()
		return result
	}
	if err := cfg.Validate(); err != nil {
		result.Status = "✗"
		result.Details = err.Error()
		return result
	}
	result.Status = "✓"
	return result
}

func checkDatabase(cfg config.Config) CheckResult {
	result := CheckResult{Name: "Database"}

	dbPath := cfg.DBPath
	if dbPath == "" {
		var err error
		dbPath, err = db.DefaultPath()
		if err != nil {
			result.Status = "✗"
			result.Details = err.Error()
			return result
		}
	}

	database, err := db.Open(dbPath)
	if err != nil {
		result.Status = "✗"
		result.Details = fmt.Sprintf("cannot open %s: %v", dbPath, err)
		return result
	}
	defer func() { _ = database.Close() }()

	if err := database.Ping(); err != nil {
		result.Status = "✗"
		result.Details = err.Error()
		return result
	}
	result.Status = "✓"
	return result
}

func checkBoard(cfg config.Config) CheckResult {
	result := CheckResult{Name: "Board backend"}
	if cfg.Board != "github" {
		result.Status = "⚠"
		result.Details = fmt.Sprintf("%q backend holds no durable state", cfg.Board)
		return result
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client := github.NewClient(cfg.GitHub.Token, cfg.GitHub.Owner, cfg.GitHub.Repo)
	if err := github.NewBoard(client).Init(ctx); err != nil {
		result.Status = "✗"
		result.Details = err.Error()
		return result
	}
	result.Status = "✓"
	return result
}
