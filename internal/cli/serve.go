package cli

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/flowboard/internal/config"
	"github.com/example/flowboard/internal/db"
	"github.com/example/flowboard/internal/wire"
)

// ServeCmd returns the serve command.
func ServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the flowboard server",
		Long: `Run the HTTP server: approval link pages, decision endpoints,
the workflow API, and the chat action webhook.

Configuration comes from FLOWBOARD_* environment variables or the
config file; see 'flowboard doctor' for a health check.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			container, err := wire.New(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = container.Close() }()

			if err := db.Migrate(container.DB); err != nil {
				return fmt.Errorf("failed to migrate database: %w", err)
			}
			if err := container.Board.Init(cmd.Context()); err != nil {
				return fmt.Errorf("board backend unavailable: %w", err)
			}

			color.Green("✓ flowboard listening on %s (board: %s)", cfg.ListenAddr, cfg.Board)

			errCh := make(chan error, 1)
			go func() {
				if err := container.Server.Start(cfg.ListenAddr); err != nil && err != http.ErrServerClosed {
					errCh <- err
				}
			}()

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return err
			case <-stop:
				log.Println("shutting down")
			}

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return container.Server.Shutdown(ctx)
		},
	}
}
