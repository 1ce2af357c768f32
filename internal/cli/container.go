package cli

import (
	"context"
	"fmt"
	"os"
	"os/user"

	"github.com/example/flowboard/internal/config"
	"github.com/example/flowboard/internal/ctxutil"
	"github.com/example/flowboard/internal/wire"
)

// newContainer loads configuration and wires the application graph for
// a single command invocation.
func newContainer() (*wire.Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	container, err := wire.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to wire application: %w", err)
	}
	return container, nil
}

// actorContext carries the invoking OS user so CLI mutations are
// attributed in the action log.
func actorContext() context.Context {
	ctx := context.Background()
	if u, err := user.Current(); err == nil && u.Username != "" {
		return ctxutil.WithActorID(ctx, u.Username)
	}
	if name := os.Getenv("USER"); name != "" {
		return ctxutil.WithActorID(ctx, name)
	}
	return ctx
}
