package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/flowboard/internal/cli"
	"github.com/example/flowboard/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "flowboard",
		Short:   "flowboard - workflow orchestration over a project board",
		Version: version.String(),
		Long: `flowboard moves feature requests and bug reports through a phased
pipeline on an external project board: intake, single-use approval
links, decision routing, and bounded-time undo.`,
	}

	// Add subcommands
	rootCmd.AddCommand(cli.InitCmd())
	rootCmd.AddCommand(cli.DoctorCmd())
	rootCmd.AddCommand(cli.ServeCmd())
	rootCmd.AddCommand(cli.IntakeCmd())
	rootCmd.AddCommand(cli.ItemCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
