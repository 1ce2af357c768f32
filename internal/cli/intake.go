package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/flowboard/internal/ports/primary"
)

var intakeCmd = &cobra.Command{
	Use:   "intake",
	Short: "Manage feature requests and bug reports",
	Long:  "Submit, list, and manage intake records and their approval tokens",
}

var intakeSubmitCmd = &cobra.Command{
	Use:   "submit [title]",
	Short: "File a new feature request or bug report",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := actorContext()
		title := args[0]
		intakeType, _ := cmd.Flags().GetString("type")
		description, _ := cmd.Flags().GetString("description")
		submitter, _ := cmd.Flags().GetString("submitter")

		container, err := newContainer()
		if err != nil {
			return err
		}
		defer func() { _ = container.Close() }()

		resp, err := container.Intakes.SubmitIntake(ctx, primary.SubmitIntakeRequest{
			Type:        intakeType,
			Title:       title,
			Description: description,
			Submitter:   submitter,
		})
		if err != nil {
			return fmt.Errorf("failed to submit intake: %w", err)
		}

		fmt.Printf("✓ Created %s: %s\n", resp.IntakeID, title)
		fmt.Printf("  Approval link: %s\n", resp.ApprovalURL)
		return nil
	},
}

var intakeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List intake records",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := actorContext()
		intakeType, _ := cmd.Flags().GetString("type")
		pending, _ := cmd.Flags().GetBool("pending")

		container, err := newContainer()
		if err != nil {
			return err
		}
		defer func() { _ = container.Close() }()

		records, err := container.Intakes.ListIntakes(ctx, primary.IntakeFilters{
			Type:    intakeType,
			Pending: pending,
		})
		if err != nil {
			return fmt.Errorf("failed to list intakes: %w", err)
		}
		if len(records) == 0 {
			fmt.Println("No intake records found")
			return nil
		}

		fmt.Println(headerStyle.Render(fmt.Sprintf("%-9s %-16s %-40s %s", "ID", "TYPE", "TITLE", "STATE")))
		for _, rec := range records {
			state := mutedStyle.Render("awaiting approval")
			switch {
			case rec.IssueURL != "":
				state = passStyle.Render(fmt.Sprintf("approved (#%d)", rec.IssueNumber))
			case !rec.HasToken:
				state = warnStyle.Render("token lost")
			}
			fmt.Printf("%-9s %-16s %-40s %s\n", rec.ID, rec.Type, truncate(rec.Title, 40), state)
		}
		return nil
	},
}

var intakeShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show an intake record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		container, err := newContainer()
		if err != nil {
			return err
		}
		defer func() { _ = container.Close() }()

		rec, err := container.Intakes.GetIntake(actorContext(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("%s: %s\n", rec.ID, rec.Title)
		fmt.Printf("  Type:      %s\n", rec.Type)
		if rec.Submitter != "" {
			fmt.Printf("  Submitter: %s\n", rec.Submitter)
		}
		if rec.Description != "" {
			fmt.Printf("  Description:\n    %s\n", rec.Description)
		}
		switch {
		case rec.IssueURL != "":
			fmt.Printf("  Approved:  %s\n", rec.IssueURL)
		case rec.HasToken:
			fmt.Println("  State:     awaiting approval")
		default:
			fmt.Println("  State:     token lost (use 'flowboard intake reissue')")
		}
		return nil
	},
}

var intakeReissueCmd = &cobra.Command{
	Use:   "reissue [id]",
	Short: "Issue a fresh approval token for a record that lost its token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		container, err := newContainer()
		if err != nil {
			return err
		}
		defer func() { _ = container.Close() }()

		resp, err := container.Intakes.ReissueToken(actorContext(), args[0])
		if err != nil {
			return fmt.Errorf("failed to reissue token: %w", err)
		}

		fmt.Printf("✓ New approval link for %s:\n", resp.IntakeID)
		fmt.Printf("  %s\n", resp.ApprovalURL)
		return nil
	},
}

var intakeDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete an intake record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		container, err := newContainer()
		if err != nil {
			return err
		}
		defer func() { _ = container.Close() }()

		if err := container.Intakes.DeleteIntake(actorContext(), args[0]); err != nil {
			return err
		}
		fmt.Printf("✓ Deleted %s\n", args[0])
		return nil
	},
}

// IntakeCmd returns the intake command with subcommands.
func IntakeCmd() *cobra.Command {
	intakeSubmitCmd.Flags().String("type", "feature-request", "Intake type: feature-request or bug-report")
	intakeSubmitCmd.Flags().String("description", "", "Longer description")
	intakeSubmitCmd.Flags().String("submitter", "", "Who filed it")

	intakeListCmd.Flags().String("type", "", "Filter by intake type")
	intakeListCmd.Flags().Bool("pending", false, "Only records awaiting approval")

	intakeCmd.AddCommand(intakeSubmitCmd)
	intakeCmd.AddCommand(intakeListCmd)
	intakeCmd.AddCommand(intakeShowCmd)
	intakeCmd.AddCommand(intakeReissueCmd)
	intakeCmd.AddCommand(intakeDeleteCmd)
	return intakeCmd
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
