package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/flowboard/internal/ports/primary"
)

var itemCmd = &cobra.Command{
	Use:   "item",
	Short: "Manage workflow items",
	Long:  "List, inspect, and move work items through the pipeline",
}

var itemListCmd = &cobra.Command{
	Use:   "list",
	Short: "List workflow items",
	RunE: func(cmd *cobra.Command, args []string) error {
		status, _ := cmd.Flags().GetString("status")
		reviewStatus, _ := cmd.Flags().GetString("review")
		limit, _ := cmd.Flags().GetInt("limit")

		container, err := newContainer()
		if err != nil {
			return err
		}
		defer func() { _ = container.Close() }()

		items, err := container.Items.ListWorkflowItems(actorContext(), primary.WorkflowItemFilters{
			Status:       status,
			ReviewStatus: reviewStatus,
			Limit:        limit,
		})
		if err != nil {
			return fmt.Errorf("failed to list items: %w", err)
		}
		if len(items) == 0 {
			fmt.Println("No workflow items found")
			return nil
		}

		fmt.Println(headerStyle.Render(fmt.Sprintf("%-8s %-7s %-36s %-22s %s", "ID", "ISSUE", "TITLE", "STATUS", "REVIEW")))
		for _, item := range items {
			issue := ""
			if item.IssueNumber > 0 {
				issue = fmt.Sprintf("#%d", item.IssueNumber)
			}
			fmt.Printf("%-8s %-7s %-36s %-22s %s\n",
				item.ID,
				issue,
				truncate(item.IssueTitle, 36),
				statusStyle(item.Status).Render(item.Status),
				mutedStyle.Render(item.ReviewStatus),
			)
		}
		return nil
	},
}

var itemShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show a workflow item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		container, err := newContainer()
		if err != nil {
			return err
		}
		defer func() { _ = container.Close() }()

		item, err := container.Items.GetWorkflowItem(actorContext(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("%s: %s\n", item.ID, item.IssueTitle)
		fmt.Printf("  Type:    %s\n", item.Type)
		fmt.Printf("  Status:  %s\n", item.Status)
		if item.ReviewStatus != "" {
			fmt.Printf("  Review:  %s\n", item.ReviewStatus)
		}
		if item.IssueURL != "" {
			fmt.Printf("  Issue:   %s\n", item.IssueURL)
		}
		if item.SourceID != "" {
			fmt.Printf("  Source:  %s (%s)\n", item.SourceID, item.SourceType)
		}
		fmt.Printf("  Updated: %s\n", item.UpdatedAt)
		return nil
	},
}

var itemStatusCmd = &cobra.Command{
	Use:   "status [id] [status]",
	Short: "Move a workflow item to a new phase",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		container, err := newContainer()
		if err != nil {
			return err
		}
		defer func() { _ = container.Close() }()

		resp, err := container.Items.UpdateStatus(actorContext(), primary.UpdateStatusRequest{
			ItemID: args[0],
			Status: args[1],
		})
		if err != nil {
			return fmt.Errorf("failed to update status: %w", err)
		}

		fmt.Printf("✓ %s is now %s\n", resp.Item.ID, resp.Item.Status)
		if resp.MirrorOnly {
			fmt.Println(mutedStyle.Render("  (mirror only: not a routable board destination)"))
		}
		return nil
	},
}

var itemDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a workflow item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		container, err := newContainer()
		if err != nil {
			return err
		}
		defer func() { _ = container.Close() }()

		if err := container.Items.DeleteWorkflowItem(actorContext(), args[0]); err != nil {
			return err
		}
		fmt.Printf("✓ Deleted %s\n", args[0])
		return nil
	},
}

// ItemCmd returns the item command with subcommands.
func ItemCmd() *cobra.Command {
	itemListCmd.Flags().String("status", "", "Filter by phase")
	itemListCmd.Flags().String("review", "", "Filter by review gate")
	itemListCmd.Flags().Int("limit", 0, "Maximum rows")

	itemCmd.AddCommand(itemListCmd)
	itemCmd.AddCommand(itemShowCmd)
	itemCmd.AddCommand(itemStatusCmd)
	itemCmd.AddCommand(itemDeleteCmd)
	return itemCmd
}
