// ABOUTME: Update command — merge-patches task fields with explicit clear flags.
// ABOUTME: Implements `hd update <taskID>`; clearing a field is always a separate flag, never an empty value.

package hd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	updateCmd.Flags().String("title", "", "New title")
	updateCmd.Flags().String("assignee", "", "Individual owner (team inferred from membership unless --team given)")
	updateCmd.Flags().String("team", "", "Owning team")
	updateCmd.Flags().Bool("unassign", false, "Clear both individual and team owners")
	updateCmd.Flags().Bool("clear-assignee", false, "Clear the individual owner only")
	updateCmd.Flags().String("due", "", "Due date (RFC 3339 or YYYY-MM-DD)")
	updateCmd.Flags().Bool("clear-due", false, "Clear the due date")
	updateCmd.Flags().String("depends-on", "", "Predecessor task ID")
	updateCmd.Flags().Bool("clear-depends-on", false, "Clear the predecessor")

	updateCmd.Args = cobra.ExactArgs(1)
	updateCmd.RunE = runUpdate
}

func runUpdate(cmd *cobra.Command, args []string) error {
	patch := TaskPatch{}
	changed := false

	if cmd.Flags().Changed("title") {
		val, _ := cmd.Flags().GetString("title")
		patch.Title = &val
		changed = true
	}
	if cmd.Flags().Changed("unassign") {
		patch.Unassign, _ = cmd.Flags().GetBool("unassign")
		changed = true
	}
	if cmd.Flags().Changed("clear-assignee") {
		patch.ClearAssignee, _ = cmd.Flags().GetBool("clear-assignee")
		changed = true
	}
	if cmd.Flags().Changed("assignee") {
		val, _ := cmd.Flags().GetString("assignee")
		patch.Assignee = &val
		changed = true
	}
	if cmd.Flags().Changed("team") {
		val, _ := cmd.Flags().GetString("team")
		patch.OwningTeam = &val
		changed = true
	}
	if cmd.Flags().Changed("clear-due") {
		patch.ClearDue, _ = cmd.Flags().GetBool("clear-due")
		changed = true
	}
	if cmd.Flags().Changed("due") {
		val, _ := cmd.Flags().GetString("due")
		due, err := parseDue(val)
		if err != nil {
			return err
		}
		patch.DueAt = due
		changed = true
	}
	if cmd.Flags().Changed("clear-depends-on") {
		patch.ClearDependsOn, _ = cmd.Flags().GetBool("clear-depends-on")
		changed = true
	}
	if cmd.Flags().Changed("depends-on") {
		val, _ := cmd.Flags().GetString("depends-on")
		patch.DependsOnTaskID = &val
		changed = true
	}

	if !changed {
		return fmt.Errorf("no fields to update")
	}

	engine, cfg, err := openEngine()
	if err != nil {
		return err
	}

	task, _, err := engine.UpdateTask(args[0], patch, cfg.Actor)
	if err != nil {
		return err
	}

	if jsonOutput {
		out, err := json.MarshalIndent(task, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", task.ID)
	return nil
}
