// ABOUTME: Complete, reopen, and close-all commands — status transitions for tasks.
// ABOUTME: Prints any dependents that a completion unblocked.

package hd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	completeCmd.Args = cobra.ExactArgs(1)
	reopenCmd.Args = cobra.ExactArgs(1)
	closeAllCmd.Args = cobra.ExactArgs(1)

	completeCmd.RunE = runComplete
	reopenCmd.RunE = runReopen
	closeAllCmd.RunE = runCloseAll
}

func runComplete(cmd *cobra.Command, args []string) error {
	engine, cfg, err := openEngine()
	if err != nil {
		return err
	}

	task, events, err := engine.CompleteTask(args[0], cfg.Actor)
	if err != nil {
		return err
	}

	if jsonOutput {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(task)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Completed %s\n", task.ID)
	for _, evt := range events {
		if evt.Type == EventTaskUnblocked {
			fmt.Fprintf(cmd.OutOrStdout(), "Unblocked %s: %s\n", evt.TaskID, evt.Task.Title)
		}
	}
	return nil
}

func runReopen(cmd *cobra.Command, args []string) error {
	engine, cfg, err := openEngine()
	if err != nil {
		return err
	}

	task, _, err := engine.ReopenTask(args[0], cfg.Actor)
	if err != nil {
		return err
	}

	if jsonOutput {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(task)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Reopened %s\n", task.ID)
	return nil
}

func runCloseAll(cmd *cobra.Command, args []string) error {
	engine, cfg, err := openEngine()
	if err != nil {
		return err
	}

	count, _, err := engine.BulkCloseTasks(args[0], cfg.Actor)
	if err != nil {
		return err
	}

	if jsonOutput {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]int{"closed": count})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Closed %d task(s) on %s\n", count, args[0])
	return nil
}
