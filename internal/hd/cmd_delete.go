// ABOUTME: Delete command — soft-deletes a task and clears dependents' edges.
// ABOUTME: Implements `hd delete <taskID>`.

package hd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	deleteCmd.Args = cobra.ExactArgs(1)
	deleteCmd.RunE = runDelete
}

func runDelete(cmd *cobra.Command, args []string) error {
	engine, cfg, err := openEngine()
	if err != nil {
		return err
	}

	events, err := engine.DeleteTask(args[0], cfg.Actor)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
	for _, evt := range events {
		if evt.Type == EventTaskUnblocked {
			fmt.Fprintf(cmd.OutOrStdout(), "Unblocked %s: %s\n", evt.TaskID, evt.Task.Title)
		}
	}
	return nil
}
