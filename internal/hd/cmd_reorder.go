// ABOUTME: Reorder command — reassigns the display ordering of a ticket's tasks.
// ABOUTME: Implements `hd reorder <ticketID> <taskID>...`; listed tasks get dense 1..N sort keys.

package hd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	reorderCmd.Args = cobra.MinimumNArgs(2)
	reorderCmd.RunE = runReorder
}

func runReorder(cmd *cobra.Command, args []string) error {
	engine, _, err := openEngine()
	if err != nil {
		return err
	}

	ticketID := args[0]
	if err := engine.ReorderTasks(ticketID, args[1:]); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Reordered %d task(s) on %s\n", len(args)-1, ticketID)
	return nil
}
