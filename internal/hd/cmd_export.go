// ABOUTME: Export command — dumps a ticket's tasks as JSONL for downstream tooling.
// ABOUTME: Implements `hd export --ticket <id>`; one task per line, blocked flag included.

package hd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var exportTicketID string

func init() {
	exportCmd.Flags().StringVar(&exportTicketID, "ticket", "", "Ticket ID (required)")
	exportCmd.RunE = runExport
}

func runExport(cmd *cobra.Command, args []string) error {
	if exportTicketID == "" {
		return fmt.Errorf("--ticket is required")
	}

	engine, _, err := openEngine()
	if err != nil {
		return err
	}

	items, err := engine.ListTasks(TaskQuery{
		TicketID:      exportTicketID,
		View:          ViewAllTasks,
		IncludeClosed: true,
		SortField:     SortByOrder,
	})
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	for _, item := range items {
		if err := encoder.Encode(item); err != nil {
			return err
		}
	}
	return nil
}
