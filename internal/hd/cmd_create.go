// ABOUTME: Create command — adds a task to a ticket's checklist.
// ABOUTME: Implements `hd create --ticket <id> <title>` with optional assignee, due date, and dependency flags.

package hd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	createTicketID  string
	createAssignee  string
	createTeam      string
	createDue       string
	createDependsOn string
)

func init() {
	createCmd.Flags().StringVar(&createTicketID, "ticket", "", "Ticket ID (required)")
	createCmd.Flags().StringVar(&createAssignee, "assignee", "", "Individual owner")
	createCmd.Flags().StringVar(&createTeam, "team", "", "Owning team")
	createCmd.Flags().StringVar(&createDue, "due", "", "Due date (RFC 3339 or YYYY-MM-DD)")
	createCmd.Flags().StringVar(&createDependsOn, "depends-on", "", "Predecessor task ID")

	createCmd.Args = cobra.ExactArgs(1)
	createCmd.RunE = runCreate
}

func parseDue(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, fmt.Errorf("invalid due date %q (want RFC 3339 or YYYY-MM-DD)", value)
	}
	return &t, nil
}

func runCreate(cmd *cobra.Command, args []string) error {
	if createTicketID == "" {
		return fmt.Errorf("--ticket is required")
	}
	due, err := parseDue(createDue)
	if err != nil {
		return err
	}

	engine, cfg, err := openEngine()
	if err != nil {
		return err
	}

	task, _, err := engine.CreateTask(createTicketID, args[0], cfg.Actor, CreateOptions{
		Assignee:        createAssignee,
		OwningTeam:      createTeam,
		DueAt:           due,
		DependsOnTaskID: createDependsOn,
	})
	if err != nil {
		return err
	}

	if jsonOutput {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(task)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s: %s\n", task.ID, task.Title)
	return nil
}
