// ABOUTME: List and show commands — read-side projections over the task store.
// ABOUTME: Implements `hd list` with view/search/sort flags and `hd show <taskID>`.

package hd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	listTicketID string
	listView     string
	listUser     string
	listSearch   string
	listAll      bool
	listSort     string
	listDesc     bool
)

func init() {
	listCmd.Flags().StringVar(&listTicketID, "ticket", "", "Limit to one ticket")
	listCmd.Flags().StringVar(&listView, "view", string(ViewAllTasks), "View (mine, team, unassigned, created-by-me, overdue, all)")
	listCmd.Flags().StringVar(&listUser, "user", "", "User for ownership views (defaults to the acting user)")
	listCmd.Flags().StringVar(&listSearch, "search", "", "Free-text title search")
	listCmd.Flags().BoolVar(&listAll, "all", false, "Include completed tasks")
	listCmd.Flags().StringVar(&listSort, "sort", "", "Sort field (due, created, order, title)")
	listCmd.Flags().BoolVar(&listDesc, "desc", false, "Sort descending")

	listCmd.RunE = runList
	showCmd.Args = cobra.ExactArgs(1)
	showCmd.RunE = runShow
}

func runList(cmd *cobra.Command, args []string) error {
	engine, cfg, err := openEngine()
	if err != nil {
		return err
	}

	user := listUser
	if user == "" {
		user = cfg.Actor
	}

	items, err := engine.ListTasks(TaskQuery{
		TicketID:      listTicketID,
		View:          View(listView),
		UserID:        user,
		Search:        listSearch,
		IncludeClosed: listAll,
		SortField:     listSort,
		SortDesc:      listDesc,
	})
	if err != nil {
		return err
	}

	if jsonOutput {
		if items == nil {
			items = []TaskListItem{}
		}
		return json.NewEncoder(cmd.OutOrStdout()).Encode(items)
	}

	w := cmd.OutOrStdout()
	for _, item := range items {
		marker := " "
		if item.Status == StatusClosed {
			marker = "x"
		} else if item.Blocked {
			marker = "!"
		}
		due := ""
		if item.DueAt != nil {
			due = " due " + item.DueAt.Format("2006-01-02")
		}
		fmt.Fprintf(w, "[%s] %s %s%s\n", marker, item.ID, strings.TrimSpace(item.Title), due)
	}
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	engine, _, err := openEngine()
	if err != nil {
		return err
	}

	detail, err := engine.GetTask(args[0])
	if err != nil {
		return err
	}

	if jsonOutput {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(detail)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "id:          %s\n", detail.ID)
	fmt.Fprintf(w, "ticket:      %s\n", detail.TicketID)
	fmt.Fprintf(w, "title:       %s\n", detail.Title)
	fmt.Fprintf(w, "status:      %s\n", string(detail.Status))
	fmt.Fprintf(w, "blocked:     %t\n", detail.Blocked)
	fmt.Fprintf(w, "sort_order:  %d\n", detail.SortOrder)
	fmt.Fprintf(w, "assignee:    %s\n", detail.Assignee)
	fmt.Fprintf(w, "team:        %s\n", detail.OwningTeam)
	if detail.DueAt != nil {
		fmt.Fprintf(w, "due_at:      %s\n", detail.DueAt.Format("2006-01-02T15:04:05Z07:00"))
	}
	if detail.DependsOnTaskID != nil {
		fmt.Fprintf(w, "depends_on:  %s\n", *detail.DependsOnTaskID)
	}
	fmt.Fprintf(w, "dependents:  %s\n", strings.Join(detail.Dependents, " "))
	fmt.Fprintf(w, "created_at:  %s\n", detail.CreatedAt.Format("2006-01-02T15:04:05Z07:00"))
	return nil
}
