// ABOUTME: Root command and subcommand registration for the hd CLI.
// ABOUTME: Wires persistent flags and the shared engine-opening helper used by every command.

package hd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	jsonOutput bool
	hdDirFlag  string
)

var rootCmd = &cobra.Command{
	Use:   "hd",
	Short: "Helpdesk ticket task CLI",
	Long:  "hd manages ticket checklists: tasks, dependencies, and templates.",
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&hdDirFlag, "dir", "", "Override .hd/ directory location")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(ticketCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(completeCmd)
	rootCmd.AddCommand(reopenCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(closeAllCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(reorderCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(templateCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(memberCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new task database",
}

var ticketCmd = &cobra.Command{
	Use:   "ticket",
	Short: "Manage tickets",
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new task on a ticket",
}

var completeCmd = &cobra.Command{
	Use:   "complete",
	Short: "Complete a task",
}

var reopenCmd = &cobra.Command{
	Use:   "reopen",
	Short: "Reopen a completed task",
}

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete a task",
}

var closeAllCmd = &cobra.Command{
	Use:   "close-all",
	Short: "Complete every open task on a ticket",
}

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update task fields",
}

var reorderCmd = &cobra.Command{
	Use:   "reorder",
	Short: "Reorder a ticket's tasks",
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show task details",
}

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Manage task templates",
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show task counts for a ticket",
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export tasks as JSONL",
}

var memberCmd = &cobra.Command{
	Use:   "member",
	Short: "Manage team memberships",
}

// openEngine resolves config and opens the database for a command run.
func openEngine() (*Engine, *Config, error) {
	cfg, err := loadConfig(hdDirFlag)
	if err != nil {
		return nil, nil, err
	}
	engine, err := Open(cfg.Dir)
	if err != nil {
		return nil, nil, err
	}
	return engine, cfg, nil
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
