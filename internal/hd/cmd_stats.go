// ABOUTME: Stats command — per-ticket status counts with the derived blocked count.
// ABOUTME: Implements `hd stats <ticketID>` in compact text or JSON.

package hd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	statsCmd.Args = cobra.ExactArgs(1)
	statsCmd.RunE = runStats
}

func runStats(cmd *cobra.Command, args []string) error {
	engine, _, err := openEngine()
	if err != nil {
		return err
	}

	stats, err := engine.Stats(args[0])
	if err != nil {
		return err
	}

	if jsonOutput {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(stats)
	}
	fmt.Fprintf(
		cmd.OutOrStdout(),
		"Open: %d | Blocked: %d | Closed: %d | Total: %d\n",
		stats.Open,
		stats.Blocked,
		stats.Closed,
		stats.Total,
	)
	return nil
}
