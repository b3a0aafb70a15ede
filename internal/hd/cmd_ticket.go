// ABOUTME: Ticket commands — minimal ticket records that scope task checklists.
// ABOUTME: Implements `hd ticket new <subject>` and `hd ticket list`.

package hd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var ticketNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a ticket",
}

var ticketListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tickets",
}

func init() {
	ticketCmd.AddCommand(ticketNewCmd)
	ticketCmd.AddCommand(ticketListCmd)

	ticketNewCmd.Args = cobra.ExactArgs(1)
	ticketNewCmd.RunE = runTicketNew
	ticketListCmd.RunE = runTicketList
}

func runTicketNew(cmd *cobra.Command, args []string) error {
	engine, cfg, err := openEngine()
	if err != nil {
		return err
	}

	ticket, err := engine.CreateTicket(args[0], cfg.Actor)
	if err != nil {
		return err
	}

	if jsonOutput {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(ticket)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created ticket %s: %s\n", ticket.ID, ticket.Subject)
	return nil
}

func runTicketList(cmd *cobra.Command, args []string) error {
	engine, _, err := openEngine()
	if err != nil {
		return err
	}

	var tickets []*Ticket
	if err := engine.DB().Order("created_at DESC").Find(&tickets).Error; err != nil {
		return err
	}

	if jsonOutput {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(tickets)
	}
	for _, ticket := range tickets {
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", ticket.ID, ticket.Subject)
	}
	return nil
}
