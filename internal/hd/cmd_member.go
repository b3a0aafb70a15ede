// ABOUTME: Member commands — maintain the team-membership table backing assignee inference.
// ABOUTME: Implements `hd member add <user> <team>` and `hd member list`.

package hd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/gorm/clause"
)

var memberAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a user to a team",
}

var memberListCmd = &cobra.Command{
	Use:   "list",
	Short: "List team memberships",
}

func init() {
	memberCmd.AddCommand(memberAddCmd)
	memberCmd.AddCommand(memberListCmd)

	memberAddCmd.Args = cobra.ExactArgs(2)
	memberAddCmd.RunE = runMemberAdd
	memberListCmd.RunE = runMemberList
}

func runMemberAdd(cmd *cobra.Command, args []string) error {
	engine, _, err := openEngine()
	if err != nil {
		return err
	}

	member := &TeamMember{UserID: args[0], TeamID: args[1]}
	if err := engine.DB().Clauses(clause.OnConflict{DoNothing: true}).Create(member).Error; err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Added %s to %s\n", member.UserID, member.TeamID)
	return nil
}

func runMemberList(cmd *cobra.Command, args []string) error {
	engine, _, err := openEngine()
	if err != nil {
		return err
	}

	var members []*TeamMember
	if err := engine.DB().Order("team_id, user_id").Find(&members).Error; err != nil {
		return err
	}

	if jsonOutput {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(members)
	}
	for _, member := range members {
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", member.TeamID, member.UserID)
	}
	return nil
}
