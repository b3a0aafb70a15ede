// ABOUTME: Init command — creates the .hd directory and an empty task database.
// ABOUTME: Implements `hd init` in the current (or --dir) directory.

package hd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	initCmd.RunE = runInit
}

func runInit(cmd *cobra.Command, args []string) error {
	path := hdDirFlag
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		path = wd
	}

	if err := Init(path); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Initialized task database in %s/%s\n", path, hdDirName)
	return nil
}
