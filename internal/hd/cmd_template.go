// ABOUTME: Template commands — import YAML definitions, list them, and expand one onto a ticket.
// ABOUTME: Implements `hd template import/list/apply`.

package hd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var templateImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a template from a YAML file",
}

var templateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List templates",
}

var templateApplyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Instantiate a template's items as tasks on a ticket",
}

func init() {
	templateCmd.AddCommand(templateImportCmd)
	templateCmd.AddCommand(templateListCmd)
	templateCmd.AddCommand(templateApplyCmd)

	templateImportCmd.Args = cobra.ExactArgs(1)
	templateApplyCmd.Args = cobra.ExactArgs(2)

	templateImportCmd.RunE = runTemplateImport
	templateListCmd.RunE = runTemplateList
	templateApplyCmd.RunE = runTemplateApply
}

func runTemplateImport(cmd *cobra.Command, args []string) error {
	file, err := LoadTemplateFile(args[0])
	if err != nil {
		return err
	}

	engine, _, err := openEngine()
	if err != nil {
		return err
	}

	tpl, err := engine.SaveTemplate(file)
	if err != nil {
		return err
	}

	if jsonOutput {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(tpl)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported template %s: %s (%d items)\n", tpl.ID, tpl.Name, len(tpl.Items))
	return nil
}

func runTemplateList(cmd *cobra.Command, args []string) error {
	engine, _, err := openEngine()
	if err != nil {
		return err
	}

	templates, err := engine.ListTemplates()
	if err != nil {
		return err
	}

	if jsonOutput {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(templates)
	}
	for _, tpl := range templates {
		state := "active"
		if !tpl.Active {
			state = "inactive"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s  [%s]  %s\n", tpl.ID, state, tpl.Name)
	}
	return nil
}

func runTemplateApply(cmd *cobra.Command, args []string) error {
	engine, cfg, err := openEngine()
	if err != nil {
		return err
	}

	tasks, _, err := engine.ApplyTemplate(args[0], args[1], cfg.Actor)
	if err != nil {
		return err
	}

	if jsonOutput {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(tasks)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created %d task(s) on %s\n", len(tasks), args[0])
	for _, task := range tasks {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s: %s\n", task.ID, task.Title)
	}
	return nil
}
