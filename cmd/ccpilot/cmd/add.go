package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"ccpilot/internal/core"
)

var addCmd = &cobra.Command{
	Use:   "add <kind> <name>",
	Short: "Create or overwrite a command, agent, skill or memory file",
	Long: `Reads the entity content from --file or stdin and writes it to the chosen
scope. Editing an entity that is currently disabled keeps it disabled.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		kind, err := parseKind(args[0])
		if err != nil {
			return err
		}
		switch kind {
		case core.KindCommand, core.KindAgent, core.KindSkill, core.KindMemory:
		default:
			return fmt.Errorf("cannot add %s entities", kind)
		}

		scope := core.ScopeUser
		project := ""
		if flag, _ := cmd.Flags().GetString("scope"); flag == "project" {
			scope = core.ScopeProject
			project = app.project
		}

		var content []byte
		if file, _ := cmd.Flags().GetString("file"); file != "" {
			content, err = os.ReadFile(file)
		} else {
			content, err = io.ReadAll(os.Stdin)
		}
		if err != nil {
			return fmt.Errorf("reading content: %w", err)
		}

		if err := app.writer.WriteEntity(kind, scope, project, args[1], string(content)); err != nil {
			return err
		}
		fmt.Printf("Wrote %s %q (%s scope)\n", kind, args[1], scope)
		return nil
	},
}

func init() {
	addCmd.Flags().String("file", "", "Read content from a file instead of stdin")
	addCmd.Flags().String("scope", "user", "Target scope: user or project")
	rootCmd.AddCommand(addCmd)
}
