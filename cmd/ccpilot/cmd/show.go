package cmd

import (
	"context"
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"ccpilot/internal/core"
)

var showCmd = &cobra.Command{
	Use:   "show <kind> <name>",
	Short: "Show an entity's content",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		kind, err := parseKind(args[0])
		if err != nil {
			return err
		}
		view, err := findView(context.Background(), app, kind, args[1])
		if err != nil {
			return err
		}

		def := view.Authoring
		if def == nil {
			if len(view.Definitions) == 0 {
				return fmt.Errorf("%s %q: %w", kind, args[1], core.ErrNotFound)
			}
			def = &view.Definitions[0]
		}
		if def.Err != nil {
			return def.Err
		}

		raw, _ := cmd.Flags().GetBool("raw")
		if raw {
			fmt.Print(def.Content)
			return nil
		}

		out, err := glamour.Render(def.Content, "auto")
		if err != nil {
			fmt.Print(def.Content)
			return nil
		}
		fmt.Print(out)
		return nil
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm <kind> <name>",
	Short: "Delete an entity's backing file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		kind, err := parseKind(args[0])
		if err != nil {
			return err
		}
		name := args[1]

		if kind == core.KindMCP {
			if err := app.writer.DeleteMCPServer(name); err != nil {
				return err
			}
			fmt.Printf("Removed mcp server %q\n", name)
			return nil
		}

		view, err := findView(context.Background(), app, kind, name)
		if err != nil {
			return err
		}
		if view.Authoring == nil {
			return fmt.Errorf("%s %q is plugin-provided: %w", kind, name, core.ErrNotControllable)
		}
		def := view.Authoring
		if err := app.writer.DeleteEntity(kind, def.Scope, def.ProjectPath, name); err != nil {
			return err
		}
		fmt.Printf("Removed %s %q\n", kind, name)
		return nil
	},
}

func init() {
	showCmd.Flags().Bool("raw", false, "Print raw content without rendering")
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(rmCmd)
}
