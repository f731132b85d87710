package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"ccpilot/internal/core"
)

var listCmd = &cobra.Command{
	Use:   "list <commands|agents|skills|memory|mcp|plugins|hooks>",
	Short: "List entities with their effective state across scopes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		asJSON, _ := cmd.Flags().GetBool("json")
		ctx := context.Background()

		switch args[0] {
		case "mcp":
			return listMCP(ctx, app, asJSON)
		case "plugins":
			return listPlugins(app, asJSON)
		case "hooks":
			return listHooks(ctx, app, asJSON)
		}

		kind, err := parseKind(args[0])
		if err != nil {
			return err
		}
		views, err := scanViews(ctx, app, kind)
		if err != nil {
			return err
		}
		if asJSON {
			return printJSON(views)
		}

		if len(views) == 0 {
			fmt.Printf("No %s found.\n", args[0])
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tSCOPE\tSTATE\tDESCRIPTION")
		for _, v := range views {
			scope := "-"
			desc := ""
			if v.Authoring != nil {
				scope = string(v.Authoring.Scope)
				desc = v.Authoring.Description
			} else if len(v.Definitions) > 0 {
				scope = string(v.Definitions[0].Scope)
				desc = v.Definitions[0].Description
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", v.Name, scope, stateLabel(v.State), desc)
		}
		return w.Flush()
	},
}

// scanViews runs the kind's scan and folds the definitions into views.
func scanViews(ctx context.Context, app *app, kind core.Kind) ([]core.EffectiveView, error) {
	var (
		defs []core.Definition
		err  error
	)
	switch kind {
	case core.KindCommand:
		defs, err = app.scanner.ScanCommands(ctx, app.project)
	case core.KindAgent:
		defs, err = app.scanner.ScanAgents(ctx, app.project)
	case core.KindSkill:
		defs, err = app.scanner.ScanSkills(ctx, app.project)
	case core.KindMemory:
		defs, err = app.scanner.ScanMemory(ctx, app.project)
	default:
		return nil, fmt.Errorf("cannot list %s here", kind)
	}
	if err != nil {
		return nil, err
	}
	return core.Resolve(defs), nil
}

func listMCP(ctx context.Context, app *app, asJSON bool) error {
	servers, err := app.scanner.ScanMCPServers(ctx, app.project)
	if err != nil {
		return err
	}
	if asJSON {
		return printJSON(servers)
	}
	if len(servers) == 0 {
		fmt.Println("No MCP servers found.")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSCOPE\tSOURCE\tSTATE")
	for _, s := range servers {
		if s.Err != nil {
			fmt.Fprintf(w, "-\t%s\t%s\terror: %v\n", s.Scope, s.Source, s.Err)
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.Name, s.Scope, s.Source, stateLabel(s.State))
	}
	return w.Flush()
}

func listPlugins(app *app, asJSON bool) error {
	plugins, err := app.scanner.ListPlugins(app.project)
	if err != nil {
		return err
	}
	if asJSON {
		return printJSON(plugins)
	}
	if len(plugins) == 0 {
		fmt.Println("No plugins installed.")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSCOPE\tVERSION\tENABLED\tPROVIDES")
	for _, p := range plugins {
		provides := ""
		sep := ""
		for _, pkg := range []struct {
			has  bool
			name string
		}{
			{p.Packages.HasCommands, "commands"},
			{p.Packages.HasAgents, "agents"},
			{p.Packages.HasSkills, "skills"},
			{p.Packages.HasMCP, "mcp"},
		} {
			if pkg.has {
				provides += sep + pkg.name
				sep = ","
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\n", p.Name, p.Scope, p.Version, p.Enabled, provides)
	}
	return w.Flush()
}

func listHooks(ctx context.Context, app *app, asJSON bool) error {
	entries, err := app.scanner.ScanHooks(ctx, app.project)
	if err != nil {
		return err
	}
	if asJSON {
		return printJSON(entries)
	}
	for _, e := range entries {
		switch {
		case e.Err != nil:
			fmt.Printf("%s (%s): error: %v\n", e.Path, e.Source, e.Err)
		case !e.Exists:
			fmt.Printf("%s (%s): no settings file\n", e.Path, e.Source)
		case e.Hooks == nil:
			fmt.Printf("%s (%s): no hooks\n", e.Path, e.Source)
		default:
			fmt.Printf("%s (%s):\n%s\n", e.Path, e.Source, e.Hooks)
		}
	}
	return nil
}

func init() {
	listCmd.Flags().Bool("json", false, "Output as JSON")
	rootCmd.AddCommand(listCmd)
}
