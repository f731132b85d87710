package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"ccpilot/internal/core"
)

var enableCmd = &cobra.Command{
	Use:   "enable <kind> <name>",
	Short: "Enable a command, agent, skill, memory file, MCP server or plugin",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runToggle(cmd, args, false)
	},
}

var disableCmd = &cobra.Command{
	Use:   "disable <kind> <name>",
	Short: "Disable a command, agent, skill, memory file, MCP server or plugin",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runToggle(cmd, args, true)
	},
}

func runToggle(cmd *cobra.Command, args []string, disable bool) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	kind, err := parseKind(args[0])
	if err != nil {
		return err
	}
	name := args[1]
	ctx := context.Background()

	switch kind {
	case core.KindPlugin:
		plugin, err := findPlugin(app, name)
		if err != nil {
			return err
		}
		if err := app.toggler.SetPluginEnabled(plugin, !disable); err != nil {
			return err
		}
	case core.KindMCP:
		server, err := findMCPServer(ctx, app, name)
		if err != nil {
			return err
		}
		if err := app.toggler.SetMCPServerDisabled(server, app.project, disable); err != nil {
			return err
		}
	default:
		view, err := findView(ctx, app, kind, name)
		if err != nil {
			return err
		}
		if view.Authoring == nil {
			return fmt.Errorf("%s %q is plugin-provided: %w", kind, name, core.ErrNotControllable)
		}
		if err := app.toggler.SetDisabled(*view.Authoring, disable); err != nil {
			return err
		}
	}

	verb := "Enabled"
	if disable {
		verb = "Disabled"
	}
	fmt.Printf("%s %s %q\n", verb, kind, name)
	return nil
}

// findView locates one effective view by name.
func findView(ctx context.Context, app *app, kind core.Kind, name string) (core.EffectiveView, error) {
	views, err := scanViews(ctx, app, kind)
	if err != nil {
		return core.EffectiveView{}, err
	}
	for _, v := range views {
		if v.Name == name {
			return v, nil
		}
	}
	return core.EffectiveView{}, fmt.Errorf("%s %q: %w", kind, name, core.ErrNotFound)
}

// findPlugin locates the named install visible from this project, preferring
// a local install over a user one since its enablement is project-specific.
func findPlugin(app *app, name string) (core.PluginInfo, error) {
	plugins, err := app.scanner.ListPlugins(app.project)
	if err != nil {
		return core.PluginInfo{}, err
	}
	var fallback *core.PluginInfo
	for i, p := range plugins {
		if p.Name != name {
			continue
		}
		if p.Scope == core.ScopePluginLocal {
			return p, nil
		}
		if fallback == nil {
			fallback = &plugins[i]
		}
	}
	if fallback != nil {
		return *fallback, nil
	}
	return core.PluginInfo{}, fmt.Errorf("plugin %q: %w", name, core.ErrNotFound)
}

// findMCPServer picks the named server, preferring a controllable definition
// over a plugin-shipped one.
func findMCPServer(ctx context.Context, app *app, name string) (core.MCPServerInfo, error) {
	servers, err := app.scanner.ScanMCPServers(ctx, app.project)
	if err != nil {
		return core.MCPServerInfo{}, err
	}
	var fallback *core.MCPServerInfo
	for i, s := range servers {
		if s.Name != name {
			continue
		}
		if s.Controllable {
			return s, nil
		}
		if fallback == nil {
			fallback = &servers[i]
		}
	}
	if fallback != nil {
		return *fallback, nil
	}
	return core.MCPServerInfo{}, fmt.Errorf("mcp server %q: %w", name, core.ErrNotFound)
}

func init() {
	rootCmd.AddCommand(enableCmd)
	rootCmd.AddCommand(disableCmd)
}
