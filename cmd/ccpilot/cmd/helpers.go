package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ccpilot/internal/core"
)

// app bundles the core components a subcommand needs.
type app struct {
	paths    *core.Paths
	scanner  *core.Scanner
	toggler  *core.Toggler
	writer   *core.Writer
	store    *core.ProfileStore
	switcher *core.Switcher
	project  string
}

// newApp wires the core against the real home directory and resolves the
// --project flag, falling back to the current directory.
func newApp(cmd *cobra.Command) (*app, error) {
	paths, err := core.NewPaths()
	if err != nil {
		return nil, fmt.Errorf("resolving home directory: %w", err)
	}

	project, _ := cmd.Flags().GetString("project")
	if project == "" {
		project, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting current directory: %w", err)
		}
	}

	toggler := core.NewToggler(paths)
	store := core.NewProfileStore(paths)
	return &app{
		paths:    paths,
		scanner:  core.NewScanner(paths),
		toggler:  toggler,
		writer:   core.NewWriter(paths, toggler),
		store:    store,
		switcher: core.NewSwitcher(paths, store),
		project:  project,
	}, nil
}

// parseKind maps a CLI argument to an entity kind.
func parseKind(arg string) (core.Kind, error) {
	switch arg {
	case "command", "commands":
		return core.KindCommand, nil
	case "agent", "agents":
		return core.KindAgent, nil
	case "skill", "skills":
		return core.KindSkill, nil
	case "memory":
		return core.KindMemory, nil
	case "mcp":
		return core.KindMCP, nil
	case "plugin", "plugins":
		return core.KindPlugin, nil
	}
	return "", fmt.Errorf("unknown kind %q (want command, agent, skill, memory, mcp or plugin)", arg)
}

// printJSON writes v as indented JSON to stdout.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// stateLabel renders an effective state for table output.
func stateLabel(state core.State) string {
	switch state {
	case core.StateEnabled:
		return "enabled"
	case core.StateRuntimeDisabled:
		return "runtime-disabled"
	default:
		return "disabled"
	}
}
