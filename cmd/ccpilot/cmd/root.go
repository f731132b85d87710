package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"ccpilot/internal/tui"
)

// Version info set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "ccpilot",
	Short: "Switch Claude Code profiles and manage commands, agents, skills and MCP servers",
	Long: `ccpilot manages Claude Code configuration: store alternative settings as
profiles and swap them in and out of ~/.claude/settings.json, and enable or
disable slash commands, subagents, skills, memory files and MCP servers
across user, project and plugin scopes.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		return tui.Run(tui.Deps{
			Paths:    app.paths,
			Scanner:  app.scanner,
			Toggler:  app.toggler,
			Store:    app.store,
			Switcher: app.switcher,
			Project:  app.project,
			Version:  Version,
		})
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("ccpilot %s (commit: %s, built: %s)\n", Version, Commit, Date)
	},
}

func init() {
	rootCmd.PersistentFlags().String("project", "", "Project directory (defaults to the current directory)")
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
