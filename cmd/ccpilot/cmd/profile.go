package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage stored settings profiles",
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		profiles, err := app.store.List()
		if err != nil {
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(profiles)
		}
		if len(profiles) == 0 {
			fmt.Println("No profiles. Create one with 'ccpilot profile create'.")
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tCREATED\tACTIVE")
		for _, p := range profiles {
			active := ""
			if p.Using {
				active = "*"
			}
			created := time.UnixMilli(p.CreatedAt).Format("2006-01-02")
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.ID, p.Title, created, active)
		}
		return w.Flush()
	},
}

var profileShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a profile's settings",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		profile, err := app.store.Get(args[0])
		if err != nil {
			return err
		}
		return printJSON(profile)
	},
}

var profileCreateCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create a profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		settings, err := settingsFlag(cmd)
		if err != nil {
			return err
		}
		id, _ := cmd.Flags().GetString("id")
		profile, err := app.store.Create(id, args[0], settings)
		if err != nil {
			return err
		}
		fmt.Printf("Created profile %q (%s)\n", profile.Title, profile.ID)
		return nil
	},
}

var profileUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a profile's title or settings",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		settings, err := settingsFlag(cmd)
		if err != nil {
			return err
		}
		title, _ := cmd.Flags().GetString("title")
		profile, err := app.store.Update(args[0], title, settings)
		if err != nil {
			return err
		}
		fmt.Printf("Updated profile %q (%s)\n", profile.Title, profile.ID)
		return nil
	},
}

var profileDuplicateCmd = &cobra.Command{
	Use:   "duplicate <id>",
	Short: "Duplicate a profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		title, _ := cmd.Flags().GetString("title")
		dup, err := app.store.Duplicate(args[0], title)
		if err != nil {
			return err
		}
		fmt.Printf("Created profile %q (%s)\n", dup.Title, dup.ID)
		return nil
	},
}

var profileDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a profile, restoring the original settings if it is active",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		if err := app.switcher.DeleteProfile(args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted profile %s\n", args[0])
		return nil
	},
}

var profileUseCmd = &cobra.Command{
	Use:   "use <id>",
	Short: "Activate a profile, backing up the original settings first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		if err := app.switcher.Activate(args[0]); err != nil {
			return err
		}
		profile, err := app.store.Get(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Now using profile %q (%s)\n", profile.Title, profile.ID)
		return nil
	},
}

var profileRestoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Restore the original settings from the backup",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		if err := app.switcher.RestoreOriginal(); err != nil {
			return err
		}
		fmt.Println("Restored original settings")
		return nil
	},
}

var profileCurrentCmd = &cobra.Command{
	Use:   "current",
	Short: "Show which profile is active",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		status, err := app.switcher.Status()
		if err != nil {
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(status)
		}
		if status.Profile != nil {
			fmt.Printf("Using profile %q (%s)\n", status.Profile.Title, status.Profile.ID)
		} else {
			fmt.Println("Using original settings")
		}
		return nil
	},
}

// settingsFlag reads --settings or --settings-file into a raw JSON document.
func settingsFlag(cmd *cobra.Command) (json.RawMessage, error) {
	if inline, _ := cmd.Flags().GetString("settings"); inline != "" {
		return json.RawMessage(inline), nil
	}
	if file, _ := cmd.Flags().GetString("settings-file"); file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("reading settings file: %w", err)
		}
		return json.RawMessage(data), nil
	}
	return nil, nil
}

func init() {
	profileListCmd.Flags().Bool("json", false, "Output as JSON")
	profileCurrentCmd.Flags().Bool("json", false, "Output as JSON")
	for _, c := range []*cobra.Command{profileCreateCmd, profileUpdateCmd} {
		c.Flags().String("settings", "", "Settings as an inline JSON object")
		c.Flags().String("settings-file", "", "Read settings from a JSON file")
	}
	profileCreateCmd.Flags().String("id", "", "Explicit profile id (generated when empty)")
	profileUpdateCmd.Flags().String("title", "", "New title")
	profileDuplicateCmd.Flags().String("title", "", "Title for the copy")

	profileCmd.AddCommand(profileListCmd, profileShowCmd, profileCreateCmd,
		profileUpdateCmd, profileDuplicateCmd, profileDeleteCmd,
		profileUseCmd, profileRestoreCmd, profileCurrentCmd)
	rootCmd.AddCommand(profileCmd)
}
