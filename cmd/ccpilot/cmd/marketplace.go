package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"ccpilot/internal/core"
)

var marketplaceCmd = &cobra.Command{
	Use:   "marketplace",
	Short: "Inspect synced plugin marketplaces",
}

var marketplaceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List synced marketplaces",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		markets, err := app.scanner.KnownMarketplaces()
		if err != nil {
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(markets)
		}
		if len(markets) == 0 {
			fmt.Println("No marketplaces synced.")
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tREPO")
		for _, m := range markets {
			fmt.Fprintf(w, "%s\t%s\n", m.Name, m.Repo)
		}
		return w.Flush()
	},
}

var marketplaceMatchCmd = &cobra.Command{
	Use:   "match <link>",
	Short: "Resolve a repository link against the synced marketplaces",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		markets, err := app.scanner.KnownMarketplaces()
		if err != nil {
			return err
		}
		match, err := core.MatchMarketplace(args[0], markets)
		if err != nil {
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(match)
		}
		if match.Matched {
			fmt.Printf("%s -> marketplace %q\n", match.Ref, match.Marketplace)
		} else {
			fmt.Printf("%s is not a synced marketplace\n", match.Ref)
		}
		return nil
	},
}

func init() {
	marketplaceListCmd.Flags().Bool("json", false, "Output as JSON")
	marketplaceMatchCmd.Flags().Bool("json", false, "Output as JSON")
	marketplaceCmd.AddCommand(marketplaceListCmd, marketplaceMatchCmd)
	rootCmd.AddCommand(marketplaceCmd)
}
