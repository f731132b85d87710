package cmd

import (
	"context"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"ccpilot/internal/core"
)

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Summarize token usage from session transcripts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		asJSON, _ := cmd.Flags().GetBool("json")

		records, err := app.scanner.ScanUsage(context.Background())
		if err != nil {
			return err
		}
		if asJSON {
			return printJSON(records)
		}
		if len(records) == 0 {
			fmt.Println("No usage recorded.")
			return nil
		}

		type bucket struct {
			turns int
			usage core.UsageTokens
		}
		byModel := map[string]*bucket{}
		for _, r := range records {
			model := r.Model
			if model == "" {
				model = "(unknown)"
			}
			b := byModel[model]
			if b == nil {
				b = &bucket{}
				byModel[model] = b
			}
			b.turns++
			b.usage.InputTokens += r.Usage.InputTokens
			b.usage.CacheReadInputTokens += r.Usage.CacheReadInputTokens
			b.usage.OutputTokens += r.Usage.OutputTokens
		}
		models := make([]string, 0, len(byModel))
		for m := range byModel {
			models = append(models, m)
		}
		sort.Strings(models)

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "MODEL\tTURNS\tINPUT\tCACHE READ\tOUTPUT")
		for _, m := range models {
			b := byModel[m]
			fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\n",
				m, b.turns, b.usage.InputTokens, b.usage.CacheReadInputTokens, b.usage.OutputTokens)
		}
		return w.Flush()
	},
}

func init() {
	usageCmd.Flags().Bool("json", false, "Output as JSON")
	rootCmd.AddCommand(usageCmd)
}
