package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aioracle/aioracle/internal/app"
)

func newHistoryCmd(root *rootOptions) *cobra.Command {
	var (
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded predictions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 1 {
				return fmt.Errorf("--limit must be positive")
			}

			a, err := buildApp(cmd, root, app.Options{})
			if err != nil {
				return err
			}
			defer a.Close()

			records, err := a.Predictions.History(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), records)
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No predictions recorded yet. Run `oracle predict`.")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "TIMESTAMP\tAGI\tAGI CONF\tASI\tSINGULARITY\tSING CONF")
			for _, r := range records {
				fmt.Fprintf(tw, "%s\t%s\t%.1f%%\t%s\t%s\t%.1f%%\n",
					r.Timestamp, r.AGIDate, r.AGIProb, r.ASIDate, r.SingularityDate, r.SingularityProb)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of predictions to show")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print history as JSON")
	return cmd
}
