package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aioracle/aioracle/internal/app"
	"github.com/aioracle/aioracle/internal/models"
	"github.com/aioracle/aioracle/internal/progress"
)

func newPredictCmd(root *rootOptions) *cobra.Command {
	var (
		force  bool
		noSave bool
		asJSON bool
		quiet  bool
	)

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Fetch forecasts and generate a consensus prediction",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(cmd, root, app.Options{NoSave: noSave})
			if err != nil {
				return err
			}
			defer a.Close()

			var reporter progress.Reporter = progress.NewLineReporter(io.Discard)
			if !quiet && !asJSON {
				reporter = progress.NewReporter()
			}

			record, err := a.Tracker.Execute(cmd.Context(), force, progress.Handlers(reporter))
			reporter.Finish()
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), record)
			}
			printPrediction(cmd.OutOrStdout(), record.Prediction)
			if record.ID != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "\nSaved as %s\n", record.ID)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "bypass the forecast cache")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not record the prediction in history")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the prediction as JSON")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "hide progress output")
	return cmd
}

func printPrediction(w io.Writer, p models.Prediction) {
	fmt.Fprintf(w, "AI milestone forecast (%s UTC)\n\n", p.Timestamp)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "  AGI\t%s\t%s\tconfidence %.1f%%\n", p.AGIDate, p.AGIType, p.AGIProb)
	fmt.Fprintf(tw, "  ASI\t%s\t%s\t\n", p.ASIDate, p.ASIContext)
	fmt.Fprintf(tw, "  Singularity\t%s\t\tconfidence %.1f%%\n", p.SingularityDate, p.SingularityProb)
	tw.Flush()
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
