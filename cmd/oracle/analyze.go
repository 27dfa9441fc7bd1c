package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aioracle/aioracle/internal/app"
	"github.com/aioracle/aioracle/internal/models"
)

func newAnalyzeCmd(root *rootOptions) *cobra.Command {
	var (
		force  bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Show the prediction with per-milestone confidence metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(cmd, root, app.Options{NoSave: true})
			if err != nil {
				return err
			}
			defer a.Close()

			analysis, err := a.Engine.DetailedAnalysis(cmd.Context(), force)
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), analysis)
			}
			printAnalysis(cmd.OutOrStdout(), analysis)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "bypass the forecast cache")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the analysis as JSON")
	return cmd
}

func printAnalysis(w io.Writer, a models.Analysis) {
	printPrediction(w, a.Prediction)

	fmt.Fprintf(w, "\n%d forecasts from %s\n\n", a.TotalDataPoints, strings.Join(a.Sources, ", "))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  MILESTONE\tN\tMEAN\tMEDIAN\tSTDDEV\tSOURCES\tSCORE")
	rows := []struct {
		name string
		m    models.ConfidenceMetrics
	}{
		{"AGI", a.AGIMetrics},
		{"ASI", a.ASIMetrics},
		{"Singularity", a.SingularityMetrics},
	}
	for _, row := range rows {
		fmt.Fprintf(tw, "  %s\t%d\t%.1f\t%.1f\t%.1f\t%d\t%.1f\n",
			row.name, row.m.SampleSize, row.m.MeanYear, row.m.MedianYear, row.m.StdDeviation, row.m.SourceDiversity, row.m.ConfidenceScore)
	}
	tw.Flush()
}
