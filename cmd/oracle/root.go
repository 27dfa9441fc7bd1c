package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/aioracle/aioracle/internal/app"
	"github.com/aioracle/aioracle/internal/config"
	"github.com/aioracle/aioracle/internal/logging"
)

type rootOptions struct {
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "oracle",
		Short: "Consensus forecasts for AGI, ASI and the singularity",
		Long: `oracle polls public forecasting platforms (Metaculus, Polymarket,
Manifold), aggregates their AI milestone forecasts into a consensus timeline
and keeps a local history of every prediction it makes.

Sources, cache and storage are configured through environment variables;
see SOURCES, DATABASE_DRIVER and DATABASE_PATH.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose logging")

	root.AddCommand(
		newPredictCmd(opts),
		newHistoryCmd(opts),
		newAnalyzeCmd(opts),
		newVersionCmd(),
	)
	return root
}

// buildApp loads configuration and wires the service with logs on stderr.
func buildApp(cmd *cobra.Command, opts *rootOptions, appOpts app.Options) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logCfg := config.LoggingConfig{Level: slog.LevelWarn, Format: "text"}
	if opts.verbose {
		logCfg.Level = slog.LevelDebug
	}
	logger, err := logging.NewWithWriter(logCfg, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	return app.Build(cmd.Context(), cfg, logger, appOpts)
}
