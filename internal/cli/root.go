package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/config"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/logging"
)

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// logger is the package-level logger for CLI operations.
var logger zerolog.Logger //nolint:gochecknoglobals // Required for zerolog context integration

// NewRootCmd creates the root command for the footprint CLI.
func NewRootCmd(ver string) *cobra.Command {
	var logResult *logging.LogPathResult

	cmd := &cobra.Command{
		Use:           "footprint",
		Short:         "Track and reduce the carbon footprint of your travel",
		Long:          "footprint estimates trip emissions, forecasts future travel emissions and recommends ways to cut them.",
		Version:       ver,
		Example:       rootCmdExample,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if overlay, _ := cmd.Flags().GetString("config"); overlay != "" {
				if err := config.ShallowMergeYAML(config.GetGlobalConfig(), overlay); err != nil {
					return fmt.Errorf("loading --config overlay: %w", err)
				}
			}
			if storePath, _ := cmd.Flags().GetString("store"); storePath != "" {
				cfg := config.GetGlobalConfig()
				cfg.Storage.Driver = config.DriverFile
				cfg.Storage.Path = storePath
			}

			result := setupLogging(cmd)
			logResult = &result
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return cleanupLogging(cmd, logResult)
		},
	}

	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.PersistentFlags().String("config", "", "YAML file overlaid on the user configuration")
	cmd.PersistentFlags().String("store", "", "path of a JSON file store (overrides storage settings)")
	cmd.PersistentFlags().StringP("output", "o", "", "output format: table, json, ndjson (default from config)")

	cmd.AddCommand(
		NewCalcCmd(),
		NewTripCmd(),
		NewRouteCmd(),
		NewRecommendCmd(),
		NewPredictCmd(),
		NewGoalCmd(),
		NewProgressCmd(),
		NewServeCmd(),
		newConfigCmd(),
	)
	return cmd
}

const rootCmdExample = `  # Estimate a 12 mile drive in a 30 mpg car
  footprint calc fuel --mode gasoline_car --miles 12

  # Log a bus trip
  footprint trip log --user alice --category public_transport --mode bus --miles 8

  # Log a commute route and forecast the next one
  footprint route log --user alice --mode gasoline_car --miles 18
  footprint predict --user alice

  # Generate, refine and store recommendations
  footprint recommend --user alice

  # Browse recommendations interactively and accept or reject them
  footprint recommend --user alice --interactive

  # Set a 20% reduction goal and track it
  footprint goal set --user alice --target 20
  footprint progress --user alice

  # Serve the HTTP API
  footprint serve --addr :8080`

// newConfigCmd creates the config command group.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Configuration management commands"}
	cmd.AddCommand(
		NewConfigInitCmd(), NewConfigSetCmd(), NewConfigGetCmd(),
		NewConfigListCmd(), NewConfigValidateCmd(), NewConfigPathCmd(),
	)
	return cmd
}
