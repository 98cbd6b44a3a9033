package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/config"
)

// NewConfigValidateCmd creates the config validate command.
func NewConfigValidateCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the effective configuration",
		Long: `Validates the configuration after the config file, --config overlay and
FOOTPRINT_* environment variables are applied.`,
		Example: `  footprint config validate
  footprint config validate --verbose`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigValidate(cmd, verbose)
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show detailed validation information")
	return cmd
}

func runConfigValidate(cmd *cobra.Command, verbose bool) error {
	cfg := config.GetGlobalConfig()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	cmd.Printf("✅ Configuration is valid\n")
	if verbose {
		printVerboseDetails(cmd, cfg)
	}
	return nil
}

func printVerboseDetails(cmd *cobra.Command, cfg *config.Config) {
	cmd.Println()
	cmd.Println("Configuration details:")
	cmd.Printf("  Output format: %s\n", cfg.Output.DefaultFormat)
	cmd.Printf("  Output precision: %d\n", cfg.Output.Precision)
	cmd.Printf("  Logging level: %s\n", cfg.Logging.Level)
	if cfg.Logging.File != "" {
		cmd.Printf("  Log file: %s\n", cfg.Logging.File)
	}
	cmd.Printf("  Storage driver: %s\n", cfg.Storage.Driver)
	if cfg.Storage.Driver == config.DriverFile {
		if path, err := cfg.StorePath(); err == nil {
			cmd.Printf("  Store file: %s\n", path)
		}
	}
	r := cfg.Recommendations
	cmd.Printf("  Recommendations: max %d, %d clusters, seed %d, x%.2f accepted, x%.2f rejected\n",
		r.MaxResults, r.Clusters, r.Seed, r.AcceptedMultiplier, r.RejectedMultiplier)

	table := cfg.Emissions.Table()
	cmd.Printf("  Emission modes: %s\n", strings.Join(table.Modes(), ", "))
	cmd.Printf("  Grid intensity: %.3f lbs/kWh\n", table.GridLbsPerKwh)
	cmd.Printf("  Server address: %s\n", cfg.Server.Addr)
}
