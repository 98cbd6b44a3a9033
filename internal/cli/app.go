package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/cli/pagination"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/config"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/emissions"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/engine"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/store/filestore"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/store/postgres"
)

const tabPadding = 2

// openStore opens the backend selected by cfg.Storage.
func openStore(ctx context.Context, cfg *config.Config) (engine.Store, error) {
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		s, err := postgres.Open(ctx, cfg.Storage.DSN)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverFile, "":
		path, err := cfg.StorePath()
		if err != nil {
			return nil, err
		}
		s, err := filestore.New(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: unknown storage driver %q", config.ErrInvalidConfig, cfg.Storage.Driver)
	}
}

// newEngine validates the global config and builds an engine over its store.
// Callers must Close the engine.
func newEngine(cmd *cobra.Command) (*engine.Engine, error) {
	ctx := cmd.Context()
	cfg := config.GetGlobalConfig()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	s, err := openStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", cfg.Storage.Driver, err)
	}

	logger.Debug().Ctx(ctx).
		Str("operation", "open_store").
		Str("driver", cfg.Storage.Driver).
		Msg("store opened")

	return engine.New(s,
		engine.WithCalculator(emissions.NewCalculator(cfg.Emissions.Table())),
		engine.WithOptions(cfg.Recommendations.Options()),
	), nil
}

// userFlag returns the required --user value.
func userFlag(cmd *cobra.Command) (string, error) {
	user, _ := cmd.Flags().GetString("user")
	user = strings.TrimSpace(user)
	if user == "" {
		return "", fmt.Errorf("%w: --user is required", engine.ErrInvalidInput)
	}
	return user, nil
}

func addUserFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("user", "u", "", "user id (required)")
}

// outputFormat resolves --output against the configured default.
func outputFormat(cmd *cobra.Command) (string, error) {
	format, _ := cmd.Flags().GetString("output")
	if format == "" {
		format = config.GetDefaultOutputFormat()
	}
	switch format {
	case config.FormatTable, config.FormatJSON, config.FormatNDJSON:
		return format, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", format)
	}
}

func renderJSON(cmd *cobra.Command, v any) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

func renderNDJSON[T any](cmd *cobra.Command, items []T) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	for _, item := range items {
		if err := encoder.Encode(item); err != nil {
			return fmt.Errorf("encoding NDJSON: %w", err)
		}
	}
	return nil
}

// render writes v as JSON or items as NDJSON, or calls table for table output.
func render[T any](cmd *cobra.Command, v any, items []T, table func() error) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	switch format {
	case config.FormatJSON:
		return renderJSON(cmd, v)
	case config.FormatNDJSON:
		return renderNDJSON(cmd, items)
	default:
		return table()
	}
}

// paginate sorts and pages items for a list command.
func paginate[T any](p pagination.Params, sorter *pagination.Sorter[T], items []T) ([]T, pagination.Meta, error) {
	if err := p.Validate(); err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("%w: %w", engine.ErrInvalidInput, err)
	}
	sorted, err := sorter.Sort(items, p.Sort)
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("%w: %w", engine.ErrInvalidInput, err)
	}
	return pagination.Apply(p, sorted), pagination.NewMeta(p, len(items)), nil
}

func printPageFooter(cmd *cobra.Command, p pagination.Params, meta pagination.Meta) {
	if !p.IsEnabled() {
		return
	}
	cmd.Printf("Page %d of %d (%d total)\n", meta.CurrentPage, meta.TotalPages, meta.TotalItems)
}
