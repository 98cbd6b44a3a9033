// Package config loads, validates and persists footprint configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/emissions"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/recommend"
)

// Storage drivers.
const (
	DriverFile     = "file"
	DriverPostgres = "postgres"
)

// Output formats.
const (
	FormatTable  = "table"
	FormatJSON   = "json"
	FormatNDJSON = "ndjson"
)

const (
	configFileName = "config.yaml"
	dataFileName   = "footprint.json"
	logFileName    = "footprint.log"
	maxPrecision   = 6
)

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

// ErrInvalidConfig wraps every validation failure.
const ErrInvalidConfig = constError("invalid configuration")

// ErrUnknownKey is returned by Get and Set for unsupported keys.
const ErrUnknownKey = constError("unknown configuration key")

// Config is the full footprint configuration.
type Config struct {
	Output          OutputConfig          `yaml:"output"`
	Logging         LoggingConfig         `yaml:"logging"`
	Storage         StorageConfig         `yaml:"storage"`
	Recommendations RecommendationsConfig `yaml:"recommendations"`
	Emissions       EmissionsConfig       `yaml:"emissions"`
	Server          ServerConfig          `yaml:"server"`

	configPath string
}

// OutputConfig controls CLI rendering.
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format"`
	Precision     int    `yaml:"precision"`
}

// LoggingConfig controls log level, format and destination.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file,omitempty"`
}

// StorageConfig selects and locates the persistence backend.
type StorageConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path,omitempty"`
	DSN    string `yaml:"dsn,omitempty"`
}

// RecommendationsConfig tunes ranking and feedback weighting.
type RecommendationsConfig struct {
	MaxResults         int     `yaml:"max_results"`
	Clusters           int     `yaml:"clusters"`
	Seed               uint64  `yaml:"seed"`
	AcceptedMultiplier float64 `yaml:"accepted_multiplier"`
	RejectedMultiplier float64 `yaml:"rejected_multiplier"`
}

// Options converts the section into recommend.Options.
func (r RecommendationsConfig) Options() recommend.Options {
	return recommend.Options{
		MaxResults:         r.MaxResults,
		AcceptedMultiplier: r.AcceptedMultiplier,
		RejectedMultiplier: r.RejectedMultiplier,
		Clusters:           r.Clusters,
		Seed:               r.Seed,
	}
}

// EmissionsConfig adds to or overrides the built-in factor table.
type EmissionsConfig struct {
	PerMile       map[string]float64 `yaml:"per_mile,omitempty"`
	PerGallon     map[string]float64 `yaml:"per_gallon,omitempty"`
	GridLbsPerKwh float64            `yaml:"grid_lbs_per_kwh,omitempty"`
}

// Table returns the built-in factor table with this section's overrides applied.
func (e EmissionsConfig) Table() emissions.Table {
	return emissions.DefaultTable().Merge(emissions.Table{
		PerMile:       e.PerMile,
		PerGallon:     e.PerGallon,
		GridLbsPerKwh: e.GridLbsPerKwh,
	})
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// Default returns a Config populated with built-in defaults.
func Default() *Config {
	opts := recommend.DefaultOptions()
	return &Config{
		Output: OutputConfig{
			DefaultFormat: FormatTable,
			Precision:     2,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Storage: StorageConfig{
			Driver: DriverFile,
		},
		Recommendations: RecommendationsConfig{
			MaxResults:         opts.MaxResults,
			Clusters:           opts.Clusters,
			Seed:               opts.Seed,
			AcceptedMultiplier: opts.AcceptedMultiplier,
			RejectedMultiplier: opts.RejectedMultiplier,
		},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
	}
}

// New returns defaults overlaid with the user's config file, if any, and then
// environment overrides. A malformed file is ignored and defaults are kept.
func New() *Config {
	cfg := Default()
	if path, err := ConfigPath(); err == nil {
		cfg.configPath = path
		if loaded, loadErr := Load(path); loadErr == nil {
			cfg = loaded
		}
	}
	cfg.ApplyEnvOverrides()
	return cfg
}

// Load reads path over the defaults. Missing sections keep default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	cfg := Default()
	if err = yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg.configPath = path
	return cfg, nil
}

// Path returns the file this config was loaded from or will be saved to.
func (c *Config) Path() string {
	return c.configPath
}

// SetPath changes where Save writes.
func (c *Config) SetPath(path string) {
	c.configPath = path
}

// Save writes the config to its path atomically, creating the directory.
func (c *Config) Save() error {
	if c.configPath == "" {
		path, err := ConfigPath()
		if err != nil {
			return err
		}
		c.configPath = path
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err = os.MkdirAll(filepath.Dir(c.configPath), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	tmp := c.configPath + ".tmp"
	if err = os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	if err = os.Rename(tmp, c.configPath); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replacing config: %w", err)
	}
	return nil
}

// Validate checks every section and joins all problems found.
func (c *Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	switch c.Output.DefaultFormat {
	case FormatTable, FormatJSON, FormatNDJSON:
	default:
		add("output.default_format %q must be table, json or ndjson", c.Output.DefaultFormat)
	}
	if c.Output.Precision < 0 || c.Output.Precision > maxPrecision {
		add("output.precision %d must be between 0 and %d", c.Output.Precision, maxPrecision)
	}

	switch c.Logging.Format {
	case "", "json", "console", "text":
	default:
		add("logging.format %q must be json, console or text", c.Logging.Format)
	}

	switch c.Storage.Driver {
	case DriverFile:
	case DriverPostgres:
		if c.Storage.DSN == "" {
			add("storage.dsn is required for the postgres driver")
		}
	default:
		add("storage.driver %q must be file or postgres", c.Storage.Driver)
	}

	r := c.Recommendations
	if r.MaxResults <= 0 {
		add("recommendations.max_results must be positive")
	}
	if r.Clusters <= 0 {
		add("recommendations.clusters must be positive")
	}
	if r.AcceptedMultiplier < 1 {
		add("recommendations.accepted_multiplier %.2f must be at least 1", r.AcceptedMultiplier)
	}
	if r.RejectedMultiplier <= 0 || r.RejectedMultiplier > 1 {
		add("recommendations.rejected_multiplier %.2f must be in (0, 1]", r.RejectedMultiplier)
	}

	for mode, f := range c.Emissions.PerMile {
		if f < 0 {
			add("emissions.per_mile[%s] must not be negative", mode)
		}
	}
	for fuel, f := range c.Emissions.PerGallon {
		if f < 0 {
			add("emissions.per_gallon[%s] must not be negative", fuel)
		}
	}
	if c.Emissions.GridLbsPerKwh < 0 {
		add("emissions.grid_lbs_per_kwh must not be negative")
	}

	if c.Server.Addr == "" {
		add("server.addr is required")
	}

	return errors.Join(errs...)
}

// StorePath returns the file store location, defaulting under the config dir.
func (c *Config) StorePath() (string, error) {
	if c.Storage.Path != "" {
		return c.Storage.Path, nil
	}
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "data", dataFileName), nil
}
