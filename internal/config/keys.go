package config

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

type field struct {
	get func(*Config) string
	set func(*Config, string) error
}

//nolint:gochecknoglobals // Static table of settable keys.
var fields = map[string]field{
	"output.default_format": {
		get: func(c *Config) string { return c.Output.DefaultFormat },
		set: func(c *Config, v string) error { c.Output.DefaultFormat = v; return nil },
	},
	"output.precision": {
		get: func(c *Config) string { return strconv.Itoa(c.Output.Precision) },
		set: func(c *Config, v string) error { return setInt(&c.Output.Precision, v) },
	},
	"logging.level": {
		get: func(c *Config) string { return c.Logging.Level },
		set: func(c *Config, v string) error { c.Logging.Level = v; return nil },
	},
	"logging.format": {
		get: func(c *Config) string { return c.Logging.Format },
		set: func(c *Config, v string) error { c.Logging.Format = v; return nil },
	},
	"logging.file": {
		get: func(c *Config) string { return c.Logging.File },
		set: func(c *Config, v string) error { c.Logging.File = v; return nil },
	},
	"storage.driver": {
		get: func(c *Config) string { return c.Storage.Driver },
		set: func(c *Config, v string) error { c.Storage.Driver = v; return nil },
	},
	"storage.path": {
		get: func(c *Config) string { return c.Storage.Path },
		set: func(c *Config, v string) error { c.Storage.Path = v; return nil },
	},
	"storage.dsn": {
		get: func(c *Config) string { return c.Storage.DSN },
		set: func(c *Config, v string) error { c.Storage.DSN = v; return nil },
	},
	"recommendations.max_results": {
		get: func(c *Config) string { return strconv.Itoa(c.Recommendations.MaxResults) },
		set: func(c *Config, v string) error { return setInt(&c.Recommendations.MaxResults, v) },
	},
	"recommendations.clusters": {
		get: func(c *Config) string { return strconv.Itoa(c.Recommendations.Clusters) },
		set: func(c *Config, v string) error { return setInt(&c.Recommendations.Clusters, v) },
	},
	"recommendations.seed": {
		get: func(c *Config) string { return strconv.FormatUint(c.Recommendations.Seed, 10) },
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("parsing %q as unsigned integer: %w", v, err)
			}
			c.Recommendations.Seed = n
			return nil
		},
	},
	"recommendations.accepted_multiplier": {
		get: func(c *Config) string { return formatFloat(c.Recommendations.AcceptedMultiplier) },
		set: func(c *Config, v string) error { return setFloat(&c.Recommendations.AcceptedMultiplier, v) },
	},
	"recommendations.rejected_multiplier": {
		get: func(c *Config) string { return formatFloat(c.Recommendations.RejectedMultiplier) },
		set: func(c *Config, v string) error { return setFloat(&c.Recommendations.RejectedMultiplier, v) },
	},
	"emissions.grid_lbs_per_kwh": {
		get: func(c *Config) string { return formatFloat(c.Emissions.GridLbsPerKwh) },
		set: func(c *Config, v string) error { return setFloat(&c.Emissions.GridLbsPerKwh, v) },
	},
	"server.addr": {
		get: func(c *Config) string { return c.Server.Addr },
		set: func(c *Config, v string) error { c.Server.Addr = v; return nil },
	},
	"server.read_timeout": {
		get: func(c *Config) string { return c.Server.ReadTimeout.String() },
		set: func(c *Config, v string) error { return setDuration(&c.Server.ReadTimeout, v) },
	},
	"server.write_timeout": {
		get: func(c *Config) string { return c.Server.WriteTimeout.String() },
		set: func(c *Config, v string) error { return setDuration(&c.Server.WriteTimeout, v) },
	},
}

const (
	perMilePrefix   = "emissions.per_mile."
	perGallonPrefix = "emissions.per_gallon."
)

// Keys lists every scalar key accepted by Get and Set, sorted.
func Keys() []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Get returns the string value of a dotted key such as "output.precision" or
// "emissions.per_mile.bus".
func (c *Config) Get(key string) (string, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	if f, ok := fields[key]; ok {
		return f.get(c), nil
	}
	if mode, ok := strings.CutPrefix(key, perMilePrefix); ok && mode != "" {
		f, found := c.Emissions.Table().PerMileFactor(mode)
		if !found {
			return "", fmt.Errorf("%w: no per-mile factor for %q", ErrUnknownKey, mode)
		}
		return formatFloat(f), nil
	}
	if fuel, ok := strings.CutPrefix(key, perGallonPrefix); ok && fuel != "" {
		f, found := c.Emissions.Table().PerGallon[fuel]
		if !found {
			return "", fmt.Errorf("%w: no per-gallon factor for %q", ErrUnknownKey, fuel)
		}
		return formatFloat(f), nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
}

// Set assigns a dotted key from its string form.
func (c *Config) Set(key, value string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	if f, ok := fields[key]; ok {
		return f.set(c, value)
	}
	if mode, ok := strings.CutPrefix(key, perMilePrefix); ok && mode != "" {
		return setFactor(&c.Emissions.PerMile, mode, value)
	}
	if fuel, ok := strings.CutPrefix(key, perGallonPrefix); ok && fuel != "" {
		return setFactor(&c.Emissions.PerGallon, fuel, value)
	}
	return fmt.Errorf("%w: %s", ErrUnknownKey, key)
}

func setFactor(m *map[string]float64, name, value string) error {
	var f float64
	if err := setFloat(&f, value); err != nil {
		return err
	}
	if *m == nil {
		*m = make(map[string]float64)
	}
	(*m)[name] = f
	return nil
}

func setInt(dst *int, v string) error {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("parsing %q as integer: %w", v, err)
	}
	*dst = n
	return nil
}

func setFloat(dst *float64, v string) error {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return fmt.Errorf("parsing %q as number: %w", v, err)
	}
	*dst = f
	return nil
}

func setDuration(dst *time.Duration, v string) error {
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("parsing %q as duration: %w", v, err)
	}
	*dst = d
	return nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
