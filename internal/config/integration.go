package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Environment variables read by ApplyEnvOverrides and GetConfigDir.
const (
	EnvHome          = "FOOTPRINT_HOME"
	EnvLogLevel      = "FOOTPRINT_LOG_LEVEL"
	EnvLogFormat     = "FOOTPRINT_LOG_FORMAT"
	EnvDatabaseURL   = "FOOTPRINT_DATABASE_URL"
	EnvStorageDriver = "FOOTPRINT_STORAGE_DRIVER"
)

// GlobalConfig holds the process-wide configuration.
var GlobalConfig *Config        //nolint:gochecknoglobals // Singleton pattern for configuration
var globalConfigMu sync.RWMutex //nolint:gochecknoglobals // Protects GlobalConfig
var globalConfigInit bool       //nolint:gochecknoglobals // Tracks if global config has been initialized

// InitGlobalConfig loads the global configuration once.
func InitGlobalConfig() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()

	if globalConfigInit {
		return
	}
	GlobalConfig = New()
	globalConfigInit = true
}

// SetGlobalConfig replaces the global configuration.
func SetGlobalConfig(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()

	GlobalConfig = cfg
	globalConfigInit = cfg != nil
}

// ResetGlobalConfigForTest resets the global config for testing purposes.
func ResetGlobalConfigForTest() {
	SetGlobalConfig(nil)
}

// GetGlobalConfig returns the global configuration, loading it if needed.
func GetGlobalConfig() *Config {
	InitGlobalConfig()
	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return GlobalConfig
}

// GetDefaultOutputFormat returns the configured default output format.
func GetDefaultOutputFormat() string {
	return GetGlobalConfig().Output.DefaultFormat
}

// GetOutputPrecision returns the configured output precision.
func GetOutputPrecision() int {
	return GetGlobalConfig().Output.Precision
}

// ApplyEnvOverrides applies FOOTPRINT_* variables on top of the loaded values.
// Setting a database URL without an explicit driver selects postgres.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv(EnvDatabaseURL); v != "" {
		c.Storage.DSN = v
		if os.Getenv(EnvStorageDriver) == "" {
			c.Storage.Driver = DriverPostgres
		}
	}
	if v := os.Getenv(EnvStorageDriver); v != "" {
		c.Storage.Driver = strings.ToLower(v)
	}
}

// GetConfigDir returns the footprint configuration directory, ~/.footprint
// unless FOOTPRINT_HOME is set.
func GetConfigDir() (string, error) {
	if home := os.Getenv(EnvHome); home != "" {
		return home, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".footprint"), nil
}

// ConfigPath returns the path of the user config file.
func ConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// DefaultLogPath returns the log file used when file logging is enabled
// without an explicit path.
func DefaultLogPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "logs", logFileName), nil
}

// EnsureConfigDir creates the configuration directory if missing.
func EnsureConfigDir() error {
	dir, err := GetConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o700)
}

// EnsureLogDir creates the parent directory of the configured log file.
func EnsureLogDir() error {
	file := GetGlobalConfig().Logging.File
	if file == "" {
		return nil
	}
	logDir := filepath.Dir(file)
	if err := os.MkdirAll(logDir, 0o700); err != nil {
		return fmt.Errorf("failed to create log directory %q: %w", logDir, err)
	}
	return nil
}
