package config

import (
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/logging"
)

// ToLoggingConfig bridges the logging section to logging.Config. A configured
// file switches output to that file; otherwise logs go to stderr.
func (lc LoggingConfig) ToLoggingConfig() logging.Config {
	output := logging.OutputStderr
	if lc.File != "" {
		output = logging.OutputFile
	}
	return logging.Config{
		Level:  lc.Level,
		Format: lc.Format,
		Output: output,
		File:   lc.File,
	}
}

// GetLoggingConfig returns a copy of the global logging section. Callers apply
// flag overrides such as --debug afterwards.
func GetLoggingConfig() LoggingConfig {
	return GetGlobalConfig().Logging
}
