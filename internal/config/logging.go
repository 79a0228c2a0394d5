package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rshade/pagesel/internal/logging"
)

// ToLoggingConfig converts the logging section to a logging.Config.
// A configured File selects file output; otherwise entries go to stderr.
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

// GetLoggingConfig returns the logging section of the global configuration.
func GetLoggingConfig() LoggingConfig {
	return GetGlobalConfig().Logging
}

// EnsureLogDir creates the parent directory of path with permission 0700.
func EnsureLogDir(path string) error {
	if path == "" {
		return nil
	}
	logDir := filepath.Dir(path)
	if err := os.MkdirAll(logDir, 0700); err != nil {
		return fmt.Errorf("failed to create log directory %q: %w", logDir, err)
	}
	return nil
}
