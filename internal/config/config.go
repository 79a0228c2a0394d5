// Package config loads pagesel configuration from YAML, environment variables
// and command-line overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Defaults.
const (
	DefaultBaseURL        = "https://api.artic.edu/api/v1/artworks"
	DefaultTimeoutSeconds = 10
	DefaultRateLimit      = 1.0
	DefaultRateBurst      = 5
	DefaultUserAgent      = "pagesel (https://github.com/rshade/pagesel)"
	DefaultPageSize       = 12
	MaxPageSize           = 100
	DefaultMaxBulkCount   = 200000
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "console"
	configFileName        = "config.yaml"
	logFileName           = "pagesel.log"
)

// Environment variables that override file values.
const (
	EnvHome      = "PAGESEL_HOME"
	EnvAPIURL    = "PAGESEL_API_URL"
	EnvPageSize  = "PAGESEL_PAGE_SIZE"
	EnvLogLevel  = "PAGESEL_LOG_LEVEL"
	EnvLogFormat = "PAGESEL_LOG_FORMAT"
	EnvLogFile   = "PAGESEL_LOG_FILE"
)

// Validation errors.
var (
	ErrInvalidPageSize  = fmt.Errorf("ui.page_size must be between 1 and %d", MaxPageSize)
	ErrInvalidTimeout   = errors.New("api.timeout_seconds must be positive")
	ErrInvalidRateLimit = errors.New("api.rate_limit and api.rate_burst must be positive")
	ErrInvalidMaxBulk   = errors.New("ui.max_bulk_count must be positive")
	ErrEmptyBaseURL     = errors.New("api.base_url cannot be empty")
	ErrConfigNotFound   = errors.New("config file not found")
)

// Config is the complete pagesel configuration.
type Config struct {
	API     APIConfig     `yaml:"api"`
	UI      UIConfig      `yaml:"ui"`
	Logging LoggingConfig `yaml:"logging"`
}

// APIConfig configures the record collection endpoint.
type APIConfig struct {
	BaseURL        string   `yaml:"base_url"`
	TimeoutSeconds int      `yaml:"timeout_seconds"`
	RateLimit      float64  `yaml:"rate_limit"`
	RateBurst      int      `yaml:"rate_burst"`
	UserAgent      string   `yaml:"user_agent"`
	Fields         []string `yaml:"fields,omitempty"`
}

// UIConfig configures paging and selection limits.
type UIConfig struct {
	PageSize     int `yaml:"page_size"`
	MaxBulkCount int `yaml:"max_bulk_count"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file,omitempty"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:        DefaultBaseURL,
			TimeoutSeconds: DefaultTimeoutSeconds,
			RateLimit:      DefaultRateLimit,
			RateBurst:      DefaultRateBurst,
			UserAgent:      DefaultUserAgent,
		},
		UI: UIConfig{
			PageSize:     DefaultPageSize,
			MaxBulkCount: DefaultMaxBulkCount,
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// Load builds a Config from defaults, the YAML file at path and the environment.
// An empty path uses DefaultConfigPath, which may be absent. An explicit path
// that does not exist returns ErrConfigNotFound.
func Load(path string) (*Config, error) {
	cfg := New()

	explicit := path != ""
	if !explicit {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return nil, err
		}
		path = defaultPath
	}

	if err := cfg.mergeFile(path, explicit); err != nil {
		return nil, err
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", path, err)
	}
	return cfg, nil
}

// mergeFile decodes the YAML file at path on top of cfg. A missing file is
// skipped unless required is set.
func (c *Config) mergeFile(path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if required {
				return fmt.Errorf("%w: %s", ErrConfigNotFound, path)
			}
			return nil
		}
		return fmt.Errorf("reading config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv applies environment overrides using lookupEnv.
func (c *Config) ApplyEnv(lookupEnv func(string) (string, bool)) error {
	if v, ok := lookupEnv(EnvAPIURL); ok && v != "" {
		c.API.BaseURL = v
	}
	if v, ok := lookupEnv(EnvPageSize); ok && v != "" {
		size, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPageSize, err)
		}
		c.UI.PageSize = size
	}
	if v, ok := lookupEnv(EnvLogLevel); ok && v != "" {
		c.Logging.Level = v
	}
	if v, ok := lookupEnv(EnvLogFormat); ok && v != "" {
		c.Logging.Format = v
	}
	if v, ok := lookupEnv(EnvLogFile); ok {
		c.Logging.File = v
	}
	return nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return ErrEmptyBaseURL
	}
	if c.API.TimeoutSeconds <= 0 {
		return ErrInvalidTimeout
	}
	if c.API.RateLimit <= 0 || c.API.RateBurst <= 0 {
		return ErrInvalidRateLimit
	}
	if c.UI.PageSize < 1 || c.UI.PageSize > MaxPageSize {
		return fmt.Errorf("%w: got %d", ErrInvalidPageSize, c.UI.PageSize)
	}
	if c.UI.MaxBulkCount < 1 {
		return ErrInvalidMaxBulk
	}
	return nil
}

// Save writes cfg as YAML to path, creating the parent directory.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file %s: %w", path, err)
	}
	return nil
}

// GetConfigDir returns the pagesel configuration directory.
func GetConfigDir() (string, error) {
	if home := os.Getenv(EnvHome); home != "" {
		return home, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".pagesel"), nil
}

// DefaultConfigPath returns the path of the config file in the config directory.
func DefaultConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// DefaultLogPath returns the log file path used by the interactive browser
// when no log file is configured.
func DefaultLogPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, logFileName), nil
}
