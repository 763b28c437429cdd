package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete engine configuration
type Config struct {
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Parser  ParserConfig  `yaml:"parser" envconfig:"PARSER"`
	Convert ConvertConfig `yaml:"convert" envconfig:"CONVERT"`
	Paths   PathsConfig   `yaml:"paths" envconfig:"PATHS"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format      string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output      string `yaml:"output" envconfig:"OUTPUT" default:"console"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/dealdesk.log"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT" default:"false"`
}

// ParserConfig contains grid-parser tuning
type ParserConfig struct {
	HeaderScanRows int `yaml:"header_scan_rows" envconfig:"HEADER_SCAN_ROWS" default:"15"`
	MinSheetRows   int `yaml:"min_sheet_rows" envconfig:"MIN_SHEET_ROWS" default:"3"`
}

// ConvertConfig contains statement-to-period conversion settings
type ConvertConfig struct {
	// RulesFile points at a YAML classification rule set. Empty means the
	// built-in default rule set.
	RulesFile string `yaml:"rules_file" envconfig:"RULES_FILE"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	DataDir    string `yaml:"data_dir" envconfig:"DATA_DIR" default:"data"`
	ReportsDir string `yaml:"reports_dir" envconfig:"REPORTS_DIR" default:"reports"`
	LogsDir    string `yaml:"logs_dir" envconfig:"LOGS_DIR" default:"logs"`
}

const (
	envPrefix      = "DEALDESK"
	configFileName = "config.yaml"
)

// Load loads configuration from the optional config file and environment
// variables. Environment variables win over file values, file values win
// over defaults.
func Load() (*Config, error) {
	var cfg Config

	// Apply defaults first
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	// Overlay config file if present
	if path := configFilePath(); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		// Re-apply environment so it keeps precedence over the file
		if err := envconfig.Process(envPrefix, &cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from env: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// configFilePath returns the config file path if one exists, checking the
// DEALDESK_CONFIG override first, then the working directory.
func configFilePath() string {
	if path := os.Getenv(envPrefix + "_CONFIG"); path != "" {
		return path
	}
	if _, err := os.Stat(configFileName); err == nil {
		return configFileName
	}
	return ""
}

// loadFromFile overlays configuration from a YAML file
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// validate checks configuration invariants
func (c *Config) validate() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging level: %s", c.Logging.Level)
	}

	switch c.Logging.Output {
	case "console", "file", "both":
	default:
		return fmt.Errorf("invalid logging output: %s", c.Logging.Output)
	}

	if c.Parser.HeaderScanRows <= 0 {
		return fmt.Errorf("parser header_scan_rows must be positive, got %d", c.Parser.HeaderScanRows)
	}
	if c.Parser.MinSheetRows <= 0 {
		return fmt.Errorf("parser min_sheet_rows must be positive, got %d", c.Parser.MinSheetRows)
	}

	if c.Convert.RulesFile != "" {
		if _, err := os.Stat(c.Convert.RulesFile); err != nil {
			return fmt.Errorf("rules file %s: %w", c.Convert.RulesFile, err)
		}
	}

	return nil
}

// LogPath returns the path for a log file inside the configured logs dir.
func (c *Config) LogPath(name string) string {
	return filepath.Join(c.Paths.LogsDir, name)
}

// EnsureDirectories creates the configured data, reports and logs
// directories if they do not exist.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.ReportsDir, c.Paths.LogsDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
