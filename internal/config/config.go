// Package config provides the run configuration for topngx.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/topngx/topngx/internal/source"
)

// Config holds the options for one topngx run.
type Config struct {
	// AccessLog is the access log to parse: a file path, an
	// s3://bucket/key location, or empty to read standard input when it
	// is not a TTY.
	AccessLog string `json:"access_log" yaml:"access_log"`

	// Format is a preset name (combined, common, main) or a raw
	// log_format template string.
	Format string `json:"format" yaml:"format"`

	// GroupBy is the column the default report groups on.
	GroupBy string `json:"group_by" yaml:"group_by"`

	// Having is the minimum group count for the default report.
	Having uint64 `json:"having" yaml:"having"`

	// Interval is the refresh interval when following a log file.
	Interval time.Duration `json:"interval" yaml:"interval"`

	// Limit caps the number of result rows per query.
	Limit uint64 `json:"limit" yaml:"limit"`

	// NoFollow disables tailing and reports only what is currently in
	// the log.
	NoFollow bool `json:"no_follow" yaml:"no_follow"`

	// OrderBy is the column the default report orders on, descending.
	OrderBy string `json:"order_by" yaml:"order_by"`

	// Verbose enables debug logging.
	Verbose bool `json:"verbose" yaml:"verbose"`

	// S3 holds settings for s3:// access logs.
	S3 source.S3Options `json:"s3" yaml:"s3"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Format:   "combined",
		GroupBy:  "request_path",
		Having:   1,
		Interval: 2 * time.Second,
		Limit:    10,
		OrderBy:  "count",
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Format == "" {
		return fmt.Errorf("format is required")
	}
	if c.GroupBy == "" {
		return fmt.Errorf("group_by is required")
	}
	if c.OrderBy == "" {
		return fmt.Errorf("order_by is required")
	}
	if c.Limit == 0 {
		return fmt.Errorf("limit must be at least 1")
	}
	if c.Interval <= 0 {
		return fmt.Errorf("interval must be positive")
	}
	return nil
}

// LoadFromFile loads configuration from a YAML or JSON file on top of
// the defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", ext)
	}

	return cfg, nil
}

// LoadFromEnv applies environment variables on top of cfg. A .env file
// in the working directory is honored first; variables use the TOPNGX_
// prefix.
func LoadFromEnv(cfg *Config) {
	_ = godotenv.Load()

	if v := os.Getenv("TOPNGX_ACCESS_LOG"); v != "" {
		cfg.AccessLog = v
	}
	if v := os.Getenv("TOPNGX_FORMAT"); v != "" {
		cfg.Format = v
	}
	if v := os.Getenv("TOPNGX_GROUP_BY"); v != "" {
		cfg.GroupBy = v
	}
	if v := os.Getenv("TOPNGX_HAVING"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.Having = n
		}
	}
	if v := os.Getenv("TOPNGX_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Interval = d
		}
	}
	if v := os.Getenv("TOPNGX_LIMIT"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.Limit = n
		}
	}
	if v := os.Getenv("TOPNGX_NO_FOLLOW"); v != "" {
		cfg.NoFollow = v == "true" || v == "1"
	}
	if v := os.Getenv("TOPNGX_ORDER_BY"); v != "" {
		cfg.OrderBy = v
	}
	if v := os.Getenv("TOPNGX_S3_REGION"); v != "" {
		cfg.S3.Region = v
	}
	if v := os.Getenv("TOPNGX_S3_ENDPOINT"); v != "" {
		cfg.S3.Endpoint = v
	}
	if v := os.Getenv("TOPNGX_S3_PATH_STYLE"); v != "" {
		cfg.S3.UsePathStyle = v == "true" || v == "1"
	}
}
