package notionmap

import (
	"os"
	"strings"
	"time"
)

// EnvToken is the environment variable holding the default integration token.
const EnvToken = "NOTION_TOKEN"

// Config consolidates settings for the session and its collaborators
type Config struct {
	API      APIConfig      `json:"api"`
	Logging  LoggingConfig  `json:"logging"`
	Snapshot SnapshotConfig `json:"snapshot"`
	Export   ExportConfig   `json:"export"`
}

// APIConfig contains remote API settings
type APIConfig struct {
	Token               string        `json:"token"`
	BaseURL             string        `json:"baseUrl"`
	Version             string        `json:"version"`
	Timeout             time.Duration `json:"timeout"`
	BreakerThreshold    int           `json:"breakerThreshold"`
	BreakerWindow       time.Duration `json:"breakerWindow"`
	BreakerOpenDuration time.Duration `json:"breakerOpenDuration"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level   string `json:"level"`
	Format  string `json:"format"`  // json or console
	Metrics bool   `json:"metrics"` // log telemetry events at debug level
}

// SnapshotConfig controls the optional Postgres store of fetched payloads
type SnapshotConfig struct {
	Enabled bool   `json:"enabled"`
	DSN     string `json:"dsn"`
	Table   string `json:"table"`
	UseIAM  bool   `json:"useIam"`
	Region  string `json:"region"`
}

// ExportConfig contains S3 export settings for views
type ExportConfig struct {
	Bucket   string `json:"bucket"`
	Prefix   string `json:"prefix"`
	Region   string `json:"region"`
	Endpoint string `json:"endpoint"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:             "https://api.notion.com/v1",
			Version:             "2022-06-28",
			Timeout:             30 * time.Second,
			BreakerThreshold:    5,
			BreakerWindow:       30 * time.Second,
			BreakerOpenDuration: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Snapshot: SnapshotConfig{
			Enabled: false,
			Table:   "notion_snapshots",
		},
		Export: ExportConfig{
			Region: "us-east-1",
		},
	}
}

// ResolveToken returns the explicit token, falling back to the environment.
func (c *Config) ResolveToken() (string, error) {
	if c.API.Token != "" {
		return c.API.Token, nil
	}
	if env, ok := os.LookupEnv(EnvToken); ok && env != "" {
		return env, nil
	}
	return "", NewMissingTokenError()
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.API.BaseURL, "http://") && !strings.HasPrefix(c.API.BaseURL, "https://") {
		return &ConfigError{Field: "api.baseUrl", Message: "must be an http(s) URL"}
	}

	if c.API.Version == "" {
		return &ConfigError{Field: "api.version", Message: "must not be empty"}
	}

	if c.API.Timeout <= 0 {
		return &ConfigError{Field: "api.timeout", Message: "must be greater than 0"}
	}

	if c.API.BreakerThreshold <= 0 {
		return &ConfigError{Field: "api.breakerThreshold", Message: "must be greater than 0"}
	}

	switch c.Logging.Format {
	case "json", "console":
	default:
		return &ConfigError{Field: "logging.format", Message: "must be 'json' or 'console'"}
	}

	if c.Snapshot.Enabled {
		if c.Snapshot.DSN == "" {
			return &ConfigError{Field: "snapshot.dsn", Message: "required when snapshots are enabled"}
		}
		if c.Snapshot.Table == "" {
			return &ConfigError{Field: "snapshot.table", Message: "required when snapshots are enabled"}
		}
		if c.Snapshot.UseIAM && c.Snapshot.Region == "" {
			return &ConfigError{Field: "snapshot.region", Message: "required for IAM authentication"}
		}
	}

	return nil
}

// ConfigError represents a configuration validation error
type ConfigError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ConfigError) Error() string {
	return "config validation error for field '" + e.Field + "': " + e.Message
}
