package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lychee-technology/notionmap"
	"github.com/spf13/viper"
)

const (
	configFileName = "notionmap"
	configFileType = "yaml"
	envPrefix      = "NOTIONMAP"
)

// loadConfig reads the config file, if any, and NOTIONMAP_* environment
// variables on top of notionmap.DefaultConfig. NOTIONMAP_API_TOKEN sets
// api.token; a missing token still falls back to NOTION_TOKEN later.
func loadConfig(path string) (*notionmap.Config, error) {
	v := viper.New()
	setDefaults(v, notionmap.DefaultConfig())

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configFileName)
		v.SetConfigType(configFileType)
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "notionmap"))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &notionmap.Config{
		API: notionmap.APIConfig{
			Token:               v.GetString("api.token"),
			BaseURL:             v.GetString("api.base_url"),
			Version:             v.GetString("api.version"),
			Timeout:             v.GetDuration("api.timeout"),
			BreakerThreshold:    v.GetInt("api.breaker_threshold"),
			BreakerWindow:       v.GetDuration("api.breaker_window"),
			BreakerOpenDuration: v.GetDuration("api.breaker_open_duration"),
		},
		Logging: notionmap.LoggingConfig{
			Level:   v.GetString("logging.level"),
			Format:  v.GetString("logging.format"),
			Metrics: v.GetBool("logging.metrics"),
		},
		Snapshot: notionmap.SnapshotConfig{
			Enabled: v.GetBool("snapshot.enabled"),
			DSN:     v.GetString("snapshot.dsn"),
			Table:   v.GetString("snapshot.table"),
			UseIAM:  v.GetBool("snapshot.use_iam"),
			Region:  v.GetString("snapshot.region"),
		},
		Export: notionmap.ExportConfig{
			Bucket:   v.GetString("export.bucket"),
			Prefix:   v.GetString("export.prefix"),
			Region:   v.GetString("export.region"),
			Endpoint: v.GetString("export.endpoint"),
		},
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can resolve it.
func setDefaults(v *viper.Viper, d *notionmap.Config) {
	v.SetDefault("api.token", d.API.Token)
	v.SetDefault("api.base_url", d.API.BaseURL)
	v.SetDefault("api.version", d.API.Version)
	v.SetDefault("api.timeout", d.API.Timeout)
	v.SetDefault("api.breaker_threshold", d.API.BreakerThreshold)
	v.SetDefault("api.breaker_window", d.API.BreakerWindow)
	v.SetDefault("api.breaker_open_duration", d.API.BreakerOpenDuration)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.metrics", d.Logging.Metrics)

	v.SetDefault("snapshot.enabled", d.Snapshot.Enabled)
	v.SetDefault("snapshot.dsn", d.Snapshot.DSN)
	v.SetDefault("snapshot.table", d.Snapshot.Table)
	v.SetDefault("snapshot.use_iam", d.Snapshot.UseIAM)
	v.SetDefault("snapshot.region", d.Snapshot.Region)

	v.SetDefault("export.bucket", d.Export.Bucket)
	v.SetDefault("export.prefix", d.Export.Prefix)
	v.SetDefault("export.region", d.Export.Region)
	v.SetDefault("export.endpoint", d.Export.Endpoint)
}
