package factory

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dsql/auth"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lychee-technology/notionmap"
	"github.com/lychee-technology/notionmap/internal"
	"github.com/lychee-technology/notionmap/session"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// openSnapshotStore and generateIAMToken are replaced in tests.
var (
	openSnapshotStore = func(ctx context.Context, dsn, password, table string, logger *zap.Logger) (notionmap.SnapshotStore, error) {
		return internal.OpenPostgresSnapshotStore(ctx, dsn, password, table, logger)
	}
	generateIAMToken = func(ctx context.Context, endpoint, region string) (string, error) {
		awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
		if err != nil {
			return "", fmt.Errorf("load aws config: %w", err)
		}
		return auth.GenerateDbConnectAuthToken(ctx, endpoint, awsCfg.Region, awsCfg.Credentials)
	}
)

// NewSessionWithConfig creates the process session described by cfg.
// This is the primary way for applications to get a session with logging and
// the optional snapshot store wired in.
//
// Usage:
//
//	import (
//	    "github.com/lychee-technology/notionmap"
//	    "github.com/lychee-technology/notionmap/factory"
//	)
//
//	cfg := notionmap.DefaultConfig()
//	cfg.API.Token = os.Getenv("NOTION_TOKEN")
//	s, err := factory.NewSessionWithConfig(ctx, cfg)
//	if err != nil {
//	    // handle error
//	}
//	defer s.Close()
//
// With snapshots in Aurora DSQL, authenticated by IAM:
//
//	cfg.Snapshot = notionmap.SnapshotConfig{
//	    Enabled: true,
//	    DSN:     "postgres://admin@cluster.dsql.us-east-1.on.aws:5432/postgres?sslmode=require",
//	    Table:   "notion_snapshots",
//	    UseIAM:  true,
//	    Region:  "us-east-1",
//	}
func NewSessionWithConfig(ctx context.Context, cfg *notionmap.Config) (*session.Session, error) {
	if cfg == nil {
		cfg = notionmap.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger, err := NewLogger(cfg.Logging)
	if err != nil {
		return nil, err
	}

	if cfg.Logging.Metrics {
		internal.RegisterTelemetryEmitter(logEmitter(logger.Named("metrics")))
	}

	opts := session.Options{Config: cfg, Logger: logger}
	if cfg.Snapshot.Enabled {
		store, err := snapshotStore(ctx, cfg.Snapshot, logger)
		if err != nil {
			return nil, err
		}
		opts.Snapshots = store
	}

	s, err := session.New(opts)
	if err != nil {
		if opts.Snapshots != nil {
			opts.Snapshots.Close()
		}
		return nil, err
	}
	return s, nil
}

func snapshotStore(ctx context.Context, cfg notionmap.SnapshotConfig, logger *zap.Logger) (notionmap.SnapshotStore, error) {
	password := ""
	if cfg.UseIAM {
		pgCfg, err := pgxpool.ParseConfig(cfg.DSN)
		if err != nil {
			return nil, notionmap.NewValidationError("snapshot.dsn", err.Error())
		}
		endpoint := fmt.Sprintf("%s:%d", pgCfg.ConnConfig.Host, pgCfg.ConnConfig.Port)
		token, err := generateIAMToken(ctx, endpoint, cfg.Region)
		if err != nil {
			return nil, notionmap.NewConnectionError("generate IAM auth token", err)
		}
		logger.Info("generated IAM auth token for snapshot store", zap.String("endpoint", endpoint))
		password = token
	}
	return openSnapshotStore(ctx, cfg.DSN, password, cfg.Table, logger)
}

// NewLogger builds a zap logger writing json or console lines at the configured level.
func NewLogger(cfg notionmap.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, &notionmap.ConfigError{Field: "logging.level", Message: err.Error()}
	}

	zc := zap.NewProductionConfig()
	if cfg.Format == "console" {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}

// logEmitter writes telemetry events as debug log lines.
func logEmitter(logger *zap.Logger) func(ctx context.Context, name string, labels map[string]string, value any) {
	return func(_ context.Context, name string, labels map[string]string, value any) {
		fields := make([]zap.Field, 0, len(labels)+1)
		fields = append(fields, zap.Any("value", value))
		for k, v := range labels {
			fields = append(fields, zap.String(k, v))
		}
		logger.Debug(name, fields...)
	}
}
