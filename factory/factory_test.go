package factory

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dsql/auth"
	"github.com/lychee-technology/notionmap"
	"github.com/lychee-technology/notionmap/internal"
	"github.com/lychee-technology/notionmap/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type stubStore struct {
	closed bool
}

func (s *stubStore) Save(context.Context, notionmap.Snapshot) error { return nil }

func (s *stubStore) Load(_ context.Context, id string) (*notionmap.Snapshot, error) {
	return nil, notionmap.NewObjectNotFoundError(id)
}

func (s *stubStore) Close() { s.closed = true }

// stubOpen replaces the snapshot store opener for the duration of a test and
// records the password it was given.
func stubOpen(t *testing.T, store *stubStore, openErr error) *string {
	t.Helper()
	var password string
	orig := openSnapshotStore
	openSnapshotStore = func(ctx context.Context, dsn, pw, table string, logger *zap.Logger) (notionmap.SnapshotStore, error) {
		password = pw
		if openErr != nil {
			return nil, openErr
		}
		return store, nil
	}
	t.Cleanup(func() { openSnapshotStore = orig })
	return &password
}

func testConfig() *notionmap.Config {
	cfg := notionmap.DefaultConfig()
	cfg.API.Token = "secret_token"
	cfg.Logging.Format = "console"
	cfg.Logging.Level = "debug"
	return cfg
}

func TestNewSessionWithConfig(t *testing.T) {
	s, err := NewSessionWithConfig(context.Background(), testConfig())
	require.NoError(t, err)
	defer s.Close()

	active, err := session.Active()
	require.NoError(t, err)
	assert.Same(t, s, active)
}

func TestNewSessionWithConfig_InvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Logging.Format = "xml"
	_, err := NewSessionWithConfig(context.Background(), cfg)
	assert.True(t, notionmap.IsConfigError(err))

	cfg = testConfig()
	cfg.Logging.Level = "loud"
	_, err = NewSessionWithConfig(context.Background(), cfg)
	assert.True(t, notionmap.IsConfigError(err))

	_, err = session.Active()
	assert.Error(t, err)
}

func TestNewSessionWithConfig_Snapshots(t *testing.T) {
	store := &stubStore{}
	password := stubOpen(t, store, nil)

	cfg := testConfig()
	cfg.Snapshot.Enabled = true
	cfg.Snapshot.DSN = "postgres://notionmap@localhost:5432/notionmap"

	s, err := NewSessionWithConfig(context.Background(), cfg)
	require.NoError(t, err)
	assert.Empty(t, *password)

	require.NoError(t, s.Close())
	assert.True(t, store.closed)
}

func TestNewSessionWithConfig_SnapshotOpenFailure(t *testing.T) {
	openErr := notionmap.NewConnectionError("postgres ping failed", errors.New("connection refused"))
	stubOpen(t, nil, openErr)

	cfg := testConfig()
	cfg.Snapshot.Enabled = true
	cfg.Snapshot.DSN = "postgres://notionmap@localhost:5432/notionmap"

	_, err := NewSessionWithConfig(context.Background(), cfg)
	assert.ErrorIs(t, err, openErr)
	_, err = session.Active()
	assert.Error(t, err)
}

func TestNewSessionWithConfig_IAMToken(t *testing.T) {
	store := &stubStore{}
	password := stubOpen(t, store, nil)

	creds := credentials.NewStaticCredentialsProvider("AKIDEXAMPLE", "wJalrXUtnFEMI/K7MDENG/bPxRfiCYEXAMPLEKEY", "")
	var endpoint string
	orig := generateIAMToken
	generateIAMToken = func(ctx context.Context, ep, region string) (string, error) {
		endpoint = ep
		return auth.GenerateDbConnectAuthToken(ctx, ep, region, creds)
	}
	t.Cleanup(func() { generateIAMToken = orig })

	cfg := testConfig()
	cfg.Snapshot = notionmap.SnapshotConfig{
		Enabled: true,
		DSN:     "postgres://admin@abc123.dsql.us-east-1.on.aws:5432/postgres?sslmode=require",
		Table:   "notion_snapshots",
		UseIAM:  true,
		Region:  "us-east-1",
	}

	s, err := NewSessionWithConfig(context.Background(), cfg)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, "abc123.dsql.us-east-1.on.aws:5432", endpoint)
	assert.True(t, strings.HasPrefix(*password, "abc123.dsql.us-east-1.on.aws"), "token %q", *password)
	assert.Contains(t, *password, "Action=DbConnect")
	assert.Contains(t, *password, "X-Amz-Signature=")
}

func TestNewSessionWithConfig_IAMTokenFailure(t *testing.T) {
	stubOpen(t, &stubStore{}, nil)
	orig := generateIAMToken
	generateIAMToken = func(context.Context, string, string) (string, error) {
		return "", errors.New("no credentials")
	}
	t.Cleanup(func() { generateIAMToken = orig })

	cfg := testConfig()
	cfg.Snapshot = notionmap.SnapshotConfig{
		Enabled: true,
		DSN:     "postgres://admin@abc123.dsql.us-east-1.on.aws:5432/postgres",
		Table:   "notion_snapshots",
		UseIAM:  true,
		Region:  "us-east-1",
	}
	_, err := NewSessionWithConfig(context.Background(), cfg)
	assert.True(t, notionmap.IsConnectivityError(err))
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(notionmap.LoggingConfig{Level: "warn", Format: "json"})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zap.InfoLevel))
	assert.True(t, logger.Core().Enabled(zap.WarnLevel))

	_, err = NewLogger(notionmap.LoggingConfig{Level: "chatty", Format: "json"})
	assert.True(t, notionmap.IsConfigError(err))
}

func TestLogEmitter(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	internal.RegisterTelemetryEmitter(logEmitter(zap.New(core)))
	t.Cleanup(func() { internal.RegisterTelemetryEmitter(nil) })

	internal.EmitCacheLookup(context.Background(), true)

	entries := logs.FilterMessage("object_cache_lookup").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "hit", entries[0].ContextMap()["result"])
	assert.Equal(t, int64(1), entries[0].ContextMap()["value"])
}
