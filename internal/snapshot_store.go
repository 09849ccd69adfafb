package internal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lychee-technology/notionmap"
	"go.uber.org/zap"
)

type snapshotPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresSnapshotStore keeps the latest raw payload of every materialized object.
type PostgresSnapshotStore struct {
	pool    snapshotPool
	table   string
	nowFunc func() time.Time
	logger  *zap.Logger
}

var _ notionmap.SnapshotStore = (*PostgresSnapshotStore)(nil)

// NewPostgresSnapshotStore wraps an existing pool. table may be schema qualified.
func NewPostgresSnapshotStore(pool snapshotPool, table string, logger *zap.Logger) *PostgresSnapshotStore {
	if logger == nil {
		logger = zap.L()
	}
	return &PostgresSnapshotStore{
		pool:    pool,
		table:   quoteTableName(table),
		nowFunc: time.Now,
		logger:  logger.Named("snapshots"),
	}
}

// OpenPostgresSnapshotStore connects to dsn, verifies the connection and creates the table if needed.
// A non-empty password overrides the one in dsn (IAM tokens are passed this way).
func OpenPostgresSnapshotStore(ctx context.Context, dsn, password, table string, logger *zap.Logger) (*PostgresSnapshotStore, error) {
	if dsn == "" {
		return nil, notionmap.NewValidationError("snapshot.dsn", "empty dsn")
	}
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if password != "" {
		cfg.ConnConfig.Password = password
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, notionmap.NewConnectionError("connect postgres", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, notionmap.NewConnectionError("postgres ping failed", err)
	}

	store := NewPostgresSnapshotStore(pool, table, logger)
	if err := store.EnsureTable(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return store, nil
}

// EnsureTable creates the snapshot table when it does not exist.
func (s *PostgresSnapshotStore) EnsureTable(ctx context.Context) error {
	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
  id UUID PRIMARY KEY,
  kind TEXT NOT NULL,
  payload JSONB NOT NULL,
  fetched_at TIMESTAMPTZ NOT NULL
)`, s.table)
	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("create snapshot table: %w", err)
	}
	return nil
}

// Save upserts a snapshot. A zero FetchedAt is stamped with the current time.
func (s *PostgresSnapshotStore) Save(ctx context.Context, snapshot notionmap.Snapshot) error {
	id, ok := toUUID(snapshot.ID)
	if !ok {
		return notionmap.NewInvalidIDError(snapshot.ID, nil)
	}
	if len(snapshot.Payload) == 0 {
		return notionmap.NewValidationError("payload", "snapshot payload is empty")
	}
	fetchedAt := snapshot.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = s.nowFunc().UTC()
	}

	query := fmt.Sprintf(`INSERT INTO %s (id, kind, payload, fetched_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (id) DO UPDATE SET kind = EXCLUDED.kind, payload = EXCLUDED.payload, fetched_at = EXCLUDED.fetched_at`, s.table)

	if _, err := s.pool.Exec(ctx, query, id, string(snapshot.Kind), []byte(snapshot.Payload), fetchedAt); err != nil {
		EmitSnapshotWrite(ctx, string(snapshot.Kind), false)
		return fmt.Errorf("save snapshot %s: %w", id, err)
	}
	EmitSnapshotWrite(ctx, string(snapshot.Kind), true)
	s.logger.Debug("snapshot saved", zap.String("id", id.String()), zap.String("kind", string(snapshot.Kind)))
	return nil
}

// Load returns the stored snapshot for id, or a not-found error.
func (s *PostgresSnapshotStore) Load(ctx context.Context, id string) (*notionmap.Snapshot, error) {
	key, ok := toUUID(id)
	if !ok {
		return nil, notionmap.NewInvalidIDError(id, nil)
	}

	query := fmt.Sprintf(`SELECT kind, payload, fetched_at FROM %s WHERE id = $1`, s.table)

	var (
		kind      string
		payload   []byte
		fetchedAt time.Time
	)
	if err := s.pool.QueryRow(ctx, query, key).Scan(&kind, &payload, &fetchedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notionmap.NewObjectNotFoundError(key.String())
		}
		return nil, fmt.Errorf("load snapshot %s: %w", key, err)
	}

	return &notionmap.Snapshot{
		ID:        key.String(),
		Kind:      notionmap.ObjectKind(kind),
		Payload:   payload,
		FetchedAt: fetchedAt,
	}, nil
}

// Close releases the pool.
func (s *PostgresSnapshotStore) Close() {
	s.pool.Close()
}
