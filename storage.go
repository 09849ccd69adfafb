package notionmap

import (
	"context"
	"encoding/json"
	"time"
)

// Snapshot is a raw remote payload as it was materialized.
type Snapshot struct {
	ID        string          `json:"id"`
	Kind      ObjectKind      `json:"kind"`
	Payload   json.RawMessage `json:"payload"`
	FetchedAt time.Time       `json:"fetched_at"`
}

// SnapshotStore persists fetched payloads so objects can be restored without the remote.
type SnapshotStore interface {
	Save(ctx context.Context, snapshot Snapshot) error
	Load(ctx context.Context, id string) (*Snapshot, error)
	Close()
}
