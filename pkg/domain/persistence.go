package domain

import (
	"context"
	"time"
)

// SourceInfo fingerprints one document that contributed to a load.
type SourceInfo struct {
	Key          string    `json:"key"`
	ETag         string    `json:"etag,omitempty"`
	Size         int64     `json:"size_bytes"`
	LastModified time.Time `json:"last_modified"`
}

// Snapshot captures a successfully loaded system table so it can be restored
// without re-reading the dataset source.
type Snapshot struct {
	Generation string         `json:"generation"`
	LoadedAt   time.Time      `json:"loaded_at"`
	Systems    []SystemRecord `json:"systems"`
	Sources    []SourceInfo   `json:"sources,omitempty"`
}

// SnapshotStore is the minimal abstraction over durable snapshot backends.
// Load reports ok=false when no snapshot has been saved yet.
type SnapshotStore interface {
	Save(ctx context.Context, snapshot Snapshot) error
	Load(ctx context.Context) (snapshot Snapshot, ok bool, err error)
	Close() error
}
