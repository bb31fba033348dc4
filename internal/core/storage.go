package core

import (
	"context"
	"fmt"

	"starfieldpedia/internal/infra/persistence/memory"
	"starfieldpedia/internal/infra/persistence/postgres"
	"starfieldpedia/internal/infra/persistence/sqlite"
	"starfieldpedia/pkg/domain"
)

// SnapshotDriver identifies a snapshot persistence backend.
type SnapshotDriver string

const (
	SnapshotNone     SnapshotDriver = "none"     // snapshots disabled
	SnapshotMemory   SnapshotDriver = "memory"   // in-process only (tests / ephemeral)
	SnapshotSQLite   SnapshotDriver = "sqlite"   // embedded sqlite file
	SnapshotPostgres SnapshotDriver = "postgres" // PostgreSQL server
)

// SnapshotOptions selects and configures a snapshot backend.
type SnapshotOptions struct {
	Driver      SnapshotDriver
	SQLitePath  string
	PostgresDSN string
}

// OpenSnapshotStore opens the configured backend. The none driver (and an
// empty driver) returns a nil store, which disables snapshots.
func OpenSnapshotStore(ctx context.Context, opts SnapshotOptions) (domain.SnapshotStore, error) {
	switch opts.Driver {
	case "", SnapshotNone:
		return nil, nil
	case SnapshotMemory:
		return memory.NewStore(), nil
	case SnapshotSQLite:
		store, err := sqlite.NewStore(opts.SQLitePath)
		if err != nil {
			return nil, err
		}
		return store, nil
	case SnapshotPostgres:
		store, err := postgres.NewStore(ctx, opts.PostgresDSN)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown snapshot driver %s", opts.Driver)
	}
}
