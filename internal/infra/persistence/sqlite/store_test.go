package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"starfieldpedia/pkg/domain"
)

func sampleSnapshot(gen string) domain.Snapshot {
	return domain.Snapshot{
		Generation: gen,
		LoadedAt:   time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC),
		Systems: []domain.SystemRecord{{
			Name:   "Tau Ceti",
			Source: "tau_ceti.json",
			Planets: []domain.PlanetRecord{{
				Name:      "Tau Ceti II",
				Gravity:   0.85,
				Declared:  map[string]bool{"iron": true},
				Resources: map[string]bool{"iron": true, "sealant": true},
				Flora:     []domain.Organism{{Name: "Glow Moss", Kind: domain.KindFlora, Resource: "sealant"}},
			}},
		}},
		Sources: []domain.SourceInfo{{Key: "tau_ceti.json", ETag: "e1", Size: 42}},
	}
}

func TestSQLiteStorePersistAndReload(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "state.db")
	store, err := NewStore(path)
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	if _, ok, err := store.Load(ctx); err != nil || ok {
		t.Fatalf("fresh database should hold no snapshot: %v %v", ok, err)
	}
	if err := store.Save(ctx, sampleSnapshot("g1")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Save(ctx, sampleSnapshot("g2")); err != nil {
		t.Fatalf("second save: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := NewStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	t.Cleanup(func() { _ = reopened.Close() })
	got, ok, err := reopened.Load(ctx)
	if err != nil || !ok {
		t.Fatalf("load: %v %v", ok, err)
	}
	if diff := cmp.Diff(sampleSnapshot("g2"), got); diff != "" {
		t.Fatalf("round trip (-want +got):\n%s", diff)
	}
	var rows int
	if err := reopened.DB().QueryRow(`SELECT COUNT(*) FROM state`).Scan(&rows); err != nil {
		t.Fatalf("count: %v", err)
	}
	if rows != len(buckets) {
		t.Fatalf("expected one row per bucket, got %d", rows)
	}
	if reopened.Path() != path {
		t.Fatalf("unexpected path %s", reopened.Path())
	}
}

func TestSQLiteStoreCorruptBucket(t *testing.T) {
	store, err := NewStore(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	if _, err := store.DB().Exec(`INSERT INTO state(bucket,payload) VALUES('systems', ?)`, []byte("{not json")); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, _, err := store.Load(context.Background()); err == nil {
		t.Fatalf("expected decode error")
	}
}
