package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"starfieldpedia/internal/infra/persistence/postgres/testutil"
	"starfieldpedia/pkg/domain"
)

func openStub(t *testing.T) (*Store, *testutil.StubConn) {
	t.Helper()
	db, conn := testutil.NewStubDB()
	restore := OverrideSQLOpen(func(driver, dsn string) (*sql.DB, error) {
		if driver != defaultDriver || dsn != defaultDSN {
			t.Fatalf("unexpected open %s %s", driver, dsn)
		}
		return db, nil
	})
	t.Cleanup(restore)
	store, err := NewStore(context.Background(), "")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return store, conn
}

func TestNewStoreEnsuresStateTable(t *testing.T) {
	_, conn := openStub(t)
	if len(conn.Execs) != 1 || !strings.Contains(conn.Execs[0], "CREATE TABLE IF NOT EXISTS state") {
		t.Fatalf("expected state table DDL, got %v", conn.Execs)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, conn := openStub(t)
	if _, ok, err := store.Load(ctx); err != nil || ok {
		t.Fatalf("empty table should report no snapshot: %v %v", ok, err)
	}
	snap := domain.Snapshot{
		Generation: "g7",
		LoadedAt:   time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC),
		Systems: []domain.SystemRecord{{Name: "Alpha", Planets: []domain.PlanetRecord{{
			Name: "Rigel-II", Gravity: 1, Resources: map[string]bool{"iron": true},
		}}}},
		Sources: []domain.SourceInfo{{Key: "alpha.json", Size: 3}},
	}
	if err := store.Save(ctx, snap); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Save(ctx, snap); err != nil {
		t.Fatalf("second save: %v", err)
	}
	if got := len(conn.Tables["state"]); got != len(postgresBuckets) {
		t.Fatalf("expected one row per bucket, got %d", got)
	}
	got, ok, err := store.Load(ctx)
	if err != nil || !ok {
		t.Fatalf("load: %v %v", ok, err)
	}
	if diff := cmp.Diff(snap, got); diff != "" {
		t.Fatalf("round trip (-want +got):\n%s", diff)
	}
}

func TestSaveFailures(t *testing.T) {
	ctx := context.Background()
	store, conn := openStub(t)
	conn.FailBegin = true
	if err := store.Save(ctx, domain.Snapshot{}); err == nil || !strings.Contains(err.Error(), "begin") {
		t.Fatalf("expected begin failure, got %v", err)
	}
	conn.FailBegin = false
	conn.FailCommit = true
	if err := store.Save(ctx, domain.Snapshot{}); err == nil || !strings.Contains(err.Error(), "commit") {
		t.Fatalf("expected commit failure, got %v", err)
	}
	conn.FailCommit = false
	conn.FailExec = true
	if err := store.Save(ctx, domain.Snapshot{}); err == nil || !strings.Contains(err.Error(), "upsert meta") {
		t.Fatalf("expected upsert failure, got %v", err)
	}
}

func TestLoadFailures(t *testing.T) {
	ctx := context.Background()
	store, conn := openStub(t)
	conn.FailQuery = true
	if _, _, err := store.Load(ctx); err == nil {
		t.Fatalf("expected query failure")
	}
	conn.FailQuery = false
	conn.Tables["state"] = []map[string]any{{"bucket": "systems", "payload": []byte("{")}}
	if _, _, err := store.Load(ctx); err == nil || !strings.Contains(err.Error(), "decode systems") {
		t.Fatalf("expected decode failure, got %v", err)
	}
}

func TestNewStoreErrors(t *testing.T) {
	boom := errors.New("dial refused")
	restore := OverrideSQLOpen(func(string, string) (*sql.DB, error) { return nil, boom })
	if _, err := NewStore(context.Background(), "postgres://x"); !errors.Is(err, boom) {
		t.Fatalf("expected open error, got %v", err)
	}
	restore()

	db, conn := testutil.NewStubDB()
	conn.FailPing = true
	restore = OverrideSQLOpen(func(string, string) (*sql.DB, error) { return db, nil })
	defer restore()
	if _, err := NewStore(context.Background(), "postgres://x"); err == nil || !strings.Contains(err.Error(), "ping") {
		t.Fatalf("expected ping error, got %v", err)
	}
}
