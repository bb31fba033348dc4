package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"starfieldpedia/pkg/domain"
)

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	if _, ok, err := store.Load(ctx); err != nil || ok {
		t.Fatalf("empty store should report no snapshot: %v %v", ok, err)
	}
	snap := domain.Snapshot{
		Generation: "g1",
		LoadedAt:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Systems: []domain.SystemRecord{{
			Name:    "Alpha",
			Source:  "alpha.json",
			Planets: []domain.PlanetRecord{{Name: "Rigel-II", Gravity: 1, Resources: map[string]bool{"iron": true}}},
		}},
		Sources: []domain.SourceInfo{{Key: "alpha.json", ETag: "abc", Size: 10}},
	}
	if err := store.Save(ctx, snap); err != nil {
		t.Fatalf("save: %v", err)
	}
	snap.Systems[0].Name = "mutated"
	got, ok, err := store.Load(ctx)
	if err != nil || !ok {
		t.Fatalf("load: %v %v", ok, err)
	}
	if got.Systems[0].Name != "Alpha" {
		t.Fatalf("store must not share state with the caller")
	}
	snap.Systems[0].Name = "Alpha"
	if diff := cmp.Diff(snap, got); diff != "" {
		t.Fatalf("round trip (-want +got):\n%s", diff)
	}
	if store.Saves() != 1 || store.Close() != nil {
		t.Fatalf("unexpected save count %d", store.Saves())
	}
}

func TestStoreHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	store := NewStore()
	if err := store.Save(ctx, domain.Snapshot{}); err == nil {
		t.Fatalf("expected cancelled save to fail")
	}
	if _, _, err := store.Load(ctx); err == nil {
		t.Fatalf("expected cancelled load to fail")
	}
}
