package integration

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"starfieldpedia/internal/blob"
	"starfieldpedia/internal/catalog"
	"starfieldpedia/internal/core"
	"starfieldpedia/internal/index"
	"starfieldpedia/internal/infra/persistence/memory"
	"starfieldpedia/internal/infra/persistence/sqlite"
	"starfieldpedia/internal/loader"
	"starfieldpedia/pkg/domain"
)

var dataset = map[string]string{
	"systems/alpha.json":       `{"systems": [{"name": "Alpha", "planets": [{"name": "Rigel-II", "resources": {"iron": false, "lead": true}, "fauna": [{"name": "Crag Hopper", "temperament": "Skittish", "biomes": ["Hills"], "outpost": true, "resource": "iron", "resources": {"iron": true}}]}, {"name": "Rigel-III", "resources": {"water": true}}]}]}`,
	"systems/beta.json":        `{"system": {"name": "Beta", "planets": [{"name": "B1", "resources": {"Lead": true}, "flora": [{"name": "Glow Moss", "biomes": "Swamp", "resources": {"Sealant": true}}]}]}}`,
	"systems/broken.json":      `{"systems": [`,
	"systems/readme.txt":       `not a system document`,
	"inorganic_resources.json": `{"Iron": {"element_name": "Fe", "rarity": "Common"}, "Lead": {"element_name": "Pb"}, "Water": {"element_name": "H2O"}}`,
	"organic_resources.json":   `{"Sealant": {"rarity": "Uncommon"}}`,
	"unrelated/elsewhere.json": `{"systems": [{"name": "Hidden", "planets": []}]}`,
}

// TestIntegrationSmoke runs the full read path (document source, catalog,
// loader, merge, index, service, snapshot) for every in-process blob driver
// and snapshot backend.
func TestIntegrationSmoke(t *testing.T) {
	ctx := context.Background()

	blobVariants := []struct {
		name string
		open func(t *testing.T) blob.Store
	}{
		{
			name: "memory-blob",
			open: func(_ *testing.T) blob.Store { return blob.NewMemory() },
		},
		{
			name: "filesystem-blob",
			open: func(t *testing.T) blob.Store {
				fs, err := blob.NewFilesystem(t.TempDir())
				if err != nil {
					t.Fatalf("new filesystem blob: %v", err)
				}
				return fs
			},
		},
		{
			name: "mock-s3-blob",
			open: func(_ *testing.T) blob.Store { return blob.NewMockS3ForTests() },
		},
	}

	snapshotVariants := []struct {
		name string
		open func(t *testing.T) domain.SnapshotStore
	}{
		{
			name: "memory-snapshots",
			open: func(_ *testing.T) domain.SnapshotStore { return memory.NewStore() },
		},
		{
			name: "sqlite-snapshots",
			open: func(t *testing.T) domain.SnapshotStore {
				s, err := sqlite.NewStore(filepath.Join(t.TempDir(), "snap.db"))
				if err != nil {
					t.Fatalf("new sqlite store: %v", err)
				}
				return s
			},
		},
	}

	for _, bv := range blobVariants {
		for _, sv := range snapshotVariants {
			t.Run(bv.name+"/"+sv.name, func(t *testing.T) {
				bs := bv.open(t)
				for key, body := range dataset {
					if _, err := bs.Put(ctx, key, strings.NewReader(body), blob.PutOptions{ContentType: "application/json"}); err != nil {
						t.Fatalf("blob put %s: %v", key, err)
					}
				}
				snaps := sv.open(t)
				t.Cleanup(func() { _ = snaps.Close() })

				cat, err := catalog.Load(ctx, bs, "", "")
				if err != nil {
					t.Fatalf("catalog: %v", err)
				}
				metricsRecorder := core.NewExpvarMetricsRecorder("")
				var traceBuffer bytes.Buffer
				tracer := core.NewJSONTracer(&traceBuffer)
				svc := core.NewService(loader.New(bs),
					core.WithCatalog(cat),
					core.WithPrefix("systems/"),
					core.WithSnapshotStore(snaps),
					core.WithMetricsRecorder(metricsRecorder),
					core.WithTracer(tracer),
				)

				report, err := svc.Load(ctx)
				if err != nil {
					t.Fatalf("load: %v", err)
				}
				if report.Documents != 3 || report.Loaded != 2 || report.ErrorCount() != 1 || report.Errors[0].Kind != loader.ParseError {
					t.Fatalf("unexpected report %+v", report)
				}
				if got := svc.FilterByResource("iron"); len(got) != 1 || got[0].Name() != "Rigel-II" {
					t.Fatalf("iron filter: %+v", got)
				}
				if got := svc.FilterByResource("sealant"); len(got) != 1 || got[0].System != "Beta" {
					t.Fatalf("sealant filter: %+v", got)
				}

				// Walk system -> planet -> resource header -> provenance leaf.
				root, err := svc.Root()
				if err != nil || len(root.Children) != 2 {
					t.Fatalf("root: %+v %v", root, err)
				}
				sys, err := svc.Expand(ctx, root.Children[0].ID)
				if err != nil {
					t.Fatalf("expand system: %v", err)
				}
				planet, err := svc.Expand(ctx, sys.Children[0].ID)
				if err != nil {
					t.Fatalf("expand planet: %v", err)
				}
				if len(planet.Columns) != len(index.Columns) || len(planet.Children) != 2 {
					t.Fatalf("planet expansion: %+v", planet)
				}
				var ironID string
				for _, h := range planet.Children {
					if strings.EqualFold(h.Key, "iron") {
						ironID = h.ID
					}
				}
				leaves, err := svc.Expand(ctx, ironID)
				if err != nil || len(leaves.Children) != 1 || leaves.Children[0].Provenance == nil || leaves.Children[0].Provenance.Name != "Crag Hopper" {
					t.Fatalf("iron provenance: %+v %v", leaves, err)
				}

				// A fresh service restores the same table from the snapshot.
				restored := core.NewService(nil, core.WithCatalog(cat), core.WithSnapshotStore(snaps))
				ok, err := restored.Restore(ctx)
				if err != nil || !ok {
					t.Fatalf("restore: %v %v", ok, err)
				}
				if len(restored.Reset()) != len(svc.Reset()) || restored.Generation() == svc.Generation() {
					t.Fatalf("restored %d planets gen %s, source %d gen %s",
						len(restored.Reset()), restored.Generation(), len(svc.Reset()), svc.Generation())
				}

				// Observability exporters captured the operations.
				stats := metricsRecorder.Snapshot().Operations
				if stats["load"].Success != 1 || stats["expand"].Success != 3 {
					t.Fatalf("unexpected metrics %+v", stats)
				}
				if traceBuffer.Len() == 0 || len(tracer.Entries()) != 4 {
					t.Fatalf("expected 4 trace entries, got %+v", tracer.Entries())
				}
			})
		}
	}

	if os.Getenv("STARFIELDPEDIA_BLOB_DRIVER") != "" || os.Getenv("STARFIELDPEDIA_SNAPSHOT_DRIVER") != "" {
		t.Fatalf("expected no test-induced env leakage")
	}
}
