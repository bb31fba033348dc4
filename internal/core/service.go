// Package core hosts the query service: it owns the loaded planet table and
// its hierarchical index, swaps both atomically on reload and answers
// expand, collapse and resource filter queries.
package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"starfieldpedia/internal/catalog"
	"starfieldpedia/internal/index"
	"starfieldpedia/internal/loader"
	"starfieldpedia/pkg/domain"
)

const suggestionLimit = 5

// DocumentLoader produces a planet table from the dataset source.
// *loader.Loader satisfies it.
type DocumentLoader interface {
	LoadAll(ctx context.Context, prefix string) (*loader.Table, loader.Report, error)
}

// Expansion is the answer to an expand query: the node after the
// operation, its children and, for planets, the resource column headers.
type Expansion struct {
	Node     index.Descriptor   `json:"node"`
	Children []index.Descriptor `json:"children"`
	Columns  []string           `json:"columns,omitempty"`
}

type snapshotState struct {
	table      *loader.Table
	tree       *index.Tree
	generation string
	loadedAt   time.Time
	report     loader.Report
}

// Service answers queries over the most recent load. It is safe for
// concurrent use; a reload replaces the table and index together.
type Service struct {
	loader    DocumentLoader
	catalog   *catalog.Catalog
	snapshots domain.SnapshotStore
	prefix    string

	log            Logger
	clock          Clock
	metrics        MetricsRecorder
	tracer         Tracer
	nextGeneration func() string

	mu    sync.RWMutex
	state *snapshotState
}

// NewService constructs a service reading through ld. Nothing is loaded
// until Load or Restore is called.
func NewService(ld DocumentLoader, opts ...ServiceOption) *Service {
	s := &Service{
		loader:         ld,
		catalog:        catalog.Empty(),
		log:            noopLogger{},
		clock:          systemClock{},
		metrics:        noopMetrics{},
		tracer:         noopTracer{},
		nextGeneration: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) run(ctx context.Context, op string, fn func(context.Context) error) error {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, op)
	err := fn(ctx)
	span.End(err)
	s.metrics.Observe(ctx, op, err == nil, time.Since(start))
	if err != nil {
		s.log.Warn("operation failed", "op", op, "error", err)
	} else {
		s.log.Debug("operation completed", "op", op)
	}
	return err
}

// Load reads the dataset, builds a fresh index and swaps both in. The
// previous table stays active when loading fails. When a snapshot store is
// configured the new table is persisted; a persistence failure is logged
// and does not fail the load.
func (s *Service) Load(ctx context.Context) (loader.Report, error) {
	var report loader.Report
	err := s.run(ctx, "load", func(ctx context.Context) error {
		if s.loader == nil {
			return fmt.Errorf("no document loader configured")
		}
		table, rep, err := s.loader.LoadAll(ctx, s.prefix)
		if err != nil {
			return err
		}
		report = rep
		st := s.install(table, rep)
		s.log.Info("dataset loaded",
			"generation", st.generation,
			"systems", len(table.Systems),
			"planets", len(table.Planets),
			"skipped", rep.ErrorCount())
		s.persist(ctx, st)
		return nil
	})
	return report, err
}

// Restore hydrates the service from the last persisted snapshot. It reports
// false when no store is configured or nothing has been saved yet.
func (s *Service) Restore(ctx context.Context) (bool, error) {
	var restored bool
	err := s.run(ctx, "restore", func(ctx context.Context) error {
		if s.snapshots == nil {
			return nil
		}
		snap, ok, err := s.snapshots.Load(ctx)
		if err != nil {
			return fmt.Errorf("load snapshot: %w", err)
		}
		if !ok {
			return nil
		}
		table := loader.NewTable(snap.Systems, snap.Sources)
		st := s.install(table, loader.Report{Documents: len(snap.Sources), Loaded: len(snap.Sources)})
		s.log.Info("snapshot restored", "generation", st.generation, "from", snap.Generation, "planets", len(table.Planets))
		restored = true
		return nil
	})
	return restored, err
}

func (s *Service) install(table *loader.Table, report loader.Report) *snapshotState {
	gen := s.nextGeneration()
	st := &snapshotState{
		table:      table,
		tree:       index.New(table, s.catalog, gen),
		generation: gen,
		loadedAt:   s.clock.Now(),
		report:     report,
	}
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
	return st
}

func (s *Service) persist(ctx context.Context, st *snapshotState) {
	if s.snapshots == nil {
		return
	}
	snap := domain.Snapshot{
		Generation: st.generation,
		LoadedAt:   st.loadedAt,
		Systems:    st.table.Systems,
		Sources:    st.table.Sources,
	}
	if err := s.snapshots.Save(ctx, snap); err != nil {
		s.log.Error("snapshot save failed", "generation", st.generation, "error", err)
	}
}

func (s *Service) current() *snapshotState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Generation identifies the active load; empty before the first load.
func (s *Service) Generation() string {
	if st := s.current(); st != nil {
		return st.generation
	}
	return ""
}

// LoadedAt reports when the active table was installed.
func (s *Service) LoadedAt() time.Time {
	if st := s.current(); st != nil {
		return st.loadedAt
	}
	return time.Time{}
}

// Report returns the load report of the active table.
func (s *Service) Report() loader.Report {
	if st := s.current(); st != nil {
		return st.report
	}
	return loader.Report{}
}

// Catalog returns the resource catalog in use.
func (s *Service) Catalog() *catalog.Catalog { return s.catalog }

// Systems returns the loaded system records in load order.
func (s *Service) Systems() []domain.SystemRecord {
	st := s.current()
	if st == nil {
		return nil
	}
	return st.table.SystemRecords()
}

// Root describes the index root and its system children as currently
// materialized.
func (s *Service) Root() (Expansion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state == nil {
		return Expansion{}, fmt.Errorf("no dataset loaded")
	}
	return rootExpansion(s.state.tree)
}

// BuildIndex discards every materialized node and rebuilds the index from
// the active table. Node IDs keep the active generation.
func (s *Service) BuildIndex() (Expansion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return Expansion{}, fmt.Errorf("no dataset loaded")
	}
	next := *s.state
	next.tree = index.New(next.table, s.catalog, next.generation)
	s.state = &next
	return rootExpansion(next.tree)
}

func rootExpansion(tree *index.Tree) (Expansion, error) {
	root := tree.Root()
	children, err := tree.Children(root.ID)
	if err != nil {
		return Expansion{}, err
	}
	return Expansion{Node: root, Children: children}, nil
}

// Expand materializes the children of the node with the given ID. IDs from a
// previous load fail with domain.ErrNotFound.
func (s *Service) Expand(ctx context.Context, id string) (Expansion, error) {
	var out Expansion
	err := s.run(ctx, "expand", func(context.Context) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.state == nil {
			return domain.ErrNotFound{Entity: domain.EntityNode, ID: id}
		}
		children, err := s.state.tree.Expand(id)
		if err != nil {
			return err
		}
		node, err := s.state.tree.Find(id)
		if err != nil {
			return err
		}
		out = Expansion{Node: node, Children: children}
		if node.Kind == index.KindPlanet && node.State == index.Expanded {
			out.Columns = append([]string(nil), index.Columns...)
		}
		return nil
	})
	return out, err
}

// Collapse destroys the descendants of the node with the given ID.
func (s *Service) Collapse(ctx context.Context, id string) error {
	return s.run(ctx, "collapse", func(context.Context) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.state == nil {
			return domain.ErrNotFound{Entity: domain.EntityNode, ID: id}
		}
		return s.state.tree.Collapse(id)
	})
}

// FilterByResource returns every planet whose merged availability has
// resource set, in load order. Unknown resources yield an empty slice.
func (s *Service) FilterByResource(resource string) []domain.Planet {
	st := s.current()
	if st == nil {
		return []domain.Planet{}
	}
	return st.table.Filter(resource)
}

// Reset returns every planet in load order.
func (s *Service) Reset() []domain.Planet {
	st := s.current()
	if st == nil {
		return []domain.Planet{}
	}
	return st.table.All()
}

// Planet looks a planet up by system and planet name, ignoring case.
func (s *Service) Planet(system, name string) (domain.Planet, bool) {
	st := s.current()
	if st == nil {
		return domain.Planet{}, false
	}
	return st.table.Planet(system, name)
}

// Suggest proposes catalog resource names close to name.
func (s *Service) Suggest(name string) []string {
	return s.catalog.Suggest(name, suggestionLimit)
}
