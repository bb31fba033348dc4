package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"starfieldpedia/internal/blob"
	"starfieldpedia/internal/index"
	"starfieldpedia/internal/merge"
	"starfieldpedia/internal/watch"
	"starfieldpedia/pkg/domain"
)

func newPlanetsCmd(a *app) *cobra.Command {
	var resource string
	cmd := &cobra.Command{
		Use:   "planets",
		Short: "List planets, optionally only those offering a resource",
		Long: `Lists every loaded planet in load order. With --resource only planets
whose merged availability includes the resource are listed; availability
contributed by fauna and flora counts.

Example:
  starfieldpedia planets --resource iron`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.load(cmd.Context()); err != nil {
				return err
			}
			if resource == "" {
				return a.renderPlanets(a.svc.Reset(), "", nil)
			}
			planets := a.svc.FilterByResource(resource)
			var suggestions []string
			if len(planets) == 0 {
				suggestions = a.svc.Suggest(resource)
			}
			return a.renderPlanets(planets, resource, suggestions)
		},
	}
	cmd.Flags().StringVarP(&resource, "resource", "r", "", "only planets offering this resource")
	return cmd
}

func newPlanetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "planet <system> <planet>",
		Short: "Show one planet with its resources and inhabitants",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd.Context()); err != nil {
				return err
			}
			p, ok := a.svc.Planet(args[0], args[1])
			if !ok {
				return domain.ErrNotFound{Entity: domain.EntityPlanet, ID: args[0] + "/" + args[1]}
			}
			return a.renderPlanet(p)
		},
	}
}

func newTreeCmd(a *app) *cobra.Command {
	var depth int
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the system, planet, resource and provenance hierarchy",
		Long: `Expands the hierarchical index down to --depth levels:
  1 systems, 2 planets, 3 resources, 4 organisms providing each resource.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if depth < 1 {
				return fmt.Errorf("depth must be at least 1, got %d", depth)
			}
			if err := a.load(cmd.Context()); err != nil {
				return err
			}
			root, err := a.svc.Root()
			if err != nil {
				return err
			}
			nodes := make([]treeNode, 0, len(root.Children))
			for _, child := range root.Children {
				n, err := a.expandTo(cmd.Context(), child, 1, depth)
				if err != nil {
					return err
				}
				nodes = append(nodes, n)
			}
			return a.renderTree(nodes)
		},
	}
	cmd.Flags().IntVarP(&depth, "depth", "d", 3, "levels to expand (1-4)")
	return cmd
}

// treeNode is a materialized subtree as printed by the tree command.
type treeNode struct {
	index.Descriptor
	Columns  []string   `json:"columns,omitempty"`
	Children []treeNode `json:"children,omitempty"`
}

func (a *app) expandTo(ctx context.Context, d index.Descriptor, level, depth int) (treeNode, error) {
	n := treeNode{Descriptor: d}
	if level >= depth || !d.Expandable {
		return n, nil
	}
	exp, err := a.svc.Expand(ctx, d.ID)
	if err != nil {
		return n, err
	}
	n.Descriptor = exp.Node
	n.Columns = exp.Columns
	for _, child := range exp.Children {
		c, err := a.expandTo(ctx, child, level+1, depth)
		if err != nil {
			return n, err
		}
		n.Children = append(n.Children, c)
	}
	return n, nil
}

func newResourcesCmd(a *app) *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "resources",
		Short: "List the resource catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch domain.Category(category) {
			case "", domain.CategoryInorganic, domain.CategoryOrganic:
			default:
				return fmt.Errorf("unknown category %q (valid: inorganic, organic)", category)
			}
			if err := a.open(cmd.Context()); err != nil {
				return err
			}
			defs := a.svc.Catalog().Definitions()
			if category != "" {
				filtered := defs[:0]
				for _, def := range defs {
					if def.Category == domain.Category(category) {
						filtered = append(filtered, def)
					}
				}
				defs = filtered
			}
			return a.renderResources(defs)
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "", "inorganic or organic")
	return cmd
}

func newSnapshotCmd(a *app) *cobra.Command {
	var restore bool
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Persist the current dataset, or inspect the last persisted one",
		Long: `Loads the dataset and saves it to the configured snapshot store
(STARFIELDPEDIA_SNAPSHOT_DRIVER). With --restore the source is not read; the
last snapshot is restored and summarized instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := a.open(ctx); err != nil {
				return err
			}
			if a.snapshots == nil {
				return fmt.Errorf("no snapshot store configured (driver %q)", a.cfg.Snapshot.Driver)
			}
			if restore {
				ok, err := a.svc.Restore(ctx)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("no snapshot saved yet")
				}
			} else if _, err := a.svc.Load(ctx); err != nil {
				return err
			}
			return a.renderSummary(a.svc)
		},
	}
	cmd.Flags().BoolVar(&restore, "restore", false, "restore the last snapshot instead of loading the source")
	return cmd
}

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Reload the dataset whenever a system document changes",
		Long: `Loads the dataset, then watches the filesystem source directory and
reloads after changes settle for the configured debounce window
(watch.debounce, STARFIELDPEDIA_WATCH_DEBOUNCE). With observability.listen
set, Prometheus metrics are served on /metrics and expvar counters on
/debug/vars. Runs until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := a.load(ctx); err != nil {
				return err
			}
			if a.store.Driver() != blob.DriverFilesystem {
				return fmt.Errorf("watch requires the fs blob driver, configured %q", a.store.Driver())
			}
			if err := a.renderSummary(a.svc); err != nil {
				return err
			}
			if addr := a.cfg.Observability.Listen; addr != "" {
				stop, err := a.serveMetrics(addr)
				if err != nil {
					return err
				}
				defer stop()
			}
			w, err := watch.New(a.cfg.Blob.Root, a.reload,
				watch.WithDebounce(a.cfg.GetWatchDebounce()),
				watch.WithLogger(a.log),
			)
			if err != nil {
				return err
			}
			defer w.Stop()
			if err := w.Start(ctx); err != nil {
				return fmt.Errorf("watch %s: %w", a.cfg.Blob.Root, err)
			}
			<-ctx.Done()
			return nil
		},
	}
}

func (a *app) reload(ctx context.Context) error {
	if _, err := a.svc.Load(ctx); err != nil {
		return err
	}
	return a.renderSummary(a.svc)
}

// resourceList renders a planet's merged availability, marking resources
// that only organisms supply.
func resourceList(p domain.Planet) string {
	names := merge.Available(p.Record)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		if !p.Record.Declared[name] {
			name += "*"
		}
		parts = append(parts, name)
	}
	return strings.Join(parts, ", ")
}
