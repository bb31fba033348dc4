// Command starfieldpedia loads planetary system documents and answers
// resource queries over them from the command line.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"starfieldpedia/internal/blob"
	"starfieldpedia/internal/catalog"
	"starfieldpedia/internal/config"
	"starfieldpedia/internal/core"
	"starfieldpedia/internal/loader"
	"starfieldpedia/internal/platform/logger"
	"starfieldpedia/pkg/domain"
)

var exitFunc = os.Exit

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	exitFunc(code)
}

func cli(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	err := root.ExecuteContext(ctx)
	a.close()
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "starfieldpedia: %v\n", err)
		return 1
	}
	return 0
}

// app carries the per-invocation wiring shared by the subcommands.
type app struct {
	configPath  string
	jsonOutput  bool
	dumpMetrics bool
	stdout      io.Writer

	cfg       *config.Config
	log       *logger.Logger
	store     blob.Store
	snapshots domain.SnapshotStore
	registry  *prometheus.Registry
	metrics   *core.PrometheusRecorder
	expvar    *core.ExpvarMetricsRecorder
	traceFile *os.File
	svc       *core.Service
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "starfieldpedia",
		Short: "Query planetary resources across star systems",
		Long: `Loads every system document from the configured source, merges planet
and organism resources and answers questions about them.

Configuration is read from --config (YAML) and STARFIELDPEDIA_* environment
variables, the latter taking precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to a YAML config file")
	root.PersistentFlags().BoolVar(&a.jsonOutput, "json", false, "emit JSON instead of text")
	root.PersistentFlags().BoolVar(&a.dumpMetrics, "metrics", false, "print Prometheus metrics after the command")
	root.PersistentPostRunE = func(cmd *cobra.Command, _ []string) error {
		if !a.dumpMetrics || a.registry == nil {
			return nil
		}
		return writeMetrics(cmd.OutOrStdout(), a.registry)
	}

	root.AddCommand(
		newPlanetsCmd(a),
		newPlanetCmd(a),
		newTreeCmd(a),
		newResourcesCmd(a),
		newSnapshotCmd(a),
		newWatchCmd(a),
	)
	return root
}

// open builds the service from configuration without loading any documents.
func (a *app) open(ctx context.Context) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	log, err := logger.New(cfg.Logging.Mode, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	a.log = log

	store, err := blob.Open(ctx, cfg.BlobOptions())
	if err != nil {
		return fmt.Errorf("open document source: %w", err)
	}
	a.store = store

	cat, err := catalog.Load(ctx, store, cfg.Catalog.InorganicKey, cfg.Catalog.OrganicKey)
	switch {
	case errors.Is(err, blob.ErrNotExist):
		log.Warn("resource catalog missing, resource rows will carry names only", "error", err)
		cat = catalog.Empty()
	case err != nil:
		return fmt.Errorf("load catalog: %w", err)
	}

	a.registry = prometheus.NewRegistry()
	a.metrics, err = core.NewPrometheusRecorder(a.registry)
	if err != nil {
		return err
	}

	snapshots, err := core.OpenSnapshotStore(ctx, cfg.SnapshotOptions())
	if err != nil {
		return fmt.Errorf("open snapshot store: %w", err)
	}
	a.snapshots = snapshots

	var recorder core.MetricsRecorder = a.metrics
	if cfg.Observability.Listen != "" {
		a.expvar = core.NewExpvarMetricsRecorder("")
		recorder = core.MultiMetricsRecorder(a.metrics, a.expvar)
	}

	ld := loader.New(store,
		loader.WithLogger(log),
		loader.WithExclude(cfg.Catalog.InorganicKey, cfg.Catalog.OrganicKey),
		loader.WithOutcomeHook(a.metrics.DocumentOutcome),
	)
	opts := []core.ServiceOption{
		core.WithLogger(log),
		core.WithCatalog(cat),
		core.WithPrefix(cfg.Dataset.Prefix),
		core.WithMetricsRecorder(recorder),
	}
	if snapshots != nil {
		opts = append(opts, core.WithSnapshotStore(snapshots))
	}
	if path := cfg.Observability.TracePath; path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open trace log: %w", err)
		}
		a.traceFile = f
		opts = append(opts, core.WithTracer(core.NewJSONTracer(f)))
	}
	a.svc = core.NewService(ld, opts...)
	return nil
}

// load opens the service and loads the dataset, falling back to the last
// snapshot when the source cannot be listed.
func (a *app) load(ctx context.Context) error {
	if err := a.open(ctx); err != nil {
		return err
	}
	if _, err := a.svc.Load(ctx); err != nil {
		restored, rerr := a.svc.Restore(ctx)
		if rerr != nil || !restored {
			return fmt.Errorf("load dataset: %w", err)
		}
		a.log.Warn("dataset source unavailable, serving last snapshot", "error", err)
	}
	return nil
}

func (a *app) close() {
	if a.snapshots != nil {
		if err := a.snapshots.Close(); err != nil && a.log != nil {
			a.log.Warn("closing snapshot store failed", "error", err)
		}
	}
	if a.traceFile != nil {
		if err := a.traceFile.Close(); err != nil && a.log != nil {
			a.log.Warn("closing trace log failed", "error", err)
		}
	}
	if a.log != nil {
		a.log.Sync()
	}
}
