// Package loader reads per-system JSON documents from a blob store,
// normalizes and decodes them into planet records and merges each planet's
// resource availability. Malformed documents are skipped and reported.
package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"starfieldpedia/internal/blob"
	"starfieldpedia/internal/normalize"
	"starfieldpedia/internal/platform/logger"
	"starfieldpedia/pkg/domain"
)

// OutcomeLoaded is passed to the outcome hook for a document that loaded.
const OutcomeLoaded = "loaded"

// Report summarizes one LoadAll call.
type Report struct {
	Documents      int
	Loaded         int
	// SkippedEntries counts planet entries left out of documents that
	// otherwise loaded.
	SkippedEntries int
	Errors         []*DocumentError
}

// ErrorCount returns the number of skipped documents.
func (r Report) ErrorCount() int { return len(r.Errors) }

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger used to report skipped documents.
func WithLogger(l *logger.Logger) Option {
	return func(ld *Loader) {
		if l != nil {
			ld.log = l
		}
	}
}

// WithExclude skips the given keys, e.g. catalog documents that share the
// dataset store.
func WithExclude(keys ...string) Option {
	return func(ld *Loader) {
		for _, k := range keys {
			ld.exclude[strings.ToLower(k)] = true
		}
	}
}

// WithOutcomeHook registers fn to be called once per document with
// OutcomeLoaded or the ErrorKind that caused it to be skipped.
func WithOutcomeHook(fn func(outcome string)) Option {
	return func(ld *Loader) { ld.outcome = fn }
}

// Loader reads every .json document of a store.
type Loader struct {
	store   blob.Store
	log     *logger.Logger
	exclude map[string]bool
	outcome func(string)
}

// New constructs a loader over store.
func New(store blob.Store, opts ...Option) *Loader {
	ld := &Loader{store: store, log: logger.Nop(), exclude: map[string]bool{}}
	for _, opt := range opts {
		opt(ld)
	}
	return ld
}

// LoadAll reads every document under prefix whose key ends in .json. Only a
// failure to list the store is returned as an error; per-document failures
// are logged, counted in the report and the document is skipped.
func (l *Loader) LoadAll(ctx context.Context, prefix string) (*Table, Report, error) {
	infos, err := l.store.List(ctx, prefix)
	if err != nil {
		return nil, Report{}, fmt.Errorf("list %s documents: %w", l.store.Driver(), err)
	}
	var (
		report  Report
		systems []domain.SystemRecord
		sources []domain.SourceInfo
	)
	for _, info := range infos {
		if !strings.HasSuffix(strings.ToLower(info.Key), ".json") || l.exclude[strings.ToLower(info.Key)] {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, report, err
		}
		report.Documents++
		recs, src, skipped, derr := l.loadDocument(ctx, info.Key)
		if derr != nil {
			report.Errors = append(report.Errors, derr)
			l.log.Warn("skipping document", "key", derr.Key, "kind", string(derr.Kind), "error", derr.Err)
			l.observe(string(derr.Kind))
			continue
		}
		report.Loaded++
		report.SkippedEntries += skipped
		systems = append(systems, recs...)
		sources = append(sources, src)
		l.observe(OutcomeLoaded)
	}
	table := NewTable(systems, sources)
	l.log.Debug("dataset loaded", "documents", report.Documents, "loaded", report.Loaded, "planets", len(table.Planets))
	return table, report, nil
}

func (l *Loader) loadDocument(ctx context.Context, key string) ([]domain.SystemRecord, domain.SourceInfo, int, *DocumentError) {
	info, rc, err := l.store.Get(ctx, key)
	if err != nil {
		return nil, domain.SourceInfo{}, 0, &DocumentError{Key: key, Kind: ReadError, Err: err}
	}
	body, err := io.ReadAll(rc)
	_ = rc.Close()
	if err != nil {
		return nil, domain.SourceInfo{}, 0, &DocumentError{Key: key, Kind: ReadError, Err: err}
	}
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, domain.SourceInfo{}, 0, &DocumentError{Key: key, Kind: ParseError, Err: err}
	}
	systems, skipped, derr := decodeDocument(key, normalize.Keys(doc))
	if derr != nil {
		return nil, domain.SourceInfo{}, 0, derr
	}
	for _, entry := range skipped {
		l.log.Warn("skipping planet entry", "key", key, "entry", entry)
	}
	return systems, domain.SourceInfo{Key: key, ETag: info.ETag, Size: info.Size, LastModified: info.LastModified}, len(skipped), nil
}

func (l *Loader) observe(outcome string) {
	if l.outcome != nil {
		l.outcome(outcome)
	}
}
