package loader

import (
	"starfieldpedia/internal/normalize"
	"starfieldpedia/pkg/domain"
)

// Table is the flat result of a load: systems in document order and every
// planet tagged with the system it was declared in.
type Table struct {
	Systems []domain.SystemRecord
	Planets []domain.Planet
	Sources []domain.SourceInfo
}

// NewTable flattens systems into a table. It is used both by LoadAll and when
// restoring a persisted snapshot.
func NewTable(systems []domain.SystemRecord, sources []domain.SourceInfo) *Table {
	t := &Table{Systems: systems, Sources: sources}
	for si, sys := range systems {
		for pi, rec := range sys.Planets {
			t.Planets = append(t.Planets, domain.Planet{
				System:      sys.Name,
				SystemIndex: si,
				Index:       pi,
				Record:      rec,
			})
		}
	}
	return t
}

// Rows handed out by Planet, System, Filter and All are deep copies; the
// table itself is never reachable through them.

// Planet finds a planet by system and planet name, ignoring case. When
// system names repeat across documents the first match wins.
func (t *Table) Planet(system, name string) (domain.Planet, bool) {
	if t == nil {
		return domain.Planet{}, false
	}
	sys, pn := normalize.Name(system), normalize.Name(name)
	for _, p := range t.Planets {
		if normalize.Name(p.System) == sys && normalize.Name(p.Record.Name) == pn {
			return p.Clone(), true
		}
	}
	return domain.Planet{}, false
}

// SystemCount returns the number of loaded systems.
func (t *Table) SystemCount() int {
	if t == nil {
		return 0
	}
	return len(t.Systems)
}

// System returns the system at ordinal i.
func (t *Table) System(i int) (domain.SystemRecord, bool) {
	if t == nil || i < 0 || i >= len(t.Systems) {
		return domain.SystemRecord{}, false
	}
	return t.Systems[i].Clone(), true
}

// Filter returns the planets whose merged availability marks resource true,
// in load order. The result is never nil.
func (t *Table) Filter(resource string) []domain.Planet {
	out := make([]domain.Planet, 0)
	if t == nil {
		return out
	}
	for _, p := range t.Planets {
		if p.Record.HasResource(resource) {
			out = append(out, p.Clone())
		}
	}
	return out
}

// All returns a deep copy of every planet in load order.
func (t *Table) All() []domain.Planet {
	if t == nil {
		return []domain.Planet{}
	}
	out := make([]domain.Planet, len(t.Planets))
	for i, p := range t.Planets {
		out[i] = p.Clone()
	}
	return out
}

// SystemRecords returns a deep copy of every system in load order.
func (t *Table) SystemRecords() []domain.SystemRecord {
	if t == nil {
		return nil
	}
	out := make([]domain.SystemRecord, len(t.Systems))
	for i, s := range t.Systems {
		out[i] = s.Clone()
	}
	return out
}
