// Package catalog holds the static resource reference data: every known
// inorganic and organic resource with its element, rarity, state, weight,
// value and display color.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"starfieldpedia/internal/blob"
	"starfieldpedia/internal/normalize"
	"starfieldpedia/pkg/domain"
)

// Default document keys, as shipped next to the dataset.
const (
	DefaultInorganicKey = "inorganic_resources.json"
	DefaultOrganicKey   = "organic_resources.json"
)

// Catalog is an immutable, case-insensitive index of resource definitions.
// Construct it once and pass it to the loader, index and service.
type Catalog struct {
	defs  map[string]domain.ResourceDefinition
	names []string
}

// New builds a catalog from definitions. Names must be unique ignoring case.
func New(defs ...domain.ResourceDefinition) (*Catalog, error) {
	c := &Catalog{defs: make(map[string]domain.ResourceDefinition, len(defs))}
	for _, def := range defs {
		key := normalize.Name(def.Name)
		if key == "" {
			return nil, fmt.Errorf("resource definition without name")
		}
		if prev, ok := c.defs[key]; ok {
			return nil, fmt.Errorf("resource %q defined twice (%s and %s)", def.Name, prev.Category, def.Category)
		}
		c.defs[key] = def
		c.names = append(c.names, key)
	}
	sort.Strings(c.names)
	return c, nil
}

// Empty returns a catalog with no definitions; every lookup misses.
func Empty() *Catalog {
	c, _ := New()
	return c
}

// Parse decodes one catalog document mapping resource name to metadata.
// Keys inside each entry are matched case-insensitively and every field is
// optional.
func Parse(category domain.Category, r io.Reader) ([]domain.ResourceDefinition, error) {
	var raw map[string]any
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode %s catalog: %w", category, err)
	}
	names := normalize.SortedKeys(raw)
	defs := make([]domain.ResourceDefinition, 0, len(raw))
	for _, name := range names {
		entry, _ := normalize.Keys(raw[name]).(map[string]any)
		def := domain.ResourceDefinition{
			Name:          strings.TrimSpace(name),
			Category:      category,
			ElementName:   normalize.String(entry["element_name"]),
			Rarity:        normalize.String(entry["rarity"]),
			StateOfMatter: normalize.String(entry["state_of_matter"]),
			DisplayColor:  normalize.String(entry["color"]),
		}
		def.Weight, _ = normalize.Float(entry["weight"])
		def.Value, _ = normalize.Float(entry["value"])
		defs = append(defs, def)
	}
	return defs, nil
}

// Load reads the inorganic and organic catalog documents from store.
func Load(ctx context.Context, store blob.Store, inorganicKey, organicKey string) (*Catalog, error) {
	if inorganicKey == "" {
		inorganicKey = DefaultInorganicKey
	}
	if organicKey == "" {
		organicKey = DefaultOrganicKey
	}
	var all []domain.ResourceDefinition
	for _, src := range []struct {
		key      string
		category domain.Category
	}{
		{inorganicKey, domain.CategoryInorganic},
		{organicKey, domain.CategoryOrganic},
	} {
		_, rc, err := store.Get(ctx, src.key)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", src.key, err)
		}
		defs, err := Parse(src.category, rc)
		_ = rc.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", src.key, err)
		}
		all = append(all, defs...)
	}
	return New(all...)
}

// Len returns the number of definitions.
func (c *Catalog) Len() int { return len(c.defs) }

// Lookup returns the definition for name, ignoring case.
func (c *Catalog) Lookup(name string) (domain.ResourceDefinition, bool) {
	def, ok := c.defs[normalize.Name(name)]
	return def, ok
}

// Describe returns the definition for name or, for an unknown resource, a
// definition carrying only the name with every metadata field empty.
func (c *Catalog) Describe(name string) domain.ResourceDefinition {
	if def, ok := c.Lookup(name); ok {
		return def
	}
	return domain.ResourceDefinition{Name: name}
}

// Category reports the category of name; ok is false for unknown resources.
func (c *Catalog) Category(name string) (domain.Category, bool) {
	def, ok := c.Lookup(name)
	return def.Category, ok
}

// Names lists lowercased resource names in the category, sorted. An empty
// category lists every resource.
func (c *Catalog) Names(category domain.Category) []string {
	out := make([]string, 0, len(c.names))
	for _, n := range c.names {
		if category == "" || c.defs[n].Category == category {
			out = append(out, n)
		}
	}
	return out
}

// Definitions returns every definition ordered by name.
func (c *Catalog) Definitions() []domain.ResourceDefinition {
	out := make([]domain.ResourceDefinition, 0, len(c.names))
	for _, n := range c.names {
		out = append(out, c.defs[n])
	}
	return out
}

type suggestion struct {
	name string
	dist int
}

// Suggest returns up to limit catalog names close to name: prefix matches
// first, then names within an edit distance of a third of the query length
// (at least 2). An exact match returns just that name.
func (c *Catalog) Suggest(name string, limit int) []string {
	q := normalize.Name(name)
	if q == "" || limit <= 0 {
		return nil
	}
	if _, ok := c.defs[q]; ok {
		return []string{q}
	}
	maxDist := len(q) / 3
	if maxDist < 2 {
		maxDist = 2
	}
	var cands []suggestion
	for _, n := range c.names {
		if strings.HasPrefix(n, q) {
			cands = append(cands, suggestion{name: n, dist: -1})
			continue
		}
		if d := levenshtein.ComputeDistance(q, n); d <= maxDist {
			cands = append(cands, suggestion{name: n, dist: d})
		}
	}
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].dist != cands[j].dist {
			return cands[i].dist < cands[j].dist
		}
		return cands[i].name < cands[j].name
	})
	if len(cands) > limit {
		cands = cands[:limit]
	}
	out := make([]string, len(cands))
	for i, s := range cands {
		out[i] = s.name
	}
	return out
}
