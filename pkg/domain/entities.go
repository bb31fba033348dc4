// Package domain defines the reference-data entities shared by the loader,
// the merge engine, the hierarchical index and the query service.
package domain

import (
	"fmt"
	"strings"
)

// EntityType identifies the kind of record a lookup or error refers to.
type EntityType string

// Supported entity type identifiers used in errors and persistence buckets.
const (
	EntitySystem   EntityType = "system"
	EntityPlanet   EntityType = "planet"
	EntityResource EntityType = "resource"
	// EntityNode identifies a hierarchical index node.
	EntityNode EntityType = "node"
)

// Category splits the resource catalog into mineral and biological resources.
type Category string

const (
	CategoryInorganic Category = "inorganic"
	CategoryOrganic   Category = "organic"
)

// OrganismKind distinguishes planet flora from fauna.
type OrganismKind string

const (
	KindFauna OrganismKind = "fauna"
	KindFlora OrganismKind = "flora"
)

// ResourceDefinition is a catalog row. Definitions are immutable once loaded.
type ResourceDefinition struct {
	Name          string   `json:"name"`
	Category      Category `json:"category"`
	ElementName   string   `json:"element_name,omitempty"`
	Rarity        string   `json:"rarity,omitempty"`
	StateOfMatter string   `json:"state_of_matter,omitempty"`
	Weight        float64  `json:"weight"`
	Value         float64  `json:"value"`
	DisplayColor  string   `json:"color,omitempty"`
}

// Organism is a flora or fauna inhabitant of a planet.
//
// Resource names the single resource the organism is recorded against while
// Supplies carries the organism's own availability mapping. Both use
// lowercased resource names.
type Organism struct {
	Name        string          `json:"name"`
	Kind        OrganismKind    `json:"kind"`
	Temperament string          `json:"temperament,omitempty"`
	Biomes      []string        `json:"biomes,omitempty"`
	Outpost     bool            `json:"outpost"`
	Resource    string          `json:"resource,omitempty"`
	Supplies    map[string]bool `json:"resources,omitempty"`
}

// BiomesText renders the biome list the way the viewer displays it.
func (o Organism) BiomesText() string {
	return strings.Join(o.Biomes, ", ")
}

// Clone returns a deep copy of o.
func (o Organism) Clone() Organism {
	o.Biomes = cloneStrings(o.Biomes)
	o.Supplies = cloneFlags(o.Supplies)
	return o
}

// OutpostText renders the outpost flag as Yes/No.
func (o Organism) OutpostText() string {
	if o.Outpost {
		return "Yes"
	}
	return "No"
}

// PlanetRecord describes a celestial body, its declared resources and its
// inhabitants. Declared holds availability as authored; Resources holds the
// merged availability computed at load time.
type PlanetRecord struct {
	Name          string          `json:"name"`
	Type          string          `json:"type,omitempty"`
	Gravity       float64         `json:"gravity"`
	Temperature   string          `json:"temperature,omitempty"`
	Atmosphere    string          `json:"atmosphere,omitempty"`
	Magnetosphere string          `json:"magnetosphere,omitempty"`
	Traits        []string        `json:"traits,omitempty"`
	Declared      map[string]bool `json:"declared,omitempty"`
	Resources     map[string]bool `json:"resources,omitempty"`
	Fauna         []Organism      `json:"fauna,omitempty"`
	Flora         []Organism      `json:"flora,omitempty"`
	Notes         string          `json:"notes,omitempty"`
}

// HasResource reports whether the merged availability marks name as present.
func (p PlanetRecord) HasResource(name string) bool {
	return p.Resources[strings.ToLower(strings.TrimSpace(name))]
}

// HasTrait reports whether the planet carries the named trait (case-insensitive).
func (p PlanetRecord) HasTrait(trait string) bool {
	for _, t := range p.Traits {
		if strings.EqualFold(t, trait) {
			return true
		}
	}
	return false
}

// Organisms returns fauna followed by flora, preserving each list's order.
func (p PlanetRecord) Organisms() []Organism {
	out := make([]Organism, 0, len(p.Fauna)+len(p.Flora))
	out = append(out, p.Fauna...)
	out = append(out, p.Flora...)
	return out
}

// Clone returns a deep copy of p; the copy shares no maps or slices with p.
func (p PlanetRecord) Clone() PlanetRecord {
	p.Traits = cloneStrings(p.Traits)
	p.Declared = cloneFlags(p.Declared)
	p.Resources = cloneFlags(p.Resources)
	p.Fauna = cloneOrganisms(p.Fauna)
	p.Flora = cloneOrganisms(p.Flora)
	return p
}

// SystemRecord is one star system as read from a single source document.
// System names are not unique across documents.
type SystemRecord struct {
	Name    string         `json:"name"`
	Source  string         `json:"source,omitempty"`
	Planets []PlanetRecord `json:"planets"`
}

// Clone returns a deep copy of s.
func (s SystemRecord) Clone() SystemRecord {
	if s.Planets != nil {
		planets := make([]PlanetRecord, len(s.Planets))
		for i, p := range s.Planets {
			planets[i] = p.Clone()
		}
		s.Planets = planets
	}
	return s
}

// Planet is a row of the flat planet table: a planet tagged with the system
// it was declared in.
type Planet struct {
	System      string       `json:"system"`
	SystemIndex int          `json:"system_index"`
	Index       int          `json:"index"`
	Record      PlanetRecord `json:"record"`
}

// Name returns the planet's display name.
func (p Planet) Name() string { return p.Record.Name }

// Clone returns a deep copy of p.
func (p Planet) Clone() Planet {
	p.Record = p.Record.Clone()
	return p
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}

func cloneFlags(in map[string]bool) map[string]bool {
	if in == nil {
		return nil
	}
	out := make(map[string]bool, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func cloneOrganisms(in []Organism) []Organism {
	if in == nil {
		return nil
	}
	out := make([]Organism, len(in))
	for i, o := range in {
		out[i] = o.Clone()
	}
	return out
}

// ErrNotFound is returned when a referenced record or node cannot be located.
type ErrNotFound struct {
	Entity EntityType
	ID     string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}
