// Package merge computes a planet's merged resource availability: the union of
// what the planet declares and what its flora and fauna supply.
package merge

import (
	"starfieldpedia/internal/normalize"
	"starfieldpedia/pkg/domain"
)

// Supplied returns the resources an organism supplies: every entry of its
// own availability mapping that is true, plus its named Resource when the
// mapping carries no flag for it. Names are returned sorted.
func Supplied(o domain.Organism) []string {
	set := make(map[string]bool, len(o.Supplies)+1)
	for name, ok := range o.Supplies {
		if ok {
			set[normalize.Name(name)] = true
		}
	}
	if r := normalize.Name(o.Resource); r != "" {
		if _, flagged := o.Supplies[r]; !flagged {
			set[r] = true
		}
	}
	delete(set, "")
	return normalize.SortedKeys(set)
}

// Supplies reports whether the organism supplies resource.
func Supplies(o domain.Organism, resource string) bool {
	r := normalize.Name(resource)
	if r == "" {
		return false
	}
	for _, name := range Supplied(o) {
		if name == r {
			return true
		}
	}
	return false
}

// Resources returns p with Resources replaced by the merged availability.
// The merge is a set union: a resource true in Declared stays true, every
// resource supplied by any organism becomes true and nothing is removed.
// Declared is copied, never aliased, so the input record is left untouched.
func Resources(p domain.PlanetRecord) domain.PlanetRecord {
	merged := make(map[string]bool, len(p.Declared))
	for name, ok := range p.Declared {
		merged[name] = merged[name] || ok
	}
	for _, o := range p.Organisms() {
		for _, name := range Supplied(o) {
			merged[name] = true
		}
	}
	p.Resources = merged
	return p
}

// Providers returns the organisms supplying resource on p, fauna first then
// flora, each in declaration order.
func Providers(p domain.PlanetRecord, resource string) []domain.Organism {
	var out []domain.Organism
	for _, o := range p.Organisms() {
		if Supplies(o, resource) {
			out = append(out, o)
		}
	}
	return out
}

// Available lists the resources marked true in the merged mapping, sorted.
func Available(p domain.PlanetRecord) []string {
	out := make([]string, 0, len(p.Resources))
	for _, name := range normalize.SortedKeys(p.Resources) {
		if p.Resources[name] {
			out = append(out, name)
		}
	}
	return out
}
