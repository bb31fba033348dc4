package loader

import (
	"fmt"
	"path"
	"strings"

	"starfieldpedia/internal/merge"
	"starfieldpedia/internal/normalize"
	"starfieldpedia/pkg/domain"
)

const defaultGravity = 1.0

// decodeDocument turns one normalized document into system records. Keys
// have already been lowercased. Planet entries that are not objects are left
// out and described in skipped.
func decodeDocument(key string, doc any) (systems []domain.SystemRecord, skipped []string, derr *DocumentError) {
	top, ok := doc.(map[string]any)
	if !ok {
		return nil, nil, shapeErrorf(key, "top level is %s, want object", normalize.Describe(doc))
	}
	raw, ok := top["systems"]
	if !ok {
		raw, ok = top["system"]
	}
	if !ok {
		return nil, nil, shapeErrorf(key, "missing systems")
	}
	var entries []any
	switch t := raw.(type) {
	case []any:
		entries = t
	case map[string]any:
		entries = []any{t}
	default:
		return nil, nil, shapeErrorf(key, "systems is %s, want array", normalize.Describe(raw))
	}

	systems = make([]domain.SystemRecord, 0, len(entries))
	for i, entry := range entries {
		obj, ok := entry.(map[string]any)
		if !ok {
			return nil, nil, shapeErrorf(key, "systems[%d] is %s, want object", i, normalize.Describe(entry))
		}
		planetsRaw, ok := obj["planets"]
		if !ok {
			return nil, nil, shapeErrorf(key, "systems[%d] missing planets", i)
		}
		planets, ok := planetsRaw.([]any)
		if !ok {
			return nil, nil, shapeErrorf(key, "systems[%d].planets is %s, want array", i, normalize.Describe(planetsRaw))
		}
		sys := domain.SystemRecord{
			Name:    normalize.String(obj["name"]),
			Source:  key,
			Planets: make([]domain.PlanetRecord, 0, len(planets)),
		}
		if sys.Name == "" {
			sys.Name = baseName(key)
		}
		for j, p := range planets {
			pm, ok := p.(map[string]any)
			if !ok {
				skipped = append(skipped, fmt.Sprintf("systems[%d].planets[%d] is %s", i, j, normalize.Describe(p)))
				continue
			}
			sys.Planets = append(sys.Planets, merge.Resources(decodePlanet(pm)))
		}
		systems = append(systems, sys)
	}
	return systems, skipped, nil
}

func decodePlanet(m map[string]any) domain.PlanetRecord {
	p := domain.PlanetRecord{
		Name:          normalize.String(m["name"]),
		Type:          normalize.String(m["type"]),
		Gravity:       defaultGravity,
		Temperature:   normalize.String(m["temperature"]),
		Atmosphere:    normalize.String(m["atmosphere"]),
		Magnetosphere: normalize.String(m["magnetosphere"]),
		Traits:        dedupe(normalize.Strings(m["traits"])),
		Declared:      normalize.Flags(m["resources"]),
		Notes:         normalize.String(m["notes"]),
	}
	if g, ok := normalize.Float(m["gravity"]); ok {
		p.Gravity = g
	}
	p.Fauna = decodeOrganisms(m["fauna"], domain.KindFauna)
	p.Flora = decodeOrganisms(m["flora"], domain.KindFlora)
	return p
}

// decodeOrganisms skips entries that are not objects; a stray value inside an
// organism list does not invalidate the planet.
func decodeOrganisms(v any, kind domain.OrganismKind) []domain.Organism {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]domain.Organism, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		o := domain.Organism{
			Name:     normalize.String(m["name"]),
			Kind:     kind,
			Biomes:   normalize.Strings(m["biomes"]),
			Outpost:  normalize.Bool(m["outpost"]),
			Resource: normalize.Name(normalize.String(m["resource"])),
			Supplies: normalize.Flags(m["resources"]),
		}
		if kind == domain.KindFauna {
			o.Temperament = normalize.String(m["temperament"])
		}
		if o.Resource == "" && len(o.Supplies) == 1 {
			for name := range o.Supplies {
				o.Resource = name
			}
		}
		out = append(out, o)
	}
	return out
}

func dedupe(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		k := strings.ToLower(s)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, s)
	}
	return out
}

func baseName(key string) string {
	b := path.Base(key)
	return strings.TrimSuffix(b, path.Ext(b))
}
