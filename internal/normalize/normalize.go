// Package normalize lowercases the keys of decoded JSON documents so lookups
// downstream do not depend on how a record was authored.
package normalize

import (
	"sort"
	"strings"
)

// Keys returns a copy of v in which every mapping key, at every depth, is
// lowercased. Sequence order and scalar values are preserved and v itself is
// never modified. Cyclic input is not supported.
//
// When two keys of one mapping collapse to the same lowercase form, the value
// of the lexicographically last original key wins so the result does not
// depend on map iteration order.
func Keys(v any) any {
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make(map[string]any, len(t))
		for _, k := range keys {
			out[strings.ToLower(k)] = Keys(t[k])
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = Keys(item)
		}
		return out
	default:
		return v
	}
}

// Map is Keys specialised to a top-level object.
func Map(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	return Keys(m).(map[string]any)
}
