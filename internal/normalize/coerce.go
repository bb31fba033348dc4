package normalize

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// String renders a decoded scalar as trimmed text. Non-scalars yield "".
func String(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// Float reads a number that may have been authored as a JSON number or a
// numeric string. ok is false when v is absent or not numeric.
func Float(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Bool reads a flag authored as a JSON bool or as "yes"/"no"/"true"/"false".
func Bool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "yes", "y", "true", "1":
			return true
		}
	case float64:
		return t != 0
	}
	return false
}

// Strings reads a list of strings authored either as a JSON array or as a
// single comma separated string. Empty entries are dropped.
func Strings(v any) []string {
	var raw []string
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			raw = append(raw, String(item))
		}
	case string:
		raw = strings.Split(t, ",")
	default:
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Flags reads a name → bool mapping, lowercasing names. Non-bool values are
// interpreted with Bool.
func Flags(v any) map[string]bool {
	m, ok := v.(map[string]any)
	if !ok || len(m) == 0 {
		return nil
	}
	out := make(map[string]bool, len(m))
	for k, val := range m {
		name := Name(k)
		if name == "" {
			continue
		}
		out[name] = out[name] || Bool(val)
	}
	return out
}

// Name canonicalises a resource name for lookups.
func Name(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// SortedKeys returns the keys of m in ascending order.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Describe is a short type description for shape errors.
func Describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	default:
		return fmt.Sprintf("%T", v)
	}
}
