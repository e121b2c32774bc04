package export

import (
	"strings"

	"github.com/labelprint/orderexport/internal/domain"
)

// NormalizedProperties maps trim(lower(name)) to value.
// Keys keep the order in which they were first seen so prefix scans stay deterministic.
type NormalizedProperties struct {
	keys   []string
	values map[string]string
}

// Normalize canonicalizes a raw property bag. Later duplicates of a key (after
// lower-casing and trimming) overwrite earlier ones. Empty names are skipped.
func Normalize(props domain.Properties) NormalizedProperties {
	n := NormalizedProperties{values: make(map[string]string, len(props))}
	for _, p := range props {
		key := normalizeKey(p.Name)
		if key == "" {
			continue
		}
		if _, seen := n.values[key]; !seen {
			n.keys = append(n.keys, key)
		}
		n.values[key] = p.Value
	}
	return n
}

func normalizeKey(name string) string {
	return strings.TrimSpace(strings.ToLower(name))
}

// Get returns the value for an already-normalized key
func (n NormalizedProperties) Get(key string) (string, bool) {
	v, ok := n.values[key]
	return v, ok
}

// Keys returns the normalized keys in first-seen order
func (n NormalizedProperties) Keys() []string {
	out := make([]string, len(n.keys))
	copy(out, n.keys)
	return out
}

// Len returns the number of distinct keys
func (n NormalizedProperties) Len() int {
	return len(n.keys)
}

// Map returns a copy of the mapping
func (n NormalizedProperties) Map() map[string]string {
	out := make(map[string]string, len(n.values))
	for k, v := range n.values {
		out[k] = v
	}
	return out
}

// Properties converts the mapping back into a raw bag, in key order
func (n NormalizedProperties) Properties() domain.Properties {
	out := make(domain.Properties, 0, len(n.keys))
	for _, k := range n.keys {
		out = append(out, domain.Property{Name: k, Value: n.values[k]})
	}
	return out
}

// First returns the first non-blank value among candidate keys, unchanged
func (n NormalizedProperties) First(candidates []string) string {
	for _, key := range candidates {
		if v := n.values[key]; strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// WithPrefix returns the non-blank values of every key starting with one of prefixes,
// in first-seen key order
func (n NormalizedProperties) WithPrefix(prefixes []string) []string {
	var out []string
	for _, k := range n.keys {
		for _, prefix := range prefixes {
			if !strings.HasPrefix(k, prefix) {
				continue
			}
			if v := n.values[k]; strings.TrimSpace(v) != "" {
				out = append(out, v)
			}
			break
		}
	}
	return out
}
