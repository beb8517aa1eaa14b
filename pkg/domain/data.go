package domain

import (
	"strings"
	"time"
)

// ChangeEntry is one delta in a Record's change log.
type ChangeEntry struct {
	Label     string         `json:"label"`
	TestFile  string         `json:"testFile,omitempty"`
	Delta     map[string]any `json:"delta"`
	Timestamp time.Time      `json:"timestamp"`
}

// Record is the persisted test data: an original snapshot plus an ordered
// change log. The effective state is Original with every delta applied in
// order.
type Record struct {
	Original  map[string]any `json:"_original"`
	ChangeLog []ChangeEntry  `json:"_changeLog"`
}

// Snapshot folds the change log onto the original. The fold is pure: the
// record is not mutated and the result shares no maps with it.
func (r *Record) Snapshot() map[string]any {
	out := deepCopyMap(r.Original)
	for _, entry := range r.ChangeLog {
		out = MergeMaps(out, entry.Delta)
	}
	return out
}

// MergeMaps deep-merges overlay into a copy of base. Nested maps merge
// recursively; any other value in overlay replaces the base value.
func MergeMaps(base, overlay map[string]any) map[string]any {
	out := deepCopyMap(base)
	for k, v := range overlay {
		if ov, ok := v.(map[string]any); ok {
			if bv, ok := out[k].(map[string]any); ok {
				out[k] = MergeMaps(bv, ov)
				continue
			}
		}
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v any) any {
	switch tv := v.(type) {
	case map[string]any:
		return deepCopyMap(tv)
	case []any:
		out := make([]any, len(tv))
		for i, e := range tv {
			out[i] = deepCopyValue(e)
		}
		return out
	default:
		return v
	}
}

// Lookup resolves a dot-separated field path against nested maps.
func Lookup(data map[string]any, path string) (any, bool) {
	parts := strings.Split(path, ".")
	cur := any(data)
	for _, p := range parts {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[p]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// GlobalStatus reads the top-level status field from a data snapshot.
func GlobalStatus(data map[string]any) string {
	if s, ok := data["status"].(string); ok {
		return s
	}
	return ""
}

// EntityStatus reads the status field of an entity sub-object.
func EntityStatus(data map[string]any, entity string) string {
	if s, ok := Lookup(data, entity+".status"); ok {
		if str, ok := s.(string); ok {
			return str
		}
	}
	return ""
}
