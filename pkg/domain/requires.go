package domain

import "fmt"

// FieldMatch compares a required value against the actual one. Predicates
// are evaluated; everything else compares by normalized string form so that
// json.Number, float64 and int renditions of the same number agree.
func FieldMatch(want, actual any) bool {
	if pred, ok := want.(Predicate); ok {
		return pred(actual)
	}
	if want == nil {
		return actual == nil
	}
	if actual == nil {
		return false
	}
	return normalize(want) == normalize(actual)
}

// Satisfied reports whether every requirement holds in the data snapshot.
func Satisfied(requires map[string]any, data map[string]any) bool {
	for field, want := range requires {
		actual, _ := Lookup(data, field)
		if !FieldMatch(want, actual) {
			return false
		}
	}
	return true
}

// Mismatches collects every requirement that disagrees with the snapshot.
func Mismatches(requires map[string]any, data map[string]any) []Mismatch {
	var out []Mismatch
	for field, want := range requires {
		actual, found := Lookup(data, field)
		if !FieldMatch(want, actual) {
			out = append(out, Mismatch{Field: field, Expected: want, Actual: actual, Present: found})
		}
	}
	return out
}

// Truthy reports whether a data value counts as a satisfied boolean flag.
func Truthy(v any) bool {
	switch tv := v.(type) {
	case bool:
		return tv
	case string:
		return tv == "true" || tv == "yes" || tv == "1"
	case nil:
		return false
	default:
		return normalize(tv) != "0" && normalize(tv) != ""
	}
}

func normalize(v any) string {
	switch tv := v.(type) {
	case float64:
		if tv == float64(int64(tv)) {
			return fmt.Sprintf("%d", int64(tv))
		}
		return fmt.Sprintf("%v", tv)
	case fmt.Stringer:
		return tv.String()
	default:
		return fmt.Sprintf("%v", tv)
	}
}
