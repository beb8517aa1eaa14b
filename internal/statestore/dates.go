package statestore

import (
	"regexp"
	"time"
)

// isoDatePattern matches ISO-8601-like strings: a date, optionally followed
// by a time and zone designator.
var isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}(T\d{2}:\d{2}(:\d{2}(\.\d+)?)?(Z|[+-]\d{2}:\d{2})?)?$`)

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// NormalizeDates walks a data map and converts ISO-8601-like strings into
// time.Time values. Maps and slices are transformed recursively; everything
// else passes through unchanged.
func NormalizeDates(data map[string]any) map[string]any {
	if data == nil {
		return nil
	}
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch tv := v.(type) {
	case string:
		if t, ok := parseDate(tv); ok {
			return t
		}
		return tv
	case map[string]any:
		return NormalizeDates(tv)
	case []any:
		out := make([]any, len(tv))
		for i, e := range tv {
			out[i] = normalizeValue(e)
		}
		return out
	default:
		return v
	}
}

func parseDate(s string) (time.Time, bool) {
	if !isoDatePattern.MatchString(s) {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
