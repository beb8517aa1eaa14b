package statestore

// StripFields removes the named fields from a data map at every nesting
// level and returns the cleaned copy. Nested maps that end up empty are
// kept; only matching keys are dropped.
func StripFields(data map[string]any, fields map[string]struct{}) map[string]any {
	if data == nil {
		return nil
	}
	out := make(map[string]any, len(data))
	for k, v := range data {
		if _, drop := fields[k]; drop {
			continue
		}
		if m, ok := v.(map[string]any); ok {
			out[k] = StripFields(m, fields)
			continue
		}
		out[k] = v
	}
	return out
}
