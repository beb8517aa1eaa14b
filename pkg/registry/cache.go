package registry

import (
	"encoding/json"
	"fmt"
	"os"
)

const cacheSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["transitions"],
	"properties": {
		"transitions": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["from", "to", "event"],
				"properties": {
					"from": {"type": "string"},
					"to": {"type": "string"},
					"event": {"type": "string"}
				}
			}
		}
	}
}`

// DiscoveredTransition is one edge recorded by the source-discovery pass.
type DiscoveredTransition struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Event string `json:"event"`
}

// DiscoveryCache is the optional fast path over discovered transitions:
// when a single direct transition exists between two statuses, the chain
// builder can annotate the step without consulting the selector.
type DiscoveryCache struct {
	Transitions []DiscoveredTransition `json:"transitions"`
}

// LoadCache reads and validates the discovery cache artifact. A missing
// file is not an error; the fast path is simply unavailable.
func LoadCache(path string) (*DiscoveryCache, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read discovery cache: %w", err)
	}

	schema, err := compile("cache.json", cacheSchema)
	if err != nil {
		return nil, err
	}
	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("parse discovery cache: %w", err)
	}
	if err := schema.Validate(payload); err != nil {
		return nil, fmt.Errorf("discovery cache invalid: %w", err)
	}

	var cache DiscoveryCache
	if err := json.Unmarshal(raw, &cache); err != nil {
		return nil, fmt.Errorf("decode discovery cache: %w", err)
	}
	return &cache, nil
}

// DirectEvent returns the event name when exactly one discovered transition
// connects from to to.
func (c *DiscoveryCache) DirectEvent(from, to string) (string, bool) {
	if c == nil {
		return "", false
	}
	var event string
	count := 0
	for _, tr := range c.Transitions {
		if tr.From == from && tr.To == to {
			event = tr.Event
			count++
		}
	}
	if count == 1 {
		return event, true
	}
	return "", false
}
