// Package registry loads the read-only status registry artifact: the map
// from status name to implication class name consulted on every resolution
// run, plus the optional discovery cache used as a direct-transition fast
// path.
package registry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const registrySchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"additionalProperties": {"type": "string", "minLength": 1}
}`

// Registry is the read-only status name -> implication class map. It is
// loaded fresh at the start of each resolution run.
type Registry struct {
	classes map[string]string
}

// Load reads and validates the registry artifact.
func Load(path string) (*Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry artifact: %w", err)
	}
	return Parse(raw)
}

// Parse validates raw JSON registry content against the artifact schema.
func Parse(raw []byte) (*Registry, error) {
	schema, err := compile("registry.json", registrySchema)
	if err != nil {
		return nil, err
	}

	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("parse registry artifact: %w", err)
	}
	if err := schema.Validate(payload); err != nil {
		return nil, fmt.Errorf("registry artifact invalid: %w", err)
	}

	classes := make(map[string]string)
	for status, class := range payload.(map[string]any) {
		classes[status] = class.(string)
	}
	return &Registry{classes: classes}, nil
}

// New builds a registry from an in-memory map, for embedding and tests.
func New(classes map[string]string) *Registry {
	copied := make(map[string]string, len(classes))
	for k, v := range classes {
		copied[k] = v
	}
	return &Registry{classes: copied}
}

// ClassFor resolves a status name to its implication class name.
func (r *Registry) ClassFor(status string) (string, bool) {
	class, ok := r.classes[status]
	return class, ok
}

// Has reports whether the status name is registered.
func (r *Registry) Has(status string) bool {
	_, ok := r.classes[status]
	return ok
}

// Statuses returns all registered status names in sorted order.
func (r *Registry) Statuses() []string {
	out := make([]string, 0, len(r.classes))
	for s := range r.classes {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of registered statuses.
func (r *Registry) Len() int { return len(r.classes) }

func compile(name, schema string) (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(name, bytes.NewReader([]byte(schema))); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	compiled, err := c.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return compiled, nil
}

// ClassNameHint mirrors the artifact convention that class names are
// PascalCase forms of the status. Used only in validation diagnostics.
func ClassNameHint(status string) string {
	parts := strings.FieldsFunc(status, func(r rune) bool { return r == '_' || r == '-' })
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, "")
}
