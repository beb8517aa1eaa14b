package loamrepo

// DescriptorMetadata is the frontmatter shape of a status descriptor file.
// It uses mapstructure tags to match the YAML/JSON keys Loam decodes.
type DescriptorMetadata struct {
	Status   string         `json:"status" mapstructure:"status"`
	Platform string         `json:"platform" mapstructure:"platform"`
	Entity   string         `json:"entity" mapstructure:"entity"`
	Requires map[string]any `json:"requires" mapstructure:"requires"`

	// Setup entries are polymorphic: a bare string is shorthand for an
	// entry with only a test file, a map carries the full shape.
	Setup []any `json:"setup" mapstructure:"setup"`

	// On maps event names to transition definitions.
	On map[string]TransitionMetadata `json:"on" mapstructure:"on"`
}

// SetupMetadata is the full shape of one setup entry.
type SetupMetadata struct {
	TestFile       string         `json:"testFile" mapstructure:"testFile"`
	Action         string         `json:"action" mapstructure:"action"`
	PreviousStatus string         `json:"previousStatus" mapstructure:"previousStatus"`
	Requires       map[string]any `json:"requires" mapstructure:"requires"`
}

// TransitionMetadata is the frontmatter shape of one outgoing transition.
type TransitionMetadata struct {
	Target    string         `json:"target" mapstructure:"target"`
	Requires  map[string]any `json:"requires" mapstructure:"requires"`
	Platforms []string       `json:"platforms" mapstructure:"platforms"`
	Default   bool           `json:"default" mapstructure:"default"`
}
