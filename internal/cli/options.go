// Package cli wires the engine for the command-line surface: flag handling,
// smart configuration defaults and report rendering.
package cli

import (
	"os"
	"path/filepath"
)

// RunOptions carries the configuration shared by the CLI commands.
type RunOptions struct {
	// Dir is the descriptor directory (the project root).
	Dir string

	// RegistryPath is the status registry artifact. Defaults to
	// registry.json inside Dir when present.
	RegistryPath string

	// CachePath is the optional discovery cache artifact.
	CachePath string

	// PlatformsPath is the platform runner configuration. Defaults to
	// platforms.yaml inside Dir when present.
	PlatformsPath string

	// DataPath is the test data file a plan or resolution runs against.
	DataPath string

	// Platform is the execution platform driving this process.
	Platform string

	// Event is an explicit transition event.
	Event string

	// RedisAddr enables distributed data-file locking when set.
	RedisAddr string

	// Yes skips interactive confirmation prompts.
	Yes bool

	// JSON switches report output to machine-readable JSON.
	JSON bool

	// Debug enables verbose logging.
	Debug bool
}

// applyDefaults fills in convention-based paths that exist on disk.
func (o *RunOptions) applyDefaults() {
	if o.Dir == "" {
		o.Dir = "."
	}
	if o.RegistryPath == "" {
		o.RegistryPath = existingPath(filepath.Join(o.Dir, "registry.json"))
	}
	if o.CachePath == "" {
		o.CachePath = existingPath(filepath.Join(o.Dir, "status-cache.json"))
	}
	if o.PlatformsPath == "" {
		o.PlatformsPath = existingPath(filepath.Join(o.Dir, "platforms.yaml"))
	}
	if o.Platform == "" {
		o.Platform = "web"
	}
}

func existingPath(path string) string {
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return ""
}
