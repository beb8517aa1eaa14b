package process

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// PlatformConfig declares how to spawn the test runner of one execution
// platform.
type PlatformConfig struct {
	Name        string            `yaml:"name" json:"name"`
	Command     string            `yaml:"command" json:"command"`
	Args        []string          `yaml:"args" json:"args"`
	Environment map[string]string `yaml:"env" json:"env"`
	Description string            `yaml:"description" json:"description"`

	// TestGlob locates test files by name under the platform's test root,
	// e.g. "tests/**/*.spec.ts".
	TestGlob string `yaml:"testGlob" json:"testGlob"`
}

// ConfigFile is the structure of platforms.yaml.
type ConfigFile struct {
	Platforms []PlatformConfig `yaml:"platforms" json:"platforms"`
}

// LoadPlatforms reads a configuration file (YAML or JSON) and returns a map
// of platform names to configs. A missing file means no platforms are
// configured.
func LoadPlatforms(path string) (map[string]PlatformConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]PlatformConfig{}, nil
		}
		return nil, fmt.Errorf("failed to read platforms config: %w", err)
	}

	var cfg ConfigFile
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".json" {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse platforms.json: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse platforms.yaml: %w", err)
		}
	}

	platforms := make(map[string]PlatformConfig)
	for _, p := range cfg.Platforms {
		if p.Name == "" {
			continue
		}
		platforms[p.Name] = p
	}
	return platforms, nil
}
