// Package config loads project-level settings from codegraph.yml.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultOutputPath is where the graph artifact is written when no output
// path is configured. The downstream indexing engine reads it from here.
const DefaultOutputPath = "graphrag/input/code_graph.json"

// ModelConfig identifies the language-model endpoint for the downstream
// retrieval engine. Extraction never reads it; it is validated and handed
// through with the artifact.
type ModelConfig struct {
	Endpoint string `yaml:"endpoint,omitempty"`
	Name     string `yaml:"name,omitempty"`
}

// ProjectConfig holds project-level settings loaded from codegraph.yml.
type ProjectConfig struct {
	Database    string      `yaml:"database,omitempty"`    // compilation database path
	OutputPath  string      `yaml:"outputPath,omitempty"`  // JSON artifact path
	ProjectRoot string      `yaml:"projectRoot,omitempty"` // entries outside are skipped
	Workers     int         `yaml:"workers,omitempty"`
	KuzuPath    string      `yaml:"kuzuPath,omitempty"` // optional KuzuDB export
	Model       ModelConfig `yaml:"model,omitempty"`
}

// Load attempts to read codegraph.yml or codegraph.yaml from the given
// directory. Returns a zero-value config (not an error) if no config file
// exists.
func Load(dir string) (*ProjectConfig, error) {
	for _, name := range []string{"codegraph.yml", "codegraph.yaml"} {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var cfg ProjectConfig
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		return &cfg, nil
	}
	return &ProjectConfig{}, nil
}

// ApplyDefaults fills unset fields with their defaults.
func (c *ProjectConfig) ApplyDefaults() {
	if c.Database == "" {
		c.Database = "compile_commands.json"
	}
	if c.OutputPath == "" {
		c.OutputPath = DefaultOutputPath
	}
}
