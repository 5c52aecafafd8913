// Package config handles meshletc configuration loading and management.
package config

import (
	"fmt"

	"github.com/Faultbox/meshlet-lab/pkg/meshlet"
)

// Config holds all tool settings.
type Config struct {
	Meshlet MeshletConfig `yaml:"meshlet"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// MeshletConfig holds meshlet capacity settings.
type MeshletConfig struct {
	MaxVertices  int `yaml:"max_vertices"`  // Unique vertices per meshlet
	MaxTriangles int `yaml:"max_triangles"` // Triangles per meshlet
}

// OutputConfig holds where built buffers are written.
type OutputConfig struct {
	Dir         string `yaml:"dir"`
	VertexFile  string `yaml:"vertex_file"`
	MeshletFile string `yaml:"meshlet_file"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Meshlet: MeshletConfig{
			MaxVertices:  meshlet.MaxVertices,
			MaxTriangles: meshlet.MaxTriangles,
		},
		Output: OutputConfig{
			Dir:         ".",
			VertexFile:  "vertices.bin",
			MeshletFile: "meshlets.bin",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Limits returns the configured meshlet limits.
func (c *Config) Limits() meshlet.Limits {
	return meshlet.Limits{
		MaxVertices:  c.Meshlet.MaxVertices,
		MaxTriangles: c.Meshlet.MaxTriangles,
	}
}

// Validate checks settings that would otherwise fail deep inside a build.
func (c *Config) Validate() error {
	if err := c.Limits().Check(); err != nil {
		return fmt.Errorf("meshlet config: %w", err)
	}
	if c.Output.VertexFile == "" || c.Output.MeshletFile == "" {
		return fmt.Errorf("output config: vertex_file and meshlet_file must be set")
	}
	return nil
}
