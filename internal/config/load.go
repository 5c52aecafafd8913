package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in standard locations.
const FileName = "meshletc.yaml"

// EnvConfig names an environment variable holding a config path. It is
// consulted after -config and before the search locations.
const EnvConfig = "MESHLETC_CONFIG"

// appDir is the per-user config subdirectory.
const appDir = "meshletc"

// Load loads configuration with priority: defaults < file < flags.
func Load() (*Config, error) {
	cfg := Default()

	if path := resolveConfigPath(); path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
	}

	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveConfigPath picks the explicit path (flag, then environment) or
// falls back to the search locations.
func resolveConfigPath() string {
	if path := ConfigPath(); path != "" {
		return path
	}
	if path := os.Getenv(EnvConfig); path != "" {
		return path
	}
	return findConfigFile()
}

// findConfigFile returns the first existing file among searchPaths.
func findConfigFile() string {
	for _, path := range searchPaths() {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// searchPaths lists the working directory first, then the user config dir.
func searchPaths() []string {
	paths := []string{FileName, "." + FileName}
	if dir := ConfigDir(); dir != "" {
		paths = append(paths, filepath.Join(dir, FileName))
	}
	return paths
}

// ConfigDir returns the per-user meshletc config directory, or "" when the
// platform has none.
func ConfigDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, appDir)
}

// loadFromFile merges a YAML file over cfg. Unknown keys are rejected so
// a misspelled limit does not silently fall back to the default.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
