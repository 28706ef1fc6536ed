// Package config provides the persisted application configuration: the
// theme, the ordered connection profile sequence, and the feature flags.
// The connections sequence is the single source of truth for profiles;
// every mutation replaces it wholesale.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/yllada/remote-manager/common"
	"github.com/yllada/remote-manager/profile"
)

// AppConfig is the aggregate persisted unit.
type AppConfig struct {
	// Theme sets the color theme: "light", "dark", or "auto".
	Theme string `yaml:"theme"`
	// Connections is the full ordered sequence of connection profiles.
	Connections []profile.Profile `yaml:"connections"`
	// NativeSync mirrors the configuration into the local SQLite store.
	NativeSync bool `yaml:"native_sync"`
	// DevTools toggles developer tooling in the front surfaces.
	DevTools bool `yaml:"dev_tools"`
}

// Default returns the default configuration.
func Default() AppConfig {
	return AppConfig{
		Theme:       common.ThemeAuto,
		Connections: nil,
		NativeSync:  false,
		DevTools:    false,
	}
}

// clone deep-copies the aggregate so callers can never alias the
// connections sequence of another snapshot.
func (c AppConfig) clone() AppConfig {
	out := c
	out.Connections = make([]profile.Profile, len(c.Connections))
	copy(out.Connections, c.Connections)
	return out
}

// validate verifies that configuration values are valid.
func (c *AppConfig) validate() error {
	if !common.StringInSlice(c.Theme, []string{common.ThemeAuto, common.ThemeLight, common.ThemeDark}) {
		c.Theme = common.ThemeAuto // Fallback to default
	}
	return nil
}

// Load loads the configuration from the given file. A missing file yields
// the default configuration.
func Load(path string) (AppConfig, error) {
	if !common.FileExists(path) {
		return Default(), nil
	}

	file, err := os.Open(path)
	if err != nil {
		return Default(), fmt.Errorf("%w: %v", common.ErrConfigLoad, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true) // Strict validation: reject unknown fields

	var cfg AppConfig
	if err := decoder.Decode(&cfg); err != nil {
		return Default(), fmt.Errorf("%w: %v", common.ErrConfigLoad, err)
	}

	if err := cfg.validate(); err != nil {
		return Default(), fmt.Errorf("%w: %v", common.ErrConfigLoad, err)
	}

	return cfg, nil
}

// Save writes the configuration to the given file with restrictive
// permissions, creating the parent directory when needed.
func Save(path string, cfg AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("%w: %v", common.ErrConfigSave, err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrConfigSave, err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("%w: %v", common.ErrConfigSave, err)
	}

	return nil
}

// DefaultPath returns the standard location of the configuration file.
func DefaultPath() (string, error) {
	dir, err := common.GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, common.ConfigFileName), nil
}
