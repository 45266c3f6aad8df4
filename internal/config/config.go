// Package config loads the optional TOML configuration controlling how the
// CLI renders diagnostics.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/xyproto/env/v2"
)

// Config controls diagnostic rendering.
type Config struct {
	// Color is "auto", "always" or "never".
	Color string `toml:"color"`
	// Context is the number of source lines shown around a diagnostic.
	Context int `toml:"context"`
	// MaxDiagnostics caps how many diagnostics are rendered per file;
	// zero means unlimited.
	MaxDiagnostics int `toml:"max_diagnostics"`
}

// Default returns the settings used when no config file is given. The
// NO_COLOR convention is honored as an environment override.
func Default() Config {
	cfg := Config{Color: "auto", Context: 1}
	if env.Has("NO_COLOR") {
		cfg.Color = "never"
	}
	return cfg
}

// Load reads path on top of the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
