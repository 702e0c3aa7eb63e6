package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// FileName is the config file name searched for in standard locations.
const FileName = "ifcview.yaml"

// Load loads configuration with priority: defaults < file < flags.
func Load() (*Config, error) {
	cfg := Default()

	configPath := ConfigPath()
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the viewer cannot run with.
func (c *Config) Validate() error {
	if c.Viewer.Width <= 0 || c.Viewer.Height <= 0 {
		return fmt.Errorf("invalid window size %dx%d", c.Viewer.Width, c.Viewer.Height)
	}
	if c.Viewer.SunElevation < 0 || c.Viewer.SunElevation > 90 {
		return fmt.Errorf("viewer.sun_elevation must be within [0,90], got %g", c.Viewer.SunElevation)
	}
	if c.Subset.BVHLeafSize <= 0 {
		return fmt.Errorf("subset.bvh_leaf_size must be positive, got %d", c.Subset.BVHLeafSize)
	}
	for name, a := range map[string]float32{"highlight": c.Display.Highlight.A, "ghost": c.Display.Ghost.A} {
		if a < 0 || a > 1 {
			return fmt.Errorf("display.%s.a must be within [0,1], got %g", name, a)
		}
	}
	return nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		filepath.Join(".", FileName),
		filepath.Join(ConfigDir(), FileName),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "ifcview")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "ifcview")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "ifcview")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "ifcview")
	}
}

// loadFromFile loads config from a YAML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}
