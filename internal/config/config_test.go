package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Viewer.Width != 1280 || cfg.Viewer.Height != 720 {
		t.Errorf("expected 1280x720, got %dx%d", cfg.Viewer.Width, cfg.Viewer.Height)
	}
	if !cfg.Viewer.VSync {
		t.Error("expected vsync to be true by default")
	}
	if cfg.Display.Highlight.A != 1 {
		t.Errorf("expected opaque highlight, got a=%g", cfg.Display.Highlight.A)
	}
	if cfg.Display.Ghost.A >= 1 {
		t.Errorf("expected translucent ghost, got a=%g", cfg.Display.Ghost.A)
	}
	if cfg.Subset.BVHLeafSize != 8 {
		t.Errorf("expected leaf size 8, got %d", cfg.Subset.BVHLeafSize)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)

	yamlContent := `
viewer:
  width: 1920
  height: 1080
  model: "tower.yaml"

display:
  highlight: {r: 0, g: 1, b: 0, a: 1, h: 1}
  ghost: {r: 0.2, g: 0.2, b: 0.2, a: 0.1, h: 0}
  release_twin_on_reset: true

subset:
  bvh_leaf_size: 4

logging:
  level: "debug"
  log_file: "viewer.log"
`
	if err := os.WriteFile(path, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, path); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Viewer.Width != 1920 {
		t.Errorf("expected width 1920, got %d", cfg.Viewer.Width)
	}
	if cfg.Viewer.Model != "tower.yaml" {
		t.Errorf("expected model tower.yaml, got %s", cfg.Viewer.Model)
	}
	if !cfg.Viewer.VSync {
		t.Error("vsync should keep its default when the file omits it")
	}
	if cfg.Display.Highlight.G != 1 || cfg.Display.Highlight.R != 0 {
		t.Errorf("unexpected highlight %+v", cfg.Display.Highlight)
	}
	if cfg.Display.Ghost.A != 0.1 {
		t.Errorf("expected ghost alpha 0.1, got %g", cfg.Display.Ghost.A)
	}
	if !cfg.Display.ReleaseTwinOnReset {
		t.Error("expected release_twin_on_reset to be true")
	}
	if cfg.Subset.BVHLeafSize != 4 {
		t.Errorf("expected leaf size 4, got %d", cfg.Subset.BVHLeafSize)
	}
	if cfg.Logging.LogFile != "viewer.log" {
		t.Errorf("expected log file viewer.log, got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invalid.yaml")

	invalidYAML := `
viewer:
  width: not a number
  invalid syntax here
`
	if err := os.WriteFile(path, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	if err := loadFromFile(Default(), path); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	if err := loadFromFile(Default(), "/nonexistent/path/ifcview.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero width", func(c *Config) { c.Viewer.Width = 0 }},
		{"negative height", func(c *Config) { c.Viewer.Height = -1 }},
		{"zero leaf size", func(c *Config) { c.Subset.BVHLeafSize = 0 }},
		{"alpha above one", func(c *Config) { c.Display.Ghost.A = 1.5 }},
		{"negative alpha", func(c *Config) { c.Display.Highlight.A = -0.1 }},
		{"sun below horizon", func(c *Config) { c.Viewer.SunElevation = -5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestConfigDirXDG(t *testing.T) {
	dir := ConfigDir()
	if dir == "" {
		t.Fatal("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))
	t.Setenv("HOME", tmpDir)

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	if err := os.WriteFile(filepath.Join(tmpDir, FileName), []byte("viewer:\n  width: 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Error("expected to find config in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	*flagDebug = true
	*flagModel = "campus.yaml"
	*flagWidth = 2560
	defer func() {
		*flagDebug = false
		*flagModel = ""
		*flagWidth = 0
	}()

	cfg := Default()
	applyFlags(cfg)

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Viewer.Model != "campus.yaml" {
		t.Errorf("expected model campus.yaml, got %s", cfg.Viewer.Model)
	}
	if cfg.Viewer.Width != 2560 {
		t.Errorf("expected width 2560, got %d", cfg.Viewer.Width)
	}
	if cfg.Viewer.Height != 720 {
		t.Errorf("height should be untouched, got %d", cfg.Viewer.Height)
	}
}

func TestLoadPriority(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte("viewer:\n  width: 1600\n  height: 900\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = path
	*flagWidth = 1920
	defer func() {
		*flagConfig = ""
		*flagWidth = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Viewer.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Viewer.Width)
	}
	if cfg.Viewer.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Viewer.Height)
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", FileName)

	cfg := Default()
	cfg.Viewer.Model = "saved.yaml"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if loaded.Viewer.Model != "saved.yaml" {
		t.Errorf("expected model saved.yaml after reload, got %s", loaded.Viewer.Model)
	}
}
