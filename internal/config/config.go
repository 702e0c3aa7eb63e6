// Package config handles viewer configuration loading and management.
package config

// Config holds all viewer settings.
type Config struct {
	Viewer  ViewerConfig  `yaml:"viewer"`
	Display DisplayConfig `yaml:"display"`
	Subset  SubsetConfig  `yaml:"subset"`
	Logging LoggingConfig `yaml:"logging"`
}

// ViewerConfig holds window and model settings.
type ViewerConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
	Model      string `yaml:"model"` // Building fixture; empty generates a sample frame
	Watch      bool   `yaml:"watch"` // Reload the fixture when it changes on disk

	SunAzimuth    float32 `yaml:"sun_azimuth"`   // Degrees around Y
	SunElevation  float32 `yaml:"sun_elevation"` // Degrees above the horizon
	ScreenshotDir string  `yaml:"screenshot_dir"`
}

// StateConfig is a display state as written in YAML.
type StateConfig struct {
	R float32 `yaml:"r"`
	G float32 `yaml:"g"`
	B float32 `yaml:"b"`
	A float32 `yaml:"a"`
	H float32 `yaml:"h"`
}

// DisplayConfig holds the display states the viewer applies on selection.
type DisplayConfig struct {
	Highlight StateConfig `yaml:"highlight"`
	Ghost     StateConfig `yaml:"ghost"`
	// ReleaseTwinOnReset drops the transparent twin when the viewer resets
	// every element to opaque.
	ReleaseTwinOnReset bool `yaml:"release_twin_on_reset"`
}

// SubsetConfig holds subset manager settings.
type SubsetConfig struct {
	BVHLeafSize int `yaml:"bvh_leaf_size"` // Max triangles per BVH leaf
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Viewer: ViewerConfig{
			Title:  "ifcview",
			Width:  1280,
			Height: 720,
			VSync:  true,

			SunAzimuth:    35,
			SunElevation:  60,
			ScreenshotDir: "screenshots",
		},
		Display: DisplayConfig{
			Highlight: StateConfig{R: 1, G: 0.6, B: 0, A: 1, H: 1},
			Ghost:     StateConfig{R: 0.5, G: 0.5, B: 0.5, A: 0.2, H: 0},
		},
		Subset: SubsetConfig{
			BVHLeafSize: 8,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
