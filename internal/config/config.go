package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"bvh-raytracer/internal/background"
	"bvh-raytracer/internal/film"
	"bvh-raytracer/internal/lighting"
)

// Config holds all configurable paths and render settings.
type Config struct {
	// Paths
	SceneDir  string `json:"scene_dir"`
	OutputDir string `json:"output_dir"`

	// Render settings
	Format        string  `json:"format"`
	Workers       int     `json:"workers"`
	Jobs          int     `json:"jobs"`
	Seed          int64   `json:"seed"`
	Supersample   int     `json:"supersample"`
	ShadowSamples int     `json:"shadow_samples"`
	ShadowRadius  float64 `json:"shadow_radius"` // < 0 gives hard spotlight shadows

	// Backgrounds
	BackgroundMaxWidth int    `json:"background_max_width"`
	BackgroundFilter   string `json:"background_filter"`

	// Upload; credentials come from the environment
	S3Bucket   string `json:"s3_bucket"`
	S3Prefix   string `json:"s3_prefix"`
	S3Region   string `json:"s3_region"`
	S3Endpoint string `json:"s3_endpoint"`
}

// Load reads a JSON config file and returns Config.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Resolve fills in any empty fields with defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	if flags.SceneDir != "" {
		c.SceneDir = flags.SceneDir
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Format != "" {
		c.Format = flags.Format
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.Jobs > 0 {
		c.Jobs = flags.Jobs
	}
	if flags.Seed != 0 {
		c.Seed = flags.Seed
	}
	if flags.Supersample > 0 {
		c.Supersample = flags.Supersample
	}
	if flags.Bucket != "" {
		c.S3Bucket = flags.Bucket
	}

	if c.SceneDir == "" {
		c.SceneDir = detectSceneDir()
	}

	// Relative output paths live under the scene dir
	if c.OutputDir == "" {
		c.OutputDir = filepath.Join(c.SceneDir, "renders")
	} else if !filepath.IsAbs(c.OutputDir) && c.SceneDir != "" {
		c.OutputDir = filepath.Join(c.SceneDir, c.OutputDir)
	}

	// Defaults for render settings
	if c.Format == "" {
		c.Format = string(film.BMP)
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.Jobs <= 0 {
		c.Jobs = 1
	}
	if c.Supersample <= 0 {
		c.Supersample = 1
	}
	if c.ShadowSamples <= 0 {
		c.ShadowSamples = lighting.DefaultShadowSamples
	}
	if c.ShadowRadius == 0 {
		c.ShadowRadius = lighting.DefaultShadowRadius
	}
	if c.BackgroundMaxWidth <= 0 {
		c.BackgroundMaxWidth = 4096
	}
	if c.BackgroundFilter == "" {
		c.BackgroundFilter = background.Nearest.String()
	}
}

// Validate checks the enumerated settings.
func (c *Config) Validate() error {
	if _, err := film.ParseFormat(c.Format); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := background.ParseFilter(c.BackgroundFilter); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	SceneDir    string
	OutputDir   string
	Format      string
	Workers     int
	Jobs        int
	Seed        int64
	Supersample int
	Bucket      string
}

// detectSceneDir prefers a scenes/ directory under the working directory.
func detectSceneDir() string {
	cwd, _ := os.Getwd()
	if info, err := os.Stat(filepath.Join(cwd, "scenes")); err == nil && info.IsDir() {
		return filepath.Join(cwd, "scenes")
	}
	return cwd
}
