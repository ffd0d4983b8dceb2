// Package config provides configuration loading for the cvatdump CLI.
package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/eyedl/cvat-reader/pkg/overlay"
	"github.com/eyedl/cvat-reader/pkg/ports"
)

// Config represents the full cvatdump configuration.
type Config struct {
	// Dataset
	LoadVideo  bool   `yaml:"load_video"`
	FFmpegPath string `yaml:"ffmpeg_path"`

	// Logging
	LogLevel string `yaml:"log_level"`
	Quiet    bool   `yaml:"quiet"`

	// Overlay rendering
	Overlay OverlayConfig `yaml:"overlay"`
}

// OverlayConfig controls annotation rendering in the dump command.
type OverlayConfig struct {
	Captions    bool    `yaml:"captions"`
	BorderWidth float64 `yaml:"border_width"`
	OutputDir   string  `yaml:"output_dir"`
	ScaleWidth  int     `yaml:"scale_width"`  // 0 keeps the source width
	ScaleHeight int     `yaml:"scale_height"` // 0 keeps the source height
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		LoadVideo: true,
		LogLevel:  "info",
		Overlay: OverlayConfig{
			Captions:    true,
			BorderWidth: 2,
			OutputDir:   "./frames",
		},
	}
}

// Load reads a YAML config file and applies it over the defaults.
func Load(path string, fsys ports.FileSystem) (Config, error) {
	cfg := Defaults()

	data, err := fsys.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// OverlayTheme translates the overlay section into a renderer theme.
func (c Config) OverlayTheme() overlay.Theme {
	theme := overlay.DefaultTheme()
	theme.ShowCaptions = c.Overlay.Captions
	if c.Overlay.BorderWidth > 0 {
		theme.BorderWidth = c.Overlay.BorderWidth
	}
	return theme
}
