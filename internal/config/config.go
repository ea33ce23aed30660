package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	apng "github.com/raph-of-burgondy/APNG-Builder"
)

// Config represents an apngasm run
type Config struct {
	Width        uint32   `yaml:"width"`         // Canvas width (default: first frame)
	Height       uint32   `yaml:"height"`        // Canvas height (default: first frame)
	FPS          uint16   `yaml:"fps"`           // Frames per second (default: 10)
	Loops        uint32   `yaml:"loops"`         // 0 loops forever
	Compression  string   `yaml:"compression"`   // default, none, speed, best
	Concurrency  int      `yaml:"concurrency"`   // Frames encoded at once, 0 = all
	Raw          bool     `yaml:"raw"`           // Frames are PNGs to pass through untouched
	CheckHeaders bool     `yaml:"check_headers"` // Reject raw frames that are not RGBA at canvas size
	Output       string   `yaml:"output"`        // Output path, "" or "-" for stdout
	Frames       []string `yaml:"frames"`        // Frame image paths in order
}

var compressionLevels = map[string]apng.CompressionLevel{
	"default": apng.DefaultCompression,
	"none":    apng.NoCompression,
	"speed":   apng.BestSpeed,
	"best":    apng.BestCompression,
}

// Load reads and parses a YAML configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration and fills in defaults
func Validate(cfg *Config) error {
	if cfg.FPS == 0 {
		cfg.FPS = 10
	}
	if cfg.Compression == "" {
		cfg.Compression = "default"
	}
	if _, ok := compressionLevels[cfg.Compression]; !ok {
		return fmt.Errorf("compression must be one of default, none, speed, best (got %q)", cfg.Compression)
	}
	if cfg.Concurrency < 0 {
		return fmt.Errorf("concurrency must be >= 0")
	}
	if (cfg.Width == 0) != (cfg.Height == 0) {
		return fmt.Errorf("width and height must be given together")
	}
	if len(cfg.Frames) == 0 {
		return fmt.Errorf("at least one frame is required")
	}
	return nil
}

// CompressionLevel is the encoder level named by Compression
func (c *Config) CompressionLevel() apng.CompressionLevel {
	return compressionLevels[c.Compression]
}

// Animation is the canvas and timing of the run. Width and height must be
// known by then.
func (c *Config) Animation() apng.Animation {
	return apng.Animation{
		Width:    c.Width,
		Height:   c.Height,
		DelayDen: c.FPS,
		NumPlays: c.Loops,
	}
}
