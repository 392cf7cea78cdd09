// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package config loads the YAML runtime configuration. Missing fields fall
// back to defaults; an invalid file or an impossible combination (no mode
// enabled, bad geometry) refuses to start.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Mode holds the per-content-mode settings.
type Mode struct {
	Enabled bool `yaml:"enabled"`
	// DwellSeconds is how long a frame of this mode stays on the panel.
	DwellSeconds int `yaml:"dwell_seconds"`
}

// Dwell returns the dwell as a duration.
func (m Mode) Dwell() time.Duration {
	return time.Duration(m.DwellSeconds) * time.Second
}

// Config is the full runtime configuration.
type Config struct {
	// Sink selects the frame destination: "preview", "web" or "epd".
	Sink string `yaml:"sink"`
	// WebAddr is the listen address of the web preview sink.
	WebAddr string `yaml:"web_addr"`

	// Panel geometry before the final portrait rotation.
	Width  int `yaml:"width"`
	Height int `yaml:"height"`

	Location string   `yaml:"location"`
	Symbols  []string `yaml:"symbols"`
	FeedURL  string   `yaml:"feed_url"`
	PhotoDir string   `yaml:"photo_dir"`

	SummarizerURL   string `yaml:"summarizer_url"`
	SummarizerModel string `yaml:"summarizer_model"`

	ArchiveDir  string `yaml:"archive_dir"`
	ArchiveKeep int    `yaml:"archive_keep"`
	CacheDir    string `yaml:"cache_dir"`

	// FontPath overrides the embedded typeface with a TTF file.
	FontPath string `yaml:"font_path"`
	LogLevel string `yaml:"log_level"`

	Photo   Mode `yaml:"photo"`
	Stock   Mode `yaml:"stock"`
	News    Mode `yaml:"news"`
	Weather Mode `yaml:"weather"`
}

// Default returns the configuration used when fields are absent.
func Default() Config {
	return Config{
		Sink:        "preview",
		WebAddr:     ":8089",
		Width:       600,
		Height:      400,
		Location:    "Irvine, CA",
		Symbols:     []string{"TSLA", "AAPL", "MSFT", "GOOG", "AMZN"},
		FeedURL:     "https://feeds.bbci.co.uk/news/world/rss.xml",
		PhotoDir:    "photos",
		ArchiveDir:  "tmp",
		ArchiveKeep: 10,
		CacheDir:    "tmp",
		LogLevel:    "info",
		Photo:       Mode{Enabled: true, DwellSeconds: 60},
		Stock:       Mode{Enabled: true, DwellSeconds: 30},
		News:        Mode{Enabled: true, DwellSeconds: 45},
		Weather:     Mode{Enabled: true, DwellSeconds: 30},
	}
}

// Load reads the YAML file at path on top of the defaults. A missing file
// is not an error: the defaults are returned as-is.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects configurations the scheduler cannot run with.
func (c Config) Validate() error {
	switch c.Sink {
	case "preview", "web", "epd":
	default:
		return fmt.Errorf("unknown sink %q", c.Sink)
	}
	if c.Width <= 0 || c.Height <= 62 {
		return fmt.Errorf("invalid panel geometry %dx%d", c.Width, c.Height)
	}
	if !c.Photo.Enabled && !c.Stock.Enabled && !c.News.Enabled && !c.Weather.Enabled {
		return fmt.Errorf("no content mode enabled")
	}
	for _, m := range []struct {
		name string
		mode Mode
	}{
		{"photo", c.Photo},
		{"stock", c.Stock},
		{"news", c.News},
		{"weather", c.Weather},
	} {
		if m.mode.Enabled && m.mode.DwellSeconds <= 0 {
			return fmt.Errorf("mode %s enabled with non-positive dwell", m.name)
		}
	}
	if c.ArchiveKeep <= 0 {
		return fmt.Errorf("archive_keep must be positive")
	}
	return nil
}
