// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package icons embeds the SVG icon set used by the frame compositor and
// rasterizes icons at the requested pixel size.
package icons

import (
	"bytes"
	"embed"
	"fmt"
	"image"
	"io/fs"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

//go:embed svg/*.svg
var svgFS embed.FS

// Unknown is the fallback icon name for unmapped conditions and phases.
const Unknown = "unknown"

// conditionIcons maps the closed set of weather condition names to icons.
var conditionIcons = map[string]string{
	"Clear":         "clear-day",
	"Sunny":         "clear-day",
	"Partly cloudy": "cloudy-3-day",
	"Cloudy":        "cloudy",
	"Overcast":      "cloudy",
	"Rain":          "rainy-3",
	"Light rain":    "rainy-3-day",
	"Heavy rain":    "rainy-3-night",
	"Thunderstorm":  "thunderstorms",
	"Snow":          "snowy-3",
	"Fog":           "fog",
	"Haze":          "haze",
	"Wind":          "wind",
}

// moonIcons maps moon phase identifiers to icons.
var moonIcons = map[string]string{
	"FIRST_QUARTER":   "first-quarter",
	"FULL_MOON":       "full-moon",
	"LAST_QUARTER":    "last-quarter",
	"NEW_MOON":        "new-moon",
	"WANING_CRESCENT": "waning-crescent",
	"WANING_GIBBOUS":  "waning-gibbous",
	"WAXING_CRESCENT": "waxing-crescent",
	"WAXING_GIBBOUS":  "waxing-gibbous",
}

// Set is a loaded icon collection. Icons are stored as raw SVG and parsed
// per Render call; the pipeline renders a handful of icons per tick so the
// parse cost is irrelevant.
type Set struct {
	raw map[string][]byte
}

// Load reads the embedded icon set.
func Load() (*Set, error) {
	entries, err := fs.ReadDir(svgFS, "svg")
	if err != nil {
		return nil, fmt.Errorf("icons: read embedded dir: %w", err)
	}
	s := &Set{raw: make(map[string][]byte, len(entries))}
	for _, e := range entries {
		name := strings.TrimSuffix(e.Name(), ".svg")
		data, err := fs.ReadFile(svgFS, "svg/"+e.Name())
		if err != nil {
			return nil, fmt.Errorf("icons: read %s: %w", e.Name(), err)
		}
		s.raw[name] = data
	}
	return s, nil
}

// Condition returns the icon name for a weather condition string, falling
// back to Unknown for anything outside the closed set.
func Condition(condition string) string {
	if name, ok := conditionIcons[condition]; ok {
		return name
	}
	return Unknown
}

// Moon returns the icon name for a moon phase identifier such as
// "WAXING_GIBBOUS", falling back to Unknown.
func Moon(phase string) string {
	key := strings.ToUpper(strings.TrimSpace(phase))
	key = strings.ReplaceAll(key, " ", "_")
	if name, ok := moonIcons[key]; ok {
		return name
	}
	return Unknown
}

// Has reports whether an icon with the given name exists in the set.
func (s *Set) Has(name string) bool {
	_, ok := s.raw[name]
	return ok
}

// Render rasterizes the named icon into a size x size RGBA image.
func (s *Set) Render(name string, size int) (image.Image, error) {
	data, ok := s.raw[name]
	if !ok {
		return nil, fmt.Errorf("icons: no icon %q", name)
	}
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("icons: parse %q: %w", name, err)
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(size, size, scanner), 1.0)
	return img, nil
}
