// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package textfit chooses font sizes and line breaks so text stays inside a
// bounded box. Sizing is a pure function of the text, the bounds and the
// font's glyph metrics, so identical inputs always produce identical output.
package textfit

import (
	"fmt"
	"os"
	"strings"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// MinSize is the smallest point size tried. If text does not fit even at
// MinSize the overflowing result is returned rather than an error.
const MinSize = 10

// Font wraps a parsed TrueType font and hands out sized faces.
type Font struct {
	tt *truetype.Font
}

// Parse parses raw TTF data.
func Parse(data []byte) (*Font, error) {
	tt, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("textfit: parse font: %w", err)
	}
	return &Font{tt: tt}, nil
}

// LoadFile parses a TTF file from disk.
func LoadFile(path string) (*Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("textfit: read font %q: %w", path, err)
	}
	return Parse(data)
}

func mustParse(data []byte) *Font {
	f, err := Parse(data)
	if err != nil {
		panic(err)
	}
	return f
}

var (
	defaultRegular = mustParse(goregular.TTF)
	defaultBold    = mustParse(gobold.TTF)
)

// Default returns the embedded Go Regular font.
func Default() *Font { return defaultRegular }

// DefaultBold returns the embedded Go Bold font.
func DefaultBold() *Font { return defaultBold }

// Face returns a face rendering at the given integer point size.
func (f *Font) Face(points int) font.Face {
	return truetype.NewFace(f.tt, &truetype.Options{
		Size: float64(points),
		DPI:  72,
	})
}

// Width returns the rendered single-line width of text at the given size.
func (f *Font) Width(text string, points int) int {
	return font.MeasureString(f.Face(points), text).Ceil()
}

// LineHeight returns the line advance at the given size.
func (f *Font) LineHeight(points int) int {
	return f.Face(points).Metrics().Height.Ceil()
}

// FitWidth returns the original text together with the largest point size
// not above maxSize whose single-line width is at most maxWidth. Sizes are
// tried in integer decrements. When even MinSize overflows, MinSize is
// returned and the overflow is accepted.
func FitWidth(f *Font, text string, maxWidth, maxSize int) (string, int) {
	size := maxSize
	for size > MinSize && f.Width(text, size) > maxWidth {
		size--
	}
	return text, size
}

// Wrap splits text into greedy word-wrapped lines no wider than maxWidth at
// the given size. Words are whitespace-delimited and never split mid-token;
// a single word wider than maxWidth occupies a line of its own.
func Wrap(f *Font, text string, maxWidth, size int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	var lines []string
	line := words[0]
	for _, word := range words[1:] {
		test := line + " " + word
		if f.Width(test, size) <= maxWidth {
			line = test
		} else {
			lines = append(lines, line)
			line = word
		}
	}
	return append(lines, line)
}

// FitArea wraps text into lines no wider than maxWidth, choosing the largest
// point size not above maxSize whose total wrapped height fits maxHeight.
// When no size down to MinSize satisfies the height bound, the MinSize
// wrapping is returned.
func FitArea(f *Font, text string, maxWidth, maxHeight, maxSize int) ([]string, int) {
	if maxSize < MinSize {
		maxSize = MinSize
	}
	for size := maxSize; size > MinSize; size-- {
		lines := Wrap(f, text, maxWidth, size)
		if len(lines)*f.LineHeight(size) <= maxHeight {
			return lines, size
		}
	}
	return Wrap(f, text, maxWidth, MinSize), MinSize
}
