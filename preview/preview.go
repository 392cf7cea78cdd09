// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package preview implements a display sink that renders frames to the
// terminal (stdout) using ANSI color codes.
//
// Useful while you are waiting for your 6-color e-paper panel to come by
// mail, or when developing layouts on a machine without the hardware.
package preview

import (
	"bytes"
	"image"
	"image/color"
	"io"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"

	"infohud/epd"
)

// Opts represents the options available for this sink.
type Opts struct {
	// MaxColumns bounds the rendered width in terminal cells. Frames wider
	// than this are downsampled by integer steps. Defaults to 100.
	MaxColumns int
	// Palette used for the ANSI approximation.
	Palette *ansi256.Palette

	_ struct{}
}

// Sink renders each displayed frame as colored terminal cells. One cell
// covers a stepxstep block of frame pixels, sampled at the block origin;
// e-paper content is flat-colored after quantization so sampling beats
// averaging for legibility.
type Sink struct {
	w       io.Writer
	cols    int
	palette ansi256.Palette

	buf bytes.Buffer
}

// New returns a Sink writing to the console.
func New(opts *Opts) *Sink {
	cols := opts.MaxColumns
	if cols <= 0 {
		cols = 100
	}
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	return &Sink{
		w:       colorable.NewColorableStdout(),
		cols:    cols,
		palette: *p,
	}
}

func (s *Sink) String() string {
	return "TerminalPreview"
}

// Init implements epd.Sink. The terminal needs no setup.
func (s *Sink) Init() error { return nil }

// Display writes an ANSI rendition of the frame.
func (s *Sink) Display(frame image.Image) error {
	b := frame.Bounds()
	step := 1
	for b.Dx()/step > s.cols {
		step++
	}
	// Two pixel rows per character cell keeps the aspect ratio roughly
	// square in most terminal fonts.
	rowStep := step * 2

	s.buf.Reset()
	for y := b.Min.Y; y < b.Max.Y; y += rowStep {
		for x := b.Min.X; x < b.Max.X; x += step {
			r16, g16, b16, _ := frame.At(x, y).RGBA()
			c := color.NRGBA{byte(r16 >> 8), byte(g16 >> 8), byte(b16 >> 8), 255}
			_, _ = io.WriteString(&s.buf, s.palette.Block(c))
		}
		_, _ = s.buf.WriteString("\033[0m\n")
	}
	_, err := s.buf.WriteTo(s.w)
	return err
}

// Clear prints a separator; there is no persistent surface to blank.
func (s *Sink) Clear() error {
	_, err := s.w.Write([]byte("\033[0m\n"))
	return err
}

// Sleep implements epd.Sink as a no-op.
func (s *Sink) Sleep() error { return nil }

var _ epd.Sink = (*Sink)(nil)
