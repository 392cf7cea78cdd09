// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package epd defines the display sink consumed by the scheduler and adapts
// periph display drivers to it. The panel driver itself stays outside this
// module; any display.Drawer can be plugged in.
package epd

import (
	"fmt"
	"image"
	"image/color"

	"periph.io/x/conn/v3/display"
)

// Sink accepts fully rendered frames. Display is fire-and-forget from the
// pipeline's perspective: errors are logged by the scheduler, not retried.
type Sink interface {
	Init() error
	Display(frame image.Image) error
	Clear() error
	Sleep() error
}

// Optional capabilities a display.Drawer may expose beyond Draw.
type initer interface {
	Init() error
}

type clearer interface {
	Clear(color.Color) error
}

type sleeper interface {
	Sleep() error
}

// DrawerSink adapts a periph display.Drawer into a Sink. Init, Clear and
// Sleep forward to the driver when it implements them and are no-ops
// otherwise; Halt doubles as Clear as a last resort, matching the periph
// driver convention.
type DrawerSink struct {
	d display.Drawer
}

// NewDrawerSink wraps a driver.
func NewDrawerSink(d display.Drawer) *DrawerSink {
	return &DrawerSink{d: d}
}

// Init initializes the driver when it supports explicit initialization.
func (s *DrawerSink) Init() error {
	if i, ok := s.d.(initer); ok {
		return i.Init()
	}
	return nil
}

// Display pushes one frame to the panel. The frame must match the panel
// bounds exactly; e-paper drivers do not scale.
func (s *DrawerSink) Display(frame image.Image) error {
	want := s.d.Bounds()
	got := frame.Bounds()
	if got.Dx() != want.Dx() || got.Dy() != want.Dy() {
		return fmt.Errorf("epd: frame %dx%d does not match panel %dx%d",
			got.Dx(), got.Dy(), want.Dx(), want.Dy())
	}
	return s.d.Draw(want, frame, got.Min)
}

// Clear blanks the panel to white.
func (s *DrawerSink) Clear() error {
	if c, ok := s.d.(clearer); ok {
		return c.Clear(color.White)
	}
	return s.d.Halt()
}

// Sleep puts the panel into deep sleep when the driver supports it.
func (s *DrawerSink) Sleep() error {
	if sl, ok := s.d.(sleeper); ok {
		return sl.Sleep()
	}
	return nil
}

var _ Sink = (*DrawerSink)(nil)
