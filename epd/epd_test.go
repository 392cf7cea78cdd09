// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package epd

import (
	"image"
	"image/color"
	"testing"
)

// fakeDrawer records calls; it implements display.Drawer plus the optional
// Init/Clear/Sleep capabilities.
type fakeDrawer struct {
	bounds image.Rectangle

	inited  bool
	drawn   int
	cleared bool
	slept   bool
	halted  bool
}

func (f *fakeDrawer) String() string               { return "fakeDrawer" }
func (f *fakeDrawer) Halt() error                  { f.halted = true; return nil }
func (f *fakeDrawer) ColorModel() color.Model      { return color.RGBAModel }
func (f *fakeDrawer) Bounds() image.Rectangle      { return f.bounds }
func (f *fakeDrawer) Init() error                  { f.inited = true; return nil }
func (f *fakeDrawer) Clear(c color.Color) error    { f.cleared = true; return nil }
func (f *fakeDrawer) Sleep() error                 { f.slept = true; return nil }
func (f *fakeDrawer) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	f.drawn++
	return nil
}

// bareDrawer implements only the required display.Drawer surface.
type bareDrawer struct {
	halted bool
}

func (b *bareDrawer) String() string          { return "bareDrawer" }
func (b *bareDrawer) Halt() error             { b.halted = true; return nil }
func (b *bareDrawer) ColorModel() color.Model { return color.RGBAModel }
func (b *bareDrawer) Bounds() image.Rectangle { return image.Rect(0, 0, 8, 8) }
func (b *bareDrawer) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	return nil
}

func TestDrawerSinkForwardsLifecycle(t *testing.T) {
	d := &fakeDrawer{bounds: image.Rect(0, 0, 400, 600)}
	s := NewDrawerSink(d)

	if err := s.Init(); err != nil || !d.inited {
		t.Errorf("Init not forwarded: err=%v inited=%v", err, d.inited)
	}
	if err := s.Display(image.NewRGBA(image.Rect(0, 0, 400, 600))); err != nil {
		t.Errorf("Display failed: %v", err)
	}
	if d.drawn != 1 {
		t.Errorf("Draw called %d times, want 1", d.drawn)
	}
	if err := s.Clear(); err != nil || !d.cleared {
		t.Errorf("Clear not forwarded: err=%v cleared=%v", err, d.cleared)
	}
	if err := s.Sleep(); err != nil || !d.slept {
		t.Errorf("Sleep not forwarded: err=%v slept=%v", err, d.slept)
	}
}

func TestDrawerSinkBareDriverNoOps(t *testing.T) {
	d := &bareDrawer{}
	s := NewDrawerSink(d)

	if err := s.Init(); err != nil {
		t.Errorf("Init on bare driver: %v", err)
	}
	if err := s.Sleep(); err != nil {
		t.Errorf("Sleep on bare driver: %v", err)
	}
	if err := s.Clear(); err != nil || !d.halted {
		t.Errorf("Clear should fall back to Halt: err=%v halted=%v", err, d.halted)
	}
}

func TestDrawerSinkSizeMismatch(t *testing.T) {
	d := &fakeDrawer{bounds: image.Rect(0, 0, 400, 600)}
	s := NewDrawerSink(d)

	if err := s.Display(image.NewRGBA(image.Rect(0, 0, 600, 400))); err == nil {
		t.Error("expected size mismatch error")
	}
	if d.drawn != 0 {
		t.Errorf("Draw called %d times on mismatch, want 0", d.drawn)
	}
}
