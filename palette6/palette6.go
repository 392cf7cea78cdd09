// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package palette6 reduces RGB rasters to the six discrete colors a 6-color
// e-paper panel can physically render. Sending an unquantized image to the
// panel produces undefined rendering.
package palette6

import (
	"image"
	"image/color"
)

// The six meaningful panel colors, in panel index order.
var (
	Black  = color.RGBA{0, 0, 0, 255}
	White  = color.RGBA{255, 255, 255, 255}
	Yellow = color.RGBA{255, 255, 0, 255}
	Red    = color.RGBA{255, 0, 0, 255}
	Blue   = color.RGBA{0, 0, 255, 255}
	Green  = color.RGBA{0, 255, 0, 255}
)

// Palette holds the six meaningful entries. Nearest-color lookups go through
// this palette only, so a filler entry can never win a tie against a
// meaningful color.
var Palette = color.Palette{Black, White, Yellow, Red, Blue, Green}

// Size is the panel palette capacity.
const Size = 256

// Full returns the panel-format palette: the six meaningful entries followed
// by duplicate-black filler up to Size entries.
func Full() color.Palette {
	p := make(color.Palette, 0, Size)
	p = append(p, Palette...)
	for len(p) < Size {
		p = append(p, Black)
	}
	return p
}

// Quantize maps every pixel of src to its nearest of the six panel colors.
// The result has the same dimensions as src and carries the full padded
// palette, but only indices 0-5 appear in the pixel data.
func Quantize(src image.Image) *image.Paletted {
	b := src.Bounds()
	dst := image.NewPaletted(b, Full())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dst.SetColorIndex(x, y, uint8(Palette.Index(src.At(x, y))))
		}
	}
	return dst
}
