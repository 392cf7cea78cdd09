// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package photos produces slideshow records by cycling through an image
// directory in sorted filename order. JPEG files are upright-corrected
// from their EXIF orientation tag before display.
package photos

import (
	"context"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"

	"infohud/content"
)

var supportedExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".bmp":  true,
	".gif":  true,
}

// Library cycles through the photos in a directory. The directory is
// re-listed on every call so added or removed files take effect without
// a restart.
type Library struct {
	dir string
	log *slog.Logger

	mu   sync.Mutex
	next int
}

// New builds a Library over dir.
func New(dir string, log *slog.Logger) *Library {
	if log == nil {
		log = slog.Default()
	}
	return &Library{dir: dir, log: log}
}

// Fetch returns the next photo in rotation, or nil when the directory is
// empty or unreadable. Unreadable files are skipped, not fatal.
func (l *Library) Fetch(ctx context.Context) *content.PhotoRecord {
	names := l.list()
	if len(names) == 0 {
		l.log.Warn("no photos available", "dir", l.dir)
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for range names {
		if err := ctx.Err(); err != nil {
			return nil
		}
		name := names[l.next%len(names)]
		l.next = (l.next + 1) % len(names)
		img, err := l.load(filepath.Join(l.dir, name))
		if err != nil {
			l.log.Warn("skipping unreadable photo", "name", name, "err", err)
			continue
		}
		return &content.PhotoRecord{Name: name, Image: img}
	}
	return nil
}

func (l *Library) list() []string {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		l.log.Warn("photo dir unreadable", "dir", l.dir, "err", err)
		return nil
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if supportedExts[strings.ToLower(filepath.Ext(e.Name()))] {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names
}

func (l *Library) load(path string) (image.Image, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, err
	}
	return reorient(img, orientation(path)), nil
}

// orientation reads the EXIF orientation tag, defaulting to 1 (upright)
// for files without EXIF data.
func orientation(path string) int {
	f, err := os.Open(path)
	if err != nil {
		return 1
	}
	defer f.Close()
	x, err := exif.Decode(f)
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	v, err := tag.Int(0)
	if err != nil {
		return 1
	}
	return v
}

// reorient maps the eight EXIF orientations onto upright pixels.
func reorient(img image.Image, o int) image.Image {
	switch o {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.Transpose(img)
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.Transverse(img)
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}
