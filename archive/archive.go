// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package archive persists recently rendered frames to disk for inspection.
// It is pure bookkeeping: failures are logged by the caller's logger and
// never interrupt the display pipeline.
package archive

import (
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// DefaultKeep is how many frames are retained per content kind.
const DefaultKeep = 10

const timestampFormat = "20060102-150405"

// Archive stores frames as timestamp-named PNG files under a directory,
// pruning old files per kind prefix.
type Archive struct {
	dir   string
	keep  int
	clock func() time.Time
	log   *slog.Logger
}

// Option adjusts an Archive.
type Option func(*Archive)

// WithKeep overrides the per-kind retention count.
func WithKeep(n int) Option {
	return func(a *Archive) { a.keep = n }
}

// WithClock overrides the timestamp source.
func WithClock(clock func() time.Time) Option {
	return func(a *Archive) { a.clock = clock }
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(a *Archive) { a.log = log }
}

// New creates the archive directory if needed.
func New(dir string, opts ...Option) (*Archive, error) {
	a := &Archive{
		dir:   dir,
		keep:  DefaultKeep,
		clock: time.Now,
		log:   slog.Default(),
	}
	for _, o := range opts {
		o(a)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("archive: create %q: %w", dir, err)
	}
	return a, nil
}

// Store writes the frame as <kind>_<timestamp>.png and prunes all but the
// newest files with the kind prefix. Errors are logged and swallowed; the
// archive must never block a display tick.
func (a *Archive) Store(frame image.Image, kind string) {
	name := fmt.Sprintf("%s_%s.png", kind, a.clock().Format(timestampFormat))
	path := filepath.Join(a.dir, name)

	f, err := os.Create(path)
	if err != nil {
		a.log.Warn("failed to create debug frame", "path", path, "err", err)
		return
	}
	if err := png.Encode(f, frame); err != nil {
		f.Close()
		a.log.Warn("failed to encode debug frame", "path", path, "err", err)
		return
	}
	if err := f.Close(); err != nil {
		a.log.Warn("failed to close debug frame", "path", path, "err", err)
		return
	}
	a.log.Debug("debug frame saved", "path", path)

	a.prune(kind)
}

// prune deletes all but the keep newest files whose name starts with the
// kind prefix. Names embed a lexicographically sortable timestamp, so a
// reverse name sort orders newest first.
func (a *Archive) prune(kind string) {
	entries, err := os.ReadDir(a.dir)
	if err != nil {
		a.log.Warn("failed to list archive dir", "dir", a.dir, "err", err)
		return
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), kind) {
			names = append(names, e.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))

	if len(names) <= a.keep {
		return
	}
	for _, name := range names[a.keep:] {
		path := filepath.Join(a.dir, name)
		if err := os.Remove(path); err != nil {
			a.log.Warn("failed to delete old debug frame", "path", path, "err", err)
			continue
		}
		a.log.Info("deleted old debug frame", "path", path)
	}
}
