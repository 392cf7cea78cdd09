// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package webpreview implements a display sink doubling as an HTTP handler.
// Clients get a PNG snapshot of the most recently displayed frame, so the
// HUD output can be checked from a browser on devices without a panel (or
// next to the real one).
package webpreview

import (
	"bytes"
	"image"
	"image/png"
	"net/http"
	"sync"

	"infohud/epd"
)

// Sink keeps the last displayed frame encoded as PNG.
type Sink struct {
	mu       sync.Mutex
	snapshot []byte
}

// New creates an empty sink. Serve it with http.Handle or via its handler
// on any mux path.
func New() *Sink {
	return &Sink{}
}

func (s *Sink) String() string { return "WebPreview" }

// Init implements epd.Sink.
func (s *Sink) Init() error { return nil }

// Display encodes the frame and publishes it as the current snapshot.
func (s *Sink) Display(frame image.Image) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, frame); err != nil {
		return err
	}
	s.mu.Lock()
	s.snapshot = buf.Bytes()
	s.mu.Unlock()
	return nil
}

// Clear drops the snapshot.
func (s *Sink) Clear() error {
	s.mu.Lock()
	s.snapshot = nil
	s.mu.Unlock()
	return nil
}

// Sleep implements epd.Sink as a no-op.
func (s *Sink) Sleep() error { return nil }

// ServeHTTP replies with the current snapshot, or 404 before the first
// frame was displayed.
func (s *Sink) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	snap := s.snapshot
	s.mu.Unlock()

	if snap == nil {
		http.Error(w, "no frame displayed yet", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(snap)
}

var _ epd.Sink = (*Sink)(nil)
var _ http.Handler = (*Sink)(nil)
