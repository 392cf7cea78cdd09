// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package schedule drives the display loop: one content mode per tick in
// round-robin order, each frame composed, quantized, archived and shown,
// then the mode's dwell elapses. Content failures skip the frame but never
// stop the loop.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"infohud/compose"
	"infohud/content"
	"infohud/palette6"
)

// Source fetches the record for one mode. A nil record with a nil error
// means no content is currently available.
type Source func(ctx context.Context) (content.Record, error)

// Mode pairs a content source with its dwell time.
type Mode struct {
	Kind  content.Kind
	Dwell time.Duration
	Fetch Source
}

// Archiver stores debug copies of displayed frames.
type Archiver interface {
	Store(frame image.Image, kind string)
}

// Displayer is the subset of the sink the scheduler drives.
type Displayer interface {
	Display(image.Image) error
}

// Options configures a Scheduler.
type Options struct {
	Compositor *compose.Compositor
	Archive    Archiver
	Sink       Displayer
	// Weather resolves the header weather each tick. It must not fail;
	// degraded records are fine.
	Weather func(ctx context.Context) *content.WeatherRecord
	Logger  *slog.Logger
	// Sleep is injectable for tests. The default honors ctx cancellation.
	Sleep func(ctx context.Context, d time.Duration)
}

// Scheduler owns the sequential display loop.
type Scheduler struct {
	comp    *compose.Compositor
	archive Archiver
	sink    Displayer
	weather func(ctx context.Context) *content.WeatherRecord
	log     *slog.Logger
	sleep   func(ctx context.Context, d time.Duration)

	modes []Mode
	next  int

	// lastWeather retains the last record with real forecast data so a
	// transient outage does not blank the header mid-rotation.
	lastWeather *content.WeatherRecord
}

// New builds a Scheduler. At least one mode is required.
func New(opts Options, modes []Mode) (*Scheduler, error) {
	if len(modes) == 0 {
		return nil, fmt.Errorf("schedule: no content mode enabled")
	}
	if opts.Compositor == nil {
		return nil, fmt.Errorf("schedule: compositor is required")
	}
	if opts.Sink == nil {
		return nil, fmt.Errorf("schedule: sink is required")
	}
	s := &Scheduler{
		comp:    opts.Compositor,
		archive: opts.Archive,
		sink:    opts.Sink,
		weather: opts.Weather,
		log:     opts.Logger,
		sleep:   opts.Sleep,
		modes:   modes,
	}
	if s.weather == nil {
		s.weather = func(context.Context) *content.WeatherRecord { return nil }
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	if s.sleep == nil {
		s.sleep = wait
	}
	return s, nil
}

// Run loops until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	s.log.Info("scheduler started", "modes", len(s.modes))
	for ctx.Err() == nil {
		s.tick(ctx)
	}
	s.log.Info("scheduler stopped")
}

// tick renders and displays one frame, then waits out the mode's dwell.
// The dwell elapses even when the frame is skipped so a dead producer
// cannot starve the other modes.
func (s *Scheduler) tick(ctx context.Context) {
	mode := s.modes[s.next]
	s.next = (s.next + 1) % len(s.modes)
	defer s.sleep(ctx, mode.Dwell)

	wx := s.resolveWeather(ctx)

	rec, err := mode.Fetch(ctx)
	if err != nil {
		s.log.Warn("content unavailable, skipping frame", "kind", mode.Kind, "err", err)
		return
	}
	if rec == nil {
		s.log.Warn("no content, skipping frame", "kind", mode.Kind)
		return
	}

	frame, err := s.comp.Compose(rec, wx)
	if err != nil {
		if errors.Is(err, compose.ErrInsufficientForecast) {
			s.log.Warn("skipping frame", "kind", mode.Kind, "err", err)
		} else {
			s.log.Error("compose failed", "kind", mode.Kind, "err", err)
		}
		return
	}

	quantized := palette6.Quantize(frame)
	if s.archive != nil {
		s.archive.Store(quantized, mode.Kind.String())
	}
	if err := s.sink.Display(quantized); err != nil {
		s.log.Error("display failed", "kind", mode.Kind, "err", err)
	}
}

// resolveWeather fetches the header weather, falling back to the last
// record that carried real forecast data.
func (s *Scheduler) resolveWeather(ctx context.Context) *content.WeatherRecord {
	wx := s.weather(ctx)
	if wx != nil && len(wx.Forecast) > 0 {
		s.lastWeather = wx
		return wx
	}
	if s.lastWeather != nil {
		return s.lastWeather
	}
	return wx
}

func wait(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
