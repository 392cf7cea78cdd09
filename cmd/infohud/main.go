// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// infohud renders a rotating set of information frames (photos, stock
// quotes, a news headline and the weather forecast) to a 6-color e-paper
// panel, a terminal preview or an HTTP snapshot endpoint.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/inky"
	"periph.io/x/host/v3"

	"infohud/archive"
	"infohud/compose"
	"infohud/config"
	"infohud/content"
	"infohud/epd"
	"infohud/news"
	"infohud/photos"
	"infohud/preview"
	"infohud/schedule"
	"infohud/stocks"
	"infohud/textfit"
	"infohud/weather"
	"infohud/webpreview"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "infohud: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "infohud.yaml", "path to the YAML configuration")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	log := newLogger(cfg.LogLevel)
	slog.SetDefault(log)

	fnt := textfit.DefaultBold()
	if cfg.FontPath != "" {
		fnt, err = textfit.LoadFile(cfg.FontPath)
		if err != nil {
			return fmt.Errorf("load font: %w", err)
		}
	}

	comp, err := compose.New(compose.Options{
		Width:  cfg.Width,
		Height: cfg.Height,
		Font:   fnt,
		Logger: log.With("component", "compose"),
	})
	if err != nil {
		return err
	}

	arch, err := archive.New(cfg.ArchiveDir,
		archive.WithKeep(cfg.ArchiveKeep),
		archive.WithLogger(log.With("component", "archive")))
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}

	sink, err := newSink(cfg, log)
	if err != nil {
		return err
	}

	wc := weather.New(weather.Options{
		CacheDir: cfg.CacheDir,
		Logger:   log.With("component", "weather"),
	})

	sched, err := schedule.New(schedule.Options{
		Compositor: comp,
		Archive:    arch,
		Sink:       sink,
		Weather: func(ctx context.Context) *content.WeatherRecord {
			return wc.Get(ctx, cfg.Location)
		},
		Logger: log.With("component", "schedule"),
	}, buildModes(cfg, wc, log))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := sink.Init(); err != nil {
		return fmt.Errorf("init sink: %w", err)
	}
	sched.Run(ctx)

	if err := sink.Sleep(); err != nil {
		log.Warn("sink sleep failed", "err", err)
	}
	return nil
}

// buildModes assembles the enabled content modes in display priority order.
func buildModes(cfg config.Config, wc *weather.Client, log *slog.Logger) []schedule.Mode {
	var modes []schedule.Mode

	if cfg.Photo.Enabled {
		lib := photos.New(cfg.PhotoDir, log.With("component", "photos"))
		modes = append(modes, schedule.Mode{
			Kind:  content.KindPhoto,
			Dwell: cfg.Photo.Dwell(),
			Fetch: func(ctx context.Context) (content.Record, error) {
				if rec := lib.Fetch(ctx); rec != nil {
					return rec, nil
				}
				return nil, nil
			},
		})
	}
	if cfg.Stock.Enabled {
		sc := stocks.New(stocks.Options{
			Symbols: cfg.Symbols,
			Logger:  log.With("component", "stocks"),
		})
		modes = append(modes, schedule.Mode{
			Kind:  content.KindStock,
			Dwell: cfg.Stock.Dwell(),
			Fetch: func(ctx context.Context) (content.Record, error) {
				rec, err := sc.Fetch(ctx)
				if err != nil {
					return nil, err
				}
				return rec, nil
			},
		})
	}
	if cfg.News.Enabled {
		nc := news.New(news.Options{
			FeedURL:         cfg.FeedURL,
			SummarizerURL:   cfg.SummarizerURL,
			SummarizerModel: cfg.SummarizerModel,
			Logger:          log.With("component", "news"),
		})
		modes = append(modes, schedule.Mode{
			Kind:  content.KindNews,
			Dwell: cfg.News.Dwell(),
			Fetch: func(ctx context.Context) (content.Record, error) {
				rec, err := nc.Fetch(ctx)
				if err != nil {
					return nil, err
				}
				return rec, nil
			},
		})
	}
	if cfg.Weather.Enabled {
		modes = append(modes, schedule.Mode{
			Kind:  content.KindWeather,
			Dwell: cfg.Weather.Dwell(),
			Fetch: func(ctx context.Context) (content.Record, error) {
				return wc.Get(ctx, cfg.Location), nil
			},
		})
	}
	return modes
}

// newSink opens the configured frame destination.
func newSink(cfg config.Config, log *slog.Logger) (epd.Sink, error) {
	switch cfg.Sink {
	case "preview":
		return preview.New(&preview.Opts{}), nil
	case "web":
		s := webpreview.New()
		go func() {
			log.Info("web preview listening", "addr", cfg.WebAddr)
			if err := http.ListenAndServe(cfg.WebAddr, s); err != nil {
				log.Error("web preview server failed", "err", err)
			}
		}()
		return s, nil
	case "epd":
		return newPanelSink(log)
	}
	return nil, fmt.Errorf("unknown sink %q", cfg.Sink)
}

// newPanelSink wires the Inky Impression over SPI. Pin numbers follow the
// stock Impression HAT wiring.
func newPanelSink(log *slog.Logger) (epd.Sink, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("host init: %w", err)
	}
	port, err := spireg.Open("SPI0.0")
	if err != nil {
		return nil, fmt.Errorf("open spi: %w", err)
	}
	dc := gpioreg.ByName("22")
	reset := gpioreg.ByName("27")
	busy := gpioreg.ByName("17")
	if dc == nil || reset == nil || busy == nil {
		return nil, fmt.Errorf("panel control pins not found")
	}

	opts := &inky.Opts{Model: inky.IMPRESSION4}
	if eeprom, err := i2creg.Open(""); err == nil {
		defer eeprom.Close()
		if detected, err := inky.DetectOpts(eeprom); err == nil {
			opts = detected
		} else {
			log.Warn("panel eeprom detection failed, assuming Impression 4", "err", err)
		}
	}

	dev, err := inky.NewImpression(port, dc, reset, busy, opts)
	if err != nil {
		return nil, fmt.Errorf("open panel: %w", err)
	}
	log.Info("panel ready", "bounds", dev.Bounds())
	return epd.NewDrawerSink(dev), nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
