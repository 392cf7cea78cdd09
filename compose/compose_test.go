// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package compose

import (
	"errors"
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"infohud/content"
)

func testCompositor(t *testing.T) *Compositor {
	t.Helper()
	c, err := New(Options{
		Clock: func() time.Time {
			return time.Date(2025, time.March, 14, 15, 9, 0, 0, time.UTC)
		},
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return c
}

func testWeather() *content.WeatherRecord {
	return &content.WeatherRecord{
		Current: content.CurrentWeather{
			Condition:   "Partly cloudy",
			Temperature: "68",
			WindSpeed:   "7",
			Humidity:    "51",
		},
		Forecast: []content.DailyForecast{
			{Day: "Friday", High: "70", Low: "55", Sunrise: "06:41 AM", Sunset: "07:02 PM", MoonPhase: "FULL_MOON", MoonIllumination: 99},
			{Day: "Saturday", High: "66", Low: "52", Sunrise: "06:40 AM", Sunset: "07:03 PM", MoonPhase: "WANING_GIBBOUS", MoonIllumination: 93},
			{Day: "Sunday", High: "71", Low: "54", Sunrise: "06:38 AM", Sunset: "07:04 PM", MoonPhase: "WANING_GIBBOUS", MoonIllumination: 85},
		},
	}
}

func countPixels(img image.Image, match func(r, g, b uint32) bool) int {
	n := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			if match(r>>8, g>>8, bl>>8) {
				n++
			}
		}
	}
	return n
}

func TestComposePortraitDimensions(t *testing.T) {
	c := testCompositor(t)

	records := []content.Record{
		&content.PhotoRecord{Image: image.NewRGBA(image.Rect(0, 0, 32, 32))},
		&content.PhotoRecord{}, // missing image still renders
		&content.StockRecord{Quotes: []content.StockQuote{{Symbol: "TSLA", Price: 250, Change: -3.5}}},
		&content.NewsRecord{Title: "Headline", Summary: "A summary of the story."},
		testWeather(),
	}
	for _, rec := range records {
		frame, err := c.Compose(rec, testWeather())
		if err != nil {
			t.Fatalf("Compose(%v) failed: %v", rec.Kind(), err)
		}
		if got := frame.Bounds(); got.Dx() != 400 || got.Dy() != 600 {
			t.Errorf("Compose(%v) frame is %dx%d, want 400x600 portrait", rec.Kind(), got.Dx(), got.Dy())
		}
	}
}

func TestComposeNilWeatherHeader(t *testing.T) {
	c := testCompositor(t)

	// A weather outage twice in a row must never fail header rendering.
	for i := 0; i < 2; i++ {
		frame, err := c.Compose(&content.StockRecord{}, nil)
		if err != nil {
			t.Fatalf("Compose with nil weather failed on call %d: %v", i+1, err)
		}
		if frame == nil {
			t.Fatalf("Compose with nil weather returned no frame on call %d", i+1)
		}
	}
}

func TestComposeWeatherInsufficientForecast(t *testing.T) {
	c := testCompositor(t)

	rec := testWeather()
	rec.Forecast = rec.Forecast[:2]
	frame, err := c.Compose(rec, rec)
	if !errors.Is(err, ErrInsufficientForecast) {
		t.Fatalf("err = %v, want ErrInsufficientForecast", err)
	}
	if frame != nil {
		t.Error("expected no frame for insufficient forecast")
	}
}

func TestComposeStockColorsAndChangeLabel(t *testing.T) {
	c := testCompositor(t)

	loss := &content.StockRecord{Quotes: []content.StockQuote{
		{Symbol: "TSLA", Price: 250.00, Change: -3.50, PercentChange: -1.38},
	}}
	flat := &content.StockRecord{Quotes: []content.StockQuote{
		{Symbol: "TSLA", Price: 250.00, Change: 0.00},
	}}
	gain := &content.StockRecord{Quotes: []content.StockQuote{
		{Symbol: "TSLA", Price: 250.00, Change: 2.10},
	}}

	lossFrame, err := c.Compose(loss, nil)
	if err != nil {
		t.Fatal(err)
	}
	flatFrame, err := c.Compose(flat, nil)
	if err != nil {
		t.Fatal(err)
	}
	gainFrame, err := c.Compose(gain, nil)
	if err != nil {
		t.Fatal(err)
	}

	isRed := func(r, g, b uint32) bool { return r > 200 && g < 80 && b < 80 }
	isGreen := func(r, g, b uint32) bool { return g > 200 && r < 80 && b < 80 }
	isWhite := func(r, g, b uint32) bool { return r > 200 && g > 200 && b > 200 }

	if countPixels(lossFrame, isRed) == 0 {
		t.Error("losing quote has no red price pixels")
	}
	if countPixels(gainFrame, isGreen) == 0 {
		t.Error("gaining quote has no green price pixels")
	}
	// The "-3.50" change label is drawn in white next to the price; the
	// zero-change frame renders price only, so it carries fewer white
	// pixels than the loss frame.
	if lw, fw := countPixels(lossFrame, isWhite), countPixels(flatFrame, isWhite); lw <= fw {
		t.Errorf("expected change label pixels: loss frame white=%d, flat frame white=%d", lw, fw)
	}
}

func TestComposeStockNoDataPlaceholder(t *testing.T) {
	c := testCompositor(t)

	rec := &content.StockRecord{Quotes: []content.StockQuote{
		{Symbol: "CHPT", NoData: true},
	}}
	frame, err := c.Compose(rec, nil)
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}
	if frame == nil {
		t.Fatal("no frame for placeholder quote")
	}
}

func TestComposeNewsWithoutThumbnail(t *testing.T) {
	c := testCompositor(t)

	rec := &content.NewsRecord{
		Title:   "Markets rally on surprise rate cut",
		Summary: "Central bank officials unexpectedly lowered the benchmark rate, sending equities sharply higher across every major index.",
	}
	frame, err := c.Compose(rec, nil)
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}
	if frame == nil {
		t.Fatal("missing thumbnail must still produce a frame")
	}
	// Headline and summary are white-ish text on black.
	if n := countPixels(frame, func(r, g, b uint32) bool { return r > 150 && g > 150 && b > 150 }); n == 0 {
		t.Error("text-only news frame rendered no visible text")
	}
}

func TestComposeNewsThumbnailPlacement(t *testing.T) {
	c := testCompositor(t)

	thumb := image.NewRGBA(image.Rect(0, 0, 40, 30))
	for y := 0; y < 30; y++ {
		for x := 0; x < 40; x++ {
			thumb.Set(x, y, color.RGBA{255, 255, 0, 255})
		}
	}
	withThumb := &content.NewsRecord{Title: "T", Summary: "s", Thumbnail: thumb}
	without := &content.NewsRecord{Title: "T", Summary: "s"}

	a, err := c.Compose(withThumb, nil)
	if err != nil {
		t.Fatal(err)
	}
	b, err := c.Compose(without, nil)
	if err != nil {
		t.Fatal(err)
	}

	isYellow := func(r, g, bl uint32) bool { return r > 200 && g > 200 && bl < 80 }
	if countPixels(a, isYellow) <= countPixels(b, isYellow) {
		t.Error("thumbnail pixels not present in composed frame")
	}
}

func TestComposeDeterministic(t *testing.T) {
	c := testCompositor(t)

	rec := testWeather()
	a, err := c.Compose(rec, rec)
	if err != nil {
		t.Fatal(err)
	}
	b, err := c.Compose(rec, rec)
	if err != nil {
		t.Fatal(err)
	}
	na, ok := a.(*image.NRGBA)
	if !ok {
		t.Fatalf("unexpected frame type %T", a)
	}
	nb := b.(*image.NRGBA)
	if diff := cmp.Diff(na.Pix, nb.Pix); diff != "" {
		t.Error("identical inputs produced different frames")
	}
}

func TestMoonTitle(t *testing.T) {
	for _, tc := range []struct {
		in, want string
	}{
		{"WAXING_GIBBOUS", "Waxing Gibbous"},
		{"full_moon", "Full Moon"},
		{"", "Unknown"},
	} {
		if got := moonTitle(tc.in); got != tc.want {
			t.Errorf("moonTitle(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
