// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package content defines the records handed from the data producers to the
// frame compositor. Records are read-only once produced.
package content

import "image"

// Kind identifies which body layout a record is rendered with.
type Kind int

const (
	KindPhoto Kind = iota
	KindStock
	KindNews
	KindWeather
)

// String returns the kind name used for archive file prefixes and logs.
func (k Kind) String() string {
	switch k {
	case KindPhoto:
		return "photo"
	case KindStock:
		return "stock"
	case KindNews:
		return "news"
	case KindWeather:
		return "weather"
	}
	return "unknown"
}

// Record is the payload for one display frame.
type Record interface {
	Kind() Kind
}

// StockQuote is a single ticker entry.
//
// NoData marks a per-symbol fetch failure; the symbol still occupies its
// grid cell with a "No Data" price.
type StockQuote struct {
	Symbol        string
	Price         float64
	Change        float64
	PercentChange float64
	Direction     string
	NoData        bool
}

// StockRecord is an ordered list of quotes, at most 10 of which are shown.
type StockRecord struct {
	Quotes []StockQuote
}

func (*StockRecord) Kind() Kind { return KindStock }

// NewsRecord is a single headline with an optional thumbnail.
type NewsRecord struct {
	Title     string
	Summary   string
	Thumbnail image.Image // nil when the fetch failed or no image was found
}

func (*NewsRecord) Kind() Kind { return KindNews }

// CurrentWeather describes present conditions for the header band.
type CurrentWeather struct {
	Condition   string
	Temperature string // pre-formatted, e.g. "72", "N/A"
	WindSpeed   string
	Humidity    string
}

// DailyForecast is one column of the 3-day forecast body.
type DailyForecast struct {
	Day              string // e.g. "Monday"
	High             string
	Low              string
	Sunrise          string // time of day, e.g. "06:45 AM"
	Sunset           string
	MoonPhase        string // e.g. "WAXING_GIBBOUS"
	MoonIllumination int    // percent
}

// WeatherRecord carries current conditions plus up to three forecast days.
type WeatherRecord struct {
	Current  CurrentWeather
	Forecast []DailyForecast
}

func (*WeatherRecord) Kind() Kind { return KindWeather }

// PhotoRecord wraps a raw slideshow image. EXIF orientation, if any, was
// already applied by the producer.
type PhotoRecord struct {
	Name  string
	Image image.Image
}

func (*PhotoRecord) Kind() Kind { return KindPhoto }
