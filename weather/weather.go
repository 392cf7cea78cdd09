// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package weather produces the weather record feeding the header band and
// the forecast body. Data comes from the wttr.in JSON endpoint and is
// cached on disk per location for one hour. Get never fails: it degrades
// through fresh data, valid cache, stale cache and finally a placeholder.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"infohud/content"
)

// DefaultTTL is how long a cached record stays valid.
const DefaultTTL = time.Hour

// DefaultBaseURL is the public wttr.in endpoint.
const DefaultBaseURL = "https://wttr.in"

// ForecastDays is how many daily forecasts are retained.
const ForecastDays = 3

// Options configures a Client. Zero values select the defaults.
type Options struct {
	BaseURL    string
	CacheDir   string
	TTL        time.Duration
	HTTPClient *http.Client
	Clock      func() time.Time
	Logger     *slog.Logger
}

// Client fetches and caches weather records.
type Client struct {
	baseURL  string
	cacheDir string
	ttl      time.Duration
	hc       *http.Client
	clock    func() time.Time
	log      *slog.Logger
}

// New builds a Client.
func New(opts Options) *Client {
	c := &Client{
		baseURL:  opts.BaseURL,
		cacheDir: opts.CacheDir,
		ttl:      opts.TTL,
		hc:       opts.HTTPClient,
		clock:    opts.Clock,
		log:      opts.Logger,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.cacheDir == "" {
		c.cacheDir = "tmp"
	}
	if c.ttl == 0 {
		c.ttl = DefaultTTL
	}
	if c.hc == nil {
		c.hc = &http.Client{Timeout: 15 * time.Second}
	}
	if c.clock == nil {
		c.clock = time.Now
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	return c
}

// Placeholder is the degraded record used when no real data is available
// at all. The header then shows "N/A" / "Unavailable".
func Placeholder() *content.WeatherRecord {
	return &content.WeatherRecord{
		Current: content.CurrentWeather{
			Condition:   "Unavailable",
			Temperature: "",
		},
	}
}

// Get returns the best available weather record for the location. The
// degradation order is: valid cache, fresh fetch, stale cache, placeholder.
// Serving a stale-but-real record is deliberately preferred over the
// placeholder when a refetch fails.
func (c *Client) Get(ctx context.Context, location string) *content.WeatherRecord {
	cached, age, ok := c.readCache(location)
	if ok && age < c.ttl {
		c.log.Debug("using cached weather", "location", location, "age", age)
		return cached
	}

	fresh, err := c.fetch(ctx, location)
	if err == nil {
		c.writeCache(location, fresh)
		return fresh
	}
	c.log.Warn("weather fetch failed", "location", location, "err", err)

	if ok {
		c.log.Info("serving stale weather cache", "location", location, "age", age)
		return cached
	}
	return Placeholder()
}

// wttr.in ?format=j1 response, reduced to the fields the HUD uses.
type wttrResponse struct {
	CurrentCondition []struct {
		TempF          string `json:"temp_F"`
		WindspeedMiles string `json:"windspeedMiles"`
		Humidity       string `json:"humidity"`
		WeatherDesc    []struct {
			Value string `json:"value"`
		} `json:"weatherDesc"`
	} `json:"current_condition"`
	Weather []struct {
		Date      string `json:"date"`
		MaxTempF  string `json:"maxtempF"`
		MinTempF  string `json:"mintempF"`
		Astronomy []struct {
			Sunrise          string `json:"sunrise"`
			Sunset           string `json:"sunset"`
			MoonPhase        string `json:"moon_phase"`
			MoonIllumination string `json:"moon_illumination"`
		} `json:"astronomy"`
	} `json:"weather"`
}

func (c *Client) fetch(ctx context.Context, location string) (*content.WeatherRecord, error) {
	u := fmt.Sprintf("%s/%s?format=j1", c.baseURL, url.PathEscape(location))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var raw wttrResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode weather response: %w", err)
	}
	if len(raw.CurrentCondition) == 0 {
		return nil, fmt.Errorf("empty weather response")
	}

	cur := raw.CurrentCondition[0]
	rec := &content.WeatherRecord{
		Current: content.CurrentWeather{
			Temperature: cur.TempF,
			WindSpeed:   cur.WindspeedMiles,
			Humidity:    cur.Humidity,
		},
	}
	if len(cur.WeatherDesc) > 0 {
		rec.Current.Condition = strings.TrimSpace(cur.WeatherDesc[0].Value)
	}

	for _, day := range raw.Weather {
		if len(rec.Forecast) == ForecastDays {
			break
		}
		df := content.DailyForecast{
			Day:  dayName(day.Date),
			High: day.MaxTempF,
			Low:  day.MinTempF,
		}
		if len(day.Astronomy) > 0 {
			a := day.Astronomy[0]
			df.Sunrise = a.Sunrise
			df.Sunset = a.Sunset
			df.MoonPhase = a.MoonPhase
			fmt.Sscanf(a.MoonIllumination, "%d", &df.MoonIllumination)
		}
		rec.Forecast = append(rec.Forecast, df)
	}
	return rec, nil
}

func dayName(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return "Unknown"
	}
	return t.Weekday().String()
}

// cacheEntry is the on-disk cache format.
type cacheEntry struct {
	Timestamp time.Time             `json:"timestamp"`
	Record    content.WeatherRecord `json:"record"`
}

func (c *Client) cachePath(location string) string {
	safe := strings.ToLower(location)
	safe = strings.ReplaceAll(safe, " ", "_")
	safe = strings.ReplaceAll(safe, ",", "")
	safe = strings.ReplaceAll(safe, string(filepath.Separator), "_")
	return filepath.Join(c.cacheDir, "weather_cache_"+safe+".json")
}

func (c *Client) readCache(location string) (*content.WeatherRecord, time.Duration, bool) {
	data, err := os.ReadFile(c.cachePath(location))
	if err != nil {
		return nil, 0, false
	}
	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil || entry.Timestamp.IsZero() {
		c.log.Warn("weather cache unreadable", "location", location, "err", err)
		return nil, 0, false
	}
	return &entry.Record, c.clock().Sub(entry.Timestamp), true
}

func (c *Client) writeCache(location string, rec *content.WeatherRecord) {
	if err := os.MkdirAll(c.cacheDir, 0o755); err != nil {
		c.log.Warn("weather cache dir", "err", err)
		return
	}
	data, err := json.MarshalIndent(cacheEntry{Timestamp: c.clock(), Record: *rec}, "", "  ")
	if err != nil {
		c.log.Warn("weather cache encode", "err", err)
		return
	}
	if err := os.WriteFile(c.cachePath(location), data, 0o644); err != nil {
		c.log.Warn("weather cache write", "err", err)
	}
}
