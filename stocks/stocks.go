// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package stocks produces ticker records from the Yahoo Finance chart API.
// A failed symbol keeps its grid slot as a "No Data" placeholder; only a
// fully empty result counts as unavailable content.
package stocks

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"time"

	"infohud/content"
)

// DefaultBaseURL is the public chart endpoint.
const DefaultBaseURL = "https://query1.finance.yahoo.com"

// Options configures a Client.
type Options struct {
	BaseURL    string
	Symbols    []string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client fetches quotes for a fixed symbol list.
type Client struct {
	baseURL string
	symbols []string
	hc      *http.Client
	log     *slog.Logger
}

// New builds a Client.
func New(opts Options) *Client {
	c := &Client{
		baseURL: opts.BaseURL,
		symbols: opts.Symbols,
		hc:      opts.HTTPClient,
		log:     opts.Logger,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.hc == nil {
		c.hc = &http.Client{Timeout: 10 * time.Second}
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	return c
}

// chartResponse is the v8 chart payload reduced to the meta fields used.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				ChartPreviousClose float64 `json:"chartPreviousClose"`
			} `json:"meta"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Fetch returns one quote per configured symbol, in configuration order.
// Individual failures degrade to placeholders; the returned record is empty
// only when every symbol failed or none are configured.
func (c *Client) Fetch(ctx context.Context) (*content.StockRecord, error) {
	rec := &content.StockRecord{}
	failures := 0
	for _, symbol := range c.symbols {
		q, err := c.quote(ctx, symbol)
		if err != nil {
			c.log.Warn("stock quote failed", "symbol", symbol, "err", err)
			failures++
			rec.Quotes = append(rec.Quotes, content.StockQuote{Symbol: symbol, NoData: true})
			continue
		}
		rec.Quotes = append(rec.Quotes, q)
	}
	if len(c.symbols) > 0 && failures == len(c.symbols) {
		return &content.StockRecord{}, fmt.Errorf("stocks: all %d symbols failed", failures)
	}
	return rec, nil
}

func (c *Client) quote(ctx context.Context, symbol string) (content.StockQuote, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?range=1d&interval=1d", c.baseURL, url.PathEscape(symbol))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return content.StockQuote{}, err
	}
	req.Header.Set("User-Agent", "infohud/1.0")
	resp, err := c.hc.Do(req)
	if err != nil {
		return content.StockQuote{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return content.StockQuote{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return content.StockQuote{}, err
	}

	var raw chartResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return content.StockQuote{}, fmt.Errorf("decode chart response: %w", err)
	}
	if raw.Chart.Error != nil {
		return content.StockQuote{}, fmt.Errorf("chart error: %s", raw.Chart.Error.Description)
	}
	if len(raw.Chart.Result) == 0 {
		return content.StockQuote{}, fmt.Errorf("empty chart result")
	}

	meta := raw.Chart.Result[0].Meta
	if meta.RegularMarketPrice == 0 {
		return content.StockQuote{}, fmt.Errorf("no market price")
	}
	prev := meta.ChartPreviousClose
	change := meta.RegularMarketPrice - prev
	percent := 0.0
	if prev > 0 {
		percent = change / prev * 100
	}

	direction := "▼"
	if change > 0 {
		direction = "▲"
	}
	return content.StockQuote{
		Symbol:        symbol,
		Price:         round2(meta.RegularMarketPrice),
		Change:        round2(change),
		PercentChange: round2(percent),
		Direction:     direction,
	}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
