// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package news produces the headline record: first entry of an RSS feed,
// a short summary scraped from the linked article, and its lead image.
package news

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"infohud/content"
)

// maxSummaryParagraphs bounds how much article text is kept when no
// summarizer is configured.
const maxSummaryParagraphs = 3

// Options configures a Client.
type Options struct {
	FeedURL    string
	HTTPClient *http.Client
	// SummarizerURL points at an Ollama-compatible /api/generate endpoint.
	// Empty disables summarization and the leading article paragraphs are
	// used instead.
	SummarizerURL   string
	SummarizerModel string
	Logger          *slog.Logger
}

// Client fetches the current top headline.
type Client struct {
	feedURL   string
	hc        *http.Client
	sumURL    string
	sumModel  string
	log       *slog.Logger
	parseFeed func(ctx context.Context, url string) (*gofeed.Feed, error)
}

// New builds a Client.
func New(opts Options) *Client {
	c := &Client{
		feedURL:  opts.FeedURL,
		hc:       opts.HTTPClient,
		sumURL:   opts.SummarizerURL,
		sumModel: opts.SummarizerModel,
		log:      opts.Logger,
	}
	if c.hc == nil {
		c.hc = &http.Client{Timeout: 20 * time.Second}
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	if c.sumModel == "" {
		c.sumModel = "llama3.2"
	}
	fp := gofeed.NewParser()
	fp.Client = c.hc
	c.parseFeed = func(ctx context.Context, url string) (*gofeed.Feed, error) {
		return fp.ParseURLWithContext(url, ctx)
	}
	return c
}

// Fetch returns the top headline record, or an error when the feed is
// unreachable or empty. A missing article body or thumbnail degrades the
// record instead of failing it.
func (c *Client) Fetch(ctx context.Context) (*content.NewsRecord, error) {
	feed, err := c.parseFeed(ctx, c.feedURL)
	if err != nil {
		return nil, fmt.Errorf("news feed: %w", err)
	}
	if len(feed.Items) == 0 {
		return nil, fmt.Errorf("news feed %q has no items", c.feedURL)
	}
	item := feed.Items[0]

	rec := &content.NewsRecord{
		Title:   strings.TrimSpace(item.Title),
		Summary: strings.TrimSpace(item.Description),
	}

	text, imgURL := c.scrapeArticle(ctx, item.Link)
	if text != "" {
		rec.Summary = text
	}
	if rec.Summary != "" && c.sumURL != "" {
		if s, err := c.summarize(ctx, rec.Summary); err != nil {
			c.log.Warn("summarizer failed, using article text", "err", err)
		} else {
			rec.Summary = s
		}
	}
	if imgURL == "" && item.Image != nil {
		imgURL = item.Image.URL
	}
	if imgURL != "" {
		if img, err := c.fetchImage(ctx, imgURL); err != nil {
			c.log.Warn("news thumbnail failed", "url", imgURL, "err", err)
		} else {
			rec.Thumbnail = img
		}
	}
	return rec, nil
}

// scrapeArticle pulls the leading paragraphs and the first content image
// from the article page. Both results are best-effort.
func (c *Client) scrapeArticle(ctx context.Context, link string) (text, imgURL string) {
	if link == "" {
		return "", ""
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return "", ""
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		c.log.Warn("article fetch failed", "url", link, "err", err)
		return "", ""
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", ""
	}
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", ""
	}

	var paras []string
	doc.Find("article p, main p, p").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		t := strings.TrimSpace(s.Text())
		if len(t) > 60 {
			paras = append(paras, t)
		}
		return len(paras) < maxSummaryParagraphs
	})

	if og, ok := doc.Find(`meta[property="og:image"]`).Attr("content"); ok {
		imgURL = og
	} else if src, ok := doc.Find("article img, main img, img").Attr("src"); ok && strings.HasPrefix(src, "http") {
		imgURL = src
	}
	return strings.Join(paras, " "), imgURL
}

// ollamaRequest and ollamaResponse follow the /api/generate contract.
type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaResponse struct {
	Response string `json:"response"`
}

func (c *Client) summarize(ctx context.Context, text string) (string, error) {
	prompt := "Summarize the following news article in two short sentences:\n\n" + text
	payload, err := json.Marshal(ollamaRequest{Model: c.sumModel, Prompt: prompt})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.sumURL, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.hc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("summarizer status %d", resp.StatusCode)
	}
	var out ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	s := strings.TrimSpace(out.Response)
	if s == "" {
		return "", fmt.Errorf("summarizer returned empty text")
	}
	return s, nil
}

func (c *Client) fetchImage(ctx context.Context, imgURL string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imgURL, nil)
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
	data, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	return img, err
}
