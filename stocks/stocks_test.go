// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package stocks

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"infohud/content"
)

func chartJSON(price, prevClose float64) string {
	return fmt.Sprintf(`{"chart":{"result":[{"meta":{"regularMarketPrice":%g,"chartPreviousClose":%g}}],"error":null}}`, price, prevClose)
}

func newServer(t *testing.T, prices map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(r.URL.Path, "/")
		symbol := parts[len(parts)-1]
		body, ok := prices[symbol]
		if !ok {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchQuotes(t *testing.T) {
	srv := newServer(t, map[string]string{
		"TSLA": chartJSON(250.00, 253.50),
		"MSFT": chartJSON(410.10, 405.00),
	})
	c := New(Options{BaseURL: srv.URL, Symbols: []string{"TSLA", "MSFT"}})

	rec, err := c.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	want := []content.StockQuote{
		{Symbol: "TSLA", Price: 250.00, Change: -3.50, PercentChange: -1.38, Direction: "▼"},
		{Symbol: "MSFT", Price: 410.10, Change: 5.10, PercentChange: 1.26, Direction: "▲"},
	}
	if diff := cmp.Diff(want, rec.Quotes); diff != "" {
		t.Errorf("quotes mismatch (-want +got):\n%s", diff)
	}
}

func TestFetchPerSymbolPlaceholder(t *testing.T) {
	srv := newServer(t, map[string]string{
		"TSLA": chartJSON(250.00, 250.00),
	})
	c := New(Options{BaseURL: srv.URL, Symbols: []string{"TSLA", "BOGUS"}})

	rec, err := c.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(rec.Quotes) != 2 {
		t.Fatalf("got %d quotes, want 2 (placeholder keeps its slot)", len(rec.Quotes))
	}
	if !rec.Quotes[1].NoData || rec.Quotes[1].Symbol != "BOGUS" {
		t.Errorf("missing placeholder: %+v", rec.Quotes[1])
	}
	if rec.Quotes[0].Change != 0 {
		t.Errorf("flat quote change = %v, want 0", rec.Quotes[0].Change)
	}
}

func TestFetchTotalFailure(t *testing.T) {
	srv := newServer(t, nil)
	c := New(Options{BaseURL: srv.URL, Symbols: []string{"A", "B"}})

	rec, err := c.Fetch(context.Background())
	if err == nil {
		t.Fatal("expected error when every symbol fails")
	}
	if len(rec.Quotes) != 0 {
		t.Errorf("total failure returned %d quotes, want empty", len(rec.Quotes))
	}
}
