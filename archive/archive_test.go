// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package archive

import (
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func testFrame() image.Image {
	return image.NewRGBA(image.Rect(0, 0, 4, 4))
}

// tickingClock yields strictly increasing timestamps one second apart so
// every stored frame gets a distinct, ordered file name.
func tickingClock() func() time.Time {
	t := time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func listPrefixed(t *testing.T, dir, prefix string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	var names []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), prefix) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names
}

func TestStorePrunesToTenNewest(t *testing.T) {
	dir := t.TempDir()
	a, err := New(dir, WithClock(tickingClock()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var all []string
	for i := 0; i < 15; i++ {
		a.Store(testFrame(), "stock")
	}
	all = listPrefixed(t, dir, "stock")
	if len(all) != 10 {
		t.Fatalf("retained %d stock frames, want 10", len(all))
	}

	// The survivors must be the 10 most recent, i.e. seconds :06 through :15.
	var want []string
	base := time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)
	for i := 6; i <= 15; i++ {
		want = append(want, "stock_"+base.Add(time.Duration(i)*time.Second).Format(timestampFormat)+".png")
	}
	if diff := cmp.Diff(want, all); diff != "" {
		t.Errorf("unexpected surviving files (-want +got):\n%s", diff)
	}
}

func TestStoreKindsPrunedIndependently(t *testing.T) {
	dir := t.TempDir()
	a, err := New(dir, WithClock(tickingClock()), WithKeep(3))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for i := 0; i < 5; i++ {
		a.Store(testFrame(), "stock")
		a.Store(testFrame(), "news")
	}
	if got := len(listPrefixed(t, dir, "stock")); got != 3 {
		t.Errorf("stock frames retained: %d, want 3", got)
	}
	if got := len(listPrefixed(t, dir, "news")); got != 3 {
		t.Errorf("news frames retained: %d, want 3", got)
	}
}

func TestStoreWritesDecodablePNG(t *testing.T) {
	dir := t.TempDir()
	a, err := New(dir, WithClock(tickingClock()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	a.Store(testFrame(), "weather")

	names := listPrefixed(t, dir, "weather")
	if len(names) != 1 {
		t.Fatalf("stored %d frames, want 1", len(names))
	}
	data, err := os.ReadFile(filepath.Join(dir, names[0]))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(data) == 0 || string(data[1:4]) != "PNG" {
		t.Error("stored file is not a PNG")
	}
}

func TestStoreUnwritableDirDoesNotPanic(t *testing.T) {
	dir := t.TempDir()
	a, err := New(dir, WithClock(tickingClock()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// Point the archive at a path that no longer exists; Store must log and
	// return rather than fail.
	a.dir = filepath.Join(dir, "removed", "nested")
	a.Store(testFrame(), "photo")
}
