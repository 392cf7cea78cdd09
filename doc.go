// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package infohud is a container for the e-paper information display:
// content producers, frame composition and the display sinks live in the
// subpackages, the runnable binary in cmd/infohud.
package infohud
