// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rrx

import (
	"log/slog"

	"github.com/gogpu/rrx/internal/logging"
)

// SetLogger configures the logger for rrx and all its sub-packages.
// By default, rrx produces no log output. Call SetLogger to enable logging.
//
// SetLogger is safe for concurrent use: it stores the new logger atomically.
// Pass nil to disable logging (restore default silent behavior).
//
// Log levels used by rrx:
//   - [slog.LevelDebug]: band layout, list sizes at upload, texture pages
//   - [slog.LevelInfo]: renderer construction and band count changes
//   - [slog.LevelWarn]: bus write errors, full display lists, texture memory
//     exhaustion
//
// Example:
//
//	rrx.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	logging.Set(l)
}

// Logger returns the current logger used by rrx.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return logging.L()
}
