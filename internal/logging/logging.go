// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logging builds the application logger. Development runs get devslog's
// coloured output with source locations; other environments log plain text.
// Every handler is wrapped in a ContextHandler so records emitted inside an HTTP
// request carry its request id and path.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/golang-cz/devslog"
)

// Options configures New.
type Options struct {
	// Level is one of debug, info, warn, error. Unknown values mean info.
	Level string
	// Development selects the devslog handler.
	Development bool
	// Output defaults to os.Stdout.
	Output io.Writer
}

// ParseLevel maps a config value onto a slog level.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New creates the application logger.
func New(opts Options) *slog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	handlerOpts := &slog.HandlerOptions{Level: ParseLevel(opts.Level)}

	var inner slog.Handler
	if opts.Development {
		handlerOpts.AddSource = true
		inner = devslog.NewHandler(out, &devslog.Options{
			HandlerOptions:  handlerOpts,
			NewLineAfterLog: false,
		})
	} else {
		inner = slog.NewTextHandler(out, handlerOpts)
	}

	return slog.New(NewContextHandler(inner))
}
