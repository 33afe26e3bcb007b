// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// recordingHandler keeps every record it receives.
type recordingHandler struct {
	records []slog.Record
}

func (h *recordingHandler) Enabled(context.Context, slog.Level) bool { return true }
func (h *recordingHandler) Handle(_ context.Context, r slog.Record) error {
	h.records = append(h.records, r)
	return nil
}
func (h *recordingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *recordingHandler) WithGroup(string) slog.Handler      { return h }

func attrsOf(r slog.Record) map[string]string {
	out := map[string]string{}
	r.Attrs(func(a slog.Attr) bool {
		out[a.Key] = a.Value.String()
		return true
	})
	return out
}

func TestContextHandler_AddsRequestAttrs(t *testing.T) {
	rec := &recordingHandler{}
	logger := slog.New(NewContextHandler(rec))

	ctx := context.WithValue(context.Background(), chimw.RequestIDKey, "req-42")
	ctx = WithPath(ctx, "/api/posts")
	logger.InfoContext(ctx, "listing posts", "count", 3)

	if len(rec.records) != 1 {
		t.Fatalf("got %d records, want 1", len(rec.records))
	}
	attrs := attrsOf(rec.records[0])
	if attrs["request_id"] != "req-42" {
		t.Errorf("request_id = %q, want %q", attrs["request_id"], "req-42")
	}
	if attrs["path"] != "/api/posts" {
		t.Errorf("path = %q, want %q", attrs["path"], "/api/posts")
	}
	if attrs["count"] != "3" {
		t.Errorf("count = %q, want %q", attrs["count"], "3")
	}
}

func TestContextHandler_NoRequestContext(t *testing.T) {
	rec := &recordingHandler{}
	slog.New(NewContextHandler(rec)).Info("startup")

	attrs := attrsOf(rec.records[0])
	if _, ok := attrs["request_id"]; ok {
		t.Error("request_id should be absent outside a request")
	}
	if _, ok := attrs["path"]; ok {
		t.Error("path should be absent outside a request")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNew_TextHandlerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: "warn", Output: &buf})

	logger.Info("hidden")
	logger.Warn("shown", "key", "value")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record should be filtered, got %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "key=value") {
		t.Errorf("warn record missing, got %q", out)
	}
}

func TestNew_Development(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: "debug", Development: true, Output: &buf})

	logger.Debug("dev message")
	if !strings.Contains(buf.String(), "dev message") {
		t.Errorf("devslog output missing message, got %q", buf.String())
	}
}
