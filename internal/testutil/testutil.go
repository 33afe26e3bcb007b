// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package testutil provides shared test helpers for the techblog project.
package testutil

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/pressly/goose/v3"

	"github.com/olegiv/techblog/internal/model"
	"github.com/olegiv/techblog/internal/store/sqlite"
)

// TestLogger creates a silent test logger that only outputs warnings and errors.
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
}

// TestLoggerSilent creates a completely silent test logger (error level only).
func TestLoggerSilent() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

var quietGoose sync.Once

// TestStore opens a migrated SQLite store in a temp directory.
// It is closed automatically when the test ends.
func TestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	quietGoose.Do(func() { goose.SetLogger(goose.NopLogger()) })

	s, err := sqlite.Open(filepath.Join(t.TempDir(), "techblog-test.db"))
	if err != nil {
		t.Fatalf("opening test store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

// SeedCategory inserts a category with the given id.
func SeedCategory(t *testing.T, s *sqlite.Store, id, name string) model.Category {
	t.Helper()

	now := time.Now().UTC()
	c := model.Category{ID: id, Name: name, Description: name + " articles", CreatedAt: now, UpdatedAt: now}
	if err := s.Categories().Insert(context.Background(), c); err != nil {
		t.Fatalf("seeding category %s: %v", id, err)
	}
	return c
}

// Admin returns an administrator as stored in a session.
func Admin() *model.User {
	return &model.User{ID: "admin-1", Username: "admin", Email: "admin@example.com", IsAdmin: true}
}

// Reader returns a signed-in user without admin rights.
func Reader() *model.User {
	return &model.User{ID: "reader-1", Username: "reader", Email: "reader@example.com"}
}
