// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package transfer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/olegiv/techblog/internal/model"
	"github.com/olegiv/techblog/internal/store"
)

// Exporter dumps the store to an ExportData document.
type Exporter struct {
	store  store.Store
	logger *slog.Logger
}

// NewExporter creates a new Exporter instance.
func NewExporter(s store.Store, logger *slog.Logger) *Exporter {
	return &Exporter{store: s, logger: logger}
}

// Export reads every collection. Any read failure aborts the export.
func (e *Exporter) Export(ctx context.Context, opts ExportOptions) (*ExportData, error) {
	data := &ExportData{
		Version:    ExportVersion,
		ExportedAt: time.Now().UTC(),
	}

	var err error
	if data.Categories, err = e.store.Categories().List(ctx); err != nil {
		return nil, fmt.Errorf("exporting categories: %w", err)
	}
	if data.Posts, err = e.store.Posts().List(ctx, model.PostFilter{}, model.SortLatest); err != nil {
		return nil, fmt.Errorf("exporting posts: %w", err)
	}
	if data.Tags, err = e.store.Tags().List(ctx); err != nil {
		return nil, fmt.Errorf("exporting tags: %w", err)
	}

	if opts.IncludeUsers {
		users, err := e.store.Users().List(ctx)
		if err != nil {
			return nil, fmt.Errorf("exporting users: %w", err)
		}
		for _, u := range users {
			data.Users = append(data.Users, ExportUser{
				Username:  u.Username,
				Email:     u.Email,
				Avatar:    u.Avatar,
				IsAdmin:   u.IsAdmin,
				CreatedAt: u.CreatedAt,
			})
		}
	}

	e.logger.Info("export complete",
		"posts", len(data.Posts),
		"categories", len(data.Categories),
		"tags", len(data.Tags),
		"users", len(data.Users),
	)
	return data, nil
}

// ExportToWriter writes the export as indented JSON.
func (e *Exporter) ExportToWriter(ctx context.Context, opts ExportOptions, w io.Writer) error {
	data, err := e.Export(ctx, opts)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("encoding export: %w", err)
	}
	return nil
}

// ExportToFile writes the export to path, replacing any existing file.
func (e *Exporter) ExportToFile(ctx context.Context, opts ExportOptions, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}

	if err := e.ExportToWriter(ctx, opts, f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
