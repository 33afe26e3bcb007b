// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/olegiv/techblog/internal/config"
	"github.com/olegiv/techblog/internal/logging"
	"github.com/olegiv/techblog/internal/store"
	"github.com/olegiv/techblog/internal/store/mongo"
	"github.com/olegiv/techblog/internal/store/sqlite"
)

// app is the state shared by every command: configuration, logger and an
// open document store.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	store  store.Store
	// db is the SQLite handle backing sessions; nil on MongoDB.
	db *sql.DB
}

// openApp loads configuration and opens the configured store. Opening runs
// SQLite migrations or ensures MongoDB indexes.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	logger := logging.New(logging.Options{
		Level:       cfg.LogLevel,
		Development: cfg.IsDevelopment(),
	})
	slog.SetDefault(logger)

	a := &app{cfg: cfg, logger: logger}

	if cfg.UseMongo() {
		logger.Info("connecting to mongodb", "database", cfg.MongoDatabase)
		s, err := mongo.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		a.store = s
	} else {
		logger.Info("opening database", "path", cfg.DBPath)
		s, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		a.store = s
		a.db = s.DB()
	}

	logger.Info("store ready", "backend", cfg.StoreBackend)
	return a, nil
}

func (a *app) Close() {
	if err := a.store.Close(context.Background()); err != nil {
		a.logger.Error("error closing store", "error", err)
	}
}
