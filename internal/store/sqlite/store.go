// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/olegiv/techblog/internal/store"
)

// Store is the SQLite-backed document store.
type Store struct {
	db         *sql.DB
	posts      *postRepo
	categories *categoryRepo
	users      *userRepo
	tags       *tagRepo
}

var _ store.Store = (*Store)(nil)

// New wraps an open, migrated database.
func New(db *sql.DB) *Store {
	return &Store{
		db:         db,
		posts:      &postRepo{db: db},
		categories: &categoryRepo{db: db},
		users:      &userRepo{db: db},
		tags:       &tagRepo{db: db},
	}
}

// Open creates the database file if needed, applies migrations and returns the store.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := NewDB(path)
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return New(db), nil
}

// DB returns the underlying database handle (used by the session store).
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Posts() store.PostRepository           { return s.posts }
func (s *Store) Categories() store.CategoryRepository { return s.categories }
func (s *Store) Users() store.UserRepository           { return s.users }
func (s *Store) Tags() store.TagRepository             { return s.tags }

// Ping verifies database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *Store) Close(_ context.Context) error {
	return s.db.Close()
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}
