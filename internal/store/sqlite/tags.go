// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/olegiv/techblog/internal/model"
)

type tagRepo struct {
	db *sql.DB
}

func (r *tagRepo) List(ctx context.Context) ([]model.Tag, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT name, count FROM tags ORDER BY count DESC, name ASC")
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	defer func() { _ = rows.Close() }()

	tags := []model.Tag{}
	for rows.Next() {
		var t model.Tag
		if err := rows.Scan(&t.Name, &t.Count); err != nil {
			return nil, fmt.Errorf("scanning tag: %w", err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tags: %w", err)
	}
	return tags, nil
}

func (r *tagRepo) Ensure(ctx context.Context, name string) error {
	if _, err := r.db.ExecContext(ctx, "INSERT OR IGNORE INTO tags (name, count) VALUES (?, 0)", name); err != nil {
		return fmt.Errorf("ensuring tag %q: %w", name, err)
	}
	return nil
}

const upsertTagCount = `INSERT INTO tags (name, count) VALUES (?, MAX(?, 0))
	ON CONFLICT(name) DO UPDATE SET count = MAX(count + ?, 0)`

func (r *tagRepo) Adjust(ctx context.Context, name string, delta int) error {
	if _, err := r.db.ExecContext(ctx, upsertTagCount, name, delta, delta); err != nil {
		return fmt.Errorf("adjusting tag %q: %w", name, err)
	}
	return nil
}

func (r *tagRepo) SetCounts(ctx context.Context, counts map[string]int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "UPDATE tags SET count = 0"); err != nil {
		return fmt.Errorf("resetting tag counts: %w", err)
	}
	for name, n := range counts {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO tags (name, count) VALUES (?, ?) ON CONFLICT(name) DO UPDATE SET count = excluded.count",
			name, n); err != nil {
			return fmt.Errorf("setting tag %q: %w", name, err)
		}
	}
	return tx.Commit()
}
