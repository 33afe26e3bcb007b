// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/olegiv/techblog/internal/model"
	"github.com/olegiv/techblog/internal/store"
)

const categoryColumns = "id, name, description, created_at, updated_at"

type categoryRepo struct {
	db *sql.DB
}

func scanCategory(row scanner) (model.Category, error) {
	var c model.Category
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *categoryRepo) List(ctx context.Context) ([]model.Category, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+categoryColumns+" FROM categories ORDER BY name ASC, id ASC")
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	categories := []model.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating categories: %w", err)
	}
	return categories, nil
}

func (r *categoryRepo) Get(ctx context.Context, id string) (model.Category, error) {
	c, err := scanCategory(r.db.QueryRowContext(ctx,
		"SELECT "+categoryColumns+" FROM categories WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return c, store.ErrNotFound
	}
	if err != nil {
		return c, fmt.Errorf("getting category: %w", err)
	}
	return c, nil
}

func (r *categoryRepo) Exists(ctx context.Context, id string) (bool, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM categories WHERE id = ?", id).Scan(&n); err != nil {
		return false, fmt.Errorf("checking category: %w", err)
	}
	return n > 0, nil
}

func (r *categoryRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM categories").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting categories: %w", err)
	}
	return n, nil
}

func (r *categoryRepo) Insert(ctx context.Context, c model.Category) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO categories ("+categoryColumns+") VALUES (?, ?, ?, ?, ?)",
		c.ID, c.Name, c.Description, c.CreatedAt.UTC(), c.UpdatedAt.UTC())
	if isUniqueViolation(err) || isPrimaryKeyViolation(err) {
		return store.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("inserting category: %w", err)
	}
	return nil
}

func (r *categoryRepo) Update(ctx context.Context, id string, patch model.CategoryPatch, updatedAt time.Time) (model.Category, error) {
	sets := []string{"updated_at = ?"}
	args := []any{updatedAt.UTC()}
	if patch.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *patch.Name)
	}
	if patch.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *patch.Description)
	}
	args = append(args, id)

	res, err := r.db.ExecContext(ctx, "UPDATE categories SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return model.Category{}, fmt.Errorf("updating category: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return model.Category{}, fmt.Errorf("updating category: %w", err)
	} else if n == 0 {
		return model.Category{}, store.ErrNotFound
	}
	return r.Get(ctx, id)
}

func (r *categoryRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting category: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("deleting category: %w", err)
	} else if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
