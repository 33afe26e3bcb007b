// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/techblog/internal/model"
	"github.com/olegiv/techblog/internal/store"
)

const postColumns = `id, title, slug, excerpt, content, author, published_at, image, category,
	tags, views, likes, created_at, updated_at`

type postRepo struct {
	db *sql.DB
}

func scanPost(row scanner) (model.Post, error) {
	var p model.Post
	var tags string
	err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.Excerpt, &p.Content, &p.Author, &p.PublishedAt,
		&p.Image, &p.Category, &tags, &p.Views, &p.Likes, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return p, err
	}
	if err := json.Unmarshal([]byte(tags), &p.Tags); err != nil {
		return p, fmt.Errorf("decoding tags of post %s: %w", p.ID, err)
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return p, nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encoding tags: %w", err)
	}
	return string(b), nil
}

func (r *postRepo) List(ctx context.Context, filter model.PostFilter, sort model.PostSort) ([]model.Post, error) {
	var where []string
	var args []any

	if filter.Category != "" {
		where = append(where, "category = ?")
		args = append(args, filter.Category)
	}
	if term := filter.SearchTerm(); term != "" {
		where = append(where, "(instr(casefold(title), ?) > 0 OR instr(casefold(excerpt), ?) > 0)")
		folded := strings.ToLower(term)
		args = append(args, folded, folded)
	}

	var orderBy string
	switch sort {
	case model.SortLatest, "":
		orderBy = "published_at DESC, rowid ASC"
	case model.SortPopular:
		orderBy = "views DESC, rowid ASC"
	default:
		return nil, fmt.Errorf("unsupported sort %q", sort)
	}

	query := "SELECT " + postColumns + " FROM posts"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY " + orderBy

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	posts := []model.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning post: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating posts: %w", err)
	}
	return posts, nil
}

func (r *postRepo) getOne(ctx context.Context, column, value string) (model.Post, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+postColumns+" FROM posts WHERE "+column+" = ?", value)
	p, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return p, store.ErrNotFound
	}
	if err != nil {
		return p, fmt.Errorf("getting post by %s: %w", column, err)
	}
	return p, nil
}

func (r *postRepo) GetByID(ctx context.Context, id string) (model.Post, error) {
	return r.getOne(ctx, "id", id)
}

func (r *postRepo) GetBySlug(ctx context.Context, slug string) (model.Post, error) {
	return r.getOne(ctx, "slug", slug)
}

func (r *postRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM posts WHERE slug = ?", slug).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking slug: %w", err)
	}
	return n > 0, nil
}

func (r *postRepo) SlugExistsExcluding(ctx context.Context, slug, excludeID string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM posts WHERE slug = ? AND id <> ?", slug, excludeID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking slug: %w", err)
	}
	return n > 0, nil
}

func (r *postRepo) CountByCategory(ctx context.Context, categoryID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM posts WHERE category = ?", categoryID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting posts: %w", err)
	}
	return n, nil
}

func (r *postRepo) Insert(ctx context.Context, post *model.Post) error {
	tags, err := encodeTags(post.Tags)
	if err != nil {
		return err
	}

	id := uuid.NewString()
	_, err = r.db.ExecContext(ctx, `INSERT INTO posts (`+postColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, post.Title, post.Slug, post.Excerpt, post.Content, post.Author, post.PublishedAt.UTC(),
		post.Image, post.Category, tags, post.Views, post.Likes, post.CreatedAt.UTC(), post.UpdatedAt.UTC())
	if isUniqueViolation(err) {
		return store.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("inserting post: %w", err)
	}

	post.ID = id
	return nil
}

func (r *postRepo) Update(ctx context.Context, id string, patch model.PostPatch, updatedAt time.Time) (model.Post, error) {
	var sets []string
	var args []any
	set := func(column string, value any) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}

	if patch.Title != nil {
		set("title", *patch.Title)
	}
	if patch.Slug != nil {
		set("slug", *patch.Slug)
	}
	if patch.Excerpt != nil {
		set("excerpt", *patch.Excerpt)
	}
	if patch.Content != nil {
		set("content", *patch.Content)
	}
	if patch.Author != nil {
		set("author", *patch.Author)
	}
	if patch.PublishedAt != nil {
		set("published_at", patch.PublishedAt.UTC())
	}
	if patch.Image != nil {
		set("image", *patch.Image)
	}
	if patch.Category != nil {
		set("category", *patch.Category)
	}
	if patch.Tags != nil {
		tags, err := encodeTags(*patch.Tags)
		if err != nil {
			return model.Post{}, err
		}
		set("tags", tags)
	}
	if patch.Views != nil {
		set("views", *patch.Views)
	}
	if patch.Likes != nil {
		set("likes", *patch.Likes)
	}
	set("updated_at", updatedAt.UTC())
	args = append(args, id)

	res, err := r.db.ExecContext(ctx, "UPDATE posts SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if isUniqueViolation(err) {
		return model.Post{}, store.ErrDuplicate
	}
	if err != nil {
		return model.Post{}, fmt.Errorf("updating post: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.Post{}, fmt.Errorf("updating post: %w", err)
	}
	if n == 0 {
		return model.Post{}, store.ErrNotFound
	}

	return r.GetByID(ctx, id)
}

func (r *postRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM posts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting post: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting post: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *postRepo) counter(ctx context.Context, query string, args ...any) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, store.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("updating counter: %w", err)
	}
	return n, nil
}

func (r *postRepo) IncrementViews(ctx context.Context, id string) (int, error) {
	return r.counter(ctx, "UPDATE posts SET views = views + 1 WHERE id = ? RETURNING views", id)
}

func (r *postRepo) AdjustLikes(ctx context.Context, id string, delta int) (int, error) {
	return r.counter(ctx, "UPDATE posts SET likes = MAX(likes + ?, 0) WHERE id = ? RETURNING likes", delta, id)
}
