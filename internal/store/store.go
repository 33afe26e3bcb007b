// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package store defines the document store used by the services: four named
// collections (posts, categories, users, tags) behind repository interfaces.
// Backends live in the sqlite and mongo subpackages.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/olegiv/techblog/internal/model"
)

// Collection names shared by every backend.
const (
	CollectionPosts      = "posts"
	CollectionCategories = "categories"
	CollectionUsers      = "users"
	CollectionTags       = "tags"
)

var (
	// ErrNotFound is returned when no document matches.
	ErrNotFound = errors.New("store: not found")
	// ErrDuplicate is returned when a write violates a unique key.
	ErrDuplicate = errors.New("store: duplicate key")
)

// Store is an open document store.
type Store interface {
	Posts() PostRepository
	Categories() CategoryRepository
	Users() UserRepository
	Tags() TagRepository

	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error
	// Close releases the underlying client.
	Close(ctx context.Context) error
}

// PostRepository is the posts collection.
type PostRepository interface {
	// List returns every post matching filter in the requested order.
	// Equal sort keys keep insertion order.
	List(ctx context.Context, filter model.PostFilter, sort model.PostSort) ([]model.Post, error)
	GetByID(ctx context.Context, id string) (model.Post, error)
	GetBySlug(ctx context.Context, slug string) (model.Post, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	SlugExistsExcluding(ctx context.Context, slug, excludeID string) (bool, error)
	CountByCategory(ctx context.Context, categoryID string) (int, error)

	// Insert stores a new post and assigns post.ID.
	Insert(ctx context.Context, post *model.Post) error
	// Update writes only the fields present in patch and returns the stored post.
	Update(ctx context.Context, id string, patch model.PostPatch, updatedAt time.Time) (model.Post, error)
	Delete(ctx context.Context, id string) error

	// IncrementViews atomically adds one view and returns the new count.
	IncrementViews(ctx context.Context, id string) (int, error)
	// AdjustLikes atomically adds delta to likes, never going below zero.
	AdjustLikes(ctx context.Context, id string, delta int) (int, error)
}

// CategoryRepository is the categories collection.
type CategoryRepository interface {
	// List returns every category sorted by name.
	List(ctx context.Context) ([]model.Category, error)
	Get(ctx context.Context, id string) (model.Category, error)
	Exists(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context) (int, error)
	Insert(ctx context.Context, category model.Category) error
	Update(ctx context.Context, id string, patch model.CategoryPatch, updatedAt time.Time) (model.Category, error)
	Delete(ctx context.Context, id string) error
}

// UserRepository is the users collection.
type UserRepository interface {
	List(ctx context.Context) ([]model.User, error)
	GetByID(ctx context.Context, id string) (model.User, error)
	GetByUsername(ctx context.Context, username string) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	// Insert stores a new user and assigns user.ID.
	Insert(ctx context.Context, user *model.User) error
	UpdatePasswordHash(ctx context.Context, id, hash string) error
}

// TagRepository is the tags collection.
type TagRepository interface {
	// List returns tags ordered by count descending, then name.
	List(ctx context.Context) ([]model.Tag, error)
	// Ensure creates the tag with a zero count when it does not exist.
	Ensure(ctx context.Context, name string) error
	// Adjust adds delta to the tag's count, creating the tag if needed.
	// Counts never go below zero.
	Adjust(ctx context.Context, name string, delta int) error
	// SetCounts overwrites counts; tags missing from counts are reset to zero.
	SetCounts(ctx context.Context, counts map[string]int) error
}
