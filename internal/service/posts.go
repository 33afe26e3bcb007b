// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service provides the blog's business logic on top of the document store.
package service

import (
	"context"
	"log/slog"

	"github.com/olegiv/techblog/internal/model"
	"github.com/olegiv/techblog/internal/store"
)

// PostService serves the public reading surface: listing, lookups and counters.
type PostService struct {
	store  store.Store
	logger *slog.Logger
}

// NewPostService creates a new PostService.
func NewPostService(s store.Store, logger *slog.Logger) *PostService {
	return &PostService{store: s, logger: logger}
}

// ParseSort validates a sortBy query value. The empty string selects latest.
func ParseSort(s string) (model.PostSort, error) {
	sort, ok := model.ParsePostSort(s)
	if !ok {
		return "", fieldError("sortBy", "must be latest or popular")
	}
	return sort, nil
}

// List returns every post matching filter in the requested order.
func (s *PostService) List(ctx context.Context, filter model.PostFilter, sort model.PostSort) ([]model.Post, error) {
	if _, ok := model.ParsePostSort(string(sort)); !ok {
		return nil, fieldError("sortBy", "must be latest or popular")
	}

	posts, err := s.store.Posts().List(ctx, filter, sort)
	if err != nil {
		return nil, storeError("list posts", err)
	}
	return posts, nil
}

func (s *PostService) GetByID(ctx context.Context, id string) (model.Post, error) {
	p, err := s.store.Posts().GetByID(ctx, id)
	if err != nil {
		return p, lookupError("post", id, "get post", err)
	}
	return p, nil
}

func (s *PostService) GetBySlug(ctx context.Context, slug string) (model.Post, error) {
	p, err := s.store.Posts().GetBySlug(ctx, slug)
	if err != nil {
		return p, lookupError("post", slug, "get post", err)
	}
	return p, nil
}

// RecordView loads a post for its detail page and counts the view.
// The returned post carries the incremented count.
func (s *PostService) RecordView(ctx context.Context, slug string) (model.Post, error) {
	p, err := s.GetBySlug(ctx, slug)
	if err != nil {
		return p, err
	}

	views, err := s.IncrementViews(ctx, p.ID)
	if err != nil {
		return p, err
	}
	p.Views = views
	return p, nil
}

// IncrementViews atomically adds one view and returns the new total.
func (s *PostService) IncrementViews(ctx context.Context, id string) (int, error) {
	n, err := s.store.Posts().IncrementViews(ctx, id)
	if err != nil {
		return 0, lookupError("post", id, "increment views", err)
	}
	return n, nil
}

// ToggleLike atomically adds or removes one like and returns the new total.
// Unlike never takes the count below zero.
func (s *PostService) ToggleLike(ctx context.Context, id string, direction model.LikeDirection) (int, error) {
	if !direction.Valid() {
		return 0, fieldError("direction", "must be like or unlike")
	}

	n, err := s.store.Posts().AdjustLikes(ctx, id, direction.Delta())
	if err != nil {
		return 0, lookupError("post", id, "adjust likes", err)
	}

	s.logger.Debug("post like toggled", "post_id", id, "direction", direction, "likes", n)
	return n, nil
}

// Likes returns the current like count of a post.
func (s *PostService) Likes(ctx context.Context, id string) (int, error) {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}
	return p.Likes, nil
}
