// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/olegiv/techblog/internal/model"
	"github.com/olegiv/techblog/internal/store"
	"github.com/olegiv/techblog/internal/util"
	"github.com/olegiv/techblog/internal/validator"
)

const msgInvalidSlug = "must contain only lowercase letters, numbers and single hyphens"

// PostInput is the payload of a new post.
type PostInput struct {
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Excerpt     string     `json:"excerpt"`
	Content     string     `json:"content"`
	Author      string     `json:"author"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	Image       string     `json:"image"`
	Category    string     `json:"category"`
	Tags        []string   `json:"tags"`
}

// ContentService implements the admin authoring operations on posts and
// keeps tag counters in step with them.
type ContentService struct {
	store  store.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewContentService creates a new ContentService.
func NewContentService(s store.Store, logger *slog.Logger) *ContentService {
	return &ContentService{store: s, logger: logger, now: time.Now}
}

// CreatePost validates input and stores a new post with zeroed counters.
func (s *ContentService) CreatePost(ctx context.Context, actor *model.User, in PostInput) (model.Post, error) {
	if err := requireAdmin(actor); err != nil {
		return model.Post{}, err
	}

	v := validator.New()
	v.Required(in.Title, "title")
	v.Required(in.Slug, "slug")
	v.Required(in.Excerpt, "excerpt")
	v.Required(in.Content, "content")
	v.Required(in.Author, "author")
	v.Required(in.Image, "image")
	v.Required(in.Category, "category")
	if validator.NotBlank(in.Slug) {
		v.Check(util.IsValidSlug(in.Slug), "slug", msgInvalidSlug)
	}
	if !v.IsValid() {
		return model.Post{}, newValidationError(v.Errors)
	}

	if err := s.checkCategory(ctx, in.Category); err != nil {
		return model.Post{}, err
	}

	exists, err := s.store.Posts().SlugExists(ctx, in.Slug)
	if err != nil {
		return model.Post{}, storeError("check slug", err)
	}
	if exists {
		return model.Post{}, slugConflict(in.Slug)
	}

	now := s.now().UTC()
	published := now
	if in.PublishedAt != nil {
		published = in.PublishedAt.UTC()
	}
	post := model.Post{
		Title:       in.Title,
		Slug:        in.Slug,
		Excerpt:     in.Excerpt,
		Content:     in.Content,
		Author:      in.Author,
		PublishedAt: published,
		Image:       in.Image,
		Category:    in.Category,
		Tags:        model.NormalizeTags(in.Tags),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.Posts().Insert(ctx, &post); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return model.Post{}, slugConflict(in.Slug)
		}
		return model.Post{}, storeError("insert post", err)
	}

	s.adjustTags(ctx, post.Tags, 1)
	s.logger.Info("post created", "post_id", post.ID, "slug", post.Slug, "by", actor.Username)
	return post, nil
}

// UpdatePost applies the fields present in patch to an existing post.
func (s *ContentService) UpdatePost(ctx context.Context, actor *model.User, id string, patch model.PostPatch) (model.Post, error) {
	if err := requireAdmin(actor); err != nil {
		return model.Post{}, err
	}
	if patch.IsEmpty() {
		return model.Post{}, fieldError("body", "must set at least one field")
	}

	v := validator.New()
	checkPresent := func(value *string, field string) {
		if value != nil {
			v.Required(*value, field)
		}
	}
	checkPresent(patch.Title, "title")
	checkPresent(patch.Slug, "slug")
	checkPresent(patch.Excerpt, "excerpt")
	checkPresent(patch.Content, "content")
	checkPresent(patch.Author, "author")
	checkPresent(patch.Image, "image")
	checkPresent(patch.Category, "category")
	if patch.Slug != nil && validator.NotBlank(*patch.Slug) {
		v.Check(util.IsValidSlug(*patch.Slug), "slug", msgInvalidSlug)
	}
	if patch.Views != nil {
		v.Check(*patch.Views >= 0, "views", "must not be negative")
	}
	if patch.Likes != nil {
		v.Check(*patch.Likes >= 0, "likes", "must not be negative")
	}
	if !v.IsValid() {
		return model.Post{}, newValidationError(v.Errors)
	}

	current, err := s.store.Posts().GetByID(ctx, id)
	if err != nil {
		return model.Post{}, lookupError("post", id, "get post", err)
	}

	if patch.Category != nil && *patch.Category != current.Category {
		if err := s.checkCategory(ctx, *patch.Category); err != nil {
			return model.Post{}, err
		}
	}

	if patch.Slug != nil && *patch.Slug != current.Slug {
		taken, err := s.store.Posts().SlugExistsExcluding(ctx, *patch.Slug, id)
		if err != nil {
			return model.Post{}, storeError("check slug", err)
		}
		if taken {
			return model.Post{}, slugConflict(*patch.Slug)
		}
	}

	if patch.Tags != nil {
		normalized := model.NormalizeTags(*patch.Tags)
		patch.Tags = &normalized
	}

	updated, err := s.store.Posts().Update(ctx, id, patch, s.now().UTC())
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return model.Post{}, &NotFoundError{Entity: "post", ID: id}
		case errors.Is(err, store.ErrDuplicate):
			slug := current.Slug
			if patch.Slug != nil {
				slug = *patch.Slug
			}
			return model.Post{}, slugConflict(slug)
		default:
			return model.Post{}, storeError("update post", err)
		}
	}

	if patch.Tags != nil {
		added, removed := model.DiffTags(current.Tags, updated.Tags)
		s.adjustTags(ctx, added, 1)
		s.adjustTags(ctx, removed, -1)
	}

	s.logger.Info("post updated", "post_id", id, "by", actor.Username)
	return updated, nil
}

// DeletePost removes a post and releases its tags.
func (s *ContentService) DeletePost(ctx context.Context, actor *model.User, id string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}

	current, err := s.store.Posts().GetByID(ctx, id)
	if err != nil {
		return lookupError("post", id, "get post", err)
	}

	if err := s.store.Posts().Delete(ctx, id); err != nil {
		return lookupError("post", id, "delete post", err)
	}

	s.adjustTags(ctx, current.Tags, -1)
	s.logger.Info("post deleted", "post_id", id, "slug", current.Slug, "by", actor.Username)
	return nil
}

// RecountTags recomputes every tag count from the posts collection.
func (s *ContentService) RecountTags(ctx context.Context) ([]model.Tag, error) {
	posts, err := s.store.Posts().List(ctx, model.PostFilter{}, model.SortLatest)
	if err != nil {
		return nil, storeError("list posts", err)
	}

	counts := make(map[string]int)
	for _, p := range posts {
		for _, tag := range model.NormalizeTags(p.Tags) {
			counts[tag]++
		}
	}

	if err := s.store.Tags().SetCounts(ctx, counts); err != nil {
		return nil, storeError("set tag counts", err)
	}

	tags, err := s.store.Tags().List(ctx)
	if err != nil {
		return nil, storeError("list tags", err)
	}

	s.logger.Info("tag counts recomputed", "posts", len(posts), "tags", len(tags))
	return tags, nil
}

// ListTags returns tags ordered by count descending, then name.
func (s *ContentService) ListTags(ctx context.Context) ([]model.Tag, error) {
	tags, err := s.store.Tags().List(ctx)
	if err != nil {
		return nil, storeError("list tags", err)
	}
	return tags, nil
}

func (s *ContentService) checkCategory(ctx context.Context, id string) error {
	ok, err := s.store.Categories().Exists(ctx, id)
	if err != nil {
		return storeError("check category", err)
	}
	if !ok {
		return fieldError("category", "does not exist")
	}
	return nil
}

// adjustTags runs after the post write has succeeded; failures only drift the
// counters, which RecountTags repairs.
func (s *ContentService) adjustTags(ctx context.Context, tags []string, delta int) {
	for _, tag := range tags {
		if err := s.store.Tags().Adjust(ctx, tag, delta); err != nil {
			s.logger.Warn("failed to adjust tag count", "tag", tag, "delta", delta, "error", err)
		}
	}
}

func slugConflict(slug string) *ConflictError {
	return &ConflictError{
		Entity:  "post",
		Field:   "slug",
		Value:   slug,
		Message: "Post with this slug already exists",
	}
}
