// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/techblog/internal/model"
	"github.com/olegiv/techblog/internal/store"
	"github.com/olegiv/techblog/internal/util"
	"github.com/olegiv/techblog/internal/validator"
)

// CategoryService manages post categories.
type CategoryService struct {
	store  store.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewCategoryService creates a new CategoryService.
func NewCategoryService(s store.Store, logger *slog.Logger) *CategoryService {
	return &CategoryService{store: s, logger: logger, now: time.Now}
}

// List returns all categories sorted by name.
func (s *CategoryService) List(ctx context.Context) ([]model.Category, error) {
	categories, err := s.store.Categories().List(ctx)
	if err != nil {
		return nil, storeError("list categories", err)
	}
	return categories, nil
}

func (s *CategoryService) Get(ctx context.Context, id string) (model.Category, error) {
	c, err := s.store.Categories().Get(ctx, id)
	if err != nil {
		return c, lookupError("category", id, "get category", err)
	}
	return c, nil
}

// Create adds a category. The id must be a valid slug.
func (s *CategoryService) Create(ctx context.Context, actor *model.User, in model.Category) (model.Category, error) {
	if err := requireAdmin(actor); err != nil {
		return model.Category{}, err
	}

	v := validator.New()
	v.Required(in.ID, "id")
	v.Required(in.Name, "name")
	v.Required(in.Description, "description")
	if validator.NotBlank(in.ID) {
		v.Check(util.IsValidSlug(in.ID), "id", msgInvalidSlug)
	}
	if !v.IsValid() {
		return model.Category{}, newValidationError(v.Errors)
	}

	now := s.now().UTC()
	c := model.Category{
		ID:          in.ID,
		Name:        in.Name,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Categories().Insert(ctx, c); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return model.Category{}, &ConflictError{Entity: "category", Field: "id", Value: in.ID}
		}
		return model.Category{}, storeError("insert category", err)
	}

	s.logger.Info("category created", "category_id", c.ID, "by", actor.Username)
	return c, nil
}

func (s *CategoryService) Update(ctx context.Context, actor *model.User, id string, patch model.CategoryPatch) (model.Category, error) {
	if err := requireAdmin(actor); err != nil {
		return model.Category{}, err
	}

	v := validator.New()
	if patch.Name != nil {
		v.Required(*patch.Name, "name")
	}
	if patch.Description != nil {
		v.Required(*patch.Description, "description")
	}
	if !v.IsValid() {
		return model.Category{}, newValidationError(v.Errors)
	}

	c, err := s.store.Categories().Update(ctx, id, patch, s.now().UTC())
	if err != nil {
		return c, lookupError("category", id, "update category", err)
	}

	s.logger.Info("category updated", "category_id", id, "by", actor.Username)
	return c, nil
}

// Delete removes a category that no post references.
func (s *CategoryService) Delete(ctx context.Context, actor *model.User, id string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}

	if _, err := s.store.Categories().Get(ctx, id); err != nil {
		return lookupError("category", id, "get category", err)
	}

	n, err := s.store.Posts().CountByCategory(ctx, id)
	if err != nil {
		return storeError("count posts", err)
	}
	if n > 0 {
		return &ConflictError{
			Entity:  "category",
			Field:   "id",
			Value:   id,
			Message: fmt.Sprintf("category is used by %d post(s)", n),
		}
	}

	if err := s.store.Categories().Delete(ctx, id); err != nil {
		return lookupError("category", id, "delete category", err)
	}

	s.logger.Info("category deleted", "category_id", id, "by", actor.Username)
	return nil
}
