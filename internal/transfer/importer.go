// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package transfer

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/olegiv/techblog/internal/auth"
	"github.com/olegiv/techblog/internal/model"
	"github.com/olegiv/techblog/internal/service"
	"github.com/olegiv/techblog/internal/store"
	"github.com/olegiv/techblog/internal/util"
	"github.com/olegiv/techblog/internal/validator"
)

// ErrValidation is returned when the import document is rejected before any write.
var ErrValidation = errors.New("import validation failed")

// Importer restores an ExportData document into the store.
type Importer struct {
	store   store.Store
	content *service.ContentService
	logger  *slog.Logger
	now     func() time.Time
}

// NewImporter creates a new Importer instance.
func NewImporter(s store.Store, logger *slog.Logger) *Importer {
	return &Importer{
		store:   s,
		content: service.NewContentService(s, logger),
		logger:  logger,
		now:     time.Now,
	}
}

// Import validates data, then writes categories, users, posts and tags in that
// order. Each document is written on its own; a failed document is recorded in
// the result and the import continues. Tag counts are recomputed at the end.
func (i *Importer) Import(ctx context.Context, data *ExportData, opts ImportOptions) (*ImportResult, error) {
	if opts.ConflictStrategy == "" {
		opts.ConflictStrategy = ConflictSkip
	}
	if opts.ConflictStrategy != ConflictSkip && opts.ConflictStrategy != ConflictOverwrite {
		return nil, fmt.Errorf("unknown conflict strategy %q", opts.ConflictStrategy)
	}

	result := NewImportResult(opts.DryRun)

	validationErrors, err := i.Validate(ctx, data)
	if err != nil {
		return nil, err
	}
	if len(validationErrors) > 0 {
		result.Errors = validationErrors
		return result, ErrValidation
	}

	i.importCategories(ctx, data.Categories, opts, result)
	if opts.ImportUsers {
		i.importUsers(ctx, data.Users, opts, result)
	}
	i.importPosts(ctx, data.Posts, opts, result)
	i.importTags(ctx, data.Tags, opts, result)

	if !opts.DryRun {
		if _, err := i.content.RecountTags(ctx); err != nil {
			return result, fmt.Errorf("recounting tags: %w", err)
		}
	}

	i.logger.Info("import complete",
		"dry_run", opts.DryRun,
		"created", result.TotalCreated(),
		"updated", result.TotalUpdated(),
		"skipped", result.TotalSkipped(),
		"errors", len(result.Errors),
	)
	return result, nil
}

// ImportFromReader reads and imports from an io.Reader.
func (i *Importer) ImportFromReader(ctx context.Context, r io.Reader, opts ImportOptions) (*ImportResult, error) {
	var data ExportData
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	return i.Import(ctx, &data, opts)
}

// ImportFromFile reads and imports from a file path.
func (i *Importer) ImportFromFile(ctx context.Context, path string, opts ImportOptions) (*ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return i.ImportFromReader(ctx, f, opts)
}

// Validate checks the document without writing. Posts may reference
// categories from the document or from the store.
func (i *Importer) Validate(ctx context.Context, data *ExportData) ([]ImportError, error) {
	var errs []ImportError
	add := func(entity, id string, v *validator.Validator) {
		fields := v.Fields()
		slices.Sort(fields)
		for _, field := range fields {
			errs = append(errs, ImportError{Entity: entity, ID: id, Message: field + " " + v.Errors[field]})
		}
	}

	if data.Version != ExportVersion {
		errs = append(errs, ImportError{
			Entity:  "document",
			Message: fmt.Sprintf("unsupported version %q, expected %q", data.Version, ExportVersion),
		})
		return errs, nil
	}

	categories := make(map[string]bool)
	for _, c := range data.Categories {
		v := validator.New()
		v.Required(c.ID, "id")
		v.Required(c.Name, "name")
		if validator.NotBlank(c.ID) {
			v.Check(util.IsValidSlug(c.ID), "id", "is not a valid slug")
			v.Check(!categories[c.ID], "id", "is duplicated in the document")
		}
		add("category", c.ID, v)
		categories[c.ID] = true
	}

	existing, err := i.store.Categories().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	for _, c := range existing {
		categories[c.ID] = true
	}

	usernames := make(map[string]bool)
	for _, u := range data.Users {
		v := validator.New()
		v.Required(u.Username, "username")
		v.Required(u.Email, "email")
		v.Check(!usernames[u.Username], "username", "is duplicated in the document")
		add("user", u.Username, v)
		usernames[u.Username] = true
	}

	slugs := make(map[string]bool)
	for _, p := range data.Posts {
		v := validator.New()
		v.Required(p.Title, "title")
		v.Required(p.Slug, "slug")
		v.Required(p.Content, "content")
		v.Required(p.Author, "author")
		v.Required(p.Category, "category")
		if validator.NotBlank(p.Slug) {
			v.Check(util.IsValidSlug(p.Slug), "slug", "is not a valid slug")
			v.Check(!slugs[p.Slug], "slug", "is duplicated in the document")
		}
		if validator.NotBlank(p.Category) {
			v.Check(categories[p.Category], "category", "does not exist")
		}
		v.Check(p.Views >= 0, "views", "must not be negative")
		v.Check(p.Likes >= 0, "likes", "must not be negative")
		add("post", p.Slug, v)
		slugs[p.Slug] = true
	}

	return errs, nil
}

func (i *Importer) importCategories(ctx context.Context, categories []model.Category, opts ImportOptions, result *ImportResult) {
	const entity = "categories"
	now := i.now().UTC()

	for _, c := range categories {
		current, err := i.store.Categories().Get(ctx, c.ID)
		switch {
		case err == nil:
			if opts.ConflictStrategy == ConflictSkip {
				result.Skipped[entity]++
				continue
			}
			patch := model.CategoryPatch{Name: &c.Name, Description: &c.Description}
			next := current
			patch.Apply(&next)
			if next == current {
				result.Skipped[entity]++
				continue
			}
			if !opts.DryRun {
				if _, err := i.store.Categories().Update(ctx, c.ID, patch, now); err != nil {
					result.AddError("category", c.ID, err.Error())
					continue
				}
			}
			result.Updated[entity]++
			continue
		case !errors.Is(err, store.ErrNotFound):
			result.AddError("category", c.ID, err.Error())
			continue
		}

		if !opts.DryRun {
			if c.CreatedAt.IsZero() {
				c.CreatedAt = now
			}
			if c.UpdatedAt.IsZero() {
				c.UpdatedAt = c.CreatedAt
			}
			if err := i.store.Categories().Insert(ctx, c); err != nil {
				result.AddError("category", c.ID, err.Error())
				continue
			}
		}
		result.Created[entity]++
	}
}

// importUsers creates missing users with a random password; they sign in after
// an administrator resets it. Existing users are never modified.
func (i *Importer) importUsers(ctx context.Context, users []ExportUser, opts ImportOptions, result *ImportResult) {
	const entity = "users"

	for _, u := range users {
		_, err := i.store.Users().GetByUsername(ctx, u.Username)
		if err == nil {
			result.Skipped[entity]++
			continue
		}
		if !errors.Is(err, store.ErrNotFound) {
			result.AddError("user", u.Username, err.Error())
			continue
		}

		if !opts.DryRun {
			hash, err := auth.HashPassword(rand.Text())
			if err != nil {
				result.AddError("user", u.Username, "failed to generate password hash")
				continue
			}

			user := &model.User{
				Username:     u.Username,
				Email:        strings.ToLower(u.Email),
				PasswordHash: hash,
				Avatar:       u.Avatar,
				IsAdmin:      u.IsAdmin,
				CreatedAt:    u.CreatedAt,
			}
			if user.Avatar == "" {
				user.Avatar = model.DefaultAvatar
			}
			if user.CreatedAt.IsZero() {
				user.CreatedAt = i.now().UTC()
			}
			if err := i.store.Users().Insert(ctx, user); err != nil {
				result.AddError("user", u.Username, err.Error())
				continue
			}
		}
		result.Created[entity]++
	}
}

// importPosts matches posts by slug. Imported posts keep their counters and
// timestamps but get new ids. With ConflictOverwrite, a post the document
// would not change is counted as skipped and left untouched.
func (i *Importer) importPosts(ctx context.Context, posts []model.Post, opts ImportOptions, result *ImportResult) {
	const entity = "posts"
	now := i.now().UTC()

	for _, p := range posts {
		p.Tags = model.NormalizeTags(p.Tags)

		current, err := i.store.Posts().GetBySlug(ctx, p.Slug)
		switch {
		case err == nil:
			if opts.ConflictStrategy == ConflictSkip {
				result.Skipped[entity]++
				continue
			}
			patch := fullPatch(p)
			next := current
			patch.Apply(&next)
			if samePost(current, next) {
				result.Skipped[entity]++
				continue
			}
			if !opts.DryRun {
				if _, err := i.store.Posts().Update(ctx, current.ID, patch, now); err != nil {
					result.AddError("post", p.Slug, err.Error())
					continue
				}
			}
			result.Updated[entity]++
			continue
		case !errors.Is(err, store.ErrNotFound):
			result.AddError("post", p.Slug, err.Error())
			continue
		}

		if !opts.DryRun {
			if p.PublishedAt.IsZero() {
				p.PublishedAt = now
			}
			if p.CreatedAt.IsZero() {
				p.CreatedAt = now
			}
			if p.UpdatedAt.IsZero() {
				p.UpdatedAt = p.CreatedAt
			}
			if err := i.store.Posts().Insert(ctx, &p); err != nil {
				result.AddError("post", p.Slug, err.Error())
				continue
			}
		}
		result.Created[entity]++
	}
}

func (i *Importer) importTags(ctx context.Context, tags []model.Tag, opts ImportOptions, result *ImportResult) {
	const entity = "tags"

	existing, err := i.store.Tags().List(ctx)
	if err != nil {
		result.AddError("tag", "", err.Error())
		return
	}
	known := make(map[string]bool, len(existing))
	for _, t := range existing {
		known[t.Name] = true
	}

	for _, name := range tagNames(tags) {
		if known[name] {
			result.Skipped[entity]++
			continue
		}
		if !opts.DryRun {
			if err := i.store.Tags().Ensure(ctx, name); err != nil {
				result.AddError("tag", name, err.Error())
				continue
			}
		}
		result.Created[entity]++
	}
}

func tagNames(tags []model.Tag) []string {
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Name)
	}
	return model.NormalizeTags(names)
}

// samePost compares the fields fullPatch writes.
func samePost(a, b model.Post) bool {
	return a.Title == b.Title &&
		a.Slug == b.Slug &&
		a.Excerpt == b.Excerpt &&
		a.Content == b.Content &&
		a.Author == b.Author &&
		a.PublishedAt.Equal(b.PublishedAt) &&
		a.Image == b.Image &&
		a.Category == b.Category &&
		slices.Equal(a.Tags, b.Tags) &&
		a.Views == b.Views &&
		a.Likes == b.Likes
}

// fullPatch sets every writable field of p.
func fullPatch(p model.Post) model.PostPatch {
	return model.PostPatch{
		Title:       &p.Title,
		Slug:        &p.Slug,
		Excerpt:     &p.Excerpt,
		Content:     &p.Content,
		Author:      &p.Author,
		PublishedAt: &p.PublishedAt,
		Image:       &p.Image,
		Category:    &p.Category,
		Tags:        &p.Tags,
		Views:       &p.Views,
		Likes:       &p.Likes,
	}
}
