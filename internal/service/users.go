// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/olegiv/techblog/internal/auth"
	"github.com/olegiv/techblog/internal/model"
	"github.com/olegiv/techblog/internal/store"
	"github.com/olegiv/techblog/internal/validator"
)

var emailRX = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// MinPasswordLength is the shortest accepted password for new users.
const MinPasswordLength = 8

// UserInput is the payload of a new user.
type UserInput struct {
	Username string
	Email    string
	Password string
	Avatar   string
	IsAdmin  bool
}

// SeedOptions configures SeedDefaults.
type SeedOptions struct {
	AdminUsername string
	AdminEmail    string
	AdminPassword string
}

// DefaultCategories are created on an empty database.
var DefaultCategories = []model.Category{
	{ID: "ai-llm-rag", Name: "AI, LLM, RAG", Description: "Artificial Intelligence, Large Language Models, and Retrieval-Augmented Generation"},
	{ID: "frontend-backend", Name: "Frontend & Backend", Description: "Web development technologies for client and server sides"},
	{ID: "web-development", Name: "Web Development", Description: "General web development practices and tools"},
	{ID: "databases", Name: "Databases", Description: "Database design, management, and technologies"},
	{ID: "news", Name: "News", Description: "Latest news and updates in technology"},
}

// DefaultTags are created with a zero count on first seed.
var DefaultTags = []string{"ai", "llm", "react", "nodejs", "java"}

// UserService handles accounts and sign-in.
type UserService struct {
	store  store.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewUserService creates a new UserService.
func NewUserService(s store.Store, logger *slog.Logger) *UserService {
	return &UserService{store: s, logger: logger, now: time.Now}
}

// Authenticate verifies credentials. Unknown users and wrong passwords yield
// the same AuthorizationError.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (model.User, error) {
	invalid := &AuthorizationError{Reason: "invalid username or password"}

	u, err := s.store.Users().GetByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, store.ErrNotFound) {
		return model.User{}, invalid
	}
	if err != nil {
		return model.User{}, storeError("get user", err)
	}

	ok, err := auth.CheckPassword(password, u.PasswordHash)
	if err != nil {
		s.logger.Warn("stored password hash is unreadable", "user_id", u.ID, "error", err)
		return model.User{}, invalid
	}
	if !ok {
		return model.User{}, invalid
	}

	if auth.NeedsRehash(u.PasswordHash) {
		s.rehash(ctx, &u, password)
	}
	return u, nil
}

func (s *UserService) rehash(ctx context.Context, u *model.User, password string) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		s.logger.Warn("failed to rehash password", "user_id", u.ID, "error", err)
		return
	}
	if err := s.store.Users().UpdatePasswordHash(ctx, u.ID, hash); err != nil {
		s.logger.Warn("failed to store rehashed password", "user_id", u.ID, "error", err)
		return
	}
	u.PasswordHash = hash
	s.logger.Info("password rehashed", "user_id", u.ID)
}

// GetByID returns a user by id.
func (s *UserService) GetByID(ctx context.Context, id string) (model.User, error) {
	u, err := s.store.Users().GetByID(ctx, id)
	if err != nil {
		return u, lookupError("user", id, "get user", err)
	}
	return u, nil
}

// CreateUser validates input, hashes the password and stores the user.
func (s *UserService) CreateUser(ctx context.Context, in UserInput) (model.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	v := validator.New()
	v.Required(in.Username, "username")
	v.Required(in.Email, "email")
	v.Required(in.Password, "password")
	if in.Email != "" {
		v.Check(validator.Matches(in.Email, emailRX), "email", "must be a valid email address")
	}
	if in.Password != "" {
		v.Check(len(in.Password) >= MinPasswordLength, "password", "must be at least 8 characters")
	}
	if !v.IsValid() {
		return model.User{}, newValidationError(v.Errors)
	}

	if _, err := s.store.Users().GetByUsername(ctx, in.Username); err == nil {
		return model.User{}, &ConflictError{Entity: "user", Field: "username", Value: in.Username}
	} else if !errors.Is(err, store.ErrNotFound) {
		return model.User{}, storeError("get user", err)
	}
	if _, err := s.store.Users().GetByEmail(ctx, in.Email); err == nil {
		return model.User{}, &ConflictError{Entity: "user", Field: "email", Value: in.Email}
	} else if !errors.Is(err, store.ErrNotFound) {
		return model.User{}, storeError("get user", err)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return model.User{}, err
	}

	avatar := in.Avatar
	if avatar == "" {
		avatar = model.DefaultAvatar
	}
	u := model.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Avatar:       avatar,
		IsAdmin:      in.IsAdmin,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.store.Users().Insert(ctx, &u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return model.User{}, &ConflictError{Entity: "user", Field: "username", Value: in.Username,
				Message: "user with this username or email already exists"}
		}
		return model.User{}, storeError("insert user", err)
	}

	s.logger.Info("user created", "user_id", u.ID, "username", u.Username, "admin", u.IsAdmin)
	return u, nil
}

// SeedDefaults creates the admin account, default categories and default tags
// when they are missing. It is safe to run on every start.
func (s *UserService) SeedDefaults(ctx context.Context, opts SeedOptions) error {
	if opts.AdminPassword != "" {
		_, err := s.store.Users().GetByUsername(ctx, opts.AdminUsername)
		switch {
		case errors.Is(err, store.ErrNotFound):
			if _, err := s.CreateUser(ctx, UserInput{
				Username: opts.AdminUsername,
				Email:    opts.AdminEmail,
				Password: opts.AdminPassword,
				IsAdmin:  true,
			}); err != nil {
				return err
			}
		case err != nil:
			return storeError("get user", err)
		}
	} else {
		s.logger.Warn("admin password not set, skipping admin user seed")
	}

	n, err := s.store.Categories().Count(ctx)
	if err != nil {
		return storeError("count categories", err)
	}
	if n == 0 {
		now := s.now().UTC()
		for _, c := range DefaultCategories {
			c.CreatedAt, c.UpdatedAt = now, now
			if err := s.store.Categories().Insert(ctx, c); err != nil && !errors.Is(err, store.ErrDuplicate) {
				return storeError("insert category", err)
			}
		}
		s.logger.Info("default categories seeded", "count", len(DefaultCategories))
	}

	for _, tag := range DefaultTags {
		if err := s.store.Tags().Ensure(ctx, tag); err != nil {
			return storeError("ensure tag", err)
		}
	}
	return nil
}
