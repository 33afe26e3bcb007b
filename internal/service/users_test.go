// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/olegiv/techblog/internal/auth"
	"github.com/olegiv/techblog/internal/model"
	"github.com/olegiv/techblog/internal/testutil"
)

func TestUserService_CreateAndAuthenticate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.users.CreateUser(ctx, UserInput{
		Username: " alice ",
		Email:    "Alice@Example.com",
		Password: "correct-horse",
		IsAdmin:  true,
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Equal(t, model.DefaultAvatar, u.Avatar)
	assert.NotEqual(t, "correct-horse", u.PasswordHash)

	got, err := f.users.Authenticate(ctx, "alice", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.True(t, got.IsAdmin)
}

func TestUserService_AuthenticateFailuresLookAlike(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.users.CreateUser(ctx, UserInput{Username: "alice", Email: "a@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	_, errWrong := f.users.Authenticate(ctx, "alice", "wrong-password")
	_, errUnknown := f.users.Authenticate(ctx, "bob", "correct-horse")

	var a, b *AuthorizationError
	require.ErrorAs(t, errWrong, &a)
	require.ErrorAs(t, errUnknown, &b)
	assert.Equal(t, a.Error(), b.Error())
}

func TestUserService_LegacyBcryptIsRehashed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	legacy, err := bcrypt.GenerateFromPassword([]byte("old-secret"), bcrypt.MinCost)
	require.NoError(t, err)

	u := model.User{
		Username:     "legacy",
		Email:        "legacy@example.com",
		PasswordHash: string(legacy),
		Avatar:       model.DefaultAvatar,
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, f.store.Users().Insert(ctx, &u))

	_, err = f.users.Authenticate(ctx, "legacy", "old-secret")
	require.NoError(t, err)

	stored, err := f.store.Users().GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, auth.IsBcryptHash(stored.PasswordHash))
	assert.False(t, auth.NeedsRehash(stored.PasswordHash))

	_, err = f.users.Authenticate(ctx, "legacy", "old-secret")
	assert.NoError(t, err, "rehashed password must still verify")
}

func TestUserService_CreateUserValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.users.CreateUser(ctx, UserInput{Username: "alice", Email: "a@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	tests := []struct {
		name      string
		in        UserInput
		wantField string
		conflict  bool
	}{
		{"missing username", UserInput{Email: "x@example.com", Password: "password1"}, "username", false},
		{"bad email", UserInput{Username: "x", Email: "not-an-email", Password: "password1"}, "email", false},
		{"short password", UserInput{Username: "x", Email: "x@example.com", Password: "short"}, "password", false},
		{"duplicate username", UserInput{Username: "alice", Email: "x@example.com", Password: "password1"}, "username", true},
		{"duplicate email", UserInput{Username: "x", Email: "A@example.com", Password: "password1"}, "email", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.users.CreateUser(ctx, tt.in)
			if tt.conflict {
				var c *ConflictError
				require.ErrorAs(t, err, &c)
				assert.Equal(t, tt.wantField, c.Field)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tt.wantField)
		})
	}
}

func TestUserService_SeedDefaultsIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	opts := SeedOptions{AdminUsername: "admin", AdminEmail: "admin@example.com", AdminPassword: "admin-password"}

	require.NoError(t, f.users.SeedDefaults(ctx, opts))
	require.NoError(t, f.users.SeedDefaults(ctx, opts))

	admin, err := f.users.Authenticate(ctx, "admin", "admin-password")
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin)

	users, err := f.store.Users().List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)

	// The fixture already has categories, so defaults are not added.
	categories, err := f.categories.List(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, 2)

	tags, err := f.content.ListTags(ctx)
	require.NoError(t, err)
	var names []string
	for _, tag := range tags {
		names = append(names, tag.Name)
		assert.Equal(t, 0, tag.Count)
	}
	assert.ElementsMatch(t, DefaultTags, names)
}

func TestUserService_SeedDefaultsOnEmptyStore(t *testing.T) {
	s := testutil.TestStore(t)
	users := NewUserService(s, testutil.TestLogger())
	ctx := context.Background()

	require.NoError(t, users.SeedDefaults(ctx, SeedOptions{AdminUsername: "admin", AdminEmail: "admin@example.com"}))

	n, err := s.Categories().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(DefaultCategories), n)

	_, err = s.Users().GetByUsername(ctx, "admin")
	assert.Error(t, err, "no admin without a password")
}
