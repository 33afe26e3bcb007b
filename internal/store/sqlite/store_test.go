// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package sqlite

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/techblog/internal/model"
	"github.com/olegiv/techblog/internal/store"
)

func testStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "techblog-test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

var baseTime = time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)

func insertPost(t *testing.T, s *Store, title, slug, category string, published time.Time, views int) model.Post {
	t.Helper()

	p := model.Post{
		Title:       title,
		Slug:        slug,
		Excerpt:     "Excerpt for " + title,
		Content:     "Content",
		Author:      "Jane",
		PublishedAt: published,
		Image:       "/img/" + slug + ".png",
		Category:    category,
		Tags:        []string{"go"},
		Views:       views,
		CreatedAt:   baseTime,
		UpdatedAt:   baseTime,
	}
	require.NoError(t, s.Posts().Insert(context.Background(), &p))
	require.NotEmpty(t, p.ID)
	return p
}

func slugs(posts []model.Post) []string {
	out := make([]string, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.Slug)
	}
	return out
}

func TestOpen_RunsMigrations(t *testing.T) {
	s := testStore(t)
	require.NoError(t, s.Ping(context.Background()))

	var n int
	err := s.DB().QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('posts','categories','users','tags','sessions')").Scan(&n)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestPosts_InsertAndGet(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	p := insertPost(t, s, "Hello World", "hello-world", "ai-llm-rag", baseTime, 0)

	got, err := s.Posts().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hello World", got.Title)
	assert.Equal(t, []string{"go"}, got.Tags)
	assert.True(t, got.PublishedAt.Equal(baseTime), "published_at round trip: %v", got.PublishedAt)

	got, err = s.Posts().GetBySlug(ctx, "hello-world")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	_, err = s.Posts().GetBySlug(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestPosts_InsertDuplicateSlug(t *testing.T) {
	s := testStore(t)
	insertPost(t, s, "One", "same", "c", baseTime, 0)

	p := model.Post{Title: "Two", Slug: "same", Category: "c", PublishedAt: baseTime, CreatedAt: baseTime, UpdatedAt: baseTime}
	err := s.Posts().Insert(context.Background(), &p)
	assert.ErrorIs(t, err, store.ErrDuplicate)
	assert.Empty(t, p.ID)
}

func TestPosts_ListFilterAndSort(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	insertPost(t, s, "Quick Fox", "quick-fox", "ai-llm-rag", baseTime.Add(1*time.Hour), 5)
	insertPost(t, s, "Slow Turtle", "slow-turtle", "ai-llm-rag", baseTime.Add(3*time.Hour), 50)
	insertPost(t, s, "The FOX returns", "fox-returns", "web", baseTime.Add(2*time.Hour), 20)
	insertPost(t, s, "Tie A", "tie-a", "web", baseTime, 20)

	posts, err := s.Posts().List(ctx, model.PostFilter{}, model.SortLatest)
	require.NoError(t, err)
	assert.Equal(t, []string{"slow-turtle", "fox-returns", "quick-fox", "tie-a"}, slugs(posts))

	posts, err = s.Posts().List(ctx, model.PostFilter{Category: "ai-llm-rag"}, model.SortLatest)
	require.NoError(t, err)
	assert.Equal(t, []string{"slow-turtle", "quick-fox"}, slugs(posts))

	posts, err = s.Posts().List(ctx, model.PostFilter{Search: "fox"}, model.SortPopular)
	require.NoError(t, err)
	assert.Equal(t, []string{"fox-returns", "quick-fox"}, slugs(posts))

	// equal view counts keep insertion order
	posts, err = s.Posts().List(ctx, model.PostFilter{Category: "web"}, model.SortPopular)
	require.NoError(t, err)
	assert.Equal(t, []string{"fox-returns", "tie-a"}, slugs(posts))

	posts, err = s.Posts().List(ctx, model.PostFilter{Search: "excerpt for slow"}, model.SortLatest)
	require.NoError(t, err)
	assert.Equal(t, []string{"slow-turtle"}, slugs(posts))

	posts, err = s.Posts().List(ctx, model.PostFilter{Search: "nothing"}, model.SortLatest)
	require.NoError(t, err)
	assert.NotNil(t, posts)
	assert.Empty(t, posts)

	_, err = s.Posts().List(ctx, model.PostFilter{}, model.PostSort("oldest"))
	assert.Error(t, err)
}

func TestPosts_SearchUnicodeCaseFold(t *testing.T) {
	s := testStore(t)
	insertPost(t, s, "ÜBER Caching", "uber-caching", "web", baseTime, 0)

	posts, err := s.Posts().List(context.Background(), model.PostFilter{Search: "über"}, model.SortLatest)
	require.NoError(t, err)
	assert.Equal(t, []string{"uber-caching"}, slugs(posts))
}

func TestPosts_SearchTreatsWildcardsLiterally(t *testing.T) {
	s := testStore(t)
	insertPost(t, s, "100% coverage", "full-coverage", "web", baseTime, 0)
	insertPost(t, s, "Other", "other", "web", baseTime, 0)

	posts, err := s.Posts().List(context.Background(), model.PostFilter{Search: "%"}, model.SortLatest)
	require.NoError(t, err)
	assert.Equal(t, []string{"full-coverage"}, slugs(posts))
}

func TestPosts_UpdateTouchesOnlyPresentFields(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	p := insertPost(t, s, "Hello World", "hello-world", "web", baseTime, 7)

	title := "Hello World 2"
	tags := []string{"ai", "llm"}
	later := baseTime.Add(time.Hour)
	got, err := s.Posts().Update(ctx, p.ID, model.PostPatch{Title: &title, Tags: &tags}, later)
	require.NoError(t, err)

	assert.Equal(t, "Hello World 2", got.Title)
	assert.Equal(t, "hello-world", got.Slug)
	assert.Equal(t, []string{"ai", "llm"}, got.Tags)
	assert.Equal(t, 7, got.Views)
	assert.True(t, got.UpdatedAt.Equal(later))
	assert.True(t, got.CreatedAt.Equal(baseTime))
}

func TestPosts_UpdateErrors(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	insertPost(t, s, "A", "a", "web", baseTime, 0)
	b := insertPost(t, s, "B", "b", "web", baseTime, 0)

	slug := "a"
	_, err := s.Posts().Update(ctx, b.ID, model.PostPatch{Slug: &slug}, baseTime)
	assert.ErrorIs(t, err, store.ErrDuplicate)

	_, err = s.Posts().Update(ctx, "missing", model.PostPatch{Slug: &slug}, baseTime)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestPosts_SlugExists(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	p := insertPost(t, s, "A", "a", "web", baseTime, 0)

	exists, err := s.Posts().SlugExists(ctx, "a")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = s.Posts().SlugExists(ctx, "A")
	require.NoError(t, err)
	assert.False(t, exists, "slug comparison is case-sensitive")

	exists, err = s.Posts().SlugExistsExcluding(ctx, "a", p.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	n, err := s.Posts().CountByCategory(ctx, "web")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestPosts_Delete(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	p := insertPost(t, s, "A", "a", "web", baseTime, 0)

	require.NoError(t, s.Posts().Delete(ctx, p.ID))
	assert.ErrorIs(t, s.Posts().Delete(ctx, p.ID), store.ErrNotFound)

	posts, err := s.Posts().List(ctx, model.PostFilter{}, model.SortLatest)
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestPosts_Counters(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	p := insertPost(t, s, "A", "a", "web", baseTime, 0)

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Posts().IncrementViews(ctx, p.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := s.Posts().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, n, got.Views)

	likes, err := s.Posts().AdjustLikes(ctx, p.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, likes)

	likes, err = s.Posts().AdjustLikes(ctx, p.ID, -1)
	require.NoError(t, err)
	assert.Equal(t, 0, likes)

	likes, err = s.Posts().AdjustLikes(ctx, p.ID, -1)
	require.NoError(t, err)
	assert.Equal(t, 0, likes, "likes never go below zero")

	_, err = s.Posts().IncrementViews(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCategories(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	repo := s.Categories()

	require.NoError(t, repo.Insert(ctx, model.Category{ID: "web", Name: "Web", CreatedAt: baseTime, UpdatedAt: baseTime}))
	require.NoError(t, repo.Insert(ctx, model.Category{ID: "ai-llm-rag", Name: "AI & LLM", CreatedAt: baseTime, UpdatedAt: baseTime}))
	assert.ErrorIs(t, repo.Insert(ctx, model.Category{ID: "web", Name: "Dup", CreatedAt: baseTime, UpdatedAt: baseTime}), store.ErrDuplicate)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "AI & LLM", list[0].Name)

	exists, err := repo.Exists(ctx, "web")
	require.NoError(t, err)
	assert.True(t, exists)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	desc := "Frontend and backend"
	c, err := repo.Update(ctx, "web", model.CategoryPatch{Description: &desc}, baseTime.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, "Web", c.Name)
	assert.Equal(t, desc, c.Description)

	_, err = repo.Update(ctx, "missing", model.CategoryPatch{Description: &desc}, baseTime)
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, repo.Delete(ctx, "web"))
	_, err = repo.Get(ctx, "web")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "web"), store.ErrNotFound)
}

func TestUsers(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	repo := s.Users()

	u := model.User{Username: "admin", Email: "admin@example.com", PasswordHash: "h", Avatar: model.DefaultAvatar, IsAdmin: true, CreatedAt: baseTime}
	require.NoError(t, repo.Insert(ctx, &u))
	require.NotEmpty(t, u.ID)

	dup := model.User{Username: "admin", Email: "other@example.com", PasswordHash: "h", CreatedAt: baseTime}
	assert.ErrorIs(t, repo.Insert(ctx, &dup), store.ErrDuplicate)

	got, err := repo.GetByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.True(t, got.IsAdmin)
	assert.Equal(t, u.ID, got.ID)

	got, err = repo.GetByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, "admin", got.Username)

	require.NoError(t, repo.UpdatePasswordHash(ctx, u.ID, "h2"))
	got, err = repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "h2", got.PasswordHash)

	assert.ErrorIs(t, repo.UpdatePasswordHash(ctx, "missing", "x"), store.ErrNotFound)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestTags(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	repo := s.Tags()

	require.NoError(t, repo.Ensure(ctx, "java"))
	require.NoError(t, repo.Adjust(ctx, "go", 2))
	require.NoError(t, repo.Adjust(ctx, "ai", 1))
	require.NoError(t, repo.Adjust(ctx, "ai", -5))
	require.NoError(t, repo.Ensure(ctx, "go"))

	tags, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.Tag{{Name: "go", Count: 2}, {Name: "ai", Count: 0}, {Name: "java", Count: 0}}, tags)

	require.NoError(t, repo.SetCounts(ctx, map[string]int{"java": 3, "rust": 1}))
	tags, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.Tag{{Name: "java", Count: 3}, {Name: "rust", Count: 1}, {Name: "ai", Count: 0}, {Name: "go", Count: 0}}, tags)
}
