// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/techblog/internal/model"
	"github.com/olegiv/techblog/internal/testutil"
)

func (f *fixture) createAt(t *testing.T, title, slug, category string, published time.Time, views int) model.Post {
	t.Helper()

	in := validInput(title, slug)
	in.Category = category
	in.PublishedAt = &published
	p := f.create(t, in)

	if views > 0 {
		_, err := f.content.UpdatePost(context.Background(), testutil.Admin(), p.ID, model.PostPatch{Views: &views})
		require.NoError(t, err)
		p.Views = views
	}
	return p
}

func titles(posts []model.Post) []string {
	out := make([]string, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.Title)
	}
	return out
}

func TestParseSort(t *testing.T) {
	tests := []struct {
		input   string
		want    model.PostSort
		wantErr bool
	}{
		{"", model.SortLatest, false},
		{"latest", model.SortLatest, false},
		{"popular", model.SortPopular, false},
		{"oldest", "", true},
		{"POPULAR", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSort(tt.input)
			if tt.wantErr {
				var verr *ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Contains(t, verr.Fields, "sortBy")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestList_CategoryLatest(t *testing.T) {
	f := newFixture(t)
	day := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	f.createAt(t, "Old AI", "old-ai", "ai-llm-rag", day, 0)
	f.createAt(t, "Java News", "java-news", "java", day.AddDate(0, 0, 5), 0)
	f.createAt(t, "New AI", "new-ai", "ai-llm-rag", day.AddDate(0, 0, 3), 0)
	f.createAt(t, "Mid AI", "mid-ai", "ai-llm-rag", day.AddDate(0, 0, 1), 0)

	posts, err := f.posts.List(context.Background(), model.PostFilter{Category: "ai-llm-rag"}, model.SortLatest)
	require.NoError(t, err)
	assert.Equal(t, []string{"New AI", "Mid AI", "Old AI"}, titles(posts))
}

func TestList_SearchPopular(t *testing.T) {
	f := newFixture(t)
	day := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	f.createAt(t, "The quick brown Fox", "quick-fox", "ai-llm-rag", day, 5)
	f.createAt(t, "Lazy dog", "lazy-dog", "java", day, 100)
	p := f.createAt(t, "Foxes everywhere", "foxes", "java", day, 50)
	other := f.createAt(t, "Unrelated", "unrelated", "java", day, 10)

	_, err := f.content.UpdatePost(context.Background(), testutil.Admin(), other.ID,
		model.PostPatch{Excerpt: ptr("A FOX hides in the excerpt")})
	require.NoError(t, err)

	posts, err := f.posts.List(context.Background(), model.PostFilter{Search: "fox"}, model.SortPopular)
	require.NoError(t, err)
	assert.Equal(t, []string{p.Title, "Unrelated", "The quick brown Fox"}, titles(posts))
}

func TestList_SearchIgnoresContent(t *testing.T) {
	f := newFixture(t)

	in := validInput("Plain title", "plain")
	in.Content = "the word zebra only lives in the body"
	f.create(t, in)

	posts, err := f.posts.List(context.Background(), model.PostFilter{Search: "zebra"}, model.SortLatest)
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestList_InvalidSort(t *testing.T) {
	f := newFixture(t)

	_, err := f.posts.List(context.Background(), model.PostFilter{}, "oldest")
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestIncrementViews_AddsExactlyN(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.create(t, validInput("Hello", "hello"))

	const n = 25
	var last int
	for range n {
		v, err := f.posts.IncrementViews(ctx, p.ID)
		require.NoError(t, err)
		last = v
	}
	assert.Equal(t, n, last)

	stored, err := f.posts.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, n, stored.Views)

	_, err = f.posts.IncrementViews(ctx, "missing")
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestRecordView(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.create(t, validInput("Hello", "hello"))

	p, err := f.posts.RecordView(ctx, "hello")
	require.NoError(t, err)
	assert.Equal(t, 1, p.Views)

	p, err = f.posts.RecordView(ctx, "hello")
	require.NoError(t, err)
	assert.Equal(t, 2, p.Views)

	_, err = f.posts.RecordView(ctx, "nope")
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "post", nf.Entity)
}

func TestToggleLike(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.create(t, validInput("Hello", "hello"))

	n, err := f.posts.ToggleLike(ctx, p.ID, model.Like)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = f.posts.ToggleLike(ctx, p.ID, model.Unlike)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = f.posts.ToggleLike(ctx, p.ID, model.Unlike)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "likes never go below zero")

	_, err = f.posts.ToggleLike(ctx, p.ID, "sideways")
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = f.posts.ToggleLike(ctx, "missing", model.Like)
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)

	likes, err := f.posts.Likes(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, likes)
}
