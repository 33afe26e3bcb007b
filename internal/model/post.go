// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the blog's domain types: posts, categories, users and tags,
// together with the typed partial updates and listing options that operate on them.
package model

import (
	"strings"
	"time"
)

// Post is a published blog article.
type Post struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Excerpt     string    `json:"excerpt"`
	Content     string    `json:"content"`
	Author      string    `json:"author"`
	PublishedAt time.Time `json:"publishedAt"`
	Image       string    `json:"image"`
	Category    string    `json:"category"`
	Tags        []string  `json:"tags"`
	Views       int       `json:"views"`
	Likes       int       `json:"likes"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// PostPatch is a partial update of a post. A nil field is left untouched.
type PostPatch struct {
	Title       *string    `json:"title,omitempty"`
	Slug        *string    `json:"slug,omitempty"`
	Excerpt     *string    `json:"excerpt,omitempty"`
	Content     *string    `json:"content,omitempty"`
	Author      *string    `json:"author,omitempty"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	Image       *string    `json:"image,omitempty"`
	Category    *string    `json:"category,omitempty"`
	Tags        *[]string  `json:"tags,omitempty"`
	Views       *int       `json:"views,omitempty"`
	Likes       *int       `json:"likes,omitempty"`
}

// IsEmpty reports whether the patch touches no field.
func (p PostPatch) IsEmpty() bool {
	return p.Title == nil && p.Slug == nil && p.Excerpt == nil && p.Content == nil &&
		p.Author == nil && p.PublishedAt == nil && p.Image == nil && p.Category == nil &&
		p.Tags == nil && p.Views == nil && p.Likes == nil
}

// Apply copies every present field of the patch onto post.
func (p PostPatch) Apply(post *Post) {
	if p.Title != nil {
		post.Title = *p.Title
	}
	if p.Slug != nil {
		post.Slug = *p.Slug
	}
	if p.Excerpt != nil {
		post.Excerpt = *p.Excerpt
	}
	if p.Content != nil {
		post.Content = *p.Content
	}
	if p.Author != nil {
		post.Author = *p.Author
	}
	if p.PublishedAt != nil {
		post.PublishedAt = p.PublishedAt.UTC()
	}
	if p.Image != nil {
		post.Image = *p.Image
	}
	if p.Category != nil {
		post.Category = *p.Category
	}
	if p.Tags != nil {
		post.Tags = append([]string{}, (*p.Tags)...)
	}
	if p.Views != nil {
		post.Views = *p.Views
	}
	if p.Likes != nil {
		post.Likes = *p.Likes
	}
}

// PostFilter narrows a post listing. Zero values mean "no constraint".
type PostFilter struct {
	Category string
	Search   string
}

// SearchTerm returns the trimmed search term.
func (f PostFilter) SearchTerm() string {
	return strings.TrimSpace(f.Search)
}

// PostSort selects the listing order.
type PostSort string

// Listing orders.
const (
	SortLatest  PostSort = "latest"
	SortPopular PostSort = "popular"
)

// ParsePostSort maps a query value onto a PostSort. The empty string selects SortLatest.
func ParsePostSort(s string) (PostSort, bool) {
	switch PostSort(strings.TrimSpace(s)) {
	case "", SortLatest:
		return SortLatest, true
	case SortPopular:
		return SortPopular, true
	default:
		return "", false
	}
}

// LikeDirection is the direction of a like toggle.
type LikeDirection string

// Like directions.
const (
	Like   LikeDirection = "like"
	Unlike LikeDirection = "unlike"
)

// Delta returns the counter change for the direction.
func (d LikeDirection) Delta() int {
	if d == Unlike {
		return -1
	}
	return 1
}

// Valid reports whether d is a known direction.
func (d LikeDirection) Valid() bool {
	return d == Like || d == Unlike
}

// NormalizeTags trims and lowercases tags, dropping empty entries and duplicates.
// The first occurrence of each tag keeps its position.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// DiffTags returns the tags present only in next (added) and only in prev (removed).
func DiffTags(prev, next []string) (added, removed []string) {
	inPrev := make(map[string]bool, len(prev))
	for _, t := range prev {
		inPrev[t] = true
	}
	inNext := make(map[string]bool, len(next))
	for _, t := range next {
		inNext[t] = true
		if !inPrev[t] {
			added = append(added, t)
		}
	}
	for _, t := range prev {
		if !inNext[t] {
			removed = append(removed, t)
		}
	}
	return added, removed
}
