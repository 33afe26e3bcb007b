// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/techblog/internal/markup"
	"github.com/olegiv/techblog/internal/middleware"
	"github.com/olegiv/techblog/internal/model"
	"github.com/olegiv/techblog/internal/service"
	"github.com/olegiv/techblog/internal/session"
	"github.com/olegiv/techblog/internal/util"
)

// PostDetail is a post with its rendered body, returned by the slug lookup.
type PostDetail struct {
	model.Post
	ContentHTML string `json:"contentHtml"`
}

// ViewsResponse carries a post's view count.
type ViewsResponse struct {
	Views int `json:"views"`
}

// LikesResponse carries a post's like count and whether this session likes it.
type LikesResponse struct {
	Likes int  `json:"likes"`
	Liked bool `json:"liked"`
}

// ListPosts handles GET /api/posts.
// With ?slug= it returns a single post and counts the view.
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if slug := q.Get("slug"); slug != "" {
		h.getPostBySlug(w, r, slug)
		return
	}

	sort, err := service.ParseSort(q.Get("sortBy"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	posts, err := h.posts.List(r.Context(), model.PostFilter{
		Category: q.Get("category"),
		Search:   q.Get("search"),
	}, sort)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, posts)
}

func (h *Handler) getPostBySlug(w http.ResponseWriter, r *http.Request, slug string) {
	post, err := h.posts.RecordView(r.Context(), slug)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	html, err := markup.Render(post.Content)
	if err != nil {
		h.logger.WarnContext(r.Context(), "failed to render post content", "post_id", post.ID, "error", err)
	}

	WriteJSON(w, http.StatusOK, PostDetail{Post: post, ContentHTML: html})
}

// GetPost handles GET /api/posts/{id}. No view is counted.
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, post)
}

// CreatePost handles POST /api/posts. A missing slug is derived from the title.
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var in service.PostInput
	if !decodeOrReject(w, r, &in) {
		return
	}

	if in.Slug == "" && in.Title != "" {
		in.Slug = util.Slugify(in.Title)
	}

	post, err := h.content.CreatePost(r.Context(), middleware.GetUser(r), in)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, post)
}

// UpdatePost handles PUT /api/posts/{id}. Only fields present in the body change.
func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	var patch model.PostPatch
	if !decodeOrReject(w, r, &patch) {
		return
	}

	post, err := h.content.UpdatePost(r.Context(), middleware.GetUser(r), chi.URLParam(r, "id"), patch)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, post)
}

// DeletePost handles DELETE /api/posts/{id}.
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	if err := h.content.DeletePost(r.Context(), middleware.GetUser(r), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, MessageResponse{Message: "Post deleted successfully"})
}

// IncrementViews handles POST /api/posts/{id}/views.
func (h *Handler) IncrementViews(w http.ResponseWriter, r *http.Request) {
	views, err := h.posts.IncrementViews(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, ViewsResponse{Views: views})
}

// LikePost handles POST /api/posts/{id}/like.
func (h *Handler) LikePost(w http.ResponseWriter, r *http.Request) {
	h.toggleLike(w, r, model.Like)
}

// UnlikePost handles DELETE /api/posts/{id}/like.
func (h *Handler) UnlikePost(w http.ResponseWriter, r *http.Request) {
	h.toggleLike(w, r, model.Unlike)
}

// toggleLike applies a like at most once per session. A repeated like, or an
// unlike without a prior like, reports the current count unchanged.
func (h *Handler) toggleLike(w http.ResponseWriter, r *http.Request, direction model.LikeDirection) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	want := direction == model.Like

	if session.HasLiked(h.sessions, ctx, id) == want {
		likes, err := h.posts.Likes(ctx, id)
		if err != nil {
			h.writeServiceError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, LikesResponse{Likes: likes, Liked: want})
		return
	}

	likes, err := h.posts.ToggleLike(ctx, id, direction)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	session.SetLiked(h.sessions, ctx, id, want)

	WriteJSON(w, http.StatusOK, LikesResponse{Likes: likes, Liked: want})
}
