// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session configures cookie sessions and the values the API keeps in them.
package session

import (
	"context"
	"database/sql"
	"net/http"
	"slices"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
)

// Session keys.
const (
	KeyUserID     = "user_id"
	keyLikedPosts = "liked_posts"
)

// maxLikedPosts caps the liked-post list kept per session.
const maxLikedPosts = 500

// New creates a session manager. Sessions live in the SQLite database when db is
// set and in process memory otherwise (the MongoDB deployment).
func New(db *sql.DB, isDev bool) *scs.SessionManager {
	sm := scs.New()

	if db != nil {
		sm.Store = sqlite3store.New(db)
	} else {
		sm.Store = memstore.New()
	}

	sm.Lifetime = 24 * time.Hour
	sm.Cookie.Path = "/"
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = !isDev
	if !isDev {
		sm.Cookie.Name = "__Host-session"
	}

	return sm
}

// StopCleanup stops the store's expired-session sweeper. Call it once, before
// the database behind a SQLite-backed manager is closed.
func StopCleanup(sm *scs.SessionManager) {
	if st, ok := sm.Store.(interface{ StopCleanup() }); ok {
		st.StopCleanup()
	}
}

// UserID returns the signed-in user's id, or "" for anonymous sessions.
func UserID(sm *scs.SessionManager, ctx context.Context) string {
	return sm.GetString(ctx, KeyUserID)
}

// Login binds the session to a user and rotates the token.
func Login(sm *scs.SessionManager, ctx context.Context, userID string) error {
	if err := sm.RenewToken(ctx); err != nil {
		return err
	}
	sm.Put(ctx, KeyUserID, userID)
	return nil
}

// Logout destroys the session.
func Logout(sm *scs.SessionManager, ctx context.Context) error {
	return sm.Destroy(ctx)
}

func likedPosts(sm *scs.SessionManager, ctx context.Context) []string {
	ids, _ := sm.Get(ctx, keyLikedPosts).([]string)
	return ids
}

// HasLiked reports whether this session has liked the post.
func HasLiked(sm *scs.SessionManager, ctx context.Context, postID string) bool {
	return slices.Contains(likedPosts(sm, ctx), postID)
}

// SetLiked records or clears this session's like of the post.
func SetLiked(sm *scs.SessionManager, ctx context.Context, postID string, liked bool) {
	ids := likedPosts(sm, ctx)
	i := slices.Index(ids, postID)

	switch {
	case liked && i < 0:
		ids = append(slices.Clone(ids), postID)
		if len(ids) > maxLikedPosts {
			ids = ids[len(ids)-maxLikedPosts:]
		}
	case !liked && i >= 0:
		ids = slices.Delete(slices.Clone(ids), i, i+1)
	default:
		return
	}
	sm.Put(ctx, keyLikedPosts, ids)
}
