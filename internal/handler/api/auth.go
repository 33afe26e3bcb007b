// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/olegiv/techblog/internal/middleware"
	"github.com/olegiv/techblog/internal/model"
	"github.com/olegiv/techblog/internal/service"
	"github.com/olegiv/techblog/internal/session"
)

// LoginRequest represents the request body for signing in.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserResponse wraps the signed-in user.
type UserResponse struct {
	User model.User `json:"user"`
}

// Login handles POST /api/auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeOrReject(w, r, &req) {
		return
	}

	ctx := r.Context()
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		WriteError(w, http.StatusBadRequest, "validation_error", "Validation failed",
			map[string]string{"credentials": "username and password are required"})
		return
	}

	if h.login != nil {
		if locked, remaining := h.login.IsAccountLocked(username); locked {
			h.writeLocked(w, remaining)
			return
		}
	}

	user, err := h.users.Authenticate(ctx, username, req.Password)
	if err != nil {
		var authErr *service.AuthorizationError
		if !errors.As(err, &authErr) {
			h.writeServiceError(w, r, err)
			return
		}

		h.logger.WarnContext(ctx, "failed login attempt", "username", username)
		if h.login != nil {
			if locked, duration := h.login.RecordFailedAttempt(username); locked {
				h.writeLocked(w, duration)
				return
			}
		}
		WriteUnauthorized(w, "Invalid username or password")
		return
	}

	if h.login != nil {
		h.login.RecordSuccessfulLogin(username)
	}
	if err := session.Login(h.sessions, ctx, user.ID); err != nil {
		h.logger.ErrorContext(ctx, "failed to renew session token", "error", err)
		WriteInternalError(w)
		return
	}

	h.logger.InfoContext(ctx, "user logged in", "user_id", user.ID, "username", user.Username)
	WriteJSON(w, http.StatusOK, UserResponse{User: user})
}

func (h *Handler) writeLocked(w http.ResponseWriter, d time.Duration) {
	minutes := int(d.Round(time.Minute).Minutes())
	if minutes < 1 {
		minutes = 1
	}
	WriteError(w, http.StatusTooManyRequests, "rate_limited",
		fmt.Sprintf("Account temporarily locked. Try again in %d minute(s).", minutes), nil)
}

// Logout handles POST /api/auth/logout.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if user := middleware.GetUser(r); user != nil {
		h.logger.InfoContext(r.Context(), "user logged out", "user_id", user.ID)
	}
	if err := session.Logout(h.sessions, r.Context()); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to destroy session", "error", err)
		WriteInternalError(w)
		return
	}
	WriteJSON(w, http.StatusOK, MessageResponse{Message: "Logged out"})
}

// Me handles GET /api/auth/me. The route is wrapped in RequireUser.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, UserResponse{User: *middleware.GetUser(r)})
}
