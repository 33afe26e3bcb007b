// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api provides the JSON HTTP handlers for the blog and its router.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/alexedwards/scs/v2"
	"github.com/mdobak/go-xerrors"

	"github.com/olegiv/techblog/internal/middleware"
	"github.com/olegiv/techblog/internal/service"
	"github.com/olegiv/techblog/internal/store"
)

// maxBodyBytes limits JSON request bodies.
const maxBodyBytes = 1 << 20

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	store      store.Store
	posts      *service.PostService
	content    *service.ContentService
	categories *service.CategoryService
	users      *service.UserService
	sessions   *scs.SessionManager
	login      *middleware.LoginProtection
	logger     *slog.Logger
}

// NewHandler creates a new API handler over the given store. lp may be nil,
// which disables account lockout.
func NewHandler(s store.Store, sm *scs.SessionManager, lp *middleware.LoginProtection, logger *slog.Logger) *Handler {
	return &Handler{
		store:      s,
		posts:      service.NewPostService(s, logger),
		content:    service.NewContentService(s, logger),
		categories: service.NewCategoryService(s, logger),
		users:      service.NewUserService(s, logger),
		sessions:   sm,
		login:      lp,
		logger:     logger,
	}
}

// ErrorResponse is the standard API error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// MessageResponse carries a human-readable confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteError writes an error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, code, message string, details map[string]string) {
	WriteJSON(w, statusCode, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// WriteBadRequest writes a 400 response for a request that could not be decoded.
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, "bad_request", message, nil)
}

// WriteUnauthorized writes a 401 Unauthorized response.
func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, "unauthorized", message, nil)
}

// WriteInternalError writes a 500 Internal Server Error response.
func WriteInternalError(w http.ResponseWriter) {
	WriteError(w, http.StatusInternalServerError, "internal_error", "Internal server error", nil)
}

// writeServiceError maps the service error taxonomy onto HTTP responses.
// Anything unrecognized is logged with its stack and reported as a 500.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr *service.ValidationError
		conflictErr   *service.ConflictError
		notFoundErr   *service.NotFoundError
		authErr       *service.AuthorizationError
	)

	switch {
	case errors.As(err, &validationErr):
		WriteError(w, http.StatusBadRequest, "validation_error", "Validation failed", validationErr.Fields)
	case errors.As(err, &conflictErr):
		var details map[string]string
		if conflictErr.Field != "" {
			details = map[string]string{conflictErr.Field: conflictErr.Error()}
		}
		WriteError(w, http.StatusBadRequest, "conflict", conflictErr.Error(), details)
	case errors.As(err, &notFoundErr):
		WriteError(w, http.StatusNotFound, "not_found", capitalizeFirst(notFoundErr.Error()), nil)
	case errors.As(err, &authErr):
		WriteUnauthorized(w, "Unauthorized")
	default:
		h.logger.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"error", err.Error(),
			"stack", xerrors.Sprint(err),
		)
		WriteInternalError(w)
	}
}

// readJSON decodes a single JSON value from the request body into dst.
func readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var (
			syntaxError        *json.SyntaxError
			unmarshalTypeError *json.UnmarshalTypeError
			maxBytesError      *http.MaxBytesError
		)

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case errors.As(err, &maxBytesError):
			return fmt.Errorf("body must not be larger than %d bytes", maxBodyBytes)
		default:
			return fmt.Errorf("decoding JSON: %w", err)
		}
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("body must contain only a single JSON value")
	}
	return nil
}

// decodeOrReject reads the body into dst and writes a 400 on failure.
func decodeOrReject(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := readJSON(w, r, dst); err != nil {
		WriteBadRequest(w, err.Error())
		return false
	}
	return true
}

func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
