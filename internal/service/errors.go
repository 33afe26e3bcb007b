// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/mdobak/go-xerrors"

	"github.com/olegiv/techblog/internal/model"
	"github.com/olegiv/techblog/internal/store"
)

// ValidationError reports invalid or missing input fields. Fields maps a field
// name to a human-readable message.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+" "+e.Fields[name])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func newValidationError(fields map[string]string) *ValidationError {
	return &ValidationError{Fields: fields}
}

func fieldError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// ConflictError reports a write that clashes with existing data, such as a
// duplicate slug.
type ConflictError struct {
	Entity  string
	Field   string
	Value   string
	Message string
}

func (e *ConflictError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s with this %s already exists", e.Entity, e.Field)
}

// NotFoundError reports a missing document.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return e.Entity + " not found"
}

// AuthorizationError reports a caller without the required rights, or failed
// credentials.
type AuthorizationError struct {
	Reason string
}

func (e *AuthorizationError) Error() string {
	if e.Reason == "" {
		return "unauthorized"
	}
	return "unauthorized: " + e.Reason
}

// StoreError wraps a backend failure. Err carries the stack where it was raised;
// print it with xerrors.Sprint.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return "store: " + e.Op + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func storeError(op string, err error) error {
	return &StoreError{Op: op, Err: xerrors.New(err)}
}

// lookupError converts a repository error on a single-document read.
func lookupError(entity, id, op string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return &NotFoundError{Entity: entity, ID: id}
	}
	return storeError(op, err)
}

func requireAdmin(actor *model.User) error {
	if actor == nil {
		return &AuthorizationError{Reason: "sign in required"}
	}
	if !actor.IsAdmin {
		return &AuthorizationError{Reason: "admin rights required"}
	}
	return nil
}
