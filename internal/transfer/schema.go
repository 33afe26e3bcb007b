// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package transfer dumps the blog's collections to JSON and restores them.
package transfer

import (
	"time"

	"github.com/olegiv/techblog/internal/model"
)

// ExportVersion is the current version of the export format.
const ExportVersion = "1.0"

// ExportData represents the complete export structure.
type ExportData struct {
	Version    string           `json:"version"`
	ExportedAt time.Time        `json:"exported_at"`
	Categories []model.Category `json:"categories"`
	Users      []ExportUser     `json:"users,omitempty"`
	Posts      []model.Post     `json:"posts"`
	Tags       []model.Tag      `json:"tags"`
}

// ExportUser represents a user for export (no passwords).
type ExportUser struct {
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Avatar    string    `json:"avatar,omitempty"`
	IsAdmin   bool      `json:"isAdmin"`
	CreatedAt time.Time `json:"createdAt"`
}

// ExportOptions configures what to include in the export.
type ExportOptions struct {
	IncludeUsers bool `json:"include_users"`
}

// DefaultExportOptions returns options that include everything.
func DefaultExportOptions() ExportOptions {
	return ExportOptions{IncludeUsers: true}
}

// ConflictStrategy decides what happens to a document that already exists.
type ConflictStrategy string

// Conflict strategies.
const (
	ConflictSkip      ConflictStrategy = "skip"
	ConflictOverwrite ConflictStrategy = "overwrite"
)

// ImportOptions configures an import run.
type ImportOptions struct {
	DryRun           bool             `json:"dry_run"`
	ConflictStrategy ConflictStrategy `json:"conflict_strategy"`
	ImportUsers      bool             `json:"import_users"`
}

// DefaultImportOptions skips existing documents and imports users.
func DefaultImportOptions() ImportOptions {
	return ImportOptions{ConflictStrategy: ConflictSkip, ImportUsers: true}
}

// ImportError describes a document that could not be imported.
type ImportError struct {
	Entity  string `json:"entity"`
	ID      string `json:"id"`
	Message string `json:"message"`
}

// ImportResult summarizes an import run. Counts are keyed by collection name.
type ImportResult struct {
	DryRun  bool           `json:"dry_run"`
	Created map[string]int `json:"created"`
	Updated map[string]int `json:"updated"`
	Skipped map[string]int `json:"skipped"`
	Errors  []ImportError  `json:"errors,omitempty"`
}

// NewImportResult creates an empty result.
func NewImportResult(dryRun bool) *ImportResult {
	return &ImportResult{
		DryRun:  dryRun,
		Created: make(map[string]int),
		Updated: make(map[string]int),
		Skipped: make(map[string]int),
	}
}

// AddError records a failed document.
func (r *ImportResult) AddError(entity, id, message string) {
	r.Errors = append(r.Errors, ImportError{Entity: entity, ID: id, Message: message})
}

// Success reports whether the import finished without document errors.
func (r *ImportResult) Success() bool {
	return len(r.Errors) == 0
}

// TotalCreated returns the number of created documents across collections.
func (r *ImportResult) TotalCreated() int {
	return sum(r.Created)
}

// TotalUpdated returns the number of overwritten documents across collections.
func (r *ImportResult) TotalUpdated() int {
	return sum(r.Updated)
}

// TotalSkipped returns the number of skipped documents across collections.
func (r *ImportResult) TotalSkipped() int {
	return sum(r.Skipped)
}

func sum(m map[string]int) int {
	n := 0
	for _, v := range m {
		n += v
	}
	return n
}
