// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package validator collects per-field validation messages.
package validator

import (
	"regexp"
	"strings"
)

// Validator accumulates field errors. Only the first message per field is kept.
type Validator struct {
	Errors map[string]string
}

// New returns an empty validator.
func New() *Validator {
	return &Validator{Errors: make(map[string]string)}
}

func (v *Validator) IsValid() bool {
	return len(v.Errors) == 0
}

func (v *Validator) AddError(field, message string) {
	if _, exists := v.Errors[field]; !exists {
		v.Errors[field] = message
	}
}

// Check records message for field when ok is false.
func (v *Validator) Check(ok bool, field, message string) {
	if !ok {
		v.AddError(field, message)
	}
}

// Required records a "is required" error when value is blank.
func (v *Validator) Required(value, field string) {
	v.Check(NotBlank(value), field, "is required")
}

// NotBlank reports whether s has any non-whitespace content.
func NotBlank(s string) bool {
	return strings.TrimSpace(s) != ""
}

func Matches(value string, rx *regexp.Regexp) bool {
	return rx.MatchString(value)
}

// Fields returns the names of the invalid fields.
func (v *Validator) Fields() []string {
	fields := make([]string, 0, len(v.Errors))
	for f := range v.Errors {
		fields = append(fields, f)
	}
	return fields
}
