// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package markup renders post content to HTML that is safe to embed.
package markup

import (
	"bytes"
	"fmt"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// sanitizer provides a reusable HTML sanitization policy for rendered content.
// It uses bluemonday's UGCPolicy which allows safe HTML tags for user-generated content
// while stripping scripts, event handlers and other dangerous markup.
var sanitizer = bluemonday.UGCPolicy()

// Single newlines become <br> so plain-text posts keep their line breaks.
var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

// Render converts Markdown content to sanitized HTML.
func Render(content string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(content), &buf); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return sanitizer.Sanitize(buf.String()), nil
}
