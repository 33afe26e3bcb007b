// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package markup

import (
	"strings"
	"testing"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		contains    []string
		notContains []string
	}{
		{
			name:     "line breaks become br",
			content:  "first line\nsecond line",
			contains: []string{"first line<br", "second line"},
		},
		{
			name:     "paragraphs",
			content:  "one\n\ntwo",
			contains: []string{"<p>one</p>", "<p>two</p>"},
		},
		{
			name:     "markdown emphasis",
			content:  "**bold** and _italic_",
			contains: []string{"<strong>bold</strong>", "<em>italic</em>"},
		},
		{
			name:        "script removed",
			content:     "hello <script>alert(1)</script>",
			contains:    []string{"hello"},
			notContains: []string{"<script"},
		},
		{
			name:        "javascript url removed",
			content:     `[click](javascript:alert(1))`,
			notContains: []string{"javascript:"},
		},
		{
			name:     "links kept",
			content:  "[docs](https://example.com/docs)",
			contains: []string{`href="https://example.com/docs"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Render(tt.content)
			if err != nil {
				t.Fatalf("Render() error: %v", err)
			}
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("Render(%q) = %q, want it to contain %q", tt.content, got, want)
				}
			}
			for _, unwanted := range tt.notContains {
				if strings.Contains(got, unwanted) {
					t.Errorf("Render(%q) = %q, must not contain %q", tt.content, got, unwanted)
				}
			}
		})
	}
}
