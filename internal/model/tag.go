// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Tag is a lowercase label with the number of posts that carry it.
type Tag struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}
