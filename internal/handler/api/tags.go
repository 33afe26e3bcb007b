// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import "net/http"

// ListTags handles GET /api/tags.
func (h *Handler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.content.ListTags(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, tags)
}

// RecountTags handles POST /api/tags/recount. Admin only, enforced by the router.
func (h *Handler) RecountTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.content.RecountTags(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, tags)
}
