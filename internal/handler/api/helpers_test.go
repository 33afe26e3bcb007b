// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/olegiv/techblog/internal/middleware"
	"github.com/olegiv/techblog/internal/service"
	"github.com/olegiv/techblog/internal/session"
	"github.com/olegiv/techblog/internal/store/sqlite"
	"github.com/olegiv/techblog/internal/testutil"
)

const (
	adminPassword  = "correct-horse-battery"
	readerPassword = "reader-password-1"
)

type testServer struct {
	t      *testing.T
	store  *sqlite.Store
	server *httptest.Server
}

// newTestServer starts the full router over a fresh SQLite store holding two
// categories, an admin and a reader.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()

	s := testutil.TestStore(t)
	logger := testutil.TestLoggerSilent()
	testutil.SeedCategory(t, s, "ai-llm-rag", "AI")
	testutil.SeedCategory(t, s, "java", "Java")

	users := service.NewUserService(s, logger)
	_, err := users.CreateUser(ctx, service.UserInput{
		Username: "admin", Email: "admin@example.com", Password: adminPassword, IsAdmin: true,
	})
	require.NoError(t, err)
	_, err = users.CreateUser(ctx, service.UserInput{
		Username: "reader", Email: "reader@example.com", Password: readerPassword,
	})
	require.NoError(t, err)

	lp := middleware.NewLoginProtection(middleware.LoginProtectionConfig{
		IPRateLimit:       100,
		IPBurst:           100,
		MaxFailedAttempts: 3,
		LockoutDuration:   15 * time.Minute,
		AttemptWindow:     15 * time.Minute,
	})
	t.Cleanup(lp.Stop)

	handler := NewRouter(RouterConfig{
		Store:              s,
		Sessions:           session.New(nil, true),
		Logger:             logger,
		IsDevelopment:      true,
		CSRFKey:            []byte("12345678901234567890123456789012"),
		CORSAllowedOrigins: []string{"*"},
		LoginProtection:    lp,
	})

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return &testServer{t: t, store: s, server: srv}
}

// client returns an anonymous client with its own cookie jar.
func (ts *testServer) client() *http.Client {
	ts.t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(ts.t, err)
	return &http.Client{Jar: jar}
}

// do sends a request with an optional JSON body and returns the status and body.
func (ts *testServer) do(c *http.Client, method, path string, body any) (int, []byte) {
	ts.t.Helper()

	var reader io.Reader
	if body != nil {
		if raw, ok := body.(string); ok {
			reader = bytes.NewBufferString(raw)
		} else {
			b, err := json.Marshal(body)
			require.NoError(ts.t, err)
			reader = bytes.NewReader(b)
		}
	}

	req, err := http.NewRequest(method, ts.server.URL+path, reader)
	require.NoError(ts.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.Do(req)
	require.NoError(ts.t, err)
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	require.NoError(ts.t, err)
	return resp.StatusCode, data
}

// login signs in and returns a client carrying the session cookie.
func (ts *testServer) login(username, password string) *http.Client {
	ts.t.Helper()
	c := ts.client()
	status, body := ts.do(c, http.MethodPost, "/api/auth/login",
		LoginRequest{Username: username, Password: password})
	require.Equal(ts.t, http.StatusOK, status, string(body))
	return c
}

func (ts *testServer) admin() *http.Client {
	return ts.login("admin", adminPassword)
}

// unmarshalData decodes a JSON response body into T.
func unmarshalData[T any](t *testing.T, body []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(body, &v), string(body))
	return v
}

func errorCode(t *testing.T, body []byte) string {
	t.Helper()
	return unmarshalData[ErrorResponse](t, body).Error.Code
}

func postBody(title, slug string) map[string]any {
	body := map[string]any{
		"title":    title,
		"excerpt":  "A short excerpt about " + title,
		"content":  "Body of " + title,
		"author":   "Jane Doe",
		"image":    "/img/post.png",
		"category": "ai-llm-rag",
		"tags":     []string{"AI", "go"},
	}
	if slug != "" {
		body["slug"] = slug
	}
	return body
}
