// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// testLoginProtection returns a protector suitable for fast testing.
func testLoginProtection(t *testing.T, maxAttempts int, lockoutDuration, attemptWindow time.Duration) *LoginProtection {
	t.Helper()
	lp := NewLoginProtection(LoginProtectionConfig{
		IPRateLimit:       10,  // High rate for testing
		IPBurst:           100, // High burst for testing
		MaxFailedAttempts: maxAttempts,
		LockoutDuration:   lockoutDuration,
		AttemptWindow:     attemptWindow,
	})
	t.Cleanup(lp.Stop)
	return lp
}

func TestNewLoginProtectionDefaultValues(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{})
	defer lp.Stop()

	if lp.maxFailedAttempts != 5 {
		t.Errorf("maxFailedAttempts = %d, want 5 (default)", lp.maxFailedAttempts)
	}
	if lp.lockoutDuration != 15*time.Minute {
		t.Errorf("lockoutDuration = %v, want 15m (default)", lp.lockoutDuration)
	}
	if lp.attemptWindow != 15*time.Minute {
		t.Errorf("attemptWindow = %v, want 15m (default)", lp.attemptWindow)
	}
}

func TestLoginProtectionLockout(t *testing.T) {
	lp := testLoginProtection(t, 3, 200*time.Millisecond, time.Minute)
	const user = "admin"

	if locked, _ := lp.IsAccountLocked(user); locked {
		t.Fatal("account should not be locked initially")
	}

	for i := 1; i <= 2; i++ {
		if locked, _ := lp.RecordFailedAttempt(user); locked {
			t.Fatalf("attempt %d should not lock the account", i)
		}
	}
	locked, duration := lp.RecordFailedAttempt(user)
	if !locked || duration <= 0 {
		t.Fatalf("third attempt should lock, got locked=%v duration=%v", locked, duration)
	}

	locked, remaining := lp.IsAccountLocked(user)
	if !locked || remaining <= 0 {
		t.Error("account should be locked with positive remaining time")
	}

	time.Sleep(duration + 50*time.Millisecond)
	if locked, _ := lp.IsAccountLocked(user); locked {
		t.Error("account should be unlocked after lockout expires")
	}
}

func TestLoginProtectionRecordSuccessfulLogin(t *testing.T) {
	lp := testLoginProtection(t, 3, time.Minute, time.Minute)

	lp.RecordFailedAttempt("admin")
	lp.RecordFailedAttempt("admin")
	lp.RecordSuccessfulLogin("admin")

	if got := lp.GetRemainingAttempts("admin"); got != 3 {
		t.Errorf("GetRemainingAttempts() = %d, want 3", got)
	}
}

func TestLoginProtectionGetRemainingAttempts(t *testing.T) {
	lp := testLoginProtection(t, 5, time.Minute, time.Minute)

	if got := lp.GetRemainingAttempts("admin"); got != 5 {
		t.Errorf("GetRemainingAttempts() = %d, want 5", got)
	}
	lp.RecordFailedAttempt("admin")
	if got := lp.GetRemainingAttempts("admin"); got != 4 {
		t.Errorf("GetRemainingAttempts() = %d, want 4", got)
	}
	lp.RecordFailedAttempt("admin")
	lp.RecordFailedAttempt("admin")
	if got := lp.GetRemainingAttempts("admin"); got != 2 {
		t.Errorf("GetRemainingAttempts() = %d, want 2", got)
	}
	if got := lp.GetRemainingAttempts("someone-else"); got != 5 {
		t.Errorf("other users must be unaffected, got %d", got)
	}
}

func TestLoginProtectionExponentialBackoff(t *testing.T) {
	lp := testLoginProtection(t, 2, 100*time.Millisecond, time.Minute)

	lp.RecordFailedAttempt("admin")
	_, first := lp.RecordFailedAttempt("admin")

	time.Sleep(first + 10*time.Millisecond)

	lp.RecordFailedAttempt("admin")
	_, second := lp.RecordFailedAttempt("admin")

	if second <= first {
		t.Errorf("second lockout (%v) should be longer than first (%v)", second, first)
	}
}

func TestLoginProtectionAttemptWindowReset(t *testing.T) {
	lp := testLoginProtection(t, 5, time.Minute, 100*time.Millisecond)

	lp.RecordFailedAttempt("admin")
	if got := lp.GetRemainingAttempts("admin"); got != 4 {
		t.Errorf("GetRemainingAttempts() = %d, want 4", got)
	}

	time.Sleep(150 * time.Millisecond)

	if got := lp.GetRemainingAttempts("admin"); got != 5 {
		t.Errorf("GetRemainingAttempts() after window = %d, want 5", got)
	}
}

func TestLoginProtectionCleanupStaleEntries(t *testing.T) {
	lp := testLoginProtection(t, 5, time.Millisecond, time.Millisecond)
	lp.RecordFailedAttempt("admin")

	time.Sleep(10 * time.Millisecond)
	lp.cleanupStaleEntries()

	lp.attemptsMu.RLock()
	n := len(lp.failedAttempts)
	lp.attemptsMu.RUnlock()
	if n != 0 {
		t.Errorf("stale entries = %d, want 0", n)
	}
}

func TestLoginProtectionMiddleware(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{IPRateLimit: 0.001, IPBurst: 2})
	defer lp.Stop()

	wrapped := lp.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func(method string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, "/api/auth/login", nil)
		req.RemoteAddr = "10.1.1.1:5000"
		rr := httptest.NewRecorder()
		wrapped.ServeHTTP(rr, req)
		return rr
	}

	for i := 0; i < 2; i++ {
		if rr := send(http.MethodPost); rr.Code != http.StatusOK {
			t.Fatalf("POST %d status = %d, want 200", i+1, rr.Code)
		}
	}

	rr := send(http.MethodPost)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("POST over burst status = %d, want 429", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	if rr := send(http.MethodGet); rr.Code != http.StatusOK {
		t.Errorf("GET status = %d, want 200 (not rate limited)", rr.Code)
	}
}
