// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package testutil

import (
	"bytes"
	"context"
	"log"
	"os"
	"testing"
)

func TestTestStore_MigratesQuietly(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	s := TestStore(t)

	count, err := s.Categories().Count(context.Background())
	if err != nil {
		t.Fatalf("counting categories: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}
	if buf.Len() != 0 {
		t.Errorf("migrations wrote to the log: %q", buf.String())
	}
}
