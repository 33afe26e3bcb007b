// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("changeme")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$") {
		t.Fatalf("HashPassword returned unexpected format: %s", hash)
	}
	if NeedsRehash(hash) {
		t.Error("fresh hash should not need rehash")
	}
}

func TestCheckPassword_Correct(t *testing.T) {
	hash, err := HashPassword("changeme")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}

	valid, err := CheckPassword("changeme", hash)
	if err != nil {
		t.Fatalf("CheckPassword error: %v", err)
	}
	if !valid {
		t.Fatal("Correct password was rejected")
	}
}

func TestCheckPassword_Wrong(t *testing.T) {
	hash, err := HashPassword("changeme")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}

	valid, err := CheckPassword("wrongpassword", hash)
	if err != nil {
		t.Fatalf("CheckPassword error: %v", err)
	}
	if valid {
		t.Fatal("Wrong password was accepted")
	}
}

func TestCheckPassword_StoredArgonParams(t *testing.T) {
	// Hash produced with different argon2 parameters than the current defaults
	stored := "$argon2id$v=19$m=65536,t=1,p=4$mucMvOaS6lZ2LWNS1OEFKw$UYEWv8cvCOO6l2zGeqv3JPVe1nyy0x9GXBfYEuDM544"

	valid, err := CheckPassword("changeme", stored)
	if err != nil {
		t.Fatalf("CheckPassword error: %v", err)
	}
	if !valid {
		t.Fatal("stored hash rejected correct password 'changeme'")
	}
	if !NeedsRehash(stored) {
		t.Error("hash with old parameters should need rehash")
	}
}

func TestCheckPassword_Bcrypt(t *testing.T) {
	legacy, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	hash := string(legacy)

	if !IsBcryptHash(hash) {
		t.Fatalf("IsBcryptHash(%q) = false", hash)
	}
	if !NeedsRehash(hash) {
		t.Error("bcrypt hash should need rehash")
	}

	valid, err := CheckPassword("secret123", hash)
	if err != nil {
		t.Fatalf("CheckPassword error: %v", err)
	}
	if !valid {
		t.Fatal("bcrypt hash rejected correct password")
	}

	valid, err = CheckPassword("nope", hash)
	if err != nil {
		t.Fatalf("CheckPassword error: %v", err)
	}
	if valid {
		t.Fatal("bcrypt hash accepted wrong password")
	}
}

func TestCheckPassword_Malformed(t *testing.T) {
	for _, h := range []string{"", "plain", "$argon2id$v=19$broken"} {
		if _, err := CheckPassword("x", h); err == nil {
			t.Errorf("CheckPassword with %q should fail", h)
		}
	}
}

func TestDecodeArgon2_RoundTrip(t *testing.T) {
	hash, err := HashPassword("changeme")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}

	h, err := decodeArgon2(hash)
	if err != nil {
		t.Fatalf("decodeArgon2 error: %v", err)
	}
	if h.memory != Argon2Memory || h.time != Argon2Time || h.threads != Argon2Threads {
		t.Errorf("decoded params m=%d t=%d p=%d", h.memory, h.time, h.threads)
	}
	if len(h.salt) != Argon2SaltLen || len(h.key) != Argon2KeyLen {
		t.Errorf("decoded salt/key lengths %d/%d", len(h.salt), len(h.key))
	}
	if got := h.encode(); got != hash {
		t.Errorf("encode() = %q, want %q", got, hash)
	}
}

func TestDecodeArgon2_UnsupportedType(t *testing.T) {
	if _, err := decodeArgon2("$argon2i$v=19$m=1,t=1,p=1$c2FsdA$a2V5"); err == nil {
		t.Fatal("argon2i hash should be rejected")
	}
}
