// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads the application configuration from TECHBLOG_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Store backends.
const (
	BackendSQLite = "sqlite"
	BackendMongo  = "mongo"
)

// knownWeakSecrets contains default/example secrets that must be rejected.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	Env        string `env:"TECHBLOG_ENV" envDefault:"development"`
	ServerHost string `env:"TECHBLOG_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"TECHBLOG_SERVER_PORT" envDefault:"8080"`
	LogLevel   string `env:"TECHBLOG_LOG_LEVEL" envDefault:"info"`

	// Document store
	StoreBackend  string `env:"TECHBLOG_STORE_BACKEND" envDefault:"sqlite"`
	DBPath        string `env:"TECHBLOG_DB_PATH" envDefault:"./data/techblog.db"`
	MongoURI      string `env:"TECHBLOG_MONGO_URI"`
	MongoDatabase string `env:"TECHBLOG_MONGO_DATABASE" envDefault:"techblog"`

	// HTTP protection
	SessionSecret      string   `env:"TECHBLOG_SESSION_SECRET"`
	CORSAllowedOrigins []string `env:"TECHBLOG_CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	PublicRateLimit    float64  `env:"TECHBLOG_PUBLIC_RATE_LIMIT" envDefault:"10"`
	PublicRateBurst    int      `env:"TECHBLOG_PUBLIC_RATE_BURST" envDefault:"20"`

	// Seeding
	DoSeed        bool   `env:"TECHBLOG_DO_SEED" envDefault:"false"`
	AdminUsername string `env:"TECHBLOG_ADMIN_USERNAME" envDefault:"admin"`
	AdminEmail    string `env:"TECHBLOG_ADMIN_EMAIL" envDefault:"admin@example.com"`
	AdminPassword string `env:"TECHBLOG_ADMIN_PASSWORD"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseMongo reports whether MongoDB is the configured document store.
func (c Config) UseMongo() bool {
	return c.StoreBackend == BackendMongo
}

// MinSessionSecretLength is the minimum required length for the session secret.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
// The session secret is not checked here; commands that serve HTTP call
// ValidateSessionSecret themselves.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.StoreBackend = strings.ToLower(strings.TrimSpace(cfg.StoreBackend))
	switch cfg.StoreBackend {
	case BackendSQLite:
		if cfg.DBPath == "" {
			return nil, errors.New("TECHBLOG_DB_PATH must not be empty")
		}
	case BackendMongo:
		if cfg.MongoURI == "" {
			return nil, errors.New("TECHBLOG_MONGO_URI is required when TECHBLOG_STORE_BACKEND=mongo")
		}
		if cfg.MongoDatabase == "" {
			return nil, errors.New("TECHBLOG_MONGO_DATABASE must not be empty")
		}
	default:
		return nil, fmt.Errorf("TECHBLOG_STORE_BACKEND must be %q or %q, got %q",
			BackendSQLite, BackendMongo, cfg.StoreBackend)
	}

	if cfg.PublicRateLimit <= 0 {
		return nil, fmt.Errorf("TECHBLOG_PUBLIC_RATE_LIMIT must be positive, got %v", cfg.PublicRateLimit)
	}
	if cfg.PublicRateBurst <= 0 {
		return nil, fmt.Errorf("TECHBLOG_PUBLIC_RATE_BURST must be positive, got %d", cfg.PublicRateBurst)
	}

	return cfg, nil
}

// ValidateSessionSecret checks the session secret used for cookies and CSRF.
func (c Config) ValidateSessionSecret() error {
	if len(c.SessionSecret) < MinSessionSecretLength {
		return fmt.Errorf("TECHBLOG_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(c.SessionSecret))
	}

	for _, weak := range knownWeakSecrets {
		if c.SessionSecret == weak {
			return errors.New("TECHBLOG_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	if !hasMinimumEntropy(c.SessionSecret) {
		slog.Warn("TECHBLOG_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	return nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
