// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/olegiv/techblog/internal/handler/api"
	"github.com/olegiv/techblog/internal/middleware"
	"github.com/olegiv/techblog/internal/service"
	"github.com/olegiv/techblog/internal/session"
	"github.com/olegiv/techblog/internal/version"
)

const shutdownTimeout = 30 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(ctx context.Context) error {
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	cfg, logger := a.cfg, a.logger
	if err := cfg.ValidateSessionSecret(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if cfg.DoSeed {
		err := service.NewUserService(a.store, logger).SeedDefaults(ctx, service.SeedOptions{
			AdminUsername: cfg.AdminUsername,
			AdminEmail:    cfg.AdminEmail,
			AdminPassword: cfg.AdminPassword,
		})
		if err != nil {
			return fmt.Errorf("seeding database: %w", err)
		}
		if cfg.AdminPassword == "" {
			logger.Warn("TECHBLOG_ADMIN_PASSWORD is empty, no admin account was seeded")
		}
	}

	sessions := session.New(a.db, cfg.IsDevelopment())
	defer session.StopCleanup(sessions)

	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	defer loginProtection.Stop()

	publicLimiter := middleware.NewGlobalRateLimiter(cfg.PublicRateLimit, cfg.PublicRateBurst)
	defer publicLimiter.Stop()

	router := api.NewRouter(api.RouterConfig{
		Store:              a.store,
		Sessions:           sessions,
		Logger:             logger,
		IsDevelopment:      cfg.IsDevelopment(),
		CSRFKey:            []byte(cfg.SessionSecret),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		LoginProtection:    loginProtection,
		PublicLimiter:      publicLimiter,
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting server",
			"addr", cfg.ServerAddr(),
			"env", cfg.Env,
			"version", version.Version,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err, ok := <-serverErr:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-quit:
	}

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
