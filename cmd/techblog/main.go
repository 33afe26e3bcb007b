// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Command techblog runs the blog API server and its maintenance tasks.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/olegiv/techblog/internal/version"
)

func main() {
	// Load .env file if present (development)
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "techblog",
		Short:         "Technology blog API server",
		Long:          "techblog serves the blog's JSON API and manages its content store.\nConfiguration is read from TECHBLOG_* environment variables.",
		Version:       version.Get().String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetVersionTemplate("techblog {{.Version}}\n")

	rootCmd.AddCommand(
		serveCmd(),
		migrateCmd(),
		importCmd(),
		exportCmd(),
		userCmd(),
		tagsCmd(),
	)
	return rootCmd
}
