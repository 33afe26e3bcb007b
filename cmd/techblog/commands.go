// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/olegiv/techblog/internal/service"
	"github.com/olegiv/techblog/internal/transfer"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply SQLite migrations or ensure MongoDB indexes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			cmd.Printf("Store %q is up to date.\n", a.cfg.StoreBackend)
			return nil
		},
	}
}

func importCmd() *cobra.Command {
	var (
		file      string
		overwrite bool
		dryRun    bool
		skipUsers bool
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import posts, categories, tags and users from a JSON export",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			opts := transfer.DefaultImportOptions()
			opts.DryRun = dryRun
			opts.ImportUsers = !skipUsers
			if overwrite {
				opts.ConflictStrategy = transfer.ConflictOverwrite
			}

			result, err := transfer.NewImporter(a.store, a.logger).ImportFromFile(cmd.Context(), file, opts)
			if result != nil {
				printImportResult(cmd, result)
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "path of the JSON export to import")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "replace existing posts and categories instead of skipping them")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate and count without writing")
	cmd.Flags().BoolVar(&skipUsers, "skip-users", false, "do not import user accounts")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func printImportResult(cmd *cobra.Command, r *transfer.ImportResult) {
	if r.DryRun {
		cmd.Println("Dry run, nothing was written.")
	}
	for _, entity := range []string{"categories", "users", "posts", "tags"} {
		cmd.Printf("%-10s created %d, updated %d, skipped %d\n",
			entity, r.Created[entity], r.Updated[entity], r.Skipped[entity])
	}
	for _, e := range r.Errors {
		cmd.PrintErrf("error: %s %q: %s\n", e.Entity, e.ID, e.Message)
	}
}

func exportCmd() *cobra.Command {
	var (
		file      string
		skipUsers bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the blog's content to a JSON file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			opts := transfer.DefaultExportOptions()
			opts.IncludeUsers = !skipUsers

			exporter := transfer.NewExporter(a.store, a.logger)
			if file == "" || file == "-" {
				return exporter.ExportToWriter(cmd.Context(), opts, cmd.OutOrStdout())
			}
			if err := exporter.ExportToFile(cmd.Context(), opts, file); err != nil {
				return err
			}
			cmd.Printf("Exported to %s\n", file)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "output path (default: stdout)")
	cmd.Flags().BoolVar(&skipUsers, "skip-users", false, "leave user accounts out of the export")
	return cmd
}

func userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}
	cmd.AddCommand(userCreateCmd())
	return cmd
}

func userCreateCmd() *cobra.Command {
	var in service.UserInput

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			user, err := service.NewUserService(a.store, a.logger).CreateUser(cmd.Context(), in)
			if err != nil {
				return describeError(err)
			}

			role := "user"
			if user.IsAdmin {
				role = "admin"
			}
			cmd.Printf("Created %s %q (%s)\n", role, user.Username, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Username, "username", "", "login name")
	cmd.Flags().StringVar(&in.Email, "email", "", "email address")
	cmd.Flags().StringVar(&in.Password, "password", "", "initial password")
	cmd.Flags().BoolVar(&in.IsAdmin, "admin", false, "grant administrator rights")
	for _, name := range []string{"username", "email", "password"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func tagsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "Maintain tag counters",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "recount",
		Short: "Recompute every tag count from the stored posts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			tags, err := service.NewContentService(a.store, a.logger).RecountTags(cmd.Context())
			if err != nil {
				return err
			}
			for _, t := range tags {
				cmd.Printf("%-24s %d\n", t.Name, t.Count)
			}
			return nil
		},
	})
	return cmd
}

// describeError flattens validation and conflict errors into one readable line.
func describeError(err error) error {
	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		parts := make([]string, 0, len(validationErr.Fields))
		for field, msg := range validationErr.Fields {
			parts = append(parts, field+" "+msg)
		}
		slices.Sort(parts)
		return fmt.Errorf("validation failed: %s", strings.Join(parts, "; "))
	}
	return err
}
