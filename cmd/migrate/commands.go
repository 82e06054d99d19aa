package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"librarydesk/internal/config"
)

// settings is filled by the root command before any subcommand runs.
type settings struct {
	db  config.DB
	dir string
}

func newRootCmd() *cobra.Command {
	s := &settings{}
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the librarydesk database schema",
		Long: `migrate applies, rolls back and inspects the goose migrations that
define the books, users, book_requests and token_blacklist tables.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			db, err := config.LoadDB()
			if err != nil {
				return err
			}
			s.db = db
			if s.dir == "" {
				s.dir = db.MigrationsDir
			}
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&s.dir, "dir", "", "migrations directory (default $MIGRATIONS_DIR or db/migrations)")

	cmd.AddCommand(
		withDB("up", "Apply all pending migrations", s, goose.UpContext),
		withDB("down", "Roll back the latest migration", s, goose.DownContext),
		withDB("status", "Print the state of every migration", s, goose.StatusContext),
		newCreateCmd(s),
	)
	return cmd
}

// withDB builds a subcommand that runs fn against an open goose connection.
func withDB(use, short string, s *settings, fn func(context.Context, *sql.DB, string, ...goose.OptionsFunc) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, closeDB, err := openGooseDB(ctx, s.db.DatabaseDSN)
			if err != nil {
				return err
			}
			defer closeDB()

			if err := fn(ctx, db, s.dir); err != nil {
				return fmt.Errorf("migrate %s: %w", use, err)
			}
			slog.Info("migration command finished", "command", use, "dir", s.dir)
			return nil
		},
	}
}

func newCreateCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "create NAME",
		Short: "Create a new SQL migration file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := goose.Create(nil, s.dir, args[0], "sql"); err != nil {
				return fmt.Errorf("create migration: %w", err)
			}
			return nil
		},
	}
}

func openGooseDB(ctx context.Context, dsn string) (*sql.DB, func(), error) {
	if err := goose.SetDialect("postgres"); err != nil {
		return nil, nil, err
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("connect: %w", err)
	}
	db := stdlib.OpenDBFromPool(pool)
	return db, func() {
		_ = db.Close()
		pool.Close()
	}, nil
}
