package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"librarydesk/internal/book"
	"librarydesk/internal/config"
	"librarydesk/internal/user"
)

const version = "0.1.0"

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := fang.Execute(
		context.Background(),
		newRootCmd(),
		fang.WithVersion(version),
		fang.WithNotifySignal(os.Interrupt, os.Kill),
	); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the default admin, users and books into the library database",
		Long: `seed reads a YAML file describing accounts and catalog entries and
inserts whatever is missing. Running it twice is safe: existing accounts only
gain roles and books whose ISBN already exists are skipped.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := config.LoadDB()
			if err != nil {
				return err
			}
			data, err := loadSeed(file)
			if err != nil {
				return err
			}
			return run(cmd.Context(), db, data)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "db/seed/library.yaml", "seed file")
	return cmd
}

func run(ctx context.Context, db config.DB, data Seed) error {
	pool, err := pgxpool.New(ctx, db.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer pool.Close()

	s := seeder{
		users: user.NewService(user.NewPostgresRepo(pool, db.DBTimeout)),
		books: book.NewService(book.NewPostgresRepo(pool, db.DBTimeout)),
	}
	stats, err := s.apply(ctx, data)
	if err != nil {
		return err
	}
	slog.Info("seed complete",
		"users", stats.Users,
		"books_created", stats.BooksCreated,
		"books_skipped", stats.BooksSkipped,
	)
	return nil
}
