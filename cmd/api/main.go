package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"librarydesk/internal/auth"
	"librarydesk/internal/book"
	"librarydesk/internal/config"
	"librarydesk/internal/httpx"
	"librarydesk/internal/loan"
	"librarydesk/internal/user"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	level, _ := cfg.SlogLevel()
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	dbPool, err := openDB(ctx, cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer dbPool.Close()

	bookRepository := book.NewPostgresRepo(dbPool, cfg.DBTimeout)
	loanRepository := loan.NewPostgresRepo(dbPool, cfg.DBTimeout)
	userRepository := user.NewPostgresRepo(dbPool, cfg.DBTimeout)
	blacklist := auth.NewBlacklistPG(dbPool, cfg.DBTimeout)

	userService := user.NewService(userRepository)
	h := handlers{
		books: book.NewHTTPHandler(book.NewService(bookRepository)),
		loans: loan.NewHTTPHandler(loan.NewService(loanRepository, bookRepository)),
		users: user.NewHTTPHandler(userService),
		auth:  auth.NewHTTPHandler(auth.NewService(cfg.JWTSecret, cfg.AccessTokenTTL, userService, blacklist)),
	}

	go auth.RunBlacklistCleanup(ctx, blacklist, time.Hour)

	router := newRouter(h, httpx.AuthMiddleware(cfg.JWTSecret, blacklist), func(ctx context.Context) error {
		return dbPool.Ping(ctx)
	})
	rateLimiter := httpx.NewRateLimitMiddleware(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst)

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      withMiddleware(router, rateLimiter, cfg.CORSOrigins, cfg.EnableHSTS, cfg.MaxBodyBytes),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		slog.Info("server stopped")
		return nil
	case err := <-serverErr:
		return err
	}
}

func openDB(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create db pool: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database (%s): %w", redactDSN(dsn), err)
	}
	slog.Info("database connection OK")
	return pool, nil
}

func redactDSN(dsn string) string {
	const marker = "://"
	start := strings.Index(dsn, marker)
	if start < 0 {
		return dsn
	}
	start += len(marker)
	end := strings.Index(dsn[start:], "@")
	if end < 0 {
		return dsn
	}
	return dsn[:start] + "***" + dsn[start+end:]
}
