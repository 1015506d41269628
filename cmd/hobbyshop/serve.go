package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"github.com/hobbybyrox/hobbyshop/internal/api"
	"github.com/hobbybyrox/hobbyshop/internal/auth"
	"github.com/hobbybyrox/hobbyshop/internal/config"
	"github.com/hobbybyrox/hobbyshop/internal/content"
	"github.com/hobbybyrox/hobbyshop/internal/db"
	"github.com/hobbybyrox/hobbyshop/internal/publish"
)

func runServe(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	configFlag(fs)
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "")
	fs.StringVar(&cfg.DBPath, "d", cfg.DBPath, "")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "")
	fs.StringVar(&cfg.Addr, "a", cfg.Addr, "")
	fs.StringVar(&cfg.LogPath, "log", cfg.LogPath, "")
	fs.StringVar(&cfg.LogPath, "l", cfg.LogPath, "")
	fs.StringVar(&cfg.TokenMode, "mode", cfg.TokenMode, "")
	fs.StringVar(&cfg.TokenMode, "m", cfg.TokenMode, "")
	fs.StringVar(&cfg.Strategy, "strategy", cfg.Strategy, "")
	fs.StringVar(&cfg.Strategy, "s", cfg.Strategy, "")
	fs.Usage = func() {
		fmt.Fprint(os.Stdout, `Usage: hobbyshop serve [flags]

Flags:
  -d, -db <path>          SQLite database path (default: hobbyshop.sqlite3)
  -a, -addr <host:port>   listen address (default: :$PORT or :10000)
  -l, -log <path>         log file path (default: stdout/stderr only)
  -m, -mode <mode>        token mode: secret or jwt (default: secret)
  -s, -strategy <name>    publish strategy: tree or sequential (default: tree)
  -c, -config <path>      JSON config file

Environment:
  GITHUB_TOKEN, GITHUB_OWNER, GITHUB_REPO (required), GITHUB_BRANCH, PORT
`)
	}
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	closeLog, err := setupLogger(cfg.LogPath)
	if err != nil {
		return err
	}
	defer closeLog()

	if err := cfg.ValidateRelay(); err != nil {
		return err
	}
	mode, err := auth.ParseMode(cfg.TokenMode)
	if err != nil {
		return err
	}

	database, err := db.OpenWithSchema(cfg.DBPath)
	if err != nil {
		return err
	}
	defer database.Close()
	slog.Info("database ready", "path", cfg.DBPath)

	authenticator, err := auth.New(ctx, database, mode)
	if err != nil {
		return fmt.Errorf("loading token secret: %w", err)
	}

	contentStore, err := content.New(content.Config{
		Owner:      cfg.GitHub.Owner,
		Repo:       cfg.GitHub.Repo,
		Branch:     cfg.GitHub.Branch,
		Token:      cfg.GitHub.Token,
		APIBaseURL: cfg.GitHub.APIBaseURL,
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
	})
	if err != nil {
		return err
	}
	publisher, err := publish.New(cfg.Strategy, contentStore, cfg.CommitMessage, slog.Default())
	if err != nil {
		return err
	}

	router := api.NewRouter(api.RouterConfig{
		DB:           database,
		Auth:         authenticator,
		Publisher:    publisher,
		LoginLimiter: rate.NewLimiter(rate.Limit(cfg.LoginPerMinute/60), cfg.LoginBurst),
	})
	handler := api.LoggingMiddleware(api.WithCORS(router, cfg.Origins()))

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		slog.Info("shutdown signal received", "signal", sig.String())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", cfg.Addr, "repo", cfg.GitHub.Owner+"/"+cfg.GitHub.Repo,
		"branch", contentStore.Branch(), "strategy", cfg.Strategy, "mode", mode)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	slog.Info("server stopped, closing database")
	return nil
}
