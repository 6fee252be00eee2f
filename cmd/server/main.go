// Package main is the EventHub server entry point.
//
// main stays minimal: read configuration from the environment, build the
// logger, hand both to internal/server, and block until shutdown. All
// behaviour lives in the internal packages.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/sakif/eventhub/internal/server"
)

func main() {
	logger := newLogger()

	cfg, err := loadConfig()
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.Store != server.StoreMemory {
		// The sqlite driver creates the file but not its directory.
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			logger.Error("failed to create database directory",
				slog.String("dir", filepath.Dir(cfg.DBPath)),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()

	if email := os.Getenv("ADMIN_EMAIL"); email != "" {
		password := os.Getenv("ADMIN_PASSWORD")
		if password == "" {
			logger.Error("ADMIN_EMAIL set without ADMIN_PASSWORD")
			os.Exit(1)
		}
		if err := srv.BootstrapAdmin(ctx, email, password); err != nil {
			logger.Error("admin bootstrap failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := srv.SeedDemoData(ctx); err != nil {
			logger.Error("demo seed failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	// Start blocks until SIGINT/SIGTERM.
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// loadConfig reads server.Config from the environment.
//
//	PORT                  listen port, default 8080
//	STORE                 "sqlite" (default) or "memory"
//	DB_PATH               sqlite file path, default data/eventhub.db
//	JWT_SECRET            required; generate with `openssl rand -hex 32`
//	GITHUB_CLIENT_ID      optional; GitHub login disabled when unset
//	GITHUB_CLIENT_SECRET  optional
//	GITHUB_CALLBACK_URL   optional, defaults to localhost callback
func loadConfig() (server.Config, error) {
	cfg := server.Config{
		Port:   8080,
		Store:  server.StoreSQLite,
		DBPath: "data/eventhub.db",
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return cfg, fmt.Errorf("invalid PORT %q", portStr)
		}
		cfg.Port = port
	}

	if store := os.Getenv("STORE"); store != "" {
		cfg.Store = store
	}
	if dbPath := os.Getenv("DB_PATH"); dbPath != "" {
		cfg.DBPath = dbPath
	}

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return cfg, fmt.Errorf("JWT_SECRET is required")
	}

	cfg.GitHubClientID = os.Getenv("GITHUB_CLIENT_ID")
	cfg.GitHubClientSecret = os.Getenv("GITHUB_CLIENT_SECRET")
	cfg.GitHubCallbackURL = os.Getenv("GITHUB_CALLBACK_URL")
	if cfg.GitHubCallbackURL == "" {
		cfg.GitHubCallbackURL = fmt.Sprintf("http://localhost:%d/auth/github/callback", cfg.Port)
	}

	return cfg, nil
}

// newLogger builds a text slog logger. LOG_LEVEL accepts debug, info,
// warn, or error; anything else falls back to info.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
}
