// Package server wires the repositories, services, and handlers together
// and owns the HTTP lifecycle.
//
// This is the composition root: every dependency is assembled here, in one
// place, and each layer only receives the interfaces it needs. Handlers
// never touch storage; services never touch HTTP.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/eventhub/internal/auth"
	"github.com/sakif/eventhub/internal/handler"
	"github.com/sakif/eventhub/internal/middleware"
	"github.com/sakif/eventhub/internal/model"
	"github.com/sakif/eventhub/internal/repository"
	"github.com/sakif/eventhub/internal/repository/memory"
	sqliteRepo "github.com/sakif/eventhub/internal/repository/sqlite"
	"github.com/sakif/eventhub/internal/service"
)

// Store backend names accepted in Config.Store.
const (
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

// Config holds everything the server needs to start. main.go populates it
// from the environment.
type Config struct {
	Port      int
	Store     string // "sqlite" or "memory"
	DBPath    string // ignored when Store is "memory"
	JWTSecret string

	// GitHub OAuth. Social login routes return 404-equivalent errors when
	// these are left empty.
	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string
}

// Server bundles the router with the wired services. The services are kept
// on the struct so bootstrap and seeding can run against the same
// repositories the handlers use.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB // nil when the memory store is selected

	users    repository.UserRepository
	events   repository.EventRepository
	bookings repository.BookingRepository

	passwords *auth.PasswordService
	authSvc   *service.AuthService
	eventSvc  *service.EventService
}

// New creates a Server: opens the selected store, builds the service layer
// on top of it, and registers every route.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
	}

	switch cfg.Store {
	case StoreSQLite, "":
		db, err := sqliteRepo.New(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		s.db = db
		s.users = db.Users()
		s.events = db.Events()
		s.bookings = db.Bookings()
	case StoreMemory:
		store := memory.New()
		s.users = store.Users()
		s.events = store.Events()
		s.bookings = store.Bookings()
	default:
		return nil, fmt.Errorf("unknown store %q (want %q or %q)", cfg.Store, StoreSQLite, StoreMemory)
	}

	tokens, err := auth.NewTokenService(cfg.JWTSecret)
	if err != nil {
		s.closeDB()
		return nil, fmt.Errorf("token service: %w", err)
	}
	s.passwords = auth.NewPasswordService()

	s.authSvc = service.NewAuthService(s.users, tokens, s.passwords, logger)
	s.eventSvc = service.NewEventService(s.events, logger)
	bookingSvc := service.NewBookingService(s.events, s.bookings, logger)
	statsSvc := service.NewStatsService(s.users, s.events, s.bookings, logger)

	var github *auth.GitHubProvider
	if cfg.GitHubClientID != "" && cfg.GitHubClientSecret != "" {
		github = auth.NewGitHubProvider(cfg.GitHubClientID, cfg.GitHubClientSecret, cfg.GitHubCallbackURL)
	}

	authHandler := handler.NewAuthHandler(s.authSvc, github, logger)
	eventHandler := handler.NewEventHandler(s.eventSvc, logger)
	bookingHandler := handler.NewBookingHandler(bookingSvc, logger)
	adminHandler := handler.NewAdminHandler(statsSvc, logger)

	s.setupRoutes(tokens, authHandler, eventHandler, bookingHandler, adminHandler)

	return s, nil
}

// setupRoutes registers the global middleware chain and the route table.
//
// Middleware order matters: RequestID first so the logger can report it,
// Recoverer before the logger so a panic still produces a request line.
func (s *Server) setupRoutes(
	tokens *auth.TokenService,
	authHandler *handler.AuthHandler,
	eventHandler *handler.EventHandler,
	bookingHandler *handler.BookingHandler,
	adminHandler *handler.AdminHandler,
) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	requireAuth := auth.RequireAuth(tokens)
	requireAdmin := auth.RequireAdmin(s.users, s.logger)

	// Social login lives outside /api: the browser is redirected here and
	// back, so the paths mirror the OAuth app's callback configuration.
	s.router.Get("/auth/github/login", authHandler.HandleGitHubLogin)
	s.router.Get("/auth/github/callback", authHandler.HandleGitHubCallback)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/auth/signup", authHandler.HandleSignUp)
		r.Post("/auth/signin", authHandler.HandleSignIn)

		r.Get("/events", eventHandler.HandleList)
		r.Get("/events/{id}", eventHandler.HandleGet)

		// Signed-in users.
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Get("/me", authHandler.HandleMe)
			r.Put("/me", authHandler.HandleUpdateMe)

			r.Post("/bookings", bookingHandler.HandleCreate)
			r.Get("/bookings", bookingHandler.HandleList)
		})

		// Admin-only.
		r.Group(func(r chi.Router) {
			r.Use(requireAuth, requireAdmin)

			r.Post("/events", eventHandler.HandleCreate)
			r.Put("/events/{id}", eventHandler.HandleUpdate)
			r.Delete("/events/{id}", eventHandler.HandleDelete)

			r.Get("/admin/stats", adminHandler.HandleStats)
		})
	})
}

// Router exposes the configured mux, mainly for tests that want to drive
// the full route table through httptest.
func (s *Server) Router() http.Handler {
	return s.router
}

// BootstrapAdmin ensures an admin account exists for the given credentials.
// An existing account with the email is left untouched, admin or not, so a
// stale ADMIN_PASSWORD env var never silently rotates a live credential.
func (s *Server) BootstrapAdmin(ctx context.Context, email, password string) error {
	_, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return nil
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return fmt.Errorf("hashing admin password: %w", err)
	}

	admin := &model.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    "Admin",
		IsAdmin:      true,
	}
	if err := s.users.Create(ctx, admin); err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}

	s.logger.Info("admin account created", slog.String("email", email))
	return nil
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, drain in-flight requests for up
// to 30 seconds, and close the database so the WAL is flushed.
func (s *Server) Start() error {
	defer s.closeDB()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("store", s.storeName()),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}

func (s *Server) storeName() string {
	if s.db != nil {
		return fmt.Sprintf("sqlite (%s)", s.config.DBPath)
	}
	return "memory"
}

func (s *Server) closeDB() {
	if s.db == nil {
		return
	}
	if err := s.db.Close(); err != nil {
		s.logger.Error("closing database", slog.String("error", err.Error()))
	}
}
