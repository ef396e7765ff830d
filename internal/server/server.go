// Package server sets up the HTTP server, router, and all route definitions.
//
// This package is the "wiring" layer, the composition root:
//
//	config → key-value backend (sqlite | redis | memory)
//	       → stores (credentials, session, files)
//	       → services (auth, files, admin) + access policy
//	       → handlers → chi routes
//
// main.go stays minimal; tests build a Server over the memory backend and drive
// it through Handler() without opening a port.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/file-vault/internal/auth"
	"github.com/sakif/file-vault/internal/config"
	"github.com/sakif/file-vault/internal/handler"
	"github.com/sakif/file-vault/internal/middleware"
	"github.com/sakif/file-vault/internal/repository"
	"github.com/sakif/file-vault/internal/repository/memory"
	redisRepo "github.com/sakif/file-vault/internal/repository/redis"
	sqliteRepo "github.com/sakif/file-vault/internal/repository/sqlite"
	"github.com/sakif/file-vault/internal/service"
	"github.com/sakif/file-vault/internal/store"
)

// Server represents the HTTP server and all its dependencies.
//
// RESOURCE MANAGEMENT:
// The Server owns the storage backend. Start closes it after shutdown so SQLite
// flushes its WAL and Redis releases its pool.
type Server struct {
	router   *chi.Mux
	config   *config.Config
	logger   *slog.Logger
	kv       repository.KeyValueStore
	closeKV  func() error
	sessions *store.SessionStore
	policy   auth.Policy

	authService  *service.AuthService
	fileService  *service.FileService
	adminService *service.AdminService
}

// New opens the configured backend, wires every layer on top of it and runs the
// startup bootstrap (admin account, persisted session).
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	kv, closeKV, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	s := &Server{
		router:  chi.NewRouter(),
		config:  cfg,
		logger:  logger,
		kv:      kv,
		closeKV: closeKV,
	}
	s.wire()

	if _, err := s.authService.Bootstrap(ctx); err != nil {
		_ = closeKV()
		return nil, fmt.Errorf("bootstrapping: %w", err)
	}

	s.setupRoutes()
	return s, nil
}

// openBackend returns the key-value store named by cfg.StorageBackend and a
// function releasing it.
func openBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repository.KeyValueStore, func() error, error) {
	switch cfg.StorageBackend {
	case config.BackendSQLite:
		db, err := sqliteRepo.New(cfg.DBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("opening database: %w", err)
		}
		logger.Info("using sqlite storage", slog.String("path", cfg.DBPath))
		return db, db.Close, nil

	case config.BackendRedis:
		rdb, err := redisRepo.New(ctx, cfg.RedisURL, cfg.RedisKeyPrefix)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to redis at %s: %w", cfg.RedactedRedisURL(), err)
		}
		logger.Info("using redis storage",
			slog.String("url", cfg.RedactedRedisURL()),
			slog.String("prefix", cfg.RedisKeyPrefix),
		)
		return rdb, rdb.Close, nil

	case config.BackendMemory:
		logger.Warn("using in-memory storage; data is lost on exit")
		return memory.New(), func() error { return nil }, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

// wire builds stores, policy and services over s.kv.
func (s *Server) wire() {
	admin := store.AdminAccount{
		Name:     s.config.AdminName,
		Email:    s.config.AdminEmail,
		Password: s.config.AdminPassword,
	}
	users := store.NewCredentialStore(s.kv, admin, s.logger)
	s.sessions = store.NewSessionStore(s.kv, s.logger)
	files := store.NewFileStore(s.kv, s.logger)

	s.policy = auth.NewPolicy(s.config.AdminEmail)

	opts := service.Options{Latency: s.config.SimulatedLatency}
	s.authService = service.NewAuthService(users, s.sessions, opts, s.logger)
	s.fileService = service.NewFileService(files, opts, s.logger)
	s.adminService = service.NewAdminService(users, files, s.logger)
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
//
//	GET    /healthz                    → liveness
//	POST   /api/auth/signup            → create account + sign in
//	POST   /api/auth/login             → sign in
//	POST   /api/auth/logout            → sign out
//	POST   /api/auth/forgot-password   → account lookup
//	GET    /api/auth/me                → [session] current user
//	PUT    /api/auth/profile           → [session] name / picture
//	PUT    /api/auth/password          → [session] change password
//	GET    /api/nav                    → navigation for the visitor
//	GET    /api/files                  → [session] list / search
//	GET    /api/files/overview         → [session] dashboard summary
//	POST   /api/files                  → [session] upload
//	PATCH  /api/files/{id}             → [session, owner] edit
//	DELETE /api/files/{id}             → [session, owner] delete
//	GET    /api/admin/{stats,users,files} → [admin]
//	DELETE /api/admin/files/{id}       → [admin] delete any file
//
// MIDDLEWARE ORDER MATTERS:
// RequestID first so the logger can report it; Recoverer inside the logger so a
// panic is logged as a 500; LoadSession last so every handler sees the user.
func (s *Server) setupRoutes() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(auth.LoadSession(s.sessions))

	authHandler := handler.NewAuthHandler(s.authService, s.policy, s.logger)
	fileHandler := handler.NewFileHandler(s.fileService, s.logger)
	adminHandler := handler.NewAdminHandler(s.adminService, s.logger)
	navHandler := handler.NewNavHandler(s.policy)

	s.router.Get("/healthz", handler.HandleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/nav", navHandler.HandleNav)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", authHandler.HandleSignup)
			r.Post("/login", authHandler.HandleLogin)
			r.Post("/logout", authHandler.HandleLogout)
			r.Post("/forgot-password", authHandler.HandleForgotPassword)

			r.Group(func(r chi.Router) {
				r.Use(auth.RequireSession)
				r.Get("/me", authHandler.HandleMe)
				r.Put("/profile", authHandler.HandleUpdateProfile)
				r.Put("/password", authHandler.HandleChangePassword)
			})
		})

		r.Route("/files", func(r chi.Router) {
			r.Use(auth.RequireSession)
			r.Get("/", fileHandler.HandleList)
			r.Get("/overview", fileHandler.HandleOverview)
			r.Post("/", fileHandler.HandleUpload)
			r.Patch("/{id}", fileHandler.HandleUpdate)
			r.Delete("/{id}", fileHandler.HandleDelete)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.RequireAdmin(s.policy))
			r.Get("/stats", adminHandler.HandleStats)
			r.Get("/users", adminHandler.HandleUsers)
			r.Get("/files", adminHandler.HandleFiles)
			r.Delete("/files/{id}", adminHandler.HandleDeleteFile)
		})
	})
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the storage backend. Start calls it on the way out.
func (s *Server) Close() error {
	return s.closeKV()
}

// Start starts the HTTP server and handles graceful shutdown.
//
// GRACEFUL SHUTDOWN:
//  1. Stop accepting new connections on SIGINT/SIGTERM
//  2. Wait up to ShutdownTimeout for in-flight requests
//  3. Close the storage backend
func (s *Server) Start() error {
	defer func() {
		if err := s.Close(); err != nil {
			s.logger.Error("closing storage", slog.String("error", err.Error()))
		}
	}()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("storage", s.config.StorageBackend),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
