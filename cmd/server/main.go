// Language tutor web server.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ashureev/lingo-tutor/internal/api"
	"github.com/ashureev/lingo-tutor/internal/config"
	"github.com/ashureev/lingo-tutor/internal/identity"
	"github.com/ashureev/lingo-tutor/internal/janitor"
	"github.com/ashureev/lingo-tutor/internal/llm"
	"github.com/ashureev/lingo-tutor/internal/middleware"
	"github.com/ashureev/lingo-tutor/internal/store"
	"github.com/ashureev/lingo-tutor/internal/tutor"
	"github.com/ashureev/lingo-tutor/web"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

func main() {
	loaded, err := config.LoadEnvFiles(config.DefaultEnvFiles...)
	if err != nil {
		slog.Error("Failed to read env file", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	level, _ := cfg.SlogLevel()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	if len(loaded) == 0 {
		slog.Info("No .env file found, using environment variables")
	}
	if !cfg.HasAPIKey() {
		slog.Warn("OPENAI_API_KEY is not set; model calls will fail unless the endpoint needs no key")
	}

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment(), "model", cfg.LLM.Model)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := store.NewSQLite(ctx, cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()
	slog.Info("Database ready", "path", cfg.DBPath)

	client := llm.NewOpenAI(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Model, cfg.LLM.Timeout)
	svc := tutor.NewService(client, repo, logger)

	cleanup, err := janitor.New(repo, cfg.SessionTTL, cfg.CleanupSchedule, logger)
	if err != nil {
		slog.Error("Failed to schedule session cleanup", "error", err)
		os.Exit(1)
	}
	cleanup.Start()
	defer cleanup.Stop()

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	var identityOpts []identity.Option
	if cfg.FrontendURL != "" {
		r.Use(middleware.CORS(cfg.FrontendURL))
		identityOpts = append(identityOpts, identity.WithCrossSite())
	}

	r.Group(func(r chi.Router) {
		r.Use(identity.Middleware(cfg.IsDevelopment(), identityOpts...))
		api.NewHandler(svc, repo, logger).RegisterRoutes(r)
	})

	r.Handle("/*", web.SPAHandler())

	// Model calls are blocking; leave room for LLM_TIMEOUT.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.LLM.Timeout + 30*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		return
	}

	slog.Info("Server stopped successfully")
}
