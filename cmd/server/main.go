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

	"github.com/labstack/echo/v4"

	"github.com/quillhub/quill/backend/internal/handlers"
	"github.com/quillhub/quill/backend/internal/middleware"
	"github.com/quillhub/quill/backend/internal/router"
	"github.com/quillhub/quill/backend/pkg/cache"
	"github.com/quillhub/quill/backend/pkg/config"
	"github.com/quillhub/quill/backend/pkg/firebase"
	"github.com/quillhub/quill/backend/pkg/search"
)

func main() {
	// Load configuration
	cfg := config.Load(os.Args[1:])
	setupLogger(cfg)

	// Initialize database connections
	db, err := config.InitDB(cfg)
	if err != nil {
		slog.Error("failed to initialize databases", "error", err)
		os.Exit(1)
	}
	defer db.CloseDB()

	if err := config.Migrate(db.SQL); err != nil {
		slog.Error("failed to migrate schema", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	deps := router.Deps{
		SQL:          db.SQL,
		JWTSecret:    cfg.JWTSecret,
		JWTTTL:       cfg.JWTTTL,
		RateLimiter:  middleware.NewIPRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		HealthChecks: map[string]handlers.Pinger{},
	}

	if db.Mongo != nil {
		deps.Mongo = db.Mongo.Database(cfg.MongoDatabase)
		deps.HealthChecks["mongo"] = func(ctx context.Context) error { return db.Mongo.Ping(ctx, nil) }
	}

	if cfg.RedisAddr != "" {
		rc := cache.New(cfg.RedisAddr, cfg.RedisDB, cfg.CacheTTL)
		defer rc.Close()
		if err := rc.Ping(ctx); err != nil {
			slog.Warn("redis unreachable, post cache disabled", "addr", cfg.RedisAddr, "error", err)
		} else {
			deps.Cache = rc
			deps.HealthChecks["redis"] = rc.Ping
		}
	}

	if cfg.ElasticsearchAddr != "" {
		es, err := search.New(cfg.ElasticsearchAddr, cfg.ElasticsearchIndex)
		if err != nil {
			slog.Warn("elasticsearch client not created, search falls back to database", "error", err)
		} else if err := es.EnsureIndex(ctx); err != nil {
			slog.Warn("elasticsearch index not ready, search falls back to database", "error", err)
		} else {
			deps.Index = es
		}
	}

	fbAuth, err := firebase.NewAuthClient(ctx, cfg.FirebaseCredentialsPath)
	switch {
	case errors.Is(err, firebase.ErrNotConfigured):
		slog.Info("firebase login disabled")
	case err != nil:
		slog.Error("failed to initialize firebase", "error", err)
		os.Exit(1)
	default:
		deps.FirebaseAuth = fbAuth
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	config.SetupMiddleware(e, cfg)
	router.SetupRoutes(e, deps)

	stopCleanup := make(chan struct{})
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				deps.RateLimiter.Cleanup(3 * time.Minute)
			case <-stopCleanup:
				return
			}
		}
	}()

	// Start server
	serverErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serverErr:
		slog.Error("server error", "error", err)
	}
	close(stopCleanup)

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}
	slog.Info("server exited")
}

func setupLogger(cfg *config.Config) {
	var handler slog.Handler
	if cfg.IsProduction() {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	slog.SetDefault(slog.New(handler))
}
