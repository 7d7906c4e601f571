// cmd/server/main.go
// This is the entry point for the Tournament Finder API server.
// The cmd/ folder holds executable binaries; internal/ holds the packages they are built from.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	// adaptor lets a plain net/http handler (the Prometheus exporter) run inside Fiber
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/trentd187/tournament-finder/internal/config"
	"github.com/trentd187/tournament-finder/internal/database"
	"github.com/trentd187/tournament-finder/internal/feed"
	"github.com/trentd187/tournament-finder/internal/handlers"
	applog "github.com/trentd187/tournament-finder/internal/logger"
	"github.com/trentd187/tournament-finder/internal/metrics"
	"github.com/trentd187/tournament-finder/internal/middleware"
	"github.com/trentd187/tournament-finder/internal/store"
)

func main() {
	// Load configuration from environment variables (and optionally a .env file).
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := applog.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	// ctx is cancelled on SIGINT/SIGTERM; everything long-running hangs off it.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Running migrations on startup keeps the schema in sync with the binary.
	if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	var tournaments store.Tournaments = store.NewTournamentStore(db)
	if cfg.CacheEnabled() {
		rdb, err := newRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer rdb.Close()
		tournaments = store.NewCachedTournaments(tournaments, rdb, cfg.CacheTTL, log)
		log.Info("tournament list cache enabled", zap.Duration("ttl", cfg.CacheTTL))
	}

	// The hub fans status changes out to /stream subscribers.
	hub := feed.NewHub()
	go hub.Run(ctx)

	m := metrics.New(prometheus.DefaultRegisterer)

	app := fiber.New(fiber.Config{
		AppName:      "Tournament Finder API",
		ErrorHandler: jsonErrorHandler,
	})

	// --- Global middleware ---
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New())

	// --- Operational routes ---
	app.Get("/health", handlers.HealthCheck(func(ctx context.Context) error {
		return database.Ping(ctx, db)
	}))
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// --- Tournament routes ---
	// Status changes and deletes are moderation actions; when a JWT secret is configured
	// they require an admin or moderator token.
	var moderation []fiber.Handler
	if cfg.AuthEnabled() {
		moderation = []fiber.Handler{
			middleware.Auth([]byte(cfg.JWTSecret)),
			middleware.RequireRole(middleware.RoleAdmin, middleware.RoleModerator),
		}
	} else {
		log.Warn("JWT_SECRET not set, moderation routes are unauthenticated")
	}

	var api fiber.Router = app
	if cfg.APIPrefix != "" {
		api = app.Group(cfg.APIPrefix)
	}
	handlers.RegisterTournamentRoutes(api, handlers.NewTournamentHandlers(tournaments, m, hub, log), moderation...)

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Error("shutdown failed", zap.Error(err))
		}
	}()

	log.Info("starting server", zap.String("port", cfg.Port), zap.String("prefix", cfg.APIPrefix))
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func newRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}

// jsonErrorHandler renders errors that escape a handler (unknown routes, panics caught by
// recover, oversized bodies) as JSON instead of Fiber's plain-text default.
func jsonErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}
