package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"ecoscan/internal/config"
	"ecoscan/internal/repositories"
	"ecoscan/internal/router"
	"ecoscan/internal/services"
	"ecoscan/pkg/database"
	"ecoscan/pkg/logger"
	"ecoscan/pkg/objectstore"
	"ecoscan/pkg/rabbitmq"
	"ecoscan/pkg/redisstore"
)

func main() {
	// --- Configuration ---
	cfg := config.Load()

	zl, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zl.Sync()
	sugar := zl.Sugar()

	if cfg.UsesDefaultSecret() {
		sugar.Warn("JWT_SECRET is not set, falling back to the built-in default secret; do not run like this in production")
	}

	app, cleanup, err := newApp(cfg, sugar)
	if err != nil {
		sugar.Fatalw("failed to build application", "error", err)
	}
	defer cleanup()

	// Graceful shutdown handling
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		sugar.Infow("starting server", "addr", cfg.AppPort, "env", cfg.Env)
		serverErr <- app.Listen(cfg.AppPort)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			sugar.Errorw("server stopped", "error", err)
		}
	case <-ctx.Done():
		sugar.Info("shutting down server")
		if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
			sugar.Errorw("error during shutdown", "error", err)
		}
	}
	sugar.Info("server gracefully stopped")
}

// newApp wires the store, optional integrations, services and routes. The
// returned cleanup closes everything that was opened.
func newApp(cfg config.Config, log *zap.SugaredLogger) (*fiber.App, func(), error) {
	startedAt := time.Now()
	var closers []func() error
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				log.Warnw("cleanup failed", "error", err)
			}
		}
	}

	// --- Database ---
	db, err := database.Open(database.Config{
		Driver: cfg.DBDriver,
		DSN:    cfg.DBDSN,
		Debug:  !cfg.IsProduction() && cfg.LogLevel == "debug",
	})
	if err != nil {
		return nil, cleanup, err
	}
	closers = append(closers, func() error { return database.Close(db) })
	if err := database.Migrate(db); err != nil {
		cleanup()
		return nil, func() {}, err
	}
	log.Infow("database ready", "driver", cfg.DBDriver)

	// --- Optional integrations ---
	var scanOpts []services.ScanServiceOption
	if cfg.RabbitMQURL != "" {
		mq, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Exchange: cfg.RabbitMQExchange}, log.Named("rabbitmq"))
		if err != nil {
			log.Warnw("continuing without scan events", "error", err)
		} else {
			closers = append(closers, mq.Close)
			scanOpts = append(scanOpts, services.WithPublisher(mq))
		}
	}
	if cfg.S3Bucket != "" {
		store, err := objectstore.New(context.Background(), objectstore.Config{
			Bucket:        cfg.S3Bucket,
			Region:        cfg.S3Region,
			Endpoint:      cfg.S3Endpoint,
			AccessKey:     cfg.S3AccessKey,
			SecretKey:     cfg.S3SecretKey,
			PublicBaseURL: cfg.S3PublicBaseURL,
		})
		if err != nil {
			log.Warnw("continuing without image offload", "error", err)
		} else {
			scanOpts = append(scanOpts, services.WithImageStore(store))
		}
	}
	var limiterStorage fiber.Storage
	if cfg.RedisAddr != "" {
		rs, err := redisstore.New(redisstore.Config{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB, Prefix: "ecoscan:ratelimit:"})
		if err != nil {
			log.Warnw("rate limiting with in-memory counters", "error", err)
		} else {
			closers = append(closers, rs.Close)
			limiterStorage = rs
		}
	}

	// --- Repositories ---
	userRepo := repositories.NewGORMUserRepository(db)
	sessionRepo := repositories.NewGORMSessionRepository(db)
	scanRepo := repositories.NewGORMScanRepository(db)
	leaderboardRepo := repositories.NewGORMLeaderboardRepository(db)
	statsRepo := repositories.NewGORMStatsRepository(db)

	// --- Services ---
	authService := services.NewAuthService(userRepo, sessionRepo, services.AuthConfig{
		Secret:     cfg.JWTSecret,
		TTL:        cfg.JWTTTL,
		BcryptCost: cfg.BcryptCost,
	}, log)
	scanService := services.NewScanService(scanRepo, log, scanOpts...)
	leaderboardService := services.NewLeaderboardService(leaderboardRepo, log)
	analyticsService := services.NewAnalyticsService(statsRepo, userRepo, nil, log)

	app := router.New(router.Deps{
		Config:         &cfg,
		Log:            log,
		Auth:           authService,
		Scans:          scanService,
		Leaderboard:    leaderboardService,
		Analytics:      analyticsService,
		LimiterStorage: limiterStorage,
		StartedAt:      startedAt,
	})
	return app, cleanup, nil
}
