package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"

	"ecoscan/internal/config"
	"ecoscan/internal/handlers"
	"ecoscan/internal/middleware"
	"ecoscan/internal/services"
)

// Deps are the collaborators the HTTP surface is built from.
type Deps struct {
	Config      *config.Config
	Log         *zap.SugaredLogger
	Auth        *services.AuthService
	Scans       *services.ScanService
	Leaderboard *services.LeaderboardService
	Analytics   *services.AnalyticsService
	// LimiterStorage shares rate-limit counters between instances; nil keeps
	// them in memory.
	LimiterStorage fiber.Storage
	StartedAt      time.Time
}

// New builds the fiber app with global middleware and every route mounted.
func New(d Deps) *fiber.App {
	cfg := d.Config
	app := fiber.New(fiber.Config{
		AppName:      "ecoscan",
		BodyLimit:    cfg.BodyLimitBytes,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		ErrorHandler: handlers.ErrorHandler(cfg.IsProduction(), d.Log),
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(helmet.New(helmet.Config{CrossOriginResourcePolicy: "cross-origin"}))
	origins := cfg.FrontendURL
	if origins == "" {
		origins = "http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowCredentials: true,
		AllowMethods:     "GET,POST,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders:     "Content-Type,Authorization",
	}))
	app.Use(compress.New())
	if cfg.IsProduction() {
		app.Use(middleware.RequestLogger(d.Log.Named("http")))
	} else {
		app.Use(fiberlogger.New())
	}

	handlers.NewHealthHandler(d.StartedAt).RegisterRoutes(app)

	requireAuth := middleware.AuthRequired(d.Auth)
	optionalAuth := middleware.OptionalAuth(d.Auth)
	writeGuard := func(c *fiber.Ctx) error { return c.Next() }
	if cfg.LeaderboardWriteAuth {
		writeGuard = requireAuth
	}

	api := app.Group("/api", middleware.RateLimiter(cfg.RateLimitMax, cfg.RateLimitWindow, d.LimiterStorage))
	handlers.NewAuthHandler(d.Auth).RegisterRoutes(api, requireAuth)
	handlers.NewScanHandler(d.Scans).RegisterRoutes(api, requireAuth, optionalAuth)
	handlers.NewLeaderboardHandler(d.Leaderboard).RegisterRoutes(api, writeGuard)
	handlers.NewAnalyticsHandler(d.Analytics).RegisterRoutes(api, optionalAuth)

	app.Use(func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "Not Found - "+c.OriginalURL())
	})
	return app
}
