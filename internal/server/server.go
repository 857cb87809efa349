// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "findlost/docs" // swagger docs
	"findlost/internal/auth"
	"findlost/internal/config"
	"findlost/internal/database"
	"findlost/internal/middleware"
	"findlost/internal/models"
	"findlost/internal/notifications"
	"findlost/internal/repository"
	"findlost/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
)

// RootBanner is the body of GET /.
const RootBanner = "Find Lost Items Server Running Successfully."

// Server holds all dependencies and provides handlers
type Server struct {
	config          *config.Config
	store           *database.Handle
	redis           *redis.Client
	verifier        auth.Verifier
	app             *fiber.App
	promMiddleware  *fiberprometheus.FiberPrometheus
	notifier        *notifications.Notifier
	itemService     *service.ItemService
	recoveryService *service.RecoveryService
	userService     *service.UserService
}

// NewServer opens the store, Redis and the identity verifier from cfg.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	store, err := database.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	verifier, err := auth.NewVerifier(cfg)
	if err != nil {
		_ = store.Close(ctx)
		return nil, err
	}

	return NewServerWithDeps(cfg, store, notifications.Connect(cfg.RedisURL), verifier)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil; events are then dropped.
func NewServerWithDeps(cfg *config.Config, store *database.Handle, redisClient *redis.Client, verifier auth.Verifier) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if store == nil {
		return nil, errors.New("store handle is required")
	}
	if verifier == nil {
		return nil, errors.New("identity verifier is required")
	}

	repos := repository.New(store)
	notifier := notifications.NewNotifier(redisClient)

	return &Server{
		config:          cfg,
		store:           store,
		redis:           redisClient,
		verifier:        verifier,
		promMiddleware:  middleware.InitMetrics("findlost-api"),
		notifier:        notifier,
		itemService:     service.NewItemService(repos.Items, notifier),
		recoveryService: service.NewRecoveryService(repos.Recoveries, repos.Items, notifier),
		userService:     service.NewUserService(repos.Users),
	}, nil
}

// App returns the configured Fiber app, building it on first use.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}

	app := fiber.New(fiber.Config{
		AppName:      "Find Lost Items API",
		ErrorHandler: s.errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(models.ErrorResponse{Message: fe.Message})
	}
	middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
	return models.RespondWithError(c, models.NewInternalError(err))
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	app.Use(middleware.TracingMiddleware())

	// Context Middleware to propagate Request ID and Trace ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	app.Use(middleware.StructuredLogger())

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	// Fiber refuses credentials with a wildcard origin.
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,PATCH,DELETE,OPTIONS",
		AllowCredentials: origins != "*",
		MaxAge:           86400, // 24 hours
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/", s.Root)

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	app.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Find Lost Items Metrics Dashboard",
	}))

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Items
	app.Get("/items", s.GetItems)
	app.Get("/items/:id", s.GetItem)
	app.Post("/items", s.AuthRequired(), s.CreateItem)
	app.Patch("/items/:id", s.AuthRequired(), s.UpdateItem)
	app.Delete("/items/:id", s.AuthRequired(), s.DeleteItem)
	app.Get("/myItems/:userId", s.AuthRequired(), s.GetMyItems)

	// Recoveries
	app.Get("/recoverItems", s.OptionalAuth(), s.GetRecoveries)
	app.Post("/recoverItems", s.RecordRecovery)

	// User directory
	app.Get("/users", s.GetUsers)
	app.Post("/users", s.UpsertUser)
	app.Patch("/users", s.AuthRequired(), s.UpdateUser)
	app.Delete("/users/:id", s.AuthRequired(), s.DeleteUser)
}

// Root handles GET /
func (s *Server) Root(c *fiber.Ctx) error {
	return c.SendString(RootBanner)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. Redis is optional, so only
// the store decides readiness.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if err := s.store.Ping(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start starts the server
func (s *Server) Start() error {
	app := s.App()
	middleware.Logger.Info("Server starting", slog.String("port", s.config.Port))
	return app.Listen(":" + s.config.Port)
}

// Shutdown stops the HTTP server and closes the store and Redis.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if err := s.store.Close(ctx); err != nil {
		middleware.Logger.Error("error closing store", slog.String("error", err.Error()))
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", err.Error()))
		}
	}

	middleware.Logger.Info("Server shutdown complete")
	return nil
}
