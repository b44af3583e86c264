package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"
	"github.com/localnerve/medrecords/internal/attachments"
	"github.com/localnerve/medrecords/internal/config"
	"github.com/localnerve/medrecords/internal/database"
	"github.com/localnerve/medrecords/internal/handlers"
	"github.com/localnerve/medrecords/internal/logging"
	"github.com/localnerve/medrecords/internal/middleware"
	"github.com/localnerve/medrecords/internal/services"
	"go.uber.org/zap"

	_ "github.com/localnerve/medrecords/docs/api" // Swagger docs
)

// @title MedRecords API
// @version 1.0.0
// @description Occupational medical records with sections, signatures, studies and attachments
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/localnerve/medrecords
// @contact.email info@localnerve.com

// @license.name AGPL-3.0
// @license.url https://www.gnu.org/licenses/agpl-3.0.html

// @host localhost:3000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name Authorization

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.ValidateServer(); err != nil {
		log.Fatalf("Invalid server configuration: %v", err)
	}

	zl, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if err := run(cfg, zl); err != nil {
		zl.Fatal("server failed", zap.Error(err))
	}
	zl.Info("server stopped")
}

func run(cfg *config.Config, zl *zap.Logger) error {
	ctx := context.Background()

	// Migrations run on the schema owning account
	adminDB, err := database.ConnectAdmin(cfg, zl)
	if err != nil {
		return err
	}
	if err := database.AutoMigrate(adminDB); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	if err := database.Close(adminDB); err != nil {
		zl.Warn("failed to close admin pool", zap.Error(err))
	}

	// Connect to database (app pool)
	db, err := database.Connect(cfg, zl)
	if err != nil {
		return err
	}
	defer database.Close(db)

	store, err := attachments.New(ctx, cfg.Attachments, zl)
	if err != nil {
		return err
	}
	if err := store.Prepare(ctx); err != nil {
		return fmt.Errorf("attachment storage is not ready: %w", err)
	}

	redirectURL := cfg.AuthzRedirectURL
	if redirectURL == "" {
		redirectURL = "http://localhost:" + cfg.Port
	}
	authz, err := services.NewAuthorizerSessions(ctx, cfg, redirectURL, zl)
	if err != nil {
		return err
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler,
		BodyLimit:    cfg.BodyLimitMB * 1024 * 1024,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())

	// Prometheus metrics
	prometheus := fiberprometheus.New("medrecords")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	deps := handlers.Deps{
		Config:      cfg,
		DB:          db,
		Attachments: store,
		Log:         zl,
		Services:    services.NewRegistry(db, store, zl),
		Auth:        &services.Sessions{Validator: authz, DB: db},
	}

	// API routes under /api
	api := app.Group("/api", middleware.VersionMiddleware())
	handlers.Register(api, deps)
	handlers.RegisterFiles(app, deps)

	// 404 handler
	app.Use(handlers.NotFound)

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		zl.Info("gracefully shutting down")
		_ = app.Shutdown()
	}()

	// Start server
	zl.Info("starting server", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
	return app.Listen(":" + cfg.Port)
}
