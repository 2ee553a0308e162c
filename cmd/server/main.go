package main

import (
	"context"
	"log"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"charkeep/internal/config"
	"charkeep/internal/database"
	"charkeep/internal/database/migration"
	handlers "charkeep/internal/http/handler"
	"charkeep/internal/http/middleware"
	"charkeep/internal/http/view"
	"charkeep/internal/otel"
	"charkeep/internal/repository"
	"charkeep/internal/repository/fsjson"
	"charkeep/internal/repository/sqlite"
	"charkeep/internal/service"
	"charkeep/internal/storage"
)

func main() {
	ctx := context.Background()

	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	// Initialize OpenTelemetry tracing (no-op when OTEL_SDK_DISABLED=true)
	shutdown, err := otel.Init(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer func() {
		if err := shutdown(ctx); err != nil {
			log.Printf("failed to shut down tracer provider: %v", err)
		}
	}()

	// Character record store: flat-file JSON or embedded SQLite
	var repo repository.CharacterRepository
	switch cfg.Store.Backend {
	case "sqlite":
		db, err := database.NewSQLite(cfg.Store)
		if err != nil {
			log.Fatalf("failed to open record database: %v", err)
		}
		defer db.Close()

		if err := migration.EnsureMigrated(ctx, db, cfg.Store.SQLitePath); err != nil {
			log.Fatalf("failed to migrate record database: %v", err)
		}

		repo = sqlite.NewCharacterSQLite(db)
	default:
		fsRepo, err := fsjson.NewCharacterFS(cfg.Store.DataDir)
		if err != nil {
			log.Fatalf("failed to initialize record store: %v", err)
		}
		repo = fsRepo
	}

	// Portrait storage: local upload directory or S3-compatible object storage
	var store storage.Storage
	switch cfg.Upload.Backend {
	case "s3":
		store, err = storage.NewMinIO(cfg.MinIO)
		if err != nil {
			log.Fatalf("failed to initialize object storage: %v", err)
		}
	default:
		store, err = storage.NewLocal(cfg.Upload.Dir)
		if err != nil {
			log.Fatalf("failed to initialize portrait storage: %v", err)
		}
	}

	svc := service.NewCharacterService(store, repo, cfg.Upload.AllowedExts)

	engine, err := view.NewEngine()
	if err != nil {
		log.Fatalf("failed to load templates: %v", err)
	}

	app := fiber.New(fiber.Config{
		Views:        engine,
		ErrorHandler: handlers.ErrorHandler(),
	})

	// Register global middleware
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.Logger())
	app.Use(otelfiber.Middleware())

	// Prometheus metrics on a dedicated registry
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		log.Fatalf("failed to initialize metrics: %v", err)
	}
	app.Use(promMiddleware.Handler())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// Register HTTP routes with injected service
	handlers.RegisterRoutes(app, svc)

	addr := ":" + cfg.Port

	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
