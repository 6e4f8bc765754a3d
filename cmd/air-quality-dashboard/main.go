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

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/i474232898/air-quality-dashboard/internal/airquality"
	"github.com/i474232898/air-quality-dashboard/internal/airquality/sources"
	httpapi "github.com/i474232898/air-quality-dashboard/internal/api/http"
	"github.com/i474232898/air-quality-dashboard/internal/charts"
	"github.com/i474232898/air-quality-dashboard/internal/config"
	"github.com/i474232898/air-quality-dashboard/internal/logging"
	"github.com/i474232898/air-quality-dashboard/internal/scheduler"
	"github.com/i474232898/air-quality-dashboard/internal/store"
)

const appName = "air-quality-dashboard"

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	log := logging.New(cfg, appName)
	slog.SetDefault(log)

	// Shared HTTP client for fetching the dataset.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	source, err := sources.New(cfg.DatasetURL, httpClient, cfg.FetchRetries)
	if err != nil {
		log.Error("invalid dataset location", "err", err)
		os.Exit(1)
	}

	// In-memory snapshot store with configured retention.
	memStore := store.NewMemoryStore(cfg.StoreMaxHistory)

	service := airquality.NewService(memStore, source, log)

	// Without data there is nothing to render: a failed initial load is fatal.
	loadCtx, cancelLoad := context.WithTimeout(context.Background(), cfg.LoadTimeout)
	_, err = service.Load(loadCtx)
	cancelLoad()
	if err != nil {
		var perr *airquality.ParseError
		if errors.As(err, &perr) {
			log.Error("dataset has a malformed timestamp", "row", perr.Row, "value", perr.Value)
		}
		log.Error("failed to load dataset", "err", err)
		os.Exit(1)
	}

	// Optional periodic reload of the source.
	sched := scheduler.New(cfg.RefreshInterval, cfg.LoadTimeout, service, log)
	if err := sched.Start(); err != nil {
		log.Error("failed to start scheduler", "err", err)
		os.Exit(1)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               appName,
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			if code >= fiber.StatusInternalServerError {
				log.Error("request failed", "path", c.Path(), "status", code, "err", err)
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		resp := fiber.Map{
			"status":  "ok",
			"service": appName,
		}
		if ds, err := service.Current(); err == nil {
			resp["dataset"] = ds.ID
			resp["rows"] = ds.Rows
			resp["loadedAt"] = ds.LoadedAt
		}
		return c.JSON(resp)
	})

	// API routes.
	httpapi.RegisterRoutes(app, service, charts.New(cfg.ChartWidth, cfg.ChartHeight))

	go func() {
		log.Info("http server listening", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error("fiber server stopped", "err", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("error during shutdown", "err", err)
	}
}
