package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	httpapi "github.com/i474232898/radar-vs-measurement/internal/api/http"
	"github.com/i474232898/radar-vs-measurement/internal/chart"
	"github.com/i474232898/radar-vs-measurement/internal/config"
	"github.com/i474232898/radar-vs-measurement/internal/metrics"
	"github.com/i474232898/radar-vs-measurement/internal/scheduler"
	"github.com/i474232898/radar-vs-measurement/internal/store"
	"github.com/i474232898/radar-vs-measurement/internal/weather"
	"github.com/i474232898/radar-vs-measurement/internal/weather/providers"
)

const appName = "radar-vs-measurement"

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	log := newLogger(cfg.AppEnv, cfg.LogLevel)
	slog.SetDefault(log)

	// Metrics registry served on /metrics.
	registry := prometheus.NewRegistry()
	m := metrics.New()
	registry.MustRegister(
		m,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// Shared HTTP client for upstream calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Upstream source: two MDX requests joined by one barrier.
	fetcher := providers.NewFetcher(httpClient, m)
	source := providers.NewMeteotestClient(fetcher, providers.MeteotestConfig{
		BaseURL:           cfg.APIURL,
		APIKey:            cfg.APIKey,
		Service:           cfg.Service,
		Format:            cfg.Format,
		MeasurementAction: cfg.MeasurementAction,
		RadarAction:       cfg.RadarAction,
	})

	// In-memory report store with configured retention.
	memStore := store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge)

	service := weather.NewService(source, memStore, weather.ServiceConfig{
		Sources: cfg.Sources,
		Align: weather.AlignOptions{
			RadarCorrection: cfg.RadarCorrection,
			OnTie:           cfg.TiePolicy,
		},
		Metrics: m,
		Logger:  log,
	})

	// Scheduler that periodically produces comparison reports.
	sched := scheduler.New(service, cfg.ReportInterval, log)
	if err := sched.Start(); err != nil {
		log.Error("failed to start scheduler", "err", err)
		os.Exit(1)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               appName,
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          cfg.HTTPTimeout + 10*time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			if code >= fiber.StatusInternalServerError {
				log.Error("request failed", "method", c.Method(), "path", c.Path(), "status", code, "err", err)
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
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": appName,
		})
	})

	httpapi.RegisterRoutes(app, service, chart.NewRenderer(), registry)

	go func() {
		log.Info("listening", "port", cfg.Port, "env", cfg.AppEnv)
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

func newLogger(env string, level slog.Level) *slog.Logger {
	if env == "prod" {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
}
