// Command trp-report serves the valuation engine's persisted run
// artifacts over HTTP: run manifests, enriched hitters/pitchers JSON, and
// position pool summaries. It is read-only — it never triggers a run or
// writes to the output directory.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"isxcli/internal/app"
	"isxcli/internal/config"
	apierrors "isxcli/internal/errors"
	"isxcli/internal/infrastructure"
	customMiddleware "isxcli/internal/middleware"
	reporthttp "isxcli/internal/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("failed to initialize structured logger, falling back to default", slog.String("error", err.Error()))
		logger = slog.Default()
	}

	paths, err := config.GetPaths(cfg.Paths)
	if err != nil {
		logger.Error("failed to resolve paths", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := paths.EnsureDirectories(); err != nil {
		logger.Error("failed to create required directories", slog.String("error", err.Error()))
		os.Exit(1)
	}

	otelCfg := infrastructure.DefaultOTelConfig()
	otelCfg.TraceExporter = cfg.OTel.TraceExporter
	otelCfg.MetricExporter = cfg.OTel.MetricExporter
	otelCfg.SampleRatio = cfg.OTel.SampleRatio
	otelProviders, err := infrastructure.InitializeOTel(otelCfg, logger)
	if err != nil {
		logger.Warn("failed to initialize OpenTelemetry, continuing without tracing/metrics", slog.String("error", err.Error()))
	}

	router := setupRouter(paths, cfg, logger)
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Report.Port),
		Handler:      router,
		ReadTimeout:  cfg.Report.ReadTimeout,
		WriteTimeout: cfg.Report.WriteTimeout,
	}

	lifecycle := app.New(server, logger, cfg.Report.ShutdownTimeout)
	if otelProviders != nil {
		lifecycle.OnShutdown(otelProviders.Shutdown)
	}

	if err := lifecycle.Run(); err != nil {
		logger.Error("reporting server exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func setupRouter(paths *config.Paths, cfg *config.Config, logger *slog.Logger) chi.Router {
	r := chi.NewRouter()
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.StructuredLogger(logger))
	r.Use(customMiddleware.Recoverer(logger))
	r.Use(customMiddleware.SecurityHeaders)
	r.Use(customMiddleware.CORS(customMiddleware.CORSConfig{
		AllowedOrigins: cfg.Report.AllowedOrigins,
		Logger:         logger,
	}))

	errorHandler := apierrors.NewErrorHandler(logger, cfg.Logging.Development)
	reportHandler := reporthttp.NewReportHandler(paths, logger, errorHandler)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(customMiddleware.Timeout(cfg.Report.ReadTimeout, logger))

		r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
			render.JSON(w, req, map[string]string{
				"status": "ok",
				"time":   time.Now().UTC().Format(time.RFC3339),
			})
		})

		r.Mount("/", reportHandler.Routes())
	})

	return r
}
