package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/flood-crcl-service/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/flood-crcl-service/internal/adapter/kafka"
	"github.com/couchcryptid/flood-crcl-service/internal/adapter/sensorthings"
	"github.com/couchcryptid/flood-crcl-service/internal/config"
	"github.com/couchcryptid/flood-crcl-service/internal/observability"
	"github.com/couchcryptid/flood-crcl-service/internal/pipeline"
	"github.com/couchcryptid/flood-crcl-service/internal/report"
	"github.com/joho/godotenv"
)

func main() {
	// A .env file is optional; real environment variables take precedence.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	client := sensorthings.NewClient(cfg, logger)
	source := sensorthings.NewCachedSource(client, cfg.SectionCacheTTL, metrics)
	writer := kafkaadapter.NewWriter(cfg, logger)
	builder := report.NewBuilder(report.Options{
		District:       cfg.ReportDistrict,
		Language:       cfg.ReportLanguage,
		RegionPosition: cfg.RegionPosition,
	})

	runner := pipeline.New(source, writer, builder, pipeline.Options{
		Topic:    cfg.KafkaTopic,
		Exponent: cfg.PowerMeanExponent,
	}, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("crisis classification starting",
		"sensorthings_url", cfg.SensorThingsURL,
		"forecast_mode", cfg.ForecastMode,
		"exponent", cfg.PowerMeanExponent,
		"run_interval", cfg.RunInterval,
	)

	// One-shot batch: classify, publish, exit.
	if cfg.RunInterval == 0 {
		err := runner.Run(ctx, 0)
		if cerr := writer.Close(); cerr != nil {
			logger.Error("kafka writer close error", "error", cerr)
		}
		if err != nil {
			logger.Error("classification run failed", "error", err)
			os.Exit(1)
		}
		return
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, runner, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	go func() {
		if err := runner.Run(ctx, cfg.RunInterval); err != nil {
			logger.Error("runner error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}
