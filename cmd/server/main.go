package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/fieldscope/land-quality-service/internal/adapter/advisor"
	"github.com/fieldscope/land-quality-service/internal/adapter/agro"
	"github.com/fieldscope/land-quality-service/internal/adapter/httpapi"
	kafkaadapter "github.com/fieldscope/land-quality-service/internal/adapter/kafka"
	"github.com/fieldscope/land-quality-service/internal/assess"
	"github.com/fieldscope/land-quality-service/internal/config"
	"github.com/fieldscope/land-quality-service/internal/domain"
	"github.com/fieldscope/land-quality-service/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	agroClient := agro.NewClient(cfg.AgroAPIKey, cfg.AgroBaseURL, cfg.AgroTimeout, metrics, logger)
	polygons := agro.NewCachedPolygonCreator(agroClient, cfg.PolygonCacheSize, metrics)

	// Generative advisor is feature-flagged; without it scoring falls back to
	// the deterministic heuristic.
	var adv domain.Advisor
	if cfg.AdvisorEnabled {
		adv = advisor.NewClient(cfg.AdvisorAPIKey, cfg.AdvisorBaseURL, cfg.AdvisorModel, cfg.AdvisorTimeout, logger)
		metrics.AdvisorEnabled.Set(1)
		logger.Info("advisor enabled", "model", cfg.AdvisorModel, "timeout", cfg.AdvisorTimeout)
	} else {
		logger.Info("advisor disabled, using heuristic scoring")
	}

	var publisher assess.ResultPublisher
	var kafkaPublisher *kafkaadapter.Publisher
	if cfg.KafkaEnabled {
		kafkaPublisher = kafkaadapter.NewPublisher(cfg.KafkaBrokers, cfg.KafkaResultsTopic, logger)
		publisher = kafkaPublisher
		metrics.PublisherEnabled.Set(1)
		logger.Info("kafka publisher enabled", "topic", cfg.KafkaResultsTopic)
	} else {
		logger.Info("kafka publisher disabled")
	}

	service := assess.NewService(polygons, agroClient, agroClient, adv, publisher, nil, logger, metrics)
	comparer := assess.NewComparer(service, logger, metrics)

	srv := httpapi.NewServer(cfg.HTTPAddr, service, comparer, service, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if kafkaPublisher != nil {
		if err := kafkaPublisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
