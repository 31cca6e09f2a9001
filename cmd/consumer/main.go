package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
	"github.com/spec-kit/helpdesk-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	go serveMetrics(cfg.Metrics.Addr, metrics, logger)

	dedup := worker.NewRedisDeduper(redis.Client, 24*time.Hour)
	processor := worker.NewProcessor(dedup, logger, metrics)

	ticketWorker, err := worker.NewTicketWorker(cfg.RabbitMQ, processor, logger, metrics)
	if err != nil {
		logger.Fatal("failed to start ticket worker", zap.Error(err))
	}
	defer ticketWorker.Close()

	if err := ticketWorker.Run(ctx); err != nil {
		logger.Fatal("ticket worker stopped", zap.Error(err))
	}
	logger.Info("ticket worker drained and stopped")
}

func serveMetrics(addr string, metrics *observability.Metrics, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Warn("metrics endpoint stopped", zap.Error(err))
	}
}
