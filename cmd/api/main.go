package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/siyabuilds/carbontrackr-backend/internal/api"
	"github.com/siyabuilds/carbontrackr-backend/internal/auth"
	"github.com/siyabuilds/carbontrackr-backend/internal/config"
	"github.com/siyabuilds/carbontrackr-backend/internal/domain"
	"github.com/siyabuilds/carbontrackr-backend/internal/outbox"
	persistence "github.com/siyabuilds/carbontrackr-backend/internal/persistence/postgres"
	httptransport "github.com/siyabuilds/carbontrackr-backend/internal/transport/http"
	"github.com/siyabuilds/carbontrackr-backend/pkg/logger"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to postgres")
	}
	defer pool.Close()

	repo := persistence.NewRepository(pool)
	producer := outbox.NewKafkaProducer(cfg.KafkaBrokers)
	defer producer.Close()

	registry := outbox.NewRegistryClient(cfg.SchemaRegistryURL)
	dispatcher := outbox.NewDispatcher(pool, producer, registry, log, cfg.OutboxPollInterval, cfg.OutboxBatchSize)

	go dispatcher.Start(ctx)

	service := domain.NewService(repo, domain.Config{TipShareThreshold: cfg.TipShareThreshold})

	authCfg := auth.Config{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer, TTL: cfg.JWTTTL}
	handler := api.NewHandler(service, repo, authCfg)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	mux.Handle("/metrics", promhttp.Handler())

	authMiddleware := auth.NewMiddleware(authCfg, func(r *http.Request) bool {
		switch r.URL.Path {
		case "/healthz", "/metrics", "/v1/auth/register", "/v1/auth/login":
			return true
		}
		return r.Method == http.MethodOptions
	})

	chain := authMiddleware.Wrap(mux)
	chain = httptransport.RequestLogger(log)(chain)
	chain = httptransport.CORS(cfg.CORSOrigin)(chain)

	server := httptransport.NewServer(httptransport.ServerConfig{
		Address:      cfg.HTTPAddress,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}, chain)

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.WithFields(logrus.Fields{
			"address": cfg.HTTPAddress,
			"brokers": strings.Join(cfg.KafkaBrokers, ","),
		}).Info("carbontrackr api listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server error")
		}
	}()

	<-shutdownCh
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("graceful shutdown failed")
	}

	dispatcher.Wait()
}
