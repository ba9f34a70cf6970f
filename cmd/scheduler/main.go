// The scheduler binary closes out finished weeks: shortly after each week
// rolls over it generates the previous week's summary for every user.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/siyabuilds/carbontrackr-backend/internal/config"
	"github.com/siyabuilds/carbontrackr-backend/internal/domain"
	persistence "github.com/siyabuilds/carbontrackr-backend/internal/persistence/postgres"
	"github.com/siyabuilds/carbontrackr-backend/internal/scheduler"
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
	service := domain.NewService(repo, domain.Config{TipShareThreshold: cfg.TipShareThreshold})

	sched := scheduler.NewWeeklyScheduler(service, repo, log, cfg.SummaryCronSpec)
	if err := sched.Start(); err != nil {
		log.WithError(err).Fatal("failed to start scheduler")
	}

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	<-shutdownCh

	sched.Stop()
}
