package lifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/opengovern/og-util/pkg/httpserver"
	"github.com/opengovern/og-util/pkg/jq"
	"github.com/opengovern/og-util/pkg/koanf"
	"github.com/opengovern/og-util/pkg/postgres"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/greenbasket/engine/pkg/utils"
	"github.com/greenbasket/engine/services/lifecycle/config"
	"github.com/greenbasket/engine/services/lifecycle/db"
	"github.com/greenbasket/engine/services/lifecycle/generator"
	"github.com/greenbasket/engine/services/lifecycle/resolver"
	"github.com/greenbasket/engine/services/lifecycle/scheduler"
)

func Command() *cobra.Command {
	return &cobra.Command{
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return start(cmd.Context())
		},
	}
}

// start wires the engine together: postgres-backed storage, the tick-driven
// lifecycle scheduler, the NATS event publisher, and the read/cancel HTTP
// surface.
func start(ctx context.Context) error {
	cfg := koanf.Provide("lifecycle", config.Config{
		Postgres: koanf.Postgres{
			Host:     "localhost",
			Port:     "5432",
			Username: "postgres",
		},
		Http: koanf.HttpServer{
			Address: "localhost:8000",
		},
		Scheduler: config.SchedulerConfig{
			TickInterval:        time.Minute,
			PendingToProcessing: 15 * time.Minute,
			ProcessingToShipped: time.Hour,
			ShippedToDelivered:  4 * time.Hour,
			WorkerCount:         8,
			EntityTimeout:       10 * time.Second,
		},
	})

	logger, err := zap.NewProduction()
	if err != nil {
		return err
	}
	logger = logger.Named("lifecycle")

	orm, err := postgres.NewClient(&postgres.Config{
		Host:    cfg.Postgres.Host,
		Port:    cfg.Postgres.Port,
		User:    cfg.Postgres.Username,
		Passwd:  cfg.Postgres.Password,
		DB:      cfg.Postgres.DB,
		SSLMode: cfg.Postgres.SSLMode,
	}, logger)
	if err != nil {
		return fmt.Errorf("new postgres client: %w", err)
	}

	database := db.Database{ORM: orm}
	if err := database.Initialize(); err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}

	var publisher scheduler.EventPublisher
	if cfg.NATS.URL != "" {
		q, err := jq.New(cfg.NATS.URL, logger)
		if err != nil {
			return fmt.Errorf("new job queue: %w", err)
		}
		publisher, err = scheduler.NewNatsPublisher(ctx, logger, q)
		if err != nil {
			return fmt.Errorf("new nats publisher: %w", err)
		}
	} else {
		logger.Warn("nats url not configured, lifecycle events disabled")
	}

	lifecycleScheduler := scheduler.New(
		logger,
		database,
		resolver.New(logger, database),
		generator.New(logger, database, database),
		publisher,
		cfg.Scheduler,
	)
	utils.EnsureRunGoroutine(logger, func() {
		lifecycleScheduler.Run(ctx)
	})

	routes := &httpRoutes{
		logger: logger,
		db:     database,
	}
	return httpserver.RegisterAndStart(ctx, logger, cfg.Http.Address, routes)
}
