package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/ledgerly/ledgerly/internal/auth"
	"github.com/ledgerly/ledgerly/internal/cloudsync"
	"github.com/ledgerly/ledgerly/internal/config"
	"github.com/ledgerly/ledgerly/internal/logger"
	"github.com/ledgerly/ledgerly/internal/recurrence"
	"github.com/ledgerly/ledgerly/internal/store"
)

// The worker owns the time-driven passes: the daily recurring transaction
// catch-up and, when cloud sync is configured and enabled, a daily full sync.
func main() {
	var configPath = flag.String("config", "", "Path to config file (default: config.yaml in working directory)")
	flag.Parse()

	log := logger.New()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	if level, err := zerolog.ParseLevel(cfg.Log.Level); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	ctx, cancel := context.WithCancel(logger.WithContext(context.Background(), log))
	defer cancel()

	db, err := store.Open(cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Database.Path).Msg("Failed to open database")
	}
	defer db.Close()

	log.Info().Msg("Starting worker service")

	scheduler := recurrence.NewScheduler()
	defer scheduler.Stop()

	// Run the recurring catch-up once at startup so a long-stopped worker
	// backfills immediately, then daily.
	processor := recurrence.NewProcessor(db)
	if err := processor.ProcessAll(ctx); err != nil {
		log.Error().Err(err).Msg("Initial recurring pass failed")
	}
	scheduler.ScheduleDaily(ctx, recurrence.TaskRecurringTransactions, recurrence.DefaultInitialDelay, processor.ProcessAll)

	if cfg.Sync.ProjectID != "" {
		remote, err := cloudsync.NewFirestoreStore(ctx, cfg.Sync.ProjectID)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create remote document store")
		}
		defer remote.Close()

		provider := auth.StaticProvider{UserID: cfg.Sync.UserID}
		engine := cloudsync.NewEngine(db, remote, provider)
		manager := cloudsync.NewManager(engine, db, provider)

		scheduler.ScheduleDaily(ctx, "cloud_sync_work", recurrence.DefaultInitialDelay,
			func(ctx context.Context) error {
				enabled, err := manager.IsCloudSyncEnabled(ctx)
				if err != nil {
					return err
				}
				if !enabled {
					return nil
				}
				_, err = manager.SyncAll(ctx)
				return err
			})
	} else {
		log.Warn().Msg("No GCP project configured - cloud sync is disabled")
	}

	log.Info().Msg("Worker service started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down worker service...")
	cancel()
	scheduler.Stop()
	log.Info().Msg("Worker service exited")
}
