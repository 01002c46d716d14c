package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/ledgerly/ledgerly/internal/auth"
	"github.com/ledgerly/ledgerly/internal/cloudsync"
	"github.com/ledgerly/ledgerly/internal/config"
	"github.com/ledgerly/ledgerly/internal/logger"
	"github.com/ledgerly/ledgerly/internal/store"
)

// One-shot full sync against the remote document store, for cron jobs and
// manual runs.
func main() {
	log := logger.New()

	configPath := flag.String("config", "", "Path to config file (default: config.yaml in working directory)")
	projectID := flag.String("project", "", "GCP project ID (overrides config)")
	userID := flag.String("user", "", "User ID to sync as (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	if *projectID != "" {
		cfg.Sync.ProjectID = *projectID
	}
	if *userID != "" {
		cfg.Sync.UserID = *userID
	}

	if cfg.Sync.ProjectID == "" {
		log.Fatal().Msg("Error: a GCP project is required (--project or sync.project_id)")
	}
	if cfg.Sync.UserID == "" {
		log.Fatal().Msg("Error: a user ID is required (--user or sync.user_id)")
	}

	// Bounded so the CLI doesn't hang on a wedged network.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	db, err := store.Open(cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Database.Path).Msg("Failed to open database")
	}
	defer db.Close()

	remote, err := cloudsync.NewFirestoreStore(ctx, cfg.Sync.ProjectID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create remote document store")
	}
	defer remote.Close()

	provider := auth.StaticProvider{UserID: cfg.Sync.UserID}
	engine := cloudsync.NewEngine(db, remote, provider)
	manager := cloudsync.NewManager(engine, db, provider)

	log.Info().
		Str("project_id", cfg.Sync.ProjectID).
		Str("user_id", cfg.Sync.UserID).
		Msg("Starting full sync")

	result, err := manager.SyncAll(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Sync failed")
	}
	if !result.IsSuccessful() {
		log.Fatal().
			Str("transactions", result.Transactions.Err).
			Str("budgets", result.Budgets.Err).
			Str("recurring", result.RecurringTransactions.Err).
			Msg("Sync completed with failures")
	}

	fmt.Printf("Sync completed successfully: %d transactions, %d budgets, %d recurring definitions.\n",
		result.Transactions.SyncedCount,
		result.Budgets.SyncedCount,
		result.RecurringTransactions.SyncedCount)
}
