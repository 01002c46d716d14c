package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/ledgerly/ledgerly/internal/api/handlers"
	"github.com/ledgerly/ledgerly/internal/api/middleware"
	"github.com/ledgerly/ledgerly/internal/auth"
	"github.com/ledgerly/ledgerly/internal/backup"
	"github.com/ledgerly/ledgerly/internal/budget"
	"github.com/ledgerly/ledgerly/internal/cloudsync"
	"github.com/ledgerly/ledgerly/internal/config"
	"github.com/ledgerly/ledgerly/internal/jobs"
	"github.com/ledgerly/ledgerly/internal/jobs/inmemory"
	"github.com/ledgerly/ledgerly/internal/logger"
	"github.com/ledgerly/ledgerly/internal/recurrence"
	"github.com/ledgerly/ledgerly/internal/store"
)

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

	ctx := context.Background()

	db, err := store.Open(cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Database.Path).Msg("Failed to open database")
	}
	defer db.Close()

	provider := auth.StaticProvider{UserID: cfg.Sync.UserID}

	// Sync is optional: without a GCP project there is no remote store and
	// the sync endpoints are not registered.
	var (
		manager  *cloudsync.Manager
		remote   *cloudsync.FirestoreStore
		budgets  = budget.NewService(db)
		recProc  = recurrence.NewProcessor(db)
		jobStore = inmemory.NewStore()
		jobQueue = inmemory.NewQueue(100, jobStore)
	)
	if cfg.Sync.ProjectID != "" {
		remote, err = cloudsync.NewFirestoreStore(ctx, cfg.Sync.ProjectID)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create remote document store")
		}
		defer remote.Close()

		engine := cloudsync.NewEngine(db, remote, provider)
		manager = cloudsync.NewManager(engine, db, provider)
	} else {
		log.Warn().Msg("No GCP project configured - cloud sync is disabled")
	}

	// Start worker in background to process jobs
	workerCtx, cancelWorker := context.WithCancel(logger.WithContext(ctx, log))
	defer cancelWorker()

	jobHandler := func(ctx context.Context, job *jobs.Job) error {
		switch job.Type {
		case jobs.JobTypeFullSync:
			if manager == nil {
				log.Warn().Str("job_id", job.JobID).Msg("Dropping sync job, cloud sync is disabled")
				return nil
			}
			result, err := manager.SyncAll(ctx)
			job.SyncResult = &result
			if err != nil {
				return err
			}
			return nil
		case jobs.JobTypeProcessRecurring:
			return recProc.ProcessAll(ctx)
		default:
			log.Warn().Str("type", string(job.Type)).Msg("Unknown job type")
			return nil
		}
	}

	go func() {
		log.Info().Msg("Starting job worker")
		if err := jobQueue.Start(workerCtx, jobHandler); err != nil {
			log.Error().Err(err).Msg("Job worker stopped with error")
		}
	}()

	// Daily catch-up pass for recurring transactions.
	scheduler := recurrence.NewScheduler()
	scheduler.ScheduleDaily(workerCtx, recurrence.TaskRecurringTransactions, recurrence.DefaultInitialDelay,
		func(ctx context.Context) error {
			return jobQueue.Publish(ctx, &jobs.Job{Type: jobs.JobTypeProcessRecurring, TriggeredBy: "schedule"})
		})
	defer scheduler.Stop()

	// Initialize handlers
	transactionsHandler := handlers.NewTransactionsHandler(db, log)
	budgetsHandler := handlers.NewBudgetsHandler(budgets, log)
	recurringHandler := handlers.NewRecurringHandler(db, log)
	summaryHandler := handlers.NewSummaryHandler(db, log)

	mux := http.NewServeMux()

	// Transactions endpoints
	mux.HandleFunc("/api/transactions", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			transactionsHandler.List(w, r)
		case http.MethodPost:
			transactionsHandler.Create(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/transactions/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/api/transactions/")
		if id == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Transaction ID is required")
			return
		}
		switch r.Method {
		case http.MethodGet:
			transactionsHandler.Get(w, r, id)
		case http.MethodPut:
			transactionsHandler.Update(w, r, id)
		case http.MethodDelete:
			transactionsHandler.Delete(w, r, id)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Budgets endpoints
	mux.HandleFunc("/api/budgets", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			budgetsHandler.List(w, r)
		case http.MethodPost:
			budgetsHandler.Set(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/budgets/refresh", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			budgetsHandler.Refresh(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/budgets/", func(w http.ResponseWriter, r *http.Request) {
		category := strings.TrimPrefix(r.URL.Path, "/api/budgets/")
		if category == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Category is required")
			return
		}
		if r.Method == http.MethodDelete {
			budgetsHandler.Delete(w, r, category)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Recurring transaction endpoints
	mux.HandleFunc("/api/recurring", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			recurringHandler.List(w, r)
		case http.MethodPost:
			recurringHandler.Create(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/recurring/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/api/recurring/")
		if id == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Recurring transaction ID is required")
			return
		}
		switch r.Method {
		case http.MethodPut:
			recurringHandler.Update(w, r, id)
		case http.MethodDelete:
			recurringHandler.Delete(w, r, id)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Summary endpoints
	mux.HandleFunc("/api/summary/top-expenses", requireGet(summaryHandler.TopExpenses))
	mux.HandleFunc("/api/summary/by-category", requireGet(summaryHandler.ByCategory))
	mux.HandleFunc("/api/summary/income-vs-expense", requireGet(summaryHandler.IncomeVsExpense))
	mux.HandleFunc("/api/summary/trends", requireGet(summaryHandler.Trends))

	// Sync endpoints, only when a remote store is configured.
	if manager != nil {
		syncHandler := handlers.NewSyncHandler(manager, jobQueue, jobStore, log)

		mux.HandleFunc("/api/sync", func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost {
				syncHandler.Trigger(w, r)
			} else {
				middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			}
		})
		mux.HandleFunc("/api/sync/jobs", requireGet(syncHandler.ListJobs))
		mux.HandleFunc("/api/sync/jobs/", func(w http.ResponseWriter, r *http.Request) {
			jobID := strings.TrimPrefix(r.URL.Path, "/api/sync/jobs/")
			if jobID == "" {
				middleware.WriteError(w, http.StatusBadRequest, "Job ID is required")
				return
			}
			if r.Method == http.MethodGet {
				syncHandler.GetJob(w, r, jobID)
			} else {
				middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			}
		})
		mux.HandleFunc("/api/sync/status", requireGet(syncHandler.Status))
		mux.HandleFunc("/api/sync/enabled", func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPut {
				syncHandler.SetEnabled(w, r)
			} else {
				middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			}
		})
	}

	// Backup endpoints, only when a bucket is configured.
	if cfg.Backup.Bucket != "" {
		backupsHandler := handlers.NewBackupsHandler(
			backup.NewService(db, backup.NewGCSStorage(cfg.Backup.Bucket)), log)

		mux.HandleFunc("/api/backups", func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost {
				backupsHandler.Create(w, r)
			} else {
				middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			}
		})
		mux.HandleFunc("/api/backups/restore", func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost {
				backupsHandler.Restore(w, r)
			} else {
				middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			}
		})
	} else {
		log.Warn().Msg("No backup bucket configured - snapshots are disabled")
	}

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Apply middleware
	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(mux),
			),
		),
	)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("address", cfg.Server.Address).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	cancelWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	// Stop job queue and wait for in-flight jobs
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}

	log.Info().Msg("Server exited")
}

func requireGet(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			h(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	}
}
