package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/ledgerly/ledgerly/internal/api/middleware"
	"github.com/ledgerly/ledgerly/internal/auth"
	"github.com/ledgerly/ledgerly/internal/cloudsync"
	"github.com/ledgerly/ledgerly/internal/jobs"
)

// SyncHandler handles cloud sync endpoints: triggering syncs as background
// jobs and exposing sync state.
type SyncHandler struct {
	manager   *cloudsync.Manager
	publisher jobs.Publisher
	jobStore  jobs.JobStore
	log       zerolog.Logger
}

// NewSyncHandler creates a new sync handler.
func NewSyncHandler(manager *cloudsync.Manager, publisher jobs.Publisher, jobStore jobs.JobStore, log zerolog.Logger) *SyncHandler {
	return &SyncHandler{
		manager:   manager,
		publisher: publisher,
		jobStore:  jobStore,
		log:       log,
	}
}

// Trigger handles POST /api/sync
// It enqueues a full sync job and returns its id immediately.
func (h *SyncHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	job := &jobs.Job{
		Type:        jobs.JobTypeFullSync,
		TriggeredBy: "api",
	}

	if err := h.publisher.Publish(r.Context(), job); err != nil {
		h.log.Error().Err(err).Msg("Failed to enqueue sync job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue sync job")
		return
	}

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.JobID,
		"status": string(job.Status),
	})
}

// GetJob handles GET /api/sync/jobs/:id
func (h *SyncHandler) GetJob(w http.ResponseWriter, r *http.Request, jobID string) {
	job, err := h.jobStore.GetJob(r.Context(), jobID)
	if err != nil {
		middleware.WriteError(w, http.StatusNotFound, "Job not found")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListJobs handles GET /api/sync/jobs
func (h *SyncHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	list, err := h.jobStore.ListJobs(r.Context(), jobs.JobFilter{
		Type:  jobs.JobTypeFullSync,
		Limit: 50,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list sync jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list sync jobs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  list,
		"count": len(list),
	})
}

// Status handles GET /api/sync/status
func (h *SyncHandler) Status(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	enabled, err := h.manager.IsCloudSyncEnabled(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to read sync toggle")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to read sync status")
		return
	}

	deviceID, err := h.manager.DeviceID(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to read device id")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to read sync status")
		return
	}

	lastSync, err := h.manager.LastSyncTime(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to read last sync time")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to read sync status")
		return
	}

	status := map[string]interface{}{
		"enabled":   enabled,
		"device_id": deviceID,
	}
	if !lastSync.IsZero() {
		status["last_sync"] = lastSync.UTC().Format(time.RFC3339)
	}

	middleware.WriteJSON(w, http.StatusOK, status)
}

// SetEnabled handles PUT /api/sync/enabled
// Enabling triggers an immediate synchronous sync; a failure rolls the
// toggle back and surfaces as an error.
func (h *SyncHandler) SetEnabled(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.manager.SetCloudSyncEnabled(r.Context(), req.Enabled); err != nil {
		if errors.Is(err, auth.ErrNotAuthenticated) {
			middleware.WriteError(w, http.StatusUnauthorized, "Sign in before enabling cloud sync")
			return
		}
		h.log.Error().Err(err).Bool("enabled", req.Enabled).Msg("Failed to change sync toggle")
		middleware.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]bool{"enabled": req.Enabled})
}
