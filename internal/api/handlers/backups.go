package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/ledgerly/ledgerly/internal/api/middleware"
	"github.com/ledgerly/ledgerly/internal/backup"
)

// BackupsHandler handles snapshot endpoints.
type BackupsHandler struct {
	svc *backup.Service
	log zerolog.Logger
}

// NewBackupsHandler creates a new backups handler.
func NewBackupsHandler(svc *backup.Service, log zerolog.Logger) *BackupsHandler {
	return &BackupsHandler{svc: svc, log: log}
}

// Create handles POST /api/backups
func (h *BackupsHandler) Create(w http.ResponseWriter, r *http.Request) {
	objectName, err := h.svc.Backup(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to write snapshot")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to write snapshot")
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, map[string]string{
		"object": objectName,
	})
}

// Restore handles POST /api/backups/restore
func (h *BackupsHandler) Restore(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Object string `json:"object"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Object == "" {
		middleware.WriteError(w, http.StatusBadRequest, "Object name is required")
		return
	}

	if err := h.svc.Restore(r.Context(), req.Object); err != nil {
		h.log.Error().Err(err).Str("object", req.Object).Msg("Failed to restore snapshot")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to restore snapshot")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"object": req.Object,
		"status": "restored",
	})
}
