package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"

	"github.com/ledgerly/ledgerly/internal/api/middleware"
	"github.com/ledgerly/ledgerly/internal/domain"
	"github.com/ledgerly/ledgerly/internal/store"
)

// recurringRequest is the JSON body for creating or updating a recurring
// transaction definition.
type recurringRequest struct {
	Category      string   `json:"category"`
	Amount        float64  `json:"amount"`
	Type          string   `json:"type"`
	Notes         string   `json:"notes"`
	PaymentMethod string   `json:"payment_method"`
	Tags          []string `json:"tags"`
	Frequency     string   `json:"frequency"`
	StartDate     string   `json:"start_date"`
	EndDate       string   `json:"end_date"`
	IsActive      *bool    `json:"is_active"`
}

func (req recurringRequest) toDomain() (domain.RecurringTransaction, error) {
	if req.Category == "" {
		return domain.RecurringTransaction{}, fmt.Errorf("category is required")
	}
	if req.Amount < 0 {
		return domain.RecurringTransaction{}, fmt.Errorf("amount must not be negative")
	}
	kind := domain.TransactionKind(req.Type)
	if !kind.Valid() {
		return domain.RecurringTransaction{}, fmt.Errorf("type must be %q or %q", domain.KindIncome, domain.KindExpense)
	}
	freq, err := domain.ParseFrequency(req.Frequency)
	if err != nil {
		return domain.RecurringTransaction{}, err
	}
	start, err := civil.ParseDate(req.StartDate)
	if err != nil {
		return domain.RecurringTransaction{}, fmt.Errorf("start_date must be YYYY-MM-DD: %w", err)
	}

	var end *civil.Date
	if req.EndDate != "" {
		d, err := civil.ParseDate(req.EndDate)
		if err != nil {
			return domain.RecurringTransaction{}, fmt.Errorf("end_date must be YYYY-MM-DD: %w", err)
		}
		if d.Before(start) {
			return domain.RecurringTransaction{}, fmt.Errorf("end_date must not be before start_date")
		}
		end = &d
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	return domain.RecurringTransaction{
		Category:      req.Category,
		Amount:        req.Amount,
		Kind:          kind,
		Notes:         req.Notes,
		PaymentMethod: req.PaymentMethod,
		Tags:          domain.JoinTags(req.Tags),
		Frequency:     freq,
		StartDate:     start,
		EndDate:       end,
		IsActive:      active,
	}, nil
}

// recurringResponse is the JSON shape of one recurring definition.
type recurringResponse struct {
	ID                int64    `json:"id"`
	Category          string   `json:"category"`
	Amount            float64  `json:"amount"`
	Type              string   `json:"type"`
	Notes             string   `json:"notes,omitempty"`
	PaymentMethod     string   `json:"payment_method,omitempty"`
	Tags              []string `json:"tags,omitempty"`
	Frequency         string   `json:"frequency"`
	StartDate         string   `json:"start_date"`
	EndDate           string   `json:"end_date,omitempty"`
	LastGeneratedDate string   `json:"last_generated_date,omitempty"`
	IsActive          bool     `json:"is_active"`
}

func newRecurringResponse(r domain.RecurringTransaction) recurringResponse {
	resp := recurringResponse{
		ID:            r.ID,
		Category:      r.Category,
		Amount:        r.Amount,
		Type:          string(r.Kind),
		Notes:         r.Notes,
		PaymentMethod: r.PaymentMethod,
		Tags:          domain.SplitTags(r.Tags),
		Frequency:     string(r.Frequency),
		StartDate:     r.StartDate.String(),
		IsActive:      r.IsActive,
	}
	if r.EndDate != nil {
		resp.EndDate = r.EndDate.String()
	}
	if r.LastGeneratedDate != nil {
		resp.LastGeneratedDate = r.LastGeneratedDate.String()
	}
	return resp
}

// RecurringHandler handles recurring transaction definition endpoints.
type RecurringHandler struct {
	store *store.Store
	log   zerolog.Logger
}

// NewRecurringHandler creates a new recurring transactions handler.
func NewRecurringHandler(s *store.Store, log zerolog.Logger) *RecurringHandler {
	return &RecurringHandler{store: s, log: log}
}

// List handles GET /api/recurring
func (h *RecurringHandler) List(w http.ResponseWriter, r *http.Request) {
	defs, err := h.store.AllRecurring(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list recurring transactions")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list recurring transactions")
		return
	}

	responses := make([]recurringResponse, 0, len(defs))
	for _, def := range defs {
		responses = append(responses, newRecurringResponse(def))
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"recurring_transactions": responses,
		"count":                  len(responses),
	})
}

// Create handles POST /api/recurring
func (h *RecurringHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req recurringRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	def, err := req.toDomain()
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.InsertRecurring(r.Context(), &def); err != nil {
		h.log.Error().Err(err).Msg("Failed to create recurring transaction")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to create recurring transaction")
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, newRecurringResponse(def))
}

// Update handles PUT /api/recurring/:id
func (h *RecurringHandler) Update(w http.ResponseWriter, r *http.Request, id string) {
	defID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid recurring transaction ID")
		return
	}

	existing, err := h.store.RecurringByID(r.Context(), defID)
	if err != nil {
		h.log.Error().Err(err).Int64("id", defID).Msg("Failed to get recurring transaction")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to update recurring transaction")
		return
	}
	if existing == nil {
		middleware.WriteError(w, http.StatusNotFound, "Recurring transaction not found")
		return
	}

	var req recurringRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	def, err := req.toDomain()
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	def.ID = defID
	// Generation progress is owned by the scheduler, not the client.
	def.LastGeneratedDate = existing.LastGeneratedDate

	if err := h.store.UpdateRecurring(r.Context(), def); err != nil {
		h.log.Error().Err(err).Int64("id", defID).Msg("Failed to update recurring transaction")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to update recurring transaction")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, newRecurringResponse(def))
}

// Delete handles DELETE /api/recurring/:id
func (h *RecurringHandler) Delete(w http.ResponseWriter, r *http.Request, id string) {
	defID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid recurring transaction ID")
		return
	}

	if err := h.store.DeleteRecurring(r.Context(), defID); err != nil {
		h.log.Error().Err(err).Int64("id", defID).Msg("Failed to delete recurring transaction")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to delete recurring transaction")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
