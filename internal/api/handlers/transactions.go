// Package handlers implements the HTTP API over the local ledger.
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

// transactionRequest is the JSON body for creating or updating a transaction.
type transactionRequest struct {
	Category      string   `json:"category"`
	Amount        float64  `json:"amount"`
	Date          string   `json:"date"`
	Type          string   `json:"type"`
	Notes         string   `json:"notes"`
	PaymentMethod string   `json:"payment_method"`
	Tags          []string `json:"tags"`
}

func (req transactionRequest) toDomain() (domain.Transaction, error) {
	if req.Category == "" {
		return domain.Transaction{}, fmt.Errorf("category is required")
	}
	if req.Amount < 0 {
		return domain.Transaction{}, fmt.Errorf("amount must not be negative")
	}
	kind := domain.TransactionKind(req.Type)
	if !kind.Valid() {
		return domain.Transaction{}, fmt.Errorf("type must be %q or %q", domain.KindIncome, domain.KindExpense)
	}
	date, err := civil.ParseDate(req.Date)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("date must be YYYY-MM-DD: %w", err)
	}

	return domain.Transaction{
		Category:      req.Category,
		Amount:        req.Amount,
		Date:          date,
		Kind:          kind,
		Notes:         req.Notes,
		PaymentMethod: req.PaymentMethod,
		Tags:          domain.JoinTags(req.Tags),
	}, nil
}

// transactionResponse is the JSON shape of one transaction.
type transactionResponse struct {
	ID            int64    `json:"id"`
	Category      string   `json:"category"`
	Amount        float64  `json:"amount"`
	SignedAmount  float64  `json:"signed_amount"`
	Date          string   `json:"date"`
	Type          string   `json:"type"`
	Notes         string   `json:"notes,omitempty"`
	PaymentMethod string   `json:"payment_method,omitempty"`
	Tags          []string `json:"tags,omitempty"`
}

func newTransactionResponse(tx domain.Transaction) transactionResponse {
	return transactionResponse{
		ID:            tx.ID,
		Category:      tx.Category,
		Amount:        tx.Amount,
		SignedAmount:  tx.SignedAmount(),
		Date:          tx.Date.String(),
		Type:          string(tx.Kind),
		Notes:         tx.Notes,
		PaymentMethod: tx.PaymentMethod,
		Tags:          tx.TagList(),
	}
}

// TransactionsHandler handles transaction endpoints.
type TransactionsHandler struct {
	store *store.Store
	log   zerolog.Logger
}

// NewTransactionsHandler creates a new transactions handler.
func NewTransactionsHandler(s *store.Store, log zerolog.Logger) *TransactionsHandler {
	return &TransactionsHandler{store: s, log: log}
}

// List handles GET /api/transactions
func (h *TransactionsHandler) List(w http.ResponseWriter, r *http.Request) {
	transactions, err := h.store.AllTransactions(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list transactions")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list transactions")
		return
	}

	responses := make([]transactionResponse, 0, len(transactions))
	for _, tx := range transactions {
		responses = append(responses, newTransactionResponse(tx))
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": responses,
		"count":        len(responses),
	})
}

// Create handles POST /api/transactions
func (h *TransactionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tx, err := req.toDomain()
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.InsertTransaction(r.Context(), &tx); err != nil {
		h.log.Error().Err(err).Msg("Failed to create transaction")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to create transaction")
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, newTransactionResponse(tx))
}

// Get handles GET /api/transactions/:id
func (h *TransactionsHandler) Get(w http.ResponseWriter, r *http.Request, id string) {
	txID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid transaction ID")
		return
	}

	tx, err := h.store.TransactionByID(r.Context(), txID)
	if err != nil {
		h.log.Error().Err(err).Int64("id", txID).Msg("Failed to get transaction")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to get transaction")
		return
	}
	if tx == nil {
		middleware.WriteError(w, http.StatusNotFound, "Transaction not found")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, newTransactionResponse(*tx))
}

// Update handles PUT /api/transactions/:id
func (h *TransactionsHandler) Update(w http.ResponseWriter, r *http.Request, id string) {
	txID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid transaction ID")
		return
	}

	existing, err := h.store.TransactionByID(r.Context(), txID)
	if err != nil {
		h.log.Error().Err(err).Int64("id", txID).Msg("Failed to get transaction")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to update transaction")
		return
	}
	if existing == nil {
		middleware.WriteError(w, http.StatusNotFound, "Transaction not found")
		return
	}

	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tx, err := req.toDomain()
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	tx.ID = txID

	if err := h.store.UpdateTransaction(r.Context(), tx); err != nil {
		h.log.Error().Err(err).Int64("id", txID).Msg("Failed to update transaction")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to update transaction")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, newTransactionResponse(tx))
}

// Delete handles DELETE /api/transactions/:id
func (h *TransactionsHandler) Delete(w http.ResponseWriter, r *http.Request, id string) {
	txID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid transaction ID")
		return
	}

	if err := h.store.DeleteTransaction(r.Context(), txID); err != nil {
		h.log.Error().Err(err).Int64("id", txID).Msg("Failed to delete transaction")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to delete transaction")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
