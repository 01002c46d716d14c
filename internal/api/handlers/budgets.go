package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/ledgerly/ledgerly/internal/api/middleware"
	"github.com/ledgerly/ledgerly/internal/budget"
	"github.com/ledgerly/ledgerly/internal/domain"
)

// budgetResponse is the JSON shape of one budget, including the derived
// fields clients render directly.
type budgetResponse struct {
	Category        string  `json:"category"`
	MonthYear       string  `json:"month_year"`
	MonthlyBudget   float64 `json:"monthly_budget"`
	CurrentSpending float64 `json:"current_spending"`
	Remaining       float64 `json:"remaining"`
	PercentageUsed  float64 `json:"percentage_used"`
	IsNearLimit     bool    `json:"is_near_limit"`
	IsExceeded      bool    `json:"is_exceeded"`
}

func newBudgetResponse(b domain.Budget) budgetResponse {
	return budgetResponse{
		Category:        b.Category,
		MonthYear:       b.MonthYear,
		MonthlyBudget:   b.MonthlyBudget,
		CurrentSpending: b.CurrentSpending,
		Remaining:       b.Remaining(),
		PercentageUsed:  b.PercentageUsed(),
		IsNearLimit:     b.IsNearLimit(domain.DefaultNearLimitThreshold),
		IsExceeded:      b.IsExceeded(),
	}
}

// BudgetsHandler handles budget endpoints.
type BudgetsHandler struct {
	svc *budget.Service
	log zerolog.Logger
}

// NewBudgetsHandler creates a new budgets handler.
func NewBudgetsHandler(svc *budget.Service, log zerolog.Logger) *BudgetsHandler {
	return &BudgetsHandler{svc: svc, log: log}
}

// List handles GET /api/budgets?month=YYYY-MM (defaults to the current month)
func (h *BudgetsHandler) List(w http.ResponseWriter, r *http.Request) {
	monthYear := r.URL.Query().Get("month")
	if monthYear == "" {
		monthYear = domain.CurrentMonthYear()
	}

	budgets, err := h.svc.BudgetsForMonth(r.Context(), monthYear)
	if err != nil {
		h.log.Error().Err(err).Str("month_year", monthYear).Msg("Failed to list budgets")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list budgets")
		return
	}

	responses := make([]budgetResponse, 0, len(budgets))
	for _, b := range budgets {
		responses = append(responses, newBudgetResponse(b))
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"budgets":    responses,
		"month_year": monthYear,
		"count":      len(responses),
	})
}

// Set handles POST /api/budgets
func (h *BudgetsHandler) Set(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Category      string  `json:"category"`
		MonthlyBudget float64 `json:"monthly_budget"`
		MonthYear     string  `json:"month_year"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Category == "" {
		middleware.WriteError(w, http.StatusBadRequest, "Category is required")
		return
	}

	b, err := h.svc.SetBudget(r.Context(), req.Category, req.MonthlyBudget, req.MonthYear)
	if err != nil {
		if errors.Is(err, budget.ErrNotFound) {
			middleware.WriteError(w, http.StatusNotFound, err.Error())
			return
		}
		h.log.Error().Err(err).Str("category", req.Category).Msg("Failed to set budget")
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, newBudgetResponse(b))
}

// Delete handles DELETE /api/budgets/:category?month=YYYY-MM
func (h *BudgetsHandler) Delete(w http.ResponseWriter, r *http.Request, category string) {
	monthYear := r.URL.Query().Get("month")
	if monthYear == "" {
		monthYear = domain.CurrentMonthYear()
	}

	if err := h.svc.DeleteBudget(r.Context(), category, monthYear); err != nil {
		h.log.Error().Err(err).Str("category", category).Msg("Failed to delete budget")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to delete budget")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Refresh handles POST /api/budgets/refresh?month=YYYY-MM
// It recomputes budget spending totals from the transaction ledger.
func (h *BudgetsHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	monthYear := r.URL.Query().Get("month")
	if monthYear == "" {
		monthYear = domain.CurrentMonthYear()
	}

	updated, err := h.svc.RefreshSpending(r.Context(), monthYear)
	if err != nil {
		h.log.Error().Err(err).Str("month_year", monthYear).Msg("Failed to refresh budget spending")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to refresh budget spending")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"month_year": monthYear,
		"updated":    updated,
	})
}
