package handlers

import (
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/ledgerly/ledgerly/internal/api/middleware"
	"github.com/ledgerly/ledgerly/internal/domain"
	"github.com/ledgerly/ledgerly/internal/store"
)

// SummaryHandler serves the aggregate queries behind the dashboard charts.
type SummaryHandler struct {
	store *store.Store
	log   zerolog.Logger
}

// NewSummaryHandler creates a new summary handler.
func NewSummaryHandler(s *store.Store, log zerolog.Logger) *SummaryHandler {
	return &SummaryHandler{store: s, log: log}
}

// TopExpenses handles GET /api/summary/top-expenses?limit=N
func (h *SummaryHandler) TopExpenses(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			middleware.WriteError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	transactions, err := h.store.TopExpenses(r.Context(), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to query top expenses")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to query top expenses")
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

// ByCategory handles GET /api/summary/by-category?month=YYYY-MM
func (h *SummaryHandler) ByCategory(w http.ResponseWriter, r *http.Request) {
	monthYear := r.URL.Query().Get("month")
	if monthYear == "" {
		monthYear = domain.CurrentMonthYear()
	}

	summaries, err := h.store.ExpenseByCategoryForMonth(r.Context(), monthYear)
	if err != nil {
		h.log.Error().Err(err).Str("month_year", monthYear).Msg("Failed to query category breakdown")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to query category breakdown")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"month_year": monthYear,
		"categories": summaries,
	})
}

// IncomeVsExpense handles GET /api/summary/income-vs-expense
func (h *SummaryHandler) IncomeVsExpense(w http.ResponseWriter, r *http.Request) {
	comparisons, err := h.store.MonthlyIncomeVsExpense(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to query income vs expense")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to query income vs expense")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"months": comparisons,
	})
}

// Trends handles GET /api/summary/trends
func (h *SummaryHandler) Trends(w http.ResponseWriter, r *http.Request) {
	trends, err := h.store.MonthlySpendingTrends(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to query spending trends")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to query spending trends")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"trends": trends,
	})
}
