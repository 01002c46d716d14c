// Package budget manages per-category monthly spending limits and keeps
// their materialized spending totals in step with the transaction ledger.
package budget

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"

	"github.com/ledgerly/ledgerly/internal/domain"
	"github.com/ledgerly/ledgerly/internal/logger"
)

// ErrNotFound is returned when an operation targets a budget that has not
// been set for the given category and month.
var ErrNotFound = errors.New("budget not found")

// Store is the slice of the local store the service needs.
type Store interface {
	UpsertBudget(ctx context.Context, b domain.Budget) error
	UpdateBudget(ctx context.Context, b domain.Budget) error
	BudgetsForMonth(ctx context.Context, monthYear string) ([]domain.Budget, error)
	AllBudgets(ctx context.Context) ([]domain.Budget, error)
	BudgetForCategory(ctx context.Context, category, monthYear string) (*domain.Budget, error)
	DeleteBudget(ctx context.Context, category, monthYear string) error
	CurrentSpendingForCategory(ctx context.Context, category, monthYear string) (float64, error)
}

// Service owns budget lifecycle and the spending refresh.
type Service struct {
	store Store

	// today is the calendar-date source, overridable in tests.
	today func() civil.Date
}

// NewService creates a budget service over the given store.
func NewService(store Store) *Service {
	return &Service{
		store: store,
		today: func() civil.Date { return civil.DateOf(time.Now()) },
	}
}

// SetBudget creates or replaces the limit for a category in a month. The
// spending total is computed from the ledger at set time so a freshly set
// budget reflects transactions that already happened this month.
func (s *Service) SetBudget(ctx context.Context, category string, monthlyBudget float64, monthYear string) (domain.Budget, error) {
	if monthlyBudget < 0 {
		return domain.Budget{}, fmt.Errorf("monthly budget must not be negative, got %v", monthlyBudget)
	}
	if monthYear == "" {
		monthYear = domain.MonthYearOf(s.today())
	}

	spending, err := s.store.CurrentSpendingForCategory(ctx, category, monthYear)
	if err != nil {
		return domain.Budget{}, err
	}

	b := domain.Budget{
		Category:        category,
		MonthlyBudget:   monthlyBudget,
		CurrentSpending: spending,
		MonthYear:       monthYear,
	}
	if err := s.store.UpsertBudget(ctx, b); err != nil {
		return domain.Budget{}, err
	}
	return b, nil
}

// UpdateLimit changes the limit of an existing budget, leaving its spending
// total untouched.
func (s *Service) UpdateLimit(ctx context.Context, category, monthYear string, monthlyBudget float64) (domain.Budget, error) {
	if monthlyBudget < 0 {
		return domain.Budget{}, fmt.Errorf("monthly budget must not be negative, got %v", monthlyBudget)
	}

	existing, err := s.store.BudgetForCategory(ctx, category, monthYear)
	if err != nil {
		return domain.Budget{}, err
	}
	if existing == nil {
		return domain.Budget{}, ErrNotFound
	}

	existing.MonthlyBudget = monthlyBudget
	if err := s.store.UpdateBudget(ctx, *existing); err != nil {
		return domain.Budget{}, err
	}
	return *existing, nil
}

// BudgetsForCurrentMonth returns every budget scoped to the current
// calendar month.
func (s *Service) BudgetsForCurrentMonth(ctx context.Context) ([]domain.Budget, error) {
	return s.store.BudgetsForMonth(ctx, domain.MonthYearOf(s.today()))
}

// BudgetsForMonth returns every budget for one "YYYY-MM" month.
func (s *Service) BudgetsForMonth(ctx context.Context, monthYear string) ([]domain.Budget, error) {
	return s.store.BudgetsForMonth(ctx, monthYear)
}

// BudgetForCategory returns one budget, or ErrNotFound.
func (s *Service) BudgetForCategory(ctx context.Context, category, monthYear string) (domain.Budget, error) {
	b, err := s.store.BudgetForCategory(ctx, category, monthYear)
	if err != nil {
		return domain.Budget{}, err
	}
	if b == nil {
		return domain.Budget{}, ErrNotFound
	}
	return *b, nil
}

// DeleteBudget removes a budget. Deleting a budget that does not exist is
// not an error.
func (s *Service) DeleteBudget(ctx context.Context, category, monthYear string) error {
	return s.store.DeleteBudget(ctx, category, monthYear)
}

// RefreshSpending recomputes the materialized spending total of every budget
// in one month from the transaction ledger, writing only the rows whose
// total actually changed. Returns the number of budgets updated.
func (s *Service) RefreshSpending(ctx context.Context, monthYear string) (int, error) {
	log := logger.FromContext(ctx)

	budgets, err := s.store.BudgetsForMonth(ctx, monthYear)
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, b := range budgets {
		spending, err := s.store.CurrentSpendingForCategory(ctx, b.Category, b.MonthYear)
		if err != nil {
			return updated, err
		}
		if spending == b.CurrentSpending {
			continue
		}

		b.CurrentSpending = spending
		if err := s.store.UpdateBudget(ctx, b); err != nil {
			return updated, err
		}
		updated++
	}

	if updated > 0 {
		log.Info().
			Str("month_year", monthYear).
			Int("updated", updated).
			Msg("Budget spending refreshed")
	}

	return updated, nil
}

// NearLimit returns the current month's budgets whose spending has reached
// the given percentage threshold of their limit.
func (s *Service) NearLimit(ctx context.Context, threshold int) ([]domain.Budget, error) {
	budgets, err := s.BudgetsForCurrentMonth(ctx)
	if err != nil {
		return nil, err
	}

	var near []domain.Budget
	for _, b := range budgets {
		if b.IsNearLimit(threshold) {
			near = append(near, b)
		}
	}
	return near, nil
}
