package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ledgerly/ledgerly/internal/domain"
)

// UpsertBudget inserts or replaces the budget for its (category, monthYear) key.
func (s *Store) UpsertBudget(ctx context.Context, b domain.Budget) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO budgets (category, month_year, monthly_budget, current_spending)
		VALUES (?, ?, ?, ?)`,
		b.Category, b.MonthYear, b.MonthlyBudget, b.CurrentSpending)
	if err != nil {
		return fmt.Errorf("UpsertBudget: %w", err)
	}
	return nil
}

// UpdateBudget updates an existing budget row.
func (s *Store) UpdateBudget(ctx context.Context, b domain.Budget) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE budgets SET monthly_budget = ?, current_spending = ?
		WHERE category = ? AND month_year = ?`,
		b.MonthlyBudget, b.CurrentSpending, b.Category, b.MonthYear)
	if err != nil {
		return fmt.Errorf("UpdateBudget: %w", err)
	}
	return nil
}

// BudgetsForMonth returns every budget scoped to the given "YYYY-MM" month.
func (s *Store) BudgetsForMonth(ctx context.Context, monthYear string) ([]domain.Budget, error) {
	return s.queryBudgets(ctx, `
		SELECT category, month_year, monthly_budget, current_spending
		FROM budgets WHERE month_year = ? ORDER BY category`, monthYear)
}

// AllBudgets returns every budget in the store.
func (s *Store) AllBudgets(ctx context.Context) ([]domain.Budget, error) {
	return s.queryBudgets(ctx, `
		SELECT category, month_year, monthly_budget, current_spending
		FROM budgets ORDER BY month_year, category`)
}

// BudgetForCategory returns the budget for one category in one month,
// or nil when none is set.
func (s *Store) BudgetForCategory(ctx context.Context, category, monthYear string) (*domain.Budget, error) {
	var b domain.Budget
	err := s.db.QueryRowContext(ctx, `
		SELECT category, month_year, monthly_budget, current_spending
		FROM budgets WHERE category = ? AND month_year = ?`,
		category, monthYear).Scan(&b.Category, &b.MonthYear, &b.MonthlyBudget, &b.CurrentSpending)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("BudgetForCategory: %w", err)
	}
	return &b, nil
}

// DeleteBudget removes the budget for one category in one month.
func (s *Store) DeleteBudget(ctx context.Context, category, monthYear string) error {
	if _, err := s.db.ExecContext(ctx, `
		DELETE FROM budgets WHERE category = ? AND month_year = ?`, category, monthYear); err != nil {
		return fmt.Errorf("DeleteBudget: %w", err)
	}
	return nil
}

// CurrentSpendingForCategory sums expense transactions for a category within
// one calendar month. This is the source the materialized
// budgets.current_spending column is refreshed from.
func (s *Store) CurrentSpendingForCategory(ctx context.Context, category, monthYear string) (float64, error) {
	var total float64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM transactions
		WHERE category = ? AND kind = 'Expense' AND strftime('%Y-%m', date) = ?`,
		category, monthYear).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("CurrentSpendingForCategory: %w", err)
	}
	return total, nil
}

func (s *Store) queryBudgets(ctx context.Context, query string, args ...any) ([]domain.Budget, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying budgets: %w", err)
	}
	defer rows.Close()

	var budgets []domain.Budget
	for rows.Next() {
		var b domain.Budget
		if err := rows.Scan(&b.Category, &b.MonthYear, &b.MonthlyBudget, &b.CurrentSpending); err != nil {
			return nil, fmt.Errorf("scanning budget: %w", err)
		}
		budgets = append(budgets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("querying budgets: %w", err)
	}

	return budgets, nil
}
