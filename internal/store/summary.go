package store

import (
	"context"
	"fmt"

	"github.com/ledgerly/ledgerly/internal/domain"
)

// CategorySummary is total expense per category, used for the category
// breakdown chart.
type CategorySummary struct {
	Category    string  `json:"category"`
	TotalAmount float64 `json:"total_amount"`
}

// MonthlyComparison is income vs expense for one month.
type MonthlyComparison struct {
	Month   string  `json:"month"`
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
}

// MonthlyTrend is total expense per category per month.
type MonthlyTrend struct {
	Month       string  `json:"month"`
	Category    string  `json:"category"`
	TotalAmount float64 `json:"total_amount"`
}

// TopExpenses returns the largest expense transactions, biggest first.
func (s *Store) TopExpenses(ctx context.Context, limit int) ([]domain.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, category, amount, date, kind, notes, payment_method, tags
		FROM transactions WHERE kind = 'Expense' ORDER BY amount DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("TopExpenses: %w", err)
	}
	defer rows.Close()

	var transactions []domain.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("TopExpenses: %w", err)
		}
		transactions = append(transactions, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("TopExpenses: %w", err)
	}

	return transactions, nil
}

// ExpenseByCategoryForMonth groups expense totals by category within one
// "YYYY-MM" month.
func (s *Store) ExpenseByCategoryForMonth(ctx context.Context, monthYear string) ([]CategorySummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT category, SUM(amount) AS total_amount
		FROM transactions
		WHERE kind = 'Expense' AND strftime('%Y-%m', date) = ?
		GROUP BY category
		HAVING total_amount > 0
		ORDER BY category`, monthYear)
	if err != nil {
		return nil, fmt.Errorf("ExpenseByCategoryForMonth: %w", err)
	}
	defer rows.Close()

	var summaries []CategorySummary
	for rows.Next() {
		var cs CategorySummary
		if err := rows.Scan(&cs.Category, &cs.TotalAmount); err != nil {
			return nil, fmt.Errorf("ExpenseByCategoryForMonth: %w", err)
		}
		summaries = append(summaries, cs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ExpenseByCategoryForMonth: %w", err)
	}

	return summaries, nil
}

// MonthlyIncomeVsExpense returns per-month income and expense totals,
// oldest month first.
func (s *Store) MonthlyIncomeVsExpense(ctx context.Context) ([]MonthlyComparison, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT strftime('%Y-%m', date) AS month,
		       SUM(CASE WHEN kind = 'Income' THEN amount ELSE 0 END) AS income,
		       SUM(CASE WHEN kind = 'Expense' THEN amount ELSE 0 END) AS expense
		FROM transactions
		GROUP BY strftime('%Y-%m', date)
		HAVING income > 0 OR expense > 0
		ORDER BY month`)
	if err != nil {
		return nil, fmt.Errorf("MonthlyIncomeVsExpense: %w", err)
	}
	defer rows.Close()

	var comparisons []MonthlyComparison
	for rows.Next() {
		var mc MonthlyComparison
		if err := rows.Scan(&mc.Month, &mc.Income, &mc.Expense); err != nil {
			return nil, fmt.Errorf("MonthlyIncomeVsExpense: %w", err)
		}
		comparisons = append(comparisons, mc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("MonthlyIncomeVsExpense: %w", err)
	}

	return comparisons, nil
}

// MonthlySpendingTrends returns expense totals per category per month,
// oldest month first.
func (s *Store) MonthlySpendingTrends(ctx context.Context) ([]MonthlyTrend, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT strftime('%Y-%m', date) AS month, category, SUM(amount) AS total_amount
		FROM transactions
		WHERE kind = 'Expense'
		GROUP BY strftime('%Y-%m', date), category
		HAVING total_amount > 0
		ORDER BY month, category`)
	if err != nil {
		return nil, fmt.Errorf("MonthlySpendingTrends: %w", err)
	}
	defer rows.Close()

	var trends []MonthlyTrend
	for rows.Next() {
		var mt MonthlyTrend
		if err := rows.Scan(&mt.Month, &mt.Category, &mt.TotalAmount); err != nil {
			return nil, fmt.Errorf("MonthlySpendingTrends: %w", err)
		}
		trends = append(trends, mt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("MonthlySpendingTrends: %w", err)
	}

	return trends, nil
}
