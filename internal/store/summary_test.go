package store

import (
	"context"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerly/ledgerly/internal/domain"
)

func seedSummaryData(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()
	insert := func(category string, amount float64, d civil.Date, kind domain.TransactionKind) {
		tx := domain.Transaction{Category: category, Amount: amount, Date: d, Kind: kind}
		require.NoError(t, s.InsertTransaction(ctx, &tx))
	}

	insert("Salary", 3000, date(2024, 4, 28), domain.KindIncome)
	insert("Rent", 1000, date(2024, 4, 1), domain.KindExpense)
	insert("Groceries", 200, date(2024, 4, 10), domain.KindExpense)
	insert("Salary", 3000, date(2024, 5, 28), domain.KindIncome)
	insert("Rent", 1000, date(2024, 5, 1), domain.KindExpense)
	insert("Groceries", 250, date(2024, 5, 12), domain.KindExpense)
	insert("Travel", 600, date(2024, 5, 20), domain.KindExpense)
}

func TestTopExpenses(t *testing.T) {
	s := openTestStore(t)
	seedSummaryData(t, s)

	top, err := s.TopExpenses(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, 1000.0, top[0].Amount)
	assert.Equal(t, 1000.0, top[1].Amount)
	assert.Equal(t, 600.0, top[2].Amount)
	for _, tx := range top {
		assert.Equal(t, domain.KindExpense, tx.Kind, "income must never appear in top expenses")
	}
}

func TestExpenseByCategoryForMonth(t *testing.T) {
	s := openTestStore(t)
	seedSummaryData(t, s)

	summaries, err := s.ExpenseByCategoryForMonth(context.Background(), "2024-05")
	require.NoError(t, err)
	require.Len(t, summaries, 3)

	byCategory := map[string]float64{}
	for _, cs := range summaries {
		byCategory[cs.Category] = cs.TotalAmount
	}
	assert.Equal(t, 250.0, byCategory["Groceries"])
	assert.Equal(t, 1000.0, byCategory["Rent"])
	assert.Equal(t, 600.0, byCategory["Travel"])
}

func TestMonthlyIncomeVsExpense(t *testing.T) {
	s := openTestStore(t)
	seedSummaryData(t, s)

	comparisons, err := s.MonthlyIncomeVsExpense(context.Background())
	require.NoError(t, err)
	require.Len(t, comparisons, 2)

	assert.Equal(t, "2024-04", comparisons[0].Month)
	assert.Equal(t, 3000.0, comparisons[0].Income)
	assert.Equal(t, 1200.0, comparisons[0].Expense)

	assert.Equal(t, "2024-05", comparisons[1].Month)
	assert.Equal(t, 3000.0, comparisons[1].Income)
	assert.Equal(t, 1850.0, comparisons[1].Expense)
}

func TestMonthlySpendingTrends(t *testing.T) {
	s := openTestStore(t)
	seedSummaryData(t, s)

	trends, err := s.MonthlySpendingTrends(context.Background())
	require.NoError(t, err)
	require.Len(t, trends, 5)

	assert.Equal(t, "2024-04", trends[0].Month)
	for i := 1; i < len(trends); i++ {
		assert.LessOrEqual(t, trends[i-1].Month, trends[i].Month, "trends must be ordered by month")
	}
}
