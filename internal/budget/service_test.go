package budget

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerly/ledgerly/internal/domain"
	"github.com/ledgerly/ledgerly/internal/store"
)

func date(y, m, d int) civil.Date {
	return civil.Date{Year: y, Month: time.Month(m), Day: d}
}

func testService(t *testing.T, today civil.Date) (*Service, *store.Store) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "ledgerly_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	svc := NewService(s)
	svc.today = func() civil.Date { return today }
	return svc, s
}

func insertExpense(t *testing.T, s *store.Store, category string, amount float64, d civil.Date) {
	t.Helper()
	tx := domain.Transaction{Category: category, Amount: amount, Date: d, Kind: domain.KindExpense}
	require.NoError(t, s.InsertTransaction(context.Background(), &tx))
}

func TestSetBudget_SeedsSpendingFromLedger(t *testing.T) {
	ctx := context.Background()
	svc, s := testService(t, date(2024, 5, 20))

	insertExpense(t, s, "Groceries", 120, date(2024, 5, 5))
	insertExpense(t, s, "Groceries", 30, date(2024, 5, 12))

	b, err := svc.SetBudget(ctx, "Groceries", 500, "2024-05")
	require.NoError(t, err)
	assert.Equal(t, 150.0, b.CurrentSpending, "a new budget picks up spending already on the ledger")
	assert.Equal(t, 350.0, b.Remaining())
	assert.Equal(t, 30.0, b.PercentageUsed())
}

func TestSetBudget_DefaultsToCurrentMonth(t *testing.T) {
	ctx := context.Background()
	svc, _ := testService(t, date(2024, 5, 20))

	b, err := svc.SetBudget(ctx, "Travel", 300, "")
	require.NoError(t, err)
	assert.Equal(t, "2024-05", b.MonthYear)
}

func TestSetBudget_RejectsNegativeLimit(t *testing.T) {
	ctx := context.Background()
	svc, _ := testService(t, date(2024, 5, 20))

	_, err := svc.SetBudget(ctx, "Travel", -1, "2024-05")
	assert.Error(t, err)
}

func TestUpdateLimit(t *testing.T) {
	ctx := context.Background()
	svc, s := testService(t, date(2024, 5, 20))

	insertExpense(t, s, "Groceries", 100, date(2024, 5, 5))
	_, err := svc.SetBudget(ctx, "Groceries", 500, "2024-05")
	require.NoError(t, err)

	b, err := svc.UpdateLimit(ctx, "Groceries", "2024-05", 400)
	require.NoError(t, err)
	assert.Equal(t, 400.0, b.MonthlyBudget)
	assert.Equal(t, 100.0, b.CurrentSpending, "changing the limit leaves spending untouched")

	_, err = svc.UpdateLimit(ctx, "Missing", "2024-05", 100)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBudgetForCategory_NotFound(t *testing.T) {
	ctx := context.Background()
	svc, _ := testService(t, date(2024, 5, 20))

	_, err := svc.BudgetForCategory(ctx, "Missing", "2024-05")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBudgetsForCurrentMonth(t *testing.T) {
	ctx := context.Background()
	svc, _ := testService(t, date(2024, 5, 20))

	_, err := svc.SetBudget(ctx, "Groceries", 500, "2024-05")
	require.NoError(t, err)
	_, err = svc.SetBudget(ctx, "Groceries", 550, "2024-06")
	require.NoError(t, err)

	current, err := svc.BudgetsForCurrentMonth(ctx)
	require.NoError(t, err)
	require.Len(t, current, 1)
	assert.Equal(t, "2024-05", current[0].MonthYear)
}

func TestRefreshSpending(t *testing.T) {
	ctx := context.Background()
	svc, s := testService(t, date(2024, 5, 20))

	_, err := svc.SetBudget(ctx, "Groceries", 500, "2024-05")
	require.NoError(t, err)
	_, err = svc.SetBudget(ctx, "Rent", 1500, "2024-05")
	require.NoError(t, err)

	// New spending lands after the budgets were set.
	insertExpense(t, s, "Groceries", 75, date(2024, 5, 21))

	updated, err := svc.RefreshSpending(ctx, "2024-05")
	require.NoError(t, err)
	assert.Equal(t, 1, updated, "only the budget whose total changed is rewritten")

	b, err := svc.BudgetForCategory(ctx, "Groceries", "2024-05")
	require.NoError(t, err)
	assert.Equal(t, 75.0, b.CurrentSpending)

	// A second refresh with no new transactions is a no-op.
	updated, err = svc.RefreshSpending(ctx, "2024-05")
	require.NoError(t, err)
	assert.Zero(t, updated)
}

func TestNearLimit(t *testing.T) {
	ctx := context.Background()
	svc, s := testService(t, date(2024, 5, 20))

	insertExpense(t, s, "Groceries", 450, date(2024, 5, 5))
	insertExpense(t, s, "Travel", 100, date(2024, 5, 6))

	_, err := svc.SetBudget(ctx, "Groceries", 500, "2024-05")
	require.NoError(t, err)
	_, err = svc.SetBudget(ctx, "Travel", 300, "2024-05")
	require.NoError(t, err)

	near, err := svc.NearLimit(ctx, domain.DefaultNearLimitThreshold)
	require.NoError(t, err)
	require.Len(t, near, 1)
	assert.Equal(t, "Groceries", near[0].Category)
}
