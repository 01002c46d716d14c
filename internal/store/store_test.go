package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerly/ledgerly/internal/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "ledgerly_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func date(y, m, d int) civil.Date {
	return civil.Date{Year: y, Month: time.Month(m), Day: d}
}

func TestOpen_Idempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ledgerly.db")

	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s2.Close())
}

func TestTransactionCRUD(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	tx := domain.Transaction{
		Category:      "Groceries",
		Amount:        42.50,
		Date:          date(2024, 5, 10),
		Kind:          domain.KindExpense,
		Notes:         "weekly shop",
		PaymentMethod: "Card",
		Tags:          "food,weekly",
	}
	require.NoError(t, s.InsertTransaction(ctx, &tx))
	assert.NotZero(t, tx.ID, "insert should assign a row id")

	got, err := s.TransactionByID(ctx, tx.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, tx, *got)

	tx.Amount = 45
	require.NoError(t, s.UpdateTransaction(ctx, tx))

	got, err = s.TransactionByID(ctx, tx.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 45.0, got.Amount)

	require.NoError(t, s.DeleteTransaction(ctx, tx.ID))
	got, err = s.TransactionByID(ctx, tx.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUpsertTransaction_ReplacesByID(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	tx := domain.Transaction{Category: "Rent", Amount: 1000, Date: date(2024, 5, 1), Kind: domain.KindExpense}
	require.NoError(t, s.InsertTransaction(ctx, &tx))

	replacement := tx
	replacement.Amount = 1200
	require.NoError(t, s.UpsertTransaction(ctx, replacement))

	all, err := s.AllTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1, "upsert with the same id must replace, not duplicate")
	assert.Equal(t, 1200.0, all[0].Amount)
}

func TestBudgetCRUD(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	b := domain.Budget{Category: "Groceries", MonthYear: "2024-05", MonthlyBudget: 500}
	require.NoError(t, s.UpsertBudget(ctx, b))

	// Same key upserts in place.
	b.MonthlyBudget = 600
	require.NoError(t, s.UpsertBudget(ctx, b))

	// Same category in a different month is a distinct row.
	require.NoError(t, s.UpsertBudget(ctx, domain.Budget{Category: "Groceries", MonthYear: "2024-06", MonthlyBudget: 550}))

	forMay, err := s.BudgetsForMonth(ctx, "2024-05")
	require.NoError(t, err)
	require.Len(t, forMay, 1)
	assert.Equal(t, 600.0, forMay[0].MonthlyBudget)

	got, err := s.BudgetForCategory(ctx, "Groceries", "2024-06")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 550.0, got.MonthlyBudget)

	missing, err := s.BudgetForCategory(ctx, "Travel", "2024-06")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, s.DeleteBudget(ctx, "Groceries", "2024-05"))
	forMay, err = s.BudgetsForMonth(ctx, "2024-05")
	require.NoError(t, err)
	assert.Empty(t, forMay)
}

func TestCurrentSpendingForCategory(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	insert := func(category string, amount float64, d civil.Date, kind domain.TransactionKind) {
		tx := domain.Transaction{Category: category, Amount: amount, Date: d, Kind: kind}
		require.NoError(t, s.InsertTransaction(ctx, &tx))
	}

	insert("Groceries", 100, date(2024, 5, 2), domain.KindExpense)
	insert("Groceries", 50, date(2024, 5, 20), domain.KindExpense)
	insert("Groceries", 75, date(2024, 6, 1), domain.KindExpense) // other month
	insert("Rent", 1000, date(2024, 5, 1), domain.KindExpense)    // other category
	insert("Groceries", 30, date(2024, 5, 15), domain.KindIncome) // refund, not spending

	total, err := s.CurrentSpendingForCategory(ctx, "Groceries", "2024-05")
	require.NoError(t, err)
	assert.Equal(t, 150.0, total)

	none, err := s.CurrentSpendingForCategory(ctx, "Travel", "2024-05")
	require.NoError(t, err)
	assert.Zero(t, none)
}

func TestRecurringCRUD(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	end := date(2024, 12, 31)
	r := domain.RecurringTransaction{
		Category:      "Subscriptions",
		Amount:        15.99,
		Kind:          domain.KindExpense,
		Notes:         "Streaming",
		PaymentMethod: "Card",
		Tags:          "media",
		Frequency:     domain.FrequencyMonthly,
		StartDate:     date(2024, 1, 1),
		EndDate:       &end,
		IsActive:      true,
	}
	require.NoError(t, s.InsertRecurring(ctx, &r))
	assert.NotZero(t, r.ID)

	got, err := s.RecurringByID(ctx, r.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, r, *got)
	assert.Nil(t, got.LastGeneratedDate)

	last := date(2024, 3, 1)
	r.LastGeneratedDate = &last
	require.NoError(t, s.UpdateRecurring(ctx, r))

	got, err = s.RecurringByID(ctx, r.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastGeneratedDate)
	assert.Equal(t, last, *got.LastGeneratedDate)

	require.NoError(t, s.SetRecurringActive(ctx, r.ID, false))
	active, err := s.ActiveRecurring(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := s.AllRecurring(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, s.DeleteRecurring(ctx, r.ID))
	all, err = s.AllRecurring(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSettings(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, ok, err := s.Setting(ctx, "device_id")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.PutSetting(ctx, "device_id", "device-1"))
	require.NoError(t, s.PutSetting(ctx, "device_id", "device-2"))

	value, ok, err := s.Setting(ctx, "device_id")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "device-2", value)
}
