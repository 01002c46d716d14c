package backup

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

type fakeStorage struct {
	objects map[string][]byte
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte)}
}

func (f *fakeStorage) Write(_ context.Context, objectName string, data []byte) error {
	f.objects[objectName] = data
	return nil
}

func (f *fakeStorage) Read(_ context.Context, objectName string) ([]byte, error) {
	data, ok := f.objects[objectName]
	if !ok {
		return nil, assert.AnError
	}
	return data, nil
}

var _ ObjectStorage = (*fakeStorage)(nil)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "ledgerly_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestBackupAndRestore(t *testing.T) {
	ctx := context.Background()
	source := openTestStore(t)
	storage := newFakeStorage()

	tx := domain.Transaction{
		Category: "Groceries",
		Amount:   50,
		Date:     civil.Date{Year: 2024, Month: time.May, Day: 10},
		Kind:     domain.KindExpense,
	}
	require.NoError(t, source.InsertTransaction(ctx, &tx))
	require.NoError(t, source.UpsertBudget(ctx, domain.Budget{
		Category: "Groceries", MonthYear: "2024-05", MonthlyBudget: 500, CurrentSpending: 50,
	}))
	rec := domain.RecurringTransaction{
		Category: "Rent", Amount: 1200, Kind: domain.KindExpense,
		Frequency: domain.FrequencyMonthly,
		StartDate: civil.Date{Year: 2024, Month: time.January, Day: 1},
		IsActive:  true,
	}
	require.NoError(t, source.InsertRecurring(ctx, &rec))

	svc := NewService(source, storage)
	svc.now = func() time.Time { return time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC) }

	objectName, err := svc.Backup(ctx)
	require.NoError(t, err)
	assert.Equal(t, "snapshots/ledgerly-20240520T120000Z.json", objectName)

	// Restore into a fresh store.
	target := openTestStore(t)
	require.NoError(t, NewService(target, storage).Restore(ctx, objectName))

	transactions, err := target.AllTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, transactions, 1)
	assert.Equal(t, tx, transactions[0])

	budgets, err := target.AllBudgets(ctx)
	require.NoError(t, err)
	require.Len(t, budgets, 1)
	assert.Equal(t, 50.0, budgets[0].CurrentSpending)

	defs, err := target.AllRecurring(ctx)
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, rec, defs[0])
}

func TestRestore_MissingObject(t *testing.T) {
	ctx := context.Background()
	svc := NewService(openTestStore(t), newFakeStorage())
	assert.Error(t, svc.Restore(ctx, "snapshots/nope.json"))
}
