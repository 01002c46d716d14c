package recurrence

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

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "ledgerly_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testProcessor(t *testing.T, today civil.Date) (*Processor, *store.Store) {
	t.Helper()
	s := openTestStore(t)
	p := NewProcessor(s)
	p.today = func() civil.Date { return today }
	return p, s
}

func insertDef(t *testing.T, s *store.Store, def domain.RecurringTransaction) domain.RecurringTransaction {
	t.Helper()
	require.NoError(t, s.InsertRecurring(context.Background(), &def))
	return def
}

func TestProcessAll_WeeklyCatchUp(t *testing.T) {
	ctx := context.Background()
	start := date(2024, 5, 1)
	p, s := testProcessor(t, start.AddDays(15))

	def := insertDef(t, s, domain.RecurringTransaction{
		Category:  "Groceries",
		Amount:    80,
		Kind:      domain.KindExpense,
		Notes:     "Weekly shop",
		Frequency: domain.FrequencyWeekly,
		StartDate: start,
		IsActive:  true,
	})

	require.NoError(t, p.ProcessAll(ctx))

	transactions, err := s.AllTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, transactions, 3, "fifteen days after a weekly start there are three due occurrences")
	assert.Equal(t, start, transactions[0].Date)
	assert.Equal(t, start.AddDays(7), transactions[1].Date)
	assert.Equal(t, start.AddDays(14), transactions[2].Date)
	assert.Equal(t, "Weekly shop (Recurring)", transactions[0].Notes)

	got, err := s.RecurringByID(ctx, def.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastGeneratedDate)
	assert.Equal(t, start.AddDays(14), *got.LastGeneratedDate)
}

func TestProcessAll_SecondRunGeneratesNothingNew(t *testing.T) {
	ctx := context.Background()
	start := date(2024, 5, 1)
	p, s := testProcessor(t, start.AddDays(15))

	insertDef(t, s, domain.RecurringTransaction{
		Category:  "Groceries",
		Amount:    80,
		Kind:      domain.KindExpense,
		Frequency: domain.FrequencyWeekly,
		StartDate: start,
		IsActive:  true,
	})

	require.NoError(t, p.ProcessAll(ctx))
	require.NoError(t, p.ProcessAll(ctx))

	transactions, err := s.AllTransactions(ctx)
	require.NoError(t, err)
	assert.Len(t, transactions, 3, "a repeated run on the same day must not duplicate occurrences")
}

func TestProcessAll_ResumesFromLastGenerated(t *testing.T) {
	ctx := context.Background()
	start := date(2024, 5, 1)
	last := start.AddDays(7)
	p, s := testProcessor(t, start.AddDays(15))

	insertDef(t, s, domain.RecurringTransaction{
		Category:          "Groceries",
		Amount:            80,
		Kind:              domain.KindExpense,
		Frequency:         domain.FrequencyWeekly,
		StartDate:         start,
		LastGeneratedDate: &last,
		IsActive:          true,
	})

	require.NoError(t, p.ProcessAll(ctx))

	transactions, err := s.AllTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, transactions, 1, "only occurrences after the last generated date are due")
	assert.Equal(t, start.AddDays(14), transactions[0].Date)
}

func TestProcessAll_EndDateIsInclusive(t *testing.T) {
	ctx := context.Background()
	today := date(2024, 5, 8)
	end := today
	p, s := testProcessor(t, today)

	insertDef(t, s, domain.RecurringTransaction{
		Category:  "Rent",
		Amount:    1200,
		Kind:      domain.KindExpense,
		Frequency: domain.FrequencyWeekly,
		StartDate: date(2024, 5, 1),
		EndDate:   &end,
		IsActive:  true,
	})

	require.NoError(t, p.ProcessAll(ctx))

	transactions, err := s.AllTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, transactions, 2)
	assert.Equal(t, end, transactions[1].Date, "an occurrence falling on the end date itself is generated")
}

func TestProcessAll_ExpiredDefinitionDeactivatedWithoutGenerating(t *testing.T) {
	ctx := context.Background()
	end := date(2024, 5, 10)
	p, s := testProcessor(t, end.AddDays(1))

	// Occurrences on May 1 and May 8 were never generated, but the end
	// date has passed, so the definition is retired without backfill.
	def := insertDef(t, s, domain.RecurringTransaction{
		Category:  "Rent",
		Amount:    1200,
		Kind:      domain.KindExpense,
		Frequency: domain.FrequencyWeekly,
		StartDate: date(2024, 5, 1),
		EndDate:   &end,
		IsActive:  true,
	})

	require.NoError(t, p.ProcessAll(ctx))

	transactions, err := s.AllTransactions(ctx)
	require.NoError(t, err)
	assert.Empty(t, transactions)

	got, err := s.RecurringByID(ctx, def.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}

func TestProcessAll_StartDateInFuture(t *testing.T) {
	ctx := context.Background()
	p, s := testProcessor(t, date(2024, 5, 1))

	insertDef(t, s, domain.RecurringTransaction{
		Category:  "Insurance",
		Amount:    200,
		Kind:      domain.KindExpense,
		Frequency: domain.FrequencyMonthly,
		StartDate: date(2024, 6, 1),
		IsActive:  true,
	})

	require.NoError(t, p.ProcessAll(ctx))

	transactions, err := s.AllTransactions(ctx)
	require.NoError(t, err)
	assert.Empty(t, transactions, "nothing is due before the start date")
}

func TestProcessAll_SkipsInactiveDefinitions(t *testing.T) {
	ctx := context.Background()
	p, s := testProcessor(t, date(2024, 5, 15))

	insertDef(t, s, domain.RecurringTransaction{
		Category:  "Gym",
		Amount:    30,
		Kind:      domain.KindExpense,
		Frequency: domain.FrequencyWeekly,
		StartDate: date(2024, 5, 1),
		IsActive:  false,
	})

	require.NoError(t, p.ProcessAll(ctx))

	transactions, err := s.AllTransactions(ctx)
	require.NoError(t, err)
	assert.Empty(t, transactions)
}

func TestProcessAll_MonthlyCatchUp(t *testing.T) {
	ctx := context.Background()
	p, s := testProcessor(t, date(2024, 7, 15))

	insertDef(t, s, domain.RecurringTransaction{
		Category:  "Salary",
		Amount:    3000,
		Kind:      domain.KindIncome,
		Frequency: domain.FrequencyMonthly,
		StartDate: date(2024, 5, 15),
		IsActive:  true,
	})

	require.NoError(t, p.ProcessAll(ctx))

	transactions, err := s.AllTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, transactions, 3)
	assert.Equal(t, date(2024, 5, 15), transactions[0].Date)
	assert.Equal(t, date(2024, 6, 15), transactions[1].Date)
	assert.Equal(t, date(2024, 7, 15), transactions[2].Date)
	assert.Equal(t, 3000.0, transactions[0].Amount)
	assert.Equal(t, domain.KindIncome, transactions[0].Kind)
}
