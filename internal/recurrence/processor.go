// Package recurrence materializes recurring transaction definitions into
// concrete transactions. A daily catch-up pass generates every occurrence
// that has come due since the last run, so missed days (device off, process
// down) are backfilled on the next run.
package recurrence

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/civil"

	"github.com/ledgerly/ledgerly/internal/domain"
	"github.com/ledgerly/ledgerly/internal/logger"
)

// Store is the slice of the local store the processor needs.
type Store interface {
	ActiveRecurring(ctx context.Context) ([]domain.RecurringTransaction, error)
	InsertTransaction(ctx context.Context, tx *domain.Transaction) error
	UpdateRecurring(ctx context.Context, r domain.RecurringTransaction) error
	SetRecurringActive(ctx context.Context, id int64, active bool) error
}

// Processor runs the catch-up pass over all active definitions.
type Processor struct {
	store Store

	// today is the calendar-date source, overridable in tests.
	today func() civil.Date
}

// NewProcessor creates a processor over the given store.
func NewProcessor(store Store) *Processor {
	return &Processor{
		store: store,
		today: func() civil.Date { return civil.DateOf(time.Now()) },
	}
}

// ProcessAll runs the catch-up pass for every active definition. Failures on
// one definition do not stop the others; the first error is returned after
// the full pass so the caller can schedule a retry.
func (p *Processor) ProcessAll(ctx context.Context) error {
	log := logger.FromContext(ctx)

	defs, err := p.store.ActiveRecurring(ctx)
	if err != nil {
		return fmt.Errorf("reading active recurring transactions: %w", err)
	}

	today := p.today()
	var firstErr error
	generated := 0
	for _, def := range defs {
		n, err := p.processDefinition(ctx, def, today)
		if err != nil {
			log.Error().Err(err).Int64("recurring_id", def.ID).Msg("Failed to process recurring transaction")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		generated += n
	}

	log.Info().
		Int("definitions", len(defs)).
		Int("generated", generated).
		Str("date", today.String()).
		Msg("Recurring transactions processed")

	return firstErr
}

// processDefinition generates every occurrence of one definition that is due
// on or before today, updating the definition's last generated date after
// each insert so a crash mid-pass never duplicates occurrences.
func (p *Processor) processDefinition(ctx context.Context, def domain.RecurringTransaction, today civil.Date) (int, error) {
	// Definitions past their end date are retired before any catch-up:
	// occurrences between the last generated date and the end date are
	// not backfilled once the end date has passed.
	if def.EndDate != nil && today.After(*def.EndDate) {
		if err := p.store.SetRecurringActive(ctx, def.ID, false); err != nil {
			return 0, fmt.Errorf("deactivating recurring transaction %d: %w", def.ID, err)
		}
		return 0, nil
	}

	next := def.StartDate
	if def.LastGeneratedDate != nil {
		next = def.Frequency.Next(*def.LastGeneratedDate)
	}

	generated := 0
	for !next.After(today) {
		if def.EndDate != nil && next.After(*def.EndDate) {
			break
		}

		tx := def.Materialize(next)
		if err := p.store.InsertTransaction(ctx, &tx); err != nil {
			return generated, fmt.Errorf("inserting occurrence for recurring transaction %d: %w", def.ID, err)
		}

		due := next
		def.LastGeneratedDate = &due
		if err := p.store.UpdateRecurring(ctx, def); err != nil {
			return generated, fmt.Errorf("updating recurring transaction %d: %w", def.ID, err)
		}

		generated++
		next = def.Frequency.Next(next)
	}

	return generated, nil
}
