// Package cloudsync replicates the local ledger collections to and from a
// remote document store, scoped to the authenticated user and tagged with
// the originating device.
//
// Each collection sync is push-then-pull: every local record is merge-
// written to the remote collection, then every remote document for the user
// is pulled and upserted locally. There is no diffing and no conflict
// detection; documents overwrite local rows with the same key uncondition-
// ally, so the last writer wins at the document level.
package cloudsync

import (
	"context"
	"fmt"
	"time"

	"github.com/ledgerly/ledgerly/internal/auth"
	"github.com/ledgerly/ledgerly/internal/domain"
	"github.com/ledgerly/ledgerly/internal/logger"
)

// Engine reconciles the three local collections with their remote
// counterparts. Errors never escape its boundary for collection syncs;
// every failure path is converted into a SyncResult.
type Engine struct {
	local  LocalStore
	remote DocumentStore
	auth   auth.Provider

	// now is the timestamp source for lastModified fields. Overridable
	// in tests.
	now func() time.Time
}

// NewEngine creates a sync engine over the given stores and auth provider.
func NewEngine(local LocalStore, remote DocumentStore, provider auth.Provider) *Engine {
	return &Engine{
		local:  local,
		remote: remote,
		auth:   provider,
		now:    time.Now,
	}
}

// SyncTransactions replicates the transactions collection. Returns the count
// of remote documents pulled into the local store.
func (e *Engine) SyncTransactions(ctx context.Context, deviceID string) domain.SyncResult {
	log := logger.FromContext(ctx)

	userID, err := e.requireUser(ctx)
	if err != nil {
		return domain.SyncError(err)
	}

	transactions, err := e.local.AllTransactions(ctx)
	if err != nil {
		return domain.SyncError(fmt.Errorf("reading local transactions: %w", err))
	}

	for _, tx := range transactions {
		doc := transactionToDocument(tx, userID, deviceID, e.now())
		if err := e.remote.Set(ctx, CollectionTransactions, TransactionDocID(tx), doc); err != nil {
			return domain.SyncError(fmt.Errorf("pushing transaction %d: %w", tx.ID, err))
		}
	}

	docs, err := e.remote.QueryByUser(ctx, CollectionTransactions, userID)
	if err != nil {
		return domain.SyncError(fmt.Errorf("pulling transactions: %w", err))
	}

	for _, doc := range docs {
		tx, err := documentToTransaction(doc.Data)
		if err != nil {
			return domain.SyncError(err)
		}
		if err := e.local.UpsertTransaction(ctx, tx); err != nil {
			return domain.SyncError(fmt.Errorf("storing pulled transaction: %w", err))
		}
	}

	log.Info().
		Int("pushed", len(transactions)).
		Int("pulled", len(docs)).
		Str("device_id", deviceID).
		Msg("Transactions synced")

	return domain.SyncSuccess(len(docs))
}

// SyncBudgets replicates the budgets collection. Budget documents are keyed
// by the category_monthYear composite since budgets carry no row id.
func (e *Engine) SyncBudgets(ctx context.Context, deviceID string) domain.SyncResult {
	log := logger.FromContext(ctx)

	userID, err := e.requireUser(ctx)
	if err != nil {
		return domain.SyncError(err)
	}

	budgets, err := e.local.AllBudgets(ctx)
	if err != nil {
		return domain.SyncError(fmt.Errorf("reading local budgets: %w", err))
	}

	for _, b := range budgets {
		doc := budgetToDocument(b, userID, deviceID, e.now())
		if err := e.remote.Set(ctx, CollectionBudgets, BudgetDocID(b), doc); err != nil {
			return domain.SyncError(fmt.Errorf("pushing budget %s: %w", BudgetDocID(b), err))
		}
	}

	docs, err := e.remote.QueryByUser(ctx, CollectionBudgets, userID)
	if err != nil {
		return domain.SyncError(fmt.Errorf("pulling budgets: %w", err))
	}

	for _, doc := range docs {
		b, err := documentToBudget(doc.Data)
		if err != nil {
			return domain.SyncError(err)
		}
		if err := e.local.UpsertBudget(ctx, b); err != nil {
			return domain.SyncError(fmt.Errorf("storing pulled budget: %w", err))
		}
	}

	log.Info().
		Int("pushed", len(budgets)).
		Int("pulled", len(docs)).
		Str("device_id", deviceID).
		Msg("Budgets synced")

	return domain.SyncSuccess(len(docs))
}

// SyncRecurringTransactions replicates the recurring definitions collection.
func (e *Engine) SyncRecurringTransactions(ctx context.Context, deviceID string) domain.SyncResult {
	log := logger.FromContext(ctx)

	userID, err := e.requireUser(ctx)
	if err != nil {
		return domain.SyncError(err)
	}

	defs, err := e.local.AllRecurring(ctx)
	if err != nil {
		return domain.SyncError(fmt.Errorf("reading local recurring transactions: %w", err))
	}

	for _, r := range defs {
		doc := recurringToDocument(r, userID, deviceID, e.now())
		if err := e.remote.Set(ctx, CollectionRecurring, RecurringDocID(r), doc); err != nil {
			return domain.SyncError(fmt.Errorf("pushing recurring transaction %d: %w", r.ID, err))
		}
	}

	docs, err := e.remote.QueryByUser(ctx, CollectionRecurring, userID)
	if err != nil {
		return domain.SyncError(fmt.Errorf("pulling recurring transactions: %w", err))
	}

	for _, doc := range docs {
		r, err := documentToRecurring(doc.Data)
		if err != nil {
			return domain.SyncError(err)
		}
		if err := e.local.UpsertRecurring(ctx, r); err != nil {
			return domain.SyncError(fmt.Errorf("storing pulled recurring transaction: %w", err))
		}
	}

	log.Info().
		Int("pushed", len(defs)).
		Int("pulled", len(docs)).
		Str("device_id", deviceID).
		Msg("Recurring transactions synced")

	return domain.SyncSuccess(len(docs))
}

// SyncUserPreferences merge-writes the per-user preferences document and
// reads it back. The remote copy is not materialized locally yet; the
// read-back is reserved for a future settings merge.
func (e *Engine) SyncUserPreferences(ctx context.Context, darkMode, syncEnabled bool) domain.SyncResult {
	userID, err := e.requireUser(ctx)
	if err != nil {
		return domain.SyncError(err)
	}

	doc := preferencesToDocument(userID, darkMode, syncEnabled, e.now())
	if err := e.remote.Set(ctx, CollectionUserPreferences, userID, doc); err != nil {
		return domain.SyncError(fmt.Errorf("pushing user preferences: %w", err))
	}

	if _, err := e.remote.Get(ctx, CollectionUserPreferences, userID); err != nil {
		return domain.SyncError(fmt.Errorf("reading back user preferences: %w", err))
	}

	return domain.SyncSuccess(1)
}

// FullSync runs the three collection syncs in a fixed order: transactions,
// budgets, then recurring definitions. A failure in one collection does not
// short-circuit the others; the aggregate is successful only when all three
// are.
func (e *Engine) FullSync(ctx context.Context, deviceID string) domain.FullSyncResult {
	result := domain.FullSyncResult{
		Transactions:          e.SyncTransactions(ctx, deviceID),
		Budgets:               e.SyncBudgets(ctx, deviceID),
		RecurringTransactions: e.SyncRecurringTransactions(ctx, deviceID),
	}

	log := logger.FromContext(ctx)
	log.Info().
		Bool("successful", result.IsSuccessful()).
		Str("device_id", deviceID).
		Msg("Full sync completed")

	return result
}

// requireUser enforces the per-collection precondition: a signed-in user.
// No I/O happens when it fails.
func (e *Engine) requireUser(ctx context.Context) (string, error) {
	if !e.auth.IsAuthenticated(ctx) {
		return "", auth.ErrNotAuthenticated
	}
	return e.auth.CurrentUserID(ctx)
}
