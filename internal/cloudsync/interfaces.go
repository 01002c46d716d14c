package cloudsync

import (
	"context"

	"github.com/ledgerly/ledgerly/internal/domain"
)

// Remote collection names. One remote collection per local table, plus a
// per-user preferences document.
const (
	CollectionTransactions    = "transactions"
	CollectionBudgets         = "budgets"
	CollectionRecurring       = "recurring_transactions"
	CollectionUserPreferences = "user_preferences"
)

// Document is one remote record: a key plus schema-less named fields.
type Document struct {
	ID   string
	Data map[string]interface{}
}

// DocumentStore is the remote document store the engine replicates to.
// This interface enables mocking and testing of remote operations.
type DocumentStore interface {
	// Set upserts a document with merge semantics: fields not present in
	// data are preserved remotely.
	Set(ctx context.Context, collection, docID string, data map[string]interface{}) error

	// Get fetches one document, returning nil when it does not exist.
	Get(ctx context.Context, collection, docID string) (*Document, error)

	// QueryByUser returns every document in a collection whose userId
	// field equals userID.
	QueryByUser(ctx context.Context, collection, userID string) ([]Document, error)
}

// LocalStore is the slice of the local store the engine needs: full reads
// for the push phase and insert-or-replace writes for the pull phase.
type LocalStore interface {
	AllTransactions(ctx context.Context) ([]domain.Transaction, error)
	UpsertTransaction(ctx context.Context, tx domain.Transaction) error

	AllBudgets(ctx context.Context) ([]domain.Budget, error)
	UpsertBudget(ctx context.Context, b domain.Budget) error

	AllRecurring(ctx context.Context) ([]domain.RecurringTransaction, error)
	UpsertRecurring(ctx context.Context, r domain.RecurringTransaction) error
}

// SettingsStore is the persisted key-value pairs the sync manager keeps its
// device identity and sync bookkeeping in.
type SettingsStore interface {
	Setting(ctx context.Context, key string) (string, bool, error)
	PutSetting(ctx context.Context, key, value string) error
}
