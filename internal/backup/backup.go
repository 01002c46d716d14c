// Package backup writes point-in-time JSON snapshots of the ledger to
// object storage and restores them. Snapshots complement sync: sync
// converges devices on current state, a snapshot preserves one state.
package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ledgerly/ledgerly/internal/domain"
	"github.com/ledgerly/ledgerly/internal/logger"
)

// Snapshot is the serialized ledger state at one point in time.
type Snapshot struct {
	CreatedAt             time.Time                      `json:"created_at"`
	Transactions          []domain.Transaction           `json:"transactions"`
	Budgets               []domain.Budget                `json:"budgets"`
	RecurringTransactions []domain.RecurringTransaction  `json:"recurring_transactions"`
}

// Store is the slice of the local store the service snapshots.
type Store interface {
	AllTransactions(ctx context.Context) ([]domain.Transaction, error)
	AllBudgets(ctx context.Context) ([]domain.Budget, error)
	AllRecurring(ctx context.Context) ([]domain.RecurringTransaction, error)

	UpsertTransaction(ctx context.Context, tx domain.Transaction) error
	UpsertBudget(ctx context.Context, b domain.Budget) error
	UpsertRecurring(ctx context.Context, r domain.RecurringTransaction) error
}

// ObjectStorage is where snapshot objects live.
type ObjectStorage interface {
	// Write stores an object, replacing any previous content.
	Write(ctx context.Context, objectName string, data []byte) error

	// Read fetches an object's full content.
	Read(ctx context.Context, objectName string) ([]byte, error)
}

// Service creates and restores snapshots.
type Service struct {
	store   Store
	storage ObjectStorage

	// now is the timestamp source for snapshot names, overridable in tests.
	now func() time.Time
}

// NewService creates a backup service.
func NewService(store Store, storage ObjectStorage) *Service {
	return &Service{
		store:   store,
		storage: storage,
		now:     time.Now,
	}
}

// Backup snapshots the three collections to a timestamped object and
// returns the object name.
func (s *Service) Backup(ctx context.Context) (string, error) {
	log := logger.FromContext(ctx)

	snap := Snapshot{CreatedAt: s.now()}

	var err error
	if snap.Transactions, err = s.store.AllTransactions(ctx); err != nil {
		return "", fmt.Errorf("reading transactions for backup: %w", err)
	}
	if snap.Budgets, err = s.store.AllBudgets(ctx); err != nil {
		return "", fmt.Errorf("reading budgets for backup: %w", err)
	}
	if snap.RecurringTransactions, err = s.store.AllRecurring(ctx); err != nil {
		return "", fmt.Errorf("reading recurring transactions for backup: %w", err)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding snapshot: %w", err)
	}

	objectName := fmt.Sprintf("snapshots/ledgerly-%s.json", snap.CreatedAt.UTC().Format("20060102T150405Z"))
	if err := s.storage.Write(ctx, objectName, data); err != nil {
		return "", fmt.Errorf("writing snapshot %s: %w", objectName, err)
	}

	log.Info().
		Str("object", objectName).
		Int("transactions", len(snap.Transactions)).
		Int("budgets", len(snap.Budgets)).
		Int("recurring", len(snap.RecurringTransactions)).
		Msg("Snapshot written")

	return objectName, nil
}

// Restore loads a snapshot object and upserts its records into the local
// store. Existing rows with matching keys are replaced; rows absent from
// the snapshot are left alone.
func (s *Service) Restore(ctx context.Context, objectName string) error {
	log := logger.FromContext(ctx)

	data, err := s.storage.Read(ctx, objectName)
	if err != nil {
		return fmt.Errorf("reading snapshot %s: %w", objectName, err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("decoding snapshot %s: %w", objectName, err)
	}

	for _, tx := range snap.Transactions {
		if err := s.store.UpsertTransaction(ctx, tx); err != nil {
			return fmt.Errorf("restoring transaction %d: %w", tx.ID, err)
		}
	}
	for _, b := range snap.Budgets {
		if err := s.store.UpsertBudget(ctx, b); err != nil {
			return fmt.Errorf("restoring budget %s/%s: %w", b.Category, b.MonthYear, err)
		}
	}
	for _, r := range snap.RecurringTransactions {
		if err := s.store.UpsertRecurring(ctx, r); err != nil {
			return fmt.Errorf("restoring recurring transaction %d: %w", r.ID, err)
		}
	}

	log.Info().
		Str("object", objectName).
		Time("snapshot_created_at", snap.CreatedAt).
		Msg("Snapshot restored")

	return nil
}
