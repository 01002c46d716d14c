package store

import (
	"context"
	"database/sql"
	"fmt"

	"cloud.google.com/go/civil"

	"github.com/ledgerly/ledgerly/internal/domain"
)

// InsertTransaction inserts a new transaction and fills in its row id.
func (s *Store) InsertTransaction(ctx context.Context, tx *domain.Transaction) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (category, amount, date, kind, notes, payment_method, tags)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		tx.Category, tx.Amount, tx.Date.String(), string(tx.Kind), tx.Notes, tx.PaymentMethod, tx.Tags)
	if err != nil {
		return fmt.Errorf("InsertTransaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("InsertTransaction: last insert id: %w", err)
	}
	tx.ID = id

	return nil
}

// UpsertTransaction inserts or replaces a transaction by its row id.
// Records with a zero id are inserted fresh. The sync engine uses this for
// pulled remote documents, which always overwrite the local row with the
// same key.
func (s *Store) UpsertTransaction(ctx context.Context, tx domain.Transaction) error {
	if tx.ID == 0 {
		return s.InsertTransaction(ctx, &tx)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO transactions (id, category, amount, date, kind, notes, payment_method, tags)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.Category, tx.Amount, tx.Date.String(), string(tx.Kind), tx.Notes, tx.PaymentMethod, tx.Tags)
	if err != nil {
		return fmt.Errorf("UpsertTransaction: %w", err)
	}

	return nil
}

// UpdateTransaction updates an existing transaction by id.
func (s *Store) UpdateTransaction(ctx context.Context, tx domain.Transaction) error {
	if tx.ID == 0 {
		return fmt.Errorf("UpdateTransaction: transaction has no id")
	}

	_, err := s.db.ExecContext(ctx, `
		UPDATE transactions
		SET category = ?, amount = ?, date = ?, kind = ?, notes = ?, payment_method = ?, tags = ?
		WHERE id = ?`,
		tx.Category, tx.Amount, tx.Date.String(), string(tx.Kind), tx.Notes, tx.PaymentMethod, tx.Tags, tx.ID)
	if err != nil {
		return fmt.Errorf("UpdateTransaction: %w", err)
	}

	return nil
}

// DeleteTransaction removes a transaction by id.
func (s *Store) DeleteTransaction(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("DeleteTransaction: %w", err)
	}
	return nil
}

// AllTransactions returns every transaction in the store.
func (s *Store) AllTransactions(ctx context.Context) ([]domain.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, category, amount, date, kind, notes, payment_method, tags
		FROM transactions ORDER BY date, id`)
	if err != nil {
		return nil, fmt.Errorf("AllTransactions: %w", err)
	}
	defer rows.Close()

	var transactions []domain.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("AllTransactions: %w", err)
		}
		transactions = append(transactions, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("AllTransactions: %w", err)
	}

	return transactions, nil
}

// TransactionByID returns one transaction, or nil when it does not exist.
func (s *Store) TransactionByID(ctx context.Context, id int64) (*domain.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, category, amount, date, kind, notes, payment_method, tags
		FROM transactions WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("TransactionByID: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}

	tx, err := scanTransaction(rows)
	if err != nil {
		return nil, fmt.Errorf("TransactionByID: %w", err)
	}
	return &tx, nil
}

func scanTransaction(rows *sql.Rows) (domain.Transaction, error) {
	var (
		tx      domain.Transaction
		dateStr string
		kind    string
	)
	if err := rows.Scan(&tx.ID, &tx.Category, &tx.Amount, &dateStr, &kind, &tx.Notes, &tx.PaymentMethod, &tx.Tags); err != nil {
		return domain.Transaction{}, err
	}

	date, err := civil.ParseDate(dateStr)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("parsing date %q: %w", dateStr, err)
	}
	tx.Date = date
	tx.Kind = domain.TransactionKind(kind)

	return tx, nil
}
