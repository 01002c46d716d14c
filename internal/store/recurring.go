package store

import (
	"context"
	"database/sql"
	"fmt"

	"cloud.google.com/go/civil"

	"github.com/ledgerly/ledgerly/internal/domain"
)

// InsertRecurring inserts a new recurring definition and fills in its row id.
func (s *Store) InsertRecurring(ctx context.Context, r *domain.RecurringTransaction) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO recurring_transactions
			(category, amount, kind, notes, payment_method, tags, frequency, start_date, end_date, last_generated_date, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Category, r.Amount, string(r.Kind), r.Notes, r.PaymentMethod, r.Tags,
		string(r.Frequency), r.StartDate.String(), dateOrNull(r.EndDate), dateOrNull(r.LastGeneratedDate), r.IsActive)
	if err != nil {
		return fmt.Errorf("InsertRecurring: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("InsertRecurring: last insert id: %w", err)
	}
	r.ID = id

	return nil
}

// UpsertRecurring inserts or replaces a recurring definition by its row id.
// Definitions with a zero id are inserted fresh.
func (s *Store) UpsertRecurring(ctx context.Context, r domain.RecurringTransaction) error {
	if r.ID == 0 {
		return s.InsertRecurring(ctx, &r)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO recurring_transactions
			(id, category, amount, kind, notes, payment_method, tags, frequency, start_date, end_date, last_generated_date, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Category, r.Amount, string(r.Kind), r.Notes, r.PaymentMethod, r.Tags,
		string(r.Frequency), r.StartDate.String(), dateOrNull(r.EndDate), dateOrNull(r.LastGeneratedDate), r.IsActive)
	if err != nil {
		return fmt.Errorf("UpsertRecurring: %w", err)
	}

	return nil
}

// UpdateRecurring updates an existing recurring definition by id.
func (s *Store) UpdateRecurring(ctx context.Context, r domain.RecurringTransaction) error {
	if r.ID == 0 {
		return fmt.Errorf("UpdateRecurring: definition has no id")
	}

	_, err := s.db.ExecContext(ctx, `
		UPDATE recurring_transactions
		SET category = ?, amount = ?, kind = ?, notes = ?, payment_method = ?, tags = ?,
		    frequency = ?, start_date = ?, end_date = ?, last_generated_date = ?, is_active = ?
		WHERE id = ?`,
		r.Category, r.Amount, string(r.Kind), r.Notes, r.PaymentMethod, r.Tags,
		string(r.Frequency), r.StartDate.String(), dateOrNull(r.EndDate), dateOrNull(r.LastGeneratedDate), r.IsActive, r.ID)
	if err != nil {
		return fmt.Errorf("UpdateRecurring: %w", err)
	}

	return nil
}

// DeleteRecurring removes a recurring definition by id.
func (s *Store) DeleteRecurring(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM recurring_transactions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("DeleteRecurring: %w", err)
	}
	return nil
}

// SetRecurringActive flips the active flag on one definition. The recurrence
// processor uses this to deactivate definitions whose end date has passed.
func (s *Store) SetRecurringActive(ctx context.Context, id int64, active bool) error {
	if _, err := s.db.ExecContext(ctx, `
		UPDATE recurring_transactions SET is_active = ? WHERE id = ?`, active, id); err != nil {
		return fmt.Errorf("SetRecurringActive: %w", err)
	}
	return nil
}

// ActiveRecurring returns every active recurring definition.
func (s *Store) ActiveRecurring(ctx context.Context) ([]domain.RecurringTransaction, error) {
	return s.queryRecurring(ctx, `
		SELECT id, category, amount, kind, notes, payment_method, tags, frequency, start_date, end_date, last_generated_date, is_active
		FROM recurring_transactions WHERE is_active = 1`)
}

// AllRecurring returns every recurring definition, active or not.
func (s *Store) AllRecurring(ctx context.Context) ([]domain.RecurringTransaction, error) {
	return s.queryRecurring(ctx, `
		SELECT id, category, amount, kind, notes, payment_method, tags, frequency, start_date, end_date, last_generated_date, is_active
		FROM recurring_transactions ORDER BY id`)
}

// RecurringByID returns one definition, or nil when it does not exist.
func (s *Store) RecurringByID(ctx context.Context, id int64) (*domain.RecurringTransaction, error) {
	defs, err := s.queryRecurring(ctx, `
		SELECT id, category, amount, kind, notes, payment_method, tags, frequency, start_date, end_date, last_generated_date, is_active
		FROM recurring_transactions WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(defs) == 0 {
		return nil, nil
	}
	return &defs[0], nil
}

func (s *Store) queryRecurring(ctx context.Context, query string, args ...any) ([]domain.RecurringTransaction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying recurring transactions: %w", err)
	}
	defer rows.Close()

	var defs []domain.RecurringTransaction
	for rows.Next() {
		r, err := scanRecurring(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning recurring transaction: %w", err)
		}
		defs = append(defs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("querying recurring transactions: %w", err)
	}

	return defs, nil
}

func scanRecurring(rows *sql.Rows) (domain.RecurringTransaction, error) {
	var (
		r         domain.RecurringTransaction
		kind      string
		frequency string
		startStr  string
		endStr    sql.NullString
		lastStr   sql.NullString
	)
	if err := rows.Scan(&r.ID, &r.Category, &r.Amount, &kind, &r.Notes, &r.PaymentMethod, &r.Tags,
		&frequency, &startStr, &endStr, &lastStr, &r.IsActive); err != nil {
		return domain.RecurringTransaction{}, err
	}

	r.Kind = domain.TransactionKind(kind)
	r.Frequency = domain.Frequency(frequency)

	start, err := civil.ParseDate(startStr)
	if err != nil {
		return domain.RecurringTransaction{}, fmt.Errorf("parsing start date %q: %w", startStr, err)
	}
	r.StartDate = start

	if r.EndDate, err = parseNullDate(endStr); err != nil {
		return domain.RecurringTransaction{}, fmt.Errorf("parsing end date: %w", err)
	}
	if r.LastGeneratedDate, err = parseNullDate(lastStr); err != nil {
		return domain.RecurringTransaction{}, fmt.Errorf("parsing last generated date: %w", err)
	}

	return r, nil
}

func dateOrNull(d *civil.Date) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func parseNullDate(s sql.NullString) (*civil.Date, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	d, err := civil.ParseDate(s.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
