package domain

import (
	"strings"

	"cloud.google.com/go/civil"
)

// TransactionKind says which side of the ledger a transaction lands on.
// It determines the sign of the amount when aggregating balances.
type TransactionKind string

const (
	// KindIncome marks money coming in.
	KindIncome TransactionKind = "Income"
	// KindExpense marks money going out.
	KindExpense TransactionKind = "Expense"
)

// Valid reports whether k is one of the two known kinds.
func (k TransactionKind) Valid() bool {
	return k == KindIncome || k == KindExpense
}

// Transaction represents one recorded income or expense entry.
// This is a domain struct, not a table row; the store maps it into the
// transactions table schema.
type Transaction struct {
	// ID is the local row id. Zero until the record has been persisted.
	ID int64

	Category string
	// Amount is always non-negative; Kind carries the sign.
	Amount float64
	Date   civil.Date
	Kind   TransactionKind
	Notes  string

	PaymentMethod string
	// Tags is a comma-joined tag list, matching the wire shape used by
	// the legacy mobile client. TagList splits it.
	Tags string
}

// SignedAmount returns the amount with the sign implied by Kind:
// positive for income, negative for expenses.
func (t Transaction) SignedAmount() float64 {
	if t.Kind == KindExpense {
		return -t.Amount
	}
	return t.Amount
}

// TagList splits the comma-joined Tags field, dropping blanks.
func (t Transaction) TagList() []string {
	return SplitTags(t.Tags)
}

// SplitTags splits a comma-joined tag string into a list, dropping blanks.
func SplitTags(s string) []string {
	var tags []string
	for _, tag := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(tag); trimmed != "" {
			tags = append(tags, trimmed)
		}
	}
	return tags
}

// JoinTags is the inverse of SplitTags.
func JoinTags(tags []string) string {
	return strings.Join(tags, ",")
}
