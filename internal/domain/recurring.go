package domain

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
)

// Frequency is how often a recurring transaction materializes.
type Frequency string

const (
	FrequencyDaily   Frequency = "DAILY"
	FrequencyWeekly  Frequency = "WEEKLY"
	FrequencyMonthly Frequency = "MONTHLY"
	FrequencyYearly  Frequency = "YEARLY"
)

// ParseFrequency validates and normalizes a frequency string.
func ParseFrequency(s string) (Frequency, error) {
	switch Frequency(s) {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return Frequency(s), nil
	}
	return "", fmt.Errorf("unknown frequency %q", s)
}

// Next advances a date by one period. Monthly and yearly advancement follow
// time.AddDate's calendar rollover rules (Jan 31 + 1 month normalizes past
// the end of February); that behavior is delegated, not re-implemented.
func (f Frequency) Next(d civil.Date) civil.Date {
	switch f {
	case FrequencyDaily:
		return d.AddDays(1)
	case FrequencyWeekly:
		return d.AddDays(7)
	case FrequencyMonthly:
		return civil.DateOf(d.In(time.UTC).AddDate(0, 1, 0))
	case FrequencyYearly:
		return civil.DateOf(d.In(time.UTC).AddDate(1, 0, 0))
	}
	return d
}

// RecurringTransaction is a template for materializing concrete
// transactions on a schedule.
type RecurringTransaction struct {
	// ID is the local row id. Zero until persisted.
	ID int64

	Category      string
	Amount        float64
	Kind          TransactionKind
	Notes         string
	PaymentMethod string
	Tags          string

	Frequency Frequency
	StartDate civil.Date
	// EndDate is nil for open-ended definitions.
	EndDate *civil.Date
	// LastGeneratedDate is nil until the first occurrence materializes.
	// Once set it is always >= StartDate and <= min(today, EndDate).
	LastGeneratedDate *civil.Date
	IsActive          bool
}

// Materialize produces the concrete transaction for one occurrence of the
// definition, dated due. The notes are suffixed so generated records are
// distinguishable from hand-entered ones.
func (r RecurringTransaction) Materialize(due civil.Date) Transaction {
	return Transaction{
		Category:      r.Category,
		Amount:        r.Amount,
		Date:          due,
		Kind:          r.Kind,
		Notes:         r.Notes + " (Recurring)",
		PaymentMethod: r.PaymentMethod,
		Tags:          r.Tags,
	}
}
