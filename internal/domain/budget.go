package domain

// DefaultNearLimitThreshold is the percentage-used threshold above which a
// budget is considered near its limit.
const DefaultNearLimitThreshold = 80

// Budget is a per-category monthly spending limit, keyed by
// (Category, MonthYear). CurrentSpending is a materialized aggregate
// recomputed from the transactions table, never trusted independently.
type Budget struct {
	Category        string
	MonthlyBudget   float64
	CurrentSpending float64
	// MonthYear scopes the budget to one calendar month, "YYYY-MM".
	MonthYear string
}

// Remaining returns the budget left for the month. Negative once exceeded.
func (b Budget) Remaining() float64 {
	return b.MonthlyBudget - b.CurrentSpending
}

// PercentageUsed returns spending as a percentage of the limit,
// or 0 when the limit is not positive.
func (b Budget) PercentageUsed() float64 {
	if b.MonthlyBudget <= 0 {
		return 0
	}
	return b.CurrentSpending / b.MonthlyBudget * 100
}

// IsNearLimit reports whether spending has reached threshold percent of the
// limit. Callers usually pass DefaultNearLimitThreshold.
func (b Budget) IsNearLimit(threshold int) bool {
	return b.PercentageUsed() >= float64(threshold)
}

// IsExceeded reports whether spending has gone past the limit.
func (b Budget) IsExceeded() bool {
	return b.CurrentSpending > b.MonthlyBudget
}
