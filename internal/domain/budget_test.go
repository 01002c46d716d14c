package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBudget_Remaining(t *testing.T) {
	b := Budget{Category: "Groceries", MonthlyBudget: 500, CurrentSpending: 320, MonthYear: "2024-05"}
	assert.Equal(t, 180.0, b.Remaining())

	over := Budget{Category: "Rent", MonthlyBudget: 1000, CurrentSpending: 1100, MonthYear: "2024-05"}
	assert.Equal(t, -100.0, over.Remaining())
}

func TestBudget_PercentageUsed(t *testing.T) {
	tests := []struct {
		name     string
		budget   float64
		spending float64
		want     float64
	}{
		{name: "half used", budget: 500, spending: 250, want: 50},
		{name: "fully used", budget: 500, spending: 500, want: 100},
		{name: "over budget", budget: 400, spending: 500, want: 125},
		{name: "zero budget", budget: 0, spending: 100, want: 0},
		{name: "negative budget", budget: -10, spending: 100, want: 0},
		{name: "nothing spent", budget: 500, spending: 0, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Budget{MonthlyBudget: tt.budget, CurrentSpending: tt.spending}
			assert.InDelta(t, tt.want, b.PercentageUsed(), 1e-9)
		})
	}
}

func TestBudget_IsNearLimit(t *testing.T) {
	b := Budget{MonthlyBudget: 100, CurrentSpending: 80}
	assert.True(t, b.IsNearLimit(DefaultNearLimitThreshold), "80%% used should be near the default limit")
	assert.False(t, b.IsNearLimit(90))

	under := Budget{MonthlyBudget: 100, CurrentSpending: 79.99}
	assert.False(t, under.IsNearLimit(DefaultNearLimitThreshold))
}

func TestBudget_IsExceeded(t *testing.T) {
	assert.False(t, Budget{MonthlyBudget: 100, CurrentSpending: 100}.IsExceeded(),
		"spending exactly at the limit is not exceeded")
	assert.True(t, Budget{MonthlyBudget: 100, CurrentSpending: 100.01}.IsExceeded())
}
