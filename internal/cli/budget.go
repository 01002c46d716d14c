package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ledgerly/ledgerly/internal/budget"
	"github.com/ledgerly/ledgerly/internal/domain"
)

// NewBudgetCommand creates the budget command group.
func NewBudgetCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Manage monthly category budgets",
	}

	cmd.AddCommand(
		newBudgetSetCommand(rootOpts),
		newBudgetListCommand(rootOpts),
		newBudgetRefreshCommand(rootOpts),
	)

	return cmd
}

func newBudgetSetCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		limit     float64
		monthYear string
	)

	cmd := &cobra.Command{
		Use:   "set <category>",
		Short: "Set the monthly limit for a category",
		Long: `Set or replace the spending limit for one category in one month.

Example:
  ledgerly budget set Groceries --limit 500
  ledgerly budget set Rent --limit 1500 --month 2024-06`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)

			s, _, err := rootOpts.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			b, err := budget.NewService(s).SetBudget(ctx, args[0], limit, monthYear)
			if err != nil {
				return err
			}

			fmt.Printf("Budget for %s in %s set to %.2f (%.2f spent, %.2f remaining)\n",
				b.Category, b.MonthYear, b.MonthlyBudget, b.CurrentSpending, b.Remaining())
			return nil
		},
	}

	cmd.Flags().Float64Var(&limit, "limit", 0, "monthly spending limit (required)")
	cmd.Flags().StringVar(&monthYear, "month", "", "month in YYYY-MM format (default: current month)")
	_ = cmd.MarkFlagRequired("limit")

	return cmd
}

func newBudgetListCommand(rootOpts *RootOptions) *cobra.Command {
	var monthYear string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List budgets for a month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)

			s, _, err := rootOpts.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			if monthYear == "" {
				monthYear = domain.CurrentMonthYear()
			}

			budgets, err := budget.NewService(s).BudgetsForMonth(ctx, monthYear)
			if err != nil {
				return err
			}
			if len(budgets) == 0 {
				fmt.Printf("No budgets set for %s.\n", monthYear)
				return nil
			}

			for _, b := range budgets {
				marker := ""
				switch {
				case b.IsExceeded():
					marker = "  EXCEEDED"
				case b.IsNearLimit(domain.DefaultNearLimitThreshold):
					marker = "  near limit"
				}
				fmt.Printf("%-20s %10.2f / %10.2f  (%5.1f%%)%s\n",
					b.Category, b.CurrentSpending, b.MonthlyBudget, b.PercentageUsed(), marker)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&monthYear, "month", "", "month in YYYY-MM format (default: current month)")

	return cmd
}

func newBudgetRefreshCommand(rootOpts *RootOptions) *cobra.Command {
	var monthYear string

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Recompute budget spending totals from the ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)

			s, _, err := rootOpts.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			if monthYear == "" {
				monthYear = domain.CurrentMonthYear()
			}

			updated, err := budget.NewService(s).RefreshSpending(ctx, monthYear)
			if err != nil {
				return err
			}

			fmt.Printf("Refreshed %s: %d budget(s) updated.\n", monthYear, updated)
			return nil
		},
	}

	cmd.Flags().StringVar(&monthYear, "month", "", "month in YYYY-MM format (default: current month)")

	return cmd
}
