package cli

import (
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/spf13/cobra"

	"github.com/ledgerly/ledgerly/internal/domain"
	"github.com/ledgerly/ledgerly/internal/recurrence"
)

// NewRecurringCommand creates the recurring command group.
func NewRecurringCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recurring",
		Short: "Manage recurring transaction definitions",
	}

	cmd.AddCommand(
		newRecurringAddCommand(rootOpts),
		newRecurringListCommand(rootOpts),
		newRecurringProcessCommand(rootOpts),
	)

	return cmd
}

func newRecurringAddCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		amount    float64
		kind      string
		frequency string
		startStr  string
		endStr    string
		notes     string
	)

	cmd := &cobra.Command{
		Use:   "add <category>",
		Short: "Define a recurring transaction",
		Long: `Define a template that the daily pass materializes into transactions.

Example:
  ledgerly recurring add Rent --amount 1200 --frequency MONTHLY --start 2024-01-01
  ledgerly recurring add Gym --amount 30 --frequency WEEKLY --start 2024-05-01 --end 2024-12-31`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)

			s, _, err := rootOpts.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			k := domain.TransactionKind(kind)
			if !k.Valid() {
				return fmt.Errorf("--type must be %q or %q", domain.KindIncome, domain.KindExpense)
			}
			freq, err := domain.ParseFrequency(frequency)
			if err != nil {
				return err
			}
			start, err := civil.ParseDate(startStr)
			if err != nil {
				return fmt.Errorf("invalid --start, expected YYYY-MM-DD: %w", err)
			}
			var end *civil.Date
			if endStr != "" {
				d, err := civil.ParseDate(endStr)
				if err != nil {
					return fmt.Errorf("invalid --end, expected YYYY-MM-DD: %w", err)
				}
				if d.Before(start) {
					return fmt.Errorf("--end must not be before --start")
				}
				end = &d
			}

			def := domain.RecurringTransaction{
				Category:  args[0],
				Amount:    amount,
				Kind:      k,
				Notes:     notes,
				Frequency: freq,
				StartDate: start,
				EndDate:   end,
				IsActive:  true,
			}
			if err := s.InsertRecurring(ctx, &def); err != nil {
				return err
			}

			fmt.Printf("Recurring %s %s of %.2f (%s from %s, id %d)\n",
				def.Kind, def.Category, def.Amount, def.Frequency, def.StartDate, def.ID)
			return nil
		},
	}

	cmd.Flags().Float64Var(&amount, "amount", 0, "amount per occurrence (required)")
	cmd.Flags().StringVar(&kind, "type", string(domain.KindExpense), "transaction type: Income or Expense")
	cmd.Flags().StringVar(&frequency, "frequency", "", "DAILY, WEEKLY, MONTHLY or YEARLY (required)")
	cmd.Flags().StringVar(&startStr, "start", "", "first occurrence date, YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&endStr, "end", "", "last possible occurrence date, YYYY-MM-DD")
	cmd.Flags().StringVar(&notes, "notes", "", "free-form notes")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("frequency")
	_ = cmd.MarkFlagRequired("start")

	return cmd
}

func newRecurringListCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recurring transaction definitions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)

			s, _, err := rootOpts.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			defs, err := s.AllRecurring(ctx)
			if err != nil {
				return err
			}
			if len(defs) == 0 {
				fmt.Println("No recurring transactions defined.")
				return nil
			}

			for _, def := range defs {
				state := "active"
				if !def.IsActive {
					state = "inactive"
				}
				fmt.Printf("%6d  %-8s %10.2f  %-20s %s from %s", def.ID, def.Frequency, def.Amount, def.Category, state, def.StartDate)
				if def.EndDate != nil {
					fmt.Printf(" until %s", *def.EndDate)
				}
				if def.LastGeneratedDate != nil {
					fmt.Printf(" (last generated %s)", *def.LastGeneratedDate)
				}
				fmt.Println()
			}
			return nil
		},
	}

	return cmd
}

func newRecurringProcessCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process",
		Short: "Run the catch-up pass now",
		Long:  `Materialize every due occurrence of every active recurring definition.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)

			s, _, err := rootOpts.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			if err := recurrence.NewProcessor(s).ProcessAll(ctx); err != nil {
				return err
			}

			fmt.Println("Recurring transactions processed.")
			return nil
		},
	}

	return cmd
}
