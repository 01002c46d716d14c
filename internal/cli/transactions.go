package cli

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/spf13/cobra"

	"github.com/ledgerly/ledgerly/internal/domain"
)

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		amount        float64
		dateStr       string
		kind          string
		notes         string
		paymentMethod string
		tags          []string
	)

	cmd := &cobra.Command{
		Use:   "add <category>",
		Short: "Record a transaction",
		Long: `Record one income or expense entry in the local ledger.

Example:
  ledgerly add Groceries --amount 42.50 --type Expense
  ledgerly add Salary --amount 3000 --type Income --date 2024-05-28`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)

			s, _, err := rootOpts.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			date := civil.DateOf(time.Now())
			if dateStr != "" {
				if date, err = civil.ParseDate(dateStr); err != nil {
					return fmt.Errorf("invalid --date, expected YYYY-MM-DD: %w", err)
				}
			}
			k := domain.TransactionKind(kind)
			if !k.Valid() {
				return fmt.Errorf("--type must be %q or %q", domain.KindIncome, domain.KindExpense)
			}

			tx := domain.Transaction{
				Category:      args[0],
				Amount:        amount,
				Date:          date,
				Kind:          k,
				Notes:         notes,
				PaymentMethod: paymentMethod,
				Tags:          domain.JoinTags(tags),
			}
			if err := s.InsertTransaction(ctx, &tx); err != nil {
				return err
			}

			fmt.Printf("Recorded %s %s of %.2f on %s (id %d)\n", tx.Kind, tx.Category, tx.Amount, tx.Date, tx.ID)
			return nil
		},
	}

	cmd.Flags().Float64Var(&amount, "amount", 0, "transaction amount (required)")
	cmd.Flags().StringVar(&dateStr, "date", "", "date in YYYY-MM-DD format (default: today)")
	cmd.Flags().StringVar(&kind, "type", string(domain.KindExpense), "transaction type: Income or Expense")
	cmd.Flags().StringVar(&notes, "notes", "", "free-form notes")
	cmd.Flags().StringVar(&paymentMethod, "payment-method", "", "payment method")
	cmd.Flags().StringSliceVar(&tags, "tags", nil, "comma-separated tags")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)

			s, _, err := rootOpts.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			transactions, err := s.AllTransactions(ctx)
			if err != nil {
				return err
			}

			if len(transactions) == 0 {
				fmt.Println("No transactions recorded.")
				return nil
			}

			for _, tx := range transactions {
				fmt.Printf("%6d  %s  %-8s %10.2f  %s", tx.ID, tx.Date, tx.Kind, tx.Amount, tx.Category)
				if tx.Notes != "" {
					fmt.Printf("  (%s)", tx.Notes)
				}
				fmt.Println()
			}
			return nil
		},
	}

	return cmd
}
