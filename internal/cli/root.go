// Package cli implements the ledgerly command-line interface.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/ledgerly/ledgerly/internal/config"
	"github.com/ledgerly/ledgerly/internal/logger"
	"github.com/ledgerly/ledgerly/internal/store"
)

// RootOptions holds flags shared by every command.
type RootOptions struct {
	ConfigPath string
	Database   string
}

// NewRootCommand creates the ledgerly root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "ledgerly",
		Short: "Personal finance ledger",
		Long: `Ledgerly tracks income and expenses in a local SQLite ledger,
enforces per-category monthly budgets, materializes recurring transactions,
and replicates everything to a remote document store when cloud sync is on.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to config file")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database (overrides config)")

	cmd.AddCommand(
		NewAddCommand(opts),
		NewListCommand(opts),
		NewBudgetCommand(opts),
		NewRecurringCommand(opts),
		NewSyncCommand(opts),
		NewBackupCommand(opts),
	)

	return cmd
}

// openStore loads config, applies flag overrides and opens the local store.
func (o *RootOptions) openStore() (*store.Store, *config.Config, error) {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return nil, nil, err
	}
	if o.Database != "" {
		cfg.Database.Path = o.Database
	}

	s, err := store.Open(cfg.Database.Path)
	if err != nil {
		return nil, nil, err
	}
	return s, cfg, nil
}

// commandContext returns a context carrying the CLI logger.
func commandContext(cmd *cobra.Command) context.Context {
	return logger.WithContext(cmd.Context(), logger.New())
}
