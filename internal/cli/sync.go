package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ledgerly/ledgerly/internal/auth"
	"github.com/ledgerly/ledgerly/internal/cloudsync"
	"github.com/ledgerly/ledgerly/internal/config"
	"github.com/ledgerly/ledgerly/internal/store"
)

// NewSyncCommand creates the sync command group.
func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Replicate the ledger to the remote document store",
	}

	cmd.AddCommand(
		newSyncRunCommand(rootOpts),
		newSyncStatusCommand(rootOpts),
		newSyncEnableCommand(rootOpts, true),
		newSyncEnableCommand(rootOpts, false),
	)

	return cmd
}

// newSyncManager wires the engine and manager from config. The remote store
// must be closed by the caller via the returned closer.
func newSyncManager(cmd *cobra.Command, s *store.Store, cfg *config.Config) (*cloudsync.Manager, func(), error) {
	if cfg.Sync.ProjectID == "" {
		return nil, nil, fmt.Errorf("cloud sync requires sync.project_id in config")
	}

	remote, err := cloudsync.NewFirestoreStore(cmd.Context(), cfg.Sync.ProjectID)
	if err != nil {
		return nil, nil, err
	}

	provider := auth.StaticProvider{UserID: cfg.Sync.UserID}
	engine := cloudsync.NewEngine(s, remote, provider)
	manager := cloudsync.NewManager(engine, s, provider)

	return manager, func() { _ = remote.Close() }, nil
}

func newSyncRunCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a full sync now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)

			s, cfg, err := rootOpts.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			manager, closeRemote, err := newSyncManager(cmd, s, cfg)
			if err != nil {
				return err
			}
			defer closeRemote()

			result, err := manager.SyncAll(ctx)
			if err != nil {
				return err
			}
			if !result.IsSuccessful() {
				return fmt.Errorf("sync completed with failures: transactions=%q budgets=%q recurring=%q",
					result.Transactions.Err, result.Budgets.Err, result.RecurringTransactions.Err)
			}

			fmt.Printf("Synced %d transactions, %d budgets, %d recurring definitions.\n",
				result.Transactions.SyncedCount,
				result.Budgets.SyncedCount,
				result.RecurringTransactions.SyncedCount)
			return nil
		},
	}

	return cmd
}

func newSyncStatusCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show sync state for this installation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)

			s, cfg, err := rootOpts.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			manager, closeRemote, err := newSyncManager(cmd, s, cfg)
			if err != nil {
				return err
			}
			defer closeRemote()

			deviceID, err := manager.DeviceID(ctx)
			if err != nil {
				return err
			}
			enabled, err := manager.IsCloudSyncEnabled(ctx)
			if err != nil {
				return err
			}
			lastSync, err := manager.LastSyncTime(ctx)
			if err != nil {
				return err
			}

			fmt.Printf("Device ID: %s\n", deviceID)
			fmt.Printf("Enabled:   %t\n", enabled)
			if lastSync.IsZero() {
				fmt.Println("Last sync: never")
			} else {
				fmt.Printf("Last sync: %s\n", lastSync.Local())
			}
			return nil
		},
	}

	return cmd
}

func newSyncEnableCommand(rootOpts *RootOptions, enable bool) *cobra.Command {
	use, short := "enable", "Turn cloud sync on (runs an immediate sync)"
	if !enable {
		use, short = "disable", "Turn cloud sync off"
	}

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)

			s, cfg, err := rootOpts.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			manager, closeRemote, err := newSyncManager(cmd, s, cfg)
			if err != nil {
				return err
			}
			defer closeRemote()

			if err := manager.SetCloudSyncEnabled(ctx, enable); err != nil {
				return err
			}

			if enable {
				fmt.Println("Cloud sync enabled.")
			} else {
				fmt.Println("Cloud sync disabled.")
			}
			return nil
		},
	}

	return cmd
}
