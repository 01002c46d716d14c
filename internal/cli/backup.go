package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ledgerly/ledgerly/internal/backup"
)

// NewBackupCommand creates the backup command group.
func NewBackupCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Snapshot the ledger to object storage",
	}

	cmd.AddCommand(
		newBackupCreateCommand(rootOpts),
		newBackupRestoreCommand(rootOpts),
	)

	return cmd
}

func newBackupCreateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Write a snapshot of the ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)

			s, cfg, err := rootOpts.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			if cfg.Backup.Bucket == "" {
				return fmt.Errorf("snapshots require backup.bucket in config")
			}

			svc := backup.NewService(s, backup.NewGCSStorage(cfg.Backup.Bucket))
			object, err := svc.Backup(ctx)
			if err != nil {
				return err
			}

			fmt.Printf("Snapshot written to gs://%s/%s\n", cfg.Backup.Bucket, object)
			return nil
		},
	}

	return cmd
}

func newBackupRestoreCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore <object>",
		Short: "Restore a snapshot into the local ledger",
		Long: `Restore upserts every record from a snapshot object; local rows with
matching keys are replaced, everything else is left alone.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)

			s, cfg, err := rootOpts.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			if cfg.Backup.Bucket == "" {
				return fmt.Errorf("snapshots require backup.bucket in config")
			}

			svc := backup.NewService(s, backup.NewGCSStorage(cfg.Backup.Bucket))
			if err := svc.Restore(ctx, args[0]); err != nil {
				return err
			}

			fmt.Printf("Snapshot %s restored.\n", args[0])
			return nil
		},
	}

	return cmd
}
