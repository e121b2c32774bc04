package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Mirror Shopify orders into the local database",
	Long: `Fetch orders from Shopify page by page and upsert them into the local
order mirror. Runs once; the server runs the same job on ORDER_SYNC_SCHEDULE.`,
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, cleanup, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	n, err := a.Sync.RunOnce(ctx)
	if err != nil {
		return fmt.Errorf("sync failed after %d orders: %w", n, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✅ Synced %d orders\n", n)
	return nil
}
