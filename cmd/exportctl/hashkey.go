package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/labelprint/orderexport/internal/api/middleware"
)

var hashKeyCmd = &cobra.Command{
	Use:   "hash-key <api-key>",
	Short: "Hash an admin API key for ADMIN_API_KEY_HASH",
	Args:  cobra.ExactArgs(1),
	RunE:  hashKey,
}

func init() {
	rootCmd.AddCommand(hashKeyCmd)
}

func hashKey(cmd *cobra.Command, args []string) error {
	hash, err := middleware.HashAPIKey(args[0])
	if err != nil {
		return fmt.Errorf("failed to hash key: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), hash)
	return nil
}
