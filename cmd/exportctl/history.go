package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var historyFlags struct {
	limit  int
	offset int
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past exports, newest first",
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVar(&historyFlags.limit, "limit", 20, "number of exports to show")
	historyCmd.Flags().IntVar(&historyFlags.offset, "offset", 0, "number of exports to skip")
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, cleanup, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	records, err := a.Export.History(ctx, historyFlags.limit, historyFlags.offset)
	if err != nil {
		return fmt.Errorf("failed to list exports: %w", err)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "EXPORTED AT\tFILE\tOPTION\tORDERS\tROWS\tLOCATION")
	for _, r := range records {
		option := string(r.Filters.Option)
		if option == "" {
			option = "all"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\n",
			r.ExportedAt.Format("2006-01-02 15:04"), r.Filename, option, r.OrderCount, r.RowCount, r.Location)
	}
	return w.Flush()
}
