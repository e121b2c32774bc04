package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/labelprint/orderexport/internal/domain"
	"github.com/labelprint/orderexport/internal/export"
	"github.com/labelprint/orderexport/internal/service"
)

var exportFlags struct {
	option string
	start  string
	end    string
	ids    []string
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export orders to the partner CSV",
	Long: `Export mirrored orders to a partner CSV file, record the export and tag
the orders in Shopify.

Without --ids every mirrored order inside the window is exported.

Options:
  all        - no time window (default)
  dateRange  - whole days from --start to --end (YYYY-MM-DD)
  timeRange  - instants from --start to --end (RFC3339)

Examples:
  exportctl export --option dateRange --start 2024-03-01 --end 2024-03-07
  exportctl export --option timeRange --start 2024-03-07T08:00:00Z --end 2024-03-07T12:00:00Z
  exportctl export --ids gid://shopify/Order/1,gid://shopify/Order/2`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportFlags.option, "option", "all", "export option: all, dateRange, timeRange")
	exportCmd.Flags().StringVar(&exportFlags.start, "start", "", "window start (date or RFC3339)")
	exportCmd.Flags().StringVar(&exportFlags.end, "end", "", "window end (date or RFC3339)")
	exportCmd.Flags().StringSliceVar(&exportFlags.ids, "ids", nil, "order IDs to export")
}

func runExport(cmd *cobra.Command, args []string) error {
	filters, err := parseFilters(exportFlags.option, exportFlags.start, exportFlags.end)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	a, cleanup, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	var result *export.Result
	if len(exportFlags.ids) > 0 {
		result, err = a.Export.Export(ctx, service.ExportRequest{OrderIDs: exportFlags.ids, Filters: filters})
	} else {
		result, err = a.Export.ExportStored(ctx, filters)
	}
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	printResult(cmd, result)
	return nil
}

func printResult(cmd *cobra.Command, r *export.Result) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✅ Exported %s\n", r.Filename)
	fmt.Fprintf(out, "  Location: %s\n", r.Location)
	if r.Record != nil {
		fmt.Fprintf(out, "  Orders: %d\n", r.Record.OrderCount)
	}
	fmt.Fprintf(out, "  Rows: %d\n", r.Rows)
	if len(r.SkippedOrders) > 0 {
		fmt.Fprintf(out, "  Skipped (no line items): %s\n", strings.Join(r.SkippedOrders, ", "))
	}
	fmt.Fprintf(out, "  Tagged: %d, tag failures: %d\n", r.TaggedOrders, r.TagFailures)
}

// parseFilters maps the command line flags to export filters
func parseFilters(option, start, end string) (domain.ExportFilters, error) {
	var f domain.ExportFilters
	switch strings.ToLower(strings.TrimSpace(option)) {
	case "", "all":
		return f, nil
	case "daterange":
		f.Option = domain.ExportOptionDateRange
	case "timerange":
		f.Option = domain.ExportOptionTimeRange
	default:
		return f, fmt.Errorf("unknown export option %q", option)
	}

	if start == "" || end == "" {
		return f, fmt.Errorf("--start and --end are required for %s", f.Option)
	}
	s, err := parseTime(start)
	if err != nil {
		return f, fmt.Errorf("invalid --start: %w", err)
	}
	e, err := parseTime(end)
	if err != nil {
		return f, fmt.Errorf("invalid --end: %w", err)
	}
	f.StartTime, f.EndTime = &s, &e
	return f, service.ValidateFilters(f)
}

func parseTime(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", v)
}
