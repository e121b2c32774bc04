package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/labelprint/orderexport/internal/config"
	"github.com/labelprint/orderexport/internal/repository"
	"github.com/labelprint/orderexport/internal/repository/postgres"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	// Initialize database
	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	repos := postgres.NewRepositories(db, logger)

	filter := repository.OrderFilter{Limit: 100}
	if len(os.Args) > 1 {
		filter.Query = strings.TrimSpace(os.Args[1])
	}
	if len(os.Args) > 2 {
		if n, err := strconv.Atoi(os.Args[2]); err == nil && n > 0 {
			filter.Limit = n
		}
	}

	fmt.Println("📋 Listing mirrored orders:")

	orders, err := repos.Order.List(context.Background(), filter)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to query orders: %v\n", err)
		os.Exit(1)
	}

	for i, o := range orders {
		items := 0
		for _, li := range o.LineItems {
			items += li.Quantity
		}
		fmt.Printf("Order #%d:\n", i+1)
		fmt.Printf("  ID: %s\n", o.ID)
		fmt.Printf("  Name: %s\n", o.Name)
		if o.CustomerOrderRef != "" {
			fmt.Printf("  PO Number: %s\n", o.CustomerOrderRef)
		}
		fmt.Printf("  Customer: %s\n", o.CustomerName)
		fmt.Printf("  Channel: %s\n", o.ChannelLabel)
		fmt.Printf("  Items: %d (%d line items)\n", items, len(o.LineItems))
		fmt.Printf("  Total: %s %s\n", o.TotalPrice.StringFixed(2), o.Currency)
		fmt.Printf("  Tags: %s\n", strings.Join(o.Tags, ", "))
		if !o.ProcessedAt.IsZero() {
			fmt.Printf("  Processed At: %s\n", o.ProcessedAt.Format("2006-01-02 15:04:05"))
		}
		fmt.Println()
	}

	fmt.Printf("Total: %d orders\n", len(orders))
}
