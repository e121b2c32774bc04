package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/labelprint/orderexport/internal/config"
	"github.com/labelprint/orderexport/internal/domain"
	"github.com/labelprint/orderexport/internal/export"
	"github.com/labelprint/orderexport/internal/repository"
	"github.com/labelprint/orderexport/internal/repository/postgres"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run cmd/find-order/main.go <order_id_or_name>")
		fmt.Println("Example: go run cmd/find-order/main.go \"#1033\"")
		fmt.Println("Example: go run cmd/find-order/main.go gid://shopify/Order/6349083345108")
		os.Exit(1)
	}

	ref := strings.TrimSpace(os.Args[1])

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
	ctx := context.Background()

	fmt.Printf("🔍 Searching for order: %s\n\n", ref)

	order, err := repos.Order.GetByID(ctx, ref)
	if err != nil {
		// Fall back to a name search, with and without the leading #
		name := "#" + strings.TrimPrefix(ref, "#")
		matches, listErr := repos.Order.List(ctx, repository.OrderFilter{Query: name, Limit: 10})
		if listErr != nil {
			fmt.Fprintf(os.Stderr, "Failed to search orders: %v\n", listErr)
			os.Exit(1)
		}
		for _, m := range matches {
			if m.Name == name {
				order = m
				break
			}
		}
	}

	if order == nil {
		fmt.Printf("❌ Order not found. Listing recent orders to help debug:\n\n")
		recent, _ := repos.Order.List(ctx, repository.OrderFilter{Limit: 10})
		for _, o := range recent {
			fmt.Printf("  - %s (%s), Customer: %s, Channel: %s\n", o.Name, o.ID, o.CustomerName, o.ChannelLabel)
		}
		os.Exit(1)
	}

	resolver := domain.NewChannelResolver(cfg.Export.MarketplaceChannels)
	if order.Channel.IsZero() {
		order.Channel = resolver.Resolve(order.ChannelLabel)
	}

	fmt.Printf("✅ Found order!\n\n")
	fmt.Printf("ID: %s\n", order.ID)
	fmt.Printf("Name: %s\n", order.Name)
	fmt.Printf("Customer: %s\n", order.CustomerName)
	fmt.Printf("Channel: %s (%s)\n", order.ChannelLabel, order.Channel.Kind)
	fmt.Printf("Delivery: %s\n", order.DeliveryMethod)
	fmt.Printf("Tags: %s\n\n", strings.Join(order.Tags, ", "))

	// Show what the export would write for each line item
	extractor := export.NewExtractor()
	opts := export.Options{CustomerCode: cfg.Export.CustomerCode}
	for i := range order.LineItems {
		item := &order.LineItems[i]
		fmt.Printf("Line item %d: %s x%d\n", i+1, item.SKU, item.Quantity)
		for _, p := range item.Properties {
			fmt.Printf("  property %q = %q\n", p.Name, p.Value)
		}
		row := export.BuildRow(order, item, extractor.Extract(item.Properties, order.Channel), opts)
		for col, value := range row {
			if value != "" {
				fmt.Printf("  %-24s %s\n", export.Header[col]+":", value)
			}
		}
		fmt.Println()
	}
}
