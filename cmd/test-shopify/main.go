package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/labelprint/orderexport/internal/config"
	"github.com/labelprint/orderexport/internal/domain"
	"github.com/labelprint/orderexport/internal/service"
	"github.com/labelprint/orderexport/internal/shopify"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	token := cfg.Shopify.AccessToken
	fmt.Printf("Testing Shopify connection...\n\n")
	fmt.Printf("Shop Domain: %s\n", cfg.Shopify.ShopDomain)
	fmt.Printf("Access Token: %s...%s\n", token[:min(10, len(token))], token[max(0, len(token)-4):])
	fmt.Println()

	// Initialize logger
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client := shopify.NewClient(cfg.Shopify, logger)
	svc := service.NewShopifyService(client, domain.NewChannelResolver(cfg.Export.MarketplaceChannels), logger)

	name, err := svc.ShopName(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Connection failed: %v\n\n", err)
		fmt.Println("Please check:")
		fmt.Println("  1. SHOPIFY_SHOP_DOMAIN format: should be 'store-name.myshopify.com' (no https://)")
		fmt.Println("  2. SHOPIFY_ACCESS_TOKEN: should start with 'shpat_' and be the full token")
		os.Exit(1)
	}
	fmt.Printf("✅ Connected to %s\n\n", name)

	page, err := svc.FetchOrders(ctx, 5, "", "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Order query failed: %v\n", err)
		fmt.Println("  Token permissions: needs 'read_orders' (and 'write_orders' for export tagging)")
		os.Exit(1)
	}

	fmt.Printf("Latest %d orders:\n", len(page.Orders))
	for _, o := range page.Orders {
		fmt.Printf("  - %s %s, Channel: %s (%s), Line items: %d\n",
			o.Name, o.CustomerName, o.ChannelLabel, o.Channel.Kind, len(o.LineItems))
	}
}
