// Package app wires configuration, storage and services together for the binaries.
package app

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/labelprint/orderexport/internal/config"
	"github.com/labelprint/orderexport/internal/domain"
	"github.com/labelprint/orderexport/internal/export"
	"github.com/labelprint/orderexport/internal/metrics"
	"github.com/labelprint/orderexport/internal/repository"
	"github.com/labelprint/orderexport/internal/repository/postgres"
	"github.com/labelprint/orderexport/internal/service"
	"github.com/labelprint/orderexport/internal/shopify"
	"github.com/labelprint/orderexport/internal/storage"
)

// App holds the wired services
type App struct {
	Repos    *repository.Repositories
	Metrics  *metrics.Metrics
	Shopify  *service.ShopifyService
	Export   *service.ExportService
	Webhook  *service.WebhookService
	Sync     *service.OrderSync
	Resolver domain.ChannelResolver
	// LocalStore is set when exports are written to local disk
	LocalStore *storage.LocalStore
}

// NewLogger builds the zap logger for the environment at the configured level
func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	zcfg := zap.NewDevelopmentConfig()
	if cfg.IsProduction() {
		zcfg = zap.NewProductionConfig()
	}
	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.LogLevel, err)
	}
	zcfg.Level = level
	return zcfg.Build()
}

// New wires the services on top of an open database
func New(ctx context.Context, cfg *config.Config, db *sql.DB, logger *zap.Logger) (*App, error) {
	a := &App{
		Repos:    postgres.NewRepositories(db, logger),
		Metrics:  metrics.New(),
		Resolver: domain.NewChannelResolver(cfg.Export.MarketplaceChannels),
	}

	store, err := a.newStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	client := shopify.NewClient(cfg.Shopify, logger)
	a.Shopify = service.NewShopifyService(client, a.Resolver, logger)

	exporter := export.NewExporter(export.NewExtractor(), store, a.Repos.ExportHistory, logger,
		export.WithOptions(export.Options{CustomerCode: cfg.Export.CustomerCode}),
		export.WithTagger(a.Shopify, cfg.Export.Tag),
		export.WithObserver(a.Metrics),
	)
	a.Export = service.NewExportService(exporter, a.Repos, a.Resolver, cfg.Export.Tag, logger)
	a.Webhook = service.NewWebhookService(a.Repos, a.Resolver, logger)
	a.Sync = service.NewOrderSync(a.Shopify, a.Repos, cfg.Sync.PageSize, a.Metrics, logger)
	return a, nil
}

func (a *App) newStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (export.Storage, error) {
	switch cfg.Storage.Backend {
	case "s3":
		store, err := storage.NewS3Store(ctx, cfg.Storage.S3, storage.WithLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("failed to create S3 storage: %w", err)
		}
		return store, nil
	default:
		store, err := storage.NewLocalStore(cfg.Storage.Dir, cfg.Storage.PublicURL, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create export directory: %w", err)
		}
		a.LocalStore = store
		return store, nil
	}
}
