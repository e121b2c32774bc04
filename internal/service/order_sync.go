package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/labelprint/orderexport/internal/repository"
)

// OrderFetcher pages through Shopify orders
type OrderFetcher interface {
	FetchOrders(ctx context.Context, first int, after, query string) (*OrderPage, error)
}

// SyncObserver receives sync outcomes, e.g. for metrics
type SyncObserver interface {
	SyncFinished(orders int, err error)
}

// OrderSync mirrors Shopify orders into the order repository. After the first
// successful run only orders updated since the previous run are fetched.
type OrderSync struct {
	fetcher  OrderFetcher
	repos    *repository.Repositories
	pageSize int
	observer SyncObserver
	logger   *zap.Logger

	mu       sync.Mutex
	lastSync time.Time
	now      func() time.Time
}

// NewOrderSync creates a new order sync. observer may be nil.
func NewOrderSync(fetcher OrderFetcher, repos *repository.Repositories, pageSize int, observer SyncObserver, logger *zap.Logger) *OrderSync {
	if pageSize <= 0 {
		pageSize = 50
	}
	return &OrderSync{
		fetcher:  fetcher,
		repos:    repos,
		pageSize: pageSize,
		observer: observer,
		logger:   logger,
		now:      time.Now,
	}
}

// RunOnce runs one sync and returns the number of orders stored.
// Concurrent calls are serialised.
func (s *OrderSync) RunOnce(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	started := s.now()
	query := ""
	if !s.lastSync.IsZero() {
		query = "updated_at:>=" + s.lastSync.UTC().Format(time.RFC3339)
	}

	count, err := s.syncPages(ctx, query)
	if s.observer != nil {
		s.observer.SyncFinished(count, err)
	}
	if err != nil {
		s.logger.Error("Order sync failed", zap.Int("stored", count), zap.Error(err))
		return count, err
	}

	s.lastSync = started
	s.logger.Info("Order sync completed",
		zap.Int("stored", count),
		zap.Bool("incremental", query != ""),
		zap.Duration("took", s.now().Sub(started)),
	)
	return count, nil
}

func (s *OrderSync) syncPages(ctx context.Context, query string) (int, error) {
	count := 0
	cursor := ""
	for {
		if err := ctx.Err(); err != nil {
			return count, err
		}
		page, err := s.fetcher.FetchOrders(ctx, s.pageSize, cursor, query)
		if err != nil {
			return count, err
		}
		for i := range page.Orders {
			order := &page.Orders[i]
			if err := s.repos.Order.Upsert(ctx, order); err != nil {
				return count, fmt.Errorf("failed to store order %s: %w", order.ID, err)
			}
			count++
		}
		if !page.HasNextPage || page.EndCursor == "" || page.EndCursor == cursor {
			return count, nil
		}
		cursor = page.EndCursor
	}
}

// OrderSyncScheduler runs an OrderSync on a cron schedule
type OrderSyncScheduler struct {
	job      *OrderSync
	schedule string
	cron     *cron.Cron
	logger   *zap.Logger

	mu      sync.Mutex
	running bool
}

// NewOrderSyncScheduler creates a scheduler for the standard 5-field cron expression
// (or a descriptor such as "@every 10m").
func NewOrderSyncScheduler(s *OrderSync, schedule string, logger *zap.Logger) *OrderSyncScheduler {
	return &OrderSyncScheduler{
		job:      s,
		schedule: schedule,
		cron:     cron.New(),
		logger:   logger,
	}
}

// Start schedules the sync and returns immediately. An empty schedule disables it.
// The scheduler stops when ctx is cancelled.
func (s *OrderSyncScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schedule == "" {
		s.logger.Info("Order sync schedule not configured, skipping scheduler")
		return nil
	}
	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.schedule, err)
	}

	_, err := s.cron.AddFunc(s.schedule, func() {
		// errors are logged and counted by RunOnce
		_, _ = s.job.RunOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule order sync: %w", err)
	}

	s.cron.Start()
	s.running = true
	s.logger.Info("Order sync scheduler started", zap.String("schedule", s.schedule))

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

// Stop stops the scheduler and waits for a running sync to finish
func (s *OrderSyncScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		<-s.cron.Stop().Done()
		s.running = false
		s.logger.Info("Order sync scheduler stopped")
	}
}

// NextRun returns the next scheduled run, or nil when not running
func (s *OrderSyncScheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}
