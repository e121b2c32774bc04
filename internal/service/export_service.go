package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/labelprint/orderexport/internal/domain"
	"github.com/labelprint/orderexport/internal/export"
	"github.com/labelprint/orderexport/internal/repository"
	"github.com/labelprint/orderexport/pkg/errors"
)

// storePageSize is the page size used when loading orders from the mirror
const storePageSize = 200

type ExportService struct {
	exporter *export.Exporter
	repos    *repository.Repositories
	resolver domain.ChannelResolver
	tag      string
	logger   *zap.Logger
}

// NewExportService creates a new export service. tag is the tag added to exported orders
// and mirrored locally; empty disables the local mirror update.
func NewExportService(exporter *export.Exporter, repos *repository.Repositories, resolver domain.ChannelResolver, tag string, logger *zap.Logger) *ExportService {
	return &ExportService{
		exporter: exporter,
		repos:    repos,
		resolver: resolver,
		tag:      tag,
		logger:   logger,
	}
}

// ValidateFilters checks the export option and its time bounds
func ValidateFilters(f domain.ExportFilters) error {
	if !f.Option.IsValid() {
		return &errors.ErrValidation{
			Message: fmt.Sprintf("unknown export option %q", f.Option),
			Fields:  map[string]string{"exportOption": "invalid"},
		}
	}
	if f.Option == domain.ExportOptionAll {
		return nil
	}
	if f.StartTime == nil || f.EndTime == nil {
		return &errors.ErrValidation{
			Message: "start and end time are required",
			Fields:  map[string]string{"startTime": "required", "endTime": "required"},
		}
	}
	switch f.Option {
	case domain.ExportOptionTimeRange:
		if !f.EndTime.After(*f.StartTime) {
			return &errors.ErrValidation{
				Message: "end time must be after start time",
				Fields:  map[string]string{"endTime": "must be after startTime"},
			}
		}
	case domain.ExportOptionDateRange:
		if f.EndTime.Before(*f.StartTime) {
			return &errors.ErrValidation{
				Message: "end date must not be before start date",
				Fields:  map[string]string{"endTime": "must not be before startTime"},
			}
		}
	}
	return nil
}

// Export exports the requested orders. Inline orders take precedence over order IDs.
// Orders with a processed time outside the filter window are left out; orders
// without one were picked by the caller and are kept.
func (s *ExportService) Export(ctx context.Context, req ExportRequest) (*export.Result, error) {
	if err := ValidateFilters(req.Filters); err != nil {
		return nil, err
	}

	var orders []domain.Order
	switch {
	case len(req.Orders) > 0:
		orders = req.Orders
	case len(req.OrderIDs) > 0:
		stored, err := s.repos.Order.ListByIDs(ctx, req.OrderIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to load orders: %w", err)
		}
		if missing := len(req.OrderIDs) - len(stored); missing > 0 {
			s.logger.Warn("Some requested orders are not in the local mirror", zap.Int("missing", missing))
		}
		orders = derefOrders(stored)
	}

	kept := orders[:0:0]
	for i := range orders {
		o := orders[i]
		if !o.ProcessedAt.IsZero() && !req.Filters.Contains(o.ProcessedAt) {
			continue
		}
		kept = append(kept, o)
	}
	if dropped := len(orders) - len(kept); dropped > 0 {
		s.logger.Info("Orders outside the export window left out", zap.Int("dropped", dropped))
	}

	return s.run(ctx, kept, req.Filters)
}

// ExportStored exports every mirrored order inside the filter window
func (s *ExportService) ExportStored(ctx context.Context, filters domain.ExportFilters) (*export.Result, error) {
	if err := ValidateFilters(filters); err != nil {
		return nil, err
	}

	filter := repository.OrderFilter{Limit: storePageSize}
	if start, end, bounded := filters.Window(); bounded {
		filter.From = &start
		filter.To = &end
	}

	var orders []domain.Order
	for {
		page, err := s.repos.Order.List(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("failed to load orders: %w", err)
		}
		orders = append(orders, derefOrders(page)...)
		if len(page) < filter.Limit {
			break
		}
		filter.Offset += len(page)
	}

	return s.run(ctx, orders, filters)
}

func (s *ExportService) run(ctx context.Context, orders []domain.Order, filters domain.ExportFilters) (*export.Result, error) {
	for i := range orders {
		if orders[i].Channel.IsZero() {
			orders[i].Channel = s.resolver.Resolve(orders[i].ChannelLabel)
		}
	}

	result, err := s.exporter.Export(ctx, orders, filters)
	if err != nil {
		return nil, err
	}

	if s.tag != "" {
		for _, id := range result.TaggedOrderIDs {
			if err := s.repos.Order.AddTag(ctx, id, s.tag); err != nil {
				s.logger.Warn("Failed to mirror export tag locally", zap.String("order_id", id), zap.Error(err))
			}
		}
	}
	return result, nil
}

// History lists past exports, newest first
func (s *ExportService) History(ctx context.Context, limit, offset int) ([]*domain.ExportRecord, error) {
	return s.repos.ExportHistory.List(ctx, limit, offset)
}

// ListOrders lists mirrored orders
func (s *ExportService) ListOrders(ctx context.Context, filter repository.OrderFilter) ([]*domain.Order, error) {
	return s.repos.Order.List(ctx, filter)
}

// NewExportResponse maps an export result for output
func NewExportResponse(r *export.Result) ExportResponse {
	skipped := r.SkippedOrders
	if skipped == nil {
		skipped = []string{}
	}
	resp := ExportResponse{
		Filename:      r.Filename,
		FilePath:      r.Location,
		RowCount:      r.Rows,
		SkippedOrders: skipped,
		TaggedOrders:  r.TaggedOrders,
		TagFailures:   r.TagFailures,
	}
	if r.Record != nil {
		resp.ExportedAt = r.Record.ExportedAt
		resp.OrderCount = r.Record.OrderCount
	} else {
		resp.ExportedAt = time.Now()
	}
	return resp
}

func derefOrders(in []*domain.Order) []domain.Order {
	out := make([]domain.Order, 0, len(in))
	for _, o := range in {
		out = append(out, *o)
	}
	return out
}
