package export

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/labelprint/orderexport/internal/domain"
	"github.com/labelprint/orderexport/pkg/errors"
)

// Storage persists a produced CSV document and returns where it can be fetched from.
// Save must never replace an existing document; it returns *errors.ErrConflict instead.
type Storage interface {
	Save(ctx context.Context, name string, data []byte) (location string, err error)
	Delete(ctx context.Context, name string) error
}

// HistoryStore records completed exports
type HistoryStore interface {
	Create(ctx context.Context, record *domain.ExportRecord) error
}

// Tagger adds tags to an order in the source platform
type Tagger interface {
	AddTags(ctx context.Context, orderID string, tags []string) error
}

// Observer receives export outcomes, e.g. for metrics
type Observer interface {
	ExportFinished(outcome string, rows, skippedOrders int)
	OrderTagFailed()
}

// maxFilenameAttempts bounds the suffixes tried for exports in the same minute
const maxFilenameAttempts = 100

// Export outcomes reported to the Observer
const (
	OutcomeSuccess      = "success"
	OutcomeInvalidInput = "invalid_input"
	OutcomeEmptyResult  = "empty_result"
	OutcomeStorageError = "storage_error"
	OutcomeHistoryError = "history_error"
)

// Document is the pure result of turning orders into CSV
type Document struct {
	Rows []Row
	// SkippedOrders identifies orders that had no line items
	SkippedOrders []string
	Body          []byte
}

// Result describes a completed export
type Result struct {
	Filename      string
	Location      string
	Record        *domain.ExportRecord
	Rows          int
	SkippedOrders []string
	TaggedOrders  int
	TagFailures   int
	// TaggedOrderIDs are the orders tagged successfully
	TaggedOrderIDs []string
}

// Exporter runs an export: build rows, write the file, record history, tag orders.
type Exporter struct {
	extractor   *Extractor
	options     Options
	storage     Storage
	history     HistoryStore
	tagger      Tagger
	exportedTag string
	observer    Observer
	logger      *zap.Logger
	now         func() time.Time
}

// ExporterOption configures an Exporter
type ExporterOption func(*Exporter)

// WithOptions sets the account-level row values
func WithOptions(opts Options) ExporterOption {
	return func(e *Exporter) {
		e.options = opts
	}
}

// WithTagger enables tagging exported orders with tag after a successful export
func WithTagger(t Tagger, tag string) ExporterOption {
	return func(e *Exporter) {
		e.tagger = t
		e.exportedTag = tag
	}
}

// WithObserver sets an outcome observer
func WithObserver(o Observer) ExporterOption {
	return func(e *Exporter) {
		e.observer = o
	}
}

// WithClock overrides the time source used for the filename and record timestamp
func WithClock(now func() time.Time) ExporterOption {
	return func(e *Exporter) {
		e.now = now
	}
}

// NewExporter creates an Exporter. A nil extractor means the default rules.
func NewExporter(extractor *Extractor, storage Storage, history HistoryStore, logger *zap.Logger, opts ...ExporterOption) *Exporter {
	if extractor == nil {
		extractor = NewExtractor()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Exporter{
		extractor: extractor,
		storage:   storage,
		history:   history,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Build turns orders into rows and the serialized document. It has no side effects
// other than logging skipped orders.
func (e *Exporter) Build(orders []domain.Order) Document {
	var doc Document
	for i := range orders {
		order := &orders[i]
		if len(order.LineItems) == 0 {
			e.logger.Warn("Order has no line items, skipping",
				zap.Int("order_index", i),
				zap.String("order_id", order.ID),
				zap.String("order_name", order.Name),
			)
			doc.SkippedOrders = append(doc.SkippedOrders, orderLabel(order, i))
			continue
		}
		for j := range order.LineItems {
			item := &order.LineItems[j]
			fields := e.extractor.Extract(item.Properties, order.Channel)
			doc.Rows = append(doc.Rows, BuildRow(order, item, fields, e.options))
		}
	}
	doc.Body = Serialize(Header, doc.Rows)
	return doc
}

// Export writes the CSV for orders and records it. The file and the history record are
// written together or not at all; tagging failures are logged and never fail the export.
func (e *Exporter) Export(ctx context.Context, orders []domain.Order, filters domain.ExportFilters) (*Result, error) {
	if len(orders) == 0 {
		e.observe(OutcomeInvalidInput, 0, 0)
		return nil, &errors.ErrInvalidInput{}
	}

	doc := e.Build(orders)
	if len(doc.Rows) == 0 {
		e.observe(OutcomeEmptyResult, 0, len(doc.SkippedOrders))
		return nil, &errors.ErrEmptyResult{OrderCount: len(orders)}
	}

	exportedAt := e.now()
	filename, location, err := e.save(ctx, exportedAt, doc.Body)
	if err != nil {
		e.observe(OutcomeStorageError, len(doc.Rows), len(doc.SkippedOrders))
		return nil, fmt.Errorf("failed to save export file: %w", err)
	}

	record := &domain.ExportRecord{
		ID:         uuid.New(),
		Filename:   filename,
		ExportedAt: exportedAt,
		Filters:    filters,
		OrderCount: len(orders),
		RowCount:   len(doc.Rows),
		Location:   location,
	}
	if err := e.history.Create(ctx, record); err != nil {
		if delErr := e.storage.Delete(ctx, filename); delErr != nil {
			e.logger.Error("Failed to remove export file after history write failed",
				zap.String("filename", filename), zap.Error(delErr))
		}
		e.observe(OutcomeHistoryError, len(doc.Rows), len(doc.SkippedOrders))
		return nil, fmt.Errorf("failed to record export history: %w", err)
	}

	e.logger.Info("Orders exported",
		zap.String("filename", filename),
		zap.String("location", location),
		zap.Int("orders", len(orders)),
		zap.Int("rows", len(doc.Rows)),
		zap.Int("skipped_orders", len(doc.SkippedOrders)),
	)

	result := &Result{
		Filename:      filename,
		Location:      location,
		Record:        record,
		Rows:          len(doc.Rows),
		SkippedOrders: doc.SkippedOrders,
	}
	e.tagOrders(ctx, orders, result)
	e.observe(OutcomeSuccess, result.Rows, len(result.SkippedOrders))
	return result, nil
}

// save stores body under the first free name for exportedAt. Exports within the same
// minute get a numeric suffix, so no stored file is ever replaced and the file
// deleted on rollback is always the one this export created.
func (e *Exporter) save(ctx context.Context, exportedAt time.Time, body []byte) (filename, location string, err error) {
	for seq := 1; seq <= maxFilenameAttempts; seq++ {
		filename = SequencedFilename(exportedAt, seq)
		location, err = e.storage.Save(ctx, filename, body)
		var conflict *errors.ErrConflict
		if !stderrors.As(err, &conflict) {
			return filename, location, err
		}
		e.logger.Debug("Export filename taken, trying next", zap.String("filename", filename))
	}
	return "", "", err
}

func (e *Exporter) tagOrders(ctx context.Context, orders []domain.Order, result *Result) {
	if e.tagger == nil || e.exportedTag == "" {
		return
	}
	tags := []string{e.exportedTag}
	for i := range orders {
		id := orders[i].ID
		if id == "" {
			continue
		}
		if err := e.tagger.AddTags(ctx, id, tags); err != nil {
			tagErr := &errors.ErrDownstreamTagging{OrderID: id, Err: err}
			e.logger.Warn("Failed to tag exported order", zap.String("order_id", id), zap.Error(tagErr))
			result.TagFailures++
			if e.observer != nil {
				e.observer.OrderTagFailed()
			}
			continue
		}
		result.TaggedOrders++
		result.TaggedOrderIDs = append(result.TaggedOrderIDs, id)
	}
}

func (e *Exporter) observe(outcome string, rows, skipped int) {
	if e.observer != nil {
		e.observer.ExportFinished(outcome, rows, skipped)
	}
}

func orderLabel(order *domain.Order, index int) string {
	switch {
	case order.ID != "":
		return order.ID
	case order.Name != "":
		return order.Name
	default:
		return fmt.Sprintf("#%d", index)
	}
}
