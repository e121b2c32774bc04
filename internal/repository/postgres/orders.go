package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/labelprint/orderexport/internal/domain"
	"github.com/labelprint/orderexport/internal/repository"
	"github.com/labelprint/orderexport/pkg/errors"
)

const orderColumns = `id, name, customer_order_ref, processed_at, customer_name,
			channel_label, channel_kind, channel_vendor, delivery_method, address, line_items,
			tags, total_price, currency, financial_status, fulfillment_status, created_at, updated_at`

const defaultListLimit = 50

type orderRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *sql.DB, logger *zap.Logger) *orderRepository {
	return &orderRepository{
		db:     db,
		logger: logger,
	}
}

// Upsert inserts the order or replaces the mirrored copy. Shopify is the source of truth,
// so every column is overwritten except created_at.
func (r *orderRepository) Upsert(ctx context.Context, order *domain.Order) error {
	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			customer_order_ref = EXCLUDED.customer_order_ref,
			processed_at = EXCLUDED.processed_at,
			customer_name = EXCLUDED.customer_name,
			channel_label = EXCLUDED.channel_label,
			channel_kind = EXCLUDED.channel_kind,
			channel_vendor = EXCLUDED.channel_vendor,
			delivery_method = EXCLUDED.delivery_method,
			address = EXCLUDED.address,
			line_items = EXCLUDED.line_items,
			tags = EXCLUDED.tags,
			total_price = EXCLUDED.total_price,
			currency = EXCLUDED.currency,
			financial_status = EXCLUDED.financial_status,
			fulfillment_status = EXCLUDED.fulfillment_status,
			updated_at = EXCLUDED.updated_at
	`

	if order.ID == "" {
		return &errors.ErrValidation{Message: "order id is required", Fields: map[string]string{"id": "required"}}
	}

	now := time.Now()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now

	addressJSON, err := json.Marshal(order.Address)
	if err != nil {
		return err
	}
	lineItems := order.LineItems
	if lineItems == nil {
		lineItems = []domain.LineItem{}
	}
	lineItemsJSON, err := json.Marshal(lineItems)
	if err != nil {
		return err
	}
	tags := order.Tags
	if tags == nil {
		tags = []string{}
	}
	kind := order.Channel.Kind
	if kind == "" {
		kind = domain.ChannelStorefront
	}

	_, err = r.db.ExecContext(ctx, query,
		order.ID,
		order.Name,
		order.CustomerOrderRef,
		nullTime(order.ProcessedAt),
		order.CustomerName,
		order.ChannelLabel,
		string(kind),
		order.Channel.Vendor,
		order.DeliveryMethod,
		addressJSON,
		lineItemsJSON,
		pq.Array(tags),
		order.TotalPrice,
		order.Currency,
		order.FinancialStatus,
		order.FulfillmentStatus,
		order.CreatedAt,
		order.UpdatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to upsert order", zap.String("order_id", order.ID), zap.Error(err))
		return err
	}

	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "order", ID: id}
	}
	if err != nil {
		r.logger.Error("Failed to get order by ID", zap.String("order_id", id), zap.Error(err))
		return nil, err
	}
	return order, nil
}

// List returns orders newest first
func (r *orderRepository) List(ctx context.Context, filter repository.OrderFilter) ([]*domain.Order, error) {
	var (
		where []string
		args  []interface{}
	)
	if q := strings.TrimSpace(filter.Query); q != "" {
		args = append(args, "%"+q+"%")
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR customer_name ILIKE $%d)", len(args), len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		where = append(where, fmt.Sprintf("processed_at >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		where = append(where, fmt.Sprintf("processed_at <= $%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := `SELECT ` + orderColumns + ` FROM orders`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY processed_at DESC NULLS LAST, id LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list orders", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	return scanOrders(rows)
}

// ListByIDs returns the stored orders among ids, in the order the ids were given.
// Unknown ids are left out.
func (r *orderRepository) ListByIDs(ctx context.Context, ids []string) ([]*domain.Order, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = ANY($1)`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		r.logger.Error("Failed to list orders by IDs", zap.Int("count", len(ids)), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	found, err := scanOrders(rows)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*domain.Order, len(found))
	for _, o := range found {
		byID[o.ID] = o
	}
	out := make([]*domain.Order, 0, len(found))
	for _, id := range ids {
		if o, ok := byID[id]; ok {
			out = append(out, o)
			delete(byID, id)
		}
	}
	return out, nil
}

// AddTag appends tag to the mirrored order's tags unless it is already present
func (r *orderRepository) AddTag(ctx context.Context, id string, tag string) error {
	query := `
		UPDATE orders
		SET tags = array_append(tags, $2), updated_at = $3
		WHERE id = $1 AND NOT ($2 = ANY(tags))
	`

	_, err := r.db.ExecContext(ctx, query, id, tag, time.Now())
	if err != nil {
		r.logger.Error("Failed to add order tag", zap.String("order_id", id), zap.String("tag", tag), zap.Error(err))
		return err
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var order domain.Order
	var processedAt sql.NullTime
	var kind string
	var addressJSON, lineItemsJSON []byte
	var tags pq.StringArray

	err := row.Scan(
		&order.ID,
		&order.Name,
		&order.CustomerOrderRef,
		&processedAt,
		&order.CustomerName,
		&order.ChannelLabel,
		&kind,
		&order.Channel.Vendor,
		&order.DeliveryMethod,
		&addressJSON,
		&lineItemsJSON,
		&tags,
		&order.TotalPrice,
		&order.Currency,
		&order.FinancialStatus,
		&order.FulfillmentStatus,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	order.Channel.Kind = domain.ChannelKind(kind)
	if processedAt.Valid {
		order.ProcessedAt = processedAt.Time
	}
	order.Tags = []string(tags)
	if len(addressJSON) > 0 {
		if err := json.Unmarshal(addressJSON, &order.Address); err != nil {
			return nil, fmt.Errorf("failed to decode address of order %s: %w", order.ID, err)
		}
	}
	if len(lineItemsJSON) > 0 {
		if err := json.Unmarshal(lineItemsJSON, &order.LineItems); err != nil {
			return nil, fmt.Errorf("failed to decode line items of order %s: %w", order.ID, err)
		}
	}
	return &order, nil
}

func scanOrders(rows *sql.Rows) ([]*domain.Order, error) {
	var orders []*domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
