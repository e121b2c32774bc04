package repository

import (
	"context"
	"time"

	"github.com/labelprint/orderexport/internal/domain"
)

// OrderFilter narrows an order listing. Zero values mean no restriction.
type OrderFilter struct {
	Query  string // matched against order name and customer name
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

// OrderRepository defines mirrored order data access methods
type OrderRepository interface {
	Upsert(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]*domain.Order, error)
	ListByIDs(ctx context.Context, ids []string) ([]*domain.Order, error)
	AddTag(ctx context.Context, id string, tag string) error
}

// ExportHistoryRepository defines export history data access methods
type ExportHistoryRepository interface {
	Create(ctx context.Context, record *domain.ExportRecord) error
	List(ctx context.Context, limit, offset int) ([]*domain.ExportRecord, error)
}

// Repositories aggregates all repositories
type Repositories struct {
	Order         OrderRepository
	ExportHistory ExportHistoryRepository
}
