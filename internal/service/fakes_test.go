package service

import (
	"context"
	"sort"
	"sync"

	"github.com/labelprint/orderexport/internal/domain"
	"github.com/labelprint/orderexport/internal/repository"
	"github.com/labelprint/orderexport/pkg/errors"
)

type memOrderRepo struct {
	mu      sync.Mutex
	orders  map[string]*domain.Order
	upserts int
	err     error
}

func newMemOrderRepo(orders ...domain.Order) *memOrderRepo {
	r := &memOrderRepo{orders: make(map[string]*domain.Order)}
	for i := range orders {
		o := orders[i]
		r.orders[o.ID] = &o
	}
	return r
}

func (r *memOrderRepo) Upsert(_ context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	o := *order
	r.orders[o.ID] = &o
	r.upserts++
	return nil
}

func (r *memOrderRepo) GetByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "order", ID: id}
	}
	return o, nil
}

func (r *memOrderRepo) sorted() []*domain.Order {
	out := make([]*domain.Order, 0, len(r.orders))
	for _, o := range r.orders {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *memOrderRepo) List(_ context.Context, f repository.OrderFilter) ([]*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*domain.Order
	for _, o := range r.sorted() {
		if f.From != nil && o.ProcessedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && o.ProcessedAt.After(*f.To) {
			continue
		}
		matched = append(matched, o)
	}
	if f.Offset >= len(matched) {
		return nil, nil
	}
	matched = matched[f.Offset:]
	if f.Limit > 0 && len(matched) > f.Limit {
		matched = matched[:f.Limit]
	}
	return matched, nil
}

func (r *memOrderRepo) ListByIDs(_ context.Context, ids []string) ([]*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Order
	for _, id := range ids {
		if o, ok := r.orders[id]; ok {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *memOrderRepo) AddTag(_ context.Context, id string, tag string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o, ok := r.orders[id]; ok && !o.HasTag(tag) {
		o.Tags = append(o.Tags, tag)
	}
	return nil
}

type memHistoryRepo struct {
	records []*domain.ExportRecord
}

func (r *memHistoryRepo) Create(_ context.Context, record *domain.ExportRecord) error {
	r.records = append(r.records, record)
	return nil
}

func (r *memHistoryRepo) List(_ context.Context, limit, offset int) ([]*domain.ExportRecord, error) {
	if offset >= len(r.records) {
		return nil, nil
	}
	out := r.records[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
