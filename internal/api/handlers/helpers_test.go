package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/labelprint/orderexport/internal/domain"
	"github.com/labelprint/orderexport/internal/export"
	"github.com/labelprint/orderexport/internal/repository"
	"github.com/labelprint/orderexport/internal/service"
	"github.com/labelprint/orderexport/internal/storage"
	"github.com/labelprint/orderexport/pkg/errors"
)

type stubOrderRepo struct {
	orders     []*domain.Order
	lastFilter repository.OrderFilter
	upserted   []*domain.Order
	err        error
}

func (r *stubOrderRepo) Upsert(_ context.Context, order *domain.Order) error {
	if r.err != nil {
		return r.err
	}
	r.upserted = append(r.upserted, order)
	return nil
}

func (r *stubOrderRepo) GetByID(_ context.Context, id string) (*domain.Order, error) {
	for _, o := range r.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "order", ID: id}
}

func (r *stubOrderRepo) List(_ context.Context, filter repository.OrderFilter) ([]*domain.Order, error) {
	r.lastFilter = filter
	if r.err != nil {
		return nil, r.err
	}
	return r.orders, nil
}

func (r *stubOrderRepo) ListByIDs(ctx context.Context, ids []string) ([]*domain.Order, error) {
	var out []*domain.Order
	for _, id := range ids {
		if o, err := r.GetByID(ctx, id); err == nil {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *stubOrderRepo) AddTag(context.Context, string, string) error { return nil }

type stubHistoryRepo struct {
	records []*domain.ExportRecord
}

func (r *stubHistoryRepo) Create(_ context.Context, record *domain.ExportRecord) error {
	r.records = append(r.records, record)
	return nil
}

func (r *stubHistoryRepo) List(_ context.Context, limit, offset int) ([]*domain.ExportRecord, error) {
	if offset >= len(r.records) {
		return nil, nil
	}
	out := r.records[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fixture struct {
	orders  *stubOrderRepo
	history *stubHistoryRepo
	store   *storage.LocalStore
	svc     *service.ExportService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := storage.NewLocalStore(t.TempDir(), "/exports", zap.NewNop())
	require.NoError(t, err)

	orders := &stubOrderRepo{}
	history := &stubHistoryRepo{}
	repos := &repository.Repositories{Order: orders, ExportHistory: history}
	exporter := export.NewExporter(nil, store, history, zap.NewNop(),
		export.WithOptions(export.Options{CustomerCode: "CUST"}))

	return &fixture{
		orders:  orders,
		history: history,
		store:   store,
		svc:     service.NewExportService(exporter, repos, domain.NewChannelResolver(nil), "", zap.NewNop()),
	}
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}
