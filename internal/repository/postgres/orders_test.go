package postgres

import (
	"context"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/labelprint/orderexport/internal/domain"
	"github.com/labelprint/orderexport/internal/repository"
	"github.com/labelprint/orderexport/pkg/errors"
)

var orderColumnNames = []string{
	"id", "name", "customer_order_ref", "processed_at", "customer_name",
	"channel_label", "channel_kind", "channel_vendor", "delivery_method", "address", "line_items",
	"tags", "total_price", "currency", "financial_status", "fulfillment_status", "created_at", "updated_at",
}

func orderRow(id, name string, processedAt time.Time) []driver.Value {
	return []driver.Value{
		id, name, "", processedAt, "Jane Doe",
		"Amazon", "marketplace", "amazon", "Standard",
		[]byte(`{"address1":"1 High St","country":"United Kingdom","zip":"LS1 1AA"}`),
		[]byte(`[{"sku":"NT-1","quantity":2,"properties":[{"name":"Line 1 Text","value":"text : Ann"}]}]`),
		"{vip}", "12.50", "GBP", "PAID", "UNFULFILLED", processedAt, processedAt,
	}
}

func newMockRepo(t *testing.T) (*orderRepository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewOrderRepository(db, zap.NewNop()), mock
}

func anyArgs(n int) []driver.Value {
	args := make([]driver.Value, n)
	for i := range args {
		args[i] = sqlmock.AnyArg()
	}
	return args
}

func TestOrderRepository_Upsert(t *testing.T) {
	ctx := context.Background()

	t.Run("Inserts or updates the order", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO orders")).
			WithArgs(anyArgs(18)...).
			WillReturnResult(sqlmock.NewResult(0, 1))

		order := &domain.Order{ID: "gid://shopify/Order/1", Name: "#1001", TotalPrice: decimal.NewFromInt(5)}
		err := repo.Upsert(ctx, order)

		require.NoError(t, err)
		assert.False(t, order.CreatedAt.IsZero())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Rejects orders without ID", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		err := repo.Upsert(ctx, &domain.Order{Name: "#1"})

		var validation *errors.ErrValidation
		require.ErrorAs(t, err, &validation)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOrderRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	processed := time.Date(2024, 3, 7, 9, 5, 0, 0, time.UTC)

	t.Run("Decodes stored order", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM orders WHERE id = $1")).
			WithArgs("gid://shopify/Order/1").
			WillReturnRows(sqlmock.NewRows(orderColumnNames).AddRow(orderRow("gid://shopify/Order/1", "#1001", processed)...))

		order, err := repo.GetByID(ctx, "gid://shopify/Order/1")

		require.NoError(t, err)
		assert.Equal(t, "#1001", order.Name)
		assert.Equal(t, domain.MarketplaceChannel("amazon"), order.Channel)
		assert.Equal(t, "LS1 1AA", order.Address.Zip)
		require.Len(t, order.LineItems, 1)
		assert.Equal(t, 2, order.LineItems[0].Quantity)
		assert.Equal(t, domain.Properties{{Name: "Line 1 Text", Value: "text : Ann"}}, order.LineItems[0].Properties)
		assert.Equal(t, []string{"vip"}, order.Tags)
		assert.True(t, decimal.RequireFromString("12.50").Equal(order.TotalPrice))
		assert.Equal(t, processed, order.ProcessedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not found", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM orders WHERE id = $1")).
			WithArgs("missing").
			WillReturnRows(sqlmock.NewRows(orderColumnNames))

		_, err := repo.GetByID(ctx, "missing")

		var notFound *errors.ErrNotFound
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "order", notFound.Resource)
	})
}

func TestOrderRepository_List(t *testing.T) {
	ctx := context.Background()
	processed := time.Date(2024, 3, 7, 9, 5, 0, 0, time.UTC)

	t.Run("Applies search, window and paging", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		from := processed.Add(-time.Hour)
		to := processed.Add(time.Hour)
		mock.ExpectQuery(regexp.QuoteMeta("WHERE (name ILIKE $1 OR customer_name ILIKE $1) AND processed_at >= $2 AND processed_at <= $3")).
			WithArgs("%jane%", from, to, 10, 20).
			WillReturnRows(sqlmock.NewRows(orderColumnNames).AddRow(orderRow("1", "#1001", processed)...))

		orders, err := repo.List(ctx, repository.OrderFilter{Query: " jane ", From: &from, To: &to, Limit: 10, Offset: 20})

		require.NoError(t, err)
		require.Len(t, orders, 1)
		assert.Equal(t, "1", orders[0].ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Defaults paging without filters", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM orders ORDER BY processed_at DESC NULLS LAST, id LIMIT $1 OFFSET $2")).
			WithArgs(defaultListLimit, 0).
			WillReturnRows(sqlmock.NewRows(orderColumnNames))

		orders, err := repo.List(ctx, repository.OrderFilter{Offset: -5})

		require.NoError(t, err)
		assert.Empty(t, orders)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOrderRepository_ListByIDs(t *testing.T) {
	ctx := context.Background()
	processed := time.Date(2024, 3, 7, 9, 5, 0, 0, time.UTC)

	t.Run("Keeps requested order and drops unknown ids", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(regexp.QuoteMeta("WHERE id = ANY($1)")).
			WithArgs(sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows(orderColumnNames).
				AddRow(orderRow("1", "#1001", processed)...).
				AddRow(orderRow("2", "#1002", processed)...))

		orders, err := repo.ListByIDs(ctx, []string{"2", "missing", "1"})

		require.NoError(t, err)
		require.Len(t, orders, 2)
		assert.Equal(t, "2", orders[0].ID)
		assert.Equal(t, "1", orders[1].ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("No ids", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		orders, err := repo.ListByIDs(ctx, nil)

		require.NoError(t, err)
		assert.Nil(t, orders)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOrderRepository_AddTag(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec(regexp.QuoteMeta("SET tags = array_append(tags, $2)")).
		WithArgs("1", "exported", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.AddTag(context.Background(), "1", "exported"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
