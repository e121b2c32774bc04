package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/labelprint/orderexport/internal/domain"
	"github.com/labelprint/orderexport/internal/shopify"
	apperrors "github.com/labelprint/orderexport/pkg/errors"
)

type call struct {
	query     string
	variables map[string]interface{}
}

// scriptedExecutor answers GraphQL calls with canned data, in order
type scriptedExecutor struct {
	responses []string
	err       error
	calls     []call
}

func (e *scriptedExecutor) Execute(_ context.Context, query string, variables map[string]interface{}) (*shopify.GraphQLResponse, error) {
	e.calls = append(e.calls, call{query: query, variables: variables})
	if e.err != nil {
		return nil, e.err
	}
	data := e.responses[0]
	e.responses = e.responses[1:]
	return &shopify.GraphQLResponse{Data: json.RawMessage(data)}, nil
}

const ordersPage = `{"orders":{
  "pageInfo":{"hasNextPage":true,"endCursor":"c1"},
  "edges":[
    {"node":{
      "id":"gid://shopify/Order/1","name":"#1001","poNumber":"PO-9",
      "processedAt":"2024-03-07T09:05:00Z","tags":["vip"],
      "displayFinancialStatus":"PAID","displayFulfillmentStatus":"UNFULFILLED",
      "totalPriceSet":{"shopMoney":{"amount":"12.50","currencyCode":"GBP"}},
      "channelInformation":{"channelDefinition":{"channelName":"Amazon","handle":"amazon"}},
      "customer":{"displayName":"Jane Doe"},
      "shippingAddress":{"name":"Jane Ship","address1":"1 High St","address2":"","city":"Leeds","province":"West Yorkshire","country":"United Kingdom","zip":"LS1 1AA"},
      "shippingLines":{"edges":[{"node":{"code":"","title":"Express"}}]},
      "lineItems":{"edges":[{"node":{"sku":"NT-1","quantity":2,"customAttributes":[
        {"key":"Line 1 Text","value":"text : Ann"},{"key":"Empty","value":""}
      ]}}]}
    }},
    {"node":{
      "id":"gid://shopify/Order/2","name":"#1002","createdAt":"2024-03-06T08:00:00Z",
      "channelInformation":null,"customer":{"displayName":"Bob"},"shippingAddress":null,
      "shippingLines":{"edges":[]},"lineItems":{"edges":[]}
    }}
  ]}}`

func TestShopifyService_FetchOrders(t *testing.T) {
	exec := &scriptedExecutor{responses: []string{ordersPage}}
	svc := NewShopifyService(exec, domain.NewChannelResolver(nil), zap.NewNop())

	page, err := svc.FetchOrders(context.Background(), 25, "c0", "updated_at:>=2024-03-01")
	require.NoError(t, err)

	require.Len(t, exec.calls, 1)
	assert.Equal(t, shopify.OrdersQuery, exec.calls[0].query)
	assert.Equal(t, map[string]interface{}{"first": 25, "after": "c0", "query": "updated_at:>=2024-03-01"}, exec.calls[0].variables)

	assert.True(t, page.HasNextPage)
	assert.Equal(t, "c1", page.EndCursor)
	require.Len(t, page.Orders, 2)

	first := page.Orders[0]
	assert.Equal(t, "PO-9", first.OrderRef())
	assert.Equal(t, "Amazon", first.ChannelLabel)
	assert.Equal(t, domain.MarketplaceChannel("amazon"), first.Channel)
	assert.Equal(t, "Jane Ship", first.CustomerName)
	assert.Equal(t, "Express", first.DeliveryMethod)
	assert.Equal(t, "Leeds", first.Address.Address3)
	assert.Equal(t, "West Yorkshire", first.Address.Address4)
	assert.True(t, decimal.RequireFromString("12.50").Equal(first.TotalPrice))
	require.Len(t, first.LineItems, 1)
	assert.Equal(t, domain.Properties{{Name: "Line 1 Text", Value: "text : Ann"}}, first.LineItems[0].Properties)

	second := page.Orders[1]
	assert.Equal(t, OnlineStoreChannel, second.ChannelLabel)
	assert.Equal(t, domain.StorefrontChannel(), second.Channel)
	assert.Equal(t, "Bob", second.CustomerName)
	assert.Equal(t, NoShippingRequired, second.DeliveryMethod)
	assert.Equal(t, time.Date(2024, 3, 6, 8, 0, 0, 0, time.UTC), second.ProcessedAt)
	assert.Empty(t, second.LineItems)
}

func TestShopifyService_GetOrder(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		exec := &scriptedExecutor{responses: []string{`{"node":{"id":"gid://shopify/Order/1","name":"#1001"}}`}}
		svc := NewShopifyService(exec, domain.NewChannelResolver(nil), zap.NewNop())

		order, err := svc.GetOrder(context.Background(), "gid://shopify/Order/1")

		require.NoError(t, err)
		assert.Equal(t, "#1001", order.Name)
	})

	t.Run("Not found", func(t *testing.T) {
		exec := &scriptedExecutor{responses: []string{`{"node":null}`}}
		svc := NewShopifyService(exec, domain.NewChannelResolver(nil), zap.NewNop())

		_, err := svc.GetOrder(context.Background(), "gid://shopify/Order/404")

		var notFound *apperrors.ErrNotFound
		assert.ErrorAs(t, err, &notFound)
	})
}

func TestShopifyService_AddTags(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		exec := &scriptedExecutor{responses: []string{`{"tagsAdd":{"node":{"id":"gid://shopify/Order/1"},"userErrors":[]}}`}}
		svc := NewShopifyService(exec, domain.NewChannelResolver(nil), zap.NewNop())

		require.NoError(t, svc.AddTags(context.Background(), "gid://shopify/Order/1", []string{"exported"}))
		assert.Equal(t, shopify.TagsAddMutation, exec.calls[0].query)
		assert.Equal(t, []string{"exported"}, exec.calls[0].variables["tags"])
	})

	t.Run("User errors", func(t *testing.T) {
		exec := &scriptedExecutor{responses: []string{`{"tagsAdd":{"node":null,"userErrors":[{"field":["id"],"message":"Order does not exist"}]}}`}}
		svc := NewShopifyService(exec, domain.NewChannelResolver(nil), zap.NewNop())

		err := svc.AddTags(context.Background(), "gid://shopify/Order/9", []string{"exported"})
		assert.EqualError(t, err, "shopify user errors: Order does not exist")
	})

	t.Run("Transport errors", func(t *testing.T) {
		exec := &scriptedExecutor{err: errors.New("timeout")}
		svc := NewShopifyService(exec, domain.NewChannelResolver(nil), zap.NewNop())

		err := svc.AddTags(context.Background(), "gid://shopify/Order/1", []string{"exported"})
		assert.ErrorIs(t, err, exec.err)
	})
}
