package shopify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/labelprint/orderexport/internal/config"
)

func TestNewClient_Endpoint(t *testing.T) {
	c := NewClient(config.ShopifyConfig{ShopDomain: "https://labels.myshopify.com/", APIVersion: "2025-01"}, nil)

	assert.Equal(t, "https://labels.myshopify.com/admin/api/2025-01/graphql.json", c.endpoint)
}

func TestClient_Execute(t *testing.T) {
	t.Run("Sends token and variables", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "secret", r.Header.Get("X-Shopify-Access-Token"))

			body, _ := io.ReadAll(r.Body)
			var req GraphQLRequest
			assert.NoError(t, json.Unmarshal(body, &req))
			assert.Equal(t, ShopQuery, req.Query)
			assert.Equal(t, "x", req.Variables["id"])

			w.Write([]byte(`{"data":{"shop":{"name":"Labels"}}}`))
		}))
		defer srv.Close()

		c := NewClient(config.ShopifyConfig{AccessToken: "secret"}, zap.NewNop(), WithEndpoint(srv.URL))
		resp, err := c.Execute(context.Background(), ShopQuery, map[string]interface{}{"id": "x"})

		require.NoError(t, err)
		assert.JSONEq(t, `{"shop":{"name":"Labels"}}`, string(resp.Data))
	})

	t.Run("GraphQL errors", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"errors":[{"message":"Throttled"},{"message":"Access denied"}]}`))
		}))
		defer srv.Close()

		c := NewClient(config.ShopifyConfig{}, nil, WithEndpoint(srv.URL))
		_, err := c.Execute(context.Background(), ShopQuery, nil)

		assert.EqualError(t, err, "graphQL errors: Throttled; Access denied")
	})

	t.Run("Non-200 status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`bad token`))
		}))
		defer srv.Close()

		c := NewClient(config.ShopifyConfig{}, nil, WithEndpoint(srv.URL))
		_, err := c.Execute(context.Background(), ShopQuery, nil)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 401")
	})

	t.Run("Cancelled context", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		defer srv.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		c := NewClient(config.ShopifyConfig{}, nil, WithEndpoint(srv.URL))
		_, err := c.Execute(ctx, ShopQuery, nil)

		assert.ErrorIs(t, err, context.Canceled)
	})
}
