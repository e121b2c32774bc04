package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/labelprint/orderexport/internal/domain"
	"github.com/labelprint/orderexport/internal/shopify"
	"github.com/labelprint/orderexport/pkg/errors"
)

// OnlineStoreChannel is the channel label of orders without channel information
const OnlineStoreChannel = "Online Store"

// NoShippingRequired is the delivery method of orders without shipping lines
const NoShippingRequired = "Shipping not required"

// GraphQLExecutor runs Shopify Admin GraphQL operations
type GraphQLExecutor interface {
	Execute(ctx context.Context, query string, variables map[string]interface{}) (*shopify.GraphQLResponse, error)
}

// OrderPage is one page of orders from Shopify
type OrderPage struct {
	Orders      []domain.Order
	HasNextPage bool
	EndCursor   string
}

type ShopifyService struct {
	client   GraphQLExecutor
	resolver domain.ChannelResolver
	logger   *zap.Logger
}

// NewShopifyService creates a new Shopify service
func NewShopifyService(client GraphQLExecutor, resolver domain.ChannelResolver, logger *zap.Logger) *ShopifyService {
	return &ShopifyService{
		client:   client,
		resolver: resolver,
		logger:   logger,
	}
}

// FetchOrders returns up to first orders after the cursor, newest first.
// query is Shopify search syntax and may be empty.
func (s *ShopifyService) FetchOrders(ctx context.Context, first int, after, query string) (*OrderPage, error) {
	variables := map[string]interface{}{
		"first": first,
	}
	if after != "" {
		variables["after"] = after
	}
	if query != "" {
		variables["query"] = query
	}

	resp, err := s.client.Execute(ctx, shopify.OrdersQuery, variables)
	if err != nil {
		return nil, fmt.Errorf("fetch orders: %w", err)
	}

	var result struct {
		Orders struct {
			PageInfo struct {
				HasNextPage bool   `json:"hasNextPage"`
				EndCursor   string `json:"endCursor"`
			} `json:"pageInfo"`
			Edges []struct {
				Node orderNode `json:"node"`
			} `json:"edges"`
		} `json:"orders"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return nil, fmt.Errorf("parse orders response: %w", err)
	}

	page := &OrderPage{
		Orders:      make([]domain.Order, 0, len(result.Orders.Edges)),
		HasNextPage: result.Orders.PageInfo.HasNextPage,
		EndCursor:   result.Orders.PageInfo.EndCursor,
	}
	for _, edge := range result.Orders.Edges {
		page.Orders = append(page.Orders, edge.Node.toDomain(s.resolver))
	}
	return page, nil
}

// GetOrder fetches a single order by GID
func (s *ShopifyService) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	resp, err := s.client.Execute(ctx, shopify.OrderByIDQuery, map[string]interface{}{"id": id})
	if err != nil {
		return nil, fmt.Errorf("get order by ID: %w", err)
	}
	var result struct {
		Node *orderNode `json:"node"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return nil, fmt.Errorf("parse order response: %w", err)
	}
	if result.Node == nil || result.Node.ID == "" {
		return nil, &errors.ErrNotFound{Resource: "shopify order", ID: id}
	}
	order := result.Node.toDomain(s.resolver)
	return &order, nil
}

// AddTags adds tags to the Shopify order
func (s *ShopifyService) AddTags(ctx context.Context, orderID string, tags []string) error {
	variables := map[string]interface{}{
		"id":   orderID,
		"tags": tags,
	}
	resp, err := s.client.Execute(ctx, shopify.TagsAddMutation, variables)
	if err != nil {
		return fmt.Errorf("tags add: %w", err)
	}

	var result struct {
		TagsAdd struct {
			UserErrors []shopify.UserError `json:"userErrors"`
		} `json:"tagsAdd"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return fmt.Errorf("parse tags add response: %w", err)
	}
	if len(result.TagsAdd.UserErrors) > 0 {
		return fmt.Errorf("shopify user errors: %s", userErrorMessages(result.TagsAdd.UserErrors))
	}

	s.logger.Debug("Tagged Shopify order", zap.String("order_id", orderID), zap.Strings("tags", tags))
	return nil
}

// ShopName checks connectivity and returns the shop's name
func (s *ShopifyService) ShopName(ctx context.Context) (string, error) {
	resp, err := s.client.Execute(ctx, shopify.ShopQuery, nil)
	if err != nil {
		return "", err
	}
	var result struct {
		Shop struct {
			Name string `json:"name"`
		} `json:"shop"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return "", fmt.Errorf("parse shop response: %w", err)
	}
	return result.Shop.Name, nil
}

func userErrorMessages(errs []shopify.UserError) string {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

// orderNode is the GraphQL shape selected by the order queries
type orderNode struct {
	ID                       string     `json:"id"`
	Name                     string     `json:"name"`
	PONumber                 string     `json:"poNumber"`
	ProcessedAt              *time.Time `json:"processedAt"`
	CreatedAt                *time.Time `json:"createdAt"`
	UpdatedAt                *time.Time `json:"updatedAt"`
	Tags                     []string   `json:"tags"`
	DisplayFinancialStatus   string     `json:"displayFinancialStatus"`
	DisplayFulfillmentStatus string     `json:"displayFulfillmentStatus"`
	TotalPriceSet            struct {
		ShopMoney struct {
			Amount       string `json:"amount"`
			CurrencyCode string `json:"currencyCode"`
		} `json:"shopMoney"`
	} `json:"totalPriceSet"`
	ChannelInformation *struct {
		ChannelDefinition *struct {
			ChannelName string `json:"channelName"`
			Handle      string `json:"handle"`
		} `json:"channelDefinition"`
	} `json:"channelInformation"`
	Customer *struct {
		DisplayName string `json:"displayName"`
	} `json:"customer"`
	ShippingAddress *struct {
		Name     string `json:"name"`
		Address1 string `json:"address1"`
		Address2 string `json:"address2"`
		City     string `json:"city"`
		Province string `json:"province"`
		Country  string `json:"country"`
		Zip      string `json:"zip"`
	} `json:"shippingAddress"`
	ShippingLines struct {
		Edges []struct {
			Node struct {
				Code  string `json:"code"`
				Title string `json:"title"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"shippingLines"`
	LineItems struct {
		Edges []struct {
			Node struct {
				SKU              string `json:"sku"`
				Quantity         int    `json:"quantity"`
				CustomAttributes []struct {
					Key   string `json:"key"`
					Value string `json:"value"`
				} `json:"customAttributes"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"lineItems"`
}

func (n *orderNode) toDomain(resolver domain.ChannelResolver) domain.Order {
	order := domain.Order{
		ID:                n.ID,
		Name:              n.Name,
		CustomerOrderRef:  n.PONumber,
		Tags:              n.Tags,
		Currency:          n.TotalPriceSet.ShopMoney.CurrencyCode,
		FinancialStatus:   n.DisplayFinancialStatus,
		FulfillmentStatus: n.DisplayFulfillmentStatus,
		ChannelLabel:      OnlineStoreChannel,
		DeliveryMethod:    NoShippingRequired,
	}
	if n.ProcessedAt != nil {
		order.ProcessedAt = *n.ProcessedAt
	} else if n.CreatedAt != nil {
		order.ProcessedAt = *n.CreatedAt
	}
	if n.CreatedAt != nil {
		order.CreatedAt = *n.CreatedAt
	}
	if n.UpdatedAt != nil {
		order.UpdatedAt = *n.UpdatedAt
	}
	if d, err := decimal.NewFromString(n.TotalPriceSet.ShopMoney.Amount); err == nil {
		order.TotalPrice = d
	}
	if n.ChannelInformation != nil && n.ChannelInformation.ChannelDefinition != nil {
		if name := strings.TrimSpace(n.ChannelInformation.ChannelDefinition.ChannelName); name != "" {
			order.ChannelLabel = name
		}
	}
	order.Channel = resolver.Resolve(order.ChannelLabel)

	if n.ShippingAddress != nil {
		order.CustomerName = n.ShippingAddress.Name
		order.Address = domain.Address{
			Address1: n.ShippingAddress.Address1,
			Address2: n.ShippingAddress.Address2,
			Address3: n.ShippingAddress.City,
			Address4: n.ShippingAddress.Province,
			Country:  n.ShippingAddress.Country,
			Zip:      n.ShippingAddress.Zip,
		}
	}
	if order.CustomerName == "" && n.Customer != nil {
		order.CustomerName = n.Customer.DisplayName
	}
	if len(n.ShippingLines.Edges) > 0 {
		line := n.ShippingLines.Edges[0].Node
		if line.Code != "" {
			order.DeliveryMethod = line.Code
		} else if line.Title != "" {
			order.DeliveryMethod = line.Title
		}
	}

	for _, edge := range n.LineItems.Edges {
		item := domain.LineItem{SKU: edge.Node.SKU, Quantity: edge.Node.Quantity}
		for _, attr := range edge.Node.CustomAttributes {
			if attr.Key == "" || attr.Value == "" {
				continue
			}
			item.Properties = append(item.Properties, domain.Property{Name: attr.Key, Value: attr.Value})
		}
		order.LineItems = append(order.LineItems, item)
	}
	return order
}
