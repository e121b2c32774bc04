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
	"github.com/labelprint/orderexport/internal/repository"
	"github.com/labelprint/orderexport/pkg/errors"
)

// Shopify webhook topics (X-Shopify-Topic)
const (
	TopicOrdersCreate  = "orders/create"
	TopicOrdersUpdated = "orders/updated"
	TopicOrdersPaid    = "orders/paid"
)

// Webhook results
const (
	WebhookUpserted = "upserted"
	WebhookIgnored  = "ignored"
)

// webhookAddress is a REST address object
type webhookAddress struct {
	Name      string `json:"name"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Address1  string `json:"address1"`
	Address2  string `json:"address2"`
	City      string `json:"city"`
	Province  string `json:"province"`
	Country   string `json:"country"`
	Zip       string `json:"zip"`
}

func (a *webhookAddress) isEmpty() bool {
	return a == nil || (a.Address1 == "" && a.City == "" && a.Zip == "" && a.Country == "")
}

type webhookMoneySet struct {
	ShopMoney struct {
		Amount       string `json:"amount"`
		CurrencyCode string `json:"currency_code"`
	} `json:"shop_money"`
}

// orderWebhookPayload is the REST order payload of the orders/* topics
type orderWebhookPayload struct {
	ID                   json.Number      `json:"id"`
	AdminGraphQLID       string           `json:"admin_graphql_api_id"`
	Name                 string           `json:"name"`
	PONumber             string           `json:"po_number"`
	ProcessedAt          *time.Time       `json:"processed_at"`
	CreatedAt            *time.Time       `json:"created_at"`
	UpdatedAt            *time.Time       `json:"updated_at"`
	Tags                 string           `json:"tags"`
	FinancialStatus      string           `json:"financial_status"`
	FulfillmentStatus    *string          `json:"fulfillment_status"`
	Currency             string           `json:"currency"`
	TotalPrice           string           `json:"total_price"`
	CurrentTotalPriceSet *webhookMoneySet `json:"current_total_price_set"`
	Customer             *struct {
		FirstName      string          `json:"first_name"`
		LastName       string          `json:"last_name"`
		DefaultAddress *webhookAddress `json:"default_address"`
	} `json:"customer"`
	ShippingAddress *webhookAddress `json:"shipping_address"`
	ShippingLines   []struct {
		Code  string `json:"code"`
		Title string `json:"title"`
	} `json:"shipping_lines"`
	LineItems []struct {
		SKU             string            `json:"sku"`
		Quantity        int               `json:"quantity"`
		CurrentQuantity *int              `json:"current_quantity"`
		Properties      []domain.Property `json:"properties"`
	} `json:"line_items"`
}

// OrderFromWebhook maps an orders/create or orders/updated payload to an order.
// Webhook orders always come from the online store.
func OrderFromWebhook(body []byte, resolver domain.ChannelResolver) (*domain.Order, error) {
	var p orderWebhookPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, &errors.ErrValidation{Message: fmt.Sprintf("invalid order payload: %v", err)}
	}

	order := &domain.Order{
		ID:                p.AdminGraphQLID,
		Name:              p.Name,
		CustomerOrderRef:  p.PONumber,
		ChannelLabel:      OnlineStoreChannel,
		DeliveryMethod:    NoShippingRequired,
		Currency:          p.Currency,
		FinancialStatus:   capitalize(p.FinancialStatus, "Payment pending"),
		FulfillmentStatus: "Unfulfilled",
	}
	if order.ID == "" && p.ID != "" {
		order.ID = "gid://shopify/Order/" + p.ID.String()
	}
	if order.ID == "" {
		return nil, &errors.ErrValidation{Message: "order payload has no id", Fields: map[string]string{"id": "required"}}
	}
	order.Channel = resolver.Resolve(order.ChannelLabel)

	if p.FulfillmentStatus != nil && *p.FulfillmentStatus != "" {
		order.FulfillmentStatus = capitalize(*p.FulfillmentStatus, "Unfulfilled")
	}
	if p.ProcessedAt != nil {
		order.ProcessedAt = *p.ProcessedAt
	} else if p.CreatedAt != nil {
		order.ProcessedAt = *p.CreatedAt
	}
	if p.CreatedAt != nil {
		order.CreatedAt = *p.CreatedAt
	}

	amount := p.TotalPrice
	if p.CurrentTotalPriceSet != nil && p.CurrentTotalPriceSet.ShopMoney.Amount != "" {
		amount = p.CurrentTotalPriceSet.ShopMoney.Amount
		if order.Currency == "" {
			order.Currency = p.CurrentTotalPriceSet.ShopMoney.CurrencyCode
		}
	}
	if d, err := decimal.NewFromString(amount); err == nil {
		order.TotalPrice = d
	}

	for _, t := range strings.Split(p.Tags, ",") {
		if t = strings.TrimSpace(t); t != "" {
			order.Tags = append(order.Tags, t)
		}
	}

	if len(p.ShippingLines) > 0 && p.ShippingLines[0].Code != "" {
		order.DeliveryMethod = p.ShippingLines[0].Code
	}

	addr := p.ShippingAddress
	if addr.isEmpty() && p.Customer != nil && p.Customer.DefaultAddress != nil {
		addr = p.Customer.DefaultAddress
	}
	if addr != nil {
		order.Address = domain.Address{
			Address1: addr.Address1,
			Address2: addr.Address2,
			Address3: addr.City,
			Address4: addr.Province,
			Country:  addr.Country,
			Zip:      addr.Zip,
		}
	}
	if p.Customer != nil {
		order.CustomerName = strings.TrimSpace(p.Customer.FirstName + " " + p.Customer.LastName)
	}
	if order.CustomerName == "" && addr != nil {
		order.CustomerName = addr.Name
		if order.CustomerName == "" {
			order.CustomerName = strings.TrimSpace(addr.FirstName + " " + addr.LastName)
		}
	}

	for _, li := range p.LineItems {
		item := domain.LineItem{SKU: li.SKU, Quantity: li.Quantity}
		if li.CurrentQuantity != nil {
			item.Quantity = *li.CurrentQuantity
		}
		for _, prop := range li.Properties {
			if prop.Name == "" || prop.Value == "" {
				continue
			}
			item.Properties = append(item.Properties, prop)
		}
		order.LineItems = append(order.LineItems, item)
	}
	return order, nil
}

// capitalize turns "partially_paid" into "Partially paid"
func capitalize(s, fallback string) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "_", " "))
	if s == "" {
		return fallback
	}
	s = strings.ToLower(s)
	return strings.ToUpper(s[:1]) + s[1:]
}

// WebhookService applies Shopify order webhooks to the local mirror
type WebhookService struct {
	repos    *repository.Repositories
	resolver domain.ChannelResolver
	logger   *zap.Logger
}

// NewWebhookService creates a new webhook service
func NewWebhookService(repos *repository.Repositories, resolver domain.ChannelResolver, logger *zap.Logger) *WebhookService {
	return &WebhookService{
		repos:    repos,
		resolver: resolver,
		logger:   logger,
	}
}

// Handle processes one webhook delivery and reports what was done.
// Unknown topics return *errors.ErrNotFound.
func (s *WebhookService) Handle(ctx context.Context, topic string, body []byte) (string, error) {
	switch strings.ToLower(strings.TrimSpace(topic)) {
	case TopicOrdersCreate, TopicOrdersUpdated:
		order, err := OrderFromWebhook(body, s.resolver)
		if err != nil {
			return "", err
		}
		if err := s.repos.Order.Upsert(ctx, order); err != nil {
			return "", fmt.Errorf("failed to store order %s: %w", order.ID, err)
		}
		s.logger.Info("Order stored from webhook",
			zap.String("topic", topic),
			zap.String("order_id", order.ID),
			zap.String("order_name", order.Name),
			zap.Int("line_items", len(order.LineItems)),
		)
		return WebhookUpserted, nil
	case TopicOrdersPaid:
		return WebhookIgnored, nil
	default:
		return "", &errors.ErrNotFound{Resource: "webhook topic", ID: topic}
	}
}
