package service

import (
	"time"

	"github.com/labelprint/orderexport/internal/domain"
)

// ExportRequest is the export payload of the admin UI. Orders are sent inline as
// displayed, or referenced by ID and loaded from the local mirror.
type ExportRequest struct {
	Orders   []domain.Order       `json:"orders"`
	OrderIDs []string             `json:"orderIds"`
	Filters  domain.ExportFilters `json:"filters"`
}

// ExportResponse describes a completed export
type ExportResponse struct {
	Filename      string    `json:"filename"`
	FilePath      string    `json:"file_path"`
	ExportedAt    time.Time `json:"exported_at"`
	OrderCount    int       `json:"order_count"`
	RowCount      int       `json:"row_count"`
	SkippedOrders []string  `json:"skipped_orders"`
	TaggedOrders  int       `json:"tagged_orders"`
	TagFailures   int       `json:"tag_failures"`
}

// ExportRecordResponse is one export history entry
type ExportRecordResponse struct {
	ID         string               `json:"id"`
	Filename   string               `json:"filename"`
	ExportedAt time.Time            `json:"exported_at"`
	Filters    domain.ExportFilters `json:"filters"`
	OrderCount int                  `json:"order_count"`
	RowCount   int                  `json:"row_count"`
	FilePath   string               `json:"file_path"`
}

// NewExportRecordResponse maps a history record for output
func NewExportRecordResponse(r *domain.ExportRecord) ExportRecordResponse {
	return ExportRecordResponse{
		ID:         r.ID.String(),
		Filename:   r.Filename,
		ExportedAt: r.ExportedAt,
		Filters:    r.Filters,
		OrderCount: r.OrderCount,
		RowCount:   r.RowCount,
		FilePath:   r.Location,
	}
}

// OrderResponse is a mirrored order as listed by the admin API
type OrderResponse struct {
	ID                string            `json:"id"`
	OrderNumber       string            `json:"orderNumber"`
	CustomerOrderRef  string            `json:"customerOrderRef,omitempty"`
	ProcessedAt       *time.Time        `json:"processedAt,omitempty"`
	Customer          string            `json:"customer"`
	Channels          string            `json:"channels"`
	Channel           domain.Channel    `json:"channel"`
	DeliveryMethod    string            `json:"deliveryMethod"`
	Address           domain.Address    `json:"address"`
	Items             int               `json:"items"`
	LineItems         []domain.LineItem `json:"lineItems"`
	Tags              []string          `json:"tags"`
	Total             string            `json:"total"`
	Currency          string            `json:"currency,omitempty"`
	PaymentStatus     string            `json:"paymentStatus,omitempty"`
	FulfillmentStatus string            `json:"fulfillmentStatus,omitempty"`
}

// NewOrderResponse maps an order for output. Items is the total quantity.
func NewOrderResponse(o *domain.Order) OrderResponse {
	resp := OrderResponse{
		ID:                o.ID,
		OrderNumber:       o.Name,
		CustomerOrderRef:  o.CustomerOrderRef,
		Customer:          o.CustomerName,
		Channels:          o.ChannelLabel,
		Channel:           o.Channel,
		DeliveryMethod:    o.DeliveryMethod,
		Address:           o.Address,
		LineItems:         o.LineItems,
		Tags:              o.Tags,
		Total:             o.TotalPrice.StringFixed(2),
		Currency:          o.Currency,
		PaymentStatus:     o.FinancialStatus,
		FulfillmentStatus: o.FulfillmentStatus,
	}
	if !o.ProcessedAt.IsZero() {
		t := o.ProcessedAt
		resp.ProcessedAt = &t
	}
	if resp.LineItems == nil {
		resp.LineItems = []domain.LineItem{}
	}
	if resp.Tags == nil {
		resp.Tags = []string{}
	}
	for _, li := range o.LineItems {
		if li.Quantity > 0 {
			resp.Items += li.Quantity
		}
	}
	return resp
}
