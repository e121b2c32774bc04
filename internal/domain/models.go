package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Property is one raw line item customization attribute as received from Shopify
type Property struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Properties is the ordered raw property bag of a line item.
// JSON input may be an object (name -> value) or an array of {name|key, value} pairs.
type Properties []Property

func (p *Properties) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		*p = nil
		return nil
	}

	switch trimmed[0] {
	case '{':
		out, err := objectProperties(trimmed)
		if err != nil {
			return err
		}
		*p = out
	case '[':
		var pairs []struct {
			Name  json.RawMessage `json:"name"`
			Key   json.RawMessage `json:"key"`
			Value json.RawMessage `json:"value"`
		}
		if err := json.Unmarshal(trimmed, &pairs); err != nil {
			return err
		}
		out := make(Properties, 0, len(pairs))
		for _, pair := range pairs {
			name, ok := scalarString(pair.Name)
			if !ok {
				name, ok = scalarString(pair.Key)
			}
			if !ok || name == "" {
				continue
			}
			value, _ := scalarString(pair.Value)
			out = append(out, Property{Name: name, Value: value})
		}
		*p = out
	default:
		// null, or a shape we can't use: no properties
		*p = nil
	}
	return nil
}

// objectProperties reads a name -> value object in document order. Names repeated
// in the document are all kept; later entries win once normalized.
func objectProperties(data []byte) (Properties, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	out := Properties{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, _ := tok.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}
		if v, ok := scalarString(raw); ok && name != "" {
			out = append(out, Property{Name: name, Value: v})
		}
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return out, nil
}

// Address is the structured delivery address used for export
type Address struct {
	Address1 string `json:"address1"`
	Address2 string `json:"address2"`
	Address3 string `json:"address3"`
	Address4 string `json:"address4"`
	Country  string `json:"country"`
	Zip      string `json:"zip"`
}

// LineItem is one product/quantity entry of an order
type LineItem struct {
	SKU        string     `json:"sku"`
	Quantity   int        `json:"quantity"`
	Properties Properties `json:"properties"`
}

func (li *LineItem) UnmarshalJSON(data []byte) error {
	var aux struct {
		SKU        json.RawMessage `json:"sku"`
		Quantity   json.RawMessage `json:"quantity"`
		Properties Properties      `json:"properties"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	li.SKU, _ = scalarString(aux.SKU)
	li.Quantity = 0
	if q, ok := scalarString(aux.Quantity); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(q)); err == nil {
			li.Quantity = n
		}
	}
	li.Properties = aux.Properties
	return nil
}

// Order is a mirrored Shopify order, read-only during an export
type Order struct {
	ID                string          `json:"id"` // Shopify GID, e.g. gid://shopify/Order/123
	Name              string          `json:"name"`
	CustomerOrderRef  string          `json:"customerOrderRef,omitempty"`
	ProcessedAt       time.Time       `json:"processedAt"`
	CustomerName      string          `json:"customer"`
	ChannelLabel      string          `json:"channels"`
	Channel           Channel         `json:"channel"`
	DeliveryMethod    string          `json:"deliveryMethod"`
	Address           Address         `json:"address"`
	LineItems         []LineItem      `json:"lineItems"`
	Tags              []string        `json:"tags"`
	TotalPrice        decimal.Decimal `json:"total"`
	Currency          string          `json:"currency,omitempty"`
	FinancialStatus   string          `json:"paymentStatus,omitempty"`
	FulfillmentStatus string          `json:"fulfillmentStatus,omitempty"`
	CreatedAt         time.Time       `json:"-"`
	UpdatedAt         time.Time       `json:"-"`
}

// UnmarshalJSON accepts the loose shapes the admin UI sends: numeric ids, "orderNumber"
// instead of "name", "$12.00" totals and a lineItems value that is not an array.
func (o *Order) UnmarshalJSON(data []byte) error {
	var aux struct {
		ID                json.RawMessage `json:"id"`
		Name              string          `json:"name"`
		OrderNumber       string          `json:"orderNumber"`
		CustomerOrderRef  json.RawMessage `json:"customerOrderRef"`
		ProcessedAt       string          `json:"processedAt"`
		CustomerName      string          `json:"customer"`
		ChannelLabel      string          `json:"channels"`
		Channel           Channel         `json:"channel"`
		DeliveryMethod    string          `json:"deliveryMethod"`
		Address           *Address        `json:"address"`
		LineItems         json.RawMessage `json:"lineItems"`
		Tags              json.RawMessage `json:"tags"`
		Total             json.RawMessage `json:"total"`
		Currency          string          `json:"currency"`
		FinancialStatus   string          `json:"paymentStatus"`
		FulfillmentStatus string          `json:"fulfillmentStatus"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	*o = Order{
		Name:              aux.Name,
		CustomerName:      aux.CustomerName,
		ChannelLabel:      aux.ChannelLabel,
		Channel:           aux.Channel,
		DeliveryMethod:    aux.DeliveryMethod,
		Currency:          aux.Currency,
		FinancialStatus:   aux.FinancialStatus,
		FulfillmentStatus: aux.FulfillmentStatus,
	}
	o.ID, _ = scalarString(aux.ID)
	o.CustomerOrderRef, _ = scalarString(aux.CustomerOrderRef)
	if o.Name == "" {
		o.Name = aux.OrderNumber
	}
	if aux.Address != nil {
		o.Address = *aux.Address
	}
	if aux.ProcessedAt != "" {
		if t, err := time.Parse(time.RFC3339Nano, aux.ProcessedAt); err == nil {
			o.ProcessedAt = t
		}
	}
	if total, ok := scalarString(aux.Total); ok {
		if d, err := decimal.NewFromString(strings.TrimPrefix(strings.TrimSpace(total), "$")); err == nil {
			o.TotalPrice = d
		}
	}

	trimmed := bytes.TrimSpace(aux.LineItems)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &o.LineItems); err != nil {
			return err
		}
	}
	trimmed = bytes.TrimSpace(aux.Tags)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		_ = json.Unmarshal(trimmed, &o.Tags)
	}
	return nil
}

// OrderRef returns the customer order reference written to the export
func (o *Order) OrderRef() string {
	if o.CustomerOrderRef != "" {
		return o.CustomerOrderRef
	}
	return o.Name
}

// HasTag reports whether the order already carries tag (case-insensitive)
func (o *Order) HasTag(tag string) bool {
	for _, t := range o.Tags {
		if strings.EqualFold(strings.TrimSpace(t), tag) {
			return true
		}
	}
	return false
}

// ExportFilters are the criteria an export was run with. They are stored with the
// export record as given.
type ExportFilters struct {
	Option    ExportOption `json:"exportOption"`
	StartTime *time.Time   `json:"startTime,omitempty"`
	EndTime   *time.Time   `json:"endTime,omitempty"`
}

// Window returns the inclusive time window selected by the filters.
// bounded is false for ExportOptionAll. A date range ends at the last instant of its end day.
func (f ExportFilters) Window() (start, end time.Time, bounded bool) {
	if f.Option == ExportOptionAll || f.StartTime == nil || f.EndTime == nil {
		return time.Time{}, time.Time{}, false
	}
	start, end = *f.StartTime, *f.EndTime
	if f.Option == ExportOptionDateRange {
		y, m, d := end.Date()
		end = time.Date(y, m, d, 23, 59, 59, int(time.Millisecond*999), end.Location())
	}
	return start, end, true
}

// Contains reports whether t falls inside the filter window.
// Orders without a processed time never match a bounded window.
func (f ExportFilters) Contains(t time.Time) bool {
	start, end, bounded := f.Window()
	if !bounded {
		return true
	}
	if t.IsZero() {
		return false
	}
	return !t.Before(start) && !t.After(end)
}

// ExportRecord is the audit entry written once per successful export
type ExportRecord struct {
	ID         uuid.UUID
	Filename   string
	ExportedAt time.Time
	Filters    ExportFilters
	OrderCount int // number of input orders, not rows
	RowCount   int
	Location   string
}

// scalarString renders a JSON scalar as a string. Objects, arrays and null are rejected.
func scalarString(raw json.RawMessage) (string, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "", false
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", false
		}
		return s, true
	case '{', '[', 'n':
		return "", false
	default:
		// numbers and booleans keep their literal text
		return string(trimmed), true
	}
}
