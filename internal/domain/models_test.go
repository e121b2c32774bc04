package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProperties_UnmarshalJSON(t *testing.T) {
	t.Run("Object form keeps document order", func(t *testing.T) {
		var p Properties
		require.NoError(t, json.Unmarshal([]byte(`{"Text line 1":"Ann","Background Color":"Red","Qty":3,"Nested":{"a":1},"Gone":null}`), &p))

		assert.Equal(t, Properties{
			{Name: "Text line 1", Value: "Ann"},
			{Name: "Background Color", Value: "Red"},
			{Name: "Qty", Value: "3"},
		}, p)
	})

	t.Run("Object form keeps ten plus slots and colliding names in order", func(t *testing.T) {
		var p Properties
		require.NoError(t, json.Unmarshal([]byte(`{"Motifs 2":"B","Motifs 10":"J","background color":"red","Background Color":"blue"}`), &p))

		assert.Equal(t, Properties{
			{Name: "Motifs 2", Value: "B"},
			{Name: "Motifs 10", Value: "J"},
			{Name: "background color", Value: "red"},
			{Name: "Background Color", Value: "blue"},
		}, p)
	})

	t.Run("Malformed object", func(t *testing.T) {
		var p Properties
		assert.Error(t, json.Unmarshal([]byte(`{"a":}`), &p))
	})

	t.Run("Array form keeps order and accepts key", func(t *testing.T) {
		var p Properties
		require.NoError(t, json.Unmarshal([]byte(`[{"name":"B","value":"2"},{"key":"A","value":"1"},{"value":"orphan"}]`), &p))

		assert.Equal(t, Properties{{Name: "B", Value: "2"}, {Name: "A", Value: "1"}}, p)
	})

	t.Run("Unusable shapes give no properties", func(t *testing.T) {
		var p Properties
		require.NoError(t, json.Unmarshal([]byte(`"text"`), &p))
		assert.Nil(t, p)

		require.NoError(t, json.Unmarshal([]byte(`null`), &p))
		assert.Nil(t, p)
	})
}

func TestLineItem_UnmarshalJSON(t *testing.T) {
	var items []LineItem
	require.NoError(t, json.Unmarshal([]byte(`[
		{"sku":"A","quantity":2},
		{"sku":"B","quantity":"3"},
		{"sku":"C","quantity":"many"},
		{"sku":"D"}
	]`), &items))

	require.Len(t, items, 4)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, 3, items[1].Quantity)
	assert.Equal(t, 0, items[2].Quantity)
	assert.Equal(t, 0, items[3].Quantity)
}

func TestOrder_UnmarshalJSON(t *testing.T) {
	t.Run("Admin UI shape", func(t *testing.T) {
		var o Order
		require.NoError(t, json.Unmarshal([]byte(`{
			"id": 1001,
			"orderNumber": "#1001",
			"processedAt": "2024-03-07T09:05:00Z",
			"customer": "Jane Doe",
			"channels": "Amazon",
			"deliveryMethod": "Standard",
			"address": {"address1": "1 High St", "zip": "LS1 1AA"},
			"total": "$12.50",
			"lineItems": [{"sku": "A", "quantity": 1, "properties": {"Text line 1": "Ann"}}],
			"tags": ["vip"]
		}`), &o))

		assert.Equal(t, "1001", o.ID)
		assert.Equal(t, "#1001", o.Name)
		assert.Equal(t, time.Date(2024, 3, 7, 9, 5, 0, 0, time.UTC), o.ProcessedAt.UTC())
		assert.Equal(t, "Amazon", o.ChannelLabel)
		assert.True(t, o.Channel.IsZero())
		assert.Equal(t, "1 High St", o.Address.Address1)
		assert.True(t, decimal.RequireFromString("12.50").Equal(o.TotalPrice))
		require.Len(t, o.LineItems, 1)
		assert.Equal(t, "Ann", o.LineItems[0].Properties[0].Value)
		assert.Equal(t, []string{"vip"}, o.Tags)
	})

	t.Run("Non-array line items are ignored", func(t *testing.T) {
		var o Order
		require.NoError(t, json.Unmarshal([]byte(`{"id":"gid://shopify/Order/1","lineItems":"none","tags":"a, b"}`), &o))

		assert.Empty(t, o.LineItems)
		assert.Empty(t, o.Tags)
	})
}

func TestOrder_OrderRef(t *testing.T) {
	o := Order{Name: "#1001"}
	assert.Equal(t, "#1001", o.OrderRef())

	o.CustomerOrderRef = "PO-1"
	assert.Equal(t, "PO-1", o.OrderRef())
}

func TestOrder_HasTag(t *testing.T) {
	o := Order{Tags: []string{"VIP", " exported "}}

	assert.True(t, o.HasTag("exported"))
	assert.True(t, o.HasTag("vip"))
	assert.False(t, o.HasTag("wholesale"))
}

func TestExportFilters(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC)

	t.Run("All has no window", func(t *testing.T) {
		f := ExportFilters{}
		_, _, bounded := f.Window()

		assert.False(t, bounded)
		assert.True(t, f.Contains(time.Time{}))
	})

	t.Run("Date range includes the whole end day", func(t *testing.T) {
		f := ExportFilters{Option: ExportOptionDateRange, StartTime: &start, EndTime: &end}
		_, gotEnd, bounded := f.Window()

		require.True(t, bounded)
		assert.Equal(t, time.Date(2024, 3, 7, 23, 59, 59, 999000000, time.UTC), gotEnd)
		assert.True(t, f.Contains(time.Date(2024, 3, 7, 18, 0, 0, 0, time.UTC)))
		assert.False(t, f.Contains(time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC)))
		assert.False(t, f.Contains(time.Date(2024, 2, 29, 23, 0, 0, 0, time.UTC)))
		assert.False(t, f.Contains(time.Time{}))
	})

	t.Run("Time range is exact", func(t *testing.T) {
		f := ExportFilters{Option: ExportOptionTimeRange, StartTime: &start, EndTime: &end}

		assert.True(t, f.Contains(end))
		assert.False(t, f.Contains(end.Add(time.Second)))
	})
}
