package export

import (
	"strconv"

	"github.com/labelprint/orderexport/internal/domain"
)

// Header is the fulfillment partner's fixed column layout. Order matters.
var Header = []string{
	"CUSTOMER CODE",
	"CUSTOMER ORDER REF",
	"PRODUCT CODE",
	"QUANTITY REQUIRED",
	"BACKGROUND (TAPE) COLOUR",
	"FOREGROUND (TEXT) COLOUR",
	"MOTIF CODE",
	"LINE 1 STYLE CODE",
	"LINE 1 TEXT",
	"LINE 2 STYLE CODE",
	"LINE 2 TEXT",
	"LINE 3 STYLE CODE",
	"LINE 3 TEXT",
	"LINE 4 STYLE CODE",
	"LINE 4 TEXT",
	"LINE 5 STYLE CODE",
	"LINE 5 TEXT",
	"LINE 6 STYLE CODE",
	"LINE 6 TEXT",
	"DELIVERY NAME",
	"DELIVERY ADDRESS LINE 1",
	"DELIVERY ADDRESS LINE 2",
	"DELIVERY ADDRESS LINE 3",
	"DELIVERY ADDRESS LINE 4",
	"DELIVERY COUNTRY",
	"DELIVERY POST CODE",
	"DELIVERY METHOD",
}

// ColumnCount is len(Header)
const ColumnCount = 27

// Row is one CSV line: exactly ColumnCount fields in Header order
type Row [ColumnCount]string

// Options are the account-level values written into every row
type Options struct {
	CustomerCode string
}

// BuildRow assembles the export row for one line item of order.
func BuildRow(order *domain.Order, item *domain.LineItem, fields SemanticFields, opts Options) Row {
	var row Row
	row[0] = opts.CustomerCode
	row[1] = order.OrderRef()
	row[2] = item.SKU
	row[3] = quantity(item.Quantity)
	row[4] = fields.BackgroundColor
	row[5] = fields.TextColor
	row[6] = fields.MotifCode

	styles := ResolveLineStyles(fields)
	for i := 0; i < TextLineCount; i++ {
		row[7+2*i] = styles[i]
		row[8+2*i] = fields.TextLines[i]
	}

	row[19] = order.CustomerName
	row[20] = order.Address.Address1
	row[21] = order.Address.Address2
	row[22] = order.Address.Address3
	row[23] = order.Address.Address4
	row[24] = order.Address.Country
	row[25] = order.Address.Zip
	row[26] = order.DeliveryMethod
	return row
}

// ResolveLineStyles applies the style inheritance: line 1 uses its own style or the
// generic font style, every later line its own style or the previous line's.
func ResolveLineStyles(fields SemanticFields) [TextLineCount]string {
	var out [TextLineCount]string
	prev := fields.FontStyle
	for i := 0; i < TextLineCount; i++ {
		if s := fields.LineStyles[i]; s != "" {
			prev = s
		}
		out[i] = prev
	}
	return out
}

func quantity(q int) string {
	if q <= 0 {
		return ""
	}
	return strconv.Itoa(q)
}
