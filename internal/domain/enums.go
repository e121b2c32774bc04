package domain

import (
	"strings"
)

// ChannelKind is the closed set of order channels the exporter knows how to parse
type ChannelKind string

const (
	// ChannelStorefront - online store; line item properties are a flat name/value bag
	ChannelStorefront ChannelKind = "storefront"
	// ChannelMarketplace - marketplace (e.g. Amazon); property values embed "key : value" lines
	ChannelMarketplace ChannelKind = "marketplace"
)

// IsValid checks if the channel kind is known
func (k ChannelKind) IsValid() bool {
	switch k {
	case ChannelStorefront, ChannelMarketplace:
		return true
	default:
		return false
	}
}

// Channel is the resolved origin of an order. Vendor is set for marketplaces only.
type Channel struct {
	Kind   ChannelKind `json:"kind"`
	Vendor string      `json:"vendor,omitempty"`
}

// StorefrontChannel returns the storefront variant
func StorefrontChannel() Channel {
	return Channel{Kind: ChannelStorefront}
}

// MarketplaceChannel returns the marketplace variant for vendor (lower-cased)
func MarketplaceChannel(vendor string) Channel {
	return Channel{Kind: ChannelMarketplace, Vendor: strings.ToLower(strings.TrimSpace(vendor))}
}

// IsZero reports whether the channel has not been resolved yet
func (c Channel) IsZero() bool {
	return c.Kind == ""
}

// DefaultMarketplaceLabels are the channel labels treated as marketplaces when none are configured
var DefaultMarketplaceLabels = []string{"amazon"}

// ChannelResolver maps free-text channel labels ("Online Store", "Amazon") to a Channel.
// Labels are compared case-insensitively.
type ChannelResolver struct {
	marketplaces map[string]string
}

// NewChannelResolver creates a resolver treating the given labels as marketplaces.
// The vendor of each marketplace is its lower-cased label.
func NewChannelResolver(marketplaceLabels []string) ChannelResolver {
	if len(marketplaceLabels) == 0 {
		marketplaceLabels = DefaultMarketplaceLabels
	}
	m := make(map[string]string, len(marketplaceLabels))
	for _, l := range marketplaceLabels {
		key := strings.ToLower(strings.TrimSpace(l))
		if key == "" {
			continue
		}
		m[key] = key
	}
	return ChannelResolver{marketplaces: m}
}

// Resolve returns the channel for label. Unknown and empty labels are storefront.
func (r ChannelResolver) Resolve(label string) Channel {
	key := strings.ToLower(strings.TrimSpace(label))
	if vendor, ok := r.marketplaces[key]; ok {
		return MarketplaceChannel(vendor)
	}
	return StorefrontChannel()
}

// ExportOption selects how an export's time window is chosen
type ExportOption string

const (
	ExportOptionAll       ExportOption = ""
	ExportOptionDateRange ExportOption = "dateRange"
	ExportOptionTimeRange ExportOption = "timeRange"
)

// IsValid checks if the export option is valid
func (o ExportOption) IsValid() bool {
	switch o {
	case ExportOptionAll, ExportOptionDateRange, ExportOptionTimeRange:
		return true
	default:
		return false
	}
}
