package export

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/labelprint/orderexport/internal/domain"
)

// SemanticFields is the channel-independent personalisation of one line item.
// Absent fields are empty strings.
type SemanticFields struct {
	BackgroundColor string
	TextColor       string
	FontStyle       string
	MotifCode       string
	TextLines       [TextLineCount]string
	LineStyles      [TextLineCount]string
}

// Extractor turns raw line item properties into SemanticFields, choosing the parsing
// strategy from the order's channel.
type Extractor struct {
	storefront         StorefrontRules
	marketplace        map[string]MarketplaceRules
	defaultMarketplace MarketplaceRules
}

// ExtractorOption configures an Extractor
type ExtractorOption func(*Extractor)

// WithStorefrontRules replaces the storefront key lists
func WithStorefrontRules(rules StorefrontRules) ExtractorOption {
	return func(e *Extractor) {
		e.storefront = rules
	}
}

// WithMarketplaceRules sets the rules for one marketplace vendor (e.g. "amazon")
func WithMarketplaceRules(vendor string, rules MarketplaceRules) ExtractorOption {
	return func(e *Extractor) {
		e.marketplace[strings.ToLower(strings.TrimSpace(vendor))] = rules
	}
}

// NewExtractor creates an Extractor with the default rules
func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{
		storefront:         DefaultStorefrontRules(),
		marketplace:        make(map[string]MarketplaceRules),
		defaultMarketplace: DefaultMarketplaceRules(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract never fails: anything missing or unparseable is left empty.
func (e *Extractor) Extract(props domain.Properties, channel domain.Channel) SemanticFields {
	switch channel.Kind {
	case domain.ChannelMarketplace:
		return e.extractMarketplace(props, e.marketplaceRules(channel.Vendor))
	default:
		return e.extractStorefront(Normalize(props))
	}
}

func (e *Extractor) marketplaceRules(vendor string) MarketplaceRules {
	if rules, ok := e.marketplace[vendor]; ok {
		return rules
	}
	return e.defaultMarketplace
}

func (e *Extractor) extractStorefront(props NormalizedProperties) SemanticFields {
	r := e.storefront
	f := SemanticFields{
		BackgroundColor: props.First(r.BackgroundColor),
		TextColor:       props.First(r.TextColor),
		FontStyle:       props.First(r.FontStyle),
		MotifCode:       strings.Join(props.WithPrefix(r.MotifPrefixes), ","),
	}
	for i := 0; i < TextLineCount; i++ {
		f.TextLines[i] = props.First(r.TextLines[i])
		f.LineStyles[i] = props.First(r.LineStyles[i])
	}
	return f
}

// extractMarketplace walks properties in input order, so for any field the last
// matching property wins.
func (e *Extractor) extractMarketplace(props domain.Properties, rules MarketplaceRules) SemanticFields {
	var f SemanticFields
	for _, p := range props {
		target, ok := rules.match(p.Name)
		if !ok {
			continue
		}
		kv := ParseEmbedded(p.Value)

		switch target {
		case TargetBackground:
			setIfPresent(&f.BackgroundColor, kv[embeddedOptionValue])
		case TargetMotif:
			setIfPresent(&f.MotifCode, stripDescription(kv[embeddedOptionValue]))
		case TargetTextLine:
			slot := lineSlot(p.Name)
			setIfPresent(&f.TextColor, kv[embeddedColorName])
			setIfPresent(&f.FontStyle, kv[embeddedFontFamily])
			setIfPresent(&f.TextLines[slot-1], kv[embeddedText])
		}
	}
	return f
}

func setIfPresent(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

// stripDescription turns "M12 - Football" into "M12"
func stripDescription(v string) string {
	code, _, _ := strings.Cut(v, "-")
	return strings.TrimSpace(code)
}

var digitRun = regexp.MustCompile(`\d+`)

// lineSlot returns the 1-based text line named by the first number in name,
// or 1 when there is none or it is out of range.
func lineSlot(name string) int {
	m := digitRun.FindString(name)
	if m == "" {
		return 1
	}
	n, err := strconv.Atoi(m)
	if err != nil || n < 1 || n > TextLineCount {
		return 1
	}
	return n
}
