package export

import (
	"fmt"
	"regexp"
)

// TextLineCount is the number of personalised text lines in the export layout
const TextLineCount = 6

// StorefrontRules lists, per semantic field, the normalized property names to try in
// order. The first non-empty value wins.
type StorefrontRules struct {
	BackgroundColor []string
	TextColor       []string
	FontStyle       []string
	TextLines       [TextLineCount][]string
	LineStyles      [TextLineCount][]string
	// Every property whose normalized name starts with one of these is a motif slot
	MotifPrefixes []string
}

// DefaultStorefrontRules returns the property names used by the online store's product options
func DefaultStorefrontRules() StorefrontRules {
	r := StorefrontRules{
		BackgroundColor: []string{"background color", "background colour"},
		TextColor:       []string{"text color", "text colour"},
		FontStyle:       []string{"text style", "font style", "select a font for single line text"},
		MotifPrefixes:   []string{"motifs", "motif code"},
	}
	for i := 0; i < TextLineCount; i++ {
		n := i + 1
		r.TextLines[i] = []string{fmt.Sprintf("text line %d", n), fmt.Sprintf("line %d text", n)}
		r.LineStyles[i] = []string{fmt.Sprintf("line %d style code", n), fmt.Sprintf("line %d style", n)}
	}
	return r
}

// MarketplaceTarget is the semantic field group a marketplace property feeds
type MarketplaceTarget int

const (
	TargetBackground MarketplaceTarget = iota + 1
	TargetMotif
	TargetTextLine
)

func (t MarketplaceTarget) String() string {
	switch t {
	case TargetBackground:
		return "background"
	case TargetMotif:
		return "motif"
	case TargetTextLine:
		return "text_line"
	default:
		return "unknown"
	}
}

// MarketplaceRule routes a property whose name matches Pattern to Target
type MarketplaceRule struct {
	Pattern *regexp.Regexp
	Target  MarketplaceTarget
}

// MarketplaceRules are evaluated in order; the first matching rule decides a property's target.
type MarketplaceRules []MarketplaceRule

// Keys inside an embedded marketplace value (after lower-casing)
const (
	embeddedOptionValue = "optionvalue"
	embeddedColorName   = "colorname"
	embeddedFontFamily  = "fontfamily"
	embeddedText        = "text"
)

// DefaultMarketplaceRules returns the Amazon custom-product layout.
// Text lines come first so "Line 1 Text" is never read as a color.
func DefaultMarketplaceRules() MarketplaceRules {
	return MarketplaceRules{
		{Pattern: regexp.MustCompile(`(?i)line\s*\d*\s*text`), Target: TargetTextLine},
		{Pattern: regexp.MustCompile(`(?i)motif`), Target: TargetMotif},
		{Pattern: regexp.MustCompile(`(?i)colou?r`), Target: TargetBackground},
	}
}

// match returns the target of the first rule matching name
func (rs MarketplaceRules) match(name string) (MarketplaceTarget, bool) {
	for _, r := range rs {
		if r.Pattern != nil && r.Pattern.MatchString(name) {
			return r.Target, true
		}
	}
	return 0, false
}
