package valuation

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// FallbackConfidence marks rule-derived estimates; consumers treat anything
// at or below this as low-trust.
const FallbackConfidence = 0.3

var conditionMultipliers = map[string]float64{
	"excellent": 0.8,
	"like-new":  0.8,
	"like new":  0.8,
	"good":      0.6,
	"fair":      0.4,
	"poor":      0.2,
}

const defaultConditionMultiplier = 0.5

// categoryBasePrices is keyword-matched against the item category. Order
// matters: first match wins.
var categoryBasePrices = []struct {
	keyword string
	base    int64
}{
	{"electronics", 150},
	{"clothing", 40},
	{"furniture", 100},
	{"books", 15},
	{"home", 60},
	{"sports", 80},
	{"toys", 30},
}

const defaultCategoryBasePrice = 50

// FallbackEstimate computes the deterministic rule-based valuation used when
// the provider is unreachable or returns unusable data. It never fails.
func FallbackEstimate(item ItemDetails) *Valuation {
	condition := strings.ToLower(strings.TrimSpace(item.Condition))
	multiplier, known := conditionMultipliers[condition]
	if !known {
		multiplier = defaultConditionMultiplier
	}

	base := decimal.NewFromInt(defaultCategoryBasePrice)
	matchedCategory := "general"
	category := strings.ToLower(item.Category)
	for _, entry := range categoryBasePrices {
		if strings.Contains(category, entry.keyword) {
			base = decimal.NewFromInt(entry.base)
			matchedCategory = entry.keyword
			break
		}
	}

	retail := base.Mul(decimal.NewFromFloat(multiplier))
	if retail.LessThan(minimumRetailPrice) {
		retail = minimumRetailPrice
	}

	assessment := condition
	if assessment == "" {
		assessment = "unknown"
	}

	return &Valuation{
		EstimatedRetailPrice:  retail,
		BuybackOfferPrice:     buybackOffer(retail),
		Confidence:            FallbackConfidence,
		Reasoning:             fmt.Sprintf("Fallback estimate from category/condition pricing rules (category %q, condition %q); valuation provider unavailable", matchedCategory, assessment),
		MarketFactors:         []string{"rule-based pricing table"},
		ConditionAssessment:   assessment,
		Depreciation:          1 - multiplier,
		BrandValue:            "unknown",
		MarketDemand:          "unknown",
		Category:              matchedCategory,
		SuggestedListingPrice: retail,
		Fallback:              true,
	}
}
