package valuation

import (
	"context"

	"github.com/shopspring/decimal"
)

// ItemDetails describes the item a buyback offer is requested for.
type ItemDetails struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Condition   string `json:"condition"`
	AgeYears    int    `json:"age_years,omitempty"`
	Brand       string `json:"brand,omitempty"`
	Category    string `json:"category,omitempty"`
}

// ProviderEstimate is the raw payload returned by the AI valuation provider,
// before any bounds are enforced.
type ProviderEstimate struct {
	EstimatedRetailPrice  decimal.Decimal `json:"estimated_retail_price"`
	Confidence            float64         `json:"confidence"`
	Reasoning             string          `json:"reasoning"`
	MarketFactors         []string        `json:"market_factors"`
	ConditionAssessment   string          `json:"condition_assessment"`
	Depreciation          float64         `json:"depreciation"`
	BrandValue            string          `json:"brand_value"`
	MarketDemand          string          `json:"market_demand"`
	Category              string          `json:"category"`
	SuggestedListingPrice decimal.Decimal `json:"suggested_listing_price"`
}

// Provider is the external AI valuation service. Implementations may fail or
// return garbage; the Engine absorbs both.
type Provider interface {
	Name() string
	EstimateValue(ctx context.Context, item ItemDetails) (*ProviderEstimate, error)
}

// Valuation is the normalized result handed to the buyback flow. Fallback
// marks rule-derived estimates so consumers can distinguish them from
// AI-derived ones.
type Valuation struct {
	EstimatedRetailPrice  decimal.Decimal `json:"estimated_retail_price"`
	BuybackOfferPrice     decimal.Decimal `json:"buyback_offer_price"`
	Confidence            float64         `json:"confidence"`
	Reasoning             string          `json:"reasoning"`
	MarketFactors         []string        `json:"market_factors"`
	ConditionAssessment   string          `json:"condition_assessment"`
	Depreciation          float64         `json:"depreciation"`
	BrandValue            string          `json:"brand_value"`
	MarketDemand          string          `json:"market_demand"`
	Category              string          `json:"category"`
	SuggestedListingPrice decimal.Decimal `json:"suggested_listing_price"`
	Fallback              bool            `json:"fallback"`
}
