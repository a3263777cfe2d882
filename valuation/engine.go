/*
Copyright 2025 Trove Market Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package valuation

import (
	"context"

	"github.com/cenkalti/backoff/v4"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/trovemarket/settle/config"
)

// minimumRetailPrice floors every estimate; offers below this are not worth
// making.
var minimumRetailPrice = decimal.NewFromInt(5)

// buybackRatio is the fixed business rule deriving the instant store-credit
// offer from the retail estimate. Never provider-supplied.
var buybackRatio = decimal.NewFromFloat(0.5)

// Engine wraps the valuation provider and guarantees a usable result:
// provider failures of any kind are absorbed into the fallback estimate.
type Engine struct {
	provider   Provider
	maxRetries uint64
}

func NewEngine(cfg config.ValuationConfig) *Engine {
	return &Engine{
		provider:   NewHTTPProvider(cfg),
		maxRetries: uint64(cfg.MaxRetries),
	}
}

// NewEngineWithProvider wires a custom provider. Used by tests and by
// deployments with a non-HTTP provider.
func NewEngineWithProvider(provider Provider, maxRetries uint64) *Engine {
	return &Engine{provider: provider, maxRetries: maxRetries}
}

// EvaluateItem produces a buyback valuation for the item. By contract it
// cannot fail: provider errors, timeouts and malformed payloads all resolve
// to the deterministic fallback estimate, tagged with low confidence so the
// caller can tell the difference.
func (e *Engine) EvaluateItem(ctx context.Context, item ItemDetails) *Valuation {
	estimate, err := e.estimateWithRetry(ctx, item)
	if err != nil {
		logrus.WithError(err).WithField("item", item.Title).Warn("valuation provider failed, using fallback estimate")
		return FallbackEstimate(item)
	}
	return normalize(estimate)
}

func (e *Engine) estimateWithRetry(ctx context.Context, item ItemDetails) (*ProviderEstimate, error) {
	var estimate *ProviderEstimate
	operation := func() error {
		var err error
		estimate, err = e.provider.EstimateValue(ctx, item)
		return err
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), e.maxRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return estimate, nil
}

// normalize enforces the numeric bounds on a provider estimate. The retail
// floor, the 50% buyback ratio and the listing-price floor are business
// rules; the provider only supplies raw numbers.
func normalize(estimate *ProviderEstimate) *Valuation {
	retail := estimate.EstimatedRetailPrice
	if retail.LessThan(minimumRetailPrice) {
		retail = minimumRetailPrice
	}

	suggested := estimate.SuggestedListingPrice
	if suggested.LessThan(retail) {
		suggested = retail
	}

	return &Valuation{
		EstimatedRetailPrice:  retail,
		BuybackOfferPrice:     buybackOffer(retail),
		Confidence:            clamp01(estimate.Confidence),
		Reasoning:             estimate.Reasoning,
		MarketFactors:         estimate.MarketFactors,
		ConditionAssessment:   estimate.ConditionAssessment,
		Depreciation:          clamp01(estimate.Depreciation),
		BrandValue:            estimate.BrandValue,
		MarketDemand:          estimate.MarketDemand,
		Category:              estimate.Category,
		SuggestedListingPrice: suggested,
		Fallback:              false,
	}
}

func buybackOffer(retail decimal.Decimal) decimal.Decimal {
	return retail.Mul(buybackRatio).Round(2)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
