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

package settle

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"

	"github.com/trovemarket/settle/config"
	"github.com/trovemarket/settle/internal/apierror"
	"github.com/trovemarket/settle/model"
)

// OrderCompletedEvent carries one sold order line into the settlement
// engine. CommissionRate is an optional seller-specific override; when empty
// or unparseable the configured default applies.
type OrderCompletedEvent struct {
	OrderID        string                 `json:"order_id"`
	ProductID      string                 `json:"product_id"`
	SellerID       string                 `json:"seller_id"`
	SaleAmount     string                 `json:"sale_amount"`
	CommissionRate string                 `json:"commission_rate,omitempty"`
	MetaData       map[string]interface{} `json:"meta_data,omitempty"`
}

// RecordOrderCommission computes the commission split for a completed order
// line and persists it as a pending commission. The stored amounts are the
// rounded persistence-boundary values; the split itself is computed at full
// precision.
func (s *Settle) RecordOrderCommission(ctx context.Context, event OrderCompletedEvent) (*model.Commission, error) {
	ctx, span := otel.Tracer("settle.commission").Start(ctx, "RecordOrderCommission")
	defer span.End()

	cnf, err := config.Fetch()
	if err != nil {
		return nil, err
	}

	rate := model.ParseRateOrDefault(event.CommissionRate, model.ParseRateOrDefault(cnf.Payout.DefaultCommissionRate, decimal.NewFromInt(10)))
	feeRate := model.ParseRateOrDefault(cnf.Payout.ProcessingFeeRate, decimal.NewFromFloat(2.9))

	calc, err := model.CalculateCommission(event.SaleAmount, rate, feeRate)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, err.Error(), err)
	}

	commission := &model.Commission{
		OrderID:          event.OrderID,
		ProductID:        event.ProductID,
		SellerID:         event.SellerID,
		SalePrice:        calc.SalePrice,
		CommissionRate:   calc.CommissionRate,
		CommissionAmount: calc.CommissionAmount,
		SellerAmount:     calc.SellerAmount,
		ProcessingFee:    calc.ProcessingFee,
		NetSellerAmount:  calc.NetSellerAmount,
		MetaData:         event.MetaData,
	}

	saved, err := s.datasource.CreateCommission(ctx, commission)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"commission_id": saved.CommissionID,
		"order_id":      saved.OrderID,
		"seller_id":     saved.SellerID,
		"net_amount":    saved.NetSellerAmount,
	}).Info("commission recorded")

	return saved, nil
}

// GetCommission retrieves a single commission by ID.
func (s *Settle) GetCommission(ctx context.Context, id string) (*model.Commission, error) {
	return s.datasource.GetCommission(ctx, id)
}

// GetPendingCommissions returns the seller's pending commissions that have
// cleared the configured holding period.
func (s *Settle) GetPendingCommissions(ctx context.Context, sellerID string) ([]*model.Commission, error) {
	cutoff, err := s.holdingCutoff(ctx)
	if err != nil {
		return nil, err
	}
	return s.datasource.GetPendingCommissions(ctx, sellerID, cutoff)
}

// CalculatePayoutAmount aggregates the seller's eligible pending commissions
// without mutating anything. The minimum payout threshold applies to this
// aggregate, never per commission.
func (s *Settle) CalculatePayoutAmount(ctx context.Context, sellerID string) (*model.PayoutAmount, error) {
	ctx, span := otel.Tracer("settle.commission").Start(ctx, "CalculatePayoutAmount")
	defer span.End()

	commissions, err := s.GetPendingCommissions(ctx, sellerID)
	if err != nil {
		return nil, err
	}

	amount := &model.PayoutAmount{Commissions: commissions}
	for _, cms := range commissions {
		amount.TotalAmount = amount.TotalAmount.Add(cms.NetSellerAmount)
		amount.CommissionCount++
	}
	amount.TotalAmount = model.RoundMoney(amount.TotalAmount)
	return amount, nil
}

// GetCommissionAnalytics returns per-status totals and a trailing monthly
// breakdown for a seller.
func (s *Settle) GetCommissionAnalytics(ctx context.Context, sellerID string) (*model.CommissionAnalytics, error) {
	return s.datasource.GetCommissionAnalytics(ctx, sellerID)
}

// holdingCutoff resolves the holding-period cutoff from the stored payout
// settings. Commissions created after the cutoff are not yet eligible.
func (s *Settle) holdingCutoff(ctx context.Context) (time.Time, error) {
	st, err := s.datasource.GetPayoutSettings(ctx)
	if err != nil {
		return time.Time{}, err
	}
	return time.Now().AddDate(0, 0, -st.HoldingPeriodDays), nil
}
