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

package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// CommissionStatus is the lifecycle state of a commission record.
type CommissionStatus string

const (
	CommissionPending    CommissionStatus = "pending"
	CommissionProcessing CommissionStatus = "processing"
	CommissionPaid       CommissionStatus = "paid"
)

// ErrInvalidOrderAmount is returned when an order total cannot be parsed
// into a non-negative amount.
var ErrInvalidOrderAmount = errors.New("order amount must be a non-negative number")

// CanTransitionTo reports whether moving from s to next is a legal
// commission state change. Legal moves are pending -> processing -> paid,
// plus processing -> pending when a payout fails.
func (s CommissionStatus) CanTransitionTo(next CommissionStatus) bool {
	switch s {
	case CommissionPending:
		return next == CommissionProcessing
	case CommissionProcessing:
		return next == CommissionPaid || next == CommissionPending
	default:
		return false
	}
}

// Commission is the marketplace's cut of one completed order line plus the
// bookkeeping for the seller's net proceeds. One row per order line.
type Commission struct {
	CommissionID     string                 `json:"commission_id"`
	OrderID          string                 `json:"order_id"`
	ProductID        string                 `json:"product_id"`
	SellerID         string                 `json:"seller_id"`
	SalePrice        decimal.Decimal        `json:"sale_price"`
	CommissionRate   decimal.Decimal        `json:"commission_rate"`
	CommissionAmount decimal.Decimal        `json:"commission_amount"`
	SellerAmount     decimal.Decimal        `json:"seller_amount"`
	ProcessingFee    decimal.Decimal        `json:"processing_fee"`
	NetSellerAmount  decimal.Decimal        `json:"net_seller_amount"`
	Status           CommissionStatus       `json:"status"`
	PayoutID         string                 `json:"payout_id,omitempty"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at"`
	MetaData         map[string]interface{} `json:"meta_data,omitempty"`
}

// CommissionCalculation holds the full-precision split of a single sale.
// Rounding to two decimal places happens only at the persistence boundary.
type CommissionCalculation struct {
	SalePrice        decimal.Decimal `json:"sale_price"`
	CommissionRate   decimal.Decimal `json:"commission_rate"`
	CommissionAmount decimal.Decimal `json:"commission_amount"`
	SellerAmount     decimal.Decimal `json:"seller_amount"`
	ProcessingFee    decimal.Decimal `json:"processing_fee"`
	NetSellerAmount  decimal.Decimal `json:"net_seller_amount"`
}

var oneHundred = decimal.NewFromInt(100)

// CalculateCommission computes the commission split for a single sale.
//
// commissionAmount = salePrice * rate / 100
// sellerAmount     = salePrice - commissionAmount
// processingFee    = sellerAmount * feeRate / 100
// netSellerAmount  = sellerAmount - processingFee
//
// The function is deterministic and has no side effects. It fails only when
// saleAmount does not parse to a non-negative number.
func CalculateCommission(saleAmount string, commissionRate, processingFeeRate decimal.Decimal) (*CommissionCalculation, error) {
	salePrice, err := decimal.NewFromString(saleAmount)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidOrderAmount, saleAmount)
	}
	if salePrice.IsNegative() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidOrderAmount, saleAmount)
	}

	commissionAmount := salePrice.Mul(commissionRate).Div(oneHundred)
	sellerAmount := salePrice.Sub(commissionAmount)
	processingFee := sellerAmount.Mul(processingFeeRate).Div(oneHundred)

	return &CommissionCalculation{
		SalePrice:        salePrice,
		CommissionRate:   commissionRate,
		CommissionAmount: commissionAmount,
		SellerAmount:     sellerAmount,
		ProcessingFee:    processingFee,
		NetSellerAmount:  sellerAmount.Sub(processingFee),
	}, nil
}

// RoundMoney applies the two-decimal rounding used at the persistence
// boundary. Half-away-from-zero, matching NUMERIC(.., 2) behaviour.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ParseRateOrDefault parses a seller-supplied commission rate, falling back
// to def when the value is empty or unparseable.
func ParseRateOrDefault(rate string, def decimal.Decimal) decimal.Decimal {
	if rate == "" {
		return def
	}
	parsed, err := decimal.NewFromString(rate)
	if err != nil || parsed.IsNegative() {
		return def
	}
	return parsed
}
