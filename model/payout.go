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
	"time"

	"github.com/shopspring/decimal"
)

// PayoutStatus is the lifecycle state of a payout batch.
type PayoutStatus string

const (
	PayoutPending    PayoutStatus = "pending"
	PayoutProcessing PayoutStatus = "processing"
	PayoutCompleted  PayoutStatus = "completed"
	PayoutFailed     PayoutStatus = "failed"
)

// PaymentMethod is the rail a payout is executed on.
type PaymentMethod string

const (
	PaymentMethodStripe PaymentMethod = "stripe"
	PaymentMethodPaypal PaymentMethod = "paypal"
)

// Valid reports whether m is a supported payment rail.
func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodStripe || m == PaymentMethodPaypal
}

// Payout is a batched payment event settling one or more commissions to a
// single seller. TotalAmount equals the sum of net_seller_amount over the
// attached commissions at creation time.
type Payout struct {
	PayoutID         string                 `json:"payout_id"`
	SellerID         string                 `json:"seller_id"`
	TotalAmount      decimal.Decimal        `json:"total_amount"`
	TotalCommissions int                    `json:"total_commissions"`
	PaymentMethod    PaymentMethod          `json:"payment_method"`
	Status           PayoutStatus           `json:"status"`
	ScheduledDate    time.Time              `json:"scheduled_date"`
	ProcessedDate    *time.Time             `json:"processed_date,omitempty"`
	PaymentReference string                 `json:"payment_reference,omitempty"`
	FailureReason    string                 `json:"failure_reason,omitempty"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at"`
	MetaData         map[string]interface{} `json:"meta_data,omitempty"`
}

// PayoutSettings is the singleton payout configuration row. It is lazily
// created with defaults on first read and updated through the admin path.
type PayoutSettings struct {
	SettingsID           string          `json:"settings_id"`
	AutoPayoutEnabled    bool            `json:"auto_payout_enabled"`
	MinimumPayoutAmount  decimal.Decimal `json:"minimum_payout_amount"`
	HoldingPeriodDays    int             `json:"holding_period_days"`
	DefaultPaymentMethod PaymentMethod   `json:"default_payment_method"`
	UpdatedBy            string          `json:"updated_by,omitempty"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// DefaultPayoutSettings returns the settings row written on first read when
// none exists yet.
func DefaultPayoutSettings() *PayoutSettings {
	return &PayoutSettings{
		AutoPayoutEnabled:    false,
		MinimumPayoutAmount:  decimal.NewFromInt(50),
		HoldingPeriodDays:    7,
		DefaultPaymentMethod: PaymentMethodStripe,
	}
}

// PayoutAmount is the aggregate of a seller's eligible pending commissions.
type PayoutAmount struct {
	TotalAmount     decimal.Decimal `json:"total_amount"`
	CommissionCount int             `json:"commission_count"`
	Commissions     []*Commission   `json:"commissions"`
}

// SellerBalance is one row of the grouped eligibility query used by the
// automated payout run.
type SellerBalance struct {
	SellerID        string          `json:"seller_id"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	CommissionCount int             `json:"commission_count"`
}

// SellerPayoutOutcome records what happened for one seller during an
// automated payout run.
type SellerPayoutOutcome struct {
	SellerID string          `json:"seller_id"`
	PayoutID string          `json:"payout_id,omitempty"`
	Amount   decimal.Decimal `json:"amount"`
	Error    string          `json:"error,omitempty"`
}

// Succeeded reports whether a payout was created for the seller.
func (o SellerPayoutOutcome) Succeeded() bool {
	return o.Error == ""
}

// PayoutRunSummary is the result of one automated payout run. One seller's
// failure never aborts the run; it is recorded here instead.
type PayoutRunSummary struct {
	ProcessedAt  time.Time             `json:"processed_at"`
	AutoEnabled  bool                  `json:"auto_payout_enabled"`
	TotalSellers int                   `json:"total_sellers"`
	Successful   int                   `json:"successful"`
	Failed       int                   `json:"failed"`
	Results      []SellerPayoutOutcome `json:"results"`
}

// StatusTotal is an amount/count pair for one commission status.
type StatusTotal struct {
	Amount decimal.Decimal `json:"amount"`
	Count  int             `json:"count"`
}

// MonthlyTotal is one month of settled commission volume.
type MonthlyTotal struct {
	Month  string          `json:"month"` // YYYY-MM
	Amount decimal.Decimal `json:"amount"`
	Count  int             `json:"count"`
}

// CommissionAnalytics feeds the seller dashboard: totals per status plus a
// trailing monthly breakdown.
type CommissionAnalytics struct {
	SellerID   string         `json:"seller_id"`
	Pending    StatusTotal    `json:"pending"`
	Processing StatusTotal    `json:"processing"`
	Paid       StatusTotal    `json:"paid"`
	Monthly    []MonthlyTotal `json:"monthly"`
}
