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

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"

	"github.com/trovemarket/settle/model"
	"github.com/trovemarket/settle/valuation"
)

// RecordCommission is the order-completed payload that creates a pending
// commission for one order line.
type RecordCommission struct {
	OrderID        string                 `json:"order_id"`
	ProductID      string                 `json:"product_id"`
	SellerID       string                 `json:"seller_id"`
	SaleAmount     string                 `json:"sale_amount"`
	CommissionRate string                 `json:"commission_rate,omitempty"`
	MetaData       map[string]interface{} `json:"meta_data,omitempty"`
}

func (r *RecordCommission) ValidateRecordCommission() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.OrderID, validation.Required),
		validation.Field(&r.ProductID, validation.Required),
		validation.Field(&r.SellerID, validation.Required),
		validation.Field(&r.SaleAmount, validation.Required),
	)
}

type CreatePayout struct {
	SellerID      string `json:"seller_id"`
	PaymentMethod string `json:"payment_method,omitempty"`
	ScheduledDate string `json:"scheduled_date,omitempty"`
}

func (p *CreatePayout) ValidateCreatePayout() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.SellerID, validation.Required),
		validation.Field(&p.PaymentMethod, validation.In("", "stripe", "paypal")),
		validation.Field(&p.ScheduledDate, validation.Date(time.RFC3339)),
	)
}

// ParsedScheduledDate returns the scheduled date, or the zero time when none
// was supplied. Assumes ValidateCreatePayout has already passed.
func (p *CreatePayout) ParsedScheduledDate() time.Time {
	if p.ScheduledDate == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, p.ScheduledDate)
	if err != nil {
		return time.Time{}
	}
	return t
}

type CompletePayout struct {
	PaymentReference string `json:"payment_reference"`
}

func (p *CompletePayout) ValidateCompletePayout() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.PaymentReference, validation.Required),
	)
}

type FailPayout struct {
	FailureReason string `json:"failure_reason"`
}

func (p *FailPayout) ValidateFailPayout() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.FailureReason, validation.Required),
	)
}

// UpdatePayoutSettings is the admin payload for the settings singleton.
type UpdatePayoutSettings struct {
	AutoPayoutEnabled    bool   `json:"auto_payout_enabled"`
	MinimumPayoutAmount  string `json:"minimum_payout_amount"`
	HoldingPeriodDays    int    `json:"holding_period_days"`
	DefaultPaymentMethod string `json:"default_payment_method"`
	UpdatedBy            string `json:"updated_by,omitempty"`
}

func (u *UpdatePayoutSettings) ValidateUpdatePayoutSettings() error {
	return validation.ValidateStruct(u,
		validation.Field(&u.MinimumPayoutAmount, validation.Required),
		validation.Field(&u.HoldingPeriodDays, validation.Min(0)),
		validation.Field(&u.DefaultPaymentMethod, validation.Required, validation.In("stripe", "paypal")),
	)
}

// ToPayoutSettings converts the request into the stored settings model. It
// assumes ValidateUpdatePayoutSettings has already passed.
func (u *UpdatePayoutSettings) ToPayoutSettings() (*model.PayoutSettings, error) {
	minimum, err := decimal.NewFromString(u.MinimumPayoutAmount)
	if err != nil {
		return nil, err
	}
	return &model.PayoutSettings{
		AutoPayoutEnabled:    u.AutoPayoutEnabled,
		MinimumPayoutAmount:  minimum,
		HoldingPeriodDays:    u.HoldingPeriodDays,
		DefaultPaymentMethod: model.PaymentMethod(u.DefaultPaymentMethod),
		UpdatedBy:            u.UpdatedBy,
	}, nil
}

type RunPayouts struct {
	RequestedBy string `json:"requested_by,omitempty"`
}

// EvaluateItem is the buyback valuation request.
type EvaluateItem struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Condition   string `json:"condition"`
	AgeYears    int    `json:"age_years,omitempty"`
	Brand       string `json:"brand,omitempty"`
	Category    string `json:"category,omitempty"`
}

func (e *EvaluateItem) ValidateEvaluateItem() error {
	return validation.ValidateStruct(e,
		validation.Field(&e.Title, validation.Required),
		validation.Field(&e.Condition, validation.Required),
		validation.Field(&e.AgeYears, validation.Min(0)),
	)
}

func (e *EvaluateItem) ToItemDetails() valuation.ItemDetails {
	return valuation.ItemDetails{
		Title:       e.Title,
		Description: e.Description,
		Condition:   e.Condition,
		AgeYears:    e.AgeYears,
		Brand:       e.Brand,
		Category:    e.Category,
	}
}
