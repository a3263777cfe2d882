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

package database

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/trovemarket/settle/model"
)

// IDataSource defines the interface for data source operations, grouping related functionalities.
type IDataSource interface {
	commission // Interface for commission-related operations
	payout     // Interface for payout-related operations
	settings   // Interface for payout settings operations
}

// commission defines methods for handling commission records.
type commission interface {
	CreateCommission(ctx context.Context, cms *model.Commission) (*model.Commission, error)                               // Records a new commission
	GetCommission(ctx context.Context, id string) (*model.Commission, error)                                              // Retrieves a commission by ID
	GetPendingCommissions(ctx context.Context, sellerID string, olderThan time.Time) ([]*model.Commission, error)         // Retrieves eligible pending commissions for a seller
	GetCommissionsByPayout(ctx context.Context, payoutID string) ([]*model.Commission, error)                             // Retrieves commissions attached to a payout
	GetCommissionAnalytics(ctx context.Context, sellerID string) (*model.CommissionAnalytics, error)                      // Aggregates totals and a monthly breakdown for a seller
	GetEligibleSellerBalances(ctx context.Context, olderThan time.Time, minimum decimal.Decimal) ([]model.SellerBalance, error) // Groups eligible pending balances by seller
}

// payout defines methods for handling payout batches.
type payout interface {
	CreatePayoutWithCommissions(ctx context.Context, pt *model.Payout, olderThan time.Time) (*model.Payout, error) // Creates a payout and attaches eligible commissions in one transaction
	GetPayout(ctx context.Context, id string) (*model.Payout, error)                                               // Retrieves a payout by ID
	GetSellerPayouts(ctx context.Context, sellerID string, limit, offset int) ([]*model.Payout, error)             // Retrieves payouts for a seller
	CompletePayout(ctx context.Context, id string, paymentReference string) (*model.Payout, error)                 // Marks a payout completed and cascades commissions to paid
	FailPayout(ctx context.Context, id string, failureReason string) (*model.Payout, error)                        // Marks a payout failed and releases its commissions
}

// settings defines methods for the payout settings singleton.
type settings interface {
	GetPayoutSettings(ctx context.Context) (*model.PayoutSettings, error)        // Reads the settings row, creating defaults when absent
	UpdatePayoutSettings(ctx context.Context, st *model.PayoutSettings) error    // Updates the settings row
}
