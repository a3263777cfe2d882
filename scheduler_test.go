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
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/trovemarket/settle/database/mocks"
	"github.com/trovemarket/settle/internal/apierror"
	"github.com/trovemarket/settle/model"
)

func autoEnabledSettings() *model.PayoutSettings {
	settings := model.DefaultPayoutSettings()
	settings.AutoPayoutEnabled = true
	return settings
}

func TestProcessAutomatedPayouts_Disabled(t *testing.T) {
	mockPayoutConfig()
	ds := new(mocks.MockDataSource)
	service := newTestSettle(ds)

	ds.On("GetPayoutSettings", mock.Anything).Return(model.DefaultPayoutSettings(), nil)

	summary, err := service.ProcessAutomatedPayouts(context.Background())

	assert.NoError(t, err)
	assert.False(t, summary.AutoEnabled)
	assert.Zero(t, summary.TotalSellers)
	assert.Empty(t, summary.Results)
	// A disabled run must not even look at seller balances.
	ds.AssertNotCalled(t, "GetEligibleSellerBalances", mock.Anything, mock.Anything, mock.Anything)
	ds.AssertNotCalled(t, "CreatePayoutWithCommissions", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessAutomatedPayouts_FailureIsolation(t *testing.T) {
	mockPayoutConfig()
	ds := new(mocks.MockDataSource)

	db, redisMock := redismock.NewClientMock()
	redisMock.Regexp().ExpectSetNX("payout:seller:slr_a", `loc_.+`, sellerLockDuration).SetVal(true)
	redisMock.Regexp().ExpectEval(`.+`, []string{"payout:seller:slr_a"}, `loc_.+`).SetVal(int64(1))
	redisMock.Regexp().ExpectSetNX("payout:seller:slr_b", `loc_.+`, sellerLockDuration).SetVal(true)
	redisMock.Regexp().ExpectEval(`.+`, []string{"payout:seller:slr_b"}, `loc_.+`).SetVal(int64(1))
	service := &Settle{datasource: ds, redis: db}

	ds.On("GetPayoutSettings", mock.Anything).Return(autoEnabledSettings(), nil)
	ds.On("GetEligibleSellerBalances", mock.Anything, mock.AnythingOfType("time.Time"), mock.Anything).
		Return([]model.SellerBalance{
			{SellerID: "slr_a", TotalAmount: decimal.RequireFromString("122.35"), CommissionCount: 2},
			{SellerID: "slr_b", TotalAmount: decimal.RequireFromString("87.39"), CommissionCount: 1},
		}, nil)

	ds.On("CreatePayoutWithCommissions", mock.Anything, mock.MatchedBy(func(p *model.Payout) bool {
		return p.SellerID == "slr_a"
	}), mock.AnythingOfType("time.Time")).
		Return(&model.Payout{PayoutID: "pout_a", SellerID: "slr_a", TotalAmount: decimal.RequireFromString("122.35")}, nil)
	ds.On("CreatePayoutWithCommissions", mock.Anything, mock.MatchedBy(func(p *model.Payout) bool {
		return p.SellerID == "slr_b"
	}), mock.AnythingOfType("time.Time")).
		Return(nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to create payout", nil))

	summary, err := service.ProcessAutomatedPayouts(context.Background())

	assert.NoError(t, err)
	assert.True(t, summary.AutoEnabled)
	assert.Equal(t, 2, summary.TotalSellers)
	assert.Equal(t, 1, summary.Successful)
	assert.Equal(t, 1, summary.Failed)
	assert.Len(t, summary.Results, 2)

	assert.True(t, summary.Results[0].Succeeded())
	assert.Equal(t, "pout_a", summary.Results[0].PayoutID)
	assert.False(t, summary.Results[1].Succeeded())
	assert.Contains(t, summary.Results[1].Error, "Failed to create payout")
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestProcessAutomatedPayouts_NoEligibleSellers(t *testing.T) {
	mockPayoutConfig()
	ds := new(mocks.MockDataSource)
	service := newTestSettle(ds)

	ds.On("GetPayoutSettings", mock.Anything).Return(autoEnabledSettings(), nil)
	ds.On("GetEligibleSellerBalances", mock.Anything, mock.AnythingOfType("time.Time"), mock.Anything).
		Return([]model.SellerBalance{}, nil)

	summary, err := service.ProcessAutomatedPayouts(context.Background())

	assert.NoError(t, err)
	assert.True(t, summary.AutoEnabled)
	assert.Zero(t, summary.TotalSellers)
	assert.Zero(t, summary.Successful)
	assert.Zero(t, summary.Failed)
}
