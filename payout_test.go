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
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/trovemarket/settle/config"
	"github.com/trovemarket/settle/database/mocks"
	"github.com/trovemarket/settle/internal/apierror"
	"github.com/trovemarket/settle/model"
)

func newLockedSettle(ds *mocks.MockDataSource, sellerID string) (*Settle, redismock.ClientMock) {
	db, redisMock := redismock.NewClientMock()
	redisMock.Regexp().ExpectSetNX("payout:seller:"+sellerID, `loc_.+`, sellerLockDuration).SetVal(true)
	redisMock.Regexp().ExpectEval(`.+`, []string{"payout:seller:" + sellerID}, `loc_.+`).SetVal(int64(1))
	return &Settle{datasource: ds, redis: db}, redisMock
}

func TestCreatePayout(t *testing.T) {
	mockPayoutConfig()
	ds := new(mocks.MockDataSource)
	service, redisMock := newLockedSettle(ds, "slr_1")

	ds.On("GetPayoutSettings", mock.Anything).Return(model.DefaultPayoutSettings(), nil)
	ds.On("CreatePayoutWithCommissions", mock.Anything, mock.AnythingOfType("*model.Payout"), mock.AnythingOfType("time.Time")).
		Return(&model.Payout{
			PayoutID:         "pout_1",
			SellerID:         "slr_1",
			TotalAmount:      decimal.RequireFromString("122.35"),
			TotalCommissions: 2,
			PaymentMethod:    model.PaymentMethodStripe,
			Status:           model.PayoutPending,
		}, nil)

	payout, err := service.CreatePayout(context.Background(), "slr_1", "", time.Time{})

	assert.NoError(t, err)
	assert.Equal(t, "pout_1", payout.PayoutID)
	// Empty method falls back to the settings default.
	assert.Equal(t, model.PaymentMethodStripe, payout.PaymentMethod)
	assert.NoError(t, redisMock.ExpectationsWereMet())
	ds.AssertExpectations(t)
}

func TestCreatePayout_UnsupportedMethod(t *testing.T) {
	mockPayoutConfig()
	ds := new(mocks.MockDataSource)
	service := newTestSettle(ds)

	ds.On("GetPayoutSettings", mock.Anything).Return(model.DefaultPayoutSettings(), nil)

	_, err := service.CreatePayout(context.Background(), "slr_1", "wire", time.Time{})

	assert.Error(t, err)
	apiErr, ok := err.(apierror.APIError)
	assert.True(t, ok)
	assert.Equal(t, apierror.ErrInvalidInput, apiErr.Code)
	ds.AssertNotCalled(t, "CreatePayoutWithCommissions", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreatePayout_MissingSeller(t *testing.T) {
	mockPayoutConfig()
	ds := new(mocks.MockDataSource)
	service := newTestSettle(ds)

	_, err := service.CreatePayout(context.Background(), "", model.PaymentMethodStripe, time.Time{})

	assert.Error(t, err)
	apiErr, ok := err.(apierror.APIError)
	assert.True(t, ok)
	assert.Equal(t, apierror.ErrBadRequest, apiErr.Code)
}

func TestCreatePayout_NoEligibleCommissions(t *testing.T) {
	mockPayoutConfig()
	ds := new(mocks.MockDataSource)
	service, redisMock := newLockedSettle(ds, "slr_1")

	ds.On("GetPayoutSettings", mock.Anything).Return(model.DefaultPayoutSettings(), nil)
	ds.On("CreatePayoutWithCommissions", mock.Anything, mock.AnythingOfType("*model.Payout"), mock.AnythingOfType("time.Time")).
		Return(nil, apierror.NewAPIError(apierror.ErrBadRequest, "No eligible commissions found for seller 'slr_1'", nil))

	_, err := service.CreatePayout(context.Background(), "slr_1", model.PaymentMethodPaypal, time.Time{})

	assert.Error(t, err)
	apiErr, ok := err.(apierror.APIError)
	assert.True(t, ok)
	assert.Equal(t, apierror.ErrBadRequest, apiErr.Code)
	// The lock is still released on failure.
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestCreatePayout_SellerLockHeld(t *testing.T) {
	mockPayoutConfig()
	ds := new(mocks.MockDataSource)
	db, redisMock := redismock.NewClientMock()
	service := &Settle{datasource: ds, redis: db}

	restoreWait := sellerLockWait
	sellerLockWait = 25 * time.Millisecond
	defer func() { sellerLockWait = restoreWait }()

	ds.On("GetPayoutSettings", mock.Anything).Return(model.DefaultPayoutSettings(), nil)
	// Another caller holds the seller lock, so every acquire attempt loses.
	for i := 0; i < 5; i++ {
		redisMock.Regexp().ExpectSetNX("payout:seller:slr_1", `loc_.+`, sellerLockDuration).SetVal(false)
	}

	_, err := service.CreatePayout(context.Background(), "slr_1", model.PaymentMethodStripe, time.Time{})

	assert.Error(t, err)
	apiErr, ok := err.(apierror.APIError)
	assert.True(t, ok)
	assert.Equal(t, apierror.ErrConflict, apiErr.Code)
	ds.AssertNotCalled(t, "CreatePayoutWithCommissions", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetSellerPayouts_ClampsLimit(t *testing.T) {
	ds := new(mocks.MockDataSource)
	service := newTestSettle(ds)

	ds.On("GetSellerPayouts", mock.Anything, "slr_1", defaultPayoutsLimit, 0).Return([]*model.Payout{}, nil)
	ds.On("GetSellerPayouts", mock.Anything, "slr_2", maxPayoutsLimit, 0).Return([]*model.Payout{}, nil)

	_, err := service.GetSellerPayouts(context.Background(), "slr_1", 0, -3)
	assert.NoError(t, err)
	_, err = service.GetSellerPayouts(context.Background(), "slr_2", 1000, 0)
	assert.NoError(t, err)
	ds.AssertExpectations(t)
}

func TestGetPayoutCommissions_PayoutNotFound(t *testing.T) {
	ds := new(mocks.MockDataSource)
	service := newTestSettle(ds)

	ds.On("GetPayout", mock.Anything, "pout_missing").
		Return(nil, apierror.NewAPIError(apierror.ErrNotFound, "Payout 'pout_missing' not found", nil))

	_, err := service.GetPayoutCommissions(context.Background(), "pout_missing")

	assert.Error(t, err)
	ds.AssertNotCalled(t, "GetCommissionsByPayout", mock.Anything, mock.Anything)
}

func TestCompletePayout(t *testing.T) {
	ds := new(mocks.MockDataSource)
	service := newTestSettle(ds)

	ds.On("CompletePayout", mock.Anything, "pout_1", "stripe_tx_123").
		Return(&model.Payout{PayoutID: "pout_1", Status: model.PayoutCompleted, PaymentReference: "stripe_tx_123"}, nil)

	payout, err := service.CompletePayout(context.Background(), "pout_1", "stripe_tx_123")

	assert.NoError(t, err)
	assert.Equal(t, model.PayoutCompleted, payout.Status)
	ds.AssertExpectations(t)
}

func TestFailPayout(t *testing.T) {
	config.MockConfig(&config.Configuration{})
	ds := new(mocks.MockDataSource)
	service := newTestSettle(ds)

	ds.On("FailPayout", mock.Anything, "pout_1", "card declined").
		Return(&model.Payout{PayoutID: "pout_1", SellerID: "slr_1", Status: model.PayoutFailed, FailureReason: "card declined"}, nil)

	payout, err := service.FailPayout(context.Background(), "pout_1", "card declined")

	assert.NoError(t, err)
	assert.Equal(t, model.PayoutFailed, payout.Status)
	assert.Equal(t, "card declined", payout.FailureReason)
	ds.AssertExpectations(t)
}

func TestUpdatePayoutSettings_Validation(t *testing.T) {
	ds := new(mocks.MockDataSource)
	service := newTestSettle(ds)

	cases := []struct {
		name     string
		settings model.PayoutSettings
	}{
		{"negative minimum", model.PayoutSettings{MinimumPayoutAmount: decimal.NewFromInt(-1), DefaultPaymentMethod: model.PaymentMethodStripe}},
		{"negative holding period", model.PayoutSettings{HoldingPeriodDays: -1, DefaultPaymentMethod: model.PaymentMethodStripe}},
		{"bad payment method", model.PayoutSettings{DefaultPaymentMethod: "cash"}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := service.UpdatePayoutSettings(context.Background(), &c.settings)
			assert.Error(t, err)
			apiErr, ok := err.(apierror.APIError)
			assert.True(t, ok)
			assert.Equal(t, apierror.ErrInvalidInput, apiErr.Code)
		})
	}
	ds.AssertNotCalled(t, "UpdatePayoutSettings", mock.Anything, mock.Anything)
}

func TestUpdatePayoutSettings(t *testing.T) {
	ds := new(mocks.MockDataSource)
	service := newTestSettle(ds)

	current := model.DefaultPayoutSettings()
	current.SettingsID = "pset_1"
	ds.On("GetPayoutSettings", mock.Anything).Return(current, nil)
	ds.On("UpdatePayoutSettings", mock.Anything, mock.MatchedBy(func(st *model.PayoutSettings) bool {
		// The stored singleton's id wins over whatever the caller sent.
		return st.SettingsID == "pset_1" && st.HoldingPeriodDays == 14
	})).Return(nil)

	_, err := service.UpdatePayoutSettings(context.Background(), &model.PayoutSettings{
		AutoPayoutEnabled:    true,
		MinimumPayoutAmount:  decimal.NewFromInt(75),
		HoldingPeriodDays:    14,
		DefaultPaymentMethod: model.PaymentMethodPaypal,
	})

	assert.NoError(t, err)
	ds.AssertExpectations(t)
}
