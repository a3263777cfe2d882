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
package mocks

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/trovemarket/settle/model"
)

// MockDataSource is a mock implementation of the IDataSource interface
type MockDataSource struct {
	mock.Mock
}

// Commission methods

func (m *MockDataSource) CreateCommission(ctx context.Context, cms *model.Commission) (*model.Commission, error) {
	args := m.Called(ctx, cms)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Commission), args.Error(1)
}

func (m *MockDataSource) GetCommission(ctx context.Context, id string) (*model.Commission, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Commission), args.Error(1)
}

func (m *MockDataSource) GetPendingCommissions(ctx context.Context, sellerID string, olderThan time.Time) ([]*model.Commission, error) {
	args := m.Called(ctx, sellerID, olderThan)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Commission), args.Error(1)
}

func (m *MockDataSource) GetCommissionsByPayout(ctx context.Context, payoutID string) ([]*model.Commission, error) {
	args := m.Called(ctx, payoutID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Commission), args.Error(1)
}

func (m *MockDataSource) GetCommissionAnalytics(ctx context.Context, sellerID string) (*model.CommissionAnalytics, error) {
	args := m.Called(ctx, sellerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CommissionAnalytics), args.Error(1)
}

func (m *MockDataSource) GetEligibleSellerBalances(ctx context.Context, olderThan time.Time, minimum decimal.Decimal) ([]model.SellerBalance, error) {
	args := m.Called(ctx, olderThan, minimum)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.SellerBalance), args.Error(1)
}

// Payout methods

func (m *MockDataSource) CreatePayoutWithCommissions(ctx context.Context, pt *model.Payout, olderThan time.Time) (*model.Payout, error) {
	args := m.Called(ctx, pt, olderThan)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Payout), args.Error(1)
}

func (m *MockDataSource) GetPayout(ctx context.Context, id string) (*model.Payout, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Payout), args.Error(1)
}

func (m *MockDataSource) GetSellerPayouts(ctx context.Context, sellerID string, limit, offset int) ([]*model.Payout, error) {
	args := m.Called(ctx, sellerID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Payout), args.Error(1)
}

func (m *MockDataSource) CompletePayout(ctx context.Context, id string, paymentReference string) (*model.Payout, error) {
	args := m.Called(ctx, id, paymentReference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Payout), args.Error(1)
}

func (m *MockDataSource) FailPayout(ctx context.Context, id string, failureReason string) (*model.Payout, error) {
	args := m.Called(ctx, id, failureReason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Payout), args.Error(1)
}

// Settings methods

func (m *MockDataSource) GetPayoutSettings(ctx context.Context) (*model.PayoutSettings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PayoutSettings), args.Error(1)
}

func (m *MockDataSource) UpdatePayoutSettings(ctx context.Context, st *model.PayoutSettings) error {
	args := m.Called(ctx, st)
	return args.Error(0)
}
