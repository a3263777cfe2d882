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
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"

	"github.com/trovemarket/settle/internal/apierror"
	redlock "github.com/trovemarket/settle/internal/lock"
	"github.com/trovemarket/settle/internal/notification"
	"github.com/trovemarket/settle/model"
)

const (
	sellerLockDuration  = 30 * time.Second
	defaultPayoutsLimit = 50
	maxPayoutsLimit     = 200
)

// sellerLockWait bounds how long CreatePayout waits on a contended seller
// lock. A variable so tests can shorten it.
var sellerLockWait = 10 * time.Second

// CreatePayout batches the seller's eligible pending commissions into a new
// payout. A zero scheduledDate means now. A per-seller Redis lock plus row
// locks inside the database transaction guarantee no commission is attached
// to two payouts, even under concurrent requests for the same seller.
func (s *Settle) CreatePayout(ctx context.Context, sellerID string, method model.PaymentMethod, scheduledDate time.Time) (*model.Payout, error) {
	ctx, span := otel.Tracer("settle.payout").Start(ctx, "CreatePayout")
	defer span.End()

	if sellerID == "" {
		return nil, apierror.NewAPIError(apierror.ErrBadRequest, "Seller ID is required", nil)
	}

	settings, err := s.datasource.GetPayoutSettings(ctx)
	if err != nil {
		return nil, err
	}

	if method == "" {
		method = settings.DefaultPaymentMethod
	}
	if !method.Valid() {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, fmt.Sprintf("Unsupported payment method '%s'", method), nil)
	}

	locker := redlock.NewSellerPayoutLocker(s.redis, sellerID, model.GenerateUUIDWithSuffix("loc"))
	if err := locker.WaitLock(ctx, sellerLockDuration, sellerLockWait); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrConflict, fmt.Sprintf("A payout for seller '%s' is already in progress", sellerID), err)
	}
	defer func(locker *redlock.Locker, ctx context.Context) {
		if err := locker.Unlock(ctx); err != nil {
			logrus.WithError(err).Error("failed to release seller payout lock")
		}
	}(locker, ctx)

	if scheduledDate.IsZero() {
		scheduledDate = time.Now()
	}
	cutoff := time.Now().AddDate(0, 0, -settings.HoldingPeriodDays)
	payout := &model.Payout{
		SellerID:      sellerID,
		PaymentMethod: method,
		Status:        model.PayoutPending,
		ScheduledDate: scheduledDate,
	}

	created, err := s.datasource.CreatePayoutWithCommissions(ctx, payout, cutoff)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"payout_id":    created.PayoutID,
		"seller_id":    created.SellerID,
		"total_amount": created.TotalAmount,
		"commissions":  created.TotalCommissions,
	}).Info("payout created")

	return created, nil
}

// GetPayout retrieves a payout by ID.
func (s *Settle) GetPayout(ctx context.Context, id string) (*model.Payout, error) {
	return s.datasource.GetPayout(ctx, id)
}

// GetSellerPayouts lists a seller's payouts, newest first.
func (s *Settle) GetSellerPayouts(ctx context.Context, sellerID string, limit, offset int) ([]*model.Payout, error) {
	if limit <= 0 {
		limit = defaultPayoutsLimit
	}
	if limit > maxPayoutsLimit {
		limit = maxPayoutsLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.datasource.GetSellerPayouts(ctx, sellerID, limit, offset)
}

// GetPayoutCommissions lists the commissions attached to a payout.
func (s *Settle) GetPayoutCommissions(ctx context.Context, payoutID string) ([]*model.Commission, error) {
	if _, err := s.datasource.GetPayout(ctx, payoutID); err != nil {
		return nil, err
	}
	return s.datasource.GetCommissionsByPayout(ctx, payoutID)
}

// CompletePayout marks a payout completed and cascades its commissions to
// paid. Completing an already-completed payout is a no-op that returns the
// stored payout unchanged.
func (s *Settle) CompletePayout(ctx context.Context, payoutID, paymentReference string) (*model.Payout, error) {
	ctx, span := otel.Tracer("settle.payout").Start(ctx, "CompletePayout")
	defer span.End()

	completed, err := s.datasource.CompletePayout(ctx, payoutID, paymentReference)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"payout_id":         completed.PayoutID,
		"payment_reference": completed.PaymentReference,
	}).Info("payout completed")

	return completed, nil
}

// FailPayout marks a payout failed and releases its commissions back to
// pending so a later payout can pick them up.
func (s *Settle) FailPayout(ctx context.Context, payoutID, failureReason string) (*model.Payout, error) {
	ctx, span := otel.Tracer("settle.payout").Start(ctx, "FailPayout")
	defer span.End()

	failed, err := s.datasource.FailPayout(ctx, payoutID, failureReason)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"payout_id": failed.PayoutID,
		"seller_id": failed.SellerID,
		"reason":    failureReason,
	}).Warn("payout failed, commissions released")
	notification.NotifyError(fmt.Errorf("payout %s for seller %s failed: %s", failed.PayoutID, failed.SellerID, failureReason))

	return failed, nil
}

// GetPayoutSettings reads the payout settings, creating defaults on first
// read.
func (s *Settle) GetPayoutSettings(ctx context.Context) (*model.PayoutSettings, error) {
	return s.datasource.GetPayoutSettings(ctx)
}

// UpdatePayoutSettings validates and stores the payout settings.
func (s *Settle) UpdatePayoutSettings(ctx context.Context, st *model.PayoutSettings) (*model.PayoutSettings, error) {
	if st.MinimumPayoutAmount.IsNegative() {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, "Minimum payout amount cannot be negative", nil)
	}
	if st.HoldingPeriodDays < 0 {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, "Holding period cannot be negative", nil)
	}
	if !st.DefaultPaymentMethod.Valid() {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, fmt.Sprintf("Unsupported payment method '%s'", st.DefaultPaymentMethod), nil)
	}
	current, err := s.datasource.GetPayoutSettings(ctx)
	if err != nil {
		return nil, err
	}
	st.SettingsID = current.SettingsID
	if err := s.datasource.UpdatePayoutSettings(ctx, st); err != nil {
		return nil, err
	}
	return s.datasource.GetPayoutSettings(ctx)
}
