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

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"

	"github.com/trovemarket/settle/model"
)

// ProcessAutomatedPayouts runs one automated payout sweep: it finds every
// seller whose eligible pending balance meets the minimum payout amount and
// creates a payout for each. When automatic payouts are disabled the run
// returns immediately without touching any data. One seller's failure never
// aborts the run; it is recorded in the summary and the sweep continues.
func (s *Settle) ProcessAutomatedPayouts(ctx context.Context) (*model.PayoutRunSummary, error) {
	ctx, span := otel.Tracer("settle.scheduler").Start(ctx, "ProcessAutomatedPayouts")
	defer span.End()

	summary := &model.PayoutRunSummary{ProcessedAt: time.Now()}

	settings, err := s.datasource.GetPayoutSettings(ctx)
	if err != nil {
		return nil, err
	}
	summary.AutoEnabled = settings.AutoPayoutEnabled
	if !settings.AutoPayoutEnabled {
		logrus.Info("automatic payouts disabled, skipping run")
		return summary, nil
	}

	cutoff := time.Now().AddDate(0, 0, -settings.HoldingPeriodDays)
	balances, err := s.datasource.GetEligibleSellerBalances(ctx, cutoff, settings.MinimumPayoutAmount)
	if err != nil {
		return nil, err
	}
	summary.TotalSellers = len(balances)

	for _, balance := range balances {
		outcome := model.SellerPayoutOutcome{SellerID: balance.SellerID, Amount: balance.TotalAmount}

		payout, err := s.CreatePayout(ctx, balance.SellerID, settings.DefaultPaymentMethod, time.Time{})
		if err != nil {
			outcome.Error = err.Error()
			summary.Failed++
			logrus.WithError(err).WithField("seller_id", balance.SellerID).Error("automated payout failed for seller")
		} else {
			outcome.PayoutID = payout.PayoutID
			outcome.Amount = payout.TotalAmount
			summary.Successful++
		}
		summary.Results = append(summary.Results, outcome)
	}

	logrus.WithFields(logrus.Fields{
		"sellers":    summary.TotalSellers,
		"successful": summary.Successful,
		"failed":     summary.Failed,
	}).Info("automated payout run finished")

	return summary, nil
}
