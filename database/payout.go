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
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/trovemarket/settle/internal/apierror"
	"github.com/trovemarket/settle/model"
)

// CreatePayoutWithCommissions creates a payout batch and attaches the
// seller's eligible pending commissions to it in a single transaction. The
// eligible rows are locked with FOR UPDATE so a concurrent payout for the
// same seller cannot attach the same commission twice. The payout totals are
// recomputed from the locked rows, which are authoritative over whatever the
// caller read beforehand.
func (d Datasource) CreatePayoutWithCommissions(ctx context.Context, pt *model.Payout, olderThan time.Time) (*model.Payout, error) {
	ctx, span := otel.Tracer("Payout batch").Start(ctx, "Creating payout with attached commissions")
	defer span.End()

	tx, err := d.Conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to begin payout transaction", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	rows, err := tx.QueryContext(ctx, `
		SELECT commission_id, net_seller_amount, status
		FROM settle.commissions
		WHERE seller_id = $1 AND status = 'pending' AND created_at < $2
		ORDER BY created_at ASC
		FOR UPDATE
	`, pt.SellerID, olderThan)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to lock pending commissions", err)
	}

	var commissionIDs []string
	total := decimal.Zero
	for rows.Next() {
		var id string
		var net decimal.Decimal
		var status model.CommissionStatus
		if err := rows.Scan(&id, &net, &status); err != nil {
			rows.Close()
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan pending commission", err)
		}
		if !status.CanTransitionTo(model.CommissionProcessing) {
			rows.Close()
			return nil, apierror.NewAPIError(apierror.ErrConflict, fmt.Sprintf("Commission '%s' is already claimed by another payout", id), nil)
		}
		commissionIDs = append(commissionIDs, id)
		total = total.Add(net)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Error occurred while iterating over pending commissions", err)
	}
	rows.Close()

	if len(commissionIDs) == 0 {
		return nil, apierror.NewAPIError(apierror.ErrBadRequest, fmt.Sprintf("No eligible commissions found for seller '%s'", pt.SellerID), nil)
	}

	pt.PayoutID = model.GenerateUUIDWithSuffix("pout")
	pt.Status = model.PayoutPending
	pt.TotalAmount = model.RoundMoney(total)
	pt.TotalCommissions = len(commissionIDs)
	pt.CreatedAt = time.Now()
	pt.UpdatedAt = pt.CreatedAt
	if pt.ScheduledDate.IsZero() {
		pt.ScheduledDate = pt.CreatedAt
	}

	metaDataJSON, err := json.Marshal(pt.MetaData)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to marshal metadata", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO settle.payouts (payout_id, seller_id, total_amount, total_commissions, payment_method, status, scheduled_date, created_at, updated_at, meta_data)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, pt.PayoutID, pt.SellerID, pt.TotalAmount, pt.TotalCommissions, pt.PaymentMethod, pt.Status, pt.ScheduledDate, pt.CreatedAt, pt.UpdatedAt, metaDataJSON)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to create payout", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE settle.commissions
		SET status = 'processing', payout_id = $1, updated_at = NOW()
		WHERE commission_id = ANY($2)
	`, pt.PayoutID, pq.Array(commissionIDs))
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to attach commissions to payout", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to commit payout transaction", err)
	}

	return pt, nil
}

// CompletePayout marks a payout completed and cascades its commissions to
// paid. Re-completing an already completed payout is a no-op returning the
// stored record, so external payment confirmations can be retried safely.
func (d Datasource) CompletePayout(ctx context.Context, id string, paymentReference string) (*model.Payout, error) {
	ctx, span := otel.Tracer("Payout batch").Start(ctx, "Completing payout")
	defer span.End()

	tx, err := d.Conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to begin payout transaction", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	result, err := tx.ExecContext(ctx, `
		UPDATE settle.payouts
		SET status = 'completed', processed_date = NOW(), payment_reference = $2, updated_at = NOW()
		WHERE payout_id = $1 AND status IN ('pending', 'processing')
	`, id, paymentReference)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to complete payout", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to get rows affected", err)
	}

	if rowsAffected > 0 {
		_, err = tx.ExecContext(ctx, `
			UPDATE settle.commissions
			SET status = 'paid', updated_at = NOW()
			WHERE payout_id = $1 AND status = 'processing'
		`, id)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to mark commissions paid", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to commit payout transaction", err)
	}

	// rowsAffected == 0 means the payout is either missing, already
	// completed, or failed. GetPayout distinguishes the not-found case.
	return d.GetPayout(ctx, id)
}

// FailPayout marks a payout failed and releases its commissions back to
// pending with payout_id cleared, making them eligible for a future batch.
func (d Datasource) FailPayout(ctx context.Context, id string, failureReason string) (*model.Payout, error) {
	ctx, span := otel.Tracer("Payout batch").Start(ctx, "Failing payout")
	defer span.End()

	tx, err := d.Conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to begin payout transaction", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	result, err := tx.ExecContext(ctx, `
		UPDATE settle.payouts
		SET status = 'failed', failure_reason = $2, updated_at = NOW()
		WHERE payout_id = $1 AND status IN ('pending', 'processing')
	`, id, failureReason)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to mark payout failed", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to get rows affected", err)
	}

	if rowsAffected > 0 {
		_, err = tx.ExecContext(ctx, `
			UPDATE settle.commissions
			SET status = 'pending', payout_id = NULL, updated_at = NOW()
			WHERE payout_id = $1 AND status = 'processing'
		`, id)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to release commissions", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to commit payout transaction", err)
	}

	return d.GetPayout(ctx, id)
}

func (d Datasource) GetPayout(ctx context.Context, id string) (*model.Payout, error) {
	row := d.Conn.QueryRowContext(ctx, `
		SELECT payout_id, seller_id, total_amount, total_commissions, payment_method, status, scheduled_date, processed_date, payment_reference, failure_reason, created_at, updated_at, meta_data
		FROM settle.payouts
		WHERE payout_id = $1
	`, id)

	pt, err := scanPayout(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Payout with ID '%s' not found", id), err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve payout", err)
	}
	return pt, nil
}

func (d Datasource) GetSellerPayouts(ctx context.Context, sellerID string, limit, offset int) ([]*model.Payout, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT payout_id, seller_id, total_amount, total_commissions, payment_method, status, scheduled_date, processed_date, payment_reference, failure_reason, created_at, updated_at, meta_data
		FROM settle.payouts
		WHERE seller_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, sellerID, limit, offset)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve seller payouts", err)
	}
	defer rows.Close()

	payouts := []*model.Payout{}
	for rows.Next() {
		pt, err := scanPayout(rows)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan payout data", err)
		}
		payouts = append(payouts, pt)
	}
	if err = rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Error occurred while iterating over payouts", err)
	}

	return payouts, nil
}

func scanPayout(row rowScanner) (*model.Payout, error) {
	pt := &model.Payout{}
	var processedDate sql.NullTime
	var paymentReference, failureReason sql.NullString
	var metaDataJSON []byte
	err := row.Scan(
		&pt.PayoutID,
		&pt.SellerID,
		&pt.TotalAmount,
		&pt.TotalCommissions,
		&pt.PaymentMethod,
		&pt.Status,
		&pt.ScheduledDate,
		&processedDate,
		&paymentReference,
		&failureReason,
		&pt.CreatedAt,
		&pt.UpdatedAt,
		&metaDataJSON,
	)
	if err != nil {
		return nil, err
	}
	if processedDate.Valid {
		pt.ProcessedDate = &processedDate.Time
	}
	pt.PaymentReference = paymentReference.String
	pt.FailureReason = failureReason.String
	if len(metaDataJSON) > 0 {
		if err := json.Unmarshal(metaDataJSON, &pt.MetaData); err != nil {
			return nil, err
		}
	}
	return pt, nil
}
