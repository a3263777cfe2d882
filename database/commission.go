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
	"github.com/sirupsen/logrus"
	"github.com/trovemarket/settle/internal/apierror"
	"github.com/trovemarket/settle/model"
)

// CreateCommission persists a new commission record. Monetary fields are
// rounded to two decimal places here, at the persistence boundary.
func (d Datasource) CreateCommission(ctx context.Context, cms *model.Commission) (*model.Commission, error) {
	ctx, span := otel.Tracer("Commission ledger").Start(ctx, "Saving commission to db")
	defer span.End()

	metaDataJSON, err := json.Marshal(cms.MetaData)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to marshal metadata", err)
	}

	cms.CommissionID = model.GenerateUUIDWithSuffix("comm")
	cms.Status = model.CommissionPending
	cms.CreatedAt = time.Now()
	cms.UpdatedAt = cms.CreatedAt
	cms.SalePrice = model.RoundMoney(cms.SalePrice)
	cms.CommissionAmount = model.RoundMoney(cms.CommissionAmount)
	cms.SellerAmount = model.RoundMoney(cms.SellerAmount)
	cms.ProcessingFee = model.RoundMoney(cms.ProcessingFee)
	cms.NetSellerAmount = model.RoundMoney(cms.NetSellerAmount)

	_, err = d.Conn.ExecContext(ctx, `
		INSERT INTO settle.commissions (commission_id, order_id, product_id, seller_id, sale_price, commission_rate, commission_amount, seller_amount, processing_fee, net_seller_amount, status, created_at, updated_at, meta_data)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, cms.CommissionID, cms.OrderID, cms.ProductID, cms.SellerID, cms.SalePrice, cms.CommissionRate, cms.CommissionAmount, cms.SellerAmount, cms.ProcessingFee, cms.NetSellerAmount, cms.Status, cms.CreatedAt, cms.UpdatedAt, metaDataJSON)

	if err != nil {
		pqErr, ok := err.(*pq.Error)
		if ok {
			switch pqErr.Code.Name() {
			case "unique_violation":
				return nil, apierror.NewAPIError(apierror.ErrConflict, "Commission with this ID already exists", err)
			default:
				return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Database error occurred", err)
			}
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to record commission", err)
	}

	return cms, nil
}

func (d Datasource) GetCommission(ctx context.Context, id string) (*model.Commission, error) {
	row := d.Conn.QueryRowContext(ctx, `
		SELECT commission_id, order_id, product_id, seller_id, sale_price, commission_rate, commission_amount, seller_amount, processing_fee, net_seller_amount, status, payout_id, created_at, updated_at, meta_data
		FROM settle.commissions
		WHERE commission_id = $1
	`, id)

	cms, err := scanCommission(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Commission with ID '%s' not found", id), err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve commission", err)
	}
	return cms, nil
}

// GetPendingCommissions returns a seller's pending commissions that have
// cleared the holding period. The minimum payout threshold is applied to the
// aggregate by callers, never per row.
func (d Datasource) GetPendingCommissions(ctx context.Context, sellerID string, olderThan time.Time) ([]*model.Commission, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT commission_id, order_id, product_id, seller_id, sale_price, commission_rate, commission_amount, seller_amount, processing_fee, net_seller_amount, status, payout_id, created_at, updated_at, meta_data
		FROM settle.commissions
		WHERE seller_id = $1 AND status = 'pending' AND created_at < $2
		ORDER BY created_at ASC
	`, sellerID, olderThan)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve pending commissions", err)
	}
	defer rows.Close()

	return collectCommissions(rows)
}

func (d Datasource) GetCommissionsByPayout(ctx context.Context, payoutID string) ([]*model.Commission, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT commission_id, order_id, product_id, seller_id, sale_price, commission_rate, commission_amount, seller_amount, processing_fee, net_seller_amount, status, payout_id, created_at, updated_at, meta_data
		FROM settle.commissions
		WHERE payout_id = $1
		ORDER BY created_at ASC
	`, payoutID)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve payout commissions", err)
	}
	defer rows.Close()

	return collectCommissions(rows)
}

// GetEligibleSellerBalances groups pending commissions older than the cutoff
// by seller and keeps only sellers whose aggregate clears the minimum. This
// is the eligibility query behind automated payout runs.
func (d Datasource) GetEligibleSellerBalances(ctx context.Context, olderThan time.Time, minimum decimal.Decimal) ([]model.SellerBalance, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT seller_id, SUM(net_seller_amount) AS total_amount, COUNT(*) AS commission_count
		FROM settle.commissions
		WHERE status = 'pending' AND created_at < $1
		GROUP BY seller_id
		HAVING SUM(net_seller_amount) >= $2
		ORDER BY seller_id
	`, olderThan, minimum)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve eligible seller balances", err)
	}
	defer rows.Close()

	balances := []model.SellerBalance{}
	for rows.Next() {
		var b model.SellerBalance
		if err := rows.Scan(&b.SellerID, &b.TotalAmount, &b.CommissionCount); err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan seller balance", err)
		}
		balances = append(balances, b)
	}
	if err = rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Error occurred while iterating over seller balances", err)
	}

	return balances, nil
}

// GetCommissionAnalytics aggregates a seller's commission totals per status
// plus a trailing twelve month breakdown of net volume.
func (d Datasource) GetCommissionAnalytics(ctx context.Context, sellerID string) (*model.CommissionAnalytics, error) {
	cacheKey := fmt.Sprintf("commission:analytics:%s", sellerID)
	if d.Cache != nil {
		var cached model.CommissionAnalytics
		if err := d.Cache.Get(ctx, cacheKey, &cached); err == nil && cached.SellerID != "" {
			return &cached, nil
		}
	}

	analytics := &model.CommissionAnalytics{SellerID: sellerID}

	rows, err := d.Conn.QueryContext(ctx, `
		SELECT status, COALESCE(SUM(net_seller_amount), 0), COUNT(*)
		FROM settle.commissions
		WHERE seller_id = $1
		GROUP BY status
	`, sellerID)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve commission analytics", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status model.CommissionStatus
		var total model.StatusTotal
		if err := rows.Scan(&status, &total.Amount, &total.Count); err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan analytics row", err)
		}
		switch status {
		case model.CommissionPending:
			analytics.Pending = total
		case model.CommissionProcessing:
			analytics.Processing = total
		case model.CommissionPaid:
			analytics.Paid = total
		}
	}
	if err = rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Error occurred while iterating over analytics", err)
	}

	monthly, err := d.Conn.QueryContext(ctx, `
		SELECT to_char(created_at, 'YYYY-MM') AS month, COALESCE(SUM(net_seller_amount), 0), COUNT(*)
		FROM settle.commissions
		WHERE seller_id = $1 AND created_at >= NOW() - INTERVAL '12 months'
		GROUP BY month
		ORDER BY month ASC
	`, sellerID)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve monthly breakdown", err)
	}
	defer monthly.Close()

	for monthly.Next() {
		var m model.MonthlyTotal
		if err := monthly.Scan(&m.Month, &m.Amount, &m.Count); err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan monthly row", err)
		}
		analytics.Monthly = append(analytics.Monthly, m)
	}
	if err = monthly.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Error occurred while iterating over monthly rows", err)
	}

	if d.Cache != nil {
		if err := d.Cache.Set(ctx, cacheKey, analytics, 5*time.Minute); err != nil {
			logrus.WithError(err).Warn("failed to cache commission analytics")
		}
	}

	return analytics, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCommission(row rowScanner) (*model.Commission, error) {
	cms := &model.Commission{}
	var payoutID sql.NullString
	var metaDataJSON []byte
	err := row.Scan(
		&cms.CommissionID,
		&cms.OrderID,
		&cms.ProductID,
		&cms.SellerID,
		&cms.SalePrice,
		&cms.CommissionRate,
		&cms.CommissionAmount,
		&cms.SellerAmount,
		&cms.ProcessingFee,
		&cms.NetSellerAmount,
		&cms.Status,
		&payoutID,
		&cms.CreatedAt,
		&cms.UpdatedAt,
		&metaDataJSON,
	)
	if err != nil {
		return nil, err
	}
	if payoutID.Valid {
		cms.PayoutID = payoutID.String
	}
	if len(metaDataJSON) > 0 {
		if err := json.Unmarshal(metaDataJSON, &cms.MetaData); err != nil {
			return nil, err
		}
	}
	return cms, nil
}

func collectCommissions(rows *sql.Rows) ([]*model.Commission, error) {
	commissions := []*model.Commission{}
	for rows.Next() {
		cms, err := scanCommission(rows)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan commission data", err)
		}
		commissions = append(commissions, cms)
	}
	if err := rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Error occurred while iterating over commissions", err)
	}
	return commissions, nil
}
