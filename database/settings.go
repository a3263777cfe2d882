package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"

	"github.com/trovemarket/settle/config"
	"github.com/trovemarket/settle/internal/apierror"
	"github.com/trovemarket/settle/model"
)

// GetPayoutSettings reads the payout settings singleton, creating it with
// defaults on first read.
func (d Datasource) GetPayoutSettings(ctx context.Context) (*model.PayoutSettings, error) {
	st := &model.PayoutSettings{}
	var updatedBy sql.NullString

	row := d.Conn.QueryRowContext(ctx, `
		SELECT settings_id, auto_payout_enabled, minimum_payout_amount, holding_period_days, default_payment_method, updated_by, updated_at
		FROM settle.payout_settings
		ORDER BY id ASC
		LIMIT 1
	`)

	err := row.Scan(&st.SettingsID, &st.AutoPayoutEnabled, &st.MinimumPayoutAmount, &st.HoldingPeriodDays, &st.DefaultPaymentMethod, &updatedBy, &st.UpdatedAt)
	if err == sql.ErrNoRows {
		return d.createDefaultPayoutSettings(ctx)
	}
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve payout settings", err)
	}
	st.UpdatedBy = updatedBy.String

	return st, nil
}

func (d Datasource) createDefaultPayoutSettings(ctx context.Context) (*model.PayoutSettings, error) {
	st := model.DefaultPayoutSettings()
	// Operator overrides from configuration win over the built-in defaults.
	if conf, err := config.Fetch(); err == nil {
		if minimum, perr := decimal.NewFromString(conf.Payout.MinimumPayoutAmount); perr == nil {
			st.MinimumPayoutAmount = minimum
		}
		if conf.Payout.HoldingPeriodDays > 0 {
			st.HoldingPeriodDays = conf.Payout.HoldingPeriodDays
		}
		if method := model.PaymentMethod(conf.Payout.DefaultPaymentMethod); method.Valid() {
			st.DefaultPaymentMethod = method
		}
	}
	st.SettingsID = model.GenerateUUIDWithSuffix("pset")
	st.UpdatedAt = time.Now()

	_, err := d.Conn.ExecContext(ctx, `
		INSERT INTO settle.payout_settings (settings_id, auto_payout_enabled, minimum_payout_amount, holding_period_days, default_payment_method, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, st.SettingsID, st.AutoPayoutEnabled, st.MinimumPayoutAmount, st.HoldingPeriodDays, st.DefaultPaymentMethod, st.UpdatedAt)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to create default payout settings", err)
	}

	return st, nil
}

// UpdatePayoutSettings persists admin changes to the settings singleton.
func (d Datasource) UpdatePayoutSettings(ctx context.Context, st *model.PayoutSettings) error {
	st.UpdatedAt = time.Now()

	result, err := d.Conn.ExecContext(ctx, `
		UPDATE settle.payout_settings
		SET auto_payout_enabled = $2, minimum_payout_amount = $3, holding_period_days = $4, default_payment_method = $5, updated_by = $6, updated_at = $7
		WHERE settings_id = $1
	`, st.SettingsID, st.AutoPayoutEnabled, st.MinimumPayoutAmount, st.HoldingPeriodDays, st.DefaultPaymentMethod, st.UpdatedBy, st.UpdatedAt)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to update payout settings", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apierror.NewAPIError(apierror.ErrNotFound, "Payout settings not found", nil)
	}

	return nil
}
