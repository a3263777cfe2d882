package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"github.com/trovemarket/settle/config"
	"github.com/trovemarket/settle/model"
)

var settingsColumns = []string{
	"settings_id", "auto_payout_enabled", "minimum_payout_amount",
	"holding_period_days", "default_payment_method", "updated_by", "updated_at",
}

func TestGetPayoutSettings_Existing(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}
	now := time.Now()

	mock.ExpectQuery("FROM settle.payout_settings").
		WillReturnRows(sqlmock.NewRows(settingsColumns).
			AddRow("pset_1", true, "25.00", 14, "paypal", "admin_1", now))

	st, err := ds.GetPayoutSettings(context.Background())
	assert.NoError(t, err)
	assert.True(t, st.AutoPayoutEnabled)
	assert.Equal(t, "25", st.MinimumPayoutAmount.String())
	assert.Equal(t, 14, st.HoldingPeriodDays)
	assert.Equal(t, model.PaymentMethodPaypal, st.DefaultPaymentMethod)
	assert.Equal(t, "admin_1", st.UpdatedBy)
}

func TestGetPayoutSettings_LazyCreatesDefaults(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectQuery("FROM settle.payout_settings").
		WillReturnRows(sqlmock.NewRows(settingsColumns))
	mock.ExpectExec("INSERT INTO settle.payout_settings").
		WillReturnResult(sqlmock.NewResult(1, 1))

	st, err := ds.GetPayoutSettings(context.Background())
	assert.NoError(t, err)
	assert.NotEmpty(t, st.SettingsID)
	assert.False(t, st.AutoPayoutEnabled)
	assert.Equal(t, "50", st.MinimumPayoutAmount.String())
	assert.Equal(t, 7, st.HoldingPeriodDays)
	assert.Equal(t, model.PaymentMethodStripe, st.DefaultPaymentMethod)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetPayoutSettings_LazyCreateHonorsConfig(t *testing.T) {
	config.MockConfig(&config.Configuration{
		Payout: config.PayoutConfig{
			MinimumPayoutAmount:  "25.00",
			HoldingPeriodDays:    14,
			DefaultPaymentMethod: "paypal",
		},
	})

	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectQuery("FROM settle.payout_settings").
		WillReturnRows(sqlmock.NewRows(settingsColumns))
	mock.ExpectExec("INSERT INTO settle.payout_settings").
		WillReturnResult(sqlmock.NewResult(1, 1))

	st, err := ds.GetPayoutSettings(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "25", st.MinimumPayoutAmount.String())
	assert.Equal(t, 14, st.HoldingPeriodDays)
	assert.Equal(t, model.PaymentMethodPaypal, st.DefaultPaymentMethod)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePayoutSettings(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	st := &model.PayoutSettings{
		SettingsID:           "pset_1",
		AutoPayoutEnabled:    true,
		MinimumPayoutAmount:  model.DefaultPayoutSettings().MinimumPayoutAmount,
		HoldingPeriodDays:    10,
		DefaultPaymentMethod: model.PaymentMethodStripe,
		UpdatedBy:            "admin_1",
	}

	mock.ExpectExec("UPDATE settle.payout_settings").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = ds.UpdatePayoutSettings(context.Background(), st)
	assert.NoError(t, err)
	assert.WithinDuration(t, time.Now(), st.UpdatedAt, time.Second)
	assert.NoError(t, mock.ExpectationsWereMet())
}
