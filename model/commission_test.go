package model

import (
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCalculateCommission_StandardSplit(t *testing.T) {
	calc, err := CalculateCommission("100.00", decimal.NewFromFloat(10.00), decimal.NewFromFloat(2.9))
	assert.NoError(t, err)

	assert.Equal(t, "10", calc.CommissionAmount.String())
	assert.Equal(t, "90", calc.SellerAmount.String())
	assert.Equal(t, "2.61", RoundMoney(calc.ProcessingFee).String())
	assert.Equal(t, "87.39", RoundMoney(calc.NetSellerAmount).String())
}

func TestCalculateCommission_SplitInvariants(t *testing.T) {
	for i := 0; i < 200; i++ {
		price := decimal.NewFromFloat(gofakeit.Price(0.01, 25000)).Round(2)
		rate := decimal.NewFromFloat(gofakeit.Float64Range(0, 30)).Round(2)
		feeRate := decimal.NewFromFloat(2.9)

		calc, err := CalculateCommission(price.String(), rate, feeRate)
		assert.NoError(t, err)

		// commissionAmount + sellerAmount == salePrice
		assert.True(t, calc.CommissionAmount.Add(calc.SellerAmount).Equal(calc.SalePrice),
			"split of %s at %s%% does not sum back", price, rate)
		// processingFee + netSellerAmount == sellerAmount
		assert.True(t, calc.ProcessingFee.Add(calc.NetSellerAmount).Equal(calc.SellerAmount))
		assert.False(t, calc.NetSellerAmount.IsNegative())
	}
}

func TestCalculateCommission_ZeroAmount(t *testing.T) {
	calc, err := CalculateCommission("0", decimal.NewFromFloat(10), decimal.NewFromFloat(2.9))
	assert.NoError(t, err)
	assert.True(t, calc.NetSellerAmount.IsZero())
}

func TestCalculateCommission_InvalidAmount(t *testing.T) {
	cases := []string{"", "abc", "12,50", "-1", "-0.01"}
	for _, amount := range cases {
		_, err := CalculateCommission(amount, decimal.NewFromFloat(10), decimal.NewFromFloat(2.9))
		assert.ErrorIs(t, err, ErrInvalidOrderAmount, "amount %q should be rejected", amount)
	}
}

func TestParseRateOrDefault(t *testing.T) {
	def := decimal.NewFromFloat(10.00)

	assert.True(t, ParseRateOrDefault("", def).Equal(def))
	assert.True(t, ParseRateOrDefault("not-a-rate", def).Equal(def))
	assert.True(t, ParseRateOrDefault("-4", def).Equal(def))
	assert.Equal(t, "12.5", ParseRateOrDefault("12.5", def).String())
}

func TestCommissionStatusTransitions(t *testing.T) {
	assert.True(t, CommissionPending.CanTransitionTo(CommissionProcessing))
	assert.True(t, CommissionProcessing.CanTransitionTo(CommissionPaid))
	assert.True(t, CommissionProcessing.CanTransitionTo(CommissionPending))

	assert.False(t, CommissionPending.CanTransitionTo(CommissionPaid))
	assert.False(t, CommissionPaid.CanTransitionTo(CommissionPending))
	assert.False(t, CommissionPaid.CanTransitionTo(CommissionProcessing))
}

func TestPaymentMethodValid(t *testing.T) {
	assert.True(t, PaymentMethodStripe.Valid())
	assert.True(t, PaymentMethodPaypal.Valid())
	assert.False(t, PaymentMethod("wire").Valid())
}
