package fee

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Quote is the fee breakdown for a single transfer amount
type Quote struct {
	Amount       decimal.Decimal
	Fee          decimal.Decimal
	BilledAmount decimal.Decimal // Amount + Fee
}

// Calculator applies the configured fee rate and cap to transfer amounts
type Calculator struct {
	Rate decimal.Decimal
	Cap  decimal.Decimal
}

// NewCalculator creates a Calculator. Rate and cap must not be negative.
func NewCalculator(rate, feeCap decimal.Decimal) (*Calculator, error) {
	if rate.IsNegative() {
		return nil, errors.New("fee rate cannot be negative")
	}
	if feeCap.IsNegative() {
		return nil, errors.New("fee cap cannot be negative")
	}
	return &Calculator{Rate: rate, Cap: feeCap}, nil
}

// Quote computes the fee and billed amount for amount
func (c *Calculator) Quote(amount decimal.Decimal) (Quote, error) {
	fee, err := Calculate(amount, c.Rate, c.Cap)
	if err != nil {
		return Quote{}, err
	}

	return Quote{
		Amount:       amount,
		Fee:          fee,
		BilledAmount: amount.Add(fee),
	}, nil
}

// Calculate returns min(amount * rate, cap).
// Arithmetic is exact decimal so the same inputs always produce the same fee.
func Calculate(amount, rate, feeCap decimal.Decimal) (decimal.Decimal, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, errors.New("amount must be positive")
	}

	if rate.IsNegative() || feeCap.IsNegative() {
		return decimal.Zero, errors.New("fee rate and cap cannot be negative")
	}

	return decimal.Min(amount.Mul(rate), feeCap), nil
}
