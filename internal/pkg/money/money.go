// Package money holds native-currency arithmetic for the exchange. Amounts are
// decimals with wei precision (18 fractional digits); credits are integers.
package money

import (
	"strings"

	"carbon-exchange/internal/domain"

	"github.com/shopspring/decimal"
)

// Decimals is the fractional precision of the native currency.
const Decimals = 18

// Parse reads a decimal amount such as "0.01". Empty input is ErrMissingField.
func Parse(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, domain.ErrMissingField
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, domain.ErrInvalidAmount
	}
	if err := CheckPrecision(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// CheckPrecision rejects amounts finer than one wei.
func CheckPrecision(d decimal.Decimal) error {
	if !d.Truncate(Decimals).Equal(d) {
		return domain.ErrPrecision
	}
	return nil
}

// CheckPrice validates a per-credit price.
func CheckPrice(price decimal.Decimal) error {
	if !price.IsPositive() {
		return domain.ErrZeroPrice
	}
	return CheckPrecision(price)
}

// Total is the exact cost of amount credits at price.
func Total(price decimal.Decimal, amount int64) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(amount))
}

// Fee is total * bps / 10000 rounded down to wei.
func Fee(total decimal.Decimal, bps int) decimal.Decimal {
	if bps <= 0 || !total.IsPositive() {
		return decimal.Zero
	}
	return total.Mul(decimal.NewFromInt(int64(bps))).Shift(-4).Truncate(Decimals)
}

// Split returns the platform fee and the seller's share of total.
func Split(total decimal.Decimal, bps int) (fee, proceeds decimal.Decimal) {
	fee = Fee(total, bps)
	return fee, total.Sub(fee)
}
