package entity

import (
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// subunitExponent is the number of decimal places of the store currency (paise per rupee).
const subunitExponent = 2

// basisPointsScale is 100% expressed in basis points.
const basisPointsScale = 10000

// Money is an amount in currency subunits. All arithmetic stays in integers.
type Money int64

// MoneyFromDecimal converts a major-unit decimal such as "1000.50" into subunits.
// Amounts with more than two fractional digits are rejected rather than rounded.
func MoneyFromDecimal(d decimal.Decimal) (Money, error) {
	scaled := d.Shift(subunitExponent)
	if !scaled.Equal(scaled.Truncate(0)) {
		return 0, errors.Errorf("amount %s has more than %d decimal places", d.String(), subunitExponent)
	}

	return Money(scaled.IntPart()), nil
}

// ParseMoney parses a major-unit decimal string.
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, errors.Wrapf(err, "parse amount %q", s)
	}

	return MoneyFromDecimal(d)
}

// Decimal returns the amount in major units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -subunitExponent)
}

// String renders the amount in major units with two decimals.
func (m Money) String() string {
	return m.Decimal().StringFixed(subunitExponent)
}

// Int64 returns the raw subunit count.
func (m Money) Int64() int64 {
	return int64(m)
}

// Times multiplies the amount by a quantity.
func (m Money) Times(qty int) Money {
	return m * Money(qty)
}

// WithTax adds a tax given in basis points, rounding half up to the nearest subunit.
func (m Money) WithTax(taxBasisPoints int64) Money {
	return Money((int64(m)*(basisPointsScale+taxBasisPoints) + basisPointsScale/2) / basisPointsScale)
}
