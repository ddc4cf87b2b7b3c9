package types

import (
	"errors"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// Quantity columns are NUMERIC(14,3), price columns NUMERIC(12,2).
const (
	QuantityScale         = 3
	QuantityIntegerDigits = 11
	PriceScale            = 2
	PriceIntegerDigits    = 10

	maxCoefficientBits = 128
	maxZeroScale       = 64
)

var (
	ErrQuantityRange = errors.New("quantity must have at most 11 integer digits and 3 decimal places")

	tenInt = big.NewInt(10)
)

// QuantityFits reports whether d is stored by a NUMERIC(14,3) column without
// rounding or overflow.
func QuantityFits(d decimal.Decimal) bool {
	return DecimalFits(d, QuantityIntegerDigits, QuantityScale)
}

// PriceFits is QuantityFits for NUMERIC(12,2) price columns.
func PriceFits(d decimal.Decimal) bool {
	return DecimalFits(d, PriceIntegerDigits, PriceScale)
}

// DecimalFits reports whether d has at most intDigits integer digits and
// scale significant decimal places. Only the exponent and coefficient size
// are inspected, so values like 1e100000000 are rejected without expanding
// them.
func DecimalFits(d decimal.Decimal, intDigits, scale int) bool {
	exp := int(d.Exponent())
	if d.IsZero() {
		return exp >= -maxZeroScale && exp <= intDigits
	}
	coef := d.Coefficient()
	if coef.BitLen() > maxCoefficientBits {
		return false
	}
	coef.Abs(coef)
	// trailing zeros after the point do not count towards the scale
	rem := new(big.Int)
	for exp < -scale {
		q, r := new(big.Int).QuoRem(coef, tenInt, rem)
		if r.Sign() != 0 {
			return false
		}
		coef = q
		exp++
	}
	return len(coef.String())+exp <= intDigits
}

// ParseQuantity parses a decimal string and checks it against QuantityFits.
func ParseQuantity(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, err
	}
	if !QuantityFits(d) {
		return decimal.Zero, ErrQuantityRange
	}
	return d, nil
}
