package money

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// Money arithmetic for invoice amounts. All values are decimal with two
// fractional digits; binary floats never enter these functions.

var (
	ErrNegativeQuantity  = errors.New("quantity must be at least 1")
	ErrNegativeUnitPrice = errors.New("unit price cannot be negative")
	ErrInvalidRate       = errors.New("rate must be between 0 and 100")
)

var oneHundred = decimal.NewFromInt(100)

// Round2 rounds to two decimal places, half away from zero.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// LineTotal computes quantity x unit price rounded to two decimal places.
func LineTotal(quantity int, unitPrice decimal.Decimal) (decimal.Decimal, error) {
	if quantity < 1 {
		return decimal.Zero, ErrNegativeQuantity
	}
	if unitPrice.IsNegative() {
		return decimal.Zero, ErrNegativeUnitPrice
	}
	return Round2(unitPrice.Mul(decimal.NewFromInt(int64(quantity)))), nil
}

// PercentageOf computes base x rate / 100 rounded to two decimal places.
// The rate is a percentage and must be within [0, 100].
func PercentageOf(base decimal.Decimal, ratePercent decimal.Decimal) (decimal.Decimal, error) {
	if ratePercent.IsNegative() || ratePercent.GreaterThan(oneHundred) {
		return decimal.Zero, ErrInvalidRate
	}
	return Round2(base.Mul(ratePercent).Div(oneHundred)), nil
}

// Sum adds an arbitrary number of amounts without floating point drift.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// FormatLKR renders an amount the way the UI displays money,
// e.g. "LKR 12,500.00".
func FormatLKR(d decimal.Decimal) string {
	fixed := d.StringFixed(2)

	neg := strings.HasPrefix(fixed, "-")
	if neg {
		fixed = fixed[1:]
	}

	intPart := fixed[:len(fixed)-3]
	fracPart := fixed[len(fixed)-3:] // includes the dot

	var b strings.Builder
	b.WriteString("LKR ")
	if neg {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteString(fracPart)
	return b.String()
}
