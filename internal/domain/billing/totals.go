// Package billing holds the invoice financial core: totals computation,
// the payment ledger, edit gating, and project valuation. Everything here
// is pure; persistence and transactions live in the repository layer.
package billing

import (
	"errors"

	"github.com/nuwanwp/billora-api/pkg/money"
	"github.com/shopspring/decimal"
)

var (
	ErrNoLineItems   = errors.New("invoice must have at least one line item")
	ErrNegativeTotal = errors.New("invoice total cannot be negative")
)

// LineItem is the input for totals computation, independent of whether the
// line came from an invoice form or was copied from a project.
type LineItem struct {
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
}

// Totals is the monetary summary of a line item set.
type Totals struct {
	Subtotal       decimal.Decimal
	TaxAmount      decimal.Decimal
	DiscountAmount decimal.Decimal
	Total          decimal.Decimal
	LineTotals     []decimal.Decimal
}

// ComputeTotals recomputes an invoice's money fields from scratch. It is
// called at creation and on every edit; totals are never adjusted
// incrementally, so repeated computation over the same items cannot drift.
func ComputeTotals(items []LineItem, taxRate, discountRate decimal.Decimal) (*Totals, error) {
	if len(items) == 0 {
		return nil, ErrNoLineItems
	}

	lineTotals := make([]decimal.Decimal, len(items))
	for i, item := range items {
		lt, err := money.LineTotal(item.Quantity, item.UnitPrice)
		if err != nil {
			return nil, err
		}
		lineTotals[i] = lt
	}
	subtotal := money.Sum(lineTotals...)

	taxAmount, err := money.PercentageOf(subtotal, taxRate)
	if err != nil {
		return nil, err
	}

	discountAmount, err := money.PercentageOf(subtotal, discountRate)
	if err != nil {
		return nil, err
	}

	total := subtotal.Add(taxAmount).Sub(discountAmount)
	if total.IsNegative() {
		return nil, ErrNegativeTotal
	}

	return &Totals{
		Subtotal:       subtotal,
		TaxAmount:      taxAmount,
		DiscountAmount: discountAmount,
		Total:          total,
		LineTotals:     lineTotals,
	}, nil
}
