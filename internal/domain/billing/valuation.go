package billing

import (
	"fmt"

	"github.com/nuwanwp/billora-api/internal/domain/entity"
	"github.com/nuwanwp/billora-api/pkg/money"
	"github.com/shopspring/decimal"
)

// ProjectValue aggregates a project's items into a total contract value.
func ProjectValue(items []entity.ProjectItem) decimal.Decimal {
	amounts := make([]decimal.Decimal, len(items))
	for i, item := range items {
		amounts[i] = money.Round2(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return money.Sum(amounts...)
}

// LineItemsFromProject copies project items into invoice line inputs.
// Copies, never references: editing a project item later must not change an
// invoice that was already drafted from it.
func LineItemsFromProject(items []entity.ProjectItem) []LineItem {
	lines := make([]LineItem, len(items))
	for i, item := range items {
		lines[i] = LineItem{
			Description: item.Name,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		}
	}
	return lines
}

// FormatInvoiceNumber renders the year-scoped sequential invoice number,
// e.g. FormatInvoiceNumber(2025, 4) == "INV-2025-0004".
func FormatInvoiceNumber(year int, seq int64) string {
	return fmt.Sprintf("INV-%d-%04d", year, seq)
}
