package billing

import (
	"testing"

	"github.com/nuwanwp/billora-api/internal/domain/entity"
	"github.com/stretchr/testify/assert"
)

func TestProjectValue(t *testing.T) {
	items := []entity.ProjectItem{
		{Name: "Logo design", Quantity: 2, UnitPrice: dec("500")},
		{Name: "Brand guide", Quantity: 1, UnitPrice: dec("1000")},
	}

	assert.Equal(t, "2000.00", ProjectValue(items).StringFixed(2))
	assert.True(t, ProjectValue(nil).IsZero())
}

func TestLineItemsFromProjectCopies(t *testing.T) {
	items := []entity.ProjectItem{
		{Name: "Logo design", Quantity: 2, UnitPrice: dec("500")},
	}

	lines := LineItemsFromProject(items)
	assert.Len(t, lines, 1)
	assert.Equal(t, "Logo design", lines[0].Description)
	assert.Equal(t, 2, lines[0].Quantity)

	// Mutating the project item afterwards leaves the copy untouched.
	items[0].Quantity = 99
	items[0].UnitPrice = dec("1")
	assert.Equal(t, 2, lines[0].Quantity)
	assert.True(t, lines[0].UnitPrice.Equal(dec("500")))
}

func TestFormatInvoiceNumber(t *testing.T) {
	assert.Equal(t, "INV-2025-0004", FormatInvoiceNumber(2025, 4))
	assert.Equal(t, "INV-2024-0001", FormatInvoiceNumber(2024, 1))
	assert.Equal(t, "INV-2025-12345", FormatInvoiceNumber(2025, 12345))
}
