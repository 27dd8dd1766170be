package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInvoiceOrderClauseWhitelistsColumns(t *testing.T) {
	for _, column := range []string{"created_at", "invoice_date", "due_date", "total_amount", "status"} {
		assert.Equal(t, column+" DESC", invoiceOrderClause(column, "DESC"))
		assert.Equal(t, column+" ASC", invoiceOrderClause(column, "asc"))
	}
}

func TestInvoiceOrderClauseRejectsUnknownInput(t *testing.T) {
	// Anything outside the whitelist falls back to the default ordering,
	// so caller input never reaches the ORDER BY clause.
	cases := []struct{ sortBy, sortOrder string }{
		{"", ""},
		{"invoice_number", "DESC"},
		{"created_at; DROP TABLE invoices--", "DESC"},
		{"(SELECT 1)", "ASC"},
		{"created_at", "ASC; DELETE FROM payments"},
	}
	for _, tc := range cases {
		clause := invoiceOrderClause(tc.sortBy, tc.sortOrder)
		assert.Contains(t, []string{"created_at DESC", "created_at ASC"}, clause,
			"sort_by=%q sort_order=%q", tc.sortBy, tc.sortOrder)
	}
}
