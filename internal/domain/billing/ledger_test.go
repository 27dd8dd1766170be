package billing

import (
	"testing"
	"time"

	"github.com/nuwanwp/billora-api/internal/domain/entity"
	"github.com/nuwanwp/billora-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testInvoice(total string, status enum.InvoiceStatus, dueDate time.Time) *entity.Invoice {
	return &entity.Invoice{
		TotalAmount:   dec(total),
		PaidAmount:    decimal.Zero,
		BalanceAmount: dec(total),
		Status:        status,
		InvoiceDate:   dueDate.AddDate(0, 0, -14),
		DueDate:       dueDate,
	}
}

func TestApplyPaymentFull(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	inv := testInvoice("2200", enum.InvoiceStatusSent, now.AddDate(0, 0, 14))

	require.NoError(t, ApplyPayment(inv, dec("2200"), now))

	assert.Equal(t, "2200.00", inv.PaidAmount.StringFixed(2))
	assert.Equal(t, "0.00", inv.BalanceAmount.StringFixed(2))
	assert.Equal(t, enum.InvoiceStatusPaid, inv.Status)
}

func TestApplyPaymentPartial(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	inv := testInvoice("2200", enum.InvoiceStatusSent, now.AddDate(0, 0, 14))

	require.NoError(t, ApplyPayment(inv, dec("1000"), now))

	assert.Equal(t, "1000.00", inv.PaidAmount.StringFixed(2))
	assert.Equal(t, "1200.00", inv.BalanceAmount.StringFixed(2))
	assert.Equal(t, enum.InvoiceStatusPartiallyPaid, inv.Status)
}

func TestApplyPaymentRejectsNonPositiveAmounts(t *testing.T) {
	now := time.Now()
	inv := testInvoice("500", enum.InvoiceStatusSent, now.AddDate(0, 0, 7))

	assert.ErrorIs(t, ApplyPayment(inv, decimal.Zero, now), ErrInvalidPaymentAmount)
	assert.ErrorIs(t, ApplyPayment(inv, dec("-10"), now), ErrInvalidPaymentAmount)
	assert.True(t, inv.PaidAmount.IsZero())
	assert.Equal(t, enum.InvoiceStatusSent, inv.Status)
}

func TestApplyPaymentRejectsOverpayment(t *testing.T) {
	now := time.Now()
	inv := testInvoice("500", enum.InvoiceStatusSent, now.AddDate(0, 0, 7))

	require.NoError(t, ApplyPayment(inv, dec("400"), now))
	err := ApplyPayment(inv, dec("100.01"), now)
	assert.ErrorIs(t, err, ErrOverpaymentNotAllowed)

	// The rejected payment left nothing behind.
	assert.Equal(t, "400.00", inv.PaidAmount.StringFixed(2))
	assert.Equal(t, "100.00", inv.BalanceAmount.StringFixed(2))
}

func TestApplyPaymentSequenceIsMonotone(t *testing.T) {
	now := time.Now()
	inv := testInvoice("1000", enum.InvoiceStatusSent, now.AddDate(0, 0, 30))

	prevPaid := decimal.Zero
	for _, amount := range []string{"100", "250.50", "0.01", "649.49"} {
		require.NoError(t, ApplyPayment(inv, dec(amount), now))

		assert.True(t, inv.PaidAmount.GreaterThanOrEqual(prevPaid), "paid amount never decreases")
		assert.False(t, inv.BalanceAmount.IsNegative(), "balance never goes negative")
		assert.True(t, inv.BalanceAmount.Equal(inv.TotalAmount.Sub(inv.PaidAmount)))
		prevPaid = inv.PaidAmount
	}

	assert.Equal(t, enum.InvoiceStatusPaid, inv.Status)
	assert.True(t, inv.BalanceAmount.IsZero())
}

func TestApplyPaymentPastDueGoesOverdue(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	inv := testInvoice("1000", enum.InvoiceStatusSent, now.AddDate(0, 0, -3))

	require.NoError(t, ApplyPayment(inv, dec("200"), now))
	assert.Equal(t, enum.InvoiceStatusOverdue, inv.Status)

	// Settling the balance clears the overdue state.
	require.NoError(t, ApplyPayment(inv, dec("800"), now))
	assert.Equal(t, enum.InvoiceStatusPaid, inv.Status)
}

func TestDeriveStatusIsDeterministic(t *testing.T) {
	due := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	total := dec("1000")

	// Two different payment orders arriving at the same paid amount.
	a := testInvoice("1000", enum.InvoiceStatusSent, due)
	require.NoError(t, ApplyPayment(a, dec("700"), now))
	require.NoError(t, ApplyPayment(a, dec("100"), now))

	b := testInvoice("1000", enum.InvoiceStatusSent, due)
	require.NoError(t, ApplyPayment(b, dec("100"), now))
	require.NoError(t, ApplyPayment(b, dec("700"), now))

	assert.Equal(t, a.Status, b.Status)
	assert.True(t, a.PaidAmount.Equal(b.PaidAmount))
	assert.Equal(t, DeriveStatus(enum.InvoiceStatusSent, a.PaidAmount, total, due, now),
		DeriveStatus(enum.InvoiceStatusSent, b.PaidAmount, total, due, now))
}

func TestDeriveStatusUnpaid(t *testing.T) {
	total := dec("1000")
	due := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	before := due.AddDate(0, 0, -1)
	after := due.AddDate(0, 0, 1)

	// Nothing paid: status stays as set, except issued invoices past due.
	assert.Equal(t, enum.InvoiceStatusDraft,
		DeriveStatus(enum.InvoiceStatusDraft, decimal.Zero, total, due, after))
	assert.Equal(t, enum.InvoiceStatusSent,
		DeriveStatus(enum.InvoiceStatusSent, decimal.Zero, total, due, before))
	assert.Equal(t, enum.InvoiceStatusOverdue,
		DeriveStatus(enum.InvoiceStatusSent, decimal.Zero, total, due, after))

	// Due date pushed out again: overdue reverts to sent.
	assert.Equal(t, enum.InvoiceStatusSent,
		DeriveStatus(enum.InvoiceStatusOverdue, decimal.Zero, total, due, before))
}

func TestZeroTotalInvoiceSettlesOnIssue(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	due := now.AddDate(0, 0, 14)

	// A fully discounted invoice has no balance to collect, so an issued
	// one reads as paid without any payment rows. It never goes overdue.
	assert.Equal(t, enum.InvoiceStatusPaid,
		DeriveStatus(enum.InvoiceStatusSent, decimal.Zero, decimal.Zero, due, now))
	assert.Equal(t, enum.InvoiceStatusPaid,
		DeriveStatus(enum.InvoiceStatusSent, decimal.Zero, decimal.Zero, due, due.AddDate(0, 0, 30)))

	// Drafts stay drafts: nothing was issued to settle.
	assert.Equal(t, enum.InvoiceStatusDraft,
		DeriveStatus(enum.InvoiceStatusDraft, decimal.Zero, decimal.Zero, due, now))

	// No payment can be recorded against it.
	inv := testInvoice("0", enum.InvoiceStatusSent, due)
	assert.ErrorIs(t, ApplyPayment(inv, dec("10"), now), ErrOverpaymentNotAllowed)
}
