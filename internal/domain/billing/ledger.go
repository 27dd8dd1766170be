package billing

import (
	"errors"
	"time"

	"github.com/nuwanwp/billora-api/internal/domain/entity"
	"github.com/nuwanwp/billora-api/internal/domain/enum"
	"github.com/nuwanwp/billora-api/pkg/money"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidPaymentAmount  = errors.New("payment amount must be greater than zero")
	ErrOverpaymentNotAllowed = errors.New("payment exceeds the outstanding balance")
)

// ApplyPayment applies a payment to an invoice, updating paid amount,
// balance, and status. Overpayment is rejected; there are no credit
// balances, so the balance can never go negative. The caller persists the
// invoice and the payment row in one transaction.
func ApplyPayment(inv *entity.Invoice, amount decimal.Decimal, now time.Time) error {
	if !amount.IsPositive() {
		return ErrInvalidPaymentAmount
	}
	if amount.GreaterThan(inv.BalanceAmount) {
		return ErrOverpaymentNotAllowed
	}

	inv.PaidAmount = money.Round2(inv.PaidAmount.Add(amount))
	inv.BalanceAmount = inv.TotalAmount.Sub(inv.PaidAmount)
	if inv.BalanceAmount.IsNegative() {
		inv.BalanceAmount = decimal.Zero
	}
	inv.Status = DeriveStatus(inv.Status, inv.PaidAmount, inv.TotalAmount, inv.DueDate, now)
	return nil
}

// DeriveStatus is the single status derivation used by the ledger, every
// read path, and the overdue sweep. It is a deterministic function of
// (paid, total, due date, now); applying the same payments in any order
// yields the same status.
//
// A draft never becomes overdue: it was never issued to the client.
//
// An issued invoice with a zero total (a full discount) has nothing left
// to collect, so it reads as paid the moment it is issued. No payment row
// can take it there: ApplyPayment rejects non-positive amounts.
func DeriveStatus(current enum.InvoiceStatus, paid, total decimal.Decimal, dueDate time.Time, now time.Time) enum.InvoiceStatus {
	switch {
	case total.IsZero() && current != enum.InvoiceStatusDraft:
		return enum.InvoiceStatusPaid
	case paid.IsPositive() && paid.GreaterThanOrEqual(total):
		return enum.InvoiceStatusPaid
	case paid.IsPositive():
		if pastDue(dueDate, now) {
			return enum.InvoiceStatusOverdue
		}
		return enum.InvoiceStatusPartiallyPaid
	default:
		// Nothing paid yet: keep whatever the invoice was set to, except
		// that an issued invoice past its due date reads as overdue.
		if (current == enum.InvoiceStatusSent || current == enum.InvoiceStatusOverdue) && pastDue(dueDate, now) {
			return enum.InvoiceStatusOverdue
		}
		if current == enum.InvoiceStatusOverdue && !pastDue(dueDate, now) {
			// Due date was pushed out after the invoice went overdue.
			return enum.InvoiceStatusSent
		}
		return current
	}
}

func pastDue(dueDate, now time.Time) bool {
	return dueDate.Before(now)
}
