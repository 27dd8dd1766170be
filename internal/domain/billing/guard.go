package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/nuwanwp/billora-api/internal/domain/entity"
	"github.com/nuwanwp/billora-api/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// Edit rule identifiers, stable across API responses.
const (
	RuleInvoiceLocked   = "invoice_locked"
	RuleTotalBelowPaid  = "total_below_paid_amount"
	RuleStatusManaged   = "status_managed_by_ledger"
	RuleClientLocked    = "client_locked_by_invoices"
	RuleInvalidItems    = "invalid_line_items"
	RuleDueBeforeIssued = "due_date_before_invoice_date"
)

// Violation is one broken edit rule. ValidateEdit collects every violation
// rather than failing on the first, so the caller can show the user all
// problems in one round-trip.
type Violation struct {
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// ProposedEdit is the full replacement state an invoice edit wants to apply.
type ProposedEdit struct {
	Items        []LineItem
	TaxRate      decimal.Decimal
	DiscountRate decimal.Decimal
	ClientID     uuid.UUID
	Status       enum.InvoiceStatus
	InvoiceDate  time.Time
	DueDate      time.Time
}

// ValidateEdit checks whether an edit is legal given the invoice's payment
// state. projectHasOtherInvoices must be true when the invoice belongs to a
// project that has issued other invoices; client identity is then locked so
// every invoice under the project keeps billing the same client.
func ValidateEdit(inv *entity.Invoice, edit ProposedEdit, projectHasOtherInvoices bool, now time.Time) []Violation {
	// A fully paid invoice is settled paperwork; nothing on it may change.
	if inv.Status == enum.InvoiceStatusPaid {
		return []Violation{{
			Rule:    RuleInvoiceLocked,
			Message: "invoice is fully paid and cannot be edited",
		}}
	}

	var violations []Violation

	if edit.DueDate.Before(edit.InvoiceDate) {
		violations = append(violations, Violation{
			Rule:    RuleDueBeforeIssued,
			Message: "due date cannot be before the invoice date",
		})
	}

	totals, err := ComputeTotals(edit.Items, edit.TaxRate, edit.DiscountRate)
	if err != nil {
		violations = append(violations, Violation{
			Rule:    RuleInvalidItems,
			Message: err.Error(),
		})
	}

	if inv.PaidAmount.IsPositive() {
		if totals != nil && totals.Total.LessThan(inv.PaidAmount) {
			violations = append(violations, Violation{
				Rule:    RuleTotalBelowPaid,
				Message: "proposed total is below the amount already paid",
			})
		}

		// With money on the books the status belongs to the ledger.
		if totals != nil {
			derived := DeriveStatus(inv.Status, inv.PaidAmount, totals.Total, edit.DueDate, now)
			if edit.Status != derived {
				violations = append(violations, Violation{
					Rule:    RuleStatusManaged,
					Message: "status is derived from payments once money has been received",
				})
			}
		}
	} else if edit.Status != enum.InvoiceStatusDraft && edit.Status != enum.InvoiceStatusSent {
		// Paid, partially paid and overdue are ledger facts, never caller
		// input. Before any payment the caller only chooses draft or sent.
		violations = append(violations, Violation{
			Rule:    RuleStatusManaged,
			Message: "an unpaid invoice can only be draft or sent",
		})
	}

	if inv.ProjectID != nil && projectHasOtherInvoices && edit.ClientID != inv.ClientID {
		violations = append(violations, Violation{
			Rule:    RuleClientLocked,
			Message: "client cannot change while the project has other invoices",
		})
	}

	return violations
}
