package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nuwanwp/billora-api/internal/domain/billing"
	"github.com/nuwanwp/billora-api/internal/domain/entity"
	"github.com/nuwanwp/billora-api/internal/domain/repository"
	"github.com/nuwanwp/billora-api/pkg/apperror"
	"github.com/nuwanwp/billora-api/pkg/utils"
	"github.com/shopspring/decimal"
)

// PaymentService handles payment recording against invoices
type PaymentService struct {
	invoiceRepo repository.InvoiceRepository
	paymentRepo repository.PaymentRepository
}

// NewPaymentService creates a new payment service
func NewPaymentService(invoiceRepo repository.InvoiceRepository, paymentRepo repository.PaymentRepository) *PaymentService {
	return &PaymentService{
		invoiceRepo: invoiceRepo,
		paymentRepo: paymentRepo,
	}
}

// RecordPaymentInput represents the record payment input
type RecordPaymentInput struct {
	InvoiceID   uuid.UUID
	Amount      decimal.Decimal
	PaymentDate time.Time
	Method      string
	Reference   *string
	Notes       *string
}

// PaymentResult is the recorded payment together with the updated invoice
type PaymentResult struct {
	Payment *entity.Payment `json:"payment"`
	Invoice *entity.Invoice `json:"invoice"`
}

// RecordPayment applies a payment to an invoice. The ledger update runs
// against a locked row, so two concurrent payments cannot both fit into the
// same remaining balance.
func (s *PaymentService) RecordPayment(ctx context.Context, input *RecordPaymentInput) (*PaymentResult, error) {
	paymentDate := input.PaymentDate
	if paymentDate.IsZero() {
		paymentDate = time.Now()
	}

	reference := input.Reference
	if reference == nil || *reference == "" {
		receiptNo := utils.GenerateReceiptNo()
		reference = &receiptNo
	}

	payment := &entity.Payment{
		Amount:      input.Amount,
		PaymentDate: paymentDate,
		Method:      input.Method,
		Reference:   reference,
		Notes:       input.Notes,
	}

	invoice, err := s.invoiceRepo.RecordPayment(ctx, input.InvoiceID, payment, func(inv *entity.Invoice) error {
		return billing.ApplyPayment(inv, input.Amount, time.Now())
	})
	if err != nil {
		if apperror.IsAppError(err) {
			return nil, err
		}
		return nil, mapBillingError(err)
	}

	return &PaymentResult{Payment: payment, Invoice: invoice}, nil
}

// ListPayments returns the payment history of an invoice in the order the
// payments were received.
func (s *PaymentService) ListPayments(ctx context.Context, invoiceID uuid.UUID) ([]entity.Payment, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, apperror.NewNotFoundError("Invoice")
	}
	return s.paymentRepo.ListByInvoice(ctx, invoiceID)
}
