package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nuwanwp/billora-api/internal/domain/entity"
	"github.com/nuwanwp/billora-api/internal/domain/enum"
	"github.com/nuwanwp/billora-api/pkg/pagination"
)

// InvoiceRepository defines the interface for invoice data operations.
// The multi-step operations (create with number allocation, item
// replacement, payment recording) each run as one transaction; either
// everything in them commits or nothing does.
type InvoiceRepository interface {
	// CreateWithNumber inserts the invoice and its items, allocating the
	// next year-scoped invoice number inside the same transaction. Returns
	// apperror.ErrDuplicateInvoiceNumber on a number collision so the
	// caller can retry.
	CreateWithNumber(ctx context.Context, invoice *entity.Invoice, year int) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error)
	GetWithItems(ctx context.Context, id uuid.UUID) (*entity.Invoice, error)
	List(ctx context.Context, userID uuid.UUID, params *InvoiceFilterParams) ([]entity.Invoice, int64, error)
	// ReplaceItems persists the edited invoice and swaps the entire item
	// set (delete-all-then-insert) in one transaction, guarded by the
	// invoice's version column. Returns
	// apperror.ErrConcurrentModification when the version moved.
	ReplaceItems(ctx context.Context, invoice *entity.Invoice, items []entity.InvoiceItem) error
	// RecordPayment locks the invoice row, runs apply against the fresh
	// state, then persists the payment and the updated invoice atomically.
	RecordPayment(ctx context.Context, invoiceID uuid.UUID, payment *entity.Payment, apply func(inv *entity.Invoice) error) (*entity.Invoice, error)
	// CountByProject counts the project's invoices, excluding excludeID
	// when non-nil. Used for the client reassignment lock.
	CountByProject(ctx context.Context, projectID uuid.UUID, excludeID *uuid.UUID) (int64, error)
	// MarkOverdue flips issued, unpaid invoices past their due date to
	// overdue. Returns the number of rows updated.
	MarkOverdue(ctx context.Context, now time.Time) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// InvoiceFilterParams contains filtering parameters for invoice queries
type InvoiceFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string
	Status     *enum.InvoiceStatus
	ClientID   *uuid.UUID
	ProjectID  *uuid.UUID
	StartDate  *time.Time
	EndDate    *time.Time
	SortBy     string
	SortOrder  string
}

// PaymentRepository defines the interface for payment data operations.
// Payments are append-only; inserts happen through
// InvoiceRepository.RecordPayment so the ledger update rides the same
// transaction.
type PaymentRepository interface {
	ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]entity.Payment, error)
	ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]entity.Payment, error)
}
