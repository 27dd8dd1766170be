package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/nuwanwp/billora-api/internal/domain/billing"
	"github.com/nuwanwp/billora-api/internal/domain/entity"
	"github.com/nuwanwp/billora-api/internal/domain/enum"
	domainRepo "github.com/nuwanwp/billora-api/internal/domain/repository"
	"github.com/nuwanwp/billora-api/pkg/apperror"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type invoiceRepository struct {
	db *gorm.DB
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db *gorm.DB) domainRepo.InvoiceRepository {
	return &invoiceRepository{db: db}
}

func (r *invoiceRepository) CreateWithNumber(ctx context.Context, invoice *entity.Invoice, year int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Allocate the next number from the per-year sequence row. The
		// upsert serializes concurrent allocations on the row lock, so two
		// writers cannot read the same value.
		var seq int64
		err := tx.Raw(`
			INSERT INTO invoice_sequences (id, year, last_value, created_at, updated_at)
			VALUES (?, ?, 1, NOW(), NOW())
			ON CONFLICT (year)
			DO UPDATE SET last_value = invoice_sequences.last_value + 1, updated_at = NOW()
			RETURNING last_value`,
			uuid.New(), year).Scan(&seq).Error
		if err != nil {
			return err
		}

		invoice.InvoiceNumber = billing.FormatInvoiceNumber(year, seq)

		if err := tx.Create(invoice).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperror.ErrDuplicateInvoiceNumber
			}
			return err
		}
		return nil
	})
}

func (r *invoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	var invoice entity.Invoice
	err := r.db.WithContext(ctx).
		Scopes(OwnerScope(ctx)).
		Preload("Client").
		First(&invoice, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &invoice, err
}

func (r *invoiceRepository) GetWithItems(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	var invoice entity.Invoice
	err := r.db.WithContext(ctx).
		Scopes(OwnerScope(ctx)).
		Preload("Client").
		Preload("Project").
		Preload("Items").
		Preload("Payments", func(db *gorm.DB) *gorm.DB {
			return db.Order("payment_date ASC, created_at ASC")
		}).
		First(&invoice, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &invoice, err
}

func (r *invoiceRepository) List(ctx context.Context, userID uuid.UUID, params *domainRepo.InvoiceFilterParams) ([]entity.Invoice, int64, error) {
	var invoices []entity.Invoice
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Invoice{}).Where("user_id = ?", userID)

	if params.Search != "" {
		query = query.Where("invoice_number ILIKE ?", "%"+params.Search+"%")
	}

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}

	if params.ClientID != nil {
		query = query.Where("client_id = ?", *params.ClientID)
	}

	if params.ProjectID != nil {
		query = query.Where("project_id = ?", *params.ProjectID)
	}

	if params.StartDate != nil {
		query = query.Where("invoice_date >= ?", *params.StartDate)
	}

	if params.EndDate != nil {
		query = query.Where("invoice_date <= ?", *params.EndDate)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Preload("Client").
		Order(invoiceOrderClause(params.SortBy, params.SortOrder)).
		Find(&invoices).Error

	return invoices, total, err
}

// invoiceSortColumns is the whitelist for the sort_by query parameter.
// Both halves of the ORDER BY land in SQL verbatim, so neither may carry
// caller input.
var invoiceSortColumns = map[string]bool{
	"created_at":   true,
	"invoice_date": true,
	"due_date":     true,
	"total_amount": true,
	"status":       true,
}

func invoiceOrderClause(sortBy, sortOrder string) string {
	if !invoiceSortColumns[sortBy] {
		sortBy = "created_at"
	}
	if sortOrder == "ASC" || sortOrder == "asc" {
		return sortBy + " ASC"
	}
	return sortBy + " DESC"
}

func (r *invoiceRepository) ReplaceItems(ctx context.Context, invoice *entity.Invoice, items []entity.InvoiceItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&entity.Invoice{}).
			Where("id = ? AND version = ?", invoice.ID, invoice.Version).
			Updates(map[string]interface{}{
				"client_id":       invoice.ClientID,
				"invoice_date":    invoice.InvoiceDate,
				"due_date":        invoice.DueDate,
				"subtotal":        invoice.Subtotal,
				"tax_rate":        invoice.TaxRate,
				"tax_amount":      invoice.TaxAmount,
				"discount_rate":   invoice.DiscountRate,
				"discount_amount": invoice.DiscountAmount,
				"total_amount":    invoice.TotalAmount,
				"balance_amount":  invoice.BalanceAmount,
				"status":          invoice.Status,
				"notes":           invoice.Notes,
				"version":         invoice.Version + 1,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperror.ErrConcurrentModification
		}

		// The item set is replaced wholesale, never merged.
		if err := tx.Unscoped().Delete(&entity.InvoiceItem{}, "invoice_id = ?", invoice.ID).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].InvoiceID = invoice.ID
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}

		invoice.Version++
		invoice.Items = items
		return nil
	})
}

func (r *invoiceRepository) RecordPayment(ctx context.Context, invoiceID uuid.UUID, payment *entity.Payment, apply func(inv *entity.Invoice) error) (*entity.Invoice, error) {
	var invoice entity.Invoice
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Row lock serializes concurrent payments against the same invoice;
		// apply always sees the committed paid/balance state. The lookup is
		// owner-scoped like every other invoice read, so a foreign invoice
		// ID reads as missing rather than lockable.
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Scopes(OwnerScope(ctx)).
			First(&invoice, "id = ?", invoiceID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NewNotFoundError("Invoice")
		}
		if err != nil {
			return err
		}

		if err := apply(&invoice); err != nil {
			return err
		}

		payment.InvoiceID = invoice.ID
		if err := tx.Create(payment).Error; err != nil {
			return err
		}

		res := tx.Model(&entity.Invoice{}).
			Where("id = ? AND version = ?", invoice.ID, invoice.Version).
			Updates(map[string]interface{}{
				"paid_amount":    invoice.PaidAmount,
				"balance_amount": invoice.BalanceAmount,
				"status":         invoice.Status,
				"version":        invoice.Version + 1,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperror.ErrConcurrentModification
		}
		invoice.Version++
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepository) CountByProject(ctx context.Context, projectID uuid.UUID, excludeID *uuid.UUID) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&entity.Invoice{}).Where("project_id = ?", projectID)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	err := query.Count(&count).Error
	return count, err
}

func (r *invoiceRepository) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&entity.Invoice{}).
		Where("status IN ?", []enum.InvoiceStatus{enum.InvoiceStatusSent, enum.InvoiceStatusPartiallyPaid}).
		Where("due_date < ? AND paid_amount < total_amount", now).
		Update("status", enum.InvoiceStatusOverdue)
	return res.RowsAffected, res.Error
}

func (r *invoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Scopes(OwnerScope(ctx)).Delete(&entity.Invoice{}, "id = ?", id).Error
}

type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *gorm.DB) domainRepo.PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]entity.Payment, error) {
	var payments []entity.Payment
	err := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("payment_date ASC, created_at ASC").
		Find(&payments).Error
	return payments, err
}

func (r *paymentRepository) ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]entity.Payment, error) {
	var payments []entity.Payment
	err := r.db.WithContext(ctx).
		Joins("JOIN invoices ON invoices.id = payments.invoice_id").
		Where("invoices.user_id = ?", userID).
		Order("payments.created_at DESC").
		Limit(limit).
		Find(&payments).Error
	return payments, err
}
