package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/nuwanwp/billora-api/internal/domain/billing"
	"github.com/nuwanwp/billora-api/internal/domain/entity"
	"github.com/nuwanwp/billora-api/internal/domain/enum"
	"github.com/nuwanwp/billora-api/internal/domain/repository"
	"github.com/nuwanwp/billora-api/pkg/apperror"
	"github.com/nuwanwp/billora-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// numberAllocationRetries bounds retries when the unique index backstop
// rejects an allocated invoice number.
const numberAllocationRetries = 3

// InvoiceService handles invoice-related operations
type InvoiceService struct {
	invoiceRepo    repository.InvoiceRepository
	projectRepo    repository.ProjectRepository
	itemRepo       repository.ProjectItemRepository
	clientRepo     repository.ClientRepository
	defaultDueDays int
}

// NewInvoiceService creates a new invoice service. defaultDueDays is the
// payment term applied when a create request carries no due date.
func NewInvoiceService(
	invoiceRepo repository.InvoiceRepository,
	projectRepo repository.ProjectRepository,
	itemRepo repository.ProjectItemRepository,
	clientRepo repository.ClientRepository,
	defaultDueDays int,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo:    invoiceRepo,
		projectRepo:    projectRepo,
		itemRepo:       itemRepo,
		clientRepo:     clientRepo,
		defaultDueDays: defaultDueDays,
	}
}

// InvoiceLineInput is one line item on a create or update request
type InvoiceLineInput struct {
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
}

// CreateInvoiceInput represents the create invoice input
type CreateInvoiceInput struct {
	UserID       uuid.UUID
	ClientID     uuid.UUID
	ProjectID    *uuid.UUID
	InvoiceDate  time.Time
	DueDate      time.Time
	Items        []InvoiceLineInput
	TaxRate      decimal.Decimal
	DiscountRate decimal.Decimal
	Notes        *string
	Issue        bool
}

// CreateInvoice creates a new invoice with a freshly allocated number.
// When Issue is true the invoice starts in sent, otherwise draft.
func (s *InvoiceService) CreateInvoice(ctx context.Context, input *CreateInvoiceInput) (*entity.Invoice, error) {
	client, err := s.clientRepo.GetByID(ctx, input.ClientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, apperror.NewNotFoundError("Client")
	}

	if input.ProjectID != nil {
		project, err := s.projectRepo.GetByID(ctx, *input.ProjectID)
		if err != nil {
			return nil, err
		}
		if project == nil {
			return nil, apperror.NewNotFoundError("Project")
		}
		// Every invoice under a project bills the project's client.
		if project.ClientID != input.ClientID {
			return nil, apperror.NewUnprocessableEntityError("Invoice client must match the project's client")
		}
	}

	dueDate := input.DueDate
	if dueDate.IsZero() {
		dueDate = input.InvoiceDate.AddDate(0, 0, s.defaultDueDays)
	}
	if dueDate.Before(input.InvoiceDate) {
		return nil, apperror.NewUnprocessableEntityError("Due date cannot be before the invoice date")
	}

	lines := make([]billing.LineItem, len(input.Items))
	for i, item := range input.Items {
		lines[i] = billing.LineItem{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		}
	}

	totals, err := billing.ComputeTotals(lines, input.TaxRate, input.DiscountRate)
	if err != nil {
		return nil, mapBillingError(err)
	}

	status := enum.InvoiceStatusDraft
	if input.Issue {
		status = enum.InvoiceStatusSent
		// Issuing a fully discounted invoice settles it on the spot: a
		// zero total leaves nothing to collect.
		if totals.Total.IsZero() {
			status = enum.InvoiceStatusPaid
		}
	}

	invoice := &entity.Invoice{
		UserID:         input.UserID,
		ClientID:       input.ClientID,
		ProjectID:      input.ProjectID,
		InvoiceDate:    input.InvoiceDate,
		DueDate:        dueDate,
		Subtotal:       totals.Subtotal,
		TaxRate:        input.TaxRate,
		TaxAmount:      totals.TaxAmount,
		DiscountRate:   input.DiscountRate,
		DiscountAmount: totals.DiscountAmount,
		TotalAmount:    totals.Total,
		PaidAmount:     decimal.Zero,
		BalanceAmount:  totals.Total,
		Status:         status,
		Notes:          input.Notes,
		Version:        1,
	}

	invoice.Items = make([]entity.InvoiceItem, len(lines))
	for i, line := range lines {
		invoice.Items[i] = entity.InvoiceItem{
			Description: line.Description,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			TotalAmount: totals.LineTotals[i],
		}
	}

	year := input.InvoiceDate.Year()
	for attempt := 0; ; attempt++ {
		err = s.invoiceRepo.CreateWithNumber(ctx, invoice, year)
		if err == nil {
			return invoice, nil
		}
		if !errors.Is(err, apperror.ErrDuplicateInvoiceNumber) || attempt >= numberAllocationRetries {
			return nil, err
		}
	}
}

// CreateFromProjectInput represents the create-from-project input
type CreateFromProjectInput struct {
	UserID       uuid.UUID
	ProjectID    uuid.UUID
	InvoiceDate  time.Time
	DueDate      time.Time
	TaxRate      decimal.Decimal
	DiscountRate decimal.Decimal
	Notes        *string
	Issue        bool
}

// CreateFromProject drafts an invoice from a project's current line items.
// The copy is one-time; later edits to the project never touch the invoice.
func (s *InvoiceService) CreateFromProject(ctx context.Context, input *CreateFromProjectInput) (*entity.Invoice, error) {
	project, err := s.projectRepo.GetByID(ctx, input.ProjectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, apperror.NewNotFoundError("Project")
	}

	items, err := s.itemRepo.GetByProjectID(ctx, input.ProjectID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, apperror.ErrNoLineItems
	}

	lines := billing.LineItemsFromProject(items)
	createInput := &CreateInvoiceInput{
		UserID:       input.UserID,
		ClientID:     project.ClientID,
		ProjectID:    &project.ID,
		InvoiceDate:  input.InvoiceDate,
		DueDate:      input.DueDate,
		TaxRate:      input.TaxRate,
		DiscountRate: input.DiscountRate,
		Notes:        input.Notes,
		Issue:        input.Issue,
	}
	createInput.Items = make([]InvoiceLineInput, len(lines))
	for i, line := range lines {
		createInput.Items[i] = InvoiceLineInput{
			Description: line.Description,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
		}
	}

	return s.CreateInvoice(ctx, createInput)
}

// GetInvoice retrieves an invoice with items and payments. The status is
// re-derived against the clock so a reader never sees a stale overdue state.
func (s *InvoiceService) GetInvoice(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	invoice, err := s.invoiceRepo.GetWithItems(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, apperror.NewNotFoundError("Invoice")
	}

	invoice.Status = billing.DeriveStatus(invoice.Status, invoice.PaidAmount, invoice.TotalAmount, invoice.DueDate, time.Now())
	return invoice, nil
}

// ListInvoices lists the user's invoices with filters
func (s *InvoiceService) ListInvoices(ctx context.Context, userID uuid.UUID, params *repository.InvoiceFilterParams) (*pagination.PaginatedResult[entity.Invoice], error) {
	invoices, total, err := s.invoiceRepo.List(ctx, userID, params)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	for i := range invoices {
		invoices[i].Status = billing.DeriveStatus(invoices[i].Status, invoices[i].PaidAmount, invoices[i].TotalAmount, invoices[i].DueDate, now)
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(invoices, pag), nil
}

// UpdateInvoiceInput represents the update invoice input. Updates are full
// replacements of the editable state.
type UpdateInvoiceInput struct {
	ID           uuid.UUID
	ClientID     uuid.UUID
	InvoiceDate  time.Time
	DueDate      time.Time
	Items        []InvoiceLineInput
	TaxRate      decimal.Decimal
	DiscountRate decimal.Decimal
	Status       enum.InvoiceStatus
	Notes        *string
}

// UpdateInvoice applies a guarded edit to an invoice. Every edit rule is
// checked and all violations are reported together.
func (s *InvoiceService) UpdateInvoice(ctx context.Context, input *UpdateInvoiceInput) (*entity.Invoice, error) {
	invoice, err := s.invoiceRepo.GetWithItems(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, apperror.NewNotFoundError("Invoice")
	}

	if !input.Status.Valid() {
		return nil, apperror.NewBadRequestError("Invalid invoice status")
	}

	client, err := s.clientRepo.GetByID(ctx, input.ClientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, apperror.NewNotFoundError("Client")
	}

	lines := make([]billing.LineItem, len(input.Items))
	for i, item := range input.Items {
		lines[i] = billing.LineItem{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		}
	}

	projectHasOthers := false
	if invoice.ProjectID != nil {
		count, err := s.invoiceRepo.CountByProject(ctx, *invoice.ProjectID, &invoice.ID)
		if err != nil {
			return nil, err
		}
		projectHasOthers = count > 0
	}

	edit := billing.ProposedEdit{
		Items:        lines,
		TaxRate:      input.TaxRate,
		DiscountRate: input.DiscountRate,
		ClientID:     input.ClientID,
		Status:       input.Status,
		InvoiceDate:  input.InvoiceDate,
		DueDate:      input.DueDate,
	}

	violations := billing.ValidateEdit(invoice, edit, projectHasOthers, time.Now())
	if len(violations) > 0 {
		return nil, violationError(violations)
	}

	totals, err := billing.ComputeTotals(lines, input.TaxRate, input.DiscountRate)
	if err != nil {
		return nil, mapBillingError(err)
	}

	invoice.ClientID = input.ClientID
	invoice.InvoiceDate = input.InvoiceDate
	invoice.DueDate = input.DueDate
	invoice.Subtotal = totals.Subtotal
	invoice.TaxRate = input.TaxRate
	invoice.TaxAmount = totals.TaxAmount
	invoice.DiscountRate = input.DiscountRate
	invoice.DiscountAmount = totals.DiscountAmount
	invoice.TotalAmount = totals.Total
	invoice.BalanceAmount = totals.Total.Sub(invoice.PaidAmount)
	invoice.Notes = input.Notes
	if invoice.PaidAmount.IsPositive() {
		invoice.Status = billing.DeriveStatus(invoice.Status, invoice.PaidAmount, totals.Total, input.DueDate, time.Now())
	} else {
		invoice.Status = input.Status
	}

	items := make([]entity.InvoiceItem, len(lines))
	for i, line := range lines {
		items[i] = entity.InvoiceItem{
			Description: line.Description,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			TotalAmount: totals.LineTotals[i],
		}
	}

	if err := s.invoiceRepo.ReplaceItems(ctx, invoice, items); err != nil {
		return nil, err
	}

	return invoice, nil
}

// DeleteInvoice deletes an invoice. Invoices with recorded payments are part
// of the financial record and cannot be removed.
func (s *InvoiceService) DeleteInvoice(ctx context.Context, id uuid.UUID) error {
	invoice, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if invoice == nil {
		return apperror.NewNotFoundError("Invoice")
	}
	if invoice.PaidAmount.IsPositive() {
		return apperror.ErrInvoiceLocked
	}
	return s.invoiceRepo.Delete(ctx, id)
}

// RefreshOverdue flips issued invoices past their due date to overdue.
// Runs on a timer from main and before dashboard aggregation.
func (s *InvoiceService) RefreshOverdue(ctx context.Context) (int64, error) {
	return s.invoiceRepo.MarkOverdue(ctx, time.Now())
}

// violationError converts edit violations into the API error shape. A lock
// violation is a conflict; everything else is an unprocessable edit.
func violationError(violations []billing.Violation) error {
	for _, v := range violations {
		if v.Rule == billing.RuleInvoiceLocked {
			return apperror.ErrInvoiceLocked
		}
	}

	fieldErrors := make([]apperror.FieldError, len(violations))
	for i, v := range violations {
		fieldErrors[i] = apperror.FieldError{Field: v.Rule, Message: v.Message}
	}
	return apperror.NewValidationError(fieldErrors)
}

// mapBillingError translates pure billing errors to API errors
func mapBillingError(err error) error {
	switch {
	case errors.Is(err, billing.ErrNoLineItems):
		return apperror.ErrNoLineItems
	case errors.Is(err, billing.ErrNegativeTotal):
		return apperror.ErrNegativeTotal
	case errors.Is(err, billing.ErrInvalidPaymentAmount):
		return apperror.ErrInvalidPaymentAmount
	case errors.Is(err, billing.ErrOverpaymentNotAllowed):
		return apperror.ErrOverpaymentNotAllowed
	default:
		return apperror.NewUnprocessableEntityError(err.Error())
	}
}
