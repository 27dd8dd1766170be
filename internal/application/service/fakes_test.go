package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nuwanwp/billora-api/internal/domain/billing"
	"github.com/nuwanwp/billora-api/internal/domain/entity"
	"github.com/nuwanwp/billora-api/internal/domain/enum"
	"github.com/nuwanwp/billora-api/internal/domain/repository"
	infraRepo "github.com/nuwanwp/billora-api/internal/infrastructure/repository"
	"github.com/nuwanwp/billora-api/pkg/apperror"
	"github.com/nuwanwp/billora-api/pkg/pagination"
)

// In-memory repository fakes. They mirror the transactional guarantees of
// the Postgres implementations closely enough for service-level tests:
// number allocation is sequential, item replacement bumps the version, and
// payment recording runs the apply callback against the stored invoice.

type fakeClientRepo struct {
	clients  map[uuid.UUID]*entity.Client
	invoiced map[uuid.UUID]bool
}

func newFakeClientRepo() *fakeClientRepo {
	return &fakeClientRepo{
		clients:  make(map[uuid.UUID]*entity.Client),
		invoiced: make(map[uuid.UUID]bool),
	}
}

func (f *fakeClientRepo) Create(_ context.Context, c *entity.Client) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	f.clients[c.ID] = c
	return nil
}

func (f *fakeClientRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Client, error) {
	return f.clients[id], nil
}

func (f *fakeClientRepo) Update(_ context.Context, c *entity.Client) error {
	f.clients[c.ID] = c
	return nil
}

func (f *fakeClientRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.clients, id)
	return nil
}

func (f *fakeClientRepo) List(_ context.Context, _ uuid.UUID, _ *pagination.PaginationParams, _ string, _ *bool) ([]entity.Client, int64, error) {
	out := make([]entity.Client, 0, len(f.clients))
	for _, c := range f.clients {
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

func (f *fakeClientRepo) HasInvoices(_ context.Context, id uuid.UUID) (bool, error) {
	return f.invoiced[id], nil
}

type fakeProjectRepo struct {
	projects map[uuid.UUID]*entity.Project
	hasPaid  map[uuid.UUID]bool
}

func newFakeProjectRepo() *fakeProjectRepo {
	return &fakeProjectRepo{
		projects: make(map[uuid.UUID]*entity.Project),
		hasPaid:  make(map[uuid.UUID]bool),
	}
}

func (f *fakeProjectRepo) Create(_ context.Context, p *entity.Project) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	f.projects[p.ID] = p
	return nil
}

func (f *fakeProjectRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Project, error) {
	return f.projects[id], nil
}

func (f *fakeProjectRepo) GetWithItems(_ context.Context, id uuid.UUID) (*entity.Project, error) {
	return f.projects[id], nil
}

func (f *fakeProjectRepo) Update(_ context.Context, p *entity.Project) error {
	f.projects[p.ID] = p
	return nil
}

func (f *fakeProjectRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.projects, id)
	return nil
}

func (f *fakeProjectRepo) List(_ context.Context, _ uuid.UUID, _ *repository.ProjectFilterParams) ([]entity.Project, int64, error) {
	out := make([]entity.Project, 0, len(f.projects))
	for _, p := range f.projects {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (f *fakeProjectRepo) HasPaidInvoices(_ context.Context, id uuid.UUID) (bool, error) {
	return f.hasPaid[id], nil
}

type fakeProjectItemRepo struct {
	items map[uuid.UUID]*entity.ProjectItem
}

func newFakeProjectItemRepo() *fakeProjectItemRepo {
	return &fakeProjectItemRepo{items: make(map[uuid.UUID]*entity.ProjectItem)}
}

func (f *fakeProjectItemRepo) Create(_ context.Context, item *entity.ProjectItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	f.items[item.ID] = item
	return nil
}

func (f *fakeProjectItemRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.ProjectItem, error) {
	return f.items[id], nil
}

func (f *fakeProjectItemRepo) GetByProjectID(_ context.Context, projectID uuid.UUID) ([]entity.ProjectItem, error) {
	var out []entity.ProjectItem
	for _, item := range f.items {
		if item.ProjectID == projectID {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (f *fakeProjectItemRepo) Update(_ context.Context, item *entity.ProjectItem) error {
	f.items[item.ID] = item
	return nil
}

func (f *fakeProjectItemRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.items, id)
	return nil
}

type fakeInvoiceRepo struct {
	invoices map[uuid.UUID]*entity.Invoice
	payments []*entity.Payment
	seqs     map[int]int64
}

func newFakeInvoiceRepo() *fakeInvoiceRepo {
	return &fakeInvoiceRepo{
		invoices: make(map[uuid.UUID]*entity.Invoice),
		seqs:     make(map[int]int64),
	}
}

func (f *fakeInvoiceRepo) CreateWithNumber(_ context.Context, inv *entity.Invoice, year int) error {
	f.seqs[year]++
	inv.InvoiceNumber = billing.FormatInvoiceNumber(year, f.seqs[year])
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	stored := *inv
	stored.Items = append([]entity.InvoiceItem(nil), inv.Items...)
	f.invoices[inv.ID] = &stored
	return nil
}

func (f *fakeInvoiceRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Invoice, error) {
	inv, ok := f.invoices[id]
	if !ok {
		return nil, nil
	}
	out := *inv
	return &out, nil
}

func (f *fakeInvoiceRepo) GetWithItems(_ context.Context, id uuid.UUID) (*entity.Invoice, error) {
	inv, ok := f.invoices[id]
	if !ok {
		return nil, nil
	}
	out := *inv
	out.Items = append([]entity.InvoiceItem(nil), inv.Items...)
	return &out, nil
}

func (f *fakeInvoiceRepo) List(_ context.Context, userID uuid.UUID, _ *repository.InvoiceFilterParams) ([]entity.Invoice, int64, error) {
	var out []entity.Invoice
	for _, inv := range f.invoices {
		if inv.UserID == userID {
			out = append(out, *inv)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeInvoiceRepo) ReplaceItems(_ context.Context, inv *entity.Invoice, items []entity.InvoiceItem) error {
	stored, ok := f.invoices[inv.ID]
	if !ok {
		return apperror.NewNotFoundError("Invoice")
	}
	if stored.Version != inv.Version {
		return apperror.ErrConcurrentModification
	}
	updated := *inv
	updated.Version++
	updated.Items = append([]entity.InvoiceItem(nil), items...)
	f.invoices[inv.ID] = &updated
	inv.Version = updated.Version
	inv.Items = updated.Items
	return nil
}

func (f *fakeInvoiceRepo) RecordPayment(ctx context.Context, invoiceID uuid.UUID, payment *entity.Payment, apply func(inv *entity.Invoice) error) (*entity.Invoice, error) {
	stored, ok := f.invoices[invoiceID]
	if !ok {
		return nil, apperror.NewNotFoundError("Invoice")
	}
	// Mirrors the owner-scoped locked lookup: a foreign owner in context
	// sees the invoice as missing.
	if owner, scoped := infraRepo.GetOwnerID(ctx); scoped && owner != stored.UserID {
		return nil, apperror.NewNotFoundError("Invoice")
	}
	if err := apply(stored); err != nil {
		return nil, err
	}
	payment.InvoiceID = invoiceID
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	f.payments = append(f.payments, payment)
	stored.Version++
	out := *stored
	return &out, nil
}

func (f *fakeInvoiceRepo) CountByProject(_ context.Context, projectID uuid.UUID, excludeID *uuid.UUID) (int64, error) {
	var count int64
	for _, inv := range f.invoices {
		if inv.ProjectID == nil || *inv.ProjectID != projectID {
			continue
		}
		if excludeID != nil && inv.ID == *excludeID {
			continue
		}
		count++
	}
	return count, nil
}

func (f *fakeInvoiceRepo) MarkOverdue(_ context.Context, now time.Time) (int64, error) {
	var count int64
	for _, inv := range f.invoices {
		pastDue := inv.DueDate.Before(now)
		unpaid := inv.PaidAmount.LessThan(inv.TotalAmount)
		issued := inv.Status == enum.InvoiceStatusSent || inv.Status == enum.InvoiceStatusPartiallyPaid
		if issued && pastDue && unpaid {
			inv.Status = enum.InvoiceStatusOverdue
			count++
		}
	}
	return count, nil
}

func (f *fakeInvoiceRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.invoices, id)
	return nil
}

type fakePaymentRepo struct {
	invoiceRepo *fakeInvoiceRepo
}

func (f *fakePaymentRepo) ListByInvoice(_ context.Context, invoiceID uuid.UUID) ([]entity.Payment, error) {
	var out []entity.Payment
	for _, p := range f.invoiceRepo.payments {
		if p.InvoiceID == invoiceID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePaymentRepo) ListRecent(_ context.Context, _ uuid.UUID, limit int) ([]entity.Payment, error) {
	var out []entity.Payment
	for i := len(f.invoiceRepo.payments) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, *f.invoiceRepo.payments[i])
	}
	return out, nil
}
