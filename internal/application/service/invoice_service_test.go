package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nuwanwp/billora-api/internal/domain/entity"
	"github.com/nuwanwp/billora-api/internal/domain/enum"
	infraRepo "github.com/nuwanwp/billora-api/internal/infrastructure/repository"
	"github.com/nuwanwp/billora-api/pkg/apperror"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type serviceFixture struct {
	clientRepo  *fakeClientRepo
	projectRepo *fakeProjectRepo
	itemRepo    *fakeProjectItemRepo
	invoiceRepo *fakeInvoiceRepo
	paymentRepo *fakePaymentRepo

	invoiceSvc *InvoiceService
	paymentSvc *PaymentService
	projectSvc *ProjectService

	userID   uuid.UUID
	clientID uuid.UUID
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	f := &serviceFixture{
		clientRepo:  newFakeClientRepo(),
		projectRepo: newFakeProjectRepo(),
		itemRepo:    newFakeProjectItemRepo(),
		invoiceRepo: newFakeInvoiceRepo(),
		userID:      uuid.New(),
	}
	f.paymentRepo = &fakePaymentRepo{invoiceRepo: f.invoiceRepo}
	f.invoiceSvc = NewInvoiceService(f.invoiceRepo, f.projectRepo, f.itemRepo, f.clientRepo, 14)
	f.paymentSvc = NewPaymentService(f.invoiceRepo, f.paymentRepo)
	f.projectSvc = NewProjectService(f.projectRepo, f.itemRepo, f.clientRepo)

	client := &entity.Client{
		UserID:        f.userID,
		CompanyName:   "Lanka Designs",
		ContactPerson: "Nadeesha Perera",
		Active:        true,
	}
	require.NoError(t, f.clientRepo.Create(context.Background(), client))
	f.clientID = client.ID

	return f
}

func (f *serviceFixture) createInvoice(t *testing.T, items []InvoiceLineInput, taxRate, discountRate decimal.Decimal) *entity.Invoice {
	t.Helper()

	inv, err := f.invoiceSvc.CreateInvoice(context.Background(), &CreateInvoiceInput{
		UserID:       f.userID,
		ClientID:     f.clientID,
		InvoiceDate:  time.Now(),
		DueDate:      time.Now().AddDate(0, 0, 14),
		Items:        items,
		TaxRate:      taxRate,
		DiscountRate: discountRate,
		Issue:        true,
	})
	require.NoError(t, err)
	return inv
}

func TestCreateInvoiceComputesTotals(t *testing.T) {
	f := newServiceFixture(t)

	inv := f.createInvoice(t, []InvoiceLineInput{
		{Description: "Logo design", Quantity: 2, UnitPrice: decimal.NewFromInt(500)},
		{Description: "Business cards", Quantity: 1, UnitPrice: decimal.NewFromInt(1000)},
	}, decimal.NewFromInt(10), decimal.Zero)

	assert.True(t, inv.Subtotal.Equal(decimal.NewFromInt(2000)), "subtotal %s", inv.Subtotal)
	assert.True(t, inv.TaxAmount.Equal(decimal.NewFromInt(200)))
	assert.True(t, inv.TotalAmount.Equal(decimal.NewFromInt(2200)))
	assert.True(t, inv.BalanceAmount.Equal(inv.TotalAmount))
	assert.True(t, inv.PaidAmount.IsZero())
	assert.Equal(t, enum.InvoiceStatusSent, inv.Status)
}

func TestCreateInvoiceAllocatesSequentialNumbers(t *testing.T) {
	f := newServiceFixture(t)

	items := []InvoiceLineInput{{Description: "Retainer", Quantity: 1, UnitPrice: decimal.NewFromInt(100)}}
	first := f.createInvoice(t, items, decimal.Zero, decimal.Zero)
	second := f.createInvoice(t, items, decimal.Zero, decimal.Zero)

	year := time.Now().Year()
	assert.Equal(t, fmt.Sprintf("INV-%d-0001", year), first.InvoiceNumber)
	assert.Equal(t, fmt.Sprintf("INV-%d-0002", year), second.InvoiceNumber)
}

func TestCreateInvoiceDefaultsDueDate(t *testing.T) {
	f := newServiceFixture(t)

	invoiceDate := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	inv, err := f.invoiceSvc.CreateInvoice(context.Background(), &CreateInvoiceInput{
		UserID:      f.userID,
		ClientID:    f.clientID,
		InvoiceDate: invoiceDate,
		Items: []InvoiceLineInput{
			{Description: "Flyer design", Quantity: 1, UnitPrice: decimal.NewFromInt(150)},
		},
	})
	require.NoError(t, err)

	// No due date on the request: the configured payment term applies.
	assert.Equal(t, invoiceDate.AddDate(0, 0, 14), inv.DueDate)
}

func TestCreateInvoiceFullyDiscountedSettlesOnIssue(t *testing.T) {
	f := newServiceFixture(t)

	// A 100% discount leaves nothing to collect, so issuing the invoice
	// settles it immediately instead of stranding it as forever-sent.
	inv := f.createInvoice(t, []InvoiceLineInput{
		{Description: "Goodwill rework", Quantity: 1, UnitPrice: decimal.NewFromInt(500)},
	}, decimal.Zero, decimal.NewFromInt(100))

	assert.True(t, inv.TotalAmount.IsZero())
	assert.Equal(t, enum.InvoiceStatusPaid, inv.Status)

	_, err := f.paymentSvc.RecordPayment(context.Background(), &RecordPaymentInput{
		InvoiceID: inv.ID,
		Amount:    decimal.NewFromInt(1),
		Method:    "cash",
	})
	assert.ErrorIs(t, err, apperror.ErrOverpaymentNotAllowed)
}

func TestCreateInvoiceRejectsEmptyItems(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.invoiceSvc.CreateInvoice(context.Background(), &CreateInvoiceInput{
		UserID:      f.userID,
		ClientID:    f.clientID,
		InvoiceDate: time.Now(),
		DueDate:     time.Now().AddDate(0, 0, 14),
	})
	assert.ErrorIs(t, err, apperror.ErrNoLineItems)
}

func TestCreateFromProjectCopiesItems(t *testing.T) {
	f := newServiceFixture(t)

	project := &entity.Project{
		UserID:   f.userID,
		ClientID: f.clientID,
		Name:     "Website revamp",
		Type:     enum.ProjectTypeWebsite,
		Status:   enum.ProjectStatusInProgress,
	}
	require.NoError(t, f.projectRepo.Create(context.Background(), project))

	item, err := f.projectSvc.AddItem(context.Background(), project.ID, &ProjectItemInput{
		Name:      "Landing page",
		Quantity:  3,
		UnitPrice: decimal.NewFromInt(400),
	})
	require.NoError(t, err)

	inv, err := f.invoiceSvc.CreateFromProject(context.Background(), &CreateFromProjectInput{
		UserID:      f.userID,
		ProjectID:   project.ID,
		InvoiceDate: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		DueDate:     time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	require.Len(t, inv.Items, 1)
	assert.Equal(t, "Landing page", inv.Items[0].Description)
	assert.True(t, inv.TotalAmount.Equal(decimal.NewFromInt(1200)))
	require.NotNil(t, inv.ProjectID)
	assert.Equal(t, project.ID, *inv.ProjectID)

	// Later edits to the project item leave the created invoice untouched.
	_, err = f.projectSvc.UpdateItem(context.Background(), project.ID, item.ID, &ProjectItemInput{
		Name:      "Landing page",
		Quantity:  10,
		UnitPrice: decimal.NewFromInt(400),
	})
	require.NoError(t, err)

	stored, err := f.invoiceSvc.GetInvoice(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.True(t, stored.TotalAmount.Equal(decimal.NewFromInt(1200)))
}

func TestRecordPaymentLifecycle(t *testing.T) {
	f := newServiceFixture(t)

	inv := f.createInvoice(t, []InvoiceLineInput{
		{Description: "Brand kit", Quantity: 1, UnitPrice: decimal.NewFromInt(2200)},
	}, decimal.Zero, decimal.Zero)

	// Partial payment.
	result, err := f.paymentSvc.RecordPayment(context.Background(), &RecordPaymentInput{
		InvoiceID: inv.ID,
		Amount:    decimal.NewFromInt(1000),
		Method:    "bank_transfer",
	})
	require.NoError(t, err)
	assert.True(t, result.Invoice.PaidAmount.Equal(decimal.NewFromInt(1000)))
	assert.True(t, result.Invoice.BalanceAmount.Equal(decimal.NewFromInt(1200)))
	assert.Equal(t, enum.InvoiceStatusPartiallyPaid, result.Invoice.Status)

	// Settle the rest.
	result, err = f.paymentSvc.RecordPayment(context.Background(), &RecordPaymentInput{
		InvoiceID: inv.ID,
		Amount:    decimal.NewFromInt(1200),
		Method:    "cash",
	})
	require.NoError(t, err)
	assert.True(t, result.Invoice.BalanceAmount.IsZero())
	assert.Equal(t, enum.InvoiceStatusPaid, result.Invoice.Status)

	payments, err := f.paymentSvc.ListPayments(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.Len(t, payments, 2)
}

func TestRecordPaymentRejectsOverpayment(t *testing.T) {
	f := newServiceFixture(t)

	inv := f.createInvoice(t, []InvoiceLineInput{
		{Description: "Hosting", Quantity: 1, UnitPrice: decimal.NewFromInt(500)},
	}, decimal.Zero, decimal.Zero)

	_, err := f.paymentSvc.RecordPayment(context.Background(), &RecordPaymentInput{
		InvoiceID: inv.ID,
		Amount:    decimal.NewFromInt(600),
		Method:    "cash",
	})
	assert.ErrorIs(t, err, apperror.ErrOverpaymentNotAllowed)

	_, err = f.paymentSvc.RecordPayment(context.Background(), &RecordPaymentInput{
		InvoiceID: inv.ID,
		Amount:    decimal.Zero,
		Method:    "cash",
	})
	assert.ErrorIs(t, err, apperror.ErrInvalidPaymentAmount)

	// Nothing was recorded.
	payments, err := f.paymentSvc.ListPayments(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.Empty(t, payments)
}

func TestRecordPaymentScopedToInvoiceOwner(t *testing.T) {
	f := newServiceFixture(t)

	inv := f.createInvoice(t, []InvoiceLineInput{
		{Description: "SEO retainer", Quantity: 1, UnitPrice: decimal.NewFromInt(750)},
	}, decimal.Zero, decimal.Zero)

	// Another authenticated user holding the invoice ID cannot pay into it;
	// the owner-scoped lookup reads it as missing.
	intruderCtx := infraRepo.WithOwner(context.Background(), uuid.New())
	_, err := f.paymentSvc.RecordPayment(intruderCtx, &RecordPaymentInput{
		InvoiceID: inv.ID,
		Amount:    decimal.NewFromInt(100),
		Method:    "cash",
	})
	require.Error(t, err)
	appErr := apperror.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, 404, appErr.Code)

	payments, err := f.paymentSvc.ListPayments(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.Empty(t, payments)

	// The owner succeeds on the same invoice.
	ownerCtx := infraRepo.WithOwner(context.Background(), f.userID)
	result, err := f.paymentSvc.RecordPayment(ownerCtx, &RecordPaymentInput{
		InvoiceID: inv.ID,
		Amount:    decimal.NewFromInt(100),
		Method:    "cash",
	})
	require.NoError(t, err)
	assert.True(t, result.Invoice.PaidAmount.Equal(decimal.NewFromInt(100)))
}

func TestUpdateInvoiceCannotForcePaidStatus(t *testing.T) {
	f := newServiceFixture(t)

	inv := f.createInvoice(t, []InvoiceLineInput{
		{Description: "Copywriting", Quantity: 1, UnitPrice: decimal.NewFromInt(400)},
	}, decimal.Zero, decimal.Zero)

	// No payments recorded: marking it paid by hand would lock the invoice
	// with money still owed.
	_, err := f.invoiceSvc.UpdateInvoice(context.Background(), &UpdateInvoiceInput{
		ID:          inv.ID,
		ClientID:    f.clientID,
		InvoiceDate: inv.InvoiceDate,
		DueDate:     inv.DueDate,
		Items: []InvoiceLineInput{
			{Description: "Copywriting", Quantity: 1, UnitPrice: decimal.NewFromInt(400)},
		},
		Status: enum.InvoiceStatusPaid,
	})
	require.Error(t, err)

	appErr := apperror.GetAppError(err)
	require.NotNil(t, appErr)
	found := false
	for _, fe := range appErr.Errors {
		if fe.Field == "status_managed_by_ledger" {
			found = true
		}
	}
	assert.True(t, found, "expected a status_managed_by_ledger violation, got %+v", appErr)

	stored, err := f.invoiceSvc.GetInvoice(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.InvoiceStatusSent, stored.Status)
}

func TestUpdateInvoiceLockedWhenPaid(t *testing.T) {
	f := newServiceFixture(t)

	inv := f.createInvoice(t, []InvoiceLineInput{
		{Description: "Consulting", Quantity: 1, UnitPrice: decimal.NewFromInt(300)},
	}, decimal.Zero, decimal.Zero)

	_, err := f.paymentSvc.RecordPayment(context.Background(), &RecordPaymentInput{
		InvoiceID: inv.ID,
		Amount:    decimal.NewFromInt(300),
		Method:    "cash",
	})
	require.NoError(t, err)

	_, err = f.invoiceSvc.UpdateInvoice(context.Background(), &UpdateInvoiceInput{
		ID:          inv.ID,
		ClientID:    f.clientID,
		InvoiceDate: inv.InvoiceDate,
		DueDate:     inv.DueDate,
		Items: []InvoiceLineInput{
			{Description: "Consulting", Quantity: 2, UnitPrice: decimal.NewFromInt(300)},
		},
		Status: enum.InvoiceStatusPaid,
	})
	assert.ErrorIs(t, err, apperror.ErrInvoiceLocked)
}

func TestUpdateInvoiceRejectsTotalBelowPaid(t *testing.T) {
	f := newServiceFixture(t)

	inv := f.createInvoice(t, []InvoiceLineInput{
		{Description: "Campaign", Quantity: 1, UnitPrice: decimal.NewFromInt(1000)},
	}, decimal.Zero, decimal.Zero)

	_, err := f.paymentSvc.RecordPayment(context.Background(), &RecordPaymentInput{
		InvoiceID: inv.ID,
		Amount:    decimal.NewFromInt(800),
		Method:    "bank_transfer",
	})
	require.NoError(t, err)

	_, err = f.invoiceSvc.UpdateInvoice(context.Background(), &UpdateInvoiceInput{
		ID:          inv.ID,
		ClientID:    f.clientID,
		InvoiceDate: inv.InvoiceDate,
		DueDate:     inv.DueDate,
		Items: []InvoiceLineInput{
			{Description: "Campaign", Quantity: 1, UnitPrice: decimal.NewFromInt(500)},
		},
		Status: enum.InvoiceStatusPartiallyPaid,
	})
	require.Error(t, err)

	appErr := apperror.GetAppError(err)
	require.NotNil(t, appErr)
	found := false
	for _, fe := range appErr.Errors {
		if fe.Field == "total_below_paid_amount" {
			found = true
		}
	}
	assert.True(t, found, "expected a total_below_paid_amount violation, got %+v", appErr)
}

func TestUpdateInvoiceRecomputesTotalsAndBalance(t *testing.T) {
	f := newServiceFixture(t)

	inv := f.createInvoice(t, []InvoiceLineInput{
		{Description: "Design", Quantity: 1, UnitPrice: decimal.NewFromInt(1000)},
	}, decimal.Zero, decimal.Zero)

	updated, err := f.invoiceSvc.UpdateInvoice(context.Background(), &UpdateInvoiceInput{
		ID:          inv.ID,
		ClientID:    f.clientID,
		InvoiceDate: inv.InvoiceDate,
		DueDate:     inv.DueDate,
		Items: []InvoiceLineInput{
			{Description: "Design", Quantity: 2, UnitPrice: decimal.NewFromInt(1000)},
		},
		TaxRate: decimal.NewFromInt(10),
		Status:  enum.InvoiceStatusSent,
	})
	require.NoError(t, err)

	assert.True(t, updated.TotalAmount.Equal(decimal.NewFromInt(2200)))
	assert.True(t, updated.BalanceAmount.Equal(decimal.NewFromInt(2200)))
	assert.Equal(t, int64(2), updated.Version)
}

func TestDeleteInvoiceRefusedAfterPayment(t *testing.T) {
	f := newServiceFixture(t)

	inv := f.createInvoice(t, []InvoiceLineInput{
		{Description: "Audit", Quantity: 1, UnitPrice: decimal.NewFromInt(100)},
	}, decimal.Zero, decimal.Zero)

	_, err := f.paymentSvc.RecordPayment(context.Background(), &RecordPaymentInput{
		InvoiceID: inv.ID,
		Amount:    decimal.NewFromInt(50),
		Method:    "cash",
	})
	require.NoError(t, err)

	err = f.invoiceSvc.DeleteInvoice(context.Background(), inv.ID)
	assert.ErrorIs(t, err, apperror.ErrInvoiceLocked)
}

func TestProjectCancellationBlockedByPaidInvoices(t *testing.T) {
	f := newServiceFixture(t)

	project := &entity.Project{
		UserID:   f.userID,
		ClientID: f.clientID,
		Name:     "Social media push",
		Type:     enum.ProjectTypeSocialMedia,
		Status:   enum.ProjectStatusInProgress,
	}
	require.NoError(t, f.projectRepo.Create(context.Background(), project))
	f.projectRepo.hasPaid[project.ID] = true

	cancelled := enum.ProjectStatusCancelled
	_, err := f.projectSvc.UpdateProject(context.Background(), &UpdateProjectInput{
		ID:     project.ID,
		Status: &cancelled,
	})
	assert.ErrorIs(t, err, apperror.ErrProjectHasPaidInvoices)
}

func TestGetInvoiceDerivesOverdueOnRead(t *testing.T) {
	f := newServiceFixture(t)

	inv, err := f.invoiceSvc.CreateInvoice(context.Background(), &CreateInvoiceInput{
		UserID:      f.userID,
		ClientID:    f.clientID,
		InvoiceDate: time.Now().AddDate(0, -1, 0),
		DueDate:     time.Now().AddDate(0, 0, -1),
		Items: []InvoiceLineInput{
			{Description: "Maintenance", Quantity: 1, UnitPrice: decimal.NewFromInt(100)},
		},
		Issue: true,
	})
	require.NoError(t, err)

	stored, err := f.invoiceSvc.GetInvoice(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.InvoiceStatusOverdue, stored.Status)
}

func TestRefreshOverdueFlipsStoredStatus(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.invoiceSvc.CreateInvoice(context.Background(), &CreateInvoiceInput{
		UserID:      f.userID,
		ClientID:    f.clientID,
		InvoiceDate: time.Now().AddDate(0, -1, 0),
		DueDate:     time.Now().AddDate(0, 0, -2),
		Items: []InvoiceLineInput{
			{Description: "Support", Quantity: 1, UnitPrice: decimal.NewFromInt(250)},
		},
		Issue: true,
	})
	require.NoError(t, err)

	flipped, err := f.invoiceSvc.RefreshOverdue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), flipped)
}
