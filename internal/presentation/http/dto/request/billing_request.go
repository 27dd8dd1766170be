package request

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Dates travel as "2006-01-02" strings and are parsed at the handler.

// CreateClientRequest represents a client creation request
type CreateClientRequest struct {
	CompanyName   string  `json:"company_name" binding:"required,min=2,max=255"`
	ContactPerson string  `json:"contact_person" binding:"required,min=2,max=255"`
	Email         *string `json:"email" binding:"omitempty,email"`
	Phone         *string `json:"phone"`
	AddressLine1  *string `json:"address_line1"`
	AddressLine2  *string `json:"address_line2"`
	City          *string `json:"city"`
}

// UpdateClientRequest represents a client update request
type UpdateClientRequest struct {
	CompanyName   *string `json:"company_name" binding:"omitempty,min=2,max=255"`
	ContactPerson *string `json:"contact_person" binding:"omitempty,min=2,max=255"`
	Email         *string `json:"email" binding:"omitempty,email"`
	Phone         *string `json:"phone"`
	AddressLine1  *string `json:"address_line1"`
	AddressLine2  *string `json:"address_line2"`
	City          *string `json:"city"`
	Active        *bool   `json:"active"`
}

// CreateProjectRequest represents a project creation request
type CreateProjectRequest struct {
	ClientID  uuid.UUID `json:"client_id" binding:"required"`
	Name      string    `json:"name" binding:"required,min=2,max=255"`
	Type      string    `json:"type"`
	StartDate *string   `json:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate   *string   `json:"end_date" binding:"omitempty,datetime=2006-01-02"`
	Notes     *string   `json:"notes"`
}

// UpdateProjectRequest represents a project update request
type UpdateProjectRequest struct {
	Name      *string `json:"name" binding:"omitempty,min=2,max=255"`
	Type      *string `json:"type"`
	StartDate *string `json:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate   *string `json:"end_date" binding:"omitempty,datetime=2006-01-02"`
	Status    *string `json:"status"`
	Notes     *string `json:"notes"`
}

// ProjectItemRequest represents a project line item create or update
type ProjectItemRequest struct {
	Name      string          `json:"name" binding:"required,min=1,max=255"`
	Type      string          `json:"type" binding:"omitempty,max=100"`
	Quantity  int             `json:"quantity" binding:"required,min=1"`
	UnitPrice decimal.Decimal `json:"unit_price" binding:"required"`
}

// InvoiceLineRequest represents one line item on an invoice request
type InvoiceLineRequest struct {
	Description string          `json:"description" binding:"required,min=1,max=500"`
	Quantity    int             `json:"quantity" binding:"required,min=1"`
	UnitPrice   decimal.Decimal `json:"unit_price" binding:"required"`
}

// CreateInvoiceRequest represents an invoice creation request
type CreateInvoiceRequest struct {
	ClientID     uuid.UUID            `json:"client_id" binding:"required"`
	ProjectID    *uuid.UUID           `json:"project_id"`
	InvoiceDate  string               `json:"invoice_date" binding:"required,datetime=2006-01-02"`
	DueDate      string               `json:"due_date" binding:"omitempty,datetime=2006-01-02"`
	Items        []InvoiceLineRequest `json:"items" binding:"required,min=1,dive"`
	TaxRate      decimal.Decimal      `json:"tax_rate"`
	DiscountRate decimal.Decimal      `json:"discount_rate"`
	Notes        *string              `json:"notes"`
	Issue        bool                 `json:"issue"`
}

// CreateInvoiceFromProjectRequest represents a create-from-project request
type CreateInvoiceFromProjectRequest struct {
	InvoiceDate  string          `json:"invoice_date" binding:"required,datetime=2006-01-02"`
	DueDate      string          `json:"due_date" binding:"omitempty,datetime=2006-01-02"`
	TaxRate      decimal.Decimal `json:"tax_rate"`
	DiscountRate decimal.Decimal `json:"discount_rate"`
	Notes        *string         `json:"notes"`
	Issue        bool            `json:"issue"`
}

// UpdateInvoiceRequest represents a full-replacement invoice edit
type UpdateInvoiceRequest struct {
	ClientID     uuid.UUID            `json:"client_id" binding:"required"`
	InvoiceDate  string               `json:"invoice_date" binding:"required,datetime=2006-01-02"`
	DueDate      string               `json:"due_date" binding:"required,datetime=2006-01-02"`
	Items        []InvoiceLineRequest `json:"items" binding:"required,min=1,dive"`
	TaxRate      decimal.Decimal      `json:"tax_rate"`
	DiscountRate decimal.Decimal      `json:"discount_rate"`
	Status       string               `json:"status" binding:"required"`
	Notes        *string              `json:"notes"`
}

// RecordPaymentRequest represents a payment recording request
type RecordPaymentRequest struct {
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	PaymentDate *string         `json:"payment_date" binding:"omitempty,datetime=2006-01-02"`
	Method      string          `json:"method" binding:"required,max=50"`
	Reference   *string         `json:"reference" binding:"omitempty,max=100"`
	Notes       *string         `json:"notes"`
}
