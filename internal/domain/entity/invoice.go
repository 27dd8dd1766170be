package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nuwanwp/billora-api/internal/domain/enum"
	"github.com/nuwanwp/billora-api/pkg/money"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Invoice is a billing document with line items, tax, and a running
// paid/balance state. Paid and balance amounts are maintained exclusively
// by the payment ledger; the invariants balance = total - paid and
// total = subtotal + tax - discount hold for every persisted row.
type Invoice struct {
	ID             uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	UserID         uuid.UUID          `gorm:"type:uuid;not null;index" json:"user_id"`
	ClientID       uuid.UUID          `gorm:"type:uuid;not null;index" json:"client_id"`
	ProjectID      *uuid.UUID         `gorm:"type:uuid;index" json:"project_id,omitempty"`
	InvoiceNumber  string             `gorm:"size:50;uniqueIndex;not null" json:"invoice_number"`
	InvoiceDate    time.Time          `gorm:"type:date;not null" json:"invoice_date"`
	DueDate        time.Time          `gorm:"type:date;not null" json:"due_date"`
	Subtotal       decimal.Decimal    `gorm:"type:decimal(12,2);not null;default:0" json:"subtotal"`
	TaxRate        decimal.Decimal    `gorm:"type:decimal(5,2);not null;default:0" json:"tax_rate"`
	TaxAmount      decimal.Decimal    `gorm:"type:decimal(12,2);not null;default:0" json:"tax_amount"`
	DiscountRate   decimal.Decimal    `gorm:"type:decimal(5,2);not null;default:0" json:"discount_rate"`
	DiscountAmount decimal.Decimal    `gorm:"type:decimal(12,2);not null;default:0" json:"discount_amount"`
	TotalAmount    decimal.Decimal    `gorm:"type:decimal(12,2);not null;default:0" json:"total_amount"`
	PaidAmount     decimal.Decimal    `gorm:"type:decimal(12,2);not null;default:0" json:"paid_amount"`
	BalanceAmount  decimal.Decimal    `gorm:"type:decimal(12,2);not null;default:0" json:"balance_amount"`
	Status         enum.InvoiceStatus `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`
	Notes          *string            `gorm:"type:text" json:"notes,omitempty"`
	Version        int64              `gorm:"not null;default:1" json:"-"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
	DeletedAt      gorm.DeletedAt     `gorm:"index" json:"-"`

	// Relationships
	User     User          `gorm:"foreignKey:UserID" json:"-"`
	Client   Client        `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Project  *Project      `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Items    []InvoiceItem `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	Payments []Payment     `gorm:"foreignKey:InvoiceID" json:"payments,omitempty"`
}

// MarshalJSON adds display-formatted money fields for the presentation layer
func (i Invoice) MarshalJSON() ([]byte, error) {
	type Alias Invoice
	return json.Marshal(&struct {
		Alias
		TotalDisplay   string `json:"total_display"`
		BalanceDisplay string `json:"balance_display"`
		PaidDisplay    string `json:"paid_display"`
	}{
		Alias:          Alias(i),
		TotalDisplay:   money.FormatLKR(i.TotalAmount),
		BalanceDisplay: money.FormatLKR(i.BalanceAmount),
		PaidDisplay:    money.FormatLKR(i.PaidAmount),
	})
}

// BeforeCreate generates a UUID before creating a new invoice
func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Invoice model
func (Invoice) TableName() string {
	return "invoices"
}

// InvoiceItem is a line item on an invoice. The whole item set is replaced
// atomically when the invoice is edited.
type InvoiceItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"invoice_id"`
	Description string          `gorm:"size:500;not null" json:"description"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	// Relationships
	Invoice Invoice `gorm:"foreignKey:InvoiceID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new invoice item
func (ii *InvoiceItem) BeforeCreate(tx *gorm.DB) error {
	if ii.ID == uuid.Nil {
		ii.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the InvoiceItem model
func (InvoiceItem) TableName() string {
	return "invoice_items"
}

// InvoiceSequence backs atomic invoice-number allocation, one row per year.
type InvoiceSequence struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Year      int       `gorm:"uniqueIndex;not null" json:"year"`
	LastValue int64     `gorm:"not null;default:0" json:"last_value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new sequence row
func (s *InvoiceSequence) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the InvoiceSequence model
func (InvoiceSequence) TableName() string {
	return "invoice_sequences"
}
