package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/nuwanwp/billora-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Project represents a unit of client work that may be billed via invoices
type Project struct {
	ID          uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	UserID      uuid.UUID          `gorm:"type:uuid;not null;index" json:"user_id"`
	ClientID    uuid.UUID          `gorm:"type:uuid;not null;index" json:"client_id"`
	Name        string             `gorm:"size:255;not null" json:"name"`
	Type        enum.ProjectType   `gorm:"type:varchar(20);not null;default:'other'" json:"type"`
	StartDate   *time.Time         `gorm:"type:date" json:"start_date,omitempty"`
	EndDate     *time.Time         `gorm:"type:date" json:"end_date,omitempty"`
	TotalAmount decimal.Decimal    `gorm:"type:decimal(12,2);not null;default:0" json:"total_amount"`
	Status      enum.ProjectStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Notes       *string            `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
	DeletedAt   gorm.DeletedAt     `gorm:"index" json:"-"`

	// Relationships
	User     User          `gorm:"foreignKey:UserID" json:"-"`
	Client   Client        `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Items    []ProjectItem `gorm:"foreignKey:ProjectID" json:"items,omitempty"`
	Invoices []Invoice     `gorm:"foreignKey:ProjectID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new project
func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Project model
func (Project) TableName() string {
	return "projects"
}

// ProjectItem is a quantity x unit-price entry on a project. Items are only
// a template for drafting invoices; editing one never touches an invoice
// that was already created from it.
type ProjectItem struct {
	ID         uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	ProjectID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"project_id"`
	Name       string          `gorm:"size:255;not null" json:"name"`
	Type       string          `gorm:"size:100" json:"type"`
	Quantity   int             `gorm:"not null" json:"quantity"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_price"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	DeletedAt  gorm.DeletedAt  `gorm:"index" json:"-"`

	// Relationships
	Project Project `gorm:"foreignKey:ProjectID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new project item
func (pi *ProjectItem) BeforeCreate(tx *gorm.DB) error {
	if pi.ID == uuid.Nil {
		pi.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the ProjectItem model
func (ProjectItem) TableName() string {
	return "project_items"
}
