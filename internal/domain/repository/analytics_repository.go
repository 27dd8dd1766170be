package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StatusCountResult represents the invoice count in one status
type StatusCountResult struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// TopClientResult represents a client's billed and collected totals
type TopClientResult struct {
	ClientID     uuid.UUID       `json:"client_id"`
	CompanyName  string          `json:"company_name"`
	TotalBilled  decimal.Decimal `json:"total_billed"`
	TotalPaid    decimal.Decimal `json:"total_paid"`
	InvoiceCount int64           `json:"invoice_count"`
}

// MonthlyCollectionResult represents money collected in one calendar month
type MonthlyCollectionResult struct {
	Month     time.Time       `json:"month"`
	Collected decimal.Decimal `json:"collected"`
}

// AnalyticsRepository defines the interface for billing aggregation queries.
// All queries are scoped to one user's data.
type AnalyticsRepository interface {
	// GetInvoiceStatusCounts returns the invoice count per status
	GetInvoiceStatusCounts(ctx context.Context, userID uuid.UUID) ([]StatusCountResult, error)

	// GetOutstandingBalance returns the summed balance of unpaid invoices
	GetOutstandingBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error)

	// GetOverdueBalance returns the summed balance of overdue invoices
	GetOverdueBalance(ctx context.Context, userID uuid.UUID, now time.Time) (decimal.Decimal, error)

	// GetCollectedSince returns payments received on or after the cutoff
	GetCollectedSince(ctx context.Context, userID uuid.UUID, since time.Time) (decimal.Decimal, error)

	// GetTopClients returns clients ranked by billed total
	GetTopClients(ctx context.Context, userID uuid.UUID, limit int) ([]TopClientResult, error)

	// GetMonthlyCollections returns collected totals for the last N months
	GetMonthlyCollections(ctx context.Context, userID uuid.UUID, months int) ([]MonthlyCollectionResult, error)
}
