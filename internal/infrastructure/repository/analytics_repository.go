package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	domainRepo "github.com/nuwanwp/billora-api/internal/domain/repository"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type analyticsRepository struct {
	db *gorm.DB
}

// NewAnalyticsRepository creates a new analytics repository
func NewAnalyticsRepository(db *gorm.DB) domainRepo.AnalyticsRepository {
	return &analyticsRepository{db: db}
}

func (r *analyticsRepository) GetInvoiceStatusCounts(ctx context.Context, userID uuid.UUID) ([]domainRepo.StatusCountResult, error) {
	var results []domainRepo.StatusCountResult

	err := r.db.WithContext(ctx).Raw(`
		SELECT status, COUNT(*) as count
		FROM invoices
		WHERE user_id = ? AND deleted_at IS NULL
		GROUP BY status
	`, userID).Scan(&results).Error

	if err != nil {
		return nil, err
	}

	return results, nil
}

func (r *analyticsRepository) GetOutstandingBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := r.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(balance_amount), 0)
		FROM invoices
		WHERE user_id = ? AND deleted_at IS NULL
		AND status IN ('sent', 'partially_paid', 'overdue')
	`, userID).Scan(&balance).Error

	return balance, err
}

func (r *analyticsRepository) GetOverdueBalance(ctx context.Context, userID uuid.UUID, now time.Time) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := r.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(balance_amount), 0)
		FROM invoices
		WHERE user_id = ? AND deleted_at IS NULL
		AND status IN ('sent', 'partially_paid', 'overdue')
		AND due_date < ?
	`, userID, now).Scan(&balance).Error

	return balance, err
}

func (r *analyticsRepository) GetCollectedSince(ctx context.Context, userID uuid.UUID, since time.Time) (decimal.Decimal, error) {
	var collected decimal.Decimal
	err := r.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(p.amount), 0)
		FROM payments p
		JOIN invoices i ON i.id = p.invoice_id
		WHERE i.user_id = ? AND p.payment_date >= ?
	`, userID, since).Scan(&collected).Error

	return collected, err
}

func (r *analyticsRepository) GetTopClients(ctx context.Context, userID uuid.UUID, limit int) ([]domainRepo.TopClientResult, error) {
	var results []domainRepo.TopClientResult

	err := r.db.WithContext(ctx).Raw(`
		SELECT
			c.id as client_id,
			c.company_name,
			COALESCE(SUM(i.total_amount), 0) as total_billed,
			COALESCE(SUM(i.paid_amount), 0) as total_paid,
			COUNT(i.id) as invoice_count
		FROM invoices i
		JOIN clients c ON c.id = i.client_id
		WHERE i.user_id = ? AND i.deleted_at IS NULL
		GROUP BY c.id, c.company_name
		ORDER BY total_billed DESC
		LIMIT ?
	`, userID, limit).Scan(&results).Error

	if err != nil {
		return nil, err
	}

	return results, nil
}

func (r *analyticsRepository) GetMonthlyCollections(ctx context.Context, userID uuid.UUID, months int) ([]domainRepo.MonthlyCollectionResult, error) {
	results := make([]domainRepo.MonthlyCollectionResult, 0, months)
	now := time.Now()

	for i := months - 1; i >= 0; i-- {
		startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -i, 0)
		endOfMonth := startOfMonth.AddDate(0, 1, 0)

		var collected decimal.Decimal
		err := r.db.WithContext(ctx).Raw(`
			SELECT COALESCE(SUM(p.amount), 0)
			FROM payments p
			JOIN invoices i ON i.id = p.invoice_id
			WHERE i.user_id = ?
			AND p.payment_date >= ? AND p.payment_date < ?
		`, userID, startOfMonth, endOfMonth).Scan(&collected).Error

		if err != nil {
			return nil, err
		}

		results = append(results, domainRepo.MonthlyCollectionResult{
			Month:     startOfMonth,
			Collected: collected,
		})
	}

	return results, nil
}
