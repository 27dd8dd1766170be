package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nuwanwp/billora-api/internal/domain/entity"
	"github.com/nuwanwp/billora-api/internal/domain/repository"
	"github.com/nuwanwp/billora-api/pkg/money"
	"github.com/nuwanwp/billora-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// DashboardService provides dashboard statistics
type DashboardService struct {
	analyticsRepo repository.AnalyticsRepository
	clientRepo    repository.ClientRepository
	projectRepo   repository.ProjectRepository
	paymentRepo   repository.PaymentRepository
	invoiceSvc    *InvoiceService
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	analyticsRepo repository.AnalyticsRepository,
	clientRepo repository.ClientRepository,
	projectRepo repository.ProjectRepository,
	paymentRepo repository.PaymentRepository,
	invoiceSvc *InvoiceService,
) *DashboardService {
	return &DashboardService{
		analyticsRepo: analyticsRepo,
		clientRepo:    clientRepo,
		projectRepo:   projectRepo,
		paymentRepo:   paymentRepo,
		invoiceSvc:    invoiceSvc,
	}
}

// DashboardStats represents dashboard statistics
type DashboardStats struct {
	TotalClients       int64                                `json:"total_clients"`
	TotalProjects      int64                                `json:"total_projects"`
	InvoicesByStatus   []repository.StatusCountResult       `json:"invoices_by_status"`
	Outstanding        decimal.Decimal                      `json:"outstanding"`
	OutstandingDisplay string                               `json:"outstanding_display"`
	Overdue            decimal.Decimal                      `json:"overdue"`
	OverdueDisplay     string                               `json:"overdue_display"`
	CollectedThisMonth decimal.Decimal                      `json:"collected_this_month"`
	CollectedDisplay   string                               `json:"collected_display"`
	TopClients         []repository.TopClientResult         `json:"top_clients"`
	MonthlyCollections []repository.MonthlyCollectionResult `json:"monthly_collections"`
	RecentPayments     []entity.Payment                     `json:"recent_payments"`
}

// GetDashboardStats returns dashboard statistics for the user
func (s *DashboardService) GetDashboardStats(ctx context.Context, userID uuid.UUID) (*DashboardStats, error) {
	// Flip stale issued invoices before aggregating so the status
	// breakdown matches what the invoice list would show.
	if _, err := s.invoiceSvc.RefreshOverdue(ctx); err != nil {
		return nil, err
	}

	stats := &DashboardStats{}
	now := time.Now()

	countParams := pagination.DefaultPagination()
	countParams.PerPage = 1

	_, clientCount, err := s.clientRepo.List(ctx, userID, countParams, "", nil)
	if err != nil {
		return nil, err
	}
	stats.TotalClients = clientCount

	projectParams := &repository.ProjectFilterParams{Pagination: countParams}
	_, projectCount, err := s.projectRepo.List(ctx, userID, projectParams)
	if err != nil {
		return nil, err
	}
	stats.TotalProjects = projectCount

	stats.InvoicesByStatus, err = s.analyticsRepo.GetInvoiceStatusCounts(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats.Outstanding, err = s.analyticsRepo.GetOutstandingBalance(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats.OutstandingDisplay = money.FormatLKR(stats.Outstanding)

	stats.Overdue, err = s.analyticsRepo.GetOverdueBalance(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	stats.OverdueDisplay = money.FormatLKR(stats.Overdue)

	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	stats.CollectedThisMonth, err = s.analyticsRepo.GetCollectedSince(ctx, userID, startOfMonth)
	if err != nil {
		return nil, err
	}
	stats.CollectedDisplay = money.FormatLKR(stats.CollectedThisMonth)

	stats.TopClients, err = s.analyticsRepo.GetTopClients(ctx, userID, 5)
	if err != nil {
		return nil, err
	}

	stats.MonthlyCollections, err = s.analyticsRepo.GetMonthlyCollections(ctx, userID, 6)
	if err != nil {
		return nil, err
	}

	stats.RecentPayments, err = s.paymentRepo.ListRecent(ctx, userID, 10)
	if err != nil {
		return nil, err
	}

	return stats, nil
}
