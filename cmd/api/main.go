package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nuwanwp/billora-api/internal/application/service"
	"github.com/nuwanwp/billora-api/internal/config"
	domainRepo "github.com/nuwanwp/billora-api/internal/domain/repository"
	"github.com/nuwanwp/billora-api/internal/infrastructure/database"
	"github.com/nuwanwp/billora-api/internal/infrastructure/repository"
	"github.com/nuwanwp/billora-api/internal/presentation/http/handler"
	"github.com/nuwanwp/billora-api/internal/presentation/http/routes"
	"github.com/nuwanwp/billora-api/pkg/utils"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Seed default data
	if err := database.SeedDefaultData(db); err != nil {
		log.Printf("Warning: Failed to seed default data: %v", err)
	}

	// Initialize JWT manager
	jwtManager := utils.NewJWTManager(
		cfg.JWT.Secret,
		cfg.JWT.ExpiryHours,
		cfg.JWT.RefreshExpiryHours,
	)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	clientRepo := repository.NewClientRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	projectItemRepo := repository.NewProjectItemRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtManager)
	clientService := service.NewClientService(clientRepo)
	projectService := service.NewProjectService(projectRepo, projectItemRepo, clientRepo)
	invoiceService := service.NewInvoiceService(invoiceRepo, projectRepo, projectItemRepo, clientRepo, cfg.Billing.DefaultDueDays)
	paymentService := service.NewPaymentService(invoiceRepo, paymentRepo)
	dashboardService := service.NewDashboardService(analyticsRepo, clientRepo, projectRepo, paymentRepo, invoiceService)

	// Periodic maintenance: flip overdue invoices and purge spent
	// idempotency keys. Statuses are also derived on read, so the sweep
	// only has to keep the stored rows from drifting too far.
	go runMaintenance(invoiceService, idempotencyRepo, cfg.Billing.OverdueSweepInterval)

	// Initialize handlers
	handlers := &routes.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		Client:    handler.NewClientHandler(clientService),
		Project:   handler.NewProjectHandler(projectService),
		Invoice:   handler.NewInvoiceHandler(invoiceService, paymentService),
		Dashboard: handler.NewDashboardHandler(dashboardService),
	}

	// Setup routes
	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: idempotencyRepo,
	})

	// Get port from environment or use default
	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting %s server on port %s...", cfg.App.Name, port)
	log.Printf("Environment: %s", cfg.App.Env)

	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
		os.Exit(1)
	}
}

func runMaintenance(invoiceService *service.InvoiceService, idempotencyRepo domainRepo.IdempotencyRepository, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

		flipped, err := invoiceService.RefreshOverdue(ctx)
		if err != nil {
			log.Printf("Overdue sweep failed: %v", err)
		} else if flipped > 0 {
			log.Printf("Overdue sweep: %d invoice(s) marked overdue", flipped)
		}

		if err := idempotencyRepo.DeleteExpired(ctx); err != nil {
			log.Printf("Idempotency key cleanup failed: %v", err)
		}

		cancel()
	}
}
