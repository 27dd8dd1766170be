package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nuwanwp/billora-api/internal/application/service"
	"github.com/nuwanwp/billora-api/internal/domain/enum"
	"github.com/nuwanwp/billora-api/internal/domain/repository"
	"github.com/nuwanwp/billora-api/internal/presentation/http/dto/request"
	"github.com/nuwanwp/billora-api/internal/presentation/http/dto/response"
	"github.com/nuwanwp/billora-api/pkg/pagination"
)

// InvoiceHandler handles invoice and payment HTTP requests
type InvoiceHandler struct {
	invoiceService *service.InvoiceService
	paymentService *service.PaymentService
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(invoiceService *service.InvoiceService, paymentService *service.PaymentService) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
		paymentService: paymentService,
	}
}

// List handles listing invoices with filters
func (h *InvoiceHandler) List(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "15"))

	params := &repository.InvoiceFilterParams{
		Pagination: &pagination.PaginationParams{Page: page, PerPage: perPage},
		Search:     c.Query("search"),
		SortBy:     c.Query("sort_by"),
		SortOrder:  c.Query("sort_order"),
	}

	if statusStr := c.Query("status"); statusStr != "" {
		status := enum.InvoiceStatus(statusStr)
		if !status.Valid() {
			response.BadRequest(c, "Invalid invoice status")
			return
		}
		params.Status = &status
	}

	if clientIDStr := c.Query("client_id"); clientIDStr != "" {
		clientID, err := uuid.Parse(clientIDStr)
		if err != nil {
			response.BadRequest(c, "Invalid client ID")
			return
		}
		params.ClientID = &clientID
	}

	if projectIDStr := c.Query("project_id"); projectIDStr != "" {
		projectID, err := uuid.Parse(projectIDStr)
		if err != nil {
			response.BadRequest(c, "Invalid project ID")
			return
		}
		params.ProjectID = &projectID
	}

	if startStr := c.Query("start_date"); startStr != "" {
		start, err := time.Parse(dateLayout, startStr)
		if err != nil {
			response.BadRequest(c, "Invalid start date, expected YYYY-MM-DD")
			return
		}
		params.StartDate = &start
	}

	if endStr := c.Query("end_date"); endStr != "" {
		end, err := time.Parse(dateLayout, endStr)
		if err != nil {
			response.BadRequest(c, "Invalid end date, expected YYYY-MM-DD")
			return
		}
		params.EndDate = &end
	}

	result, err := h.invoiceService.ListInvoices(c.Request.Context(), *userID, params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Invoices retrieved successfully", result)
}

// Create handles creating an invoice
func (h *InvoiceHandler) Create(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req request.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	invoiceDate, _ := time.Parse(dateLayout, req.InvoiceDate)
	// A missing due date stays zero; the service fills in the default
	// payment term.
	var dueDate time.Time
	if req.DueDate != "" {
		dueDate, _ = time.Parse(dateLayout, req.DueDate)
	}

	invoice, err := h.invoiceService.CreateInvoice(c.Request.Context(), &service.CreateInvoiceInput{
		UserID:       *userID,
		ClientID:     req.ClientID,
		ProjectID:    req.ProjectID,
		InvoiceDate:  invoiceDate,
		DueDate:      dueDate,
		Items:        toLineInputs(req.Items),
		TaxRate:      req.TaxRate,
		DiscountRate: req.DiscountRate,
		Notes:        req.Notes,
		Issue:        req.Issue,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Invoice created successfully", invoice)
}

// CreateFromProject handles drafting an invoice from a project's items
func (h *InvoiceHandler) CreateFromProject(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid project ID")
		return
	}

	var req request.CreateInvoiceFromProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	invoiceDate, _ := time.Parse(dateLayout, req.InvoiceDate)
	var dueDate time.Time
	if req.DueDate != "" {
		dueDate, _ = time.Parse(dateLayout, req.DueDate)
	}

	invoice, err := h.invoiceService.CreateFromProject(c.Request.Context(), &service.CreateFromProjectInput{
		UserID:       *userID,
		ProjectID:    projectID,
		InvoiceDate:  invoiceDate,
		DueDate:      dueDate,
		TaxRate:      req.TaxRate,
		DiscountRate: req.DiscountRate,
		Notes:        req.Notes,
		Issue:        req.Issue,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Invoice created successfully", invoice)
}

// Get handles getting a single invoice with items and payments
func (h *InvoiceHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid invoice ID")
		return
	}

	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invoice retrieved successfully", invoice)
}

// Update handles a full-replacement invoice edit
func (h *InvoiceHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid invoice ID")
		return
	}

	var req request.UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	invoiceDate, _ := time.Parse(dateLayout, req.InvoiceDate)
	dueDate, _ := time.Parse(dateLayout, req.DueDate)

	invoice, err := h.invoiceService.UpdateInvoice(c.Request.Context(), &service.UpdateInvoiceInput{
		ID:           id,
		ClientID:     req.ClientID,
		InvoiceDate:  invoiceDate,
		DueDate:      dueDate,
		Items:        toLineInputs(req.Items),
		TaxRate:      req.TaxRate,
		DiscountRate: req.DiscountRate,
		Status:       enum.InvoiceStatus(req.Status),
		Notes:        req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invoice updated successfully", invoice)
}

// Delete handles deleting an invoice
func (h *InvoiceHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid invoice ID")
		return
	}

	if err := h.invoiceService.DeleteInvoice(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// RecordPayment handles recording a payment against an invoice
func (h *InvoiceHandler) RecordPayment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid invoice ID")
		return
	}

	var req request.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	input := &service.RecordPaymentInput{
		InvoiceID: id,
		Amount:    req.Amount,
		Method:    req.Method,
		Reference: req.Reference,
		Notes:     req.Notes,
	}
	if d := parseDate(req.PaymentDate); d != nil {
		input.PaymentDate = *d
	}

	result, err := h.paymentService.RecordPayment(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Payment recorded successfully", result)
}

// ListPayments handles listing an invoice's payments
func (h *InvoiceHandler) ListPayments(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid invoice ID")
		return
	}

	payments, err := h.paymentService.ListPayments(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Payments retrieved successfully", payments)
}

func toLineInputs(lines []request.InvoiceLineRequest) []service.InvoiceLineInput {
	items := make([]service.InvoiceLineInput, len(lines))
	for i, line := range lines {
		items[i] = service.InvoiceLineInput{
			Description: line.Description,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
		}
	}
	return items
}
