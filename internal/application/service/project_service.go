package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nuwanwp/billora-api/internal/domain/billing"
	"github.com/nuwanwp/billora-api/internal/domain/entity"
	"github.com/nuwanwp/billora-api/internal/domain/enum"
	"github.com/nuwanwp/billora-api/internal/domain/repository"
	"github.com/nuwanwp/billora-api/pkg/apperror"
	"github.com/nuwanwp/billora-api/pkg/money"
	"github.com/nuwanwp/billora-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// ProjectService handles project-related operations
type ProjectService struct {
	projectRepo repository.ProjectRepository
	itemRepo    repository.ProjectItemRepository
	clientRepo  repository.ClientRepository
}

// NewProjectService creates a new project service
func NewProjectService(
	projectRepo repository.ProjectRepository,
	itemRepo repository.ProjectItemRepository,
	clientRepo repository.ClientRepository,
) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		itemRepo:    itemRepo,
		clientRepo:  clientRepo,
	}
}

// CreateProjectInput represents the create project input
type CreateProjectInput struct {
	UserID    uuid.UUID
	ClientID  uuid.UUID
	Name      string
	Type      enum.ProjectType
	StartDate *time.Time
	EndDate   *time.Time
	Notes     *string
}

// CreateProject creates a new project for one of the user's clients
func (s *ProjectService) CreateProject(ctx context.Context, input *CreateProjectInput) (*entity.Project, error) {
	client, err := s.clientRepo.GetByID(ctx, input.ClientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, apperror.NewNotFoundError("Client")
	}

	projectType := input.Type
	if projectType == "" {
		projectType = enum.ProjectTypeOther
	}
	if !projectType.Valid() {
		return nil, apperror.NewBadRequestError("Invalid project type")
	}

	project := &entity.Project{
		UserID:      input.UserID,
		ClientID:    input.ClientID,
		Name:        input.Name,
		Type:        projectType,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		TotalAmount: decimal.Zero,
		Status:      enum.ProjectStatusPending,
		Notes:       input.Notes,
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, err
	}

	return project, nil
}

// GetProject retrieves a project with its items and client
func (s *ProjectService) GetProject(ctx context.Context, id uuid.UUID) (*entity.Project, error) {
	project, err := s.projectRepo.GetWithItems(ctx, id)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, apperror.NewNotFoundError("Project")
	}
	return project, nil
}

// ListProjects lists the user's projects
func (s *ProjectService) ListProjects(ctx context.Context, userID uuid.UUID, params *repository.ProjectFilterParams) (*pagination.PaginatedResult[entity.Project], error) {
	projects, total, err := s.projectRepo.List(ctx, userID, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(projects, pag), nil
}

// UpdateProjectInput represents the update project input
type UpdateProjectInput struct {
	ID        uuid.UUID
	Name      *string
	Type      *enum.ProjectType
	StartDate *time.Time
	EndDate   *time.Time
	Status    *enum.ProjectStatus
	Notes     *string
}

// UpdateProject updates a project. Moving a project to cancelled is refused
// while any of its invoices has received a payment.
func (s *ProjectService) UpdateProject(ctx context.Context, input *UpdateProjectInput) (*entity.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, apperror.NewNotFoundError("Project")
	}

	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, apperror.NewBadRequestError("Invalid project status")
		}
		if *input.Status == enum.ProjectStatusCancelled && project.Status != enum.ProjectStatusCancelled {
			hasPaid, err := s.projectRepo.HasPaidInvoices(ctx, project.ID)
			if err != nil {
				return nil, err
			}
			if hasPaid {
				return nil, apperror.ErrProjectHasPaidInvoices
			}
		}
		project.Status = *input.Status
	}

	if input.Name != nil {
		project.Name = *input.Name
	}
	if input.Type != nil {
		if !input.Type.Valid() {
			return nil, apperror.NewBadRequestError("Invalid project type")
		}
		project.Type = *input.Type
	}
	if input.StartDate != nil {
		project.StartDate = input.StartDate
	}
	if input.EndDate != nil {
		project.EndDate = input.EndDate
	}
	if input.Notes != nil {
		project.Notes = input.Notes
	}

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, err
	}

	return project, nil
}

// DeleteProject deletes a project and its items
func (s *ProjectService) DeleteProject(ctx context.Context, id uuid.UUID) error {
	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if project == nil {
		return apperror.NewNotFoundError("Project")
	}

	hasPaid, err := s.projectRepo.HasPaidInvoices(ctx, id)
	if err != nil {
		return err
	}
	if hasPaid {
		return apperror.ErrProjectHasPaidInvoices
	}

	return s.projectRepo.Delete(ctx, id)
}

// ProjectItemInput represents the fields of a project line item
type ProjectItemInput struct {
	Name      string
	Type      string
	Quantity  int
	UnitPrice decimal.Decimal
}

// AddItem appends a line item to a project and refreshes the project value
func (s *ProjectService) AddItem(ctx context.Context, projectID uuid.UUID, input *ProjectItemInput) (*entity.ProjectItem, error) {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, apperror.NewNotFoundError("Project")
	}

	lineTotal, err := money.LineTotal(input.Quantity, input.UnitPrice)
	if err != nil {
		return nil, apperror.NewUnprocessableEntityError(err.Error())
	}

	item := &entity.ProjectItem{
		ProjectID:  projectID,
		Name:       input.Name,
		Type:       input.Type,
		Quantity:   input.Quantity,
		UnitPrice:  money.Round2(input.UnitPrice),
		TotalPrice: lineTotal,
	}

	if err := s.itemRepo.Create(ctx, item); err != nil {
		return nil, err
	}

	if err := s.refreshProjectValue(ctx, project); err != nil {
		return nil, err
	}

	return item, nil
}

// UpdateItem updates a project line item and refreshes the project value
func (s *ProjectService) UpdateItem(ctx context.Context, projectID, itemID uuid.UUID, input *ProjectItemInput) (*entity.ProjectItem, error) {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, apperror.NewNotFoundError("Project")
	}

	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil || item.ProjectID != projectID {
		return nil, apperror.NewNotFoundError("Project item")
	}

	lineTotal, err := money.LineTotal(input.Quantity, input.UnitPrice)
	if err != nil {
		return nil, apperror.NewUnprocessableEntityError(err.Error())
	}

	item.Name = input.Name
	item.Type = input.Type
	item.Quantity = input.Quantity
	item.UnitPrice = money.Round2(input.UnitPrice)
	item.TotalPrice = lineTotal

	if err := s.itemRepo.Update(ctx, item); err != nil {
		return nil, err
	}

	if err := s.refreshProjectValue(ctx, project); err != nil {
		return nil, err
	}

	return item, nil
}

// DeleteItem removes a project line item and refreshes the project value
func (s *ProjectService) DeleteItem(ctx context.Context, projectID, itemID uuid.UUID) error {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return err
	}
	if project == nil {
		return apperror.NewNotFoundError("Project")
	}

	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return err
	}
	if item == nil || item.ProjectID != projectID {
		return apperror.NewNotFoundError("Project item")
	}

	if err := s.itemRepo.Delete(ctx, itemID); err != nil {
		return err
	}

	return s.refreshProjectValue(ctx, project)
}

// ProjectValuation is the derived value summary of a project
type ProjectValuation struct {
	ProjectID    uuid.UUID       `json:"project_id"`
	ItemCount    int             `json:"item_count"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	TotalDisplay string          `json:"total_display"`
}

// GetValuation computes the value of a project from its current items
func (s *ProjectService) GetValuation(ctx context.Context, projectID uuid.UUID) (*ProjectValuation, error) {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, apperror.NewNotFoundError("Project")
	}

	items, err := s.itemRepo.GetByProjectID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	total := billing.ProjectValue(items)
	return &ProjectValuation{
		ProjectID:    projectID,
		ItemCount:    len(items),
		TotalAmount:  total,
		TotalDisplay: money.FormatLKR(total),
	}, nil
}

// refreshProjectValue recomputes the stored project total from its items.
// The stored value is a denormalized convenience for list views; the
// valuation endpoint always derives it fresh.
func (s *ProjectService) refreshProjectValue(ctx context.Context, project *entity.Project) error {
	items, err := s.itemRepo.GetByProjectID(ctx, project.ID)
	if err != nil {
		return err
	}
	project.TotalAmount = billing.ProjectValue(items)
	return s.projectRepo.Update(ctx, project)
}
