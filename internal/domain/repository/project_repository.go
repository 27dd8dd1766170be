package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/nuwanwp/billora-api/internal/domain/entity"
	"github.com/nuwanwp/billora-api/internal/domain/enum"
	"github.com/nuwanwp/billora-api/pkg/pagination"
)

// ProjectRepository defines the interface for project data operations
type ProjectRepository interface {
	Create(ctx context.Context, project *entity.Project) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Project, error)
	GetWithItems(ctx context.Context, id uuid.UUID) (*entity.Project, error)
	Update(ctx context.Context, project *entity.Project) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID, params *ProjectFilterParams) ([]entity.Project, int64, error)
	// HasPaidInvoices reports whether any invoice of the project has
	// received a payment. Gates project cancellation.
	HasPaidInvoices(ctx context.Context, projectID uuid.UUID) (bool, error)
}

// ProjectFilterParams contains filtering parameters for project queries
type ProjectFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string
	Status     *enum.ProjectStatus
	ClientID   *uuid.UUID
}

// ProjectItemRepository defines the interface for project item data operations
type ProjectItemRepository interface {
	Create(ctx context.Context, item *entity.ProjectItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.ProjectItem, error)
	GetByProjectID(ctx context.Context, projectID uuid.UUID) ([]entity.ProjectItem, error)
	Update(ctx context.Context, item *entity.ProjectItem) error
	Delete(ctx context.Context, id uuid.UUID) error
}
