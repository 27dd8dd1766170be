package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/nuwanwp/billora-api/internal/domain/entity"
	domainRepo "github.com/nuwanwp/billora-api/internal/domain/repository"
	"gorm.io/gorm"
)

type projectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *gorm.DB) domainRepo.ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) Create(ctx context.Context, project *entity.Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

func (r *projectRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Project, error) {
	var project entity.Project
	err := r.db.WithContext(ctx).
		Scopes(OwnerScope(ctx)).
		Preload("Client").
		First(&project, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &project, err
}

func (r *projectRepository) GetWithItems(ctx context.Context, id uuid.UUID) (*entity.Project, error) {
	var project entity.Project
	err := r.db.WithContext(ctx).
		Scopes(OwnerScope(ctx)).
		Preload("Client").
		Preload("Items").
		First(&project, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &project, err
}

func (r *projectRepository) Update(ctx context.Context, project *entity.Project) error {
	return r.db.WithContext(ctx).Save(project).Error
}

func (r *projectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Scopes(OwnerScope(ctx)).Delete(&entity.Project{}, "id = ?", id).Error
}

func (r *projectRepository) List(ctx context.Context, userID uuid.UUID, params *domainRepo.ProjectFilterParams) ([]entity.Project, int64, error) {
	var projects []entity.Project
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Project{}).Where("user_id = ?", userID)

	if params.Search != "" {
		query = query.Where("name ILIKE ?", "%"+params.Search+"%")
	}

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}

	if params.ClientID != nil {
		query = query.Where("client_id = ?", *params.ClientID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Preload("Client").
		Order("created_at DESC").
		Find(&projects).Error

	return projects, total, err
}

func (r *projectRepository) HasPaidInvoices(ctx context.Context, projectID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Invoice{}).
		Where("project_id = ? AND paid_amount > 0", projectID).
		Count(&count).Error
	return count > 0, err
}

type projectItemRepository struct {
	db *gorm.DB
}

// NewProjectItemRepository creates a new project item repository
func NewProjectItemRepository(db *gorm.DB) domainRepo.ProjectItemRepository {
	return &projectItemRepository{db: db}
}

func (r *projectItemRepository) Create(ctx context.Context, item *entity.ProjectItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *projectItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.ProjectItem, error) {
	var item entity.ProjectItem
	err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &item, err
}

func (r *projectItemRepository) GetByProjectID(ctx context.Context, projectID uuid.UUID) ([]entity.ProjectItem, error) {
	var items []entity.ProjectItem
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&items).Error
	return items, err
}

func (r *projectItemRepository) Update(ctx context.Context, item *entity.ProjectItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *projectItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.ProjectItem{}, "id = ?", id).Error
}
