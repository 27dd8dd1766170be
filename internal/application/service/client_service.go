package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/nuwanwp/billora-api/internal/domain/entity"
	"github.com/nuwanwp/billora-api/internal/domain/repository"
	"github.com/nuwanwp/billora-api/pkg/apperror"
	"github.com/nuwanwp/billora-api/pkg/pagination"
)

// ClientService handles client-related operations
type ClientService struct {
	clientRepo repository.ClientRepository
}

// NewClientService creates a new client service
func NewClientService(clientRepo repository.ClientRepository) *ClientService {
	return &ClientService{clientRepo: clientRepo}
}

// CreateClientInput represents the create client input
type CreateClientInput struct {
	UserID        uuid.UUID
	CompanyName   string
	ContactPerson string
	Email         *string
	Phone         *string
	AddressLine1  *string
	AddressLine2  *string
	City          *string
}

// CreateClient creates a new client
func (s *ClientService) CreateClient(ctx context.Context, input *CreateClientInput) (*entity.Client, error) {
	client := &entity.Client{
		UserID:        input.UserID,
		CompanyName:   input.CompanyName,
		ContactPerson: input.ContactPerson,
		Email:         input.Email,
		Phone:         input.Phone,
		AddressLine1:  input.AddressLine1,
		AddressLine2:  input.AddressLine2,
		City:          input.City,
		Active:        true,
	}

	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, err
	}

	return client, nil
}

// GetClient retrieves a client by ID
func (s *ClientService) GetClient(ctx context.Context, id uuid.UUID) (*entity.Client, error) {
	client, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, apperror.NewNotFoundError("Client")
	}
	return client, nil
}

// ListClients lists the user's clients
func (s *ClientService) ListClients(ctx context.Context, userID uuid.UUID, params *pagination.PaginationParams, search string, active *bool) (*pagination.PaginatedResult[entity.Client], error) {
	clients, total, err := s.clientRepo.List(ctx, userID, params, search, active)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(clients, pag), nil
}

// UpdateClientInput represents the update client input
type UpdateClientInput struct {
	ID            uuid.UUID
	CompanyName   *string
	ContactPerson *string
	Email         *string
	Phone         *string
	AddressLine1  *string
	AddressLine2  *string
	City          *string
	Active        *bool
}

// UpdateClient updates a client
func (s *ClientService) UpdateClient(ctx context.Context, input *UpdateClientInput) (*entity.Client, error) {
	client, err := s.clientRepo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, apperror.NewNotFoundError("Client")
	}

	if input.CompanyName != nil {
		client.CompanyName = *input.CompanyName
	}
	if input.ContactPerson != nil {
		client.ContactPerson = *input.ContactPerson
	}
	if input.Email != nil {
		client.Email = input.Email
	}
	if input.Phone != nil {
		client.Phone = input.Phone
	}
	if input.AddressLine1 != nil {
		client.AddressLine1 = input.AddressLine1
	}
	if input.AddressLine2 != nil {
		client.AddressLine2 = input.AddressLine2
	}
	if input.City != nil {
		client.City = input.City
	}
	if input.Active != nil {
		client.Active = *input.Active
	}

	if err := s.clientRepo.Update(ctx, client); err != nil {
		return nil, err
	}

	return client, nil
}

// DeleteClient deletes a client. Clients referenced by invoices are kept
// for the audit trail and can only be deactivated.
func (s *ClientService) DeleteClient(ctx context.Context, id uuid.UUID) error {
	client, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if client == nil {
		return apperror.NewNotFoundError("Client")
	}

	locked, err := s.clientRepo.HasInvoices(ctx, id)
	if err != nil {
		return err
	}
	if locked {
		return apperror.ErrClientLockedByInvoices
	}

	return s.clientRepo.Delete(ctx, id)
}
