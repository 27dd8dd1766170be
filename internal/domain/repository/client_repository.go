package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/nuwanwp/billora-api/internal/domain/entity"
	"github.com/nuwanwp/billora-api/pkg/pagination"
)

// ClientRepository defines the interface for client data operations
type ClientRepository interface {
	Create(ctx context.Context, client *entity.Client) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Client, error)
	Update(ctx context.Context, client *entity.Client) error
	Delete(ctx context.Context, id uuid.UUID) error
	// List returns clients for the owning user with page-based pagination.
	// active filters on the active flag when non-nil.
	List(ctx context.Context, userID uuid.UUID, params *pagination.PaginationParams, search string, active *bool) ([]entity.Client, int64, error)
	// HasInvoices reports whether any invoice references the client.
	// A client with invoices cannot be deleted.
	HasInvoices(ctx context.Context, clientID uuid.UUID) (bool, error)
}
