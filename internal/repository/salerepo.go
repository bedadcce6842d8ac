package repository

import (
	"context"

	"github.com/and161185/salesgate/internal/model"
	"github.com/gofrs/uuid/v5"
)

// SaleRepository persists sales. Implementations keep card numbers encrypted at rest.
type SaleRepository interface {
	Create(ctx context.Context, s *model.Sale) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	ListByCustomer(ctx context.Context, customerCode string) ([]model.Sale, error)
}
