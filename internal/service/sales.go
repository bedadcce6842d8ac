package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/and161185/salesgate/internal/errs"
	"github.com/and161185/salesgate/internal/model"
	"github.com/and161185/salesgate/internal/repository"
	"github.com/gofrs/uuid/v5"
)

// SaleService defines operations over a customer's sales.
type SaleService interface {
	// Create validates and stores a sale for the customer.
	Create(ctx context.Context, customerCode string, amountCents int64, cardNumber string) (*model.Sale, error)
	// Get returns a sale owned by the customer.
	Get(ctx context.Context, customerCode string, id uuid.UUID) (*model.Sale, error)
	// List returns all sales of the customer.
	List(ctx context.Context, customerCode string) ([]model.Sale, error)
}

type SaleServiceImpl struct {
	repo repository.SaleRepository
}

// NewSaleService constructs SaleService.
func NewSaleService(repo repository.SaleRepository) *SaleServiceImpl {
	return &SaleServiceImpl{repo: repo}
}

// Create stores a new sale. Card numbers must be 12-19 digits; spaces and dashes are stripped.
func (s *SaleServiceImpl) Create(ctx context.Context, customerCode string, amountCents int64, cardNumber string) (*model.Sale, error) {
	if customerCode == "" {
		return nil, fmt.Errorf("%w: empty customer code", errs.ErrInvalidInput)
	}
	if amountCents <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", errs.ErrInvalidInput)
	}
	card := strings.NewReplacer(" ", "", "-", "").Replace(cardNumber)
	if !isCardNumber(card) {
		return nil, fmt.Errorf("%w: bad card number", errs.ErrInvalidInput)
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	sale := &model.Sale{ID: id, CustomerCode: customerCode, AmountCents: amountCents, CardNumber: card}
	if err := s.repo.Create(ctx, sale); err != nil {
		return nil, err
	}
	return sale, nil
}

// Get hides sales of other customers behind errs.ErrNotFound.
func (s *SaleServiceImpl) Get(ctx context.Context, customerCode string, id uuid.UUID) (*model.Sale, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("%w: empty id", errs.ErrInvalidInput)
	}
	sale, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale.CustomerCode != customerCode {
		return nil, errs.ErrNotFound
	}
	return sale, nil
}

// List returns the customer's sales.
func (s *SaleServiceImpl) List(ctx context.Context, customerCode string) ([]model.Sale, error) {
	if customerCode == "" {
		return nil, fmt.Errorf("%w: empty customer code", errs.ErrInvalidInput)
	}
	return s.repo.ListByCustomer(ctx, customerCode)
}

func isCardNumber(s string) bool {
	if len(s) < 12 || len(s) > 19 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
