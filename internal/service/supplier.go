package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/msomdec/product-catalog/internal/domain"
)

// SupplierService manages suppliers.
type SupplierService struct {
	suppliers domain.SupplierRepository
}

func NewSupplierService(suppliers domain.SupplierRepository) *SupplierService {
	return &SupplierService{suppliers: suppliers}
}

// SupplierInput carries the writable supplier fields.
type SupplierInput struct {
	Name    string
	Address string
	CNPJ    string
	Phone   string
}

func (s *SupplierService) List(ctx context.Context) ([]domain.Supplier, error) {
	suppliers, err := s.suppliers.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	return suppliers, nil
}

func (s *SupplierService) Get(ctx context.Context, id int64) (*domain.Supplier, error) {
	return s.suppliers.GetByID(ctx, id)
}

func (s *SupplierService) Create(ctx context.Context, in SupplierInput) (*domain.Supplier, error) {
	supplier := &domain.Supplier{
		Name:    strings.TrimSpace(in.Name),
		Address: strings.TrimSpace(in.Address),
		CNPJ:    strings.TrimSpace(in.CNPJ),
		Phone:   strings.TrimSpace(in.Phone),
	}
	if supplier.Name == "" {
		return nil, fmt.Errorf("%w: supplier name is required", domain.ErrInvalidInput)
	}

	if err := s.suppliers.Create(ctx, supplier); err != nil {
		return nil, fmt.Errorf("create supplier: %w", err)
	}
	return supplier, nil
}
