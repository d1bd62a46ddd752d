package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"github.com/msomdec/product-catalog/internal/domain"
)

// ProductService manages catalog products and their supplier links.
type ProductService struct {
	products   domain.ProductRepository
	categories domain.CategoryRepository
	suppliers  domain.SupplierRepository
}

func NewProductService(products domain.ProductRepository, categories domain.CategoryRepository, suppliers domain.SupplierRepository) *ProductService {
	return &ProductService{
		products:   products,
		categories: categories,
		suppliers:  suppliers,
	}
}

// ProductInput carries the writable product fields. SupplierIDs is the
// complete supplier set; on update it replaces the previous one.
type ProductInput struct {
	Name        string
	Price       float64
	CategoryID  int64
	SupplierIDs []int64
}

func (s *ProductService) List(ctx context.Context) ([]domain.Product, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// Get returns a live product. Soft-deleted products are domain.ErrNotFound.
func (s *ProductService) Get(ctx context.Context, id int64) (*domain.Product, error) {
	return s.products.GetByID(ctx, id)
}

func (s *ProductService) Create(ctx context.Context, in ProductInput) (*domain.Product, error) {
	product, err := s.build(ctx, in)
	if err != nil {
		return nil, err
	}

	if err := s.products.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	zerolog.Ctx(ctx).Info().Int64("product_id", product.ID).Msg("product created")
	return s.products.GetByID(ctx, product.ID)
}

func (s *ProductService) Update(ctx context.Context, id int64, in ProductInput) (*domain.Product, error) {
	if _, err := s.products.GetByID(ctx, id); err != nil {
		return nil, err
	}

	product, err := s.build(ctx, in)
	if err != nil {
		return nil, err
	}
	product.ID = id

	if err := s.products.Update(ctx, product); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update product: %w", err)
	}

	return s.products.GetByID(ctx, id)
}

// Delete soft-deletes the product.
func (s *ProductService) Delete(ctx context.Context, id int64) error {
	if err := s.products.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("delete product: %w", err)
	}
	zerolog.Ctx(ctx).Info().Int64("product_id", id).Msg("product deleted")
	return nil
}

// build validates the input and resolves its references.
func (s *ProductService) build(ctx context.Context, in ProductInput) (*domain.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: product name is required", domain.ErrInvalidInput)
	}
	if math.IsNaN(in.Price) || math.IsInf(in.Price, 0) || in.Price < 0 {
		return nil, fmt.Errorf("%w: price must be a non-negative number", domain.ErrInvalidInput)
	}
	if in.CategoryID <= 0 {
		return nil, fmt.Errorf("%w: category is required", domain.ErrInvalidInput)
	}

	if _, err := s.categories.GetByID(ctx, in.CategoryID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: category %d does not exist", domain.ErrInvalidInput, in.CategoryID)
		}
		return nil, fmt.Errorf("get category: %w", err)
	}

	ids := uniqueIDs(in.SupplierIDs)
	missing, err := s.suppliers.Missing(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("check suppliers: %w", err)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: supplier %d does not exist", domain.ErrInvalidInput, missing[0])
	}

	refs := make([]domain.SupplierRef, len(ids))
	for i, id := range ids {
		refs[i] = domain.SupplierRef{ID: id}
	}

	return &domain.Product{
		Name:       name,
		Price:      roundCents(in.Price),
		CategoryID: in.CategoryID,
		Suppliers:  refs,
	}, nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// uniqueIDs returns ids sorted with duplicates removed.
func uniqueIDs(ids []int64) []int64 {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}
