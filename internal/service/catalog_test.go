package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/msomdec/product-catalog/internal/domain"
	"github.com/msomdec/product-catalog/internal/service"
)

func newCatalogServices(t *testing.T) (*service.ProductService, *service.CategoryService, *service.SupplierService) {
	t.Helper()
	db := newTestDB(t)
	return service.NewProductService(db.Products(), db.Categories(), db.Suppliers()),
		service.NewCategoryService(db.Categories()),
		service.NewSupplierService(db.Suppliers())
}

func TestProductService_CreateAndGet(t *testing.T) {
	products, _, _ := newCatalogServices(t)
	ctx := context.Background()

	p, err := products.Create(ctx, service.ProductInput{
		Name:        "  Notebook  ",
		Price:       3499.899,
		CategoryID:  1,
		SupplierIDs: []int64{2, 1, 2},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.Name != "Notebook" {
		t.Fatalf("expected trimmed name, got %q", p.Name)
	}
	if p.Price != 3499.90 {
		t.Fatalf("expected price rounded to cents, got %v", p.Price)
	}
	if p.Category == nil || p.Category.Name != "Eletrônicos" {
		t.Fatalf("expected category to be loaded, got %+v", p.Category)
	}
	if len(p.Suppliers) != 2 || p.Suppliers[0].ID != 1 || p.Suppliers[1].ID != 2 {
		t.Fatalf("expected deduplicated suppliers [1 2], got %+v", p.Suppliers)
	}

	got, err := products.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID != p.ID || got.Suppliers[1].Name != "Fornecedor B" {
		t.Fatalf("unexpected product: %+v", got)
	}
}

func TestProductService_CreateValidation(t *testing.T) {
	products, _, _ := newCatalogServices(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		input service.ProductInput
	}{
		{"missing name", service.ProductInput{Name: " ", Price: 1, CategoryID: 1}},
		{"negative price", service.ProductInput{Name: "X", Price: -0.01, CategoryID: 1}},
		{"missing category", service.ProductInput{Name: "X", Price: 1}},
		{"unknown category", service.ProductInput{Name: "X", Price: 1, CategoryID: 99}},
		{"unknown supplier", service.ProductInput{Name: "X", Price: 1, CategoryID: 1, SupplierIDs: []int64{1, 42}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := products.Create(ctx, tc.input)
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}

	list, err := products.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected no products to be created, got %d", len(list))
	}
}

func TestProductService_UpdateReplacesSuppliers(t *testing.T) {
	products, _, _ := newCatalogServices(t)
	ctx := context.Background()

	p, err := products.Create(ctx, service.ProductInput{Name: "Mesa", Price: 500, CategoryID: 2, SupplierIDs: []int64{1}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := products.Update(ctx, p.ID, service.ProductInput{Name: "Mesa de Jantar", Price: 750.5, CategoryID: 2, SupplierIDs: []int64{2}})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name != "Mesa de Jantar" || updated.Price != 750.5 {
		t.Fatalf("unexpected product after update: %+v", updated)
	}
	if len(updated.Suppliers) != 1 || updated.Suppliers[0].ID != 2 {
		t.Fatalf("expected supplier set [2], got %+v", updated.Suppliers)
	}

	if _, err := products.Update(ctx, 999, service.ProductInput{Name: "X", Price: 1, CategoryID: 1}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown product, got %v", err)
	}
}

func TestProductService_DeleteIsSoft(t *testing.T) {
	products, _, suppliers := newCatalogServices(t)
	ctx := context.Background()

	p, err := products.Create(ctx, service.ProductInput{Name: "Feijão", Price: 8.99, CategoryID: 3, SupplierIDs: []int64{1}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := products.Delete(ctx, p.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := products.Get(ctx, p.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if _, err := products.Update(ctx, p.ID, service.ProductInput{Name: "X", Price: 1, CategoryID: 1}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound updating deleted product, got %v", err)
	}
	if err := products.Delete(ctx, p.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}

	list, err := products.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty product list, got %d", len(list))
	}

	s, err := suppliers.Get(ctx, 1)
	if err != nil {
		t.Fatalf("Get supplier: %v", err)
	}
	if len(s.Products) != 0 {
		t.Fatalf("expected deleted product hidden from supplier, got %+v", s.Products)
	}
}

func TestCategoryService(t *testing.T) {
	_, categories, _ := newCatalogServices(t)
	ctx := context.Background()

	if _, err := categories.Create(ctx, "", "desc"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	c, err := categories.Create(ctx, "Brinquedos", "Para crianças")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := categories.Get(ctx, c.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "Brinquedos" {
		t.Fatalf("expected Brinquedos, got %s", got.Name)
	}

	list, err := categories.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 4 {
		t.Fatalf("expected 4 categories, got %d", len(list))
	}

	if _, err := categories.Get(ctx, 999); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSupplierService(t *testing.T) {
	products, _, suppliers := newCatalogServices(t)
	ctx := context.Background()

	if _, err := suppliers.Create(ctx, service.SupplierInput{Address: "Rua C"}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	s, err := suppliers.Create(ctx, service.SupplierInput{Name: "Fornecedor C", Address: "Rua C", CNPJ: "11222333000181", Phone: "31999990000"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if s.Products == nil {
		t.Fatal("expected empty, non-nil product list")
	}

	if _, err := products.Create(ctx, service.ProductInput{Name: "Sofá", Price: 1999, CategoryID: 2, SupplierIDs: []int64{s.ID}}); err != nil {
		t.Fatalf("Create product: %v", err)
	}

	got, err := suppliers.Get(ctx, s.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.Products) != 1 || got.Products[0].Name != "Sofá" {
		t.Fatalf("expected supplier to list Sofá, got %+v", got.Products)
	}

	list, err := suppliers.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 suppliers, got %d", len(list))
	}
}
