package domain

import (
	"context"
	"time"
)

// Category groups products. A product belongs to exactly one category.
type Category struct {
	ID          int64
	Name        string
	Description string
}

type CategoryRepository interface {
	List(ctx context.Context) ([]Category, error)
	GetByID(ctx context.Context, id int64) (*Category, error)
	Create(ctx context.Context, category *Category) error
}

// Supplier provides products. Suppliers and products are linked many-to-many.
type Supplier struct {
	ID       int64
	Name     string
	Address  string
	CNPJ     string // Brazilian company registry number
	Phone    string
	Products []ProductRef
}

// SupplierRef is the supplier side of a product/supplier link.
type SupplierRef struct {
	ID   int64
	Name string
}

// ProductRef is the product side of a product/supplier link.
type ProductRef struct {
	ID    int64
	Name  string
	Price float64
}

type SupplierRepository interface {
	// List returns all suppliers with the non-deleted products they supply.
	List(ctx context.Context) ([]Supplier, error)
	GetByID(ctx context.Context, id int64) (*Supplier, error)
	Create(ctx context.Context, supplier *Supplier) error
	// Missing returns the subset of ids that have no supplier row.
	Missing(ctx context.Context, ids []int64) ([]int64, error)
}

// Product is a catalog item. Deleting a product only sets IsDeleted.
type Product struct {
	ID         int64
	Name       string
	Price      float64
	CategoryID int64
	Category   *Category
	Suppliers  []SupplierRef
	IsDeleted  bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// SupplierIDs returns the ids of the product's linked suppliers.
func (p *Product) SupplierIDs() []int64 {
	ids := make([]int64, len(p.Suppliers))
	for i, s := range p.Suppliers {
		ids[i] = s.ID
	}
	return ids
}

// ProductRepository persists products and their supplier links.
// List and GetByID never return soft-deleted products.
type ProductRepository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id int64) (*Product, error)
	Create(ctx context.Context, product *Product) error
	// Update replaces the product's fields and its full supplier set.
	Update(ctx context.Context, product *Product) error
	SoftDelete(ctx context.Context, id int64) error
}
