package handler

import (
	"time"

	"github.com/msomdec/product-catalog/internal/domain"
	"github.com/msomdec/product-catalog/internal/service"
)

// credentialsRequest is the body of both auth endpoints. Email is accepted
// on register for client compatibility and ignored.
type credentialsRequest struct {
	Username string `json:"username" validate:"required,max=256"`
	Password string `json:"password" validate:"required,max=1024"`
	Email    string `json:"email"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// CategoryDTO is the JSON representation of a category.
type CategoryDTO struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func toCategoryDTO(c *domain.Category) CategoryDTO {
	return CategoryDTO{ID: c.ID, Name: c.Name, Description: c.Description}
}

func toCategoryDTOs(categories []domain.Category) []CategoryDTO {
	dtos := make([]CategoryDTO, len(categories))
	for i := range categories {
		dtos[i] = toCategoryDTO(&categories[i])
	}
	return dtos
}

type categoryRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=1000"`
}

// SupplierRefDTO identifies a supplier linked to a product.
type SupplierRefDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ProductRefDTO identifies a product supplied by a supplier.
type ProductRefDTO struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// SupplierDTO is the JSON representation of a supplier.
type SupplierDTO struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Address  string          `json:"address"`
	CNPJ     string          `json:"cnpj"`
	Phone    string          `json:"phone"`
	Products []ProductRefDTO `json:"products"`
}

func toSupplierDTO(s *domain.Supplier) SupplierDTO {
	products := make([]ProductRefDTO, len(s.Products))
	for i, p := range s.Products {
		products[i] = ProductRefDTO{ID: p.ID, Name: p.Name, Price: p.Price}
	}
	return SupplierDTO{
		ID:       s.ID,
		Name:     s.Name,
		Address:  s.Address,
		CNPJ:     s.CNPJ,
		Phone:    s.Phone,
		Products: products,
	}
}

func toSupplierDTOs(suppliers []domain.Supplier) []SupplierDTO {
	dtos := make([]SupplierDTO, len(suppliers))
	for i := range suppliers {
		dtos[i] = toSupplierDTO(&suppliers[i])
	}
	return dtos
}

type supplierRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Address string `json:"address" validate:"max=500"`
	CNPJ    string `json:"cnpj" validate:"max=20"`
	Phone   string `json:"phone" validate:"max=30"`
}

// ProductDTO is the JSON representation of a product.
type ProductDTO struct {
	ID         int64            `json:"id"`
	Name       string           `json:"name"`
	Price      float64          `json:"price"`
	CategoryID int64            `json:"categoryId"`
	Category   *CategoryDTO     `json:"category"`
	Suppliers  []SupplierRefDTO `json:"suppliers"`
	IsDeleted  bool             `json:"isDeleted"`
	CreatedAt  string           `json:"createdAt"`
	UpdatedAt  string           `json:"updatedAt"`
}

func toProductDTO(p *domain.Product) ProductDTO {
	dto := ProductDTO{
		ID:         p.ID,
		Name:       p.Name,
		Price:      p.Price,
		CategoryID: p.CategoryID,
		Suppliers:  make([]SupplierRefDTO, len(p.Suppliers)),
		IsDeleted:  p.IsDeleted,
		CreatedAt:  p.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:  p.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if p.Category != nil {
		c := toCategoryDTO(p.Category)
		dto.Category = &c
	}
	for i, s := range p.Suppliers {
		dto.Suppliers[i] = SupplierRefDTO{ID: s.ID, Name: s.Name}
	}
	return dto
}

func toProductDTOs(products []domain.Product) []ProductDTO {
	dtos := make([]ProductDTO, len(products))
	for i := range products {
		dtos[i] = toProductDTO(&products[i])
	}
	return dtos
}

// productSupplierLink is the link shape sent by older clients.
type productSupplierLink struct {
	SuppliersID int64 `json:"suppliersId"`
}

type productRequest struct {
	ID               int64                 `json:"id"`
	Name             string                `json:"name" validate:"required,max=200"`
	Price            *float64              `json:"price" validate:"required,gte=0"`
	CategoryID       int64                 `json:"categoryId" validate:"required,gt=0"`
	SupplierIDs      []int64               `json:"supplierIds" validate:"dive,gt=0"`
	ProductSuppliers []productSupplierLink `json:"productSuppliers"`
}

func (r *productRequest) toInput() service.ProductInput {
	ids := append([]int64(nil), r.SupplierIDs...)
	for _, link := range r.ProductSuppliers {
		ids = append(ids, link.SuppliersID)
	}
	return service.ProductInput{
		Name:        r.Name,
		Price:       *r.Price,
		CategoryID:  r.CategoryID,
		SupplierIDs: ids,
	}
}
