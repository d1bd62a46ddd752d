package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/msomdec/product-catalog/internal/service"
)

// ProductHandler serves the product endpoints.
type ProductHandler struct {
	products *service.ProductService
}

func NewProductHandler(products *service.ProductService) *ProductHandler {
	return &ProductHandler{products: products}
}

// HandleList returns all live products; an empty catalog is an empty array.
// GET /api/Products
func (h *ProductHandler) HandleList(c *gin.Context) {
	products, err := h.products.List(c.Request.Context())
	if err != nil {
		respondError(c, "list products", err)
		return
	}
	c.JSON(http.StatusOK, toProductDTOs(products))
}

// GET /api/Products/:id
func (h *ProductHandler) HandleGet(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	p, err := h.products.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, "get product", err)
		return
	}
	c.JSON(http.StatusOK, toProductDTO(p))
}

// POST /api/Products
func (h *ProductHandler) HandleCreate(c *gin.Context) {
	var req productRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}

	p, err := h.products.Create(c.Request.Context(), req.toInput())
	if err != nil {
		respondError(c, "create product", err)
		return
	}
	c.Header("Location", "/api/Products/"+strconv.FormatInt(p.ID, 10))
	c.JSON(http.StatusCreated, toProductDTO(p))
}

// HandleUpdate replaces a product's fields and supplier set. A body id, when
// present, must match the path.
// PUT /api/Products/:id
func (h *ProductHandler) HandleUpdate(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req productRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.ID != 0 && req.ID != id {
		writeError(c, http.StatusBadRequest, "Product ID does not match.")
		return
	}

	p, err := h.products.Update(c.Request.Context(), id, req.toInput())
	if err != nil {
		respondError(c, "update product", err)
		return
	}
	c.JSON(http.StatusOK, toProductDTO(p))
}

// HandleDelete soft-deletes a product.
// DELETE /api/Products/:id
func (h *ProductHandler) HandleDelete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.products.Delete(c.Request.Context(), id); err != nil {
		respondError(c, "delete product", err)
		return
	}
	c.Status(http.StatusNoContent)
}
