package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/msomdec/product-catalog/internal/service"
)

// SupplierHandler serves the supplier endpoints.
type SupplierHandler struct {
	suppliers *service.SupplierService
}

func NewSupplierHandler(suppliers *service.SupplierService) *SupplierHandler {
	return &SupplierHandler{suppliers: suppliers}
}

// GET /api/Suppliers
func (h *SupplierHandler) HandleList(c *gin.Context) {
	suppliers, err := h.suppliers.List(c.Request.Context())
	if err != nil {
		respondError(c, "list suppliers", err)
		return
	}
	c.JSON(http.StatusOK, toSupplierDTOs(suppliers))
}

// GET /api/Suppliers/:id
func (h *SupplierHandler) HandleGet(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	s, err := h.suppliers.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, "get supplier", err)
		return
	}
	c.JSON(http.StatusOK, toSupplierDTO(s))
}

// POST /api/Suppliers
func (h *SupplierHandler) HandleCreate(c *gin.Context) {
	var req supplierRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}

	s, err := h.suppliers.Create(c.Request.Context(), service.SupplierInput{
		Name:    req.Name,
		Address: req.Address,
		CNPJ:    req.CNPJ,
		Phone:   req.Phone,
	})
	if err != nil {
		respondError(c, "create supplier", err)
		return
	}
	c.Header("Location", "/api/Suppliers/"+strconv.FormatInt(s.ID, 10))
	c.JSON(http.StatusCreated, toSupplierDTO(s))
}
