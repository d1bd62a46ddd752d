package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/msomdec/product-catalog/internal/service"
)

// CategoryHandler serves the category endpoints.
type CategoryHandler struct {
	categories *service.CategoryService
}

func NewCategoryHandler(categories *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

// GET /api/Categories
func (h *CategoryHandler) HandleList(c *gin.Context) {
	categories, err := h.categories.List(c.Request.Context())
	if err != nil {
		respondError(c, "list categories", err)
		return
	}
	c.JSON(http.StatusOK, toCategoryDTOs(categories))
}

// GET /api/Categories/:id
func (h *CategoryHandler) HandleGet(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	cat, err := h.categories.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, "get category", err)
		return
	}
	c.JSON(http.StatusOK, toCategoryDTO(cat))
}

// POST /api/Categories
func (h *CategoryHandler) HandleCreate(c *gin.Context) {
	var req categoryRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}

	cat, err := h.categories.Create(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		respondError(c, "create category", err)
		return
	}
	c.Header("Location", "/api/Categories/"+strconv.FormatInt(cat.ID, 10))
	c.JSON(http.StatusCreated, toCategoryDTO(cat))
}
