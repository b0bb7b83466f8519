package handler

import (
	"time"

	"finance-tracker/internal/adapter/http/dto"
	"finance-tracker/internal/core/domain"
	"finance-tracker/internal/core/ports"
	"finance-tracker/pkg/apperror"
	"finance-tracker/pkg/response"

	"github.com/gin-gonic/gin"
)

// CategoryHandler handles category CRUD endpoints.
type CategoryHandler struct {
	categorySvc ports.CategoryService
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(categorySvc ports.CategoryService) *CategoryHandler {
	return &CategoryHandler{categorySvc: categorySvc}
}

func toCategoryResponse(c *domain.Category) dto.CategoryResponse {
	return dto.CategoryResponse{
		ID:        c.ID.String(),
		Name:      c.Name,
		Kind:      string(c.Kind),
		Icon:      c.Icon,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
	}
}

// List handles GET /api/v1/categories.
func (h *CategoryHandler) List(c *gin.Context) {
	scope, ok := requestScope(c)
	if !ok {
		return
	}

	categories, err := h.categorySvc.List(c.Request.Context(), scope)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.CategoryResponse, 0, len(categories))
	for i := range categories {
		items = append(items, toCategoryResponse(&categories[i]))
	}
	response.OK(c, items)
}

// Create handles POST /api/v1/categories.
func (h *CategoryHandler) Create(c *gin.Context) {
	scope, ok := requestScope(c)
	if !ok {
		return
	}

	var req dto.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	cat, err := h.categorySvc.Create(c.Request.Context(), scope, ports.CategoryInput{
		Name: req.Name,
		Kind: domain.CategoryKind(req.Kind),
		Icon: req.Icon,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toCategoryResponse(cat))
}

// Update handles PUT /api/v1/categories/:id.
func (h *CategoryHandler) Update(c *gin.Context) {
	scope, ok := requestScope(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req dto.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	err := h.categorySvc.Update(c.Request.Context(), scope, id, ports.CategoryInput{
		Name: req.Name,
		Kind: domain.CategoryKind(req.Kind),
		Icon: req.Icon,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// Delete handles DELETE /api/v1/categories/:id.
func (h *CategoryHandler) Delete(c *gin.Context) {
	scope, ok := requestScope(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.categorySvc.Delete(c.Request.Context(), scope, id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
